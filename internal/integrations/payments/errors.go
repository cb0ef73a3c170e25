package payments

import "errors"

var (
	// ErrCreateSession не удалось создать платёжную сессию
	ErrCreateSession = errors.New("payments client: failed to create checkout session")

	// ErrRefund не удалось оформить возврат
	ErrRefund = errors.New("payments client: failed to refund payment")

	// ErrInvalidSignature подпись webhook-события не прошла проверку
	ErrInvalidSignature = errors.New("payments client: invalid webhook signature")
)

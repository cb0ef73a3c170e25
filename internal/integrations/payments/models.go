package payments

// CheckoutSession созданная платёжная сессия
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent разобранное и проверенное webhook-событие платёжной системы
type WebhookEvent struct {
	Type              string
	CheckoutSessionID string
}

// Типы событий платёжной системы, которые обрабатывает сервис
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"
	EventPaymentFailed     = "checkout.session.async_payment_failed"
)

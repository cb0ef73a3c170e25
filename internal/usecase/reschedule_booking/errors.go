package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено по токену
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrCannotReschedule возвращается, когда бронирование не в статусе,
	// допускающем перенос
	ErrCannotReschedule = errors.New("reschedule_booking: booking cannot be rescheduled")

	// ErrSlotNotAvailable возвращается, когда новый слот недоступен
	ErrSlotNotAvailable = errors.New("reschedule_booking: slot is not available")

	// ErrInvalidDate возвращается, когда новое время приёма в прошлом
	ErrInvalidDate = errors.New("reschedule_booking: appointment time is in the past")

	// ErrBusy возвращается при конкурентном конфликте, который не разрешился
	// повторными попытками; клиенту стоит повторить запрос
	ErrBusy = errors.New("reschedule_booking: too many concurrent requests, try again")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)

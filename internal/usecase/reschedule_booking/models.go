package reschedule_booking

import "time"

// Request модель запроса на перенос бронирования
type Request struct {
	ConfirmationToken string    // Токен гостя
	NewAppointmentAt  time.Time // Новое время начала приёма
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	BookingID         int64     // ID бронирования
	ConfirmationToken string    // Токен не меняется при переносе
	AppointmentAt     time.Time // Новое время начала приёма
	DurationMinutes   int       // Длительность приёма
	Amount            float64   // Стоимость (не меняется при переносе)
	Modality          string    // Формат приёма
	BookingStatus     string    // Статус бронирования
	PaymentStatus     string    // Статус оплаты (не меняется при переносе)
}

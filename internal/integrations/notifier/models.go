package notifier

import "time"

// Event тип события жизненного цикла бронирования
type Event string

const (
	EventBookingCreated     Event = "booking.created"
	EventBookingConfirmed   Event = "booking.confirmed"
	EventBookingCancelled   Event = "booking.cancelled"
	EventBookingRescheduled Event = "booking.rescheduled"
	EventReminderDue        Event = "booking.reminder_due"
)

// Notification полезная нагрузка события для сервиса уведомлений
// Содержит всё необходимое для письма гостю, чтобы сервис уведомлений
// не ходил за данными обратно
type Notification struct {
	Event             Event     `json:"event"`
	BookingID         int64     `json:"booking_id"`
	ProviderID        int64     `json:"provider_id"`
	ConfirmationToken string    `json:"confirmation_token"`
	GuestName         string    `json:"guest_name"`
	GuestEmail        string    `json:"guest_email"`
	AppointmentAt     time.Time `json:"appointment_at"`
	DurationMinutes   int       `json:"duration_minutes"`
	Modality          string    `json:"modality"`
}

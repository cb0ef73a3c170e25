package domain

import "time"

// BookingStatus represents the lifecycle status of a guest booking
type BookingStatus string

const (
	StatusPendingPayment BookingStatus = "pending_payment"
	StatusConfirmed      BookingStatus = "confirmed"
	StatusCancelled      BookingStatus = "cancelled"
	StatusCompleted      BookingStatus = "completed"
	StatusNoShow         BookingStatus = "no_show"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Booking represents a guest appointment booking
// Guests have no account; the confirmation token is their only credential
type Booking struct {
	ID            int64
	ProviderID    int64
	SessionTypeID int64

	AppointmentAt   time.Time
	DurationMinutes int // snapshot from SessionType at creation

	// Guest contact information
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     *string

	// Snapshots from SessionType at creation
	Modality Modality
	Amount   float64

	PaymentStatus PaymentStatus
	BookingStatus BookingStatus

	// ConfirmationToken never changes for the life of the booking,
	// so the original email link stays valid across reschedules
	ConfirmationToken string

	CheckoutSessionID  *string
	CancellationReason *string
	CancelledAt        *time.Time
	ReminderSent       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// End returns the end instant of the booking interval
func (b *Booking) End() time.Time {
	return b.AppointmentAt.Add(time.Duration(b.DurationMinutes) * time.Minute)
}

// HoldsSlot returns true if the booking occupies its slot
// (cancelled bookings free the slot immediately)
func (b *Booking) HoldsSlot() bool {
	return b.BookingStatus != StatusCancelled
}

// IsTerminal returns true if no further status transition is allowed
func (b *Booking) IsTerminal() bool {
	return b.BookingStatus == StatusCancelled ||
		b.BookingStatus == StatusCompleted ||
		b.BookingStatus == StatusNoShow
}

// CanBeCancelled returns true if the booking may still transition to CANCELLED
func (b *Booking) CanBeCancelled() bool {
	return b.BookingStatus == StatusPendingPayment || b.BookingStatus == StatusConfirmed
}

// CanBeRescheduled returns true if the booking may be moved to a new slot
func (b *Booking) CanBeRescheduled() bool {
	return b.BookingStatus == StatusConfirmed
}

// Overlaps returns true if the booking interval intersects [start, end)
// Intervals that merely touch at a boundary do not overlap
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.AppointmentAt.Before(end) && b.End().After(start)
}

// ProviderBookingsFilter фильтр для получения бронирований провайдера
type ProviderBookingsFilter struct {
	ProviderID      int64          // Обязательный параметр
	From            *time.Time     // Начало периода (опционально)
	To              *time.Time     // Конец периода (опционально, не включается)
	Status          *BookingStatus // Фильтр по статусу (опционально)
	IncludeInactive bool           // Включать ли отменённые бронирования
}

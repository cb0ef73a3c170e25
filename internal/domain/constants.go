package domain

// Business validation constants
const (
	MinSessionDurationMinutes = 15
	MaxSessionDurationMinutes = 240

	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
	MaxNameLength               = 100
)

// Time format constants
const (
	TimeFormat     = "15:04"               // HH:MM
	DateFormat     = "2006-01-02"          // YYYY-MM-DD
	DateTimeFormat = "2006-01-02T15:04:05" // local datetime without zone
)

// InactiveStatuses список статусов, не удерживающих слот
// Используется при фильтрации бронирований для подсчёта доступности
var InactiveStatuses = []BookingStatus{
	StatusCancelled,
}

// SlotHoldingStatuses список статусов, удерживающих слот за бронированием
var SlotHoldingStatuses = []BookingStatus{
	StatusPendingPayment,
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
}

// ValidBookingStatus returns true for a known booking status value
func ValidBookingStatus(s string) bool {
	switch BookingStatus(s) {
	case StatusPendingPayment, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

package reschedule_booking

import (
	"time"

	rescheduleBooking "github.com/m04kA/GNG-SchedulingService/internal/usecase/reschedule_booking"
)

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewAppointmentAt string `json:"newAppointmentAt"` // ISO 8601
}

// BookingRescheduledResponse HTTP response model
type BookingRescheduledResponse struct {
	BookingID         int64   `json:"bookingId"`
	ConfirmationToken string  `json:"confirmationToken"`
	AppointmentAt     string  `json:"appointmentAt"`
	DurationMinutes   int     `json:"durationMinutes"`
	Amount            float64 `json:"amount"`
	Modality          string  `json:"modality"`
	BookingStatus     string  `json:"bookingStatus"`
	PaymentStatus     string  `json:"paymentStatus"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleBookingRequest) ToUseCaseRequest(token string) (*rescheduleBooking.Request, error) {
	newAppointmentAt, err := time.Parse(time.RFC3339, r.NewAppointmentAt)
	if err != nil {
		return nil, err
	}

	return &rescheduleBooking.Request{
		ConfirmationToken: token,
		NewAppointmentAt:  newAppointmentAt,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *BookingRescheduledResponse {
	return &BookingRescheduledResponse{
		BookingID:         resp.BookingID,
		ConfirmationToken: resp.ConfirmationToken,
		AppointmentAt:     resp.AppointmentAt.Format(time.RFC3339),
		DurationMinutes:   resp.DurationMinutes,
		Amount:            resp.Amount,
		Modality:          resp.Modality,
		BookingStatus:     resp.BookingStatus,
		PaymentStatus:     resp.PaymentStatus,
	}
}

package create_booking

import (
	"time"

	createBooking "github.com/m04kA/GNG-SchedulingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ProviderID    int64   `json:"providerId"`
	SessionTypeID int64   `json:"sessionTypeId"`
	AppointmentAt string  `json:"appointmentAt"` // ISO 8601, например "2026-09-07T10:00:00+10:00"
	FirstName     string  `json:"firstName"`
	LastName      string  `json:"lastName"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	Notes         *string `json:"notes,omitempty"`
}

// BookingCreatedResponse HTTP response model
type BookingCreatedResponse struct {
	BookingID         int64   `json:"bookingId"`
	ConfirmationToken string  `json:"confirmationToken"`
	CheckoutURL       string  `json:"checkoutUrl"`
	AppointmentAt     string  `json:"appointmentAt"`
	DurationMinutes   int     `json:"durationMinutes"`
	Amount            float64 `json:"amount"`
	Modality          string  `json:"modality"`
	BookingStatus     string  `json:"bookingStatus"`
	PaymentStatus     string  `json:"paymentStatus"`
	CreatedAt         string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest() (*createBooking.Request, error) {
	appointmentAt, err := time.Parse(time.RFC3339, r.AppointmentAt)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		ProviderID:    r.ProviderID,
		SessionTypeID: r.SessionTypeID,
		AppointmentAt: appointmentAt,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Phone:         r.Phone,
		Notes:         r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *BookingCreatedResponse {
	return &BookingCreatedResponse{
		BookingID:         resp.BookingID,
		ConfirmationToken: resp.ConfirmationToken,
		CheckoutURL:       resp.CheckoutURL,
		AppointmentAt:     resp.AppointmentAt.Format(time.RFC3339),
		DurationMinutes:   resp.DurationMinutes,
		Amount:            resp.Amount,
		Modality:          resp.Modality,
		BookingStatus:     resp.BookingStatus,
		PaymentStatus:     resp.PaymentStatus,
		CreatedAt:         resp.CreatedAt.Format(time.RFC3339),
	}
}

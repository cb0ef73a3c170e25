package models

import (
	"errors"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// CancelBookingRequest запрос на отмену бронирования гостем
type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

// UpdateStatusRequest запрос провайдера на смену статуса бронирования
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// GetProviderBookingsRequest запрос на получение бронирований провайдера
type GetProviderBookingsRequest struct {
	ProviderID      int64
	From            *time.Time
	To              *time.Time
	Status          *string
	IncludeInactive bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetProviderBookingsRequest) ToDomainFilter() (domain.ProviderBookingsFilter, error) {
	filter := domain.ProviderBookingsFilter{
		ProviderID:      r.ProviderID,
		From:            r.From,
		To:              r.To,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64  `json:"id"`
	ProviderID      int64  `json:"providerId"`
	SessionTypeID   int64  `json:"sessionTypeId"`
	AppointmentAt   string `json:"appointmentAt"` // ISO 8601
	DurationMinutes int    `json:"durationMinutes"`

	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Notes     *string `json:"notes,omitempty"`

	Modality string  `json:"modality"`
	Amount   float64 `json:"amount"`

	PaymentStatus string `json:"paymentStatus"`
	BookingStatus string `json:"bookingStatus"`

	ConfirmationToken string `json:"confirmationToken"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// CancelBookingResponse результат отмены бронирования
type CancelBookingResponse struct {
	Booking      *BookingResponse `json:"booking"`
	RefundIssued bool             `json:"refundIssued"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		ProviderID:         b.ProviderID,
		SessionTypeID:      b.SessionTypeID,
		AppointmentAt:      b.AppointmentAt.Format(time.RFC3339),
		DurationMinutes:    b.DurationMinutes,
		FirstName:          b.FirstName,
		LastName:           b.LastName,
		Email:              b.Email,
		Phone:              b.Phone,
		Notes:              b.Notes,
		Modality:           string(b.Modality),
		Amount:             b.Amount,
		PaymentStatus:      string(b.PaymentStatus),
		BookingStatus:      string(b.BookingStatus),
		ConfirmationToken:  b.ConfirmationToken,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	if bookings == nil {
		return &BookingListResponse{
			Bookings: []BookingResponse{},
		}
	}

	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, len(bookings)),
	}

	for i, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings[i] = *bookingResp
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	if !domain.ValidBookingStatus(status) {
		return "", ErrInvalidStatus
	}

	return domain.BookingStatus(status), nil
}

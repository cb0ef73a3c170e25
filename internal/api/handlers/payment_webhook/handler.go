package payment_webhook

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/GNG-SchedulingService/internal/integrations/payments"
	"github.com/m04kA/GNG-SchedulingService/internal/service/bookings"
)

// maxBodyBytes ограничивает размер webhook-события
const maxBodyBytes = int64(65536)

const (
	reasonPaymentExpired = "payment session expired"
	reasonPaymentFailed  = "payment failed"
)

type Handler struct {
	service  BookingService
	payments PaymentsClient
	logger   Logger
}

func NewHandler(service BookingService, paymentsClient PaymentsClient, logger Logger) *Handler {
	return &Handler{
		service:  service,
		payments: paymentsClient,
		logger:   logger,
	}
}

// Handle POST /api/v1/webhooks/payments
//
// Платёжная система повторяет доставку события при не-2xx ответе, поэтому
// обработчик отвечает 200 на все события, которые не нужно доставлять
// повторно, и 5xx только на временные внутренние ошибки
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		h.logger.Error("POST /webhooks/payments - Failed to read body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := h.payments.VerifyWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.logger.Warn("POST /webhooks/payments - Signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if event.CheckoutSessionID == "" {
		h.logger.Warn("POST /webhooks/payments - No session ID in event type=%s", event.Type)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case payments.EventCheckoutCompleted:
		err = h.service.ConfirmPaymentBySession(r.Context(), event.CheckoutSessionID)

	case payments.EventCheckoutExpired:
		err = h.service.FailPaymentBySession(r.Context(), event.CheckoutSessionID, reasonPaymentExpired)

	case payments.EventPaymentFailed:
		err = h.service.FailPaymentBySession(r.Context(), event.CheckoutSessionID, reasonPaymentFailed)

	default:
		h.logger.Info("POST /webhooks/payments - Unhandled event type: %s", event.Type)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrBookingNotFound):
			// Событие не про наше бронирование; повторять доставку не нужно
			h.logger.Warn("POST /webhooks/payments - No booking for session, event type=%s", event.Type)
			w.WriteHeader(http.StatusOK)

		case errors.Is(err, bookings.ErrInvalidState):
			h.logger.Warn("POST /webhooks/payments - Booking in unexpected state, event type=%s", event.Type)
			w.WriteHeader(http.StatusOK)

		default:
			h.logger.Error("POST /webhooks/payments - Failed to process event type=%s: %v", event.Type, err)
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("POST /webhooks/payments - Processed event type=%s", event.Type)
	w.WriteHeader(http.StatusOK)
}

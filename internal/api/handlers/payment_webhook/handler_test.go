package payment_webhook

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/GNG-SchedulingService/internal/integrations/payments"
	"github.com/m04kA/GNG-SchedulingService/internal/service/bookings"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeBookingService struct {
	confirmErr error
	failErr    error

	confirmed []string
	failed    []string
	reasons   []string
}

func (s *fakeBookingService) ConfirmPaymentBySession(_ context.Context, sessionID string) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmed = append(s.confirmed, sessionID)
	return nil
}

func (s *fakeBookingService) FailPaymentBySession(_ context.Context, sessionID, reason string) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.failed = append(s.failed, sessionID)
	s.reasons = append(s.reasons, reason)
	return nil
}

type fakePaymentsClient struct {
	event     *payments.WebhookEvent
	verifyErr error
}

func (c *fakePaymentsClient) VerifyWebhook(_ []byte, _ string) (*payments.WebhookEvent, error) {
	if c.verifyErr != nil {
		return nil, c.verifyErr
	}
	return c.event, nil
}

func serve(service *fakeBookingService, client *fakePaymentsClient) *httptest.ResponseRecorder {
	h := NewHandler(service, client, nopLogger{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", strings.NewReader(`{}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=sig")

	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_CheckoutCompleted(t *testing.T) {
	service := &fakeBookingService{}
	client := &fakePaymentsClient{
		event: &payments.WebhookEvent{Type: payments.EventCheckoutCompleted, CheckoutSessionID: "cs_1"},
	}

	rec := serve(service, client)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cs_1"}, service.confirmed)
}

func TestHandle_CheckoutExpired(t *testing.T) {
	service := &fakeBookingService{}
	client := &fakePaymentsClient{
		event: &payments.WebhookEvent{Type: payments.EventCheckoutExpired, CheckoutSessionID: "cs_1"},
	}

	rec := serve(service, client)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"cs_1"}, service.failed)
	assert.Equal(t, []string{"payment session expired"}, service.reasons)
}

func TestHandle_PaymentFailed(t *testing.T) {
	service := &fakeBookingService{}
	client := &fakePaymentsClient{
		event: &payments.WebhookEvent{Type: payments.EventPaymentFailed, CheckoutSessionID: "cs_1"},
	}

	rec := serve(service, client)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"payment failed"}, service.reasons)
}

func TestHandle_BadSignature(t *testing.T) {
	service := &fakeBookingService{}
	client := &fakePaymentsClient{verifyErr: errors.New("bad signature")}

	rec := serve(service, client)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, service.confirmed)
}

func TestHandle_MissingSessionID(t *testing.T) {
	service := &fakeBookingService{}
	client := &fakePaymentsClient{
		event: &payments.WebhookEvent{Type: payments.EventCheckoutCompleted},
	}

	rec := serve(service, client)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_UnhandledEventType(t *testing.T) {
	service := &fakeBookingService{}
	client := &fakePaymentsClient{
		event: &payments.WebhookEvent{Type: "invoice.paid", CheckoutSessionID: "cs_1"},
	}

	rec := serve(service, client)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, service.confirmed)
	assert.Empty(t, service.failed)
}

// Не-ретраябельные исходы отдают 200, чтобы платёжная система не повторяла доставку
func TestHandle_NonRetryableOutcomes(t *testing.T) {
	for _, svcErr := range []error{bookings.ErrBookingNotFound, bookings.ErrInvalidState} {
		service := &fakeBookingService{confirmErr: svcErr}
		client := &fakePaymentsClient{
			event: &payments.WebhookEvent{Type: payments.EventCheckoutCompleted, CheckoutSessionID: "cs_1"},
		}

		rec := serve(service, client)
		assert.Equal(t, http.StatusOK, rec.Code, "err=%v", svcErr)
	}
}

func TestHandle_TransientErrorReturns5xx(t *testing.T) {
	service := &fakeBookingService{confirmErr: errors.New("db connection lost")}
	client := &fakePaymentsClient{
		event: &payments.WebhookEvent{Type: payments.EventCheckoutCompleted, CheckoutSessionID: "cs_1"},
	}

	rec := serve(service, client)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

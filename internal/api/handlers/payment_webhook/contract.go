package payment_webhook

import (
	"context"

	"github.com/m04kA/GNG-SchedulingService/internal/integrations/payments"
)

type BookingService interface {
	ConfirmPaymentBySession(ctx context.Context, sessionID string) error
	FailPaymentBySession(ctx context.Context, sessionID, reason string) error
}

type PaymentsClient interface {
	VerifyWebhook(payload []byte, signatureHeader string) (*payments.WebhookEvent, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package payments

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/checkout/session"
	"github.com/stripe/stripe-go/v78/refund"
	"github.com/stripe/stripe-go/v78/webhook"
)

// Config настройки платёжного клиента
type Config struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

// Client клиент для работы со Stripe Checkout
type Client struct {
	cfg Config
}

// NewClient создает новый экземпляр платёжного клиента
func NewClient(cfg Config) *Client {
	stripe.Key = cfg.SecretKey
	return &Client{cfg: cfg}
}

// CreateCheckoutSession создает платёжную сессию для бронирования
// Гость перенаправляется на URL сессии для оплаты картой
func (c *Client) CreateCheckoutSession(amount float64, description, customerEmail, confirmationToken string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(c.cfg.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
					UnitAmount: stripe.Int64(toMinorUnits(amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(c.cfg.SuccessURL + "?token=" + confirmationToken),
		CancelURL:     stripe.String(c.cfg.CancelURL + "?token=" + confirmationToken),
		CustomerEmail: stripe.String(customerEmail),
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateSession, err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// Refund возвращает полную стоимость платежа по ID платёжной сессии
func (c *Client) Refund(checkoutSessionID string) error {
	sess, err := session.Get(checkoutSessionID, nil)
	if err != nil {
		return fmt.Errorf("%w: get session %s: %v", ErrRefund, checkoutSessionID, err)
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("%w: no payment intent for session %s", ErrRefund, checkoutSessionID)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	if _, err = refund.New(params); err != nil {
		return fmt.Errorf("%w: %v", ErrRefund, err)
	}

	return nil
}

// VerifyWebhook проверяет подпись webhook-события и извлекает из него
// тип события и ID платёжной сессии
func (c *Client) VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, c.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	result := &WebhookEvent{Type: string(event.Type)}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err == nil {
		result.CheckoutSessionID = sess.ID
	}

	return result, nil
}

// toMinorUnits переводит сумму в минимальные единицы валюты (центы)
func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

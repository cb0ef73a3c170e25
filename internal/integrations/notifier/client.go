package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
)

// Client клиент для работы с NotificationService
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента NotificationService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Notify отправляет событие жизненного цикла бронирования
func (c *Client) Notify(ctx context.Context, event Event, booking *domain.Booking) error {
	notification := Notification{
		Event:             event,
		BookingID:         booking.ID,
		ProviderID:        booking.ProviderID,
		ConfirmationToken: booking.ConfirmationToken,
		GuestName:         booking.FirstName + " " + booking.LastName,
		GuestEmail:        booking.Email,
		AppointmentAt:     booking.AppointmentAt,
		DurationMinutes:   booking.DurationMinutes,
		Modality:          string(booking.Modality),
	}

	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal notification: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/notifications", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}

	return nil
}

// NotifyBestEffort отправляет событие, логируя ошибку вместо её возврата
// Доставка уведомлений не должна ломать бизнес-операцию: бронирование
// состоялось, даже если письмо не ушло
func (c *Client) NotifyBestEffort(ctx context.Context, event Event, booking *domain.Booking) {
	if err := c.Notify(ctx, event, booking); err != nil {
		c.log.Warn("Failed to send %s notification for booking %d: %v", event, booking.ID, err)
		return
	}

	c.log.Info("Sent %s notification for booking %d", event, booking.ID)
}

package bookings

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/GNG-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/GNG-SchedulingService/pkg/ptr"
)

var testNow = time.Date(2026, 1, 26, 10, 0, 0, 0, time.UTC)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeTimeProvider struct {
	now time.Time
}

func (p *fakeTimeProvider) Now() time.Time { return p.now }

// passthroughTxManager выполняет функцию без транзакции
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mutexTxManager сериализует транзакции глобальным мьютексом,
// имитируя блокировку строки при чтении по токену
type mutexTxManager struct {
	mu sync.Mutex
}

func (m *mutexTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}

func (m *mutexTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

func (m *mutexTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.Do(ctx, fn)
}

type fakeBookingRepo struct {
	booking *domain.Booking

	cancelledWith       *domain.PaymentStatus
	cancelReason        string
	confirmPaymentCalls int
	updatedStatus       *domain.BookingStatus
}

func (r *fakeBookingRepo) find(match bool) (*domain.Booking, error) {
	if r.booking == nil || !match {
		return nil, bookingRepo.ErrBookingNotFound
	}
	copied := *r.booking
	return &copied, nil
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	return r.find(r.booking != nil && r.booking.ID == id)
}

func (r *fakeBookingRepo) GetByToken(_ context.Context, token string) (*domain.Booking, error) {
	return r.find(r.booking != nil && r.booking.ConfirmationToken == token)
}

func (r *fakeBookingRepo) GetByCheckoutSession(_ context.Context, sessionID string) (*domain.Booking, error) {
	return r.find(r.booking != nil && r.booking.CheckoutSessionID != nil && *r.booking.CheckoutSessionID == sessionID)
}

func (r *fakeBookingRepo) GetByProviderWithFilter(_ context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	if r.booking == nil || r.booking.ProviderID != filter.ProviderID {
		return []*domain.Booking{}, nil
	}
	copied := *r.booking
	return []*domain.Booking{&copied}, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, _ int64, status domain.BookingStatus) error {
	r.updatedStatus = &status
	r.booking.BookingStatus = status
	return nil
}

func (r *fakeBookingRepo) ConfirmPayment(_ context.Context, _ int64) error {
	r.confirmPaymentCalls++
	r.booking.BookingStatus = domain.StatusConfirmed
	r.booking.PaymentStatus = domain.PaymentCompleted
	return nil
}

func (r *fakeBookingRepo) Cancel(_ context.Context, _ int64, paymentStatus domain.PaymentStatus, reason string) error {
	r.cancelledWith = &paymentStatus
	r.cancelReason = reason
	r.booking.BookingStatus = domain.StatusCancelled
	r.booking.PaymentStatus = paymentStatus
	return nil
}

type fakePaymentsClient struct {
	refunds  []string
	failWith error
}

func (c *fakePaymentsClient) Refund(sessionID string) error {
	if c.failWith != nil {
		return c.failWith
	}
	c.refunds = append(c.refunds, sessionID)
	return nil
}

type fakeNotifier struct {
	events []notifier.Event
}

func (n *fakeNotifier) NotifyBestEffort(_ context.Context, event notifier.Event, _ *domain.Booking) {
	n.events = append(n.events, event)
}

type testEnv struct {
	svc      *Service
	repo     *fakeBookingRepo
	payments *fakePaymentsClient
	notifier *fakeNotifier
}

func newTestEnv(booking *domain.Booking) *testEnv {
	repo := &fakeBookingRepo{booking: booking}
	paymentsClient := &fakePaymentsClient{}
	notifierClient := &fakeNotifier{}

	svc := NewService(
		repo,
		paymentsClient,
		notifierClient,
		passthroughTxManager{},
		&fakeTimeProvider{now: testNow},
		nopLogger{},
		24,
	)

	return &testEnv{svc: svc, repo: repo, payments: paymentsClient, notifier: notifierClient}
}

func confirmedBooking(appointmentAt time.Time) *domain.Booking {
	return &domain.Booking{
		ID:                7,
		ProviderID:        1,
		SessionTypeID:     10,
		AppointmentAt:     appointmentAt,
		DurationMinutes:   60,
		FirstName:         "Anna",
		LastName:          "Ivanova",
		Email:             "anna@example.com",
		Phone:             "+79001234567",
		Modality:          domain.ModalityOnline,
		Amount:            50.0,
		PaymentStatus:     domain.PaymentCompleted,
		BookingStatus:     domain.StatusConfirmed,
		ConfirmationToken: "tok-123",
		CheckoutSessionID: ptr.Ptr("cs_test_1"),
	}
}

func TestGetByToken(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))

	resp, err := env.svc.GetByToken(context.Background(), "tok-123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "tok-123", resp.ConfirmationToken)

	_, err = env.svc.GetByToken(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancel_RefundAtExactNoticeBoundary(t *testing.T) {
	// Ровно за 24 часа до приёма: граница включительная, возврат положен
	env := newTestEnv(confirmedBooking(testNow.Add(24 * time.Hour)))

	resp, err := env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
	require.NoError(t, err)

	assert.True(t, resp.RefundIssued)
	assert.Equal(t, []string{"cs_test_1"}, env.payments.refunds)
	require.NotNil(t, env.repo.cancelledWith)
	assert.Equal(t, domain.PaymentRefunded, *env.repo.cancelledWith)
	assert.Equal(t, "cancelled by guest", env.repo.cancelReason)
	assert.Equal(t, []notifier.Event{notifier.EventBookingCancelled}, env.notifier.events)
}

func TestCancel_NoRefundInsideNoticeWindow(t *testing.T) {
	// За 23ч59м до приёма возврат уже не положен
	env := newTestEnv(confirmedBooking(testNow.Add(24*time.Hour - time.Minute)))

	resp, err := env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
	require.NoError(t, err)

	assert.False(t, resp.RefundIssued)
	assert.Empty(t, env.payments.refunds)
	require.NotNil(t, env.repo.cancelledWith)
	assert.Equal(t, domain.PaymentCompleted, *env.repo.cancelledWith)
}

func TestCancel_CustomReasonKept(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))

	_, err := env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{Reason: "не смогу прийти"})
	require.NoError(t, err)

	assert.Equal(t, "не смогу прийти", env.repo.cancelReason)
}

func TestCancel_RefundFailureDoesNotBlockCancellation(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))
	env.payments.failWith = errors.New("stripe is down")

	resp, err := env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
	require.NoError(t, err)

	// Отмена прошла, но возврат не состоялся и статус оплаты не изменился
	assert.False(t, resp.RefundIssued)
	require.NotNil(t, env.repo.cancelledWith)
	assert.Equal(t, domain.PaymentCompleted, *env.repo.cancelledWith)
}

func TestCancel_PendingPaymentNoRefund(t *testing.T) {
	booking := confirmedBooking(testNow.Add(48 * time.Hour))
	booking.BookingStatus = domain.StatusPendingPayment
	booking.PaymentStatus = domain.PaymentPending

	env := newTestEnv(booking)

	resp, err := env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
	require.NoError(t, err)

	assert.False(t, resp.RefundIssued)
	assert.Empty(t, env.payments.refunds)
}

func TestCancel_RepeatedCancellationRejected(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))

	_, err := env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
	require.NoError(t, err)

	_, err = env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Len(t, env.payments.refunds, 1)
}

func TestCancel_ConcurrentSameToken(t *testing.T) {
	repo := &fakeBookingRepo{booking: confirmedBooking(testNow.Add(48 * time.Hour))}
	paymentsClient := &fakePaymentsClient{}
	notifierClient := &fakeNotifier{}

	svc := NewService(
		repo,
		paymentsClient,
		notifierClient,
		&mutexTxManager{},
		&fakeTimeProvider{now: testNow},
		nopLogger{},
		24,
	)

	const workers = 8

	errs := make(chan error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
			errs <- err
		}()
	}

	close(start)
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrCannotCancel)
	}

	// Только одна отмена проходит, возврат выполняется один раз
	assert.Equal(t, 1, succeeded)
	assert.Len(t, paymentsClient.refunds, 1)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.StatusCancelled, domain.StatusCompleted, domain.StatusNoShow} {
		booking := confirmedBooking(testNow.Add(48 * time.Hour))
		booking.BookingStatus = status

		env := newTestEnv(booking)

		_, err := env.svc.Cancel(context.Background(), "tok-123", &models.CancelBookingRequest{})
		assert.ErrorIs(t, err, ErrCannotCancel, "status=%s", status)
	}
}

func TestConfirmPaymentBySession(t *testing.T) {
	booking := confirmedBooking(testNow.Add(48 * time.Hour))
	booking.BookingStatus = domain.StatusPendingPayment
	booking.PaymentStatus = domain.PaymentPending

	env := newTestEnv(booking)

	err := env.svc.ConfirmPaymentBySession(context.Background(), "cs_test_1")
	require.NoError(t, err)

	assert.Equal(t, 1, env.repo.confirmPaymentCalls)
	assert.Equal(t, domain.StatusConfirmed, env.repo.booking.BookingStatus)
	assert.Equal(t, []notifier.Event{notifier.EventBookingConfirmed}, env.notifier.events)
}

func TestConfirmPaymentBySession_Idempotent(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))

	// Повторная доставка события для уже подтверждённого бронирования
	err := env.svc.ConfirmPaymentBySession(context.Background(), "cs_test_1")
	require.NoError(t, err)

	assert.Zero(t, env.repo.confirmPaymentCalls)
	assert.Empty(t, env.notifier.events)
}

func TestConfirmPaymentBySession_CancelledBooking(t *testing.T) {
	booking := confirmedBooking(testNow.Add(48 * time.Hour))
	booking.BookingStatus = domain.StatusCancelled

	env := newTestEnv(booking)

	err := env.svc.ConfirmPaymentBySession(context.Background(), "cs_test_1")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestConfirmPaymentBySession_UnknownSession(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))

	err := env.svc.ConfirmPaymentBySession(context.Background(), "cs_unknown")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestFailPaymentBySession(t *testing.T) {
	booking := confirmedBooking(testNow.Add(48 * time.Hour))
	booking.BookingStatus = domain.StatusPendingPayment
	booking.PaymentStatus = domain.PaymentPending

	env := newTestEnv(booking)

	err := env.svc.FailPaymentBySession(context.Background(), "cs_test_1", "payment failed")
	require.NoError(t, err)

	require.NotNil(t, env.repo.cancelledWith)
	assert.Equal(t, domain.PaymentFailed, *env.repo.cancelledWith)
	assert.Equal(t, "payment failed", env.repo.cancelReason)
}

func TestFailPaymentBySession_AlreadyCancelledIsNoop(t *testing.T) {
	booking := confirmedBooking(testNow.Add(48 * time.Hour))
	booking.BookingStatus = domain.StatusCancelled

	env := newTestEnv(booking)

	err := env.svc.FailPaymentBySession(context.Background(), "cs_test_1", "payment failed")
	require.NoError(t, err)
	assert.Nil(t, env.repo.cancelledWith)
}

func TestFailPaymentBySession_ConfirmedBookingRejected(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))

	err := env.svc.FailPaymentBySession(context.Background(), "cs_test_1", "payment failed")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(-time.Hour)))

	err := env.svc.UpdateStatus(context.Background(), 7, 1, &models.UpdateStatusRequest{Status: "completed"})
	require.NoError(t, err)

	require.NotNil(t, env.repo.updatedStatus)
	assert.Equal(t, domain.StatusCompleted, *env.repo.updatedStatus)
}

func TestUpdateStatus_NoShow(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(-time.Hour)))

	err := env.svc.UpdateStatus(context.Background(), 7, 1, &models.UpdateStatusRequest{Status: "no_show"})
	require.NoError(t, err)

	require.NotNil(t, env.repo.updatedStatus)
	assert.Equal(t, domain.StatusNoShow, *env.repo.updatedStatus)
}

func TestUpdateStatus_OtherProviderDenied(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(-time.Hour)))

	err := env.svc.UpdateStatus(context.Background(), 7, 2, &models.UpdateStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestUpdateStatus_OnlyFinalOutcomesAllowed(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(-time.Hour)))

	for _, status := range []string{"cancelled", "confirmed", "pending_payment", "bogus"} {
		err := env.svc.UpdateStatus(context.Background(), 7, 1, &models.UpdateStatusRequest{Status: status})
		assert.ErrorIs(t, err, ErrInvalidInput, "status=%s", status)
	}
}

func TestUpdateStatus_BeforeAppointmentRejected(t *testing.T) {
	// Приём ещё не начался, итог фиксировать рано
	env := newTestEnv(confirmedBooking(testNow.Add(time.Hour)))

	err := env.svc.UpdateStatus(context.Background(), 7, 1, &models.UpdateStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Nil(t, env.repo.updatedStatus)
}

func TestUpdateStatus_NotConfirmedRejected(t *testing.T) {
	booking := confirmedBooking(testNow.Add(-time.Hour))
	booking.BookingStatus = domain.StatusPendingPayment

	env := newTestEnv(booking)

	err := env.svc.UpdateStatus(context.Background(), 7, 1, &models.UpdateStatusRequest{Status: "completed"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGetProviderBookings(t *testing.T) {
	env := newTestEnv(confirmedBooking(testNow.Add(48 * time.Hour)))

	resp, err := env.svc.GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{ProviderID: 1})
	require.NoError(t, err)
	require.Len(t, resp.Bookings, 1)
	assert.Equal(t, int64(7), resp.Bookings[0].ID)

	resp, err = env.svc.GetProviderBookings(context.Background(), &models.GetProviderBookingsRequest{ProviderID: 99})
	require.NoError(t, err)
	assert.Empty(t, resp.Bookings)
}

package reschedule_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/GNG-SchedulingService/pkg/types"
)

// Понедельник 2026-01-26, рабочие часы 09:00-17:00
var (
	testDay = time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
	testNow = testDay.Add(-24 * time.Hour)
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeTimeProvider struct {
	now time.Time
}

func (p *fakeTimeProvider) Now() time.Time { return p.now }

type passthroughTxManager struct{}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBookingRepo struct {
	bookings []*domain.Booking

	rescheduledID    int64
	rescheduledStart time.Time
	rescheduleErr    error
}

func (r *fakeBookingRepo) GetByToken(_ context.Context, token string) (*domain.Booking, error) {
	for _, b := range r.bookings {
		if b.ConfirmationToken == token {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingRepo.ErrBookingNotFound
}

func (r *fakeBookingRepo) GetByProviderWithFilter(_ context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	result := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if b.ProviderID != filter.ProviderID {
			continue
		}
		if filter.From != nil && b.AppointmentAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !b.AppointmentAt.Before(*filter.To) {
			continue
		}
		if !filter.IncludeInactive && !b.HoldsSlot() {
			continue
		}
		copied := *b
		result = append(result, &copied)
	}
	return result, nil
}

func (r *fakeBookingRepo) Reschedule(_ context.Context, id int64, newStart time.Time) error {
	if r.rescheduleErr != nil {
		return r.rescheduleErr
	}
	r.rescheduledID = id
	r.rescheduledStart = newStart
	return nil
}

type fakeAvailabilityRepo struct {
	rules []*domain.AvailabilityRule
}

func (r *fakeAvailabilityRepo) ListRulesByProviderAndDay(_ context.Context, _ int64, day time.Weekday) ([]*domain.AvailabilityRule, error) {
	matched := make([]*domain.AvailabilityRule, 0)
	for _, rule := range r.rules {
		if rule.DayOfWeek == day {
			matched = append(matched, rule)
		}
	}
	return matched, nil
}

func (r *fakeAvailabilityRepo) ListTimeOffInRange(_ context.Context, _ int64, _, _ time.Time) ([]*domain.TimeOff, error) {
	return nil, nil
}

type fakeNotifier struct {
	events []notifier.Event
}

func (n *fakeNotifier) NotifyBestEffort(_ context.Context, event notifier.Event, _ *domain.Booking) {
	n.events = append(n.events, event)
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:                7,
		ProviderID:        1,
		SessionTypeID:     10,
		AppointmentAt:     testDay.Add(10 * time.Hour),
		DurationMinutes:   60,
		Modality:          domain.ModalityOnline,
		Amount:            50.0,
		PaymentStatus:     domain.PaymentCompleted,
		BookingStatus:     domain.StatusConfirmed,
		ConfirmationToken: "tok-123",
	}
}

func newTestUseCase(repo *fakeBookingRepo, n *fakeNotifier) *UseCase {
	avail := &fakeAvailabilityRepo{
		rules: []*domain.AvailabilityRule{
			{
				ProviderID:  1,
				DayOfWeek:   time.Monday,
				StartTime:   types.TimeString("09:00"),
				EndTime:     types.TimeString("17:00"),
				IsRecurring: true,
			},
		},
	}

	uc := NewUseCase(repo, avail, n, passthroughTxManager{}, nopLogger{})
	uc.timeProvider = &fakeTimeProvider{now: testNow}
	return uc
}

func TestExecute_Success(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{confirmedBooking()}}
	notifierClient := &fakeNotifier{}
	uc := newTestUseCase(repo, notifierClient)

	newStart := testDay.Add(14 * time.Hour)
	resp, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "tok-123", NewAppointmentAt: newStart})
	require.NoError(t, err)

	assert.Equal(t, int64(7), repo.rescheduledID)
	assert.Equal(t, newStart, repo.rescheduledStart)
	assert.Equal(t, newStart, resp.AppointmentAt)

	// Токен, стоимость и статус оплаты не меняются
	assert.Equal(t, "tok-123", resp.ConfirmationToken)
	assert.Equal(t, 50.0, resp.Amount)
	assert.Equal(t, string(domain.PaymentCompleted), resp.PaymentStatus)
	assert.Equal(t, string(domain.StatusConfirmed), resp.BookingStatus)

	assert.Equal(t, []notifier.Event{notifier.EventBookingRescheduled}, notifierClient.events)
}

func TestExecute_OwnIntervalExcludedFromOverlapCheck(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{confirmedBooking()}}
	uc := newTestUseCase(repo, &fakeNotifier{})

	// Сдвиг на полчаса пересекается со старым интервалом самого бронирования
	newStart := testDay.Add(10*time.Hour + 30*time.Minute)
	_, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "tok-123", NewAppointmentAt: newStart})
	require.NoError(t, err)
	assert.Equal(t, newStart, repo.rescheduledStart)
}

func TestExecute_NewSlotOverlapsOtherBooking(t *testing.T) {
	other := confirmedBooking()
	other.ID = 8
	other.ConfirmationToken = "tok-456"
	other.AppointmentAt = testDay.Add(14 * time.Hour)

	repo := &fakeBookingRepo{bookings: []*domain.Booking{confirmedBooking(), other}}
	uc := newTestUseCase(repo, &fakeNotifier{})

	newStart := testDay.Add(14*time.Hour + 30*time.Minute)
	_, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "tok-123", NewAppointmentAt: newStart})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
	assert.Zero(t, repo.rescheduledID)
}

func TestExecute_NewSlotOutsideWorkingHours(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{confirmedBooking()}}
	uc := newTestUseCase(repo, &fakeNotifier{})

	newStart := testDay.Add(18 * time.Hour)
	_, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "tok-123", NewAppointmentAt: newStart})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_OnlyConfirmedCanBeRescheduled(t *testing.T) {
	statuses := []domain.BookingStatus{
		domain.StatusPendingPayment,
		domain.StatusCancelled,
		domain.StatusCompleted,
		domain.StatusNoShow,
	}

	for _, status := range statuses {
		booking := confirmedBooking()
		booking.BookingStatus = status

		repo := &fakeBookingRepo{bookings: []*domain.Booking{booking}}
		uc := newTestUseCase(repo, &fakeNotifier{})

		newStart := testDay.Add(14 * time.Hour)
		_, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "tok-123", NewAppointmentAt: newStart})
		assert.ErrorIs(t, err, ErrCannotReschedule, "status=%s", status)
	}
}

func TestExecute_UnknownToken(t *testing.T) {
	repo := &fakeBookingRepo{}
	uc := newTestUseCase(repo, &fakeNotifier{})

	newStart := testDay.Add(14 * time.Hour)
	_, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "unknown", NewAppointmentAt: newStart})
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestExecute_NewTimeInPast(t *testing.T) {
	repo := &fakeBookingRepo{bookings: []*domain.Booking{confirmedBooking()}}
	uc := newTestUseCase(repo, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "tok-123", NewAppointmentAt: testNow.Add(-time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_ConcurrentSlotTaken(t *testing.T) {
	repo := &fakeBookingRepo{
		bookings:      []*domain.Booking{confirmedBooking()},
		rescheduleErr: bookingRepo.ErrSlotTaken,
	}
	uc := newTestUseCase(repo, &fakeNotifier{})

	newStart := testDay.Add(14 * time.Hour)
	_, err := uc.Execute(context.Background(), &Request{ConfirmationToken: "tok-123", NewAppointmentAt: newStart})
	assert.ErrorIs(t, err, ErrSlotNotAvailable)
}

func TestExecute_MissingToken(t *testing.T) {
	uc := newTestUseCase(&fakeBookingRepo{}, &fakeNotifier{})

	_, err := uc.Execute(context.Background(), &Request{NewAppointmentAt: testDay.Add(14 * time.Hour)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

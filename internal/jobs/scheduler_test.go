package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
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

type fakeBookingRepo struct {
	due []*domain.Booking

	listFrom time.Time
	listTo   time.Time

	markedSent    []int64
	deletedBefore time.Time
	deleteCount   int64
}

func (r *fakeBookingRepo) ListDueReminders(_ context.Context, from, to time.Time) ([]*domain.Booking, error) {
	r.listFrom = from
	r.listTo = to
	return r.due, nil
}

func (r *fakeBookingRepo) MarkReminderSent(_ context.Context, id int64) error {
	r.markedSent = append(r.markedSent, id)
	return nil
}

func (r *fakeBookingRepo) DeleteStalePending(_ context.Context, before time.Time) (int64, error) {
	r.deletedBefore = before
	return r.deleteCount, nil
}

type fakeNotifier struct {
	failFor map[int64]error
	sent    []int64
}

func (n *fakeNotifier) Notify(_ context.Context, event notifier.Event, booking *domain.Booking) error {
	if err, ok := n.failFor[booking.ID]; ok {
		return err
	}
	n.sent = append(n.sent, booking.ID)
	return nil
}

func newTestScheduler(repo *fakeBookingRepo, n *fakeNotifier) *Scheduler {
	s := NewScheduler(repo, n, nopLogger{}, 24, 30)
	s.timeProvider = &fakeTimeProvider{now: testNow}
	return s
}

func TestRunReminders(t *testing.T) {
	repo := &fakeBookingRepo{
		due: []*domain.Booking{
			{ID: 1, BookingStatus: domain.StatusConfirmed},
			{ID: 2, BookingStatus: domain.StatusConfirmed},
		},
	}
	n := &fakeNotifier{}

	s := newTestScheduler(repo, n)
	s.runReminders()

	// Окно напоминаний: [now, now+24h)
	assert.Equal(t, testNow, repo.listFrom)
	assert.Equal(t, testNow.Add(24*time.Hour), repo.listTo)

	assert.Equal(t, []int64{1, 2}, n.sent)
	assert.Equal(t, []int64{1, 2}, repo.markedSent)
}

func TestRunReminders_FailedDeliveryLeavesFlagUnset(t *testing.T) {
	repo := &fakeBookingRepo{
		due: []*domain.Booking{
			{ID: 1, BookingStatus: domain.StatusConfirmed},
			{ID: 2, BookingStatus: domain.StatusConfirmed},
		},
	}
	n := &fakeNotifier{failFor: map[int64]error{1: errors.New("notifier is down")}}

	s := newTestScheduler(repo, n)
	s.runReminders()

	// Недоставленное напоминание уйдёт при следующем запуске
	assert.Equal(t, []int64{2}, n.sent)
	assert.Equal(t, []int64{2}, repo.markedSent)
}

func TestRunReminders_NothingDue(t *testing.T) {
	repo := &fakeBookingRepo{}
	n := &fakeNotifier{}

	s := newTestScheduler(repo, n)
	s.runReminders()

	assert.Empty(t, n.sent)
	assert.Empty(t, repo.markedSent)
}

func TestRunStalePendingCleanup(t *testing.T) {
	repo := &fakeBookingRepo{deleteCount: 3}

	s := newTestScheduler(repo, &fakeNotifier{})
	s.runStalePendingCleanup()

	assert.Equal(t, testNow.Add(-30*time.Minute), repo.deletedBefore)
}

func TestStartAndStop(t *testing.T) {
	s := newTestScheduler(&fakeBookingRepo{}, &fakeNotifier{})

	require.NoError(t, s.Start())
	s.Stop()
}

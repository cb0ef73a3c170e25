package availability

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	availabilityRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/availability"
	"github.com/m04kA/GNG-SchedulingService/internal/service/availability/models"
	"github.com/m04kA/GNG-SchedulingService/pkg/ptr"
	"github.com/m04kA/GNG-SchedulingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fakeAvailabilityRepo struct {
	nextID  int64
	rules   []*domain.AvailabilityRule
	timeOff []*domain.TimeOff
}

func newFakeRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{nextID: 1}
}

func (r *fakeAvailabilityRepo) CreateRule(_ context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	stored := *rule
	stored.ID = r.nextID
	r.nextID++
	r.rules = append(r.rules, &stored)

	copied := stored
	return &copied, nil
}

func (r *fakeAvailabilityRepo) ListRulesByProvider(_ context.Context, providerID int64) ([]*domain.AvailabilityRule, error) {
	result := make([]*domain.AvailabilityRule, 0)
	for _, rule := range r.rules {
		if rule.ProviderID == providerID {
			result = append(result, rule)
		}
	}
	return result, nil
}

func (r *fakeAvailabilityRepo) ListRulesByProviderAndDay(_ context.Context, providerID int64, day time.Weekday) ([]*domain.AvailabilityRule, error) {
	result := make([]*domain.AvailabilityRule, 0)
	for _, rule := range r.rules {
		if rule.ProviderID == providerID && rule.DayOfWeek == day {
			result = append(result, rule)
		}
	}
	return result, nil
}

func (r *fakeAvailabilityRepo) DeleteRule(_ context.Context, id, providerID int64) error {
	for i, rule := range r.rules {
		if rule.ID == id && rule.ProviderID == providerID {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return nil
		}
	}
	return availabilityRepo.ErrRuleNotFound
}

func (r *fakeAvailabilityRepo) CreateTimeOff(_ context.Context, timeOff *domain.TimeOff) (*domain.TimeOff, error) {
	stored := *timeOff
	stored.ID = r.nextID
	r.nextID++
	r.timeOff = append(r.timeOff, &stored)

	copied := stored
	return &copied, nil
}

func (r *fakeAvailabilityRepo) ListTimeOffByProvider(_ context.Context, providerID int64) ([]*domain.TimeOff, error) {
	result := make([]*domain.TimeOff, 0)
	for _, off := range r.timeOff {
		if off.ProviderID == providerID {
			result = append(result, off)
		}
	}
	return result, nil
}

func (r *fakeAvailabilityRepo) DeleteTimeOff(_ context.Context, id, providerID int64) error {
	for i, off := range r.timeOff {
		if off.ID == id && off.ProviderID == providerID {
			r.timeOff = append(r.timeOff[:i], r.timeOff[i+1:]...)
			return nil
		}
	}
	return availabilityRepo.ErrTimeOffNotFound
}

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
// имитируя конфликт конкурентных serializable транзакций
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

func newTestService() (*Service, *fakeAvailabilityRepo) {
	repo := newFakeRepo()
	return NewService(repo, passthroughTxManager{}, nopLogger{}), repo
}

func validRuleRequest() *models.AddRuleRequest {
	return &models.AddRuleRequest{
		DayOfWeek:   "MONDAY",
		StartTime:   "09:00",
		EndTime:     "17:00",
		IsRecurring: true,
	}
}

func TestAddRule(t *testing.T) {
	svc, repo := newTestService()

	resp, err := svc.AddRule(context.Background(), 1, validRuleRequest())
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Equal(t, "MONDAY", resp.DayOfWeek)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.Equal(t, "17:00", resp.EndTime)
	assert.Len(t, repo.rules, 1)
}

func TestAddRule_OverlapRejected(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.AddRule(context.Background(), 1, validRuleRequest())
	require.NoError(t, err)

	req := validRuleRequest()
	req.StartTime = "16:00"
	req.EndTime = "18:00"

	_, err = svc.AddRule(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrRuleOverlap)
	assert.Len(t, repo.rules, 1)
}

func TestAddRule_ConcurrentOverlappingRules(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, &mutexTxManager{}, nopLogger{})

	const workers = 8

	errs := make(chan error, workers)
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.AddRule(context.Background(), 1, validRuleRequest())
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
		assert.ErrorIs(t, err, ErrRuleOverlap)
	}

	// Только одно правило вставляется, остальные видят пересечение
	assert.Equal(t, 1, succeeded)
	assert.Len(t, repo.rules, 1)
}

func TestAddRule_TouchingRulesAllowed(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddRule(context.Background(), 1, validRuleRequest())
	require.NoError(t, err)

	req := validRuleRequest()
	req.StartTime = "17:00"
	req.EndTime = "19:00"

	_, err = svc.AddRule(context.Background(), 1, req)
	require.NoError(t, err)
}

func TestAddRule_SameTimeOtherDayAllowed(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddRule(context.Background(), 1, validRuleRequest())
	require.NoError(t, err)

	req := validRuleRequest()
	req.DayOfWeek = "TUESDAY"

	_, err = svc.AddRule(context.Background(), 1, req)
	require.NoError(t, err)
}

func TestAddRule_NonRecurringRequiresEffectiveWindow(t *testing.T) {
	svc, _ := newTestService()

	req := validRuleRequest()
	req.IsRecurring = false

	_, err := svc.AddRule(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req.EffectiveFrom = ptr.Ptr("2026-02-02")
	_, err = svc.AddRule(context.Background(), 1, req)
	require.NoError(t, err)
}

func TestAddRule_InvalidInput(t *testing.T) {
	svc, _ := newTestService()

	req := validRuleRequest()
	req.DayOfWeek = "SOMEDAY"
	_, err := svc.AddRule(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRuleRequest()
	req.StartTime = "9am"
	_, err = svc.AddRule(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRuleRequest()
	req.StartTime = "17:00"
	req.EndTime = "09:00"
	_, err = svc.AddRule(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRuleRequest()
	req.EffectiveFrom = ptr.Ptr("2026-03-31")
	req.EffectiveUntil = ptr.Ptr("2026-01-01")
	_, err = svc.AddRule(context.Background(), 1, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteRule(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.AddRule(context.Background(), 1, validRuleRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRule(context.Background(), created.ID, 1))

	// Повторное удаление и чужой провайдер
	assert.ErrorIs(t, svc.DeleteRule(context.Background(), created.ID, 1), ErrRuleNotFound)
	assert.ErrorIs(t, svc.DeleteRule(context.Background(), 999, 1), ErrRuleNotFound)
}

func TestDeleteRule_OtherProvider(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.AddRule(context.Background(), 1, validRuleRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteRule(context.Background(), created.ID, 2), ErrRuleNotFound)
}

func TestAddTimeOff(t *testing.T) {
	svc, repo := newTestService()

	resp, err := svc.AddTimeOff(context.Background(), 1, &models.AddTimeOffRequest{
		StartDateTime: "2026-02-10T12:00:00Z",
		EndDateTime:   "2026-02-10T14:00:00Z",
		Reason:        ptr.Ptr("обед"),
	})
	require.NoError(t, err)

	assert.NotZero(t, resp.ID)
	assert.Len(t, repo.timeOff, 1)
	require.NotNil(t, resp.Reason)
	assert.Equal(t, "обед", *resp.Reason)
}

func TestAddTimeOff_InvalidInterval(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddTimeOff(context.Background(), 1, &models.AddTimeOffRequest{
		StartDateTime: "2026-02-10T14:00:00Z",
		EndDateTime:   "2026-02-10T12:00:00Z",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddTimeOff(context.Background(), 1, &models.AddTimeOffRequest{
		StartDateTime: "not-a-date",
		EndDateTime:   "2026-02-10T12:00:00Z",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListRulesAndTimeOff(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddRule(context.Background(), 1, validRuleRequest())
	require.NoError(t, err)

	otherDay := validRuleRequest()
	otherDay.DayOfWeek = "FRIDAY"
	_, err = svc.AddRule(context.Background(), 1, otherDay)
	require.NoError(t, err)

	rules, err := svc.ListRules(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, rules.Rules, 2)

	rules, err = svc.ListRules(context.Background(), 2)
	require.NoError(t, err)
	assert.Empty(t, rules.Rules)

	_, err = svc.AddTimeOff(context.Background(), 1, &models.AddTimeOffRequest{
		StartDateTime: "2026-02-10T12:00:00Z",
		EndDateTime:   "2026-02-10T14:00:00Z",
	})
	require.NoError(t, err)

	periods, err := svc.ListTimeOff(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, periods.TimeOff, 1)
}

func TestDeleteTimeOff(t *testing.T) {
	svc, _ := newTestService()

	created, err := svc.AddTimeOff(context.Background(), 1, &models.AddTimeOffRequest{
		StartDateTime: "2026-02-10T12:00:00Z",
		EndDateTime:   "2026-02-10T14:00:00Z",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTimeOff(context.Background(), created.ID, 1))
	assert.ErrorIs(t, svc.DeleteTimeOff(context.Background(), created.ID, 1), ErrTimeOffNotFound)
}

// types.TimeString используется сервисом напрямую, проверяем граничное значение
func TestAddRule_EndOfDayRule(t *testing.T) {
	svc, _ := newTestService()

	req := validRuleRequest()
	req.StartTime = "22:00"
	req.EndTime = "24:00"

	resp, err := svc.AddRule(context.Background(), 1, req)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("24:00").String(), resp.EndTime)
}

package availability

import (
	"context"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
)

// AvailabilityRepository интерфейс репозитория календаря доступности
type AvailabilityRepository interface {
	CreateRule(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error)
	ListRulesByProvider(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, error)
	ListRulesByProviderAndDay(ctx context.Context, providerID int64, day time.Weekday) ([]*domain.AvailabilityRule, error)
	DeleteRule(ctx context.Context, id, providerID int64) error

	CreateTimeOff(ctx context.Context, timeOff *domain.TimeOff) (*domain.TimeOff, error)
	ListTimeOffByProvider(ctx context.Context, providerID int64) ([]*domain.TimeOff, error)
	DeleteTimeOff(ctx context.Context, id, providerID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

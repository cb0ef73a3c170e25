package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByToken(ctx context.Context, token string) (*domain.Booking, error)
	GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error)
	Reschedule(ctx context.Context, id int64, newStart time.Time) error
}

// AvailabilityRepository интерфейс репозитория календаря доступности
type AvailabilityRepository interface {
	ListRulesByProviderAndDay(ctx context.Context, providerID int64, day time.Weekday) ([]*domain.AvailabilityRule, error)
	ListTimeOffInRange(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.TimeOff, error)
}

// NotifierClient интерфейс клиента сервиса уведомлений
type NotifierClient interface {
	NotifyBestEffort(ctx context.Context, event notifier.Event, booking *domain.Booking)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error)
}

// AvailabilityRepository интерфейс репозитория календаря доступности
type AvailabilityRepository interface {
	ListRulesByProviderAndDay(ctx context.Context, providerID int64, day time.Weekday) ([]*domain.AvailabilityRule, error)
	ListTimeOffInRange(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.TimeOff, error)
}

// SessionTypeRepository интерфейс репозитория каталога типов сессий
type SessionTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.SessionType, error)
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

package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/availability"
	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	sessionTypeRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/sessiontype"
)

// UseCase use case для получения доступных слотов провайдера
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	sessionTypeRepo  SessionTypeRepository
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	sessionTypeRepo SessionTypeRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		sessionTypeRepo:  sessionTypeRepo,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case получения доступных слотов
// Чтение без блокировок: список слотов - подсказка для гостя, финальная
// проверка доступности происходит при создании бронирования
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: provider=%d, sessionType=%d, date=%s",
		req.ProviderID, req.SessionTypeID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем тип сессии из каталога
	sessionType, err := uc.sessionTypeRepo.GetByID(ctx, req.SessionTypeID)
	if err != nil {
		if errors.Is(err, sessionTypeRepo.ErrSessionTypeNotFound) {
			uc.logger.Warn("GetAvailableSlots: session type id=%d not found", req.SessionTypeID)
			return nil, ErrSessionTypeNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get session type id=%d: %v", req.SessionTypeID, err)
		return nil, fmt.Errorf("%w: failed to get session type: %v", ErrInternal, err)
	}

	if !sessionType.IsActive {
		uc.logger.Warn("GetAvailableSlots: session type id=%d is inactive", req.SessionTypeID)
		return nil, ErrSessionTypeInactive
	}

	// 4. Получаем правила доступности провайдера на этот день недели
	rules, err := uc.availabilityRepo.ListRulesByProviderAndDay(ctx, req.ProviderID, req.Date.Weekday())
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get availability rules: %v", err)
		return nil, fmt.Errorf("%w: failed to get availability rules: %v", ErrInternal, err)
	}

	dayStart := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, req.Date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	// 5. Получаем периоды недоступности, затрагивающие эту дату
	timeOff, err := uc.availabilityRepo.ListTimeOffInRange(ctx, req.ProviderID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get time off: %v", err)
		return nil, fmt.Errorf("%w: failed to get time off: %v", ErrInternal, err)
	}

	// 6. Вычисляем свободные диапазоны дня
	freeRanges, err := availability.FreeRanges(req.Date, rules, timeOff)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to compute free ranges: %v", err)
		return nil, fmt.Errorf("%w: failed to compute free ranges: %v", ErrInternal, err)
	}

	// 7. Генерируем слоты по длительности сессии
	slots := generateSlots(freeRanges, sessionType.DurationMinutes, now)

	// 8. Убираем слоты, занятые активными бронированиями
	if len(slots) > 0 {
		filter := domain.ProviderBookingsFilter{
			ProviderID:      req.ProviderID,
			From:            &dayStart,
			To:              &dayEnd,
			IncludeInactive: false,
		}

		bookings, err := uc.bookingRepo.GetByProviderWithFilter(ctx, filter)
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get bookings: %v", err)
			return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		slots = filterBookedSlots(slots, bookings)
	}

	uc.logger.Info("GetAvailableSlots: %d slots available for provider=%d on %s",
		len(slots), req.ProviderID, req.Date.Format(domain.DateFormat))

	return &Response{
		Date:            req.Date,
		ProviderID:      req.ProviderID,
		SessionTypeID:   req.SessionTypeID,
		DurationMinutes: sessionType.DurationMinutes,
		Slots:           slots,
	}, nil
}

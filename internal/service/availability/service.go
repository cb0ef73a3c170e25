package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	availabilityRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/availability"
	"github.com/m04kA/GNG-SchedulingService/internal/service/availability/models"
	"github.com/m04kA/GNG-SchedulingService/pkg/txmanager"
	"github.com/m04kA/GNG-SchedulingService/pkg/types"
)

// Service сервис управления календарём доступности провайдера
type Service struct {
	availabilityRepo AvailabilityRepository
	txManager        TransactionManager
	logger           Logger
}

// NewService создает новый экземпляр сервиса доступности
func NewService(availabilityRepo AvailabilityRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		txManager:        txManager,
		logger:           logger,
	}
}

// AddRule добавляет правило доступности провайдера
// Правило не должно пересекаться с существующими правилами того же дня недели
func (s *Service) AddRule(ctx context.Context, providerID int64, req *models.AddRuleRequest) (*models.RuleResponse, error) {
	s.logger.Info("AddRule: adding rule for provider=%d, day=%s", providerID, req.DayOfWeek)

	rule, err := s.buildRule(providerID, req)
	if err != nil {
		s.logger.Warn("AddRule: invalid rule for provider=%d: %v", providerID, err)
		return nil, err
	}

	var created *domain.AvailabilityRule

	// Проверка пересечений и вставка идут в одной serializable
	// транзакции: два конкурентных запроса не вставят пересекающиеся
	// правила
	err = s.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		existing, err := s.availabilityRepo.ListRulesByProviderAndDay(ctx, providerID, rule.DayOfWeek)
		if err != nil {
			s.logger.Error("AddRule: repository error for provider=%d: %v", providerID, err)
			return fmt.Errorf("%w: AddRule - repository error: %v", ErrInternal, err)
		}

		for _, other := range existing {
			if rule.OverlapsRule(other) {
				s.logger.Warn("AddRule: rule overlaps existing rule id=%d for provider=%d", other.ID, providerID)
				return ErrRuleOverlap
			}
		}

		created, err = s.availabilityRepo.CreateRule(ctx, rule)
		if err != nil {
			s.logger.Error("AddRule: repository error for provider=%d: %v", providerID, err)
			return fmt.Errorf("%w: AddRule - repository error: %v", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if txmanager.IsConcurrencyConflict(err) {
			s.logger.Warn("AddRule: concurrency conflict for provider=%d", providerID)
			return nil, ErrBusy
		}
		return nil, err
	}

	s.logger.Info("AddRule: successfully created rule id=%d for provider=%d", created.ID, providerID)
	return models.FromDomainRule(created), nil
}

// ListRules получает все правила доступности провайдера
func (s *Service) ListRules(ctx context.Context, providerID int64) (*models.RuleListResponse, error) {
	rules, err := s.availabilityRepo.ListRulesByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("ListRules: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListRules - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainRuleList(rules), nil
}

// DeleteRule удаляет правило доступности провайдера
// Уже существующие бронирования при этом не затрагиваются
func (s *Service) DeleteRule(ctx context.Context, ruleID, providerID int64) error {
	s.logger.Info("DeleteRule: deleting rule id=%d for provider=%d", ruleID, providerID)

	err := s.availabilityRepo.DeleteRule(ctx, ruleID, providerID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrRuleNotFound) {
			s.logger.Warn("DeleteRule: rule id=%d not found for provider=%d", ruleID, providerID)
			return ErrRuleNotFound
		}
		s.logger.Error("DeleteRule: repository error for rule id=%d: %v", ruleID, err)
		return fmt.Errorf("%w: DeleteRule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteRule: successfully deleted rule id=%d for provider=%d", ruleID, providerID)
	return nil
}

// AddTimeOff добавляет период недоступности провайдера
func (s *Service) AddTimeOff(ctx context.Context, providerID int64, req *models.AddTimeOffRequest) (*models.TimeOffResponse, error) {
	s.logger.Info("AddTimeOff: adding time off for provider=%d", providerID)

	start, err := time.Parse(time.RFC3339, req.StartDateTime)
	if err != nil {
		s.logger.Warn("AddTimeOff: invalid startDateTime=%s for provider=%d", req.StartDateTime, providerID)
		return nil, fmt.Errorf("%w: invalid startDateTime format", ErrInvalidInput)
	}

	end, err := time.Parse(time.RFC3339, req.EndDateTime)
	if err != nil {
		s.logger.Warn("AddTimeOff: invalid endDateTime=%s for provider=%d", req.EndDateTime, providerID)
		return nil, fmt.Errorf("%w: invalid endDateTime format", ErrInvalidInput)
	}

	if !start.Before(end) {
		s.logger.Warn("AddTimeOff: startDateTime is not before endDateTime for provider=%d", providerID)
		return nil, fmt.Errorf("%w: startDateTime must be before endDateTime", ErrInvalidInput)
	}

	timeOff := &domain.TimeOff{
		ProviderID:    providerID,
		StartDateTime: start,
		EndDateTime:   end,
		Reason:        req.Reason,
	}

	created, err := s.availabilityRepo.CreateTimeOff(ctx, timeOff)
	if err != nil {
		s.logger.Error("AddTimeOff: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: AddTimeOff - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("AddTimeOff: successfully created time off id=%d for provider=%d", created.ID, providerID)
	return models.FromDomainTimeOff(created), nil
}

// ListTimeOff получает все периоды недоступности провайдера
func (s *Service) ListTimeOff(ctx context.Context, providerID int64) (*models.TimeOffListResponse, error) {
	periods, err := s.availabilityRepo.ListTimeOffByProvider(ctx, providerID)
	if err != nil {
		s.logger.Error("ListTimeOff: repository error for provider=%d: %v", providerID, err)
		return nil, fmt.Errorf("%w: ListTimeOff - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainTimeOffList(periods), nil
}

// DeleteTimeOff удаляет период недоступности провайдера
func (s *Service) DeleteTimeOff(ctx context.Context, timeOffID, providerID int64) error {
	s.logger.Info("DeleteTimeOff: deleting time off id=%d for provider=%d", timeOffID, providerID)

	err := s.availabilityRepo.DeleteTimeOff(ctx, timeOffID, providerID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrTimeOffNotFound) {
			s.logger.Warn("DeleteTimeOff: time off id=%d not found for provider=%d", timeOffID, providerID)
			return ErrTimeOffNotFound
		}
		s.logger.Error("DeleteTimeOff: repository error for time off id=%d: %v", timeOffID, err)
		return fmt.Errorf("%w: DeleteTimeOff - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteTimeOff: successfully deleted time off id=%d for provider=%d", timeOffID, providerID)
	return nil
}

// Вспомогательные методы

// buildRule валидирует запрос и собирает domain модель правила
func (s *Service) buildRule(providerID int64, req *models.AddRuleRequest) (*domain.AvailabilityRule, error) {
	day, err := domain.ParseWeekday(req.DayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid dayOfWeek", ErrInvalidInput)
	}

	startTime := types.TimeString(req.StartTime)
	if err := startTime.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid startTime format", ErrInvalidInput)
	}

	endTime := types.TimeString(req.EndTime)
	if err := endTime.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid endTime format", ErrInvalidInput)
	}

	if !startTime.IsBefore(endTime) {
		return nil, fmt.Errorf("%w: startTime must be before endTime", ErrInvalidInput)
	}

	rule := &domain.AvailabilityRule{
		ProviderID:  providerID,
		DayOfWeek:   day,
		StartTime:   startTime,
		EndTime:     endTime,
		IsRecurring: req.IsRecurring,
	}

	if req.EffectiveFrom != nil {
		from, err := time.Parse(domain.DateFormat, *req.EffectiveFrom)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid effectiveFrom format", ErrInvalidInput)
		}
		rule.EffectiveFrom = &from
	}

	if req.EffectiveUntil != nil {
		until, err := time.Parse(domain.DateFormat, *req.EffectiveUntil)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid effectiveUntil format", ErrInvalidInput)
		}
		rule.EffectiveUntil = &until
	}

	if rule.EffectiveFrom != nil && rule.EffectiveUntil != nil &&
		rule.EffectiveUntil.Before(*rule.EffectiveFrom) {
		return nil, fmt.Errorf("%w: effectiveUntil must not be before effectiveFrom", ErrInvalidInput)
	}

	// Разовое правило без окна действия никогда бы не применилось
	if !rule.IsRecurring && rule.EffectiveFrom == nil && rule.EffectiveUntil == nil {
		return nil, fmt.Errorf("%w: non-recurring rule requires effectiveFrom or effectiveUntil", ErrInvalidInput)
	}

	return rule, nil
}

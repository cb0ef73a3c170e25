package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/availability"
	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/GNG-SchedulingService/pkg/txmanager"
)

// UseCase use case для переноса бронирования на новый слот
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	notifier         NotifierClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	notifierClient NotifierClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		notifier:         notifierClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case переноса бронирования
// Новый слот проверяется так же, как при создании, в сериализуемой
// транзакции; собственный интервал бронирования при проверке исключается.
// Токен, стоимость и статус оплаты при переносе не меняются
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: newAppointmentAt=%s", req.NewAppointmentAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	if !req.NewAppointmentAt.After(now) {
		uc.logger.Warn("RescheduleBooking: newAppointmentAt=%s is in the past", req.NewAppointmentAt.Format(time.RFC3339))
		return nil, ErrInvalidDate
	}

	// Переменная для хранения результата
	var result *domain.Booking

	// 3. Выполняем операции с БД в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Получаем бронирование с блокировкой (FOR UPDATE)
		booking, err := uc.bookingRepo.GetByToken(txCtx, req.ConfirmationToken)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("RescheduleBooking: booking not found by token")
				return ErrBookingNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get booking: %v", err)
			return fmt.Errorf("%w: failed to get booking: %v", ErrInternal, err)
		}

		// 3.2. Переносить можно только подтверждённое бронирование
		if !booking.CanBeRescheduled() {
			uc.logger.Warn("RescheduleBooking: booking id=%d in status=%s cannot be rescheduled",
				booking.ID, booking.BookingStatus)
			return ErrCannotReschedule
		}

		newEnd := req.NewAppointmentAt.Add(time.Duration(booking.DurationMinutes) * time.Minute)

		// 3.3. Новый интервал должен попадать в рабочие часы провайдера
		if err := uc.checkAvailability(txCtx, booking.ProviderID, req.NewAppointmentAt, newEnd); err != nil {
			return err
		}

		// 3.4. Новый интервал не должен пересекаться с другими бронированиями
		if err := uc.checkNoOverlap(txCtx, booking.ProviderID, req.NewAppointmentAt, newEnd, booking.ID); err != nil {
			return err
		}

		// 3.5. Переносим бронирование
		if err := uc.bookingRepo.Reschedule(txCtx, booking.ID, req.NewAppointmentAt); err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				uc.logger.Warn("RescheduleBooking: new slot taken by concurrent booking")
				return ErrSlotNotAvailable
			}
			uc.logger.Error("RescheduleBooking: failed to reschedule booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to reschedule booking: %v", ErrInternal, err)
		}

		booking.AppointmentAt = req.NewAppointmentAt
		result = booking
		return nil
	})

	if err != nil {
		if txmanager.IsConcurrencyConflict(err) {
			uc.logger.Warn("RescheduleBooking: concurrency conflict: %v", err)
			return nil, ErrBusy
		}
		return nil, err
	}

	// 4. Уведомляем гостя о переносе
	uc.notifier.NotifyBestEffort(ctx, notifier.EventBookingRescheduled, result)

	uc.logger.Info("RescheduleBooking: successfully rescheduled booking id=%d to %s",
		result.ID, result.AppointmentAt.Format(time.RFC3339))

	return &Response{
		BookingID:         result.ID,
		ConfirmationToken: result.ConfirmationToken,
		AppointmentAt:     result.AppointmentAt,
		DurationMinutes:   result.DurationMinutes,
		Amount:            result.Amount,
		Modality:          string(result.Modality),
		BookingStatus:     string(result.BookingStatus),
		PaymentStatus:     string(result.PaymentStatus),
	}, nil
}

// checkAvailability проверяет, что интервал [start, end) целиком попадает
// в свободные рабочие часы провайдера на дату начала приёма
func (uc *UseCase) checkAvailability(ctx context.Context, providerID int64, start, end time.Time) error {
	rules, err := uc.availabilityRepo.ListRulesByProviderAndDay(ctx, providerID, start.Weekday())
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get availability rules: %v", err)
		return fmt.Errorf("%w: failed to get availability rules: %v", ErrInternal, err)
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	timeOff, err := uc.availabilityRepo.ListTimeOffInRange(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get time off: %v", err)
		return fmt.Errorf("%w: failed to get time off: %v", ErrInternal, err)
	}

	freeRanges, err := availability.FreeRanges(start, rules, timeOff)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to compute free ranges: %v", err)
		return fmt.Errorf("%w: failed to compute free ranges: %v", ErrInternal, err)
	}

	if !availability.ContainsInterval(freeRanges, start, end) {
		uc.logger.Warn("RescheduleBooking: interval outside provider=%d availability", providerID)
		return ErrSlotNotAvailable
	}

	return nil
}

// checkNoOverlap проверяет, что интервал не пересекается с активными
// бронированиями провайдера, исключая собственное бронирование
func (uc *UseCase) checkNoOverlap(ctx context.Context, providerID int64, start, end time.Time, excludeID int64) error {
	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	filter := domain.ProviderBookingsFilter{
		ProviderID:      providerID,
		From:            &dayStart,
		To:              &dayEnd,
		IncludeInactive: false,
	}

	bookings, err := uc.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		uc.logger.Error("RescheduleBooking: failed to get bookings: %v", err)
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	for _, other := range bookings {
		if other.ID == excludeID {
			continue
		}
		if other.Overlaps(start, end) {
			uc.logger.Warn("RescheduleBooking: interval overlaps booking id=%d", other.ID)
			return ErrSlotNotAvailable
		}
	}

	return nil
}

package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/GNG-SchedulingService/internal/availability"
	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/booking"
	sessionTypeRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/sessiontype"
	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/GNG-SchedulingService/pkg/ptr"
	"github.com/m04kA/GNG-SchedulingService/pkg/txmanager"
)

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo      BookingRepository
	availabilityRepo AvailabilityRepository
	sessionTypeRepo  SessionTypeRepository
	payments         PaymentsClient
	notifier         NotifierClient
	txManager        TransactionManager
	timeProvider     TimeProvider
	logger           Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	availabilityRepo AvailabilityRepository,
	sessionTypeRepo SessionTypeRepository,
	paymentsClient PaymentsClient,
	notifierClient NotifierClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:      bookingRepo,
		availabilityRepo: availabilityRepo,
		sessionTypeRepo:  sessionTypeRepo,
		payments:         paymentsClient,
		notifier:         notifierClient,
		txManager:        txManager,
		timeProvider:     &RealTimeProvider{},
		logger:           logger,
	}
}

// Execute выполняет use case создания бронирования
// Проверка доступности и вставка выполняются в сериализуемой транзакции,
// чтобы два гостя не забронировали один слот
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: provider=%d, sessionType=%d, appointmentAt=%s",
		req.ProviderID, req.SessionTypeID, req.AppointmentAt.Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	if !req.AppointmentAt.After(now) {
		uc.logger.Warn("CreateBooking: appointmentAt=%s is in the past", req.AppointmentAt.Format(time.RFC3339))
		return nil, ErrInvalidDate
	}

	// 3. Получаем тип сессии из каталога
	sessionType, err := uc.sessionTypeRepo.GetByID(ctx, req.SessionTypeID)
	if err != nil {
		if errors.Is(err, sessionTypeRepo.ErrSessionTypeNotFound) {
			uc.logger.Warn("CreateBooking: session type id=%d not found", req.SessionTypeID)
			return nil, ErrSessionTypeNotFound
		}
		uc.logger.Error("CreateBooking: failed to get session type id=%d: %v", req.SessionTypeID, err)
		return nil, fmt.Errorf("%w: failed to get session type: %v", ErrInternal, err)
	}

	if !sessionType.IsActive {
		uc.logger.Warn("CreateBooking: session type id=%d is inactive", req.SessionTypeID)
		return nil, ErrSessionTypeInactive
	}

	appointmentEnd := req.AppointmentAt.Add(time.Duration(sessionType.DurationMinutes) * time.Minute)

	// Переменная для хранения результата
	var result *domain.Booking

	// 4. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Проверяем, что интервал попадает в рабочие часы провайдера
		if err := uc.checkAvailability(txCtx, req.ProviderID, req.AppointmentAt, appointmentEnd); err != nil {
			return err
		}

		// 4.2. Получаем активные бронирования провайдера на эту дату с блокировкой (FOR UPDATE)
		if err := uc.checkNoOverlap(txCtx, req.ProviderID, req.AppointmentAt, appointmentEnd, 0); err != nil {
			return err
		}

		// 4.3. Создаем бронирование со снапшотом данных каталога
		booking := &domain.Booking{
			ProviderID:        req.ProviderID,
			SessionTypeID:     req.SessionTypeID,
			AppointmentAt:     req.AppointmentAt,
			DurationMinutes:   sessionType.DurationMinutes,
			FirstName:         req.FirstName,
			LastName:          req.LastName,
			Email:             req.Email,
			Phone:             req.Phone,
			Notes:             req.Notes,
			Modality:          sessionType.Modality,
			Amount:            sessionType.Price,
			PaymentStatus:     domain.PaymentPending,
			BookingStatus:     domain.StatusPendingPayment,
			ConfirmationToken: uuid.NewString(),
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrSlotTaken) {
				uc.logger.Warn("CreateBooking: slot taken by concurrent booking, provider=%d", req.ProviderID)
				return ErrSlotNotAvailable
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if txmanager.IsConcurrencyConflict(err) {
			uc.logger.Warn("CreateBooking: concurrency conflict for provider=%d: %v", req.ProviderID, err)
			return nil, ErrBusy
		}
		return nil, err
	}

	// 5. Создаем платёжную сессию; при неудаче откатываем бронирование,
	// чтобы слот не остался занят без возможности оплаты
	description := fmt.Sprintf("%s, %s", sessionType.Name, req.AppointmentAt.Format("2 Jan 2006 15:04"))
	checkout, err := uc.payments.CreateCheckoutSession(result.Amount, description, req.Email, result.ConfirmationToken)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to create checkout session for booking id=%d: %v", result.ID, err)
		if delErr := uc.bookingRepo.Delete(ctx, result.ID); delErr != nil {
			uc.logger.Error("CreateBooking: failed to roll back booking id=%d: %v", result.ID, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrPaymentSetup, err)
	}

	if err := uc.bookingRepo.SetCheckoutSession(ctx, result.ID, checkout.ID); err != nil {
		uc.logger.Error("CreateBooking: failed to store checkout session for booking id=%d: %v", result.ID, err)
		return nil, fmt.Errorf("%w: failed to store checkout session: %v", ErrInternal, err)
	}
	result.CheckoutSessionID = ptr.Ptr(checkout.ID)

	// 6. Уведомляем гостя о созданном бронировании
	uc.notifier.NotifyBestEffort(ctx, notifier.EventBookingCreated, result)

	uc.logger.Info("CreateBooking: successfully created booking id=%d, token=%s", result.ID, result.ConfirmationToken)

	// Конвертируем в response
	return &Response{
		BookingID:         result.ID,
		ConfirmationToken: result.ConfirmationToken,
		CheckoutURL:       checkout.URL,
		AppointmentAt:     result.AppointmentAt,
		DurationMinutes:   result.DurationMinutes,
		Amount:            result.Amount,
		Modality:          string(result.Modality),
		BookingStatus:     string(result.BookingStatus),
		PaymentStatus:     string(result.PaymentStatus),
		CreatedAt:         result.CreatedAt,
	}, nil
}

// checkAvailability проверяет, что интервал [start, end) целиком попадает
// в свободные рабочие часы провайдера на дату начала приёма
func (uc *UseCase) checkAvailability(ctx context.Context, providerID int64, start, end time.Time) error {
	rules, err := uc.availabilityRepo.ListRulesByProviderAndDay(ctx, providerID, start.Weekday())
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get availability rules: %v", err)
		return fmt.Errorf("%w: failed to get availability rules: %v", ErrInternal, err)
	}

	dayStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	timeOff, err := uc.availabilityRepo.ListTimeOffInRange(ctx, providerID, dayStart, dayEnd)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get time off: %v", err)
		return fmt.Errorf("%w: failed to get time off: %v", ErrInternal, err)
	}

	freeRanges, err := availability.FreeRanges(start, rules, timeOff)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to compute free ranges: %v", err)
		return fmt.Errorf("%w: failed to compute free ranges: %v", ErrInternal, err)
	}

	if !availability.ContainsInterval(freeRanges, start, end) {
		uc.logger.Warn("CreateBooking: interval outside provider=%d availability", providerID)
		return ErrSlotNotAvailable
	}

	return nil
}

// checkNoOverlap проверяет, что интервал не пересекается с активными
// бронированиями провайдера; excludeID исключает собственное бронирование
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
		uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	for _, other := range bookings {
		if other.ID == excludeID {
			continue
		}
		if other.Overlaps(start, end) {
			uc.logger.Warn("CreateBooking: interval overlaps booking id=%d", other.ID)
			return ErrSlotNotAvailable
		}
	}

	return nil
}

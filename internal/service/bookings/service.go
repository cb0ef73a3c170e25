package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	bookingRepo "github.com/m04kA/GNG-SchedulingService/internal/infra/storage/booking"
	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
	"github.com/m04kA/GNG-SchedulingService/internal/service/bookings/models"
)

const cancelledByGuestReason = "cancelled by guest"

// Service сервис жизненного цикла бронирований
type Service struct {
	bookingRepo  BookingRepository
	payments     PaymentsClient
	notifier     NotifierClient
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger

	// cancellationNotice минимальный срок до приёма, при котором
	// отмена возвращает полную стоимость
	cancellationNotice time.Duration
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	bookingRepo BookingRepository,
	payments PaymentsClient,
	notifierClient NotifierClient,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
	cancellationNoticeHours int,
) *Service {
	return &Service{
		bookingRepo:        bookingRepo,
		payments:           payments,
		notifier:           notifierClient,
		txManager:          txManager,
		timeProvider:       timeProvider,
		logger:             logger,
		cancellationNotice: time.Duration(cancellationNoticeHours) * time.Hour,
	}
}

// GetByToken получает бронирование по confirmation token
// Токен - единственный способ доступа гостя к своему бронированию
func (s *Service) GetByToken(ctx context.Context, token string) (*models.BookingResponse, error) {
	booking, err := s.getByToken(ctx, "GetByToken", token)
	if err != nil {
		return nil, err
	}

	return models.FromDomainBooking(booking), nil
}

// Cancel отменяет бронирование гостя по confirmation token
// Полный возврат положен, если оплата завершена и до приёма осталось
// не меньше установленного срока; иначе возврата нет
//
// Отказ платёжной системы в возврате не блокирует отмену: бронирование
// отменяется, а возврат придётся провести вручную
func (s *Service) Cancel(ctx context.Context, token string, req *models.CancelBookingRequest) (*models.CancelBookingResponse, error) {
	var (
		cancelled    *domain.Booking
		refundIssued bool
	)

	// Чтение по токену и отмена идут в одной транзакции: строка
	// блокируется на время проверки статуса, и конкурентная отмена
	// того же токена увидит уже отменённое бронирование
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.getByToken(ctx, "Cancel", token)
		if err != nil {
			return err
		}

		if !booking.CanBeCancelled() {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s", booking.ID, booking.BookingStatus)
			return ErrCannotCancel
		}

		paymentStatus := booking.PaymentStatus

		if s.refundDue(booking) {
			if err := s.payments.Refund(*booking.CheckoutSessionID); err != nil {
				s.logger.Error("Cancel: refund failed for booking id=%d: %v", booking.ID, err)
			} else {
				refundIssued = true
				paymentStatus = domain.PaymentRefunded
				s.logger.Info("Cancel: refund issued for booking id=%d", booking.ID)
			}
		}

		reason := req.Reason
		if reason == "" {
			reason = cancelledByGuestReason
		}

		if err := s.bookingRepo.Cancel(ctx, booking.ID, paymentStatus, reason); err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			s.logger.Error("Cancel: repository error for booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
		}

		booking.BookingStatus = domain.StatusCancelled
		booking.PaymentStatus = paymentStatus
		booking.CancellationReason = &reason
		now := s.timeProvider.Now()
		booking.CancelledAt = &now
		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyBestEffort(ctx, notifier.EventBookingCancelled, cancelled)

	s.logger.Info("Cancel: successfully cancelled booking id=%d, refund=%t", cancelled.ID, refundIssued)
	return &models.CancelBookingResponse{
		Booking:      models.FromDomainBooking(cancelled),
		RefundIssued: refundIssued,
	}, nil
}

// ConfirmPaymentBySession подтверждает оплату бронирования по ID платёжной
// сессии. Повторная доставка события для уже подтверждённого бронирования
// не является ошибкой
func (s *Service) ConfirmPaymentBySession(ctx context.Context, sessionID string) error {
	s.logger.Info("ConfirmPaymentBySession: confirming payment for session=%s", sessionID)

	var confirmed *domain.Booking

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByCheckoutSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: ConfirmPaymentBySession - repository error: %v", ErrInternal, err)
		}

		// Повторная доставка webhook-события
		if booking.BookingStatus == domain.StatusConfirmed && booking.PaymentStatus == domain.PaymentCompleted {
			s.logger.Info("ConfirmPaymentBySession: booking id=%d already confirmed", booking.ID)
			return nil
		}

		if booking.BookingStatus != domain.StatusPendingPayment {
			s.logger.Warn("ConfirmPaymentBySession: booking id=%d in status=%s, cannot confirm", booking.ID, booking.BookingStatus)
			return ErrInvalidState
		}

		if err := s.bookingRepo.ConfirmPayment(ctx, booking.ID); err != nil {
			return fmt.Errorf("%w: ConfirmPaymentBySession - repository error: %v", ErrInternal, err)
		}

		booking.BookingStatus = domain.StatusConfirmed
		booking.PaymentStatus = domain.PaymentCompleted
		confirmed = booking
		return nil
	})

	if err != nil {
		return err
	}

	if confirmed != nil {
		s.notifier.NotifyBestEffort(ctx, notifier.EventBookingConfirmed, confirmed)
		s.logger.Info("ConfirmPaymentBySession: booking id=%d confirmed", confirmed.ID)
	}

	return nil
}

// FailPaymentBySession отменяет бронирование после неуспешной оплаты,
// освобождая слот для других гостей
func (s *Service) FailPaymentBySession(ctx context.Context, sessionID, reason string) error {
	s.logger.Info("FailPaymentBySession: failing payment for session=%s", sessionID)

	return s.txManager.Do(ctx, func(ctx context.Context) error {
		booking, err := s.bookingRepo.GetByCheckoutSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("%w: FailPaymentBySession - repository error: %v", ErrInternal, err)
		}

		// Повторная доставка webhook-события
		if booking.BookingStatus == domain.StatusCancelled {
			return nil
		}

		if booking.BookingStatus != domain.StatusPendingPayment {
			s.logger.Warn("FailPaymentBySession: booking id=%d in status=%s, ignoring", booking.ID, booking.BookingStatus)
			return ErrInvalidState
		}

		if err := s.bookingRepo.Cancel(ctx, booking.ID, domain.PaymentFailed, reason); err != nil {
			return fmt.Errorf("%w: FailPaymentBySession - repository error: %v", ErrInternal, err)
		}

		s.logger.Info("FailPaymentBySession: booking id=%d cancelled after failed payment", booking.ID)
		return nil
	})
}

// GetProviderBookings получает бронирования провайдера с фильтрацией
// по периоду, статусу и включению отменённых
func (s *Service) GetProviderBookings(ctx context.Context, req *models.GetProviderBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetProviderBookings: fetching bookings for provider=%d", req.ProviderID)

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetProviderBookings: invalid filter for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: invalid status filter", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.GetByProviderWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetProviderBookings: repository error for provider=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: GetProviderBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetProviderBookings: successfully fetched %d bookings for provider=%d", len(bookings), req.ProviderID)
	return models.FromDomainBookingList(bookings), nil
}

// UpdateStatus отмечает завершение приёма или неявку гостя
// Доступно только провайдеру-владельцу и только для подтверждённых бронирований
func (s *Service) UpdateStatus(ctx context.Context, bookingID, providerID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by provider=%d", bookingID, req.Status, providerID)

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, bookingID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	// Провайдер фиксирует только итог приёма
	if newStatus != domain.StatusCompleted && newStatus != domain.StatusNoShow {
		s.logger.Warn("UpdateStatus: status=%s is not allowed for provider updates", newStatus)
		return fmt.Errorf("%w: status must be %s or %s", ErrInvalidInput, domain.StatusCompleted, domain.StatusNoShow)
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%d not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if booking.ProviderID != providerID {
		s.logger.Warn("UpdateStatus: provider=%d has no access to booking id=%d", providerID, bookingID)
		return ErrAccessDenied
	}

	if booking.BookingStatus != domain.StatusConfirmed {
		s.logger.Warn("UpdateStatus: booking id=%d in status=%s, cannot finalize", bookingID, booking.BookingStatus)
		return ErrInvalidState
	}

	// Итог фиксируется только после времени начала приёма
	if booking.AppointmentAt.After(s.timeProvider.Now()) {
		s.logger.Warn("UpdateStatus: booking id=%d appointment has not started yet", bookingID)
		return ErrInvalidState
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%d: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", bookingID, newStatus)
	return nil
}

// Вспомогательные методы

func (s *Service) getByToken(ctx context.Context, op, token string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking not found by token", op)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	return booking, nil
}

// refundDue проверяет, положен ли полный возврат при отмене
// Граница включительная: отмена ровно за установленный срок до приёма
// ещё даёт полный возврат
func (s *Service) refundDue(booking *domain.Booking) bool {
	if booking.PaymentStatus != domain.PaymentCompleted {
		return false
	}
	if booking.CheckoutSessionID == nil || *booking.CheckoutSessionID == "" {
		return false
	}

	untilAppointment := booking.AppointmentAt.Sub(s.timeProvider.Now())
	return untilAppointment >= s.cancellationNotice
}

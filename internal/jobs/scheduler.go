package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m04kA/GNG-SchedulingService/internal/integrations/notifier"
)

const (
	remindersSchedule    = "@every 5m"
	stalePendingSchedule = "@every 10m"

	jobTimeout = 30 * time.Second
)

// Scheduler фоновые задачи сервиса: напоминания о приёмах и очистка
// неоплаченных бронирований
type Scheduler struct {
	cron         *cron.Cron
	bookingRepo  BookingRepository
	notifier     NotifierClient
	timeProvider TimeProvider
	logger       Logger

	// reminderLead за сколько до приёма отправляется напоминание
	reminderLead time.Duration
	// pendingTTL время жизни неоплаченного бронирования
	pendingTTL time.Duration
}

// NewScheduler создает новый экземпляр планировщика фоновых задач
func NewScheduler(
	bookingRepo BookingRepository,
	notifierClient NotifierClient,
	logger Logger,
	reminderLeadHours int,
	pendingTTLMinutes int,
) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		bookingRepo:  bookingRepo,
		notifier:     notifierClient,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		reminderLead: time.Duration(reminderLeadHours) * time.Hour,
		pendingTTL:   time.Duration(pendingTTLMinutes) * time.Minute,
	}
}

// Start регистрирует задачи и запускает планировщик
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(remindersSchedule, s.runReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(stalePendingSchedule, s.runStalePendingCleanup); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler: started, reminders=%s, stale pending cleanup=%s", remindersSchedule, stalePendingSchedule)
	return nil
}

// Stop останавливает планировщик и дожидается завершения текущих задач
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler: stopped")
}

// runReminders отправляет напоминания о подтверждённых приёмах,
// начинающихся в ближайшее окно reminderLead
func (s *Scheduler) runReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	now := s.timeProvider.Now()
	bookings, err := s.bookingRepo.ListDueReminders(ctx, now, now.Add(s.reminderLead))
	if err != nil {
		s.logger.Error("Scheduler: failed to list due reminders: %v", err)
		return
	}

	if len(bookings) == 0 {
		return
	}

	s.logger.Info("Scheduler: sending %d appointment reminders", len(bookings))

	for _, booking := range bookings {
		if err := s.notifier.Notify(ctx, notifier.EventReminderDue, booking); err != nil {
			// Флаг не выставляем: напоминание уйдёт при следующем запуске
			s.logger.Warn("Scheduler: failed to send reminder for booking id=%d: %v", booking.ID, err)
			continue
		}

		if err := s.bookingRepo.MarkReminderSent(ctx, booking.ID); err != nil {
			s.logger.Error("Scheduler: failed to mark reminder sent for booking id=%d: %v", booking.ID, err)
		}
	}
}

// runStalePendingCleanup удаляет неоплаченные бронирования старше pendingTTL,
// освобождая их слоты
func (s *Scheduler) runStalePendingCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	before := s.timeProvider.Now().Add(-s.pendingTTL)
	deleted, err := s.bookingRepo.DeleteStalePending(ctx, before)
	if err != nil {
		s.logger.Error("Scheduler: failed to delete stale pending bookings: %v", err)
		return
	}

	if deleted > 0 {
		s.logger.Info("Scheduler: deleted %d stale pending bookings", deleted)
	}
}

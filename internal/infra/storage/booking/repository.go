package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	"github.com/m04kA/GNG-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/GNG-SchedulingService/pkg/psqlbuilder"
)

var bookingColumns = []string{
	"id",
	"provider_id",
	"session_type_id",
	"appointment_at",
	"duration_minutes",
	"first_name",
	"last_name",
	"email",
	"phone",
	"notes",
	"modality",
	"amount",
	"payment_status",
	"booking_status",
	"confirmation_token",
	"checkout_session_id",
	"cancellation_reason",
	"cancelled_at",
	"reminder_sent",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование
// Если в контексте передана активная транзакция, использует её
//
// Таблица bookings защищена exclusion-констрейнтом на пересекающиеся
// интервалы одного провайдера (кроме отменённых бронирований), поэтому
// даже при гонке двух вставок вторая получит ErrSlotTaken
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"provider_id",
			"session_type_id",
			"appointment_at",
			"duration_minutes",
			"first_name",
			"last_name",
			"email",
			"phone",
			"notes",
			"modality",
			"amount",
			"payment_status",
			"booking_status",
			"confirmation_token",
		).
		Values(
			booking.ProviderID,
			booking.SessionTypeID,
			booking.AppointmentAt,
			booking.DurationMinutes,
			booking.FirstName,
			booking.LastName,
			booking.Email,
			booking.Phone,
			booking.Notes,
			booking.Modality,
			booking.Amount,
			booking.PaymentStatus,
			booking.BookingStatus,
			booking.ConfirmationToken,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23P01": // exclusion_violation
				return nil, ErrSlotTaken
			case "23505": // unique_violation (confirmation_token)
				return nil, ErrTokenCollision
			}
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByToken получает бронирование по confirmation token
// Токен - единственный "пароль" гостя, поэтому причина отсутствия
// (не существует / удалено) не различается
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"confirmation_token": token})
}

// GetByCheckoutSession получает бронирование по ID платёжной сессии
func (r *Repository) GetByCheckoutSession(ctx context.Context, sessionID string) (*domain.Booking, error) {
	return r.getOne(ctx, squirrel.Eq{"checkout_session_id": sessionID})
}

func (r *Repository) getOne(ctx context.Context, where squirrel.Eq) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(where)

	// Внутри транзакции блокируем строку для последующего обновления
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getOne - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, ErrBookingNotFound
	}

	return bookings[0], nil
}

// GetByProviderWithFilter получает бронирования провайдера с фильтрацией
// по периоду, статусу и включению отменённых
//
// Если вызов происходит внутри транзакции и фильтр ограничен периодом,
// строки блокируются через FOR UPDATE - так reserve/reschedule сериализуют
// проверку пересечений для одного провайдера
func (r *Repository) GetByProviderWithFilter(ctx context.Context, filter domain.ProviderBookingsFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"provider_id": filter.ProviderID})

	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"appointment_at": *filter.From})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"appointment_at": *filter.To})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"booking_status": *filter.Status})
	} else if !filter.IncludeInactive {
		inactiveStatusStrings := make([]string, len(domain.InactiveStatuses))
		for i, s := range domain.InactiveStatuses {
			inactiveStatusStrings[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"booking_status": inactiveStatusStrings})
	}

	selectBuilder = selectBuilder.OrderBy("appointment_at ASC")

	if dbmetrics.IsInTransaction(ctx) && filter.From != nil && filter.To != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByProviderWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.exec(ctx, "UpdateStatus", psqlbuilder.Update("bookings").
		Set("booking_status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// ConfirmPayment переводит бронирование в confirmed с оплатой completed
func (r *Repository) ConfirmPayment(ctx context.Context, id int64) error {
	return r.exec(ctx, "ConfirmPayment", psqlbuilder.Update("bookings").
		Set("booking_status", domain.StatusConfirmed).
		Set("payment_status", domain.PaymentCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Cancel отменяет бронирование с указанием причины и статуса оплаты
func (r *Repository) Cancel(ctx context.Context, id int64, paymentStatus domain.PaymentStatus, reason string) error {
	return r.exec(ctx, "Cancel", psqlbuilder.Update("bookings").
		Set("booking_status", domain.StatusCancelled).
		Set("payment_status", paymentStatus).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// Reschedule переносит бронирование на новый момент времени
// Confirmation token, сумма и статус оплаты не меняются;
// флаг напоминания сбрасывается, чтобы напоминание ушло для нового времени
func (r *Repository) Reschedule(ctx context.Context, id int64, newStart time.Time) error {
	query, args, err := psqlbuilder.Update("bookings").
		Set("appointment_at", newStart).
		Set("reminder_sent", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23P01" {
			return ErrSlotTaken
		}
		return fmt.Errorf("%w: Reschedule - execute update: %v", ErrExecQuery, err)
	}

	return r.checkAffected(result, "Reschedule")
}

// SetCheckoutSession привязывает платёжную сессию к бронированию
func (r *Repository) SetCheckoutSession(ctx context.Context, id int64, sessionID string) error {
	return r.exec(ctx, "SetCheckoutSession", psqlbuilder.Update("bookings").
		Set("checkout_session_id", sessionID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// MarkReminderSent отмечает, что напоминание по бронированию отправлено
func (r *Repository) MarkReminderSent(ctx context.Context, id int64) error {
	return r.exec(ctx, "MarkReminderSent", psqlbuilder.Update("bookings").
		Set("reminder_sent", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}))
}

// ListDueReminders возвращает подтверждённые бронирования без отправленного
// напоминания, у которых приём попадает в интервал [from, to)
func (r *Repository) ListDueReminders(ctx context.Context, from, to time.Time) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(bookingColumns...).
		From("bookings").
		Where(squirrel.Eq{"booking_status": domain.StatusConfirmed}).
		Where(squirrel.Eq{"reminder_sent": false}).
		Where(squirrel.GtOrEq{"appointment_at": from}).
		Where(squirrel.Lt{"appointment_at": to}).
		OrderBy("appointment_at ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListDueReminders - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDueReminders - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// DeleteStalePending удаляет неоплаченные бронирования, созданные раньше
// before - их слоты снова становятся доступными для других гостей
func (r *Repository) DeleteStalePending(ctx context.Context, before time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"booking_status": domain.StatusPendingPayment}).
		Where(squirrel.Lt{"created_at": before}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStalePending - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStalePending - execute delete: %v", ErrExecQuery, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteStalePending - get rows affected: %v", ErrExecQuery, err)
	}

	return deleted, nil
}

// Delete удаляет бронирование (физическое удаление)
// Используется только для отката незавершённого reserve, когда создать
// платёжную сессию не удалось
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}

	return r.checkAffected(result, "Delete")
}

// exec выполняет UPDATE и проверяет, что строка была затронута
func (r *Repository) exec(ctx context.Context, op string, builder squirrel.UpdateBuilder) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	return r.checkAffected(result, op)
}

func (r *Repository) checkAffected(result sql.Result, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		var booking domain.Booking
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&booking.ID,
			&booking.ProviderID,
			&booking.SessionTypeID,
			&booking.AppointmentAt,
			&booking.DurationMinutes,
			&booking.FirstName,
			&booking.LastName,
			&booking.Email,
			&booking.Phone,
			&booking.Notes,
			&booking.Modality,
			&booking.Amount,
			&booking.PaymentStatus,
			&booking.BookingStatus,
			&booking.ConfirmationToken,
			&booking.CheckoutSessionID,
			&booking.CancellationReason,
			&booking.CancelledAt,
			&booking.ReminderSent,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %v", ErrScanRow, err)
		}

		booking.CreatedAt = createdAt.Time
		booking.UpdatedAt = updatedAt.Time

		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %v", ErrScanRow, err)
	}

	return bookings, nil
}

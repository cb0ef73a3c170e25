package availability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	"github.com/m04kA/GNG-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/GNG-SchedulingService/pkg/psqlbuilder"
)

var ruleColumns = []string{
	"id",
	"provider_id",
	"day_of_week",
	"start_time",
	"end_time",
	"is_recurring",
	"effective_from",
	"effective_until",
	"created_at",
}

var timeOffColumns = []string{
	"id",
	"provider_id",
	"start_datetime",
	"end_datetime",
	"reason",
	"created_at",
}

// Repository репозиторий для работы с календарём доступности провайдера
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// CreateRule создает правило доступности
func (r *Repository) CreateRule(ctx context.Context, rule *domain.AvailabilityRule) (*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("availability_rules").
		Columns(
			"provider_id",
			"day_of_week",
			"start_time",
			"end_time",
			"is_recurring",
			"effective_from",
			"effective_until",
		).
		Values(
			rule.ProviderID,
			int(rule.DayOfWeek),
			rule.StartTime,
			rule.EndTime,
			rule.IsRecurring,
			rule.EffectiveFrom,
			rule.EffectiveUntil,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateRule - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&rule.ID, &rule.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateRule - execute insert: %v", ErrExecQuery, err)
	}

	return rule, nil
}

// ListRulesByProvider получает все правила доступности провайдера
func (r *Repository) ListRulesByProvider(ctx context.Context, providerID int64) ([]*domain.AvailabilityRule, error) {
	return r.listRules(ctx, "ListRulesByProvider", squirrel.Eq{"provider_id": providerID})
}

// ListRulesByProviderAndDay получает правила провайдера для одного дня недели
func (r *Repository) ListRulesByProviderAndDay(ctx context.Context, providerID int64, day time.Weekday) ([]*domain.AvailabilityRule, error) {
	return r.listRules(ctx, "ListRulesByProviderAndDay", squirrel.Eq{
		"provider_id": providerID,
		"day_of_week": int(day),
	})
}

func (r *Repository) listRules(ctx context.Context, op string, where squirrel.Eq) ([]*domain.AvailabilityRule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(ruleColumns...).
		From("availability_rules").
		Where(where).
		OrderBy("day_of_week ASC", "start_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	rules := make([]*domain.AvailabilityRule, 0)
	for rows.Next() {
		var rule domain.AvailabilityRule
		var dayOfWeek int

		err = rows.Scan(
			&rule.ID,
			&rule.ProviderID,
			&dayOfWeek,
			&rule.StartTime,
			&rule.EndTime,
			&rule.IsRecurring,
			&rule.EffectiveFrom,
			&rule.EffectiveUntil,
			&rule.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}

		rule.DayOfWeek = time.Weekday(dayOfWeek)
		rules = append(rules, &rule)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return rules, nil
}

// DeleteRule удаляет правило доступности провайдера
// Удаление правила не затрагивает уже существующие бронирования
func (r *Repository) DeleteRule(ctx context.Context, id, providerID int64) error {
	query, args, err := psqlbuilder.Delete("availability_rules").
		Where(squirrel.Eq{"id": id, "provider_id": providerID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteRule - build delete query: %v", ErrBuildQuery, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteRule - execute delete: %v", ErrExecQuery, err)
	}

	return r.checkAffected(result, "DeleteRule", ErrRuleNotFound)
}

// CreateTimeOff создает период недоступности провайдера
func (r *Repository) CreateTimeOff(ctx context.Context, timeOff *domain.TimeOff) (*domain.TimeOff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("time_off").
		Columns(
			"provider_id",
			"start_datetime",
			"end_datetime",
			"reason",
		).
		Values(
			timeOff.ProviderID,
			timeOff.StartDateTime,
			timeOff.EndDateTime,
			timeOff.Reason,
		).
		Suffix("RETURNING id, created_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateTimeOff - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&timeOff.ID, &timeOff.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTimeOff - execute insert: %v", ErrExecQuery, err)
	}

	return timeOff, nil
}

// ListTimeOffByProvider получает все периоды недоступности провайдера
func (r *Repository) ListTimeOffByProvider(ctx context.Context, providerID int64) ([]*domain.TimeOff, error) {
	return r.listTimeOff(ctx, "ListTimeOffByProvider", psqlbuilder.Select(timeOffColumns...).
		From("time_off").
		Where(squirrel.Eq{"provider_id": providerID}).
		OrderBy("start_datetime ASC"))
}

// ListTimeOffInRange получает периоды недоступности провайдера,
// пересекающиеся с интервалом [from, to)
func (r *Repository) ListTimeOffInRange(ctx context.Context, providerID int64, from, to time.Time) ([]*domain.TimeOff, error) {
	return r.listTimeOff(ctx, "ListTimeOffInRange", psqlbuilder.Select(timeOffColumns...).
		From("time_off").
		Where(squirrel.Eq{"provider_id": providerID}).
		Where(squirrel.Lt{"start_datetime": to}).
		Where(squirrel.Gt{"end_datetime": from}).
		OrderBy("start_datetime ASC"))
}

func (r *Repository) listTimeOff(ctx context.Context, op string, builder squirrel.SelectBuilder) ([]*domain.TimeOff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute query: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	periods := make([]*domain.TimeOff, 0)
	for rows.Next() {
		var timeOff domain.TimeOff

		err = rows.Scan(
			&timeOff.ID,
			&timeOff.ProviderID,
			&timeOff.StartDateTime,
			&timeOff.EndDateTime,
			&timeOff.Reason,
			&timeOff.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan row: %v", ErrScanRow, op, err)
		}

		periods = append(periods, &timeOff)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows error: %v", ErrScanRow, op, err)
	}

	return periods, nil
}

// DeleteTimeOff удаляет период недоступности провайдера
func (r *Repository) DeleteTimeOff(ctx context.Context, id, providerID int64) error {
	query, args, err := psqlbuilder.Delete("time_off").
		Where(squirrel.Eq{"id": id, "provider_id": providerID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: DeleteTimeOff - build delete query: %v", ErrBuildQuery, err)
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: DeleteTimeOff - execute delete: %v", ErrExecQuery, err)
	}

	return r.checkAffected(result, "DeleteTimeOff", ErrTimeOffNotFound)
}

func (r *Repository) checkAffected(result sql.Result, op string, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

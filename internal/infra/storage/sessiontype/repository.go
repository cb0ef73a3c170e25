package sessiontype

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
	"github.com/m04kA/GNG-SchedulingService/pkg/dbmetrics"
	"github.com/m04kA/GNG-SchedulingService/pkg/psqlbuilder"
)

var sessionTypeColumns = []string{
	"id",
	"name",
	"description",
	"duration_minutes",
	"price",
	"modality",
	"is_active",
	"created_at",
	"updated_at",
}

// Repository репозиторий для чтения каталога типов сессий
// Каталог ведётся извне, сервис расписания его только читает
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория типов сессий
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает тип сессии по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.SessionType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(sessionTypeColumns...).
		From("session_types").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var sessionType domain.SessionType
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&sessionType.ID,
		&sessionType.Name,
		&sessionType.Description,
		&sessionType.DurationMinutes,
		&sessionType.Price,
		&sessionType.Modality,
		&sessionType.IsActive,
		&sessionType.CreatedAt,
		&sessionType.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSessionTypeNotFound
		}
		return nil, fmt.Errorf("%w: GetByID - scan row: %v", ErrScanRow, err)
	}

	return &sessionType, nil
}

// List получает типы сессий, опционально только активные
func (r *Repository) List(ctx context.Context, onlyActive bool) ([]*domain.SessionType, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(sessionTypeColumns...).
		From("session_types").
		OrderBy("name ASC")

	if onlyActive {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"is_active": true})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	sessionTypes := make([]*domain.SessionType, 0)
	for rows.Next() {
		var sessionType domain.SessionType

		err = rows.Scan(
			&sessionType.ID,
			&sessionType.Name,
			&sessionType.Description,
			&sessionType.DurationMinutes,
			&sessionType.Price,
			&sessionType.Modality,
			&sessionType.IsActive,
			&sessionType.CreatedAt,
			&sessionType.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %v", ErrScanRow, err)
		}

		sessionTypes = append(sessionTypes, &sessionType)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %v", ErrScanRow, err)
	}

	return sessionTypes, nil
}

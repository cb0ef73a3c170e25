package availability

import "errors"

var (
	// ErrRuleNotFound правило доступности не найдено
	ErrRuleNotFound = errors.New("availability.repository: rule not found")

	// ErrTimeOffNotFound период недоступности не найден
	ErrTimeOffNotFound = errors.New("availability.repository: time off not found")

	// ErrBuildQuery ошибка построения SQL запроса
	ErrBuildQuery = errors.New("availability.repository: failed to build query")

	// ErrExecQuery ошибка выполнения SQL запроса
	ErrExecQuery = errors.New("availability.repository: failed to execute query")

	// ErrScanRow ошибка сканирования строки результата
	ErrScanRow = errors.New("availability.repository: failed to scan row")
)

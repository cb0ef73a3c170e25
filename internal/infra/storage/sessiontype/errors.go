package sessiontype

import "errors"

var (
	// ErrSessionTypeNotFound тип сессии не найден
	ErrSessionTypeNotFound = errors.New("sessiontype.repository: session type not found")

	// ErrBuildQuery ошибка построения SQL запроса
	ErrBuildQuery = errors.New("sessiontype.repository: failed to build query")

	// ErrExecQuery ошибка выполнения SQL запроса
	ErrExecQuery = errors.New("sessiontype.repository: failed to execute query")

	// ErrScanRow ошибка сканирования строки результата
	ErrScanRow = errors.New("sessiontype.repository: failed to scan row")
)

package get_available_slots

import "errors"

var (
	// ErrSessionTypeNotFound возвращается, когда тип сессии не найден
	ErrSessionTypeNotFound = errors.New("get_available_slots: session type not found")

	// ErrSessionTypeInactive возвращается, когда тип сессии отключён в каталоге
	ErrSessionTypeInactive = errors.New("get_available_slots: session type is inactive")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("get_available_slots: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("get_available_slots: internal error")
)

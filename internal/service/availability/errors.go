package availability

import "errors"

var (
	// ErrRuleNotFound возвращается, когда правило доступности не найдено
	ErrRuleNotFound = errors.New("availability rule not found")

	// ErrTimeOffNotFound возвращается, когда период недоступности не найден
	ErrTimeOffNotFound = errors.New("time off not found")

	// ErrRuleOverlap возвращается, когда новое правило пересекается с существующим
	ErrRuleOverlap = errors.New("availability rule overlaps an existing rule")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrBusy возвращается при конкурентном конфликте, который не разрешился
	// после повторных попыток
	ErrBusy = errors.New("availability: too many concurrent requests, try again")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

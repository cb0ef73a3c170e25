package booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrSlotTaken возвращается при нарушении exclusion-констрейнта
	// на пересекающиеся интервалы одного провайдера
	ErrSlotTaken = errors.New("booking.repository: slot is already taken")

	// ErrTokenCollision возвращается при нарушении уникальности confirmation token
	ErrTokenCollision = errors.New("booking.repository: confirmation token already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

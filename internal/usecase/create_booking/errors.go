package create_booking

import "errors"

var (
	// ErrSessionTypeNotFound возвращается, когда тип сессии не найден
	ErrSessionTypeNotFound = errors.New("create_booking: session type not found")

	// ErrSessionTypeInactive возвращается, когда тип сессии отключён в каталоге
	ErrSessionTypeInactive = errors.New("create_booking: session type is inactive")

	// ErrSlotNotAvailable возвращается, когда запрошенный слот недоступен:
	// вне рабочих часов провайдера, перекрыт time off или занят другим бронированием
	ErrSlotNotAvailable = errors.New("create_booking: slot is not available")

	// ErrInvalidDate возвращается, когда время приёма в прошлом
	ErrInvalidDate = errors.New("create_booking: appointment time is in the past")

	// ErrBusy возвращается при конкурентном конфликте, который не разрешился
	// повторными попытками; клиенту стоит повторить запрос
	ErrBusy = errors.New("create_booking: too many concurrent requests, try again")

	// ErrPaymentSetup возвращается, когда не удалось создать платёжную сессию
	ErrPaymentSetup = errors.New("create_booking: failed to set up payment")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)

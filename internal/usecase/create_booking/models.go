package create_booking

import "time"

// Request модель запроса на создание бронирования
type Request struct {
	ProviderID    int64     // ID провайдера
	SessionTypeID int64     // ID типа сессии из каталога
	AppointmentAt time.Time // Время начала приёма

	// Контактные данные гостя
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Notes     *string // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным бронированием
type Response struct {
	BookingID         int64     // ID созданного бронирования
	ConfirmationToken string    // Токен для доступа гостя к бронированию
	CheckoutURL       string    // URL платёжной сессии для оплаты
	AppointmentAt     time.Time // Время начала приёма
	DurationMinutes   int       // Длительность приёма (снапшот из каталога)
	Amount            float64   // Стоимость (снапшот из каталога)
	Modality          string    // Формат приёма (снапшот из каталога)
	BookingStatus     string    // Статус бронирования
	PaymentStatus     string    // Статус оплаты

	CreatedAt time.Time // Время создания
}

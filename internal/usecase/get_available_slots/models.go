package get_available_slots

import "time"

// Request модель запроса на получение доступных слотов
type Request struct {
	ProviderID    int64     // ID провайдера
	SessionTypeID int64     // ID типа сессии (определяет длительность слота)
	Date          time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	ProviderID      int64     // ID провайдера
	SessionTypeID   int64     // ID типа сессии
	DurationMinutes int       // Длительность слота в минутах
	Slots           []Slot    // Список доступных слотов
}

// Slot модель временного слота
type Slot struct {
	Start time.Time // Время начала слота
	End   time.Time // Время конца слота
}

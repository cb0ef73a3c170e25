package get_available_slots

import (
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/availability"
	"github.com/m04kA/GNG-SchedulingService/internal/domain"
)

// generateSlots генерирует слоты внутри свободных диапазонов дня
// Слоты идут вплотную друг к другу с шагом, равным длительности сессии,
// начиная от начала каждого диапазона; слот, не помещающийся до конца
// диапазона целиком, отбрасывается
func generateSlots(freeRanges []availability.Range, durationMinutes int, now time.Time) []Slot {
	duration := time.Duration(durationMinutes) * time.Minute

	slots := make([]Slot, 0)
	for _, freeRange := range freeRanges {
		for start := freeRange.Start; !start.Add(duration).After(freeRange.End); start = start.Add(duration) {
			// Слоты, начинающиеся сейчас или в прошлом, уже не забронировать
			if !start.After(now) {
				continue
			}

			slots = append(slots, Slot{Start: start, End: start.Add(duration)})
		}
	}

	return slots
}

// filterBookedSlots убирает слоты, пересекающиеся с активными бронированиями
// Граничные случаи (бронирование заканчивается ровно в начале слота или
// начинается ровно в его конце) пересечением не считаются
func filterBookedSlots(slots []Slot, bookings []*domain.Booking) []Slot {
	available := make([]Slot, 0, len(slots))

	for _, slot := range slots {
		free := true
		for _, booking := range bookings {
			if !booking.HoldsSlot() {
				continue
			}
			if booking.Overlaps(slot.Start, slot.End) {
				free = false
				break
			}
		}

		if free {
			available = append(available, slot)
		}
	}

	return available
}

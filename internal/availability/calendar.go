package availability

import (
	"sort"
	"time"

	"github.com/m04kA/GNG-SchedulingService/internal/domain"
)

// Range непрерывный свободный интервал [Start, End) в абсолютном времени
type Range struct {
	Start time.Time
	End   time.Time
}

// Duration возвращает длительность интервала
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Contains возвращает true, если [start, end) целиком лежит внутри интервала
func (r Range) Contains(start, end time.Time) bool {
	return !start.Before(r.Start) && !end.After(r.End)
}

// FreeRanges вычисляет свободные интервалы провайдера на календарную дату:
// объединение применимых правил доступности минус объединение time-off
//
// Правила применимости:
//   - правило действует, если день недели совпадает и дата внутри
//     effective-окна (см. domain.AvailabilityRule.AppliesOn)
//   - time-off, пересекающий несколько дат (через полночь), обрезается
//     до границ рассматриваемой даты
//   - пересекающиеся time-off интервалы объединяются перед вычитанием
//
// Результат упорядочен по возрастанию и не содержит пересечений
// Для провайдера без применимых правил возвращается пустой список
func FreeRanges(date time.Time, rules []*domain.AvailabilityRule, timeOff []*domain.TimeOff) ([]Range, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	// 1. Собираем интервалы применимых правил
	ranges := make([]Range, 0, len(rules))
	for _, rule := range rules {
		if !rule.AppliesOn(date) {
			continue
		}

		start, err := rule.StartTime.At(dayStart)
		if err != nil {
			return nil, err
		}
		end, err := rule.EndTime.At(dayStart)
		if err != nil {
			return nil, err
		}
		if !start.Before(end) {
			continue
		}

		ranges = append(ranges, Range{Start: start, End: end})
	}

	if len(ranges) == 0 {
		return []Range{}, nil
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start.Before(ranges[j].Start) })

	// 2. Объединяем time-off, пересекающие эту дату, обрезая до границ суток
	blocked := make([]Range, 0, len(timeOff))
	for _, off := range timeOff {
		if !off.Covers(dayStart, dayEnd) {
			continue
		}

		start := off.StartDateTime
		if start.Before(dayStart) {
			start = dayStart
		}
		end := off.EndDateTime
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !start.Before(end) {
			continue
		}

		blocked = append(blocked, Range{Start: start, End: end})
	}
	blocked = mergeRanges(blocked)

	// 3. Вычитаем заблокированные интервалы из каждого правила
	free := make([]Range, 0, len(ranges))
	for _, r := range ranges {
		free = append(free, subtract(r, blocked)...)
	}

	return free, nil
}

// ContainsInterval возвращает true, если [start, end) целиком лежит
// внутри одного из свободных интервалов
func ContainsInterval(ranges []Range, start, end time.Time) bool {
	for _, r := range ranges {
		if r.Contains(start, end) {
			return true
		}
	}
	return false
}

// mergeRanges объединяет пересекающиеся и соприкасающиеся интервалы
// Вход может быть неотсортирован; результат упорядочен по возрастанию
func mergeRanges(ranges []Range) []Range {
	if len(ranges) <= 1 {
		return ranges
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start.Before(ranges[j].Start) })

	merged := make([]Range, 0, len(ranges))
	current := ranges[0]

	for _, r := range ranges[1:] {
		if r.Start.After(current.End) {
			merged = append(merged, current)
			current = r
			continue
		}
		if r.End.After(current.End) {
			current.End = r.End
		}
	}

	return append(merged, current)
}

// subtract вычитает отсортированные интервалы blocked из r,
// возвращая оставшиеся фрагменты по возрастанию
func subtract(r Range, blocked []Range) []Range {
	result := make([]Range, 0, 1)
	cursor := r.Start

	for _, b := range blocked {
		if !b.End.After(cursor) {
			continue
		}
		if !b.Start.Before(r.End) {
			break
		}

		if b.Start.After(cursor) {
			result = append(result, Range{Start: cursor, End: minTime(b.Start, r.End)})
		}

		cursor = maxTime(cursor, b.End)
		if !cursor.Before(r.End) {
			return result
		}
	}

	if cursor.Before(r.End) {
		result = append(result, Range{Start: cursor, End: r.End})
	}

	return result
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

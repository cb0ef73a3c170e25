package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidWeekday is returned for an unknown day-of-week name
var ErrInvalidWeekday = errors.New("domain: invalid day of week")

var weekdayNames = map[string]time.Weekday{
	"MONDAY":    time.Monday,
	"TUESDAY":   time.Tuesday,
	"WEDNESDAY": time.Wednesday,
	"THURSDAY":  time.Thursday,
	"FRIDAY":    time.Friday,
	"SATURDAY":  time.Saturday,
	"SUNDAY":    time.Sunday,
}

// ParseWeekday converts MONDAY..SUNDAY (case-insensitive) to time.Weekday
func ParseWeekday(s string) (time.Weekday, error) {
	if d, ok := weekdayNames[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return d, nil
	}
	return 0, ErrInvalidWeekday
}

// WeekdayName converts time.Weekday to the wire format MONDAY..SUNDAY
func WeekdayName(d time.Weekday) string {
	return strings.ToUpper(d.String())
}

package domain

import (
	"time"

	"github.com/m04kA/GNG-SchedulingService/pkg/types"
)

// AvailabilityRule represents a weekly working-hours rule of a provider
// Recurring rules apply every matching weekday within the effective window;
// non-recurring rules require an effective window and apply only inside it
type AvailabilityRule struct {
	ID          int64
	ProviderID  int64
	DayOfWeek   time.Weekday
	StartTime   types.TimeString
	EndTime     types.TimeString
	IsRecurring bool

	// Effective window bounds the rule to a date range (nil = unbounded)
	EffectiveFrom  *time.Time
	EffectiveUntil *time.Time

	CreatedAt time.Time
}

// AppliesOn returns true if the rule is in effect on the given calendar date
func (r *AvailabilityRule) AppliesOn(date time.Time) bool {
	if date.Weekday() != r.DayOfWeek {
		return false
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	if r.EffectiveFrom != nil && day.Before(dateOnly(*r.EffectiveFrom)) {
		return false
	}
	if r.EffectiveUntil != nil && day.After(dateOnly(*r.EffectiveUntil)) {
		return false
	}

	// Non-recurring rules only exist inside their effective window
	if !r.IsRecurring && r.EffectiveFrom == nil && r.EffectiveUntil == nil {
		return false
	}

	return true
}

// OverlapsRule returns true if two rules for the same day intersect in time
func (r *AvailabilityRule) OverlapsRule(other *AvailabilityRule) bool {
	if r.DayOfWeek != other.DayOfWeek {
		return false
	}
	return r.StartTime.IsBefore(other.EndTime) && other.StartTime.IsBefore(r.EndTime)
}

// TimeOff represents an absolute-time interval during which the provider
// is unavailable; it subtracts from availability rule occurrences
type TimeOff struct {
	ID            int64
	ProviderID    int64
	StartDateTime time.Time
	EndDateTime   time.Time
	Reason        *string
	CreatedAt     time.Time
}

// Covers returns true if the time off intersects [start, end)
func (t *TimeOff) Covers(start, end time.Time) bool {
	return t.StartDateTime.Before(end) && t.EndDateTime.After(start)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

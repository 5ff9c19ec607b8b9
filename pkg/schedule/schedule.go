// Package schedule decides which records occur on a calendar day.
package schedule

import (
	"sort"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

// IsDateInSchedule reports whether date is an occurrence of a record with the
// given origin and frequency. Unknown frequencies never occur.
func IsDateInSchedule(date, scheduledDate model.Date, frequency model.Frequency, repeatDays []int) bool {
	switch frequency {
	case model.FrequencyDaily:
		return !date.Before(scheduledDate)
	case model.FrequencyOnce, model.FrequencyCustom:
		// TODO: custom recurrence has no rule of its own yet and behaves like once.
		return date.Equal(scheduledDate)
	case model.FrequencyWeekly:
		if date.Before(scheduledDate) {
			return false
		}
		if len(repeatDays) > 0 {
			return containsDay(repeatDays, date.Weekday())
		}
		return date.Weekday() == scheduledDate.Weekday()
	case model.FrequencyMonthly:
		return !date.Before(scheduledDate) && date.Day == scheduledDate.Day
	}
	return false
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// ShouldShowHabitOnDate applies the habit rule, where priority rather than
// frequency sets how often the habit recurs.
func ShouldShowHabitOnDate(date model.Date, habit model.TaskRecord) bool {
	origin := habit.ScheduledDate
	if date.Before(origin) {
		return false
	}
	if date.Equal(origin) {
		return true
	}
	switch habit.Priority {
	case model.PriorityHigh:
		return true
	case model.PriorityMedium:
		return date.Weekday() == origin.Weekday()
	case model.PriorityLow:
		return date.Day == origin.Day
	}
	return false
}

type habitKey struct {
	title string
	start string
}

func keyOf(r model.TaskRecord) habitKey {
	k := habitKey{title: r.Title}
	if r.StartTime != nil {
		k.start = r.StartTime.String()
	}
	return k
}

// DedupeHabits keeps, per (title, start time), the habit whose origin is the
// most recent one not after date. Order of first appearance is preserved.
func DedupeHabits(date model.Date, habits []model.TaskRecord) []model.TaskRecord {
	best := map[habitKey]int{}
	var order []habitKey
	for i, h := range habits {
		if h.ScheduledDate.After(date) {
			continue
		}
		k := keyOf(h)
		j, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = i
			continue
		}
		if h.ScheduledDate.After(habits[j].ScheduledDate) {
			best[k] = i
		}
	}
	out := make([]model.TaskRecord, 0, len(order))
	for _, k := range order {
		out = append(out, habits[best[k]])
	}
	return out
}

// Occurs applies the rule matching the record kind, ignoring inbox state.
func Occurs(date model.Date, r model.TaskRecord) bool {
	switch {
	case r.Type == model.TypeHabit:
		return ShouldShowHabitOnDate(date, r)
	case r.IsInstance():
		return date.Equal(r.ScheduledDate)
	default:
		return IsDateInSchedule(date, r.ScheduledDate, r.EffectiveFrequency(), r.RepeatDays)
	}
}

type instanceKey struct {
	parent string
	date   model.Date
}

// VisibleOn lists the confirmed records occurring on date. A parent is hidden
// on days one of its materialized instances already covers.
func VisibleOn(date model.Date, records []model.TaskRecord) []model.TaskRecord {
	covered := map[instanceKey]bool{}
	for _, r := range records {
		if r.IsInstance() && r.Scheduled() {
			covered[instanceKey{*r.ParentTaskID, r.ScheduledDate}] = true
		}
	}

	var habits, others []model.TaskRecord
	for _, r := range records {
		if !r.Scheduled() || !Occurs(date, r) {
			continue
		}
		if r.Type == model.TypeHabit {
			habits = append(habits, r)
			continue
		}
		if !r.IsInstance() && covered[instanceKey{r.ID, date}] {
			continue
		}
		others = append(others, r)
	}

	visible := append(DedupeHabits(date, habits), others...)
	sort.SliceStable(visible, func(i, j int) bool {
		a, b := visible[i].StartTime, visible[j].StartTime
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return visible[i].Title < visible[j].Title
	})
	return visible
}

// CountsByDay counts visible records per date with the same rules and
// deduplication as VisibleOn.
func CountsByDay(dates []model.Date, records []model.TaskRecord) map[model.Date]int {
	counts := make(map[model.Date]int, len(dates))
	for _, d := range dates {
		counts[d] = len(VisibleOn(d, records))
	}
	return counts
}

// DateRange returns every date from start to end inclusive.
func DateRange(start, end model.Date) []model.Date {
	var dates []model.Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

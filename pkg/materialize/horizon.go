package materialize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	cronlib "github.com/robfig/cron/v3"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

// Occurrences generated ahead of the origin for each frequency.
const (
	DailyHorizon   = 30
	WeeklyHorizon  = 12
	MonthlyHorizon = 6
)

var cronParser = cronlib.NewParser(
	cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow,
)

// scheduleExpr returns the cron expression and occurrence count for a
// frequency. Frequencies without a horizon return an empty expression.
func scheduleExpr(r model.TaskRecord) (string, int) {
	origin := r.ScheduledDate
	switch r.EffectiveFrequency() {
	case model.FrequencyDaily:
		return "0 0 * * *", DailyHorizon
	case model.FrequencyWeekly:
		days := weekdays(r.RepeatDays)
		if len(days) == 0 {
			days = []string{strconv.Itoa(origin.Weekday())}
		}
		return "0 0 * * " + strings.Join(days, ","), WeeklyHorizon
	case model.FrequencyMonthly:
		return fmt.Sprintf("0 0 %d * *", origin.Day), MonthlyHorizon
	}
	return "", 0
}

// weekdays drops out-of-range and repeated entries.
func weekdays(repeat []int) []string {
	seen := map[int]bool{}
	var days []int
	for _, d := range repeat {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Ints(days)
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = strconv.Itoa(d)
	}
	return out
}

// Horizon lists the dates strictly after the origin on which instances of r
// are materialized. Once and custom records have none. A monthly origin on
// the 29th to 31st skips months without that day.
func Horizon(r model.TaskRecord) []model.Date {
	if r.ScheduledDate.IsZero() {
		return nil
	}
	expr, n := scheduleExpr(r)
	if expr == "" {
		return nil
	}
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil
	}

	out := make([]model.Date, 0, n)
	t := r.ScheduledDate.Time()
	for len(out) < n {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}
		out = append(out, model.DateOf(t))
	}
	return out
}

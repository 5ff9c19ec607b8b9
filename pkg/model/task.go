package model

import "time"

type Type string

const (
	TypeTask    Type = "task"
	TypeMeeting Type = "meeting"
	TypeEvent   Type = "event"
	TypeHabit   Type = "habit"
)

type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyCustom  Frequency = "custom"
)

// Priority doubles as the recurrence breadth of habit records:
// high recurs daily, medium on the origin weekday, low on the origin day-of-month.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Category string

const (
	CategoryWork      Category = "work"
	CategoryPersonal  Category = "personal"
	CategoryHealth    Category = "health"
	CategoryStudy     Category = "study"
	CategoryFinancial Category = "financial"
	CategorySocial    Category = "social"
)

// TaskRecord is a persisted task, meeting, event or habit row.
type TaskRecord struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Details string `json:"details,omitempty"`
	Type    Type   `json:"type"`
	// ScheduledDate is the origin date, not necessarily a day the record occurs on.
	ScheduledDate    Date      `json:"scheduledDate"`
	StartTime        *Clock    `json:"startTime,omitempty"`
	DurationMinutes  *int      `json:"durationMinutes,omitempty"`
	Frequency        Frequency `json:"frequency"`
	RepeatDays       []int     `json:"repeatDays,omitempty"`
	Priority         Priority  `json:"priority,omitempty"`
	ParentTaskID     *string   `json:"parentTaskId,omitempty"`
	InboxOnly        bool      `json:"inboxOnly"`
	Completed        bool      `json:"completed"`
	Color            string    `json:"color,omitempty"`
	NotificationTime *Clock    `json:"notificationTime,omitempty"`
	Location         string    `json:"location,omitempty"`
	Category         Category  `json:"category,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Scheduled reports whether the record is confirmed for the calendar.
func (r TaskRecord) Scheduled() bool {
	return !r.InboxOnly
}

// IsInstance reports whether the record was materialized from a parent.
func (r TaskRecord) IsInstance() bool {
	return r.ParentTaskID != nil && *r.ParentTaskID != ""
}

// EffectiveFrequency applies the "once" default to an unset frequency.
func (r TaskRecord) EffectiveFrequency() Frequency {
	if r.Frequency == "" {
		return FrequencyOnce
	}
	return r.Frequency
}

// Clone returns a deep copy so pointer and slice fields are not shared.
func (r TaskRecord) Clone() TaskRecord {
	c := r
	if r.StartTime != nil {
		c.StartTime = ClockPtr(*r.StartTime)
	}
	if r.NotificationTime != nil {
		c.NotificationTime = ClockPtr(*r.NotificationTime)
	}
	if r.DurationMinutes != nil {
		d := *r.DurationMinutes
		c.DurationMinutes = &d
	}
	if r.ParentTaskID != nil {
		p := *r.ParentTaskID
		c.ParentTaskID = &p
	}
	if r.RepeatDays != nil {
		c.RepeatDays = append([]int(nil), r.RepeatDays...)
	}
	return c
}

// DetectedContext is the interpreter's structured reading of one sentence.
// It is never persisted as-is.
type DetectedContext struct {
	Title          string    `json:"title"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Type           Type      `json:"type"`
	Location       string    `json:"location"`
	People         []string  `json:"people"`
	Category       Category  `json:"category"`
	SuggestedColor string    `json:"suggestedColor"`
	Frequency      Frequency `json:"frequency"`
	RepeatDays     []int     `json:"repeatDays,omitempty"`
	Priority       Priority  `json:"priority,omitempty"`
	Confidence     float64   `json:"confidence"`
	Rule           string    `json:"rule"`
}

// NewRecord builds an inbox-only record from a detected context.
func (c DetectedContext) NewRecord(userID string) TaskRecord {
	rec := TaskRecord{
		UserID:     userID,
		Title:      c.Title,
		Type:       c.Type,
		Frequency:  c.Frequency,
		RepeatDays: append([]int(nil), c.RepeatDays...),
		Priority:   c.Priority,
		InboxOnly:  true,
		Color:      c.SuggestedColor,
		Location:   c.Location,
		Category:   c.Category,
	}
	if rec.Frequency == "" {
		rec.Frequency = FrequencyOnce
	}
	if rec.Type == "" {
		rec.Type = TypeTask
	}
	if d, err := ParseDate(c.Date); err == nil {
		rec.ScheduledDate = d
	}
	if c.Time != "" {
		if clk, err := ParseClock(c.Time); err == nil {
			rec.StartTime = &clk
		}
	}
	return rec
}

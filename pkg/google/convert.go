package google

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/colors"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

const (
	// Private extended properties linking an event back to its record.
	recordIDProperty = "lifebetter_id"
	parentIDProperty = "lifebetter_parent_id"

	defaultDuration = 30 * time.Minute
)

var recordIDPattern = regexp.MustCompile(`ID: ([a-zA-Z0-9\-]+)`)

// habitRecurrence mirrors the habit visibility rule, where priority decides
// how often a habit recurs.
func habitRecurrence(rec model.TaskRecord) []string {
	if rec.Type != model.TypeHabit {
		return nil
	}
	switch rec.Priority {
	case model.PriorityHigh:
		return []string{"RRULE:FREQ=DAILY"}
	case model.PriorityMedium:
		return []string{"RRULE:FREQ=WEEKLY"}
	case model.PriorityLow:
		return []string{"RRULE:FREQ=MONTHLY"}
	}
	return nil
}

// ConvertRecordToEvent builds the calendar event mirroring rec. Timed records
// become events in loc; records without a start time become all-day events.
func ConvertRecordToEvent(rec *model.TaskRecord, today model.Date, loc *time.Location) (*calendar.Event, error) {
	if rec == nil {
		return nil, fmt.Errorf("could not convert nil record")
	}
	if rec.ScheduledDate.IsZero() {
		return nil, fmt.Errorf("record has no scheduled date: %s", rec.ID)
	}
	if loc == nil {
		loc = time.Local
	}

	summary := rec.Title
	switch {
	case rec.Completed:
		summary = "✓ " + rec.Title
	case rec.Type != model.TypeHabit && rec.ScheduledDate.Before(today):
		summary = "! " + rec.Title
	}

	event := &calendar.Event{
		Summary:     summary,
		Description: describe(rec),
		Location:    rec.Location,
		ColorId:     colors.GCalID(rec.Color, rec.Category),
		Recurrence:  habitRecurrence(*rec),
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{recordIDProperty: rec.ID},
		},
	}
	if rec.IsInstance() {
		event.ExtendedProperties.Private[parentIDProperty] = *rec.ParentTaskID
	}

	if rec.StartTime == nil {
		event.Start = &calendar.EventDateTime{Date: rec.ScheduledDate.String()}
		event.End = &calendar.EventDateTime{Date: rec.ScheduledDate.AddDays(1).String()}
		return event, nil
	}

	d := rec.ScheduledDate
	start := time.Date(d.Year, d.Month, d.Day, rec.StartTime.Hour(), rec.StartTime.Minute(), 0, 0, loc)
	duration := defaultDuration
	if rec.DurationMinutes != nil && *rec.DurationMinutes > 0 {
		duration = time.Duration(*rec.DurationMinutes) * time.Minute
	}
	end := start.Add(duration)
	// Recurring events need an IANA zone; "Local" is not one.
	tz := loc.String()
	if tz == "Local" {
		tz = ""
	}
	event.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: tz}
	event.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: tz}
	return event, nil
}

func describe(rec *model.TaskRecord) string {
	var b strings.Builder
	if rec.Details != "" {
		b.WriteString(rec.Details)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Type: %s\n", rec.Type)
	if rec.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", rec.Category)
	}
	fmt.Fprintf(&b, "Frequency: %s\n", rec.EffectiveFrequency())
	if rec.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", rec.Priority)
	}
	if rec.NotificationTime != nil {
		fmt.Fprintf(&b, "Reminder: %s\n", rec.NotificationTime)
	}
	fmt.Fprintf(&b, "ID: %s\n", rec.ID)
	return b.String()
}

// EventNeedsUpdate returns a patch holding the fields of target that differ
// from existing, or nil when they match.
func EventNeedsUpdate(existing, target *calendar.Event) (*calendar.Event, error) {
	patch := &calendar.Event{}
	needsUpdate := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		needsUpdate = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		needsUpdate = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		needsUpdate = true
	}
	if existing.Location != target.Location {
		patch.Location = target.Location
		needsUpdate = true
	}
	if strings.Join(existing.Recurrence, "\n") != strings.Join(target.Recurrence, "\n") {
		patch.Recurrence = target.Recurrence
		needsUpdate = true
	}

	same, err := sameSpan(existing, target)
	if err != nil {
		return nil, err
	}
	if !same {
		patch.Start = target.Start
		patch.End = target.End
		needsUpdate = true
	}

	if needsUpdate {
		return patch, nil
	}
	return nil, nil
}

func sameSpan(a, b *calendar.Event) (bool, error) {
	if a.Start == nil || a.End == nil || b.Start == nil || b.End == nil {
		return false, nil
	}
	startEq, err := sameMoment(a.Start, b.Start)
	if err != nil || !startEq {
		return false, err
	}
	return sameMoment(a.End, b.End)
}

func sameMoment(a, b *calendar.EventDateTime) (bool, error) {
	if a.DateTime == "" || b.DateTime == "" {
		return a.DateTime == b.DateTime && a.Date == b.Date, nil
	}
	at, err := time.Parse(time.RFC3339, a.DateTime)
	if err != nil {
		return false, err
	}
	bt, err := time.Parse(time.RFC3339, b.DateTime)
	if err != nil {
		return false, err
	}
	return at.Equal(bt), nil
}

// eventRecordID reads the record id from the private property, falling
// back to the description for events written without one.
func eventRecordID(ev *calendar.Event) (string, bool) {
	if ev.ExtendedProperties != nil {
		if id := ev.ExtendedProperties.Private[recordIDProperty]; id != "" {
			return id, true
		}
	}
	return GetRecordIDFromEventDescription(ev.Description)
}

// GetRecordIDFromEventDescription parses the record id written by describe.
func GetRecordIDFromEventDescription(description string) (string, bool) {
	matches := recordIDPattern.FindStringSubmatch(description)
	if len(matches) > 1 {
		return matches[1], true
	}
	return "", false
}

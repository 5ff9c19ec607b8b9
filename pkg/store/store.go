// Package store persists task records. The Store interface is the contract
// the rest of the module depends on; SQLite is the bundled implementation.
package store

import (
	"context"
	"errors"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

var ErrNotFound = errors.New("store: record not found")

// Column names accepted in Fields.
const (
	FieldTitle            = "title"
	FieldDetails          = "details"
	FieldType             = "type"
	FieldScheduledDate    = "scheduled_date"
	FieldStartTime        = "start_time"
	FieldDurationMinutes  = "duration_minutes"
	FieldFrequency        = "frequency"
	FieldRepeatDays       = "repeat_days"
	FieldPriority         = "priority"
	FieldInboxOnly        = "inbox_only"
	FieldCompleted        = "completed"
	FieldColor            = "color"
	FieldNotificationTime = "notification_time"
	FieldLocation         = "location"
	FieldCategory         = "category"
)

// Fields is a partial update keyed by column name. Values use the model
// types (model.Date, *model.Clock, *int, []int, bool, string kinds).
type Fields map[string]any

type Store interface {
	Insert(ctx context.Context, rec model.TaskRecord) (model.TaskRecord, error)
	Update(ctx context.Context, id string, fields Fields) (model.TaskRecord, error)
	// Delete removes a record and every instance materialized from it.
	Delete(ctx context.Context, id string) error
	BulkInsert(ctx context.Context, recs []model.TaskRecord) ([]model.TaskRecord, error)
	BulkUpdate(ctx context.Context, parentID string, fields Fields) error
	BulkDelete(ctx context.Context, parentID string) error
	// QueryByDateRange returns every record of the user that may occur on one
	// of the dates; callers filter with the schedule rules.
	QueryByDateRange(ctx context.Context, userID string, dates []model.Date) ([]model.TaskRecord, error)
	Get(ctx context.Context, id string) (model.TaskRecord, error)
	Children(ctx context.Context, parentID string) ([]model.TaskRecord, error)
	// Inbox lists the user's records not yet confirmed for the calendar.
	Inbox(ctx context.Context, userID string) ([]model.TaskRecord, error)
}

// Apply copies fields onto rec, mirroring what Update does in storage.
func (f Fields) Apply(rec model.TaskRecord) model.TaskRecord {
	out := rec.Clone()
	for k, v := range f {
		switch k {
		case FieldTitle:
			out.Title = v.(string)
		case FieldDetails:
			out.Details = v.(string)
		case FieldType:
			out.Type = v.(model.Type)
		case FieldScheduledDate:
			out.ScheduledDate = v.(model.Date)
		case FieldStartTime:
			out.StartTime = clonedClock(v)
		case FieldDurationMinutes:
			if p, _ := v.(*int); p != nil {
				d := *p
				out.DurationMinutes = &d
			} else {
				out.DurationMinutes = nil
			}
		case FieldFrequency:
			out.Frequency = v.(model.Frequency)
		case FieldRepeatDays:
			days, _ := v.([]int)
			out.RepeatDays = append([]int(nil), days...)
		case FieldPriority:
			out.Priority = v.(model.Priority)
		case FieldInboxOnly:
			out.InboxOnly = v.(bool)
		case FieldCompleted:
			out.Completed = v.(bool)
		case FieldColor:
			out.Color = v.(string)
		case FieldNotificationTime:
			out.NotificationTime = clonedClock(v)
		case FieldLocation:
			out.Location = v.(string)
		case FieldCategory:
			out.Category = v.(model.Category)
		}
	}
	return out
}

func clonedClock(v any) *model.Clock {
	if p, _ := v.(*model.Clock); p != nil {
		return model.ClockPtr(*p)
	}
	return nil
}

// Package materialize writes concrete instance rows for confirmed recurring
// records and keeps them in step with edits to their parent.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/store"
)

// ErrInsertAfterDelete means old instances were removed but the new ones
// could not be written. The next Apply on the parent regenerates them, or
// call RetryInsert directly.
var ErrInsertAfterDelete = errors.New("materialize: instances deleted but not regenerated")

// Store is the subset of the store contract the materializer and editor use.
type Store interface {
	Get(ctx context.Context, id string) (model.TaskRecord, error)
	Update(ctx context.Context, id string, fields store.Fields) (model.TaskRecord, error)
	Delete(ctx context.Context, id string) error
	BulkInsert(ctx context.Context, recs []model.TaskRecord) ([]model.TaskRecord, error)
	BulkUpdate(ctx context.Context, parentID string, fields store.Fields) error
	BulkDelete(ctx context.Context, parentID string) error
	Children(ctx context.Context, parentID string) ([]model.TaskRecord, error)
}

// Result describes the writes one Apply performed.
type Result struct {
	Deleted  bool
	Updated  bool
	Inserted []model.TaskRecord
}

// Config holds the dependencies for a Materializer.
type Config struct {
	Store  Store
	Logger *slog.Logger
}

type Materializer struct {
	store  Store
	logger *slog.Logger
}

func New(cfg Config) *Materializer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{store: cfg.Store, logger: logger}
}

// ScheduleChanged reports whether any field that defines occurrences differs.
// Becoming or ceasing to be a habit counts, since habits recur by priority.
func ScheduleChanged(before, after model.TaskRecord) bool {
	if (before.Type == model.TypeHabit) != (after.Type == model.TypeHabit) ||
		before.ScheduledDate != after.ScheduledDate ||
		before.EffectiveFrequency() != after.EffectiveFrequency() ||
		before.InboxOnly != after.InboxOnly ||
		!sameClock(before.StartTime, after.StartTime) {
		return true
	}
	if len(before.RepeatDays) != len(after.RepeatDays) {
		return true
	}
	for i := range before.RepeatDays {
		if before.RepeatDays[i] != after.RepeatDays[i] {
			return true
		}
	}
	return false
}

func sameClock(a, b *model.Clock) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// NonScheduleFields are the parent's fields copied onto every instance.
func NonScheduleFields(r model.TaskRecord) store.Fields {
	return store.Fields{
		store.FieldTitle:            r.Title,
		store.FieldDetails:          r.Details,
		store.FieldColor:            r.Color,
		store.FieldNotificationTime: r.NotificationTime,
		store.FieldDurationMinutes:  r.DurationMinutes,
		store.FieldLocation:         r.Location,
	}
}

// Apply brings the instances of a record in line with an edit from before
// to after. Instances themselves and habits, whose recurrence comes from
// their priority, never materialize. A record turned into a habit loses the
// instances it had.
func (m *Materializer) Apply(ctx context.Context, before, after model.TaskRecord) (Result, error) {
	var res Result
	if after.IsInstance() {
		return res, nil
	}
	if after.Type == model.TypeHabit {
		if before.Type == model.TypeHabit || before.InboxOnly {
			return res, nil
		}
		if err := m.store.BulkDelete(ctx, after.ID); err != nil {
			return res, fmt.Errorf("materialize: delete instances of %s: %w", after.ID, err)
		}
		res.Deleted = true
		m.logger.Debug("instances deleted", "parent_id", after.ID, "reason", "habit")
		return res, nil
	}
	confirming := before.InboxOnly && !after.InboxOnly
	recurring := after.EffectiveFrequency() != model.FrequencyOnce ||
		before.EffectiveFrequency() != model.FrequencyOnce
	if !confirming && !recurring {
		return res, nil
	}

	if !before.InboxOnly {
		if !ScheduleChanged(before, after) {
			missing, err := m.missingInstances(ctx, after)
			if err != nil {
				return res, err
			}
			if missing {
				m.logger.Warn("instances missing, regenerating", "parent_id", after.ID)
				return m.RetryInsert(ctx, after)
			}
			if err := m.store.BulkUpdate(ctx, after.ID, NonScheduleFields(after)); err != nil {
				return res, fmt.Errorf("materialize: update instances of %s: %w", after.ID, err)
			}
			res.Updated = true
			m.logger.Debug("instances updated", "parent_id", after.ID)
			return res, nil
		}
		if err := m.store.BulkDelete(ctx, after.ID); err != nil {
			return res, fmt.Errorf("materialize: delete instances of %s: %w", after.ID, err)
		}
		res.Deleted = true
		m.logger.Debug("instances deleted", "parent_id", after.ID)
	}

	if after.InboxOnly {
		return res, nil
	}
	inserted, err := m.insert(ctx, after)
	if err != nil {
		if res.Deleted {
			m.logger.Error("instances lost after delete", "parent_id", after.ID, "error", err)
			return res, fmt.Errorf("%w: %s: %w", ErrInsertAfterDelete, after.ID, err)
		}
		return res, fmt.Errorf("materialize: insert instances of %s: %w", after.ID, err)
	}
	res.Inserted = inserted
	return res, nil
}

// RetryInsert regenerates the instances of parent without deleting anything.
func (m *Materializer) RetryInsert(ctx context.Context, parent model.TaskRecord) (Result, error) {
	inserted, err := m.insert(ctx, parent)
	if err != nil {
		return Result{}, fmt.Errorf("materialize: retry insert for %s: %w", parent.ID, err)
	}
	return Result{Inserted: inserted}, nil
}

// missingInstances reports whether a recurring parent that should have
// instances has none, as after an ErrInsertAfterDelete.
func (m *Materializer) missingInstances(ctx context.Context, parent model.TaskRecord) (bool, error) {
	if len(Horizon(parent)) == 0 {
		return false, nil
	}
	children, err := m.store.Children(ctx, parent.ID)
	if err != nil {
		return false, fmt.Errorf("materialize: list instances of %s: %w", parent.ID, err)
	}
	return len(children) == 0, nil
}

func (m *Materializer) insert(ctx context.Context, parent model.TaskRecord) ([]model.TaskRecord, error) {
	children := Instances(parent)
	if len(children) == 0 {
		return nil, nil
	}
	inserted, err := m.store.BulkInsert(ctx, children)
	if err != nil {
		return nil, err
	}
	m.logger.Info("instances materialized",
		"parent_id", parent.ID,
		"frequency", parent.EffectiveFrequency(),
		"count", len(inserted),
	)
	return inserted, nil
}

// Instances builds, without storing, one confirmed child per horizon date.
func Instances(parent model.TaskRecord) []model.TaskRecord {
	dates := Horizon(parent)
	out := make([]model.TaskRecord, 0, len(dates))
	for _, d := range dates {
		c := parent.Clone()
		c.ID = ""
		c.ScheduledDate = d
		c.Frequency = parent.EffectiveFrequency()
		pid := parent.ID
		c.ParentTaskID = &pid
		c.InboxOnly = false
		c.Completed = false
		c.CreatedAt = time.Time{}
		c.UpdatedAt = time.Time{}
		out = append(out, c)
	}
	return out
}

package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/index"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/store"
)

// Lookup finds a record by id; store.Store satisfies it.
type Lookup interface {
	Get(ctx context.Context, id string) (model.TaskRecord, error)
}

// Stats counts what one Sync or Prune did.
type Stats struct {
	Written   int
	Unchanged int
	Skipped   int
	Deleted   int
	Failed    int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d written, %d unchanged, %d skipped, %d deleted, %d failed",
		s.Written, s.Unchanged, s.Skipped, s.Deleted, s.Failed)
}

// Mirror copies confirmed records onto a Google calendar, one event per
// record. Materialized instances get their own events; habits become
// recurring events.
type Mirror struct {
	client   *CalendarClient
	index    *index.EventIndex
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
}

func NewMirror(client *CalendarClient, loc *time.Location, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Mirror{client: client, index: client.index, logger: logger, location: loc, now: time.Now}
}

// Sync writes an event for every confirmed record. Failures are logged and
// counted; the joined errors are returned after all records were tried.
func (m *Mirror) Sync(ctx context.Context, records []model.TaskRecord) (Stats, error) {
	var (
		stats Stats
		errs  []error
	)
	today := model.DateOf(m.now().In(m.location))

	for i := range records {
		rec := &records[i]
		if rec.InboxOnly || rec.ScheduledDate.IsZero() {
			stats.Skipped++
			continue
		}
		event, err := ConvertRecordToEvent(rec, today, m.location)
		if err != nil {
			stats.Failed++
			errs = append(errs, err)
			continue
		}
		_, wrote, err := m.client.UpsertEvent(ctx, rec.ID, event)
		if err != nil {
			stats.Failed++
			m.logger.Error("mirror: sync failed", "record_id", rec.ID, "error", err)
			errs = append(errs, fmt.Errorf("google: sync %s: %w", rec.ID, err))
			continue
		}
		if wrote {
			stats.Written++
			m.logger.Debug("mirror: event written", "record_id", rec.ID, "title", rec.Title)
		} else {
			stats.Unchanged++
		}
	}

	if err := m.saveIndex(); err != nil {
		errs = append(errs, err)
	}
	return stats, errors.Join(errs...)
}

// Prune deletes the events of records that no longer exist or went back to
// the inbox. Indexed records are checked first. Events ending after since
// are then listed to catch the ones the index lost; those whose record is
// still confirmed are indexed again.
func (m *Mirror) Prune(ctx context.Context, lookup Lookup, since time.Time) (Stats, error) {
	var (
		stats Stats
		errs  []error
	)
	seen := map[string]bool{}

	if m.index != nil {
		for _, id := range m.index.RecordIDs() {
			seen[id] = true
			stale, err := isStale(ctx, lookup, id)
			if err != nil {
				stats.Failed++
				errs = append(errs, err)
				continue
			}
			if !stale {
				continue
			}
			if err := m.deleteEvent(ctx, id, m.index.Get(id)); err != nil {
				stats.Failed++
				errs = append(errs, err)
				continue
			}
			m.index.Remove(id)
			stats.Deleted++
		}
	}

	events, err := m.client.ListEvents(ctx, since)
	if err != nil {
		stats.Failed++
		errs = append(errs, fmt.Errorf("google: prune list: %w", err))
	}
	for _, ev := range events {
		id, ok := eventRecordID(ev)
		if !ok || seen[id] {
			continue
		}
		stale, err := isStale(ctx, lookup, id)
		if err != nil {
			stats.Failed++
			errs = append(errs, err)
			continue
		}
		if !stale {
			if m.index != nil {
				m.index.Set(id, ev.Id)
			}
			seen[id] = true
			continue
		}
		if err := m.deleteEvent(ctx, id, ev.Id); err != nil {
			stats.Failed++
			errs = append(errs, err)
			continue
		}
		stats.Deleted++
	}

	if err := m.saveIndex(); err != nil {
		errs = append(errs, err)
	}
	return stats, errors.Join(errs...)
}

// isStale reports whether the event of a record should go: the record is
// gone or back in the inbox.
func isStale(ctx context.Context, lookup Lookup, id string) (bool, error) {
	rec, err := lookup.Get(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return true, nil
	case err != nil:
		return false, fmt.Errorf("google: prune lookup %s: %w", id, err)
	}
	return rec.InboxOnly, nil
}

func (m *Mirror) deleteEvent(ctx context.Context, recordID, eventID string) error {
	if err := m.client.DeleteEvent(ctx, eventID); err != nil {
		m.logger.Error("mirror: delete failed", "record_id", recordID, "error", err)
		return fmt.Errorf("google: delete event of %s: %w", recordID, err)
	}
	return nil
}

func (m *Mirror) saveIndex() error {
	if m.index == nil {
		return nil
	}
	if err := m.index.Save(); err != nil {
		return fmt.Errorf("google: save index: %w", err)
	}
	return nil
}

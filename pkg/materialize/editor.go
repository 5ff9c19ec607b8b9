package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/store"
)

// Cache is the in-memory view of records that edits are applied to before
// the store confirms them.
type Cache struct {
	mu      sync.RWMutex
	records map[string]model.TaskRecord
}

func NewCache() *Cache {
	return &Cache{records: make(map[string]model.TaskRecord)}
}

func (c *Cache) Put(rec model.TaskRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[rec.ID] = rec.Clone()
}

func (c *Cache) Get(id string) (model.TaskRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[id]
	if !ok {
		return model.TaskRecord{}, false
	}
	return rec.Clone(), true
}

func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, id)
}

// Records returns a snapshot ordered by id.
func (c *Cache) Records() []model.TaskRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.TaskRecord, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// removeFamily drops a record and its instances, returning what was removed.
func (c *Cache) removeFamily(id string) []model.TaskRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed []model.TaskRecord
	for k, r := range c.records {
		if k == id || (r.ParentTaskID != nil && *r.ParentTaskID == id) {
			removed = append(removed, r)
			delete(c.records, k)
		}
	}
	return removed
}

// Editor applies user edits optimistically and rolls the cache back when the
// store or the materializer fails.
type Editor struct {
	Store        Store
	Materializer *Materializer
	Cache        *Cache
	Logger       *slog.Logger
	Now          func() time.Time
}

func NewEditor(s Store, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		Store:        s,
		Materializer: New(Config{Store: s, Logger: logger}),
		Cache:        NewCache(),
		Logger:       logger,
		Now:          time.Now,
	}
}

func (e *Editor) current(ctx context.Context, id string) (model.TaskRecord, error) {
	if rec, ok := e.Cache.Get(id); ok {
		return rec, nil
	}
	rec, err := e.Store.Get(ctx, id)
	if err != nil {
		return model.TaskRecord{}, fmt.Errorf("materialize: load %s: %w", id, err)
	}
	return rec, nil
}

// Edit writes fields to the record and propagates the change to its
// instances. On failure the cache holds the pre-edit record again and the
// error is returned for display. The store may still hold the new values
// when the failure came from the materializer; see ErrInsertAfterDelete.
func (e *Editor) Edit(ctx context.Context, id string, fields store.Fields) (model.TaskRecord, Result, error) {
	before, err := e.current(ctx, id)
	if err != nil {
		return model.TaskRecord{}, Result{}, err
	}
	e.Cache.Put(fields.Apply(before))

	after, err := e.Store.Update(ctx, id, fields)
	if err != nil {
		e.rollback(before, err)
		return before, Result{}, fmt.Errorf("materialize: update %s: %w", id, err)
	}
	res, err := e.Materializer.Apply(ctx, before, after)
	if err != nil {
		e.rollback(before, err)
		return before, res, err
	}
	e.Cache.Put(after)
	return after, res, nil
}

// Confirm moves a record out of the inbox. A record without a date is
// scheduled for today.
func (e *Editor) Confirm(ctx context.Context, id string) (model.TaskRecord, Result, error) {
	rec, err := e.current(ctx, id)
	if err != nil {
		return model.TaskRecord{}, Result{}, err
	}
	if !rec.InboxOnly {
		return rec, Result{}, nil
	}
	fields := store.Fields{store.FieldInboxOnly: false}
	if rec.ScheduledDate.IsZero() {
		now := time.Now
		if e.Now != nil {
			now = e.Now
		}
		fields[store.FieldScheduledDate] = model.DateOf(now())
	}
	return e.Edit(ctx, id, fields)
}

// Delete removes a record together with its instances.
func (e *Editor) Delete(ctx context.Context, id string) error {
	removed := e.Cache.removeFamily(id)
	restore := func() {
		for _, r := range removed {
			e.Cache.Put(r)
		}
	}

	if err := e.Store.BulkDelete(ctx, id); err != nil {
		restore()
		return fmt.Errorf("materialize: delete instances of %s: %w", id, err)
	}
	if err := e.Store.Delete(ctx, id); err != nil {
		restore()
		return fmt.Errorf("materialize: delete %s: %w", id, err)
	}
	e.Logger.Debug("record deleted", "id", id, "cached", len(removed))
	return nil
}

func (e *Editor) rollback(before model.TaskRecord, cause error) {
	e.Cache.Put(before)
	e.Logger.Warn("edit rolled back", "id", before.ID, "error", cause)
}

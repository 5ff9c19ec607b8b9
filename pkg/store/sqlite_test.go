package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	s.now = func() time.Time { return time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { s.Close() })
	return s
}

func weekly(date model.Date) model.TaskRecord {
	start := model.Clock(9 * 60)
	duration := 45
	return model.TaskRecord{
		UserID:          "u1",
		Title:           "Gym",
		Type:            model.TypeTask,
		ScheduledDate:   date,
		StartTime:       &start,
		DurationMinutes: &duration,
		Frequency:       model.FrequencyWeekly,
		RepeatDays:      []int{1, 3},
		Priority:        model.PriorityMedium,
		Color:           "#10B981",
		Category:        model.CategoryHealth,
	}
}

func TestInsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := model.NewDate(2025, 1, 15)

	in, err := s.Insert(ctx, weekly(day))
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if in.ID == "" {
		t.Fatal("Expected an id to be assigned")
	}

	got, err := s.Get(ctx, in.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Title != "Gym" || got.ScheduledDate != day || got.Frequency != model.FrequencyWeekly {
		t.Errorf("Expected Gym weekly on %s, got %+v", day, got)
	}
	if got.StartTime == nil || *got.StartTime != model.Clock(9*60) {
		t.Errorf("Expected start 09:00, got %v", got.StartTime)
	}
	if got.DurationMinutes == nil || *got.DurationMinutes != 45 {
		t.Errorf("Expected duration 45, got %v", got.DurationMinutes)
	}
	if len(got.RepeatDays) != 2 || got.RepeatDays[0] != 1 || got.RepeatDays[1] != 3 {
		t.Errorf("Expected repeat days [1 3], got %v", got.RepeatDays)
	}
	if got.NotificationTime != nil || got.ParentTaskID != nil {
		t.Errorf("Expected nil optional fields, got %+v", got)
	}
	if !got.CreatedAt.Equal(s.now()) {
		t.Errorf("Expected createdAt %v, got %v", s.now(), got.CreatedAt)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	rec, err := s.Insert(ctx, weekly(model.NewDate(2025, 1, 15)))
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	got, err := s.Update(ctx, rec.ID, Fields{
		FieldTitle:      "Swim",
		FieldStartTime:  (*model.Clock)(nil),
		FieldRepeatDays: []int{5},
		FieldInboxOnly:  false,
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Title != "Swim" {
		t.Errorf("Expected title Swim, got %q", got.Title)
	}
	if got.StartTime != nil {
		t.Errorf("Expected cleared start time, got %v", *got.StartTime)
	}
	if len(got.RepeatDays) != 1 || got.RepeatDays[0] != 5 {
		t.Errorf("Expected repeat days [5], got %v", got.RepeatDays)
	}

	if _, err := s.Update(ctx, rec.ID, Fields{"bogus": 1}); err == nil {
		t.Error("Expected an error for an unknown field")
	}
	if _, err := s.Update(ctx, "missing", Fields{FieldTitle: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBulkOperations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := model.NewDate(2025, 1, 15)

	parent, err := s.Insert(ctx, weekly(day))
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	var children []model.TaskRecord
	for i := 1; i <= 3; i++ {
		c := weekly(day.AddDays(7 * i))
		c.Frequency = model.FrequencyOnce
		c.ParentTaskID = &parent.ID
		children = append(children, c)
	}
	if _, err := s.BulkInsert(ctx, children); err != nil {
		t.Fatalf("BulkInsert() error: %v", err)
	}

	got, err := s.Children(ctx, parent.ID)
	if err != nil {
		t.Fatalf("Children() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 children, got %d", len(got))
	}
	if got[0].ScheduledDate != day.AddDays(7) {
		t.Errorf("Expected first child on %s, got %s", day.AddDays(7), got[0].ScheduledDate)
	}

	if err := s.BulkUpdate(ctx, parent.ID, Fields{FieldTitle: "Pool", FieldLocation: "Club"}); err != nil {
		t.Fatalf("BulkUpdate() error: %v", err)
	}
	got, _ = s.Children(ctx, parent.ID)
	for _, c := range got {
		if c.Title != "Pool" || c.Location != "Club" {
			t.Errorf("Expected Pool at Club, got %q at %q", c.Title, c.Location)
		}
	}
	p, _ := s.Get(ctx, parent.ID)
	if p.Title != "Gym" {
		t.Errorf("Expected parent title untouched, got %q", p.Title)
	}

	if err := s.BulkDelete(ctx, parent.ID); err != nil {
		t.Fatalf("BulkDelete() error: %v", err)
	}
	got, _ = s.Children(ctx, parent.ID)
	if len(got) != 0 {
		t.Errorf("Expected no children after BulkDelete, got %d", len(got))
	}
	if _, err := s.Get(ctx, parent.ID); err != nil {
		t.Errorf("Expected parent to survive BulkDelete, got %v", err)
	}
}

func TestBulkInsertIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := model.NewDate(2025, 1, 15)

	a := weekly(day)
	a.ID = "dup"
	b := weekly(day)
	b.ID = "dup"
	if _, err := s.BulkInsert(ctx, []model.TaskRecord{a, b}); err == nil {
		t.Fatal("Expected duplicate ids to fail")
	}
	if _, err := s.Get(ctx, "dup"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected nothing written, got %v", err)
	}
}

func TestDeleteRemovesChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := model.NewDate(2025, 1, 15)

	parent, _ := s.Insert(ctx, weekly(day))
	child := weekly(day.AddDays(7))
	child.ParentTaskID = &parent.ID
	child, err := s.Insert(ctx, child)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	if err := s.Delete(ctx, parent.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, child.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected child removed, got %v", err)
	}
	if err := s.Delete(ctx, parent.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestQueryByDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := model.NewDate(2025, 1, 15)

	once := weekly(day)
	once.Title = "Dentist"
	once.Frequency = model.FrequencyOnce
	later := once
	later.Title = "Later"
	later.ScheduledDate = day.AddDays(30)
	other := once
	other.Title = "Other user"
	other.UserID = "u2"
	recurring := weekly(day.AddDays(-60))
	habit := weekly(day.AddDays(-10))
	habit.Title = "Read"
	habit.Type = model.TypeHabit
	habit.Frequency = model.FrequencyOnce
	future := weekly(day.AddDays(10))
	future.Title = "Future weekly"

	for _, r := range []model.TaskRecord{once, later, other, recurring, habit, future} {
		if _, err := s.Insert(ctx, r); err != nil {
			t.Fatalf("Insert(%s) error: %v", r.Title, err)
		}
	}

	got, err := s.QueryByDateRange(ctx, "u1", []model.Date{day, day.AddDays(1)})
	if err != nil {
		t.Fatalf("QueryByDateRange() error: %v", err)
	}
	titles := map[string]bool{}
	for _, r := range got {
		titles[r.Title] = true
	}
	for _, want := range []string{"Dentist", "Gym", "Read"} {
		if !titles[want] {
			t.Errorf("Expected %q in results, got %v", want, titles)
		}
	}
	for _, unwanted := range []string{"Later", "Other user", "Future weekly"} {
		if titles[unwanted] {
			t.Errorf("Expected %q to be excluded", unwanted)
		}
	}

	none, err := s.QueryByDateRange(ctx, "u1", nil)
	if err != nil || len(none) != 0 {
		t.Errorf("Expected empty result for no dates, got %v, %v", none, err)
	}
}

func TestInbox(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	draft := weekly(model.NewDate(2025, 1, 15))
	draft.InboxOnly = true
	confirmed := weekly(model.NewDate(2025, 1, 15))
	if _, err := s.Insert(ctx, draft); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Insert(ctx, confirmed); err != nil {
		t.Fatal(err)
	}

	got, err := s.Inbox(ctx, "u1")
	if err != nil {
		t.Fatalf("Inbox() error: %v", err)
	}
	if len(got) != 1 || !got[0].InboxOnly {
		t.Errorf("Expected one inbox record, got %+v", got)
	}
}

func TestFieldsApply(t *testing.T) {
	rec := weekly(model.NewDate(2025, 1, 15))
	out := Fields{
		FieldTitle:         "Run",
		FieldScheduledDate: model.NewDate(2025, 2, 1),
		FieldFrequency:     model.FrequencyDaily,
	}.Apply(rec)

	if out.Title != "Run" || out.ScheduledDate != model.NewDate(2025, 2, 1) || out.Frequency != model.FrequencyDaily {
		t.Errorf("Expected fields applied, got %+v", out)
	}
	if rec.Title != "Gym" {
		t.Errorf("Expected original untouched, got %q", rec.Title)
	}
	if out.StartTime == rec.StartTime {
		t.Error("Expected pointer fields to be copied")
	}
}

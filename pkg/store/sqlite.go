package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

const columns = `id, user_id, title, details, type, scheduled_date, start_time, duration_minutes,
	frequency, repeat_days, priority, parent_task_id, inbox_only, completed, color,
	notification_time, location, category, created_at, updated_at`

var updatable = map[string]bool{
	FieldTitle: true, FieldDetails: true, FieldType: true, FieldScheduledDate: true,
	FieldStartTime: true, FieldDurationMinutes: true, FieldFrequency: true, FieldRepeatDays: true,
	FieldPriority: true, FieldInboxOnly: true, FieldCompleted: true, FieldColor: true,
	FieldNotificationTime: true, FieldLocation: true, FieldCategory: true,
}

// SQLite implements Store on a single database file.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLite)(nil)

func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// A single connection keeps pragmas and writes consistent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &SQLite{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id                TEXT PRIMARY KEY,
			user_id           TEXT NOT NULL,
			title             TEXT NOT NULL,
			details           TEXT NOT NULL DEFAULT '',
			type              TEXT NOT NULL DEFAULT 'task',
			scheduled_date    TEXT NOT NULL DEFAULT '',
			start_time        INTEGER,
			duration_minutes  INTEGER,
			frequency         TEXT NOT NULL DEFAULT 'once',
			repeat_days       TEXT NOT NULL DEFAULT '',
			priority          TEXT NOT NULL DEFAULT '',
			parent_task_id    TEXT REFERENCES tasks(id) ON DELETE CASCADE,
			inbox_only        INTEGER NOT NULL DEFAULT 1,
			completed         INTEGER NOT NULL DEFAULT 0,
			color             TEXT NOT NULL DEFAULT '',
			notification_time INTEGER,
			location          TEXT NOT NULL DEFAULT '',
			category          TEXT NOT NULL DEFAULT '',
			created_at        TEXT NOT NULL,
			updated_at        TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, scheduled_date);
		CREATE INDEX IF NOT EXISTS idx_tasks_parent ON tasks(parent_task_id);
	`)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) insert(ctx context.Context, ex execer, rec model.TaskRecord) (model.TaskRecord, error) {
	rec = rec.Clone()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Frequency == "" {
		rec.Frequency = model.FrequencyOnce
	}
	now := s.now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	_, err := ex.ExecContext(ctx, `INSERT INTO tasks (`+columns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Title, rec.Details, string(rec.Type), rec.ScheduledDate.String(),
		clockValue(rec.StartTime), intValue(rec.DurationMinutes), string(rec.Frequency),
		encodeDays(rec.RepeatDays), string(rec.Priority), stringValue(rec.ParentTaskID),
		rec.InboxOnly, rec.Completed, rec.Color, clockValue(rec.NotificationTime), rec.Location,
		string(rec.Category), rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.TaskRecord{}, err
	}
	return rec, nil
}

func (s *SQLite) Insert(ctx context.Context, rec model.TaskRecord) (model.TaskRecord, error) {
	out, err := s.insert(ctx, s.db, rec)
	if err != nil {
		return model.TaskRecord{}, fmt.Errorf("store: insert: %w", err)
	}
	return out, nil
}

// BulkInsert writes all records in one transaction.
func (s *SQLite) BulkInsert(ctx context.Context, recs []model.TaskRecord) ([]model.TaskRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: bulk insert: %w", err)
	}
	defer tx.Rollback()

	out := make([]model.TaskRecord, 0, len(recs))
	for _, rec := range recs {
		r, err := s.insert(ctx, tx, rec)
		if err != nil {
			return nil, fmt.Errorf("store: bulk insert: %w", err)
		}
		out = append(out, r)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: bulk insert: %w", err)
	}
	return out, nil
}

// setClause renders fields in a stable order so statements are reproducible.
func (s *SQLite) setClause(fields Fields) (string, []any, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !updatable[k] {
			return "", nil, fmt.Errorf("unknown field %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		parts = append(parts, k+" = ?")
		args = append(args, sqlValue(fields[k]))
	}
	parts = append(parts, "updated_at = ?")
	args = append(args, s.now().UTC().Format(time.RFC3339Nano))
	return strings.Join(parts, ", "), args, nil
}

func (s *SQLite) Update(ctx context.Context, id string, fields Fields) (model.TaskRecord, error) {
	set, args, err := s.setClause(fields)
	if err != nil {
		return model.TaskRecord{}, fmt.Errorf("store: update %s: %w", id, err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+set+` WHERE id = ?`, append(args, id)...)
	if err != nil {
		return model.TaskRecord{}, fmt.Errorf("store: update %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.TaskRecord{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLite) BulkUpdate(ctx context.Context, parentID string, fields Fields) error {
	set, args, err := s.setClause(fields)
	if err != nil {
		return fmt.Errorf("store: bulk update %s: %w", parentID, err)
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+set+` WHERE parent_task_id = ?`, append(args, parentID)...); err != nil {
		return fmt.Errorf("store: bulk update %s: %w", parentID, err)
	}
	return nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE parent_task_id = ?`, id); err != nil {
		return fmt.Errorf("store: delete children of %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func (s *SQLite) BulkDelete(ctx context.Context, parentID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE parent_task_id = ?`, parentID); err != nil {
		return fmt.Errorf("store: bulk delete %s: %w", parentID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (model.TaskRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM tasks WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.TaskRecord{}, ErrNotFound
	}
	if err != nil {
		return model.TaskRecord{}, fmt.Errorf("store: get %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLite) Children(ctx context.Context, parentID string) ([]model.TaskRecord, error) {
	return s.query(ctx, "children", `SELECT `+columns+` FROM tasks WHERE parent_task_id = ?
		ORDER BY scheduled_date, id`, parentID)
}

func (s *SQLite) Inbox(ctx context.Context, userID string) ([]model.TaskRecord, error) {
	return s.query(ctx, "inbox", `SELECT `+columns+` FROM tasks WHERE user_id = ? AND inbox_only = 1
		ORDER BY created_at, id`, userID)
}

// QueryByDateRange narrows by origin date: one-off records must fall on one
// of the dates, recurring records and habits only need to start by the last one.
func (s *SQLite) QueryByDateRange(ctx context.Context, userID string, dates []model.Date) ([]model.TaskRecord, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	last := dates[0]
	placeholders := make([]string, len(dates))
	args := []any{userID}
	for i, d := range dates {
		placeholders[i] = "?"
		args = append(args, d.String())
		if d.After(last) {
			last = d
		}
	}
	args = append(args, last.String())

	return s.query(ctx, "query by date range", `SELECT `+columns+` FROM tasks
		WHERE user_id = ?
		  AND scheduled_date <> ''
		  AND (scheduled_date IN (`+strings.Join(placeholders, ", ")+`)
		       OR ((frequency <> 'once' OR type = 'habit') AND scheduled_date <= ?))
		ORDER BY scheduled_date, id`, args...)
}

func (s *SQLite) query(ctx context.Context, op, q string, args ...any) ([]model.TaskRecord, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	defer rows.Close()

	var out []model.TaskRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: %s: %w", op, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %s: %w", op, err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (model.TaskRecord, error) {
	var (
		rec                     model.TaskRecord
		typ, date, freq, days   string
		priority, category      string
		start, duration, notify sql.NullInt64
		parent                  sql.NullString
		created, updated        string
	)
	err := sc.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Details, &typ, &date, &start, &duration,
		&freq, &days, &priority, &parent, &rec.InboxOnly, &rec.Completed, &rec.Color,
		&notify, &rec.Location, &category, &created, &updated)
	if err != nil {
		return model.TaskRecord{}, err
	}

	rec.Type = model.Type(typ)
	rec.Frequency = model.Frequency(freq)
	rec.Priority = model.Priority(priority)
	rec.Category = model.Category(category)
	if date != "" {
		if rec.ScheduledDate, err = model.ParseDate(date); err != nil {
			return model.TaskRecord{}, err
		}
	}
	if start.Valid {
		rec.StartTime = model.ClockPtr(model.Clock(start.Int64))
	}
	if notify.Valid {
		rec.NotificationTime = model.ClockPtr(model.Clock(notify.Int64))
	}
	if duration.Valid {
		d := int(duration.Int64)
		rec.DurationMinutes = &d
	}
	if parent.Valid {
		p := parent.String
		rec.ParentTaskID = &p
	}
	rec.RepeatDays = decodeDays(days)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return rec, nil
}

// sqlValue converts model values from Fields into driver values.
func sqlValue(v any) any {
	switch x := v.(type) {
	case model.Date:
		return x.String()
	case *model.Clock:
		return clockValue(x)
	case *int:
		return intValue(x)
	case []int:
		return encodeDays(x)
	case model.Type:
		return string(x)
	case model.Frequency:
		return string(x)
	case model.Priority:
		return string(x)
	case model.Category:
		return string(x)
	}
	return v
}

func clockValue(c *model.Clock) any {
	if c == nil {
		return nil
	}
	return int64(*c)
}

func intValue(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

func stringValue(p *string) any {
	if p == nil || *p == "" {
		return nil
	}
	return *p
}

func encodeDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func decodeDays(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, p := range strings.Split(s, ",") {
		if d, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			days = append(days, d)
		}
	}
	return days
}

package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2024, time.January, 31)
	if got := d.AddDays(1); got != NewDate(2024, time.February, 1) {
		t.Errorf("Expected 2024-02-01, got %s", got)
	}
	if d.Weekday() != 3 {
		t.Errorf("Expected Wednesday (3), got %d", d.Weekday())
	}
	if !d.Before(d.AddDays(1)) || d.After(d.AddDays(1)) {
		t.Errorf("Expected %s to be before the next day", d)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-03-09")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.String() != "2025-03-09" {
		t.Errorf("Expected 2025-03-09, got %s", d)
	}
	if _, err := ParseDate("09/03/2025"); err == nil {
		t.Error("Expected error for non ISO date")
	}
}

func TestClock(t *testing.T) {
	c, err := ParseClock("15:05")
	if err != nil {
		t.Fatalf("ParseClock failed: %v", err)
	}
	if c.Hour() != 15 || c.Minute() != 5 || c.String() != "15:05" {
		t.Errorf("Expected 15:05, got %s", c)
	}
	if _, err := NewClock(24, 0); err == nil {
		t.Error("Expected error for hour 24")
	}
}

func TestTaskRecordJSON(t *testing.T) {
	parent := "p1"
	rec := TaskRecord{
		ID:            "c1",
		Title:         "Run",
		Type:          TypeHabit,
		ScheduledDate: NewDate(2025, time.May, 1),
		StartTime:     ClockPtr(Clock(7 * 60)),
		Frequency:     FrequencyDaily,
		ParentTaskID:  &parent,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var back TaskRecord
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back.ScheduledDate != rec.ScheduledDate || *back.StartTime != *rec.StartTime || *back.ParentTaskID != parent {
		t.Errorf("Expected round trip of %+v, got %+v", rec, back)
	}
}

func TestNewRecordDefaults(t *testing.T) {
	rec := DetectedContext{Title: "Pay rent", Date: "2025-06-01", Time: "09:30"}.NewRecord("u1")
	if rec.Type != TypeTask || rec.Frequency != FrequencyOnce || !rec.InboxOnly {
		t.Errorf("Expected inbox task once, got %+v", rec)
	}
	if rec.StartTime == nil || rec.StartTime.String() != "09:30" {
		t.Errorf("Expected start 09:30, got %v", rec.StartTime)
	}
}

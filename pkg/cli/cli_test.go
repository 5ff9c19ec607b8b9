package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

// 2025-01-15 is a Wednesday.
var fixedNow = time.Date(2025, time.January, 15, 10, 0, 0, 0, time.UTC)

type env struct {
	config string
	db     string
}

func newEnv(t *testing.T) env {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return fixedNow }
	t.Cleanup(func() { nowFunc = prev })
	t.Setenv("LIFEBETTER_DB", "")
	dir := t.TempDir()
	return env{
		config: filepath.Join(dir, "config.yaml"),
		db:     filepath.Join(dir, "tasks.db"),
	}
}

func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", e.config, "--db", e.db}, args...))
	err := root.Execute()
	return out.String(), err
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

var addedID = regexp.MustCompile(`(?m)^Added (\S+)$`)

func (e env) add(t *testing.T, text string) string {
	t.Helper()
	out := e.mustRun(t, "add", text)
	m := addedID.FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("Expected 'Added <id>' in output, got:\n%s", out)
	}
	return m[1]
}

func TestNewRootCmd_hasSubcommands(t *testing.T) {
	root := NewRootCmd("test")
	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"parse", "add", "inbox", "confirm", "edit", "delete", "day", "counts", "sync", "auth", "set-calendar"} {
		if !names[want] {
			t.Errorf("Expected subcommand %q", want)
		}
	}
}

func TestNewRootCmd_flags(t *testing.T) {
	root := NewRootCmd("")
	for _, name := range []string{"config", "db", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag", name)
		}
	}
	if root.Version != "dev" {
		t.Errorf("Expected version dev, got %q", root.Version)
	}
}

func TestParsePrintsJSON(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "parse", "reunião", "amanhã", "às", "15h")
	for _, want := range []string{`"type": "meeting"`, `"date": "2025-01-16"`, `"time": "15:00"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in output, got:\n%s", want, out)
		}
	}
}

func TestAddGoesToInbox(t *testing.T) {
	e := newEnv(t)
	if out := e.mustRun(t, "inbox"); !strings.Contains(out, "Inbox is empty") {
		t.Errorf("Expected empty inbox, got:\n%s", out)
	}

	id := e.add(t, "reunião amanhã às 15h")
	out := e.mustRun(t, "inbox")
	if !strings.Contains(out, id) || !strings.Contains(out, "2025-01-16  15:00  meeting") {
		t.Errorf("Expected the meeting in the inbox, got:\n%s", out)
	}

	if out := e.mustRun(t, "day", "2025-01-16"); !strings.Contains(out, "Nothing on 2025-01-16") {
		t.Errorf("Expected inbox records hidden from the day view, got:\n%s", out)
	}
}

func TestConfirmShowsOnDay(t *testing.T) {
	e := newEnv(t)
	id := e.add(t, "reunião amanhã às 15h")

	out := e.mustRun(t, "confirm", id)
	if want := "Confirmed " + id + " on 2025-01-16 (0 instances)"; !strings.Contains(out, want) {
		t.Errorf("Expected %q, got:\n%s", want, out)
	}
	if out := e.mustRun(t, "inbox"); !strings.Contains(out, "Inbox is empty") {
		t.Errorf("Expected empty inbox after confirm, got:\n%s", out)
	}
	if out := e.mustRun(t, "day", "2025-01-16"); !strings.Contains(out, "Reunião") {
		t.Errorf("Expected Reunião on 2025-01-16, got:\n%s", out)
	}

	out = e.mustRun(t, "counts", "2025-01-15", "2025-01-17")
	want := "2025-01-15  0\n2025-01-16  1\n2025-01-17  0\n"
	if out != want {
		t.Errorf("Expected counts:\n%s\ngot:\n%s", want, out)
	}
}

func TestEditToWeeklyMaterializes(t *testing.T) {
	e := newEnv(t)
	id := e.add(t, "reunião amanhã às 15h")
	e.mustRun(t, "confirm", id)

	out := e.mustRun(t, "edit", id, "--frequency", "weekly")
	if !strings.Contains(out, "Regenerated 12 instances") {
		t.Errorf("Expected 12 weekly instances, got:\n%s", out)
	}

	// Thursdays only, one visible record each.
	out = e.mustRun(t, "counts", "2025-01-22", "2025-01-23")
	if out != "2025-01-22  0\n2025-01-23  1\n" {
		t.Errorf("Expected one record on Thursday 2025-01-23, got:\n%s", out)
	}

	out = e.mustRun(t, "edit", id, "--title", "Weekly sync")
	if !strings.Contains(out, "Updated instances") {
		t.Errorf("Expected instances patched in place, got:\n%s", out)
	}
	if out := e.mustRun(t, "day", "2025-01-30"); !strings.Contains(out, "Weekly sync") {
		t.Errorf("Expected renamed instance on 2025-01-30, got:\n%s", out)
	}
}

func TestEditRequiresAField(t *testing.T) {
	e := newEnv(t)
	id := e.add(t, "reunião amanhã às 15h")
	if _, err := e.run(t, "edit", id); err == nil {
		t.Error("Expected an error when no field flag is passed")
	}
	if _, err := e.run(t, "edit", id, "--frequency", "yearly"); err == nil {
		t.Error("Expected an error for an unknown frequency")
	}
}

func TestDeleteRemovesFamily(t *testing.T) {
	e := newEnv(t)
	id := e.add(t, "reunião amanhã às 15h")
	e.mustRun(t, "confirm", id)
	e.mustRun(t, "edit", id, "--frequency", "daily")

	if out := e.mustRun(t, "delete", id); !strings.Contains(out, "Deleted "+id) {
		t.Errorf("Expected delete confirmation, got:\n%s", out)
	}
	if out := e.mustRun(t, "day", "2025-01-20"); !strings.Contains(out, "Nothing on 2025-01-20") {
		t.Errorf("Expected no instances left, got:\n%s", out)
	}
	if _, err := e.run(t, "delete", id); err == nil {
		t.Error("Expected an error deleting a missing record")
	}
}

func TestCountsRejectsBadRange(t *testing.T) {
	e := newEnv(t)
	if _, err := e.run(t, "counts", "2025-02-01", "2025-01-01"); err == nil {
		t.Error("Expected an error for a reversed range")
	}
	if _, err := e.run(t, "counts", "2025-01-01", "2027-01-01"); err == nil {
		t.Error("Expected an error for a range over the limit")
	}
}

func TestSetCalendar(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "set-calendar", "Family")
	if !strings.Contains(out, "Default calendar set to: Family") {
		t.Errorf("Expected confirmation, got:\n%s", out)
	}
	data, err := os.ReadFile(e.config)
	if err != nil {
		t.Fatalf("Expected config file written: %v", err)
	}
	if !strings.Contains(string(data), "calendar: Family") {
		t.Errorf("Expected calendar in config, got:\n%s", data)
	}
}

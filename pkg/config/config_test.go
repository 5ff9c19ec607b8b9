package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LIFEBETTER_DB", "")
	dir := t.TempDir()
	cfg, err := LoadFrom(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Calendar != "LifeBetter" {
		t.Errorf("Expected calendar LifeBetter, got %q", cfg.Calendar)
	}
	if cfg.UserID != "local" {
		t.Errorf("Expected user local, got %q", cfg.UserID)
	}
	if want := filepath.Join(dir, "lifebetter.db"); cfg.Database != want {
		t.Errorf("Expected database %q, got %q", want, cfg.Database)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("LIFEBETTER_DB", "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	in := &Config{Calendar: "Family", Database: "/tmp/x.db", UserID: "ana", Language: "EN"}
	if err := SaveTo(path, in); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected mode 0600, got %o", perm)
	}

	out, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if out.Calendar != "Family" || out.Database != "/tmp/x.db" || out.UserID != "ana" {
		t.Errorf("Expected saved values, got %+v", out)
	}
	if out.Language != "en" {
		t.Errorf("Expected language normalized to en, got %q", out.Language)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("LIFEBETTER_DB", "/data/override.db")
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Database != "/data/override.db" {
		t.Errorf("Expected env database, got %q", cfg.Database)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("calendar: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("Expected an error for malformed YAML")
	}
}

func TestHomeDirOverride(t *testing.T) {
	t.Setenv("LIFEBETTER_HOME", "/srv/lifebetter")
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error: %v", err)
	}
	if path != "/srv/lifebetter/config.yaml" {
		t.Errorf("Expected /srv/lifebetter/config.yaml, got %s", path)
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("Expected local zone, got %v, %v", loc, err)
	}

	cfg.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Expected UTC, got %v, %v", loc, err)
	}

	cfg.Timezone = "Nowhere/Invalid"
	if _, err := cfg.Location(); err == nil {
		t.Error("Expected an error for an unknown zone")
	}
}

func TestSetCalendarKeepsEnvOut(t *testing.T) {
	t.Setenv("LIFEBETTER_DB", "/env/only.db")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := SaveTo(path, &Config{UserID: "ana"}); err != nil {
		t.Fatalf("SaveTo() error: %v", err)
	}
	if err := SetCalendar(path, "Family"); err != nil {
		t.Fatalf("SetCalendar() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "/env/only.db") {
		t.Errorf("Expected env override kept out of the file, got:\n%s", data)
	}

	t.Setenv("LIFEBETTER_DB", "")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Calendar != "Family" || cfg.UserID != "ana" {
		t.Errorf("Expected Family for ana, got %+v", cfg)
	}
}

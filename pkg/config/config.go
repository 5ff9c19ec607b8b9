package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "lifebetter"
	configFile = "config.yaml"

	defaultCalendar = "LifeBetter"
	defaultUser     = "local"
)

type Config struct {
	Calendar string `yaml:"calendar"`
	Database string `yaml:"database"`
	UserID   string `yaml:"user_id"`
	// Language forces the interpreter's output language ("pt" or "en").
	// Empty means detect per sentence.
	Language string `yaml:"language,omitempty"`
	// Timezone is the IANA zone of mirrored calendar events. Empty means local.
	Timezone string `yaml:"timezone,omitempty"`
}

// HomeDir is the directory holding config, database, token and index.
// LIFEBETTER_HOME overrides it.
func HomeDir() (string, error) {
	if override := os.Getenv("LIFEBETTER_HOME"); override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

func defaultConfig(home string) *Config {
	return &Config{
		Calendar: defaultCalendar,
		Database: filepath.Join(home, "lifebetter.db"),
		UserID:   defaultUser,
	}
}

// LoadFrom reads the YAML file at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := defaultConfig(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config: %w", err)
		}
	}

	applyEnvOverrides(cfg)
	normalize(cfg, filepath.Dir(path))
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if raw := os.Getenv("LIFEBETTER_DB"); raw != "" {
		cfg.Database = raw
	}
}

func normalize(cfg *Config, home string) {
	if cfg.Calendar == "" {
		cfg.Calendar = defaultCalendar
	}
	if cfg.UserID == "" {
		cfg.UserID = defaultUser
	}
	if cfg.Database == "" {
		cfg.Database = filepath.Join(home, "lifebetter.db")
	}
	if strings.HasPrefix(cfg.Database, "~/") {
		if userHome, err := os.UserHomeDir(); err == nil {
			cfg.Database = filepath.Join(userHome, cfg.Database[2:])
		}
	}
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	cfg.Timezone = strings.TrimSpace(cfg.Timezone)
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetCalendar changes only the calendar name stored at path, leaving
// defaults and environment overrides out of the file.
func SetCalendar(path, name string) error {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to decode config: %w", err)
		}
	}
	cfg.Calendar = name
	return SaveTo(path, cfg)
}

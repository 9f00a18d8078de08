package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

const (
	xdgAppName = "tolist"
	configFile = "config.json"

	// DefaultCalendar is the Google Calendar mirrored to when none is configured.
	DefaultCalendar = "Tasks"
)

type Config struct {
	// TasksFile overrides the task file location. Empty means tasks.json
	// in the working directory.
	TasksFile string `json:"tasks_file,omitempty"`
	Calendar  string `json:"calendar"`
}

// Dir returns ~/.config/tolist.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
// Comments and trailing commas are accepted.
func LoadFrom(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Calendar: DefaultCalendar}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(b), &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}

// ResolveTasksFile picks the task file: flag, then config, then the default.
func ResolveTasksFile(flagValue string, cfg *Config, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.TasksFile != "" {
		return cfg.TasksFile
	}
	return fallback
}

// ResolveCalendar picks the calendar name: flag, then config, then DefaultCalendar.
func ResolveCalendar(flagValue string, cfg *Config) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil && cfg.Calendar != "" {
		return cfg.Calendar
	}
	return DefaultCalendar
}

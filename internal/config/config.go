package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Output formats for `timeline export`.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "TIMELINE_LOG_LEVEL"

// ProjectFiles are looked up in the project root in this order; the first one
// present is used. The JSON file keeps the historical name.
var ProjectFiles = []string{".timelineconfig", ".timeline.yaml", ".timeline.yml"}

// Config holds all configurable timeline settings.
type Config struct {
	TimelineDir    string   `json:"timeline_dir" yaml:"timeline_dir"`
	IgnorePatterns []string `json:"ignore_patterns" yaml:"ignore_patterns"`
	Editor         string   `json:"editor" yaml:"editor"`                 // used when $VISUAL and $EDITOR are unset
	DefaultFormat  string   `json:"default_format" yaml:"default_format"` // "markdown" | "json"
	OutputDir      string   `json:"output_dir" yaml:"output_dir"`
	LogLevel       string   `json:"log_level" yaml:"log_level"`
	LogFormat      string   `json:"log_format" yaml:"log_format"` // "console" | "json"
	LogFile        string   `json:"log_file" yaml:"log_file"`     // empty means <timeline_dir>/timeline.log
}

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		TimelineDir:    ".timeline",
		DefaultFormat:  FormatMarkdown,
		OutputDir:      ".",
		LogLevel:       "info",
		LogFormat:      LogFormatConsole,
		IgnorePatterns: []string{},
	}
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.TimelineDir, validation.Required),
		validation.Field(&c.DefaultFormat, validation.Required, validation.In(FormatMarkdown, FormatJSON)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.Required, validation.In(LogFormatConsole, LogFormatJSON)),
	)
}

// ApplyEnv applies environment overrides read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if lvl := getenv(EnvLogLevel); lvl != "" {
		c.LogLevel = lvl
	}
}

// GlobalPath returns ~/.config/timeline/config.json.
func GlobalPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "timeline", "config.json"), nil
}

// LoadGlobal reads ~/.config/timeline/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, true)
}

// LoadProject reads the first of ProjectFiles found in dir.
// Returns nil (no error) if none is present.
func LoadProject(dir string) (*Config, error) {
	for _, name := range ProjectFiles {
		cfg, err := loadFile(filepath.Join(dir, name), false)
		if err != nil || cfg != nil {
			return cfg, err
		}
	}
	return nil, nil
}

// Load merges the global and project configs for dir, applies environment
// overrides and validates the result.
func Load(dir string, getenv func(string) string) (Config, error) {
	global, err := LoadGlobal()
	if err != nil {
		return Config{}, err
	}
	project, err := LoadProject(dir)
	if err != nil {
		return Config{}, err
	}
	cfg := Merge(global, project)
	cfg.ApplyEnv(getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFile reads and parses a config file at path. Files ending in .yaml or
// .yml are YAML with ${VAR} expansion; everything else is JSON.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}

	var cfg Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, c := range []*Config{global, project} {
		if c == nil {
			continue
		}
		overlay(&result.TimelineDir, c.TimelineDir)
		overlay(&result.Editor, c.Editor)
		overlay(&result.DefaultFormat, c.DefaultFormat)
		overlay(&result.OutputDir, c.OutputDir)
		overlay(&result.LogLevel, c.LogLevel)
		overlay(&result.LogFormat, c.LogFormat)
		overlay(&result.LogFile, c.LogFile)
		if len(c.IgnorePatterns) > 0 {
			result.IgnorePatterns = c.IgnorePatterns
		}
	}
	return result
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

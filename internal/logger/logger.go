// Package logger builds the zerolog loggers used across timeline.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format selects how records are encoded.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config describes the sinks of a logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format Format
	// File is the rotating log file. Empty disables the file sink.
	File       string
	MaxSizeMB  int
	MaxBackups int
	// ConsoleLevel is the minimum level echoed to Console. Command output
	// shares the terminal, so this is usually higher than Level.
	ConsoleLevel string
	Console      io.Writer
}

// DefaultConfig logs info and above to no file and warnings to stderr.
func DefaultConfig() Config {
	return Config{
		Level:        "info",
		Format:       FormatConsole,
		MaxSizeMB:    10,
		MaxBackups:   3,
		ConsoleLevel: "warn",
		Console:      os.Stderr,
	}
}

// ParseLevel parses a level name case-insensitively.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// New builds a logger from cfg. The returned closer releases the log file and
// must be called on exit.
func New(cfg Config) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}
	consoleLevel := level
	if cfg.ConsoleLevel != "" {
		if consoleLevel, err = ParseLevel(cfg.ConsoleLevel); err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
	}
	if cfg.File != "" && cfg.MaxSizeMB <= 0 {
		return zerolog.Nop(), nopCloser{}, errors.New("max size must be positive when file logging is enabled")
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	if cfg.Console != nil {
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: encoder(cfg.Format, cfg.Console, false)},
			Level:  consoleLevel,
		})
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("creating log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		closer = lj
		writers = append(writers, encoder(cfg.Format, lj, true))
	}
	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return l, closer, nil
}

func encoder(format Format, w io.Writer, noColor bool) io.Writer {
	if format == FormatJSON {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: "15:04:05"}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

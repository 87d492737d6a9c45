package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	l, closer, err := New(DefaultConfig())
	require.NoError(t, err)
	defer closer.Close()
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)

	_, err = ParseLevel("chatty")
	assert.Error(t, err)
}

func TestConsoleLevelFiltersRecords(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := New(Config{
		Level:        "debug",
		Format:       FormatJSON,
		ConsoleLevel: "warn",
		Console:      &buf,
	})
	require.NoError(t, err)
	defer closer.Close()

	l.Info().Msg("quiet")
	l.Warn().Str("component", "test").Msg("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	require.Contains(t, out, "loud")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "test", rec["component"])
}

func TestFileSinkReceivesAllLevels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "timeline.log")
	l, closer, err := New(Config{
		Level:        "debug",
		Format:       FormatJSON,
		File:         path,
		MaxSizeMB:    1,
		ConsoleLevel: "error",
		Console:      &bytes.Buffer{},
	})
	require.NoError(t, err)

	l.Debug().Msg("first")
	l.Info().Msg("second")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}

func TestConsoleFormatWritesPlainText(t *testing.T) {
	var buf bytes.Buffer
	l, _, err := New(Config{Level: "info", Format: FormatConsole, Console: &buf})
	require.NoError(t, err)

	l.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, _, err := New(Config{Level: "nope"})
	assert.Error(t, err)

	_, _, err = New(Config{Level: "info", File: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err, "file sink without a size limit")
}

func TestNoSinksIsNop(t *testing.T) {
	l, closer, err := New(Config{Level: "info"})
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	l.Info().Msg("dropped")
}

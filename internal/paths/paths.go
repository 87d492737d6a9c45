// Package paths lays out the on-disk timeline directory of a project.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultDirName is the timeline directory created under the project root.
const DefaultDirName = ".timeline"

// Paths holds every location the timeline reads or writes.
type Paths struct {
	Root        string // project root
	TimelineDir string
	EntriesDir  string
	TmpDir      string
	IndexFile   string
	StateFile   string
	LogFile     string
}

// Build returns the layout for a project rooted at root. An empty dirName
// selects DefaultDirName.
func Build(root, dirName string) Paths {
	if dirName == "" {
		dirName = DefaultDirName
	}
	timelineDir := dirName
	if !filepath.IsAbs(timelineDir) {
		timelineDir = filepath.Join(root, dirName)
	}
	return Paths{
		Root:        root,
		TimelineDir: timelineDir,
		EntriesDir:  filepath.Join(timelineDir, "entries"),
		TmpDir:      filepath.Join(timelineDir, "tmp"),
		IndexFile:   filepath.Join(timelineDir, "index.json"),
		StateFile:   filepath.Join(timelineDir, "state.json"),
		LogFile:     filepath.Join(timelineDir, "timeline.log"),
	}
}

// EnsureDirs creates the entries and tmp directories. It is safe to call
// repeatedly.
func EnsureDirs(p Paths) error {
	// Only ever write under the timeline directory.
	for _, dir := range []string{p.EntriesDir, p.TmpDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating timeline directory: %w", err)
		}
	}
	return nil
}

// FormatEntryPrefix zero-pads counter to six digits.
func FormatEntryPrefix(counter int) string {
	return fmt.Sprintf("%06d", counter)
}

// SanitizeEntryID replaces path separators and whitespace with underscores so
// the id can be used as part of a directory name.
func SanitizeEntryID(id string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, id)
}

// EntryDirName returns the directory name of an entry: "<counter>_<id>".
func EntryDirName(prefix, sanitizedID string) string {
	return prefix + "_" + sanitizedID
}

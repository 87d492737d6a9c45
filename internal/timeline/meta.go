// Package timeline persists unified diffs as versioned, deduplicated entries
// and rebuilds the aggregate index from them.
package timeline

import (
	"github.com/fakeyudi/timeline/internal/diff"
)

// File names inside an entry directory.
const (
	MetaFileName         = "meta.json"
	PatchFileName        = "patch.diff"
	PatchFilesFileName   = "patch.files.json"
	TouchedFilesFileName = "touched.files.json"
	RevisionsDirName     = "revisions"
)

// placeholderID names entries written without a message id.
const placeholderID = "session"

// Stats aggregates change counts.
type Stats struct {
	Files     int `json:"files"`
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// EntryMeta describes the live version of an entry.
type EntryMeta struct {
	ID           string             `json:"id"`
	SessionID    string             `json:"sessionID"`
	MessageID    string             `json:"messageID,omitempty"`
	CreatedAt    int64              `json:"createdAt"` // epoch milliseconds
	DiffHash     string             `json:"diffHash"`
	Stats        Stats              `json:"stats"`
	Files        []diff.FileSummary `json:"files"`
	TouchedFiles []string           `json:"touchedFiles"`
}

// Index is the document written to index.json.
type Index struct {
	GeneratedAt int64       `json:"generatedAt"` // epoch milliseconds
	Entries     []EntryMeta `json:"entries"`
	Totals      Stats       `json:"totals"`
}

// WriteRequest carries everything WriteEntry needs for one write.
type WriteRequest struct {
	MessageID    string // optional
	SessionID    string
	Patch        string
	Files        []diff.FileSummary
	TouchedFiles []string
	// EntryCounter names a newly allocated entry directory. It is owned and
	// persisted by the caller.
	EntryCounter int
}

// WriteResult reports the outcome of WriteEntry.
type WriteResult struct {
	EntryDir string
	Meta     *EntryMeta
	// Skipped is true when the stored patch already had the same hash.
	Skipped bool
	// Created is true when this write allocated the entry directory.
	Created bool
}

func statsOf(files []diff.FileSummary) Stats {
	s := Stats{Files: len(files)}
	for _, f := range files {
		s.Additions += f.Additions
		s.Deletions += f.Deletions
	}
	return s
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Additions += o.Additions
	s.Deletions += o.Deletions
}

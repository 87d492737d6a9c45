// Package report renders a timeline into a shareable document and parses it
// back.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/fakeyudi/timeline/internal/state"
	"github.com/fakeyudi/timeline/internal/timeline"
)

// Report is the complete, renderable representation of a timeline.
type Report struct {
	Project      string         `json:"project"`
	SessionID    string         `json:"session_id"`
	GeneratedAt  time.Time      `json:"generated_at"`
	Totals       timeline.Stats `json:"totals"`
	Entries      []Entry        `json:"entries"`
	TouchedFiles []string       `json:"touched_files"`
}

// Entry is one timeline entry with its live patch.
type Entry struct {
	Meta      timeline.EntryMeta `json:"meta"`
	Patch     string             `json:"patch"`
	Revisions int                `json:"revisions"`
}

// Build collects every entry of store into a Report. st may be nil when no
// state has been saved yet.
func Build(store *timeline.Store, st *state.State, project string, now time.Time) (*Report, error) {
	metas, err := store.ListEntries()
	if err != nil {
		return nil, err
	}

	r := &Report{
		Project:      project,
		GeneratedAt:  now.UTC().Truncate(time.Second),
		Entries:      make([]Entry, 0, len(metas)),
		TouchedFiles: []string{},
	}
	if st != nil {
		r.SessionID = st.SessionID
		r.TouchedFiles = append(r.TouchedFiles, st.TouchedFiles...)
	}

	for _, m := range metas {
		e, err := store.LoadEntry(m.ID)
		if err != nil {
			// Removed between listing and loading.
			if errors.Is(err, timeline.ErrEntryNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading entry %s: %w", m.ID, err)
		}
		revs, err := store.Revisions(e.Dir)
		if err != nil {
			return nil, err
		}
		r.Entries = append(r.Entries, Entry{Meta: e.Meta, Patch: e.Patch, Revisions: len(revs)})
		r.Totals.Files += e.Meta.Stats.Files
		r.Totals.Additions += e.Meta.Stats.Additions
		r.Totals.Deletions += e.Meta.Stats.Deletions
	}
	return r, nil
}

// Package state tracks the active session, the entry counter and the files
// touched since the session started.
package state

import "sort"

// State is the per-project bookkeeping that survives between commands.
type State struct {
	SessionID string `json:"sessionID"`
	// EntryCounter is the counter the next new entry directory is named with.
	EntryCounter          int      `json:"entryCounter"`
	TouchedFiles          []string `json:"touchedFiles"`
	LastUserMessageID     string   `json:"lastUserMessageID,omitempty"`
	LastRecordedMessageID string   `json:"lastRecordedMessageID,omitempty"`
	LastDiffHash          string   `json:"lastDiffHash,omitempty"`
	UpdatedAt             int64    `json:"updatedAt"` // epoch milliseconds
}

// Touch merges files into s.TouchedFiles.
func (s *State) Touch(files ...string) {
	s.TouchedFiles = MergeTouchedFiles(s.TouchedFiles, files)
}

// MergeTouchedFiles returns the sorted union of a and b without duplicates or
// empty names. The result is never nil.
func MergeTouchedFiles(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, f := range list {
			if f == "" {
				continue
			}
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

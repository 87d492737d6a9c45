// Package diff turns before/after snapshots of files into a single
// normalized unified-diff document with per-file statistics.
package diff

import (
	"sort"
	"strings"
)

// ContextLines is the number of unchanged lines kept around each hunk.
const ContextLines = 3

// Status classifies a file change.
type Status string

const (
	StatusAdded    Status = "added"
	StatusDeleted  Status = "deleted"
	StatusModified Status = "modified"
)

// FileDiff is the caller-supplied unit of change for one file.
// Additions and Deletions are trusted and never recomputed from the patch.
type FileDiff struct {
	File      string `json:"file"`
	Before    string `json:"before"`
	After     string `json:"after"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// FileSummary describes one changed file inside a Result.
type FileSummary struct {
	File      string `json:"file"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Status    Status `json:"status"`
}

// Result is the output of BuildUnifiedDiff.
type Result struct {
	Patch     string        `json:"patch"`
	Files     []FileSummary `json:"files"`
	Additions int           `json:"additions"`
	Deletions int           `json:"deletions"`
}

// NormalizeText converts CRLF and lone CR line endings to LF and makes sure
// non-empty text ends with a newline. Empty text stays empty.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// Summarize classifies fd purely from the emptiness of its before/after
// content. The diff itself is not inspected.
func Summarize(fd FileDiff) FileSummary {
	status := StatusModified
	switch {
	case fd.Before == "" && fd.After != "":
		status = StatusAdded
	case fd.Before != "" && fd.After == "":
		status = StatusDeleted
	}
	return FileSummary{
		File:      fd.File,
		Additions: fd.Additions,
		Deletions: fd.Deletions,
		Status:    status,
	}
}

// BuildUnifiedDiff assembles one multi-file unified diff from files.
//
// Files are processed in path order so the document does not depend on the
// order the caller collected them in. Files whose content is equal after
// normalization are dropped entirely: they emit no patch and do not count
// towards Files or the totals.
func BuildUnifiedDiff(files []FileDiff) Result {
	sorted := make([]FileDiff, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.After != b.After {
			return a.After < b.After
		}
		return a.Before < b.Before
	})

	result := Result{Files: []FileSummary{}}
	var fragments []string

	for _, fd := range sorted {
		before := NormalizeText(fd.Before)
		after := NormalizeText(fd.After)
		if before == after {
			continue
		}

		fragments = append(fragments, filePatch(fd.File, before, after))
		result.Files = append(result.Files, Summarize(fd))
		result.Additions += fd.Additions
		result.Deletions += fd.Deletions
	}

	if len(fragments) > 0 {
		result.Patch = strings.Join(fragments, "\n\n") + "\n"
	}
	return result
}

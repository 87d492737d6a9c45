package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fakeyudi/timeline/internal/config"
)

// Markers embedded in Markdown reports.
const (
	versionMarker = "<!-- timeline-report-version: 1 -->"
	dataPrefix    = "<!-- timeline-data: "
	dataSuffix    = " -->"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
	// Ext is the file extension, including the dot.
	Ext() string
}

// NewRenderer returns the renderer for a config format name.
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case config.FormatMarkdown:
		return &MarkdownRenderer{}, nil
	case config.FormatJSON:
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// FileName returns the export file name for a report generated at t.
func FileName(t time.Time, r Renderer) string {
	return "timeline-" + t.UTC().Format("20060102-150405") + r.Ext()
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (j *JSONRenderer) Render(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func (j *JSONRenderer) Ext() string { return ".json" }

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (m *MarkdownRenderer) Ext() string { return ".md" }

func (m *MarkdownRenderer) Render(r *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder

	sb.WriteString(versionMarker + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)

	fmt.Fprintf(&sb, "# Timeline: %s (%s)\n\n", r.Project, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	sb.WriteString("## Summary\n\n")
	if r.SessionID != "" {
		fmt.Fprintf(&sb, "- Session: %s\n", r.SessionID)
	}
	fmt.Fprintf(&sb, "- Entries: %d\n", len(r.Entries))
	fmt.Fprintf(&sb, "- Files changed: %d (+%d / -%d)\n", r.Totals.Files, r.Totals.Additions, r.Totals.Deletions)
	sb.WriteString("\n")

	sb.WriteString("## Entries\n\n")
	if len(r.Entries) == 0 {
		sb.WriteString("_No entries recorded._\n\n")
	}
	for _, e := range r.Entries {
		fmt.Fprintf(&sb, "### %s\n\n", e.Meta.ID)
		if e.Meta.MessageID != "" {
			fmt.Fprintf(&sb, "- Message: %s\n", e.Meta.MessageID)
		}
		fmt.Fprintf(&sb, "- Recorded: %s\n", time.UnixMilli(e.Meta.CreatedAt).UTC().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(&sb, "- Changes: %d files, +%d / -%d\n", e.Meta.Stats.Files, e.Meta.Stats.Additions, e.Meta.Stats.Deletions)
		if e.Revisions > 0 {
			fmt.Fprintf(&sb, "- Earlier versions: %d\n", e.Revisions)
		}
		sb.WriteString("\n")

		if len(e.Meta.Files) > 0 {
			sb.WriteString("| File | Status | + | - |\n")
			sb.WriteString("|------|--------|---|---|\n")
			for _, f := range e.Meta.Files {
				fmt.Fprintf(&sb, "| %s | %s | %d | %d |\n", f.File, f.Status, f.Additions, f.Deletions)
			}
			sb.WriteString("\n")
		}

		if e.Patch == "" {
			sb.WriteString("_Empty patch._\n\n")
			continue
		}
		sb.WriteString("```diff\n")
		sb.WriteString(e.Patch)
		if !strings.HasSuffix(e.Patch, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```\n\n")
	}

	sb.WriteString("## Touched Files\n\n")
	if len(r.TouchedFiles) == 0 {
		sb.WriteString("_No touched files recorded._\n")
	} else {
		for _, f := range r.TouchedFiles {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}
	sb.WriteString("\n")

	return []byte(sb.String()), nil
}

package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/timeline/internal/diff"
	"github.com/fakeyudi/timeline/internal/report"
	"github.com/fakeyudi/timeline/internal/timeline"
)

func sampleReport() *report.Report {
	return &report.Report{
		Project:   "demo",
		SessionID: "sess",
		Entries: []report.Entry{
			{
				Meta: timeline.EntryMeta{
					ID: "000001_m1", MessageID: "m1", CreatedAt: 1_000,
					Stats: timeline.Stats{Files: 1, Additions: 1},
					Files: []diff.FileSummary{{File: "a.txt", Additions: 1, Status: diff.StatusAdded}},
				},
				Patch: "--- a/a.txt\n+++ b/a.txt\n@@ -0,0 +1,1 @@\n+hello\n",
			},
			{
				Meta: timeline.EntryMeta{
					ID: "000002_m2", MessageID: "m2", CreatedAt: 2_000,
					Stats: timeline.Stats{Files: 1, Additions: 2, Deletions: 1},
					Files: []diff.FileSummary{{File: "a.txt", Additions: 2, Deletions: 1, Status: diff.StatusModified}},
				},
				Patch: "--- a/a.txt\n+++ b/a.txt\n@@ -1,1 +1,2 @@\n-hello\n+hi\n+there\n",
			},
		},
		TouchedFiles: []string{"a.txt"},
	}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func key(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestViewBeforeResize(t *testing.T) {
	if got := New(sampleReport(), "x").View(); got != "Loading…" {
		t.Errorf("View = %q", got)
	}
}

func TestAggregateFiles(t *testing.T) {
	files := aggregateFiles(sampleReport())
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	f := files[0]
	if f.file != "a.txt" || f.entries != 2 || f.additions != 3 || f.deletions != 1 || f.last != diff.StatusModified {
		t.Errorf("unexpected aggregate %+v", f)
	}
}

func TestTabSwitching(t *testing.T) {
	m := sized(t, New(sampleReport(), "live"))
	if m.activeTab != tabSummary {
		t.Fatalf("initial tab = %d", m.activeTab)
	}
	m = key(m, "2")
	if m.activeTab != tabEntries {
		t.Fatalf("tab after '2' = %d", m.activeTab)
	}
	m = key(m, "h")
	m = key(m, "h")
	if m.activeTab != tabTimeline {
		t.Fatalf("tab should wrap to Timeline, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "timeline  live") {
		t.Error("title bar missing source")
	}
}

func TestEntryExpandShowsPatch(t *testing.T) {
	m := sized(t, New(sampleReport(), "live"))
	m = key(m, "2")

	if strings.Contains(m.renderEntries(), "+there") {
		t.Fatal("patch shown before expanding")
	}
	m = key(m, "down")
	if m.entryCursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.entryCursor)
	}
	m = key(m, "enter")
	if !m.expandedEntries[1] {
		t.Fatal("entry not expanded")
	}
	if !strings.Contains(m.renderEntries(), "+there") {
		t.Error("expanded entry should show its patch")
	}
	m = key(m, "enter")
	if m.expandedEntries[1] {
		t.Error("second enter should collapse")
	}
}

func TestTimelineSortToggle(t *testing.T) {
	m := sized(t, New(sampleReport(), "live"))
	m = key(m, "5")

	out := m.renderTimeline()
	if strings.Index(out, "000002_m2") > strings.Index(out, "000001_m1") {
		t.Error("default order should be newest first")
	}
	m = key(m, "s")
	out = m.renderTimeline()
	if strings.Index(out, "000001_m1") > strings.Index(out, "000002_m2") {
		t.Error("after toggle order should be oldest first")
	}
}

func TestEmptyReportRenders(t *testing.T) {
	m := sized(t, New(&report.Report{Project: "empty"}, "live"))
	for i := tabID(0); i < tabCount; i++ {
		if m.renderTab(i) == "" {
			t.Errorf("tab %s rendered nothing", tabNames[i])
		}
	}
}

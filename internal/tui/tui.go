// Package tui provides a Bubble Tea browser for timeline reports.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/timeline/internal/diff"
	"github.com/fakeyudi/timeline/internal/report"
)

// ── Styles ────────────

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238")).
			Background(lipgloss.Color("235"))

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("178"))

	bulletStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	statusAddedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	statusDeletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusModifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)

	diffAddStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	diffDelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	diffMetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	selectedRowStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
)

// ── Tab definitions ─────────────────

type tabID int

const (
	tabSummary tabID = iota
	tabEntries
	tabFiles
	tabTouched
	tabTimeline
	tabCount
)

var tabNames = [tabCount]string{
	"Summary", "Entries", "Files", "Touched", "Timeline",
}

// fileTotal aggregates one path across every entry.
type fileTotal struct {
	file      string
	entries   int
	additions int
	deletions int
	last      diff.Status
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	report    *report.Report
	source    string
	activeTab tabID
	viewports [tabCount]viewport.Model
	width     int
	height    int
	ready     bool
	sortAsc   bool
	files     []fileTotal
	// Entries tab: cursor position and expanded set
	entryCursor     int
	expandedEntries map[int]bool
}

// New creates a TUI model for r. source names where the report came from and
// is shown in the title bar.
func New(r *report.Report, source string) Model {
	return Model{
		report:          r,
		source:          source,
		expandedEntries: make(map[int]bool),
		files:           aggregateFiles(r),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "l", "right":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab", "h", "left":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		case "1", "2", "3", "4", "5":
			m.activeTab = tabID(msg.String()[0] - '1')
		case "s":
			if m.activeTab == tabTimeline {
				m.sortAsc = !m.sortAsc
				m.rebuild(tabTimeline)
				m.viewports[tabTimeline].GotoTop()
			}
		case "up", "k":
			if m.activeTab == tabEntries && m.entryCursor > 0 {
				m.entryCursor--
				m.rebuild(tabEntries)
				return m, nil
			}
		case "down", "j":
			if m.activeTab == tabEntries && m.entryCursor < len(m.report.Entries)-1 {
				m.entryCursor++
				m.rebuild(tabEntries)
				return m, nil
			}
		case "enter", " ":
			if m.activeTab == tabEntries && len(m.report.Entries) > 0 {
				if m.report.Entries[m.entryCursor].Patch != "" {
					if m.expandedEntries[m.entryCursor] {
						delete(m.expandedEntries, m.entryCursor)
					} else {
						m.expandedEntries[m.entryCursor] = true
					}
					m.rebuild(tabEntries)
				}
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.initViewports()
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	title := titleStyle.Width(m.width).Render("  timeline  " + m.source)

	var tabParts []string
	for i := tabID(0); i < tabCount; i++ {
		label := fmt.Sprintf(" %d %s ", i+1, tabNames[i])
		if i == m.activeTab {
			tabParts = append(tabParts, activeTabStyle.Render(label))
		} else {
			tabParts = append(tabParts, inactiveTabStyle.Render(label))
		}
		if i < tabCount-1 {
			tabParts = append(tabParts, tabSepStyle.Render("│"))
		}
	}
	tabRow := lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Width(m.width).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, tabParts...))

	content := m.viewports[m.activeTab].View()

	hint := "  ←/→ tab  ↑/↓ scroll  1-5 jump  q quit"
	switch m.activeTab {
	case tabTimeline:
		dir := "newest first"
		if m.sortAsc {
			dir = "oldest first"
		}
		hint += "  s sort (" + dir + ")"
	case tabEntries:
		hint += "  ↑/↓ select  enter expand/collapse"
	}
	pct := fmt.Sprintf("%3.0f%%", m.viewports[m.activeTab].ScrollPercent()*100)
	pad := m.width - lipgloss.Width(hint) - len(pct) - 2
	if pad < 1 {
		pad = 1
	}
	statusBar := statusBarStyle.Width(m.width).Render(
		hint + strings.Repeat(" ", pad) + pct,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, tabRow, content, statusBar)
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabID(0); i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) rebuild(t tabID) {
	m.viewports[t].SetContent(m.renderTab(t))
}

// ── Tab renderers ─────────────────────────────────────────────────────────────

func (m *Model) renderTab(t tabID) string {
	switch t {
	case tabSummary:
		return m.renderSummary()
	case tabEntries:
		return m.renderEntries()
	case tabFiles:
		return m.renderFiles()
	case tabTouched:
		return m.renderTouched()
	case tabTimeline:
		return m.renderTimeline()
	}
	return ""
}

func heading(s string) string {
	return "\n" + sectionHeader.Render("  "+s) + "\n\n"
}

func bullet(text string) string {
	return bulletStyle.Render("  •") + "  " + text + "\n"
}

func statusBadge(s diff.Status) string {
	switch s {
	case diff.StatusAdded:
		return statusAddedStyle.Render("A")
	case diff.StatusDeleted:
		return statusDeletedStyle.Render("D")
	default:
		return statusModifiedStyle.Render("M")
	}
}

func formatMillis(ms int64, layout string) string {
	return time.UnixMilli(ms).Local().Format(layout)
}

func (m *Model) renderSummary() string {
	r := m.report
	var sb strings.Builder
	sb.WriteString(heading("Timeline Summary"))

	row := func(label, value string) {
		sb.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s", label)) + "  " + value + "\n")
	}
	row("Project:", r.Project)
	if r.SessionID != "" {
		row("Session:", r.SessionID)
	}
	row("Generated:", r.GeneratedAt.Local().Format("2006-01-02 15:04:05 MST"))
	if n := len(r.Entries); n > 0 {
		row("First entry:", formatMillis(r.Entries[0].Meta.CreatedAt, "2006-01-02 15:04:05"))
		row("Last entry:", formatMillis(r.Entries[n-1].Meta.CreatedAt, "2006-01-02 15:04:05"))
	}

	sb.WriteString("\n")
	sb.WriteString(heading("Counts"))
	row("Entries:", fmt.Sprintf("%d", len(r.Entries)))
	row("Distinct files:", fmt.Sprintf("%d", len(m.files)))
	row("File changes:", fmt.Sprintf("%d", r.Totals.Files))
	row("Lines:", diffAddStyle.Render(fmt.Sprintf("+%d", r.Totals.Additions))+" "+diffDelStyle.Render(fmt.Sprintf("-%d", r.Totals.Deletions)))
	row("Touched:", fmt.Sprintf("%d", len(r.TouchedFiles)))
	return sb.String()
}

func (m *Model) renderEntries() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Entries (%d)", len(m.report.Entries))))
	if len(m.report.Entries) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for i, e := range m.report.Entries {
		ts := timeStyle.Render(formatMillis(e.Meta.CreatedAt, "15:04:05"))
		hasPatch := e.Patch != ""
		expanded := m.expandedEntries[i]

		toggle := dimStyle.Render("  ▶ ")
		if expanded {
			toggle = dimStyle.Render("  ▼ ")
		}
		if !hasPatch {
			toggle = "    "
		}

		label := e.Meta.ID
		if e.Meta.MessageID != "" && !strings.HasSuffix(e.Meta.ID, e.Meta.MessageID) {
			label += dimStyle.Render(" (" + e.Meta.MessageID + ")")
		}
		stats := fmt.Sprintf("%d files %s %s",
			e.Meta.Stats.Files,
			diffAddStyle.Render(fmt.Sprintf("+%d", e.Meta.Stats.Additions)),
			diffDelStyle.Render(fmt.Sprintf("-%d", e.Meta.Stats.Deletions)),
		)
		if e.Revisions > 0 {
			stats += dimStyle.Render(fmt.Sprintf("  %d earlier", e.Revisions))
		}

		row := fmt.Sprintf("%s%s  %s  %s", toggle, ts, label, stats)
		if i == m.entryCursor {
			row = selectedRowStyle.Width(m.width - 2).Render(row)
		}
		sb.WriteString(row + "\n")

		if expanded && hasPatch {
			for _, f := range e.Meta.Files {
				sb.WriteString(fmt.Sprintf("      %s %s\n", statusBadge(f.Status), f.File))
			}
			sb.WriteString(renderDiff(e.Patch, m.width))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// renderDiff colorises a unified diff string.
func renderDiff(patch string, width int) string {
	var sb strings.Builder
	rule := width - 4
	if rule < 1 {
		rule = 1
	}
	border := dimStyle.Render("  " + strings.Repeat("─", rule))
	sb.WriteString(border + "\n")
	for _, line := range strings.Split(strings.TrimRight(patch, "\n"), "\n") {
		var rendered string
		switch {
		case strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---"):
			rendered = diffMetaStyle.Render("  " + line)
		case strings.HasPrefix(line, "+"):
			rendered = diffAddStyle.Render("  " + line)
		case strings.HasPrefix(line, "-"):
			rendered = diffDelStyle.Render("  " + line)
		case strings.HasPrefix(line, "@@"):
			rendered = diffMetaStyle.Render("  " + line)
		default:
			rendered = dimStyle.Render("  " + line)
		}
		sb.WriteString(rendered + "\n")
	}
	sb.WriteString(border + "\n")
	return sb.String()
}

func (m *Model) renderFiles() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Files (%d)", len(m.files))))
	if len(m.files) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, f := range m.files {
		sb.WriteString(fmt.Sprintf("  %s  %-40s %s %s  %s\n",
			statusBadge(f.last),
			f.file,
			diffAddStyle.Render(fmt.Sprintf("+%d", f.additions)),
			diffDelStyle.Render(fmt.Sprintf("-%d", f.deletions)),
			dimStyle.Render(fmt.Sprintf("in %d entries", f.entries)),
		))
	}
	return sb.String()
}

func (m *Model) renderTouched() string {
	var sb strings.Builder
	sb.WriteString(heading(fmt.Sprintf("Touched Files (%d)", len(m.report.TouchedFiles))))
	if len(m.report.TouchedFiles) == 0 {
		sb.WriteString(dimStyle.Render("  (none)") + "\n")
		return sb.String()
	}
	for _, f := range m.report.TouchedFiles {
		sb.WriteString(bullet(f))
	}
	return sb.String()
}

func (m *Model) renderTimeline() string {
	var sb strings.Builder

	dir := "newest first"
	if m.sortAsc {
		dir = "oldest first"
	}
	sb.WriteString(heading(fmt.Sprintf("Timeline (%s)", dir)))

	entries := make([]report.Entry, len(m.report.Entries))
	copy(entries, m.report.Entries)
	sort.SliceStable(entries, func(i, j int) bool {
		if m.sortAsc {
			return entries[i].Meta.CreatedAt < entries[j].Meta.CreatedAt
		}
		return entries[i].Meta.CreatedAt > entries[j].Meta.CreatedAt
	})

	if len(entries) == 0 {
		sb.WriteString(dimStyle.Render("  (no entries recorded)") + "\n")
		return sb.String()
	}

	for _, e := range entries {
		ts := timeStyle.Render(formatMillis(e.Meta.CreatedAt, "01-02 15:04:05"))
		names := make([]string, 0, len(e.Meta.Files))
		for _, f := range e.Meta.Files {
			names = append(names, f.File)
		}
		text := strings.Join(names, ", ")
		if text == "" {
			text = dimStyle.Render("(no files)")
		}
		sb.WriteString(ts + "  " + labelStyle.Render(e.Meta.ID) + "  " + text + "\n\n")
	}
	return sb.String()
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// aggregateFiles totals every file across the report's entries, sorted by
// path. The status is the one from the latest entry touching the file.
func aggregateFiles(r *report.Report) []fileTotal {
	byFile := make(map[string]*fileTotal)
	for _, e := range r.Entries {
		for _, f := range e.Meta.Files {
			t, ok := byFile[f.File]
			if !ok {
				t = &fileTotal{file: f.File}
				byFile[f.File] = t
			}
			t.entries++
			t.additions += f.Additions
			t.deletions += f.Deletions
			t.last = f.Status
		}
	}
	out := make([]fileTotal, 0, len(byFile))
	for _, t := range byFile {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].file < out[j].file })
	return out
}

// Run starts the TUI for r.
func Run(r *report.Report, source string) error {
	p := tea.NewProgram(New(r, source), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/report"
	"github.com/fakeyudi/timeline/internal/tui"
)

var plainOutput bool

var viewCmd = &cobra.Command{
	Use:   "view [report-file]",
	Short: "Browse the timeline, or an exported report file",
	Long: `Browse the timeline, or an exported report file.

The interactive browser needs a terminal; with --plain, or when stdout is not
a terminal, a plain-text summary is printed instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			r      *report.Report
			source string
			err    error
		)
		if len(args) == 1 {
			source = args[0]
			r, err = readReport(source)
		} else {
			source = ws.root
			r, err = buildReport(time.Now())
		}
		if err != nil {
			return err
		}

		if plainOutput || !term.IsTerminal(os.Stdout.Fd()) {
			printReport(cmd.OutOrStdout(), r)
			return nil
		}
		return tui.Run(r, source)
	},
}

func readReport(path string) (*report.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, err
	}
	return report.NewParser(data).Parse(data)
}

// printReport writes a plain-text summary to w.
func printReport(w io.Writer, r *report.Report) {
	fmt.Fprintln(w, "## Summary")
	fmt.Fprintf(w, "  Project:   %s\n", r.Project)
	if r.SessionID != "" {
		fmt.Fprintf(w, "  Session:   %s\n", r.SessionID)
	}
	fmt.Fprintf(w, "  Entries:   %d\n", len(r.Entries))
	fmt.Fprintf(w, "  Changes:   %d files, +%d -%d\n", r.Totals.Files, r.Totals.Additions, r.Totals.Deletions)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Entries")
	if len(r.Entries) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, e := range r.Entries {
		fmt.Fprintf(w, "  %s  (%s)  %d files, +%d -%d\n",
			e.Meta.ID,
			time.UnixMilli(e.Meta.CreatedAt).Format("2006-01-02 15:04:05"),
			e.Meta.Stats.Files, e.Meta.Stats.Additions, e.Meta.Stats.Deletions,
		)
		for _, f := range e.Meta.Files {
			fmt.Fprintf(w, "    %-8s %s\n", f.Status, f.File)
		}
		if e.Patch != "" {
			fmt.Fprintln(w, indent(strings.TrimRight(e.Patch, "\n"), "    "))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "## Touched Files")
	if len(r.TouchedFiles) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, f := range r.TouchedFiles {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

func init() {
	viewCmd.Flags().BoolVar(&plainOutput, "plain", false, "plain text output instead of TUI")
	rootCmd.AddCommand(viewCmd)
}

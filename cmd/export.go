package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/report"
	"github.com/fakeyudi/timeline/internal/state"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render the timeline as a shareable Markdown or JSON report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := exportFormat
		if format == "" {
			format = cfg.DefaultFormat
		}
		renderer, err := report.NewRenderer(format)
		if err != nil {
			return err
		}

		now := time.Now()
		r, err := buildReport(now)
		if err != nil {
			return err
		}
		data, err := renderer.Render(r)
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}

		outputPath := exportOutput
		if outputPath == "" {
			outputDir := cfg.OutputDir
			if outputDir == "" {
				outputDir = "."
			}
			if !filepath.IsAbs(outputDir) {
				outputDir = filepath.Join(ws.root, outputDir)
			}
			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			outputPath = filepath.Join(outputDir, report.FileName(now, renderer))
		}

		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("write output file: %w", err)
		}

		cmd.Printf("Exported %d entries to %s\n", len(r.Entries), outputPath)
		return nil
	},
}

// buildReport assembles the live timeline into a report.
func buildReport(now time.Time) (*report.Report, error) {
	st, err := ws.state.Read()
	if err != nil && !errors.Is(err, state.ErrNoState) {
		return nil, err
	}
	return report.Build(ws.entries, st, filepath.Base(ws.root), now)
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "markdown or json (default from config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: <output_dir>/timeline-<time>.<ext>)")
	rootCmd.AddCommand(exportCmd)
}

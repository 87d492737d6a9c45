package cmd

import (
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/snapshot"
	"github.com/fakeyudi/timeline/internal/state"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Track touched files until interrupted",
	Long: `Track touched files until interrupted.

Every file written, created, removed or renamed under the project root is
added to the session's touched files. Files matched by ignore_patterns,
.gitignore or .timelineignore are skipped, as is the timeline directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}

		skip := []string{}
		if rel, err := filepath.Rel(ws.root, ws.paths.TimelineDir); err == nil {
			skip = append(skip, rel)
		}
		ig, err := snapshot.NewIgnorer(ws.root, cfg.IgnorePatterns, skip...)
		if err != nil {
			log.Warn().Err(err).Msg("failed to load ignore patterns")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cmd.Printf("Watching %s (Ctrl+C to stop)\n", ws.root)
		return snapshot.Watch(ctx, ws.root, ig, log, touchFile)
	},
}

// touchFile merges one path into the persisted touched set. Save failures
// are logged; the watcher keeps running.
func touchFile(rel string) {
	if _, err := ws.state.Update(func(st *state.State) error {
		st.Touch(rel)
		return nil
	}); err != nil {
		log.Warn().Err(err).Str("file", rel).Msg("failed to record touched file")
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/diff"
	"github.com/fakeyudi/timeline/internal/state"
	"github.com/fakeyudi/timeline/internal/timeline"
)

var (
	recordMessage    string
	recordAllowEmpty bool
)

var recordCmd = &cobra.Command{
	Use:   "record [files...]",
	Short: "Diff files against their baselines and store the result as an entry",
	Long: `Diff files against their baselines and store the result as an entry.

Without arguments the session's touched files are diffed. The entry is filed
under --message, or the message id set by 'note' or 'snap -m'. Recording the
same message again replaces the entry and archives the previous version;
recording an identical patch is a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := requireSession()
		if err != nil {
			return err
		}
		files, err := relFiles(args)
		if err != nil {
			return err
		}

		out, err := recordEntry(cmd.Context(), st, files, recordMessage, recordAllowEmpty)
		if err != nil {
			return err
		}
		cmd.Println(out)
		return nil
	},
}

// recordEntry runs diff, write, state update and index export for one
// record and returns the line to print.
func recordEntry(ctx context.Context, st *state.State, files []string, messageID string, allowEmpty bool) (string, error) {
	if messageID == "" {
		messageID = st.LastUserMessageID
	}
	st.Touch(files...)
	if len(files) == 0 {
		files = st.TouchedFiles
	}

	diffs, err := ws.snaps.Collect(ctx, files)
	if err != nil {
		return "", err
	}
	res := diff.BuildUnifiedDiff(diffs)
	if res.Patch == "" && !allowEmpty {
		if err := ws.state.Save(st); err != nil {
			return "", err
		}
		return "No changes to record.", nil
	}

	counter := st.EntryCounter + 1
	wr, err := ws.entries.WriteEntry(timeline.WriteRequest{
		MessageID:    messageID,
		SessionID:    st.SessionID,
		Patch:        res.Patch,
		Files:        res.Files,
		TouchedFiles: st.TouchedFiles,
		EntryCounter: counter,
	})
	if err != nil {
		return "", fmt.Errorf("writing entry: %w", err)
	}

	if wr.Created {
		st.EntryCounter = counter
	}
	st.LastRecordedMessageID = messageID
	st.LastDiffHash = wr.Meta.DiffHash
	if err := ws.state.Save(st); err != nil {
		return "", err
	}

	if _, err := ws.entries.ExportIndex(); err != nil {
		return "", fmt.Errorf("exporting index: %w", err)
	}

	summary := fmt.Sprintf("%d files, +%d -%d", wr.Meta.Stats.Files, wr.Meta.Stats.Additions, wr.Meta.Stats.Deletions)
	switch {
	case wr.Skipped:
		return fmt.Sprintf("Unchanged %s.", wr.Meta.ID), nil
	case wr.Created:
		return fmt.Sprintf("Recorded %s: %s.", wr.Meta.ID, summary), nil
	default:
		return fmt.Sprintf("Updated %s: %s (previous version archived).", wr.Meta.ID, summary), nil
	}
}

func init() {
	recordCmd.Flags().StringVarP(&recordMessage, "message", "m", "", "message id to file the entry under")
	recordCmd.Flags().BoolVar(&recordAllowEmpty, "allow-empty", false, "write an entry even when nothing changed")
	rootCmd.AddCommand(recordCmd)
}

package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/state"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := ws.state.Read()
		if err != nil {
			if errors.Is(err, state.ErrNoState) {
				cmd.Println("no active session")
				return nil
			}
			return err
		}

		metas, err := ws.entries.ListEntries()
		if err != nil {
			return err
		}

		cmd.Printf("Session: %s\n", st.SessionID)
		cmd.Printf("Updated: %s\n", time.UnixMilli(st.UpdatedAt).Format(time.RFC3339))
		cmd.Printf("Entries: %d (next counter %d)\n", len(metas), st.EntryCounter+1)
		cmd.Printf("Touched files: %d\n", len(st.TouchedFiles))
		if st.LastUserMessageID != "" {
			cmd.Printf("Next message: %s\n", st.LastUserMessageID)
		}
		if st.LastRecordedMessageID != "" {
			cmd.Printf("Last recorded: %s\n", st.LastRecordedMessageID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

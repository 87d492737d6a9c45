package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/state"
)

var noteCmd = &cobra.Command{
	Use:   "note <message-id>",
	Short: "Set the message id the next record is filed under",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := requireSession(); err != nil {
			return err
		}
		if _, err := ws.state.Update(func(st *state.State) error {
			st.LastUserMessageID = args[0]
			return nil
		}); err != nil {
			return err
		}

		cmd.Printf("Next record goes to message %q.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(noteCmd)
}

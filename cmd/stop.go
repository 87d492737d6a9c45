package cmd

import (
	"github.com/spf13/cobra"
)

var stopMessage string

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Record pending changes and end the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := requireSession()
		if err != nil {
			return err
		}

		if len(st.TouchedFiles) > 0 {
			out, err := recordEntry(cmd.Context(), st, nil, stopMessage, false)
			if err != nil {
				return err
			}
			cmd.Println(out)
		}

		if _, err := ws.snaps.Clear(); err != nil {
			return err
		}
		id := st.SessionID
		st.TouchedFiles = []string{}
		st.LastUserMessageID = ""
		if err := ws.state.Save(st); err != nil {
			return err
		}

		log.Info().Str("session", id).Msg("session stopped")
		cmd.Printf("Session %s stopped.\n", id)
		return nil
	},
}

func init() {
	stopCmd.Flags().StringVarP(&stopMessage, "message", "m", "", "message id for the final entry")
	rootCmd.AddCommand(stopCmd)
}

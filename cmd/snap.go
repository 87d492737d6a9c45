package cmd

import (
	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/snapshot"
)

var snapMessage string

var snapCmd = &cobra.Command{
	Use:   "snap [files...]",
	Short: "Capture the current content of files as their diff baseline",
	Long: `Capture the current content of files as their diff baseline.

Without arguments the session's touched files are captured. Named files are
added to the touched set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := requireSession()
		if err != nil {
			return err
		}

		files, err := relFiles(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			files = st.TouchedFiles
		}
		if len(files) == 0 {
			cmd.Println("Nothing to snapshot.")
			return nil
		}

		if err := ws.snaps.Capture(cmd.Context(), files); err != nil {
			return err
		}

		st.Touch(files...)
		if snapMessage != "" {
			st.LastUserMessageID = snapMessage
		}
		if err := ws.state.Save(st); err != nil {
			return err
		}

		cmd.Printf("Captured %d baseline(s).\n", len(files))
		return nil
	},
}

// relFiles converts command-line paths to project-relative paths. Relative
// arguments are taken relative to the project root, like git -C.
func relFiles(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		rel, err := snapshot.Rel(ws.root, a)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

func init() {
	snapCmd.Flags().StringVarP(&snapMessage, "message", "m", "", "message id the following record is filed under")
	rootCmd.AddCommand(snapCmd)
}

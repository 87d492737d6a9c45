package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var showRevisions bool

var showCmd = &cobra.Command{
	Use:   "show <entry>",
	Short: "Print an entry's patch",
	Long: `Print an entry's patch.

<entry> is an entry directory name, its counter, or the message id it was
recorded under.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := ws.entries.LoadEntry(args[0])
		if err != nil {
			return err
		}

		if showRevisions {
			revs, err := ws.entries.Revisions(e.Dir)
			if err != nil {
				return err
			}
			cmd.Printf("%s  live  %s\n", e.Meta.ID, e.Meta.DiffHash)
			if len(revs) == 0 {
				cmd.Println("  (no earlier versions)")
			}
			for _, r := range revs {
				cmd.Printf("  %d  %s\n", r.Timestamp, time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04:05.000"))
			}
			return nil
		}

		// Patches go to stdout so they can be piped into git apply.
		fmt.Fprint(cmd.OutOrStdout(), e.Patch)
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showRevisions, "revisions", false, "list archived versions instead of the patch")
	rootCmd.AddCommand(showCmd)
}

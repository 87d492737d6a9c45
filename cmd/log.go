package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List recorded entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		metas, err := ws.entries.ListEntries()
		if err != nil {
			return err
		}
		if len(metas) == 0 {
			cmd.Println("No entries recorded.")
			return nil
		}

		for _, m := range metas {
			cmd.Printf("%s  %s  %d files  +%d -%d\n",
				time.UnixMilli(m.CreatedAt).Format("2006-01-02 15:04:05"),
				m.ID,
				m.Stats.Files,
				m.Stats.Additions,
				m.Stats.Deletions,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}

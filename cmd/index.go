package cmd

import (
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Regenerate index.json from the entry directories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := ws.entries.ExportIndex()
		if err != nil {
			return err
		}
		cmd.Printf("Indexed %d entries (%d files, +%d -%d) into %s\n",
			len(idx.Entries), idx.Totals.Files, idx.Totals.Additions, idx.Totals.Deletions, ws.paths.IndexFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/editor"
	"github.com/fakeyudi/timeline/internal/timeline"
)

var openMeta bool

var openCmd = &cobra.Command{
	Use:   "open <entry>",
	Short: "Open an entry's patch in $VISUAL or $EDITOR",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := ws.entries.LoadEntry(args[0])
		if err != nil {
			return err
		}
		name := timeline.PatchFileName
		if openMeta {
			name = timeline.MetaFileName
		}

		command := editor.ResolveCommand(os.Getenv, cfg.Editor)
		log.Debug().Str("editor", command).Str("entry", e.Meta.ID).Msg("opening entry")
		return editor.Open(cmd.Context(), command, filepath.Join(e.Dir, name), ws.root)
	},
}

func init() {
	openCmd.Flags().BoolVar(&openMeta, "meta", false, "open meta.json instead of the patch")
	rootCmd.AddCommand(openCmd)
}

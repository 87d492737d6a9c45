package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/config"
	"github.com/fakeyudi/timeline/internal/fsutil"
	"github.com/fakeyudi/timeline/internal/paths"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the timeline directory and a project config",
	Long: `Create the timeline directory and a project config.

Writes .timelineconfig with the effective settings unless a project config
already exists, and adds the timeline directory to .gitignore when the
project has one. Re-running init is safe.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := paths.EnsureDirs(ws.paths); err != nil {
			return err
		}

		existing, err := config.LoadProject(ws.root)
		if err != nil {
			return err
		}
		if existing == nil {
			path := filepath.Join(ws.root, config.ProjectFiles[0])
			if err := fsutil.WriteJSON(path, cfg); err != nil {
				return fmt.Errorf("saving project config: %w", err)
			}
			cmd.Printf("  ✓ Wrote %s\n", path)
		} else {
			cmd.Println("  ✓ Project config already present.")
		}

		added, err := ignoreTimelineDir(filepath.Join(ws.root, ".gitignore"), cfg.TimelineDir)
		if err != nil {
			cmd.Printf("  ⚠ Could not update .gitignore: %v\n", err)
		} else if added {
			cmd.Println("  ✓ Added the timeline directory to .gitignore.")
		}

		cmd.Println("  Setup complete. Run 'timeline start' to begin a session.")
		return nil
	},
}

// ignoreTimelineDir appends dir to the gitignore file at path when the file
// exists and does not list it yet.
func ignoreTimelineDir(path, dir string) (bool, error) {
	if filepath.IsAbs(dir) {
		return false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	entry := "/" + strings.Trim(filepath.ToSlash(dir), "/") + "/"
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == entry || strings.Trim(line, "/") == strings.Trim(entry, "/") {
			return false, nil
		}
	}

	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	data = append(data, entry+"\n"...)
	return true, fsutil.WriteFileAtomic(path, data, 0o644)
}

func init() {
	rootCmd.AddCommand(initCmd)
}

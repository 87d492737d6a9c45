package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fakeyudi/timeline/internal/config"
	"github.com/fakeyudi/timeline/internal/logger"
	"github.com/fakeyudi/timeline/internal/paths"
	"github.com/fakeyudi/timeline/internal/snapshot"
	"github.com/fakeyudi/timeline/internal/state"
	"github.com/fakeyudi/timeline/internal/timeline"
)

// cfg holds the merged configuration, populated in PersistentPreRunE.
var cfg config.Config

// log is the process logger; it discards everything until PersistentPreRunE
// has run.
var log = zerolog.Nop()

var logCloser io.Closer

// ws is the opened project workspace.
var ws *workspace

var (
	projectDir string
	verbose    bool
)

// workspace bundles the stores that operate on one project's timeline
// directory.
type workspace struct {
	root    string
	paths   paths.Paths
	entries *timeline.Store
	state   *state.Store
	snaps   *snapshot.Snapshotter
}

func openWorkspace(root string, c config.Config, l zerolog.Logger) *workspace {
	p := paths.Build(root, c.TimelineDir)
	return &workspace{
		root:    root,
		paths:   p,
		entries: timeline.NewStore(p, timeline.WithLogger(l)),
		state:   state.NewStore(p.StateFile),
		snaps:   snapshot.New(p, l),
	}
}

var rootCmd = &cobra.Command{
	Use:          "timeline",
	Short:        "Record file edits as a versioned timeline of unified diffs",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		root, err := resolveRoot(projectDir)
		if err != nil {
			return err
		}

		loaded, err := config.Load(root, os.Getenv)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded

		p := paths.Build(root, cfg.TimelineDir)
		lc := logger.DefaultConfig()
		lc.Level = cfg.LogLevel
		lc.Format = logger.Format(cfg.LogFormat)
		lc.File = cfg.LogFile
		if lc.File == "" {
			lc.File = p.LogFile
		} else if !filepath.IsAbs(lc.File) {
			lc.File = filepath.Join(root, lc.File)
		}
		lc.Console = cmd.ErrOrStderr()
		if verbose {
			lc.ConsoleLevel = "debug"
		}
		l, closer, err := logger.New(lc)
		if err != nil {
			return fmt.Errorf("configuring logger: %w", err)
		}
		log, logCloser = l, closer

		ws = openWorkspace(root, cfg, log)
		log.Debug().Str("root", root).Str("command", cmd.Name()).Msg("workspace opened")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func closeLog() error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	log = zerolog.Nop()
	return err
}

// resolveRoot returns dir as an absolute path, or the working directory when
// dir is empty.
func resolveRoot(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("project directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project directory %s is not a directory", abs)
	}
	return abs, nil
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when RunE fails.
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", "", "project root (default: current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "echo debug logs to stderr")
}

// Package editor launches the user's editor on timeline artifacts.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"
)

// Fallback is used when neither the environment nor the config names an
// editor.
const Fallback = "vi"

// ErrEmptyCommand is returned when an editor command has no program.
var ErrEmptyCommand = errors.New("empty editor command")

// ResolveCommand returns $VISUAL, then $EDITOR, then configured, then
// Fallback. Blank values are skipped.
func ResolveCommand(getenv func(string) string, configured string) string {
	for _, c := range []string{getenv("VISUAL"), getenv("EDITOR"), configured} {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return Fallback
}

// ParseCommand splits command with POSIX shell quoting rules, so
// `code --wait` and `"/opt/My Editor/bin/ed" -n` both work.
func ParseCommand(command string) ([]string, error) {
	argv, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parsing editor command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return argv, nil
}

// Command builds the exec.Cmd that opens file with command. Relative files
// are resolved against cwd.
func Command(ctx context.Context, command, file, cwd string) (*exec.Cmd, error) {
	argv, err := ParseCommand(command)
	if err != nil {
		return nil, err
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(cwd, file)
	}
	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], file)...)
	cmd.Dir = cwd
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// Open runs the editor on file and waits for it to exit.
func Open(ctx context.Context, command, file, cwd string) error {
	cmd, err := Command(ctx, command, file, cwd)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}

package snapshot

import (
	"bufio"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// IgnoreFiles are read from the project root and merged into the configured
// ignore patterns.
var IgnoreFiles = []string{".gitignore", ".timelineignore"}

// Ignorer matches project-relative paths against gitignore-style globs.
type Ignorer struct {
	patterns []string
	// dirs are never descended into, whatever the patterns say.
	dirs []string
}

// NewIgnorer merges configured with the patterns found in IgnoreFiles under
// root. skipDirs are relative directories that are always ignored.
func NewIgnorer(root string, configured []string, skipDirs ...string) (*Ignorer, error) {
	ig := &Ignorer{
		patterns: append([]string(nil), configured...),
		dirs:     []string{".git"},
	}
	for _, d := range skipDirs {
		if d != "" && d != "." {
			ig.dirs = append(ig.dirs, filepath.ToSlash(filepath.Clean(d)))
		}
	}
	for _, name := range IgnoreFiles {
		extra, err := readPatternFile(filepath.Join(root, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return ig, err
		}
		ig.patterns = append(ig.patterns, extra...)
	}
	return ig, nil
}

// Match reports whether the slash-separated relative path rel is ignored.
// A pattern matches the base name, the whole path, or any leading directory.
func (ig *Ignorer) Match(rel string) bool {
	for _, d := range ig.dirs {
		if rel == d || strings.HasPrefix(rel, d+"/") {
			return true
		}
	}

	segments := strings.Split(rel, "/")
	for _, raw := range ig.patterns {
		pattern := strings.TrimPrefix(strings.TrimSuffix(raw, "/"), "/")
		if pattern == "" || strings.HasPrefix(pattern, "!") {
			continue
		}
		if matched, _ := filepath.Match(pattern, segments[len(segments)-1]); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		for i := 1; i < len(segments); i++ {
			if matched, _ := filepath.Match(pattern, segments[i-1]); matched {
				return true
			}
			if matched, _ := filepath.Match(pattern, strings.Join(segments[:i], "/")); matched {
				return true
			}
		}
	}
	return false
}

// readPatternFile reads a gitignore-style file and returns non-empty,
// non-comment lines.
func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, scanner.Err()
}

// TouchFunc receives the relative path of a file that changed on disk.
type TouchFunc func(rel string)

// Watch runs a recursive fsnotify watcher on root and calls onTouch for every
// write, create, remove or rename of a non-ignored file until ctx is
// cancelled. Directories created while watching are added to the watch list.
func Watch(ctx context.Context, root string, ig *Ignorer, logger zerolog.Logger, onTouch TouchFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	log := logger.With().Str("component", "watcher").Logger()

	if err := addDirsRecursive(w, root, root, ig); err != nil {
		return err
	}
	log.Info().Str("root", root).Msg("watching")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(root, ev.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if ig.Match(rel) {
				continue
			}

			if ev.Has(fsnotify.Create) {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, root, ev.Name, ig); addErr != nil {
						log.Warn().Err(addErr).Str("path", rel).Msg("add new dir failed")
					} else {
						log.Debug().Str("path", rel).Msg("watching new dir")
					}
					continue
				}
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			log.Debug().Str("path", rel).Str("op", ev.Op.String()).Msg("file touched")
			onTouch(rel)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(watchErr).Msg("watcher error")
		}
	}
}

// addDirsRecursive adds dir and all its non-ignored subdirectories to w.
// Ignore patterns are matched relative to root.
func addDirsRecursive(w *fsnotify.Watcher, root, dir string, ig *Ignorer) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil && rel != "." && ig.Match(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

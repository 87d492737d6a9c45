// Package snapshot keeps the "before" content of files so later edits can be
// diffed against it.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"github.com/fakeyudi/timeline/internal/diff"
	"github.com/fakeyudi/timeline/internal/fsutil"
	"github.com/fakeyudi/timeline/internal/paths"
)

const baselineExt = ".snap"

// maxParallel bounds the number of files read or written at once.
const maxParallel = 8

// ErrOutsideRoot is returned for paths that resolve outside the project root.
var ErrOutsideRoot = errors.New("path is outside the project root")

// Snapshotter stores baselines under the timeline tmp directory.
type Snapshotter struct {
	root   string
	tmpDir string
	logger zerolog.Logger
}

// New returns a Snapshotter for the layout p.
func New(p paths.Paths, logger zerolog.Logger) *Snapshotter {
	return &Snapshotter{
		root:   p.Root,
		tmpDir: p.TmpDir,
		logger: logger.With().Str("component", "snapshot").Logger(),
	}
}

// BaselineName returns the file name of the baseline for the project
// relative path rel.
func BaselineName(rel string) string {
	return fmt.Sprintf("%x%s", xxh3.Hash128([]byte(rel)).Bytes(), baselineExt)
}

// Rel converts file to a clean slash-separated path relative to root.
func Rel(root, file string) (string, error) {
	abs := file
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, file)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", file, err)
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", file, ErrOutsideRoot)
	}
	return filepath.ToSlash(rel), nil
}

func (s *Snapshotter) baselinePath(rel string) string {
	return filepath.Join(s.tmpDir, BaselineName(rel))
}

// readCurrent returns the working-tree content of rel; a missing file reads
// as empty.
func (s *Snapshotter) readCurrent(rel string) ([]byte, error) {
	data, _, err := fsutil.ReadFileIfExists(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rel, err)
	}
	return data, nil
}

// Capture records the current content of each file as its baseline,
// replacing any earlier baseline. Missing files get an empty baseline.
func (s *Snapshotter) Capture(ctx context.Context, files []string) error {
	if err := os.MkdirAll(s.tmpDir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for _, f := range files {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rel, err := Rel(s.root, f)
			if err != nil {
				return err
			}
			data, err := s.readCurrent(rel)
			if err != nil {
				return err
			}
			if err := fsutil.WriteFileAtomic(s.baselinePath(rel), data, 0o644); err != nil {
				return err
			}
			s.logger.Debug().Str("file", rel).Int("bytes", len(data)).Msg("baseline captured")
			return nil
		})
	}
	return g.Wait()
}

// Collect pairs each file's baseline with its current content. A file
// without a baseline is diffed against empty content. The result keeps the
// order of files; duplicates are dropped.
func (s *Snapshotter) Collect(ctx context.Context, files []string) ([]diff.FileDiff, error) {
	rels := make([]string, 0, len(files))
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		rel, err := Rel(s.root, f)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[rel]; ok {
			continue
		}
		seen[rel] = struct{}{}
		rels = append(rels, rel)
	}

	out := make([]diff.FileDiff, len(rels))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			before, _, err := fsutil.ReadFileIfExists(s.baselinePath(rel))
			if err != nil {
				return fmt.Errorf("reading baseline for %s: %w", rel, err)
			}
			after, err := s.readCurrent(rel)
			if err != nil {
				return err
			}
			add, del := diff.CountChanges(string(before), string(after))
			out[i] = diff.FileDiff{
				File:      rel,
				Before:    string(before),
				After:     string(after),
				Additions: add,
				Deletions: del,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// HasBaseline reports whether a baseline exists for file.
func (s *Snapshotter) HasBaseline(file string) (bool, error) {
	rel, err := Rel(s.root, file)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(s.baselinePath(rel))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Clear removes every baseline and returns how many were removed.
func (s *Snapshotter) Clear() (int, error) {
	entries, err := os.ReadDir(s.tmpDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("listing snapshots: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != baselineExt {
			continue
		}
		if err := os.Remove(filepath.Join(s.tmpDir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return n, fmt.Errorf("removing snapshot: %w", err)
		}
		n++
	}
	s.logger.Debug().Int("removed", n).Msg("baselines cleared")
	return n, nil
}

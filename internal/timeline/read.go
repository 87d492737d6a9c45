package timeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fakeyudi/timeline/internal/fsutil"
	"github.com/fakeyudi/timeline/internal/paths"
)

// Entry is an entry directory together with its live meta and patch.
type Entry struct {
	Dir   string
	Meta  EntryMeta
	Patch string
}

// Revision is one archived meta/patch pair.
type Revision struct {
	Timestamp int64 // epoch milliseconds
	MetaPath  string
	PatchPath string // empty when the patch was absent at archive time
}

func revisionFileName(ts int64, base string) string {
	return strconv.FormatInt(ts, 10) + "_" + base
}

// ListEntries reads the meta of every entry directory in name order, which is
// counter order. Entries without a meta.json are left out, as are entries
// whose meta.json cannot be decoded; the latter are logged.
func (s *Store) ListEntries() ([]EntryMeta, error) {
	dirs, err := os.ReadDir(s.paths.EntriesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []EntryMeta{}, nil
		}
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name() < dirs[j].Name() })

	metas := []EntryMeta{}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		meta, ok, err := readMeta(filepath.Join(s.paths.EntriesDir, d.Name(), MetaFileName))
		if err != nil {
			var perr *ParseError
			if errors.As(err, &perr) {
				s.logger.Warn().Err(err).Str("entry", d.Name()).Msg("skipping unreadable entry")
				continue
			}
			return nil, err
		}
		if ok {
			metas = append(metas, *meta)
		}
	}
	return metas, nil
}

// LoadEntry resolves ref to an entry. ref may be a directory name, a message
// id, or a counter ("000003" or "3").
func (s *Store) LoadEntry(ref string) (*Entry, error) {
	dir, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}

	meta, ok, err := readMeta(filepath.Join(dir, MetaFileName))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s has no meta", ErrEntryNotFound, filepath.Base(dir))
	}

	patch, _, err := fsutil.ReadFileIfExists(filepath.Join(dir, PatchFileName))
	if err != nil {
		return nil, fmt.Errorf("reading entry patch: %w", err)
	}
	return &Entry{Dir: dir, Meta: *meta, Patch: string(patch)}, nil
}

func (s *Store) resolve(ref string) (string, error) {
	if ref == "" {
		return "", ErrEntryNotFound
	}
	direct := filepath.Join(s.paths.EntriesDir, ref)
	if filepath.Base(direct) == ref {
		if info, err := os.Stat(direct); err == nil && info.IsDir() {
			return direct, nil
		}
	}

	if n, err := strconv.Atoi(ref); err == nil && n >= 0 {
		prefix := paths.FormatEntryPrefix(n) + "_"
		dirs, err := os.ReadDir(s.paths.EntriesDir)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("listing entries: %w", err)
		}
		for _, d := range dirs {
			if d.IsDir() && strings.HasPrefix(d.Name(), prefix) {
				return filepath.Join(s.paths.EntriesDir, d.Name()), nil
			}
		}
	}

	dir, found, err := FindExistingEntryDir(s.paths.EntriesDir, ref)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: %s", ErrEntryNotFound, ref)
	}
	return dir, nil
}

// Revisions lists the archived versions of the entry in entryDir, oldest
// first.
func (s *Store) Revisions(entryDir string) ([]Revision, error) {
	revDir := filepath.Join(entryDir, RevisionsDirName)
	files, err := os.ReadDir(revDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing revisions: %w", err)
	}

	patches := make(map[int64]string)
	var revs []Revision
	for _, f := range files {
		stamp, base, ok := strings.Cut(f.Name(), "_")
		if !ok {
			continue
		}
		ts, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		switch base {
		case MetaFileName:
			revs = append(revs, Revision{Timestamp: ts, MetaPath: filepath.Join(revDir, f.Name())})
		case PatchFileName:
			patches[ts] = filepath.Join(revDir, f.Name())
		}
	}
	for i := range revs {
		revs[i].PatchPath = patches[revs[i].Timestamp]
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i].Timestamp < revs[j].Timestamp })
	return revs, nil
}

// readMeta decodes the meta.json at path. A missing or empty file reports
// ok == false.
func readMeta(path string) (*EntryMeta, bool, error) {
	data, ok, err := fsutil.ReadFileIfExists(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading entry meta: %w", err)
	}
	if !ok || len(data) == 0 {
		return nil, false, nil
	}
	var meta EntryMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, false, &ParseError{Path: path, Err: err}
	}
	return &meta, true, nil
}

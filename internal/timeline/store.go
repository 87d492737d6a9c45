package timeline

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/fakeyudi/timeline/internal/diff"
	"github.com/fakeyudi/timeline/internal/fsutil"
	"github.com/fakeyudi/timeline/internal/paths"
)

// Store reads and writes timeline entries under one timeline directory.
type Store struct {
	paths  paths.Paths
	logger zerolog.Logger
	locks  *KeyedMutex
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns a Store for the layout p. Directories are created lazily.
func NewStore(p paths.Paths, opts ...Option) *Store {
	s := &Store{
		paths:  p,
		logger: zerolog.Nop(),
		locks:  NewKeyedMutex(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "timeline").Logger()
	return s
}

// Paths returns the layout the store works on.
func (s *Store) Paths() paths.Paths {
	return s.paths
}

// HashDiff returns the hex SHA-256 of patch. It is an equality fingerprint.
func HashDiff(patch string) string {
	h := sha256.Sum256([]byte(patch))
	return hex.EncodeToString(h[:])
}

// FindExistingEntryDir returns the first directory in entriesDir whose name
// ends with "_<sanitized messageID>". When two raw ids sanitize to the same
// suffix, whichever directory the listing yields first wins.
func FindExistingEntryDir(entriesDir, messageID string) (string, bool, error) {
	entries, err := os.ReadDir(entriesDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("listing entries: %w", err)
	}

	suffix := "_" + paths.SanitizeEntryID(messageID)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), suffix) {
			return filepath.Join(entriesDir, e.Name()), true, nil
		}
	}
	return "", false, nil
}

// WriteEntry stores req.Patch as the live version of the entry for
// req.MessageID.
//
// A patch whose hash equals the stored one is a no-op reported as Skipped.
// A different patch first archives the current meta.json and patch.diff into
// revisions/ and then overwrites the four entry artifacts. Writers for the
// same entry are serialized within the process; the host must serialize
// writers across processes.
func (s *Store) WriteEntry(req WriteRequest) (*WriteResult, error) {
	if err := paths.EnsureDirs(s.paths); err != nil {
		return nil, err
	}

	safeID := placeholderID
	if req.MessageID != "" {
		safeID = paths.SanitizeEntryID(req.MessageID)
	}
	prefix := paths.FormatEntryPrefix(req.EntryCounter)

	lockKey := safeID
	if req.MessageID == "" {
		lockKey = paths.EntryDirName(prefix, safeID)
	}
	unlock := s.locks.Lock(lockKey)
	defer unlock()

	var (
		existingDir string
		found       bool
	)
	if req.MessageID != "" {
		var err error
		existingDir, found, err = FindExistingEntryDir(s.paths.EntriesDir, req.MessageID)
		if err != nil {
			return nil, err
		}
	}
	if found {
		// The counter prefix is fixed when the entry is first created.
		prefix, _, _ = strings.Cut(filepath.Base(existingDir), "_")
	}

	name := paths.EntryDirName(prefix, safeID)
	entryDir := filepath.Join(s.paths.EntriesDir, name)
	if found {
		entryDir = existingDir
	}

	created := false
	if !found {
		err := os.Mkdir(entryDir, 0o755)
		switch {
		case err == nil:
			created = true
		case errors.Is(err, fs.ErrExist):
			// Same counter written again without a message id.
		default:
			return nil, fmt.Errorf("creating entry directory: %w", err)
		}
	}

	log := s.logger.With().Str("entry", name).Logger()
	diffHash := HashDiff(req.Patch)
	metaPath := filepath.Join(entryDir, MetaFileName)

	prevRaw, ok, err := fsutil.ReadFileIfExists(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading entry meta: %w", err)
	}
	// An empty meta.json is a write that never completed; treat it as absent.
	if ok && len(prevRaw) > 0 {
		var prev EntryMeta
		if err := json.Unmarshal(prevRaw, &prev); err != nil {
			return nil, &ParseError{Path: metaPath, Err: err}
		}
		if prev.DiffHash == diffHash {
			log.Debug().Str("hash", diffHash).Msg("patch unchanged, skipping write")
			return &WriteResult{EntryDir: entryDir, Meta: &prev, Skipped: true}, nil
		}
		rev, err := s.archive(entryDir, prevRaw)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("revision", rev).Msg("archived previous version")
	}

	files := req.Files
	if files == nil {
		files = []diff.FileSummary{}
	}
	touched := req.TouchedFiles
	if touched == nil {
		touched = []string{}
	}

	meta := &EntryMeta{
		ID:           name,
		SessionID:    req.SessionID,
		MessageID:    req.MessageID,
		CreatedAt:    s.now().UnixMilli(),
		DiffHash:     diffHash,
		Stats:        statsOf(files),
		Files:        files,
		TouchedFiles: touched,
	}

	if err := fsutil.WriteJSON(metaPath, meta); err != nil {
		return nil, err
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(entryDir, PatchFileName), []byte(req.Patch), 0o644); err != nil {
		return nil, err
	}
	if err := fsutil.WriteJSON(filepath.Join(entryDir, PatchFilesFileName), files); err != nil {
		return nil, err
	}
	if err := fsutil.WriteJSON(filepath.Join(entryDir, TouchedFilesFileName), touched); err != nil {
		return nil, err
	}

	log.Info().
		Bool("created", created).
		Int("files", meta.Stats.Files).
		Int("additions", meta.Stats.Additions).
		Int("deletions", meta.Stats.Deletions).
		Msg("entry written")

	return &WriteResult{EntryDir: entryDir, Meta: meta, Created: created}, nil
}

// archive copies the current meta.json (given as raw bytes) and patch.diff
// of entryDir into its revisions directory and returns the revision name.
func (s *Store) archive(entryDir string, metaRaw []byte) (string, error) {
	revDir := filepath.Join(entryDir, RevisionsDirName)
	if err := os.MkdirAll(revDir, 0o755); err != nil {
		return "", fmt.Errorf("creating revisions directory: %w", err)
	}

	// Names are epoch milliseconds; bump until free so two archives in the
	// same millisecond never overwrite each other.
	ts := s.now().UnixMilli()
	for {
		_, err := os.Stat(filepath.Join(revDir, revisionFileName(ts, MetaFileName)))
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("checking revision name: %w", err)
		}
		ts++
	}

	if err := fsutil.WriteFileAtomic(filepath.Join(revDir, revisionFileName(ts, MetaFileName)), metaRaw, 0o644); err != nil {
		return "", err
	}

	patch, ok, err := fsutil.ReadFileIfExists(filepath.Join(entryDir, PatchFileName))
	if err != nil {
		return "", fmt.Errorf("reading entry patch: %w", err)
	}
	if ok {
		if err := fsutil.WriteFileAtomic(filepath.Join(revDir, revisionFileName(ts, PatchFileName)), patch, 0o644); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%d", ts), nil
}

// ExportIndex regenerates index.json from every entry directory and returns
// the index it wrote. The previous index is replaced, never patched.
func (s *Store) ExportIndex() (*Index, error) {
	if err := paths.EnsureDirs(s.paths); err != nil {
		return nil, err
	}

	metas, err := s.ListEntries()
	if err != nil {
		return nil, err
	}

	idx := &Index{
		GeneratedAt: s.now().UnixMilli(),
		Entries:     metas,
	}
	for _, m := range metas {
		idx.Totals.add(m.Stats)
	}

	if err := fsutil.WriteJSON(s.paths.IndexFile, idx); err != nil {
		return nil, err
	}
	s.logger.Debug().Int("entries", len(metas)).Msg("index exported")
	return idx, nil
}

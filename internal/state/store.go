package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fakeyudi/timeline/internal/fsutil"
)

// ErrNoState is returned by Read when no state file exists on disk.
var ErrNoState = errors.New("no timeline state")

// Store persists a State as JSON at a single path.
type Store struct {
	path string
	now  func() time.Time
}

// NewStore returns a Store for the state file at path.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the location of the state file.
func (s *Store) Path() string { return s.path }

// Read decodes the state file. It returns ErrNoState when the file is absent.
func (s *Store) Read() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoState
		}
		return nil, fmt.Errorf("failed to read timeline state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse timeline state: %w", err)
	}
	if st.TouchedFiles == nil {
		st.TouchedFiles = []string{}
	}
	return &st, nil
}

// Load is Read with defaults: a missing file yields a fresh State with a new
// session id and counter zero.
func (s *Store) Load() (*State, error) {
	st, err := s.Read()
	if errors.Is(err, ErrNoState) {
		return &State{
			SessionID:    uuid.NewString(),
			TouchedFiles: []string{},
		}, nil
	}
	return st, err
}

// Save stamps UpdatedAt and writes st atomically.
func (s *Store) Save(st *State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to persist timeline state: %w", err)
	}
	if st.TouchedFiles == nil {
		st.TouchedFiles = []string{}
	}
	st.UpdatedAt = s.now().UnixMilli()
	if err := fsutil.WriteJSON(s.path, st); err != nil {
		return fmt.Errorf("failed to persist timeline state: %w", err)
	}
	return nil
}

// Update loads the state, applies fn and saves the result.
func (s *Store) Update(fn func(*State) error) (*State, error) {
	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	if err := fn(st); err != nil {
		return nil, err
	}
	if err := s.Save(st); err != nil {
		return nil, err
	}
	return st, nil
}

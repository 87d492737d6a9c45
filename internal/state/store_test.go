package state_test

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"pgregory.net/rapid"

	"github.com/fakeyudi/timeline/internal/state"
)

func generateState(t *rapid.T) *state.State {
	return &state.State{
		SessionID:             rapid.StringN(1, 36, -1).Draw(t, "session_id"),
		EntryCounter:          rapid.IntRange(0, 999_999).Draw(t, "counter"),
		TouchedFiles:          rapid.SliceOfN(rapid.StringN(1, 40, -1), 0, 8).Draw(t, "touched"),
		LastUserMessageID:     rapid.String().Draw(t, "last_user"),
		LastRecordedMessageID: rapid.String().Draw(t, "last_recorded"),
		LastDiffHash:          rapid.StringMatching(`[0-9a-f]{0,64}`).Draw(t, "hash"),
	}
}

// Feature: timeline, Property 6: State persistence round-trip
func TestStatePersistenceRoundTrip(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))

	rapid.Check(t, func(t *rapid.T) {
		original := generateState(t)

		if err := store.Save(original); err != nil {
			t.Fatalf("Save: %v", err)
		}
		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		if loaded.SessionID != original.SessionID {
			t.Errorf("SessionID mismatch: got %q, want %q", loaded.SessionID, original.SessionID)
		}
		if loaded.EntryCounter != original.EntryCounter {
			t.Errorf("EntryCounter mismatch: got %d, want %d", loaded.EntryCounter, original.EntryCounter)
		}
		if loaded.LastUserMessageID != original.LastUserMessageID {
			t.Errorf("LastUserMessageID mismatch: got %q, want %q", loaded.LastUserMessageID, original.LastUserMessageID)
		}
		if loaded.LastRecordedMessageID != original.LastRecordedMessageID {
			t.Errorf("LastRecordedMessageID mismatch: got %q, want %q", loaded.LastRecordedMessageID, original.LastRecordedMessageID)
		}
		if loaded.LastDiffHash != original.LastDiffHash {
			t.Errorf("LastDiffHash mismatch: got %q, want %q", loaded.LastDiffHash, original.LastDiffHash)
		}
		if loaded.UpdatedAt != original.UpdatedAt {
			t.Errorf("UpdatedAt mismatch: got %d, want %d", loaded.UpdatedAt, original.UpdatedAt)
		}
		if len(loaded.TouchedFiles) != len(original.TouchedFiles) {
			t.Fatalf("TouchedFiles length mismatch: got %d, want %d", len(loaded.TouchedFiles), len(original.TouchedFiles))
		}
		for i := range original.TouchedFiles {
			if loaded.TouchedFiles[i] != original.TouchedFiles[i] {
				t.Errorf("TouchedFiles[%d] mismatch: got %q, want %q", i, loaded.TouchedFiles[i], original.TouchedFiles[i])
			}
		}
	})
}

// Feature: timeline, Property 7: Merged touched files are sorted and unique
func TestMergeTouchedFilesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.SliceOf(rapid.StringN(0, 6, -1)).Draw(t, "a")
		b := rapid.SliceOf(rapid.StringN(0, 6, -1)).Draw(t, "b")

		got := state.MergeTouchedFiles(a, b)

		if !sort.StringsAreSorted(got) {
			t.Fatalf("result not sorted: %q", got)
		}
		for i := 1; i < len(got); i++ {
			if got[i] == got[i-1] {
				t.Fatalf("duplicate %q in %q", got[i], got)
			}
		}
		in := make(map[string]bool)
		for _, f := range append(append([]string{}, a...), b...) {
			if f != "" {
				in[f] = true
			}
		}
		if len(in) != len(got) {
			t.Fatalf("got %d files, want %d", len(got), len(in))
		}
		for _, f := range got {
			if !in[f] {
				t.Fatalf("unexpected file %q", f)
			}
		}
	})
}

func TestMergeTouchedFilesNeverNil(t *testing.T) {
	if got := state.MergeTouchedFiles(nil, nil); got == nil {
		t.Fatal("expected empty slice, got nil")
	}
}

func TestTouch(t *testing.T) {
	st := &state.State{TouchedFiles: []string{"b.go", "a.go"}}
	st.Touch("c.go", "a.go")
	want := []string{"a.go", "b.go", "c.go"}
	if len(st.TouchedFiles) != len(want) {
		t.Fatalf("got %q, want %q", st.TouchedFiles, want)
	}
	for i := range want {
		if st.TouchedFiles[i] != want[i] {
			t.Fatalf("got %q, want %q", st.TouchedFiles, want)
		}
	}
}

func TestReadReturnsErrNoState(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))

	_, err := store.Read()
	if !errors.Is(err, state.ErrNoState) {
		t.Errorf("expected ErrNoState, got: %v", err)
	}
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "nested", "state.json"))

	a, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if a.EntryCounter != 0 {
		t.Errorf("EntryCounter = %d, want 0", a.EntryCounter)
	}
	if a.TouchedFiles == nil || len(a.TouchedFiles) != 0 {
		t.Errorf("TouchedFiles = %#v, want empty slice", a.TouchedFiles)
	}

	b, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if a.SessionID == b.SessionID {
		t.Error("unsaved defaults should not share a session id")
	}
}

func TestLoadMalformedIsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := state.NewStore(path).Load(); err == nil {
		t.Fatal("expected an error for malformed state")
	}
}

func TestUpdate(t *testing.T) {
	store := state.NewStore(filepath.Join(t.TempDir(), "state.json"))

	_, err := store.Update(func(s *state.State) error {
		s.EntryCounter = 3
		s.Touch("x.go")
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	wantErr := errors.New("boom")
	if _, err := store.Update(func(s *state.State) error {
		s.EntryCounter = 99
		return wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}

	got, err := store.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.EntryCounter != 3 {
		t.Errorf("EntryCounter = %d, want 3", got.EntryCounter)
	}
	if len(got.TouchedFiles) != 1 || got.TouchedFiles[0] != "x.go" {
		t.Errorf("TouchedFiles = %q", got.TouchedFiles)
	}
	if got.UpdatedAt == 0 {
		t.Error("UpdatedAt not stamped")
	}
}

func TestSaveFailurePropagatesError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission checks are ineffective")
	}

	tmp := t.TempDir()
	if err := os.Chmod(tmp, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(tmp, 0o755) })

	store := state.NewStore(filepath.Join(tmp, "state.json"))
	if err := store.Save(&state.State{SessionID: "x"}); err == nil {
		t.Fatal("expected error saving into a read-only directory, got nil")
	}
}

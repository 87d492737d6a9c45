package cmd

import (
	"strings"
	"testing"
)

func TestStartTwiceNeedsForce(t *testing.T) {
	root := newProject(t)
	writeFile(t, root, "a.txt", "one\n")

	mustRun(t, root, "start")
	mustRun(t, root, "snap", "a.txt")

	out, err := executeCommand(t, root, "start")
	if err == nil {
		t.Fatal("expected an error from double-start, got nil")
	}
	combined := out + err.Error()
	if !strings.Contains(combined, "session already in progress") {
		t.Errorf("expected error to contain %q, got: %q", "session already in progress", combined)
	}

	out = mustRun(t, root, "start", "--force")
	if !strings.Contains(out, "started") {
		t.Errorf("unexpected output: %q", out)
	}
	if ok, _ := ws.snaps.HasBaseline("a.txt"); ok {
		t.Error("forced start should drop old baselines")
	}
}

func TestCommandsNeedSession(t *testing.T) {
	for _, args := range [][]string{
		{"stop"},
		{"note", "msg-1"},
		{"snap", "a.txt"},
		{"record"},
	} {
		t.Run(args[0], func(t *testing.T) {
			root := newProject(t)
			out, err := executeCommand(t, root, args...)
			if err == nil {
				t.Fatalf("expected an error, got nil (output %q)", out)
			}
			if !strings.Contains(err.Error(), "no active session") {
				t.Errorf("expected error to contain %q, got: %q", "no active session", err.Error())
			}
		})
	}
}

func TestMalformedStateIsNotMissingSession(t *testing.T) {
	root := newProject(t)
	writeFile(t, root, ".timeline/state.json", "{not json")

	_, err := executeCommand(t, root, "record")
	if err == nil {
		t.Fatal("expected an error for a malformed state file, got nil")
	}
	if strings.Contains(err.Error(), "no active session") {
		t.Errorf("malformed state must not be reported as a missing session: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "failed to parse timeline state") {
		t.Errorf("expected the parse error to pass through, got: %q", err.Error())
	}
}

func TestStatus(t *testing.T) {
	root := newProject(t)

	out := mustRun(t, root, "status")
	if !strings.Contains(out, "no active session") {
		t.Errorf("expected %q, got:\n%s", "no active session", out)
	}

	writeFile(t, root, "a.txt", "one\n")
	writeFile(t, root, "b.txt", "two\n")
	mustRun(t, root, "start")
	mustRun(t, root, "snap", "a.txt", "b.txt")
	mustRun(t, root, "note", "msg-7")

	out = mustRun(t, root, "status")
	for _, want := range []string{"Touched files: 2", "Entries: 0 (next counter 1)", "Next message: msg-7"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestNoteSetsMessage(t *testing.T) {
	root := newProject(t)
	writeFile(t, root, "a.txt", "one\n")
	mustRun(t, root, "start")
	mustRun(t, root, "snap", "a.txt")
	mustRun(t, root, "note", "msg-42")

	writeFile(t, root, "a.txt", "one\nmore\n")
	out := mustRun(t, root, "record")
	if !strings.Contains(out, "Recorded 000001_msg-42") {
		t.Errorf("record should use the noted message id, got: %q", out)
	}
}

func TestStopRecordsAndClears(t *testing.T) {
	root := newProject(t)
	writeFile(t, root, "a.txt", "one\n")
	mustRun(t, root, "start")
	mustRun(t, root, "snap", "a.txt", "-m", "final")
	writeFile(t, root, "a.txt", "one\ntwo\n")

	out := mustRun(t, root, "stop")
	if !strings.Contains(out, "Recorded 000001_final") {
		t.Errorf("stop should record pending changes, got:\n%s", out)
	}
	if !strings.Contains(out, "stopped") {
		t.Errorf("expected stop confirmation, got:\n%s", out)
	}

	st, err := ws.state.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(st.TouchedFiles) != 0 || st.LastUserMessageID != "" {
		t.Errorf("state not reset: %+v", st)
	}
	if st.EntryCounter != 1 {
		t.Errorf("EntryCounter = %d, want 1", st.EntryCounter)
	}
	if ok, _ := ws.snaps.HasBaseline("a.txt"); ok {
		t.Error("stop should clear baselines")
	}
}

func TestSnapNothing(t *testing.T) {
	root := newProject(t)
	mustRun(t, root, "start")
	out := mustRun(t, root, "snap")
	if !strings.Contains(out, "Nothing to snapshot.") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestSnapOutsideRoot(t *testing.T) {
	root := newProject(t)
	mustRun(t, root, "start")
	if _, err := executeCommand(t, root, "snap", "../elsewhere.txt"); err == nil {
		t.Fatal("expected an error for a path outside the project")
	}
}

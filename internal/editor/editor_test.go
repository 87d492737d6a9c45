package editor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestResolveCommandPrecedence(t *testing.T) {
	cases := []struct {
		name       string
		env        map[string]string
		configured string
		want       string
	}{
		{"visual wins", map[string]string{"VISUAL": "code --wait", "EDITOR": "nano"}, "hx", "code --wait"},
		{"editor next", map[string]string{"EDITOR": "nano"}, "hx", "nano"},
		{"configured next", map[string]string{"VISUAL": "  "}, "hx", "hx"},
		{"fallback", nil, "", Fallback},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveCommand(env(tc.env), tc.configured); got != tc.want {
				t.Errorf("ResolveCommand = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	argv, err := ParseCommand(`"/opt/My Editor/bin/ed" -n --flag='a b'`)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	want := []string{"/opt/My Editor/bin/ed", "-n", "--flag=a b"}
	if len(argv) != len(want) {
		t.Fatalf("argv = %q, want %q", argv, want)
	}
	for i := range want {
		if argv[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, argv[i], want[i])
		}
	}

	if _, err := ParseCommand("   "); !errors.Is(err, ErrEmptyCommand) {
		t.Errorf("blank command: got %v, want ErrEmptyCommand", err)
	}
}

func TestCommandAppendsAbsoluteFile(t *testing.T) {
	cwd := t.TempDir()
	cmd, err := Command(context.Background(), "myeditor -w", "entries/patch.diff", cwd)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if cmd.Dir != cwd {
		t.Errorf("Dir = %q, want %q", cmd.Dir, cwd)
	}
	want := filepath.Join(cwd, "entries", "patch.diff")
	if got := cmd.Args[len(cmd.Args)-1]; got != want {
		t.Errorf("file arg = %q, want %q", got, want)
	}
	if cmd.Args[1] != "-w" {
		t.Errorf("Args = %q", cmd.Args)
	}
}

func TestOpenRunsEditor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "opened")
	script := filepath.Join(dir, "fake-editor")
	body := "#!/bin/sh\nprintf '%s' \"$1\" > " + out + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Open(context.Background(), script, "patch.diff", dir); err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != filepath.Join(dir, "patch.diff") {
		t.Errorf("editor received %q", got)
	}
}

func TestOpenReportsFailure(t *testing.T) {
	err := Open(context.Background(), "/definitely/not/an/editor", "x", t.TempDir())
	if err == nil {
		t.Fatal("expected an error for a missing editor")
	}
}

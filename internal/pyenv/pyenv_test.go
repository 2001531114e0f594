package pyenv

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// stubInterpreter writes a fake interpreter script named name into dir that
// prints the given version banner. Unix only; Windows tests rely on the
// parse-level tests below.
func stubInterpreter(t *testing.T, dir, name, banner string) {
	t.Helper()
	script := "#!/bin/sh\necho \"" + banner + "\"\n"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestVersionRe(t *testing.T) {
	tests := []struct {
		output string
		want   string
		ok     bool
	}{
		{"Python 3.11.4", "3.11.4", true},
		{"Python 3.9.0\n", "3.9.0", true},
		{"Python 3.13", "3.13.0", true},
		{"Python 2.7.18", "2.7.18", true},
		{"bash: python: command not found", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		m := versionRe.FindSubmatch([]byte(tt.output))
		if (m != nil) != tt.ok {
			t.Errorf("versionRe match on %q = %v, want %v", tt.output, m != nil, tt.ok)
		}
	}
}

func TestAtLeast(t *testing.T) {
	i := &Interpreter{Major: 3, Minor: 10}
	tests := []struct {
		major, minor int
		want         bool
	}{
		{3, 10, true},
		{3, 9, true},
		{3, 11, false},
		{2, 7, true},
		{4, 0, false},
	}
	for _, tt := range tests {
		if got := i.AtLeast(tt.major, tt.minor); got != tt.want {
			t.Errorf("AtLeast(%d, %d) = %v, want %v", tt.major, tt.minor, got, tt.want)
		}
	}
}

func TestInterpreterString(t *testing.T) {
	py := &Interpreter{Command: "py", BaseArgs: []string{"-3"}}
	if py.String() != "py -3" {
		t.Errorf("String = %q, want %q", py.String(), "py -3")
	}
	plain := &Interpreter{Command: "python3"}
	if plain.String() != "python3" {
		t.Errorf("String = %q, want %q", plain.String(), "python3")
	}
}

func TestFindPrefersFirstWorking(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	dir := t.TempDir()
	stubInterpreter(t, dir, "python", "Python 3.12.1")
	stubInterpreter(t, dir, "python3", "Python 3.8.0")
	t.Setenv("PATH", dir)

	interp, err := Find(context.Background(), []string{"py", "python", "python3"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if interp.Command != "python" {
		t.Errorf("Command = %q, want python (first working candidate)", interp.Command)
	}
	if interp.Version != "3.12.1" {
		t.Errorf("Version = %q, want 3.12.1", interp.Version)
	}
}

func TestFindSkipsGarbageOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	dir := t.TempDir()
	stubInterpreter(t, dir, "python", "not a version banner")
	stubInterpreter(t, dir, "python3", "Python 3.10.6")
	t.Setenv("PATH", dir)

	interp, err := Find(context.Background(), []string{"python", "python3"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if interp.Command != "python3" {
		t.Errorf("Command = %q, want python3", interp.Command)
	}
}

func TestFindNoneAvailable(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := Find(context.Background(), []string{"python", "python3"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

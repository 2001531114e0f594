package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"tools.buriburi/party/buriparty/internal/config"
	"tools.buriburi/party/buriparty/internal/paths"
)

func newTestLauncher(t *testing.T) *Launcher {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Build.Name = "game"
	return &Launcher{
		Project: paths.ProjectDir{Root: t.TempDir()},
		Config:  cfg,
	}
}

// installStubExe writes an executable shell script at the launcher's expected
// exe path. Unix only.
func installStubExe(t *testing.T, l *Launcher, script string) {
	t.Helper()
	if err := os.MkdirAll(l.Project.Dist(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.ExePath(), []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestLocateMissing(t *testing.T) {
	l := newTestLauncher(t)
	_, err := l.Locate()
	if !errors.Is(err, ErrExeMissing) {
		t.Fatalf("err = %v, want ErrExeMissing", err)
	}
}

func TestLocateFound(t *testing.T) {
	l := newTestLauncher(t)
	if err := os.MkdirAll(l.Project.Dist(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.ExePath(), []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}

	exe, err := l.Locate()
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if exe != l.ExePath() {
		t.Errorf("Locate = %q, want %q", exe, l.ExePath())
	}
}

func TestLaunchExitCodes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub executables require a POSIX shell")
	}

	tests := []struct {
		name   string
		script string
		want   int
	}{
		{"clean exit", "exit 0", 0},
		{"crash exit", "exit 3", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLauncher(t)
			installStubExe(t, l, tt.script)

			code, err := l.Launch(context.Background())
			if err != nil {
				t.Fatalf("Launch: %v", err)
			}
			if code != tt.want {
				t.Errorf("exit code = %d, want %d", code, tt.want)
			}
		})
	}
}

func TestLaunchMissingExe(t *testing.T) {
	l := newTestLauncher(t)
	_, err := l.Launch(context.Background())
	if !errors.Is(err, ErrExeMissing) {
		t.Fatalf("err = %v, want ErrExeMissing", err)
	}
}

func TestLaunchRunsInProjectDir(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub executables require a POSIX shell")
	}

	l := newTestLauncher(t)
	// The stub writes its working directory into a marker file; the game
	// depends on the project root being the CWD for asset resolution.
	installStubExe(t, l, "pwd > cwd.txt")

	if _, err := l.Launch(context.Background()); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(l.Project.Root, "cwd.txt"))
	if err != nil {
		t.Fatalf("marker file: %v", err)
	}
	got := strings.TrimSpace(string(data))
	want, _ := filepath.EvalSymlinks(l.Project.Root)
	gotResolved, _ := filepath.EvalSymlinks(got)
	if gotResolved != want {
		t.Errorf("game CWD = %q, want %q", gotResolved, want)
	}
}

func TestErrorReport(t *testing.T) {
	l := newTestLauncher(t)
	l.Config.Run.TailLines = 2

	content := "traceback line 1\ntraceback line 2\ntraceback line 3\n"
	if err := os.WriteFile(l.ErrorLogPath(), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := l.ErrorReport()
	if err != nil {
		t.Fatalf("ErrorReport: %v", err)
	}
	want := "traceback line 2\ntraceback line 3"
	if report != want {
		t.Errorf("report = %q, want %q", report, want)
	}
}

func TestErrorReportNoLog(t *testing.T) {
	l := newTestLauncher(t)
	report, err := l.ErrorReport()
	if err != nil {
		t.Fatalf("ErrorReport: %v", err)
	}
	if report != "" {
		t.Errorf("report = %q, want empty for missing log", report)
	}
}

func TestFollowErrorLogStreamsAppends(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow follow test in short mode")
	}

	l := newTestLauncher(t)
	path := l.ErrorLogPath()
	if err := os.WriteFile(path, []byte("old line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sw := &syncWriter{}
	closer, err := l.FollowErrorLog(sw)
	if err != nil {
		t.Fatalf("FollowErrorLog: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("new crash line\n")
	f.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(sw.String(), "new crash line") {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	closer.Close()

	out := sw.String()
	if !strings.Contains(out, "new crash line") {
		t.Errorf("follow output %q missing appended line", out)
	}
	if strings.Contains(out, "old line") {
		t.Errorf("follow output %q should not include pre-existing content", out)
	}
}

// syncWriter serializes access so the follower goroutine and the test don't
// race on the buffer.
type syncWriter struct {
	mu sync.Mutex
	sb strings.Builder
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sb.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sb.String()
}

package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"trace", LevelTrace},
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"fail", LevelFail},
		{"WARN", LevelWarn},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestHandlerFormat(t *testing.T) {
	var sb strings.Builder
	h := NewHandler(&sb, LevelInfo)

	r := slog.NewRecord(time.Date(2026, 3, 1, 12, 30, 45, 0, time.UTC), LevelInfo, "build finished", 0)
	r.AddAttrs(slog.String("exe", "dist/game"), slog.Int("exit", 0))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	got := strings.TrimRight(sb.String(), "\r\n")
	want := "2026-03-01T12:30:45.000Z [INFO] build finished | exe=dist/game, exit=0"
	if got != want {
		t.Errorf("formatted line = %q, want %q", got, want)
	}
}

func TestHandlerLevelFiltering(t *testing.T) {
	var sb strings.Builder
	h := NewHandler(&sb, LevelWarn)

	if h.Enabled(context.Background(), LevelDebug) {
		t.Error("debug should be filtered at warn level")
	}
	if !h.Enabled(context.Background(), LevelFail) {
		t.Error("fail should pass at warn level")
	}
}

func TestHandlerWithAttrsAndGroup(t *testing.T) {
	var sb strings.Builder
	base := NewHandler(&sb, LevelInfo)
	h := base.WithAttrs([]slog.Attr{slog.String("cmd", "run")}).WithGroup("game")

	r := slog.NewRecord(time.Now(), LevelInfo, "launched", 0)
	r.AddAttrs(slog.Int("pid", 99))
	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	out := sb.String()
	if !strings.Contains(out, "game.cmd=run") {
		t.Errorf("missing grouped pre-applied attr: %q", out)
	}
	if !strings.Contains(out, "game.pid=99") {
		t.Errorf("missing grouped record attr: %q", out)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buriparty.log")

	log, closer, err := NewLogger(path, LevelInfo, 1)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info("hello", "k", "v")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "[INFO] hello | k=v") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestReadTail(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "error_log.txt")

	lines := []string{"one", "two", "three", "four", "five"}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		n    int
		want string
	}{
		{2, "four\nfive"},
		{5, "one\ntwo\nthree\nfour\nfive"},
		{10, "one\ntwo\nthree\nfour\nfive"},
	}
	for _, tt := range tests {
		got, err := ReadTail(path, tt.n)
		if err != nil {
			t.Fatalf("ReadTail(%d): %v", tt.n, err)
		}
		if got != tt.want {
			t.Errorf("ReadTail(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestReadTailMissingFile(t *testing.T) {
	if _, err := ReadTail(filepath.Join(t.TempDir(), "nope.txt"), 3); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// Package launcher starts the packaged game executable and surfaces its
// crash log.
//
// It owns the run/diagnose flow the game's original runner script performed:
// verify the dist executable exists, run it, inspect the exit status, and on
// failure show the tail of error_log.txt with fixed Korean guidance. The
// optional follow mode streams error-log lines live while the game is alive.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"tools.buriburi/party/buriparty/internal/config"
	"tools.buriburi/party/buriparty/internal/logger"
	"tools.buriburi/party/buriparty/internal/packager"
	"tools.buriburi/party/buriparty/internal/paths"
	"tools.buriburi/party/buriparty/internal/watcher"
)

// ErrExeMissing is returned by [Launcher.Locate] when the packaged
// executable does not exist yet.
var ErrExeMissing = errors.New("packaged executable not found")

// Fixed Korean guidance, matching the original runner script's messages.
const (
	// MissingExeRemedy is shown when dist/<name> does not exist.
	MissingExeRemedy = "dist 폴더에 실행 파일이 없습니다. 먼저 'buriparty build'를 실행하세요."
	// CrashRemedy is shown when the game exits with a non-zero status.
	CrashRemedy = "게임이 비정상 종료되었습니다. 아래 오류 로그를 확인하세요."
	// NoErrorLogNote is shown when the game failed but left no error log.
	NoErrorLogNote = "오류 로그 파일이 없습니다. 게임을 다시 실행해 보세요."
)

// ///////////////////////////////////////////////
// Launcher
// ///////////////////////////////////////////////

// Launcher runs the packaged game for one project.
type Launcher struct {
	// Project is the game project directory.
	Project paths.ProjectDir
	// Config is the loaded tool configuration.
	Config *config.Config
}

// ExePath returns the expected path of the packaged executable, including
// the platform suffix.
func (l *Launcher) ExePath() string {
	return l.Project.DistEntry(packager.ExeName(l.Config.Build.Name))
}

// ErrorLogPath returns the path of the game's crash log.
func (l *Launcher) ErrorLogPath() string {
	return filepath.Join(l.Project.Root, l.Config.Run.ErrorLog)
}

// Locate verifies the packaged executable exists and returns its path.
func (l *Launcher) Locate() (string, error) {
	exe := l.ExePath()
	if _, err := os.Stat(exe); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrExeMissing, exe)
		}
		return "", fmt.Errorf("stat %s: %w", exe, err)
	}
	return exe, nil
}

// Launch runs the packaged executable with the project root as working
// directory (the game resolves assets and score files relative to it) and
// returns its exit code. The returned error is non-nil only when the process
// could not be located or started; a game that ran and exited non-zero
// yields (code, nil).
func (l *Launcher) Launch(ctx context.Context) (int, error) {
	exe, err := l.Locate()
	if err != nil {
		return -1, err
	}

	slog.Info("launching game", "exe", exe)
	cmd := exec.CommandContext(ctx, exe)
	cmd.Dir = l.Project.Root

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			slog.Warn("game exited with error", "exit_code", code)
			return code, nil
		}
		return -1, fmt.Errorf("start %s: %w", exe, err)
	}

	slog.Info("game exited normally")
	return 0, nil
}

// ErrorReport returns the tail of the game's error log, limited to the
// configured line count. Returns ("", nil) when no log exists.
func (l *Launcher) ErrorReport() (string, error) {
	tail, err := logger.ReadTail(l.ErrorLogPath(), l.Config.Run.TailLines)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read error log: %w", err)
	}
	return tail, nil
}

// ///////////////////////////////////////////////
// Follow Mode
// ///////////////////////////////////////////////

// follower streams appended error-log bytes to an output writer.
type follower struct {
	path   string
	out    io.Writer
	w      *watcher.Watcher
	done   chan struct{}
	once   sync.Once
	offset int64
}

// FollowErrorLog starts streaming new error-log content to out until the
// returned closer is closed. Streaming begins at the log's current end so
// only lines written during this run appear.
func (l *Launcher) FollowErrorLog(out io.Writer) (io.Closer, error) {
	path := l.ErrorLogPath()
	fw, err := watcher.New(path)
	if err != nil {
		return nil, fmt.Errorf("watch error log: %w", err)
	}

	f := &follower{path: path, out: out, w: fw, done: make(chan struct{})}
	if info, statErr := os.Stat(path); statErr == nil {
		f.offset = info.Size()
	}
	go f.loop()
	return f, nil
}

// loop drains watcher events and copies newly appended bytes on each one.
func (f *follower) loop() {
	for {
		select {
		case <-f.done:
			return
		case <-f.w.Events():
			if err := f.dump(); err != nil {
				slog.Debug("error log follow read failed", "error", err)
			}
		}
	}
}

// dump copies bytes appended since the last read to the output writer.
// A shrunken file (rotation or truncation) resets the read offset.
func (f *follower) dump() error {
	file, err := os.Open(f.path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < f.offset {
		f.offset = 0
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return err
	}
	n, err := io.Copy(f.out, file)
	f.offset += n
	return err
}

// Close stops the follower and flushes any remaining appended content.
func (f *follower) Close() error {
	var err error
	f.once.Do(func() {
		close(f.done)
		err = f.w.Close()
		// A final read catches writes that raced with shutdown.
		if dumpErr := f.dump(); dumpErr != nil && !os.IsNotExist(dumpErr) {
			slog.Debug("final error log read failed", "error", dumpErr)
		}
	})
	return err
}

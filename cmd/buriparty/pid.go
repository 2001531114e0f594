package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tools.buriburi/party/buriparty/internal/paths"
)

// ///////////////////////////////////////////////
// PID File
// ///////////////////////////////////////////////

// The run command holds a locked PID file while the game is playing, so a
// second `buriparty run` in the same project refuses to start instead of
// launching the game twice.

// pidToken generates a random 16-character hex token used to prove ownership
// of the PID file, so [removePID] only deletes the file if this process wrote it.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// writePID creates or opens the PID file at [paths.ProjectDir.PID], acquires
// an advisory file lock, and writes "PID:TOKEN" content. The returned file
// handle must stay open while the game runs to hold the lock; pass it to
// [removePID] afterwards.
func writePID(project paths.ProjectDir, token string) (*os.File, error) {
	f, err := os.OpenFile(project.PID(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock PID file: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	content := fmt.Sprintf("%d:%s", os.Getpid(), token)
	if _, err := f.WriteString(content); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return f, nil
}

// removePID releases the advisory lock, closes the file handle, and removes
// the PID file only if the stored token matches, preventing accidental
// removal of a file owned by a different run.
func removePID(project paths.ProjectDir, token string, f *os.File) {
	if f != nil {
		_ = unlockFile(f)
		f.Close()
	}
	data, err := os.ReadFile(project.PID())
	if err != nil {
		return
	}
	parts := strings.SplitN(string(data), ":", 2)
	if len(parts) == 2 && parts[1] == token {
		os.Remove(project.PID())
	}
}

// checkStalePID checks whether another run is active in this project. It
// attempts to acquire the advisory lock on the PID file; if the lock fails,
// another process holds it. If the lock succeeds, any previous run is dead
// and the stale file is cleaned up.
func checkStalePID(project paths.ProjectDir) (alive bool, pid int) {
	f, err := os.OpenFile(project.PID(), os.O_RDWR, 0o600)
	if err != nil {
		return false, 0
	}

	if lockErr := lockFile(f); lockErr != nil {
		data, _ := os.ReadFile(project.PID())
		f.Close()
		parts := strings.SplitN(string(data), ":", 2)
		if len(parts) >= 1 {
			if p, convErr := strconv.Atoi(parts[0]); convErr == nil {
				return true, p
			}
		}
		return true, 0
	}

	// Lock acquired -- previous run is dead. Clean up stale file.
	_ = unlockFile(f)
	f.Close()
	os.Remove(project.PID())
	return false, 0
}

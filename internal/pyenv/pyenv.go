// Package pyenv discovers a working Python interpreter and drives pip.
//
// Discovery walks an ordered preference list of interpreter commands
// (typically "py", then "python", then "python3") and probes each with
// --version. The Windows "py" launcher is
// probed as "py -3" so discovery lands on Python 3 even when Python 2 is the
// launcher default.
package pyenv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
)

// ErrNotFound is returned by [Find] when no candidate interpreter responds
// to a version probe.
var ErrNotFound = errors.New("no python interpreter found")

// ///////////////////////////////////////////////
// Interpreter
// ///////////////////////////////////////////////

// Interpreter describes a discovered Python interpreter.
type Interpreter struct {
	// Command is the executable name or path (e.g. "python", "py").
	Command string
	// BaseArgs are arguments required before any others (e.g. "-3" for the
	// Windows launcher).
	BaseArgs []string
	// Version is the raw version string reported by the interpreter ("3.11.4").
	Version string
	// Major, Minor, Patch are the parsed version components.
	Major, Minor, Patch int
}

// String returns the command with its base arguments, for display and logs.
func (i *Interpreter) String() string {
	s := i.Command
	for _, a := range i.BaseArgs {
		s += " " + a
	}
	return s
}

// AtLeast reports whether the interpreter version is >= major.minor.
func (i *Interpreter) AtLeast(major, minor int) bool {
	if i.Major != major {
		return i.Major > major
	}
	return i.Minor >= minor
}

// Cmd builds an exec.Cmd for the interpreter with the given extra arguments
// appended after the base arguments.
func (i *Interpreter) Cmd(ctx context.Context, extra ...string) *exec.Cmd {
	args := make([]string, 0, len(i.BaseArgs)+len(extra))
	args = append(args, i.BaseArgs...)
	args = append(args, extra...)
	return exec.CommandContext(ctx, i.Command, args...)
}

// ///////////////////////////////////////////////
// Discovery
// ///////////////////////////////////////////////

// versionRe extracts the version triple from "Python 3.11.4" style output.
var versionRe = regexp.MustCompile(`Python (\d+)\.(\d+)(?:\.(\d+))?`)

// Find probes the candidate commands in order and returns the first
// interpreter that answers a --version probe. Returns [ErrNotFound] when
// none do.
func Find(ctx context.Context, prefer []string) (*Interpreter, error) {
	for _, cand := range prefer {
		interp, err := probe(ctx, cand)
		if err != nil {
			slog.Debug("interpreter candidate failed", "command", cand, "error", err)
			continue
		}
		slog.Info("found python interpreter", "command", interp.String(), "version", interp.Version)
		return interp, nil
	}
	return nil, fmt.Errorf("%w (tried %v)", ErrNotFound, prefer)
}

// probe runs `<cand> --version` and parses the reported version. The "py"
// launcher gets a "-3" base argument so the probe selects Python 3.
func probe(ctx context.Context, cand string) (*Interpreter, error) {
	var baseArgs []string
	if cand == "py" {
		baseArgs = []string{"-3"}
	}

	args := append(append([]string{}, baseArgs...), "--version")
	// Older interpreters print the version to stderr, so capture both.
	out, err := exec.CommandContext(ctx, cand, args...).CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("run %s --version: %w", cand, err)
	}

	m := versionRe.FindSubmatch(out)
	if m == nil {
		return nil, fmt.Errorf("unrecognized version output %q", bytes.TrimSpace(out))
	}
	major, _ := strconv.Atoi(string(m[1]))
	minor, _ := strconv.Atoi(string(m[2]))
	patch := 0
	if len(m[3]) > 0 {
		patch, _ = strconv.Atoi(string(m[3]))
	}

	return &Interpreter{
		Command:  cand,
		BaseArgs: baseArgs,
		Version:  fmt.Sprintf("%d.%d.%d", major, minor, patch),
		Major:    major,
		Minor:    minor,
		Patch:    patch,
	}, nil
}

// ///////////////////////////////////////////////
// Modules and pip
// ///////////////////////////////////////////////

// HasModule reports whether the interpreter can import the given module.
func (i *Interpreter) HasModule(ctx context.Context, module string) bool {
	err := i.Cmd(ctx, "-c", "import "+module).Run()
	return err == nil
}

// PipInstall runs `-m pip install` with the given arguments, streaming
// combined output to out. A nil out discards the output.
func (i *Interpreter) PipInstall(ctx context.Context, out io.Writer, args ...string) error {
	if out == nil {
		out = io.Discard
	}
	full := append([]string{"-m", "pip", "install"}, args...)
	cmd := i.Cmd(ctx, full...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pip install %v: %w", args, err)
	}
	return nil
}

// InstallRequirements installs each requirements file in order via
// `-m pip install -r <file>`, streaming output to out. Installation stops at
// the first failure, matching the original scripts' fail-fast behavior.
func (i *Interpreter) InstallRequirements(ctx context.Context, out io.Writer, files []string) error {
	for _, f := range files {
		slog.Info("installing requirements", "file", f)
		if err := i.PipInstall(ctx, out, "-r", f); err != nil {
			return fmt.Errorf("requirements file %s: %w", f, err)
		}
	}
	return nil
}

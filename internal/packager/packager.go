// Package packager drives PyInstaller to produce the standalone game
// executable.
//
// Two build variants exist, mirroring the game's original build scripts:
// flag mode assembles the full PyInstaller command line (--onefile,
// --windowed, --name, --add-data pairs), while spec mode hands PyInstaller a
// pre-existing .spec file and ignores all flag-mode options. PyInstaller is
// always invoked through the discovered interpreter (`-m PyInstaller`) so the
// build uses the same environment pip installed into.
package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"tools.buriburi/party/buriparty/internal/config"
	"tools.buriburi/party/buriparty/internal/paths"
	"tools.buriburi/party/buriparty/internal/pyenv"
)

// pyInstallerModule is the import name probed to detect an existing install.
const pyInstallerModule = "PyInstaller"

// ///////////////////////////////////////////////
// Errors
// ///////////////////////////////////////////////

// BuildError describes a failed PyInstaller invocation. Remedy carries the
// fixed Korean guidance the original scripts printed on failure.
type BuildError struct {
	// ExitCode is the PyInstaller process exit code, or -1 when the process
	// could not be started.
	ExitCode int
	// Remedy is user-facing Korean remediation text.
	Remedy string
	// Err is the underlying process error.
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("pyinstaller failed (exit %d): %v", e.ExitCode, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ///////////////////////////////////////////////
// Packager
// ///////////////////////////////////////////////

// Packager runs PyInstaller builds for one project.
type Packager struct {
	// Project is the game project directory.
	Project paths.ProjectDir
	// Config is the loaded tool configuration.
	Config *config.Config
	// Out receives streamed PyInstaller and pip output. Nil discards it.
	Out io.Writer
}

// dataSep is the --add-data source/dest separator: ";" on Windows, ":"
// elsewhere (the os.pathsep rule the original build script applied).
var dataSep = func() string {
	if runtime.GOOS == "windows" {
		return ";"
	}
	return ":"
}()

// addDataArg renders one --add-data argument with the given separator.
func addDataArg(d config.DataPair, sep string) string {
	return "--add-data=" + d.Src + sep + d.Dest
}

// Args assembles the PyInstaller argument list (everything after
// `-m PyInstaller`). Spec mode produces just the spec file path; flag mode
// produces the full flag set ending with the entry script.
func (p *Packager) Args() []string {
	b := p.Config.Build
	if p.Config.SpecMode() {
		args := []string{}
		if b.CleanBuild {
			args = append(args, "--clean")
		}
		return append(args, b.SpecFile)
	}

	args := []string{"--name=" + b.Name}
	if b.OneFile {
		args = append(args, "--onefile")
	}
	if b.Windowed {
		args = append(args, "--windowed")
	}
	if b.Icon != "" {
		args = append(args, "--icon="+b.Icon)
	}
	for _, d := range b.Data {
		args = append(args, addDataArg(d, dataSep))
	}
	if b.CleanBuild {
		args = append(args, "--clean")
	}
	args = append(args, b.ExtraArgs...)
	return append(args, b.Entry)
}

// EnsureInstalled checks that PyInstaller is importable and installs it via
// pip when missing, as the original build script did.
func (p *Packager) EnsureInstalled(ctx context.Context, interp *pyenv.Interpreter) error {
	if interp.HasModule(ctx, pyInstallerModule) {
		slog.Debug("pyinstaller already installed")
		return nil
	}
	slog.Info("installing pyinstaller")
	fmt.Fprintln(p.out(), "PyInstaller를 설치하는 중...")
	if err := interp.PipInstall(ctx, p.out(), "pyinstaller"); err != nil {
		return fmt.Errorf("install pyinstaller: %w", err)
	}
	fmt.Fprintln(p.out(), "PyInstaller 설치 완료!")
	return nil
}

// Build runs PyInstaller and returns the path of the produced executable.
// The working directory is the project root so relative --add-data sources
// resolve the same way the original script's os.chdir achieved.
func (p *Packager) Build(ctx context.Context, interp *pyenv.Interpreter) (string, error) {
	if err := p.EnsureInstalled(ctx, interp); err != nil {
		return "", err
	}

	args := append([]string{"-m", pyInstallerModule}, p.Args()...)
	slog.Info("starting pyinstaller", "interpreter", interp.String(), "args", fmt.Sprint(args))

	cmd := interp.Cmd(ctx, args...)
	cmd.Dir = p.Project.Root
	cmd.Stdout = p.out()
	cmd.Stderr = p.out()

	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return "", &BuildError{
			ExitCode: code,
			Remedy:   "빌드에 실패했습니다. 위의 PyInstaller 출력을 확인한 뒤 'buriparty doctor'로 환경을 점검해 보세요.",
			Err:      err,
		}
	}

	exe := p.Project.DistEntry(ExeName(p.Config.Build.Name))
	slog.Info("build finished", "exe", exe)
	return exe, nil
}

// out returns the configured output writer, defaulting to io.Discard.
func (p *Packager) out() io.Writer {
	if p.Out == nil {
		return io.Discard
	}
	return p.Out
}

// ExeName appends the platform executable suffix to a PyInstaller output name.
func ExeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

// ///////////////////////////////////////////////
// Clean
// ///////////////////////////////////////////////

// Clean removes the dist and build directories plus everything matching the
// configured clean.remove globs (minus clean.keep). The tool's own data
// directory is never touched. Returns the removed paths.
func (p *Packager) Clean() ([]string, error) {
	var removed []string

	for _, dir := range []string{p.Project.Dist(), p.Project.Build()} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return removed, fmt.Errorf("remove %s: %w", dir, err)
		}
		removed = append(removed, dir)
	}

	if len(p.Config.Clean.Remove) == 0 {
		return removed, nil
	}

	var matches []string
	err := filepath.WalkDir(p.Project.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == p.Project.Root {
			return nil
		}
		rel, relErr := filepath.Rel(p.Project.Root, path)
		if relErr != nil {
			return relErr
		}
		// The data directory holds tool state (logs, caches) and is exempt.
		if d.IsDir() && d.Name() == paths.DataDirName {
			return fs.SkipDir
		}
		if p.Config.ShouldRemove(rel) {
			matches = append(matches, path)
			if d.IsDir() {
				return fs.SkipDir
			}
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("scan project: %w", err)
	}

	for _, m := range matches {
		if err := os.RemoveAll(m); err != nil {
			return removed, fmt.Errorf("remove %s: %w", m, err)
		}
		removed = append(removed, m)
	}
	return removed, nil
}

// Package main implements the buriparty command, the build and launch
// helper for the BuriBuri Party game: it packages the pygame sources with
// PyInstaller, runs the packaged executable with crash reporting, and talks
// to the shared leaderboard.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/alecthomas/kong"

	"tools.buriburi/party/buriparty/internal/config"
	"tools.buriburi/party/buriparty/internal/logger"
	"tools.buriburi/party/buriparty/internal/paths"
	"tools.buriburi/party/buriparty/internal/update"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//   - goreleaser: -X main.version={{.Version}}  -> "0.1.0"
//   - make build: -X main.version=$(VERSION)    -> "0.0.0-dev+05ffee5"
//
// When ldflags are not set (bare go build), resolveVersion reads the VCS info
// that Go embeds automatically, so dev builds get a useful version string
// without needing git at runtime.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags at build time it is returned as-is; otherwise VCS revision and dirty
// state embedded by the Go toolchain are used to construct a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// CLI Definition
// ///////////////////////////////////////////////

var cli struct {
	Dir     string           `short:"C" help:"Game project directory." default:"." type:"path"`
	Verbose bool             `short:"v" help:"Enable debug logging."`
	Version kong.VersionFlag `help:"Show version and exit."`

	Init   InitCmd   `cmd:"" help:"Write a commented buriparty.toml into the project."`
	Build  BuildCmd  `cmd:"" help:"Package the game into dist/ with PyInstaller."`
	Run    RunCmd    `cmd:"" help:"Run the packaged game and report crashes."`
	Doctor DoctorCmd `cmd:"" help:"Diagnose the build and run environment."`
	Clean  CleanCmd  `cmd:"" help:"Remove build artifacts."`
	Scores ScoresCmd `cmd:"" help:"Show and submit game scores."`
}

// appEnv is the shared state handed to every subcommand's Run method.
type appEnv struct {
	Project paths.ProjectDir
	Config  *config.Config
	Version string
}

// setup loads the project config and routes the tool's own log into the
// project data directory. The returned closer flushes the log file.
func setup(ver string) (*appEnv, io.Closer, error) {
	project := paths.ProjectDir{Root: cli.Dir}

	cfg, err := config.Load(project.Config())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	if err := os.MkdirAll(project.Data(), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	if cli.Verbose {
		level = logger.LevelDebug
	}
	log, logCloser, err := logger.NewLogger(project.Log(), level, cfg.Log.MaxSizeMB)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	slog.Info("buriparty starting", "version", ver, "project", project.Root)
	return &appEnv{Project: project, Config: cfg, Version: ver}, logCloser, nil
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	ver := resolveVersion()
	kctx := kong.Parse(&cli,
		kong.Name(paths.BinaryName),
		kong.Description("더 부리부리 파티 게임의 빌드/실행 도우미."),
		kong.Vars{"version": ver},
		kong.UsageOnError(),
	)

	env, logCloser, err := setup(ver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("update check panic", "error", r)
			}
		}()
		update.Check(ver)
	}()

	runErr := kctx.Run(env)
	if runErr != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", runErr)
	}
	logCloser.Close()
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "오류: %v\n", runErr)
		os.Exit(1)
	}
}

// Package config provides configuration loading and defaults for the
// buriparty tool.
//
// Configuration is loaded from a TOML file (buriparty.toml) in the game
// project directory. The package covers interpreter preferences, PyInstaller
// build settings, run/diagnose behavior, leaderboard access, and logging,
// with sensible defaults for the BuriBuri Party game itself.
package config

//go:generate go run ../../cmd/genconfig

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"tools.buriburi/party/buriparty/internal/atomicfile"
	"tools.buriburi/party/buriparty/internal/migrate"
	"tools.buriburi/party/buriparty/internal/paths"
)

// DefaultAppName is the packaged executable name for the BuriBuri Party game.
const DefaultAppName = "더부리부리파티"

// DefaultEntry is the game's entry script.
const DefaultEntry = "main_game.py"

// DefaultLeaderboardURL is the Supabase project the game's mini-games
// submit scores to.
const DefaultLeaderboardURL = "https://gzlylnktkrktfbsckvce.supabase.co"

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level tool configuration.
type Config struct {
	// Version is the config schema version used for migrations.
	Version int `toml:"version"`
	// Python holds interpreter discovery settings.
	Python PythonConfig `toml:"python"`
	// Build holds PyInstaller packaging settings.
	Build BuildConfig `toml:"build"`
	// Run holds launch and error-log display settings.
	Run RunConfig `toml:"run"`
	// Clean holds artifact removal settings.
	Clean CleanConfig `toml:"clean"`
	// Leaderboard holds remote score service settings.
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
	// Log holds tool logging settings.
	Log LogConfig `toml:"log"`
}

// PythonConfig holds interpreter discovery settings.
type PythonConfig struct {
	// Prefer is the ordered list of interpreter commands to try. The "py"
	// launcher is probed with "-3" automatically.
	Prefer []string `toml:"prefer"`
	// MinVersion is the minimum accepted interpreter version ("major.minor").
	// Empty disables the check.
	MinVersion string `toml:"min_version"`
}

// DataPair names one --add-data source/destination mapping.
type DataPair struct {
	// Src is the file or directory to bundle, relative to the project root.
	Src string `toml:"src"`
	// Dest is the path inside the bundle ("." for the bundle root).
	Dest string `toml:"dest"`
}

// BuildConfig holds PyInstaller packaging settings.
type BuildConfig struct {
	// Name is the packaged executable name (--name).
	Name string `toml:"name"`
	// Entry is the entry script handed to PyInstaller.
	Entry string `toml:"entry"`
	// OneFile bundles everything into a single executable (--onefile).
	OneFile bool `toml:"onefile"`
	// Windowed hides the console window (--windowed).
	Windowed bool `toml:"windowed"`
	// CleanBuild passes --clean so PyInstaller discards its cache first.
	CleanBuild bool `toml:"clean_build"`
	// Icon is an optional .ico path for the executable.
	Icon string `toml:"icon,omitempty"`
	// SpecFile, when set, switches to spec mode: PyInstaller is invoked with
	// this file and all flag-mode options are ignored.
	SpecFile string `toml:"spec_file,omitempty"`
	// Requirements lists pip requirements files installed before packaging.
	Requirements []string `toml:"requirements"`
	// Data lists --add-data pairs bundled into the executable.
	Data []DataPair `toml:"data"`
	// ExtraArgs are appended verbatim to the PyInstaller command line.
	ExtraArgs []string `toml:"extra_args,omitempty"`
}

// RunConfig holds launch and error-log display settings.
type RunConfig struct {
	// ErrorLog is the file the game writes crash details to, relative to the
	// project root.
	ErrorLog string `toml:"error_log"`
	// TailLines is how many trailing error-log lines to show after a crash.
	TailLines int `toml:"tail_lines"`
	// ShowErrorLog prints the error-log tail when the game exits non-zero.
	ShowErrorLog bool `toml:"show_error_log"`
}

// CleanConfig holds artifact removal settings for the clean command.
type CleanConfig struct {
	// Remove lists doublestar globs (relative to the project root) removed in
	// addition to dist/ and build/.
	Remove []string `toml:"remove"`
	// Keep lists globs protected from removal even when matched by Remove.
	Keep []string `toml:"keep"`
}

// LeaderboardConfig holds remote score service settings.
type LeaderboardConfig struct {
	// Enabled gates all leaderboard network access.
	Enabled bool `toml:"enabled"`
	// URL is the Supabase project base URL.
	URL string `toml:"url"`
	// Table is the REST table name holding leaderboard entries.
	Table string `toml:"table"`
	// Limit is how many entries a top query returns.
	Limit int `toml:"limit"`
	// TimeoutSeconds bounds each leaderboard request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// LogConfig holds tool logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error, fail).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with the BuriBuri Party defaults.
// The data pairs mirror what the game's original build script bundled: the
// assets directory plus the per-game best score dotfiles.
func DefaultConfig() *Config {
	return &Config{
		Version: migrate.Config.CurrentVersion,
		Python: PythonConfig{
			Prefer:     []string{"py", "python", "python3"},
			MinVersion: "3.10",
		},
		Build: BuildConfig{
			Name:         DefaultAppName,
			Entry:        DefaultEntry,
			OneFile:      true,
			Windowed:     true,
			CleanBuild:   true,
			Requirements: []string{"requirements.txt"},
			Data: []DataPair{
				{Src: paths.AssetsDir, Dest: paths.AssetsDir},
				{Src: paths.BestScoreFile("flappy"), Dest: "."},
				{Src: paths.BestScoreFile("sugar"), Dest: "."},
			},
		},
		Run: RunConfig{
			ErrorLog:     paths.ErrorLogFile,
			TailLines:    40,
			ShowErrorLog: true,
		},
		Clean: CleanConfig{
			Remove: []string{"**/__pycache__"},
		},
		Leaderboard: LeaderboardConfig{
			Enabled:        true,
			URL:            DefaultLeaderboardURL,
			Table:          "leaderboard_entries",
			Limit:          10,
			TimeoutSeconds: 6,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// ExampleConfig returns a Config suitable for generating config.default.toml.
// For this project all defaults are good examples.
func ExampleConfig() *Config {
	return DefaultConfig()
}

// ///////////////////////////////////////////////
// PeekVersion
// ///////////////////////////////////////////////

// PeekVersion reads just the version field from raw TOML bytes.
// Returns 1 if the version field is missing or zero.
func PeekVersion(data []byte) int {
	var v struct {
		Version int `toml:"version"`
	}
	if err := toml.Unmarshal(data, &v); err != nil {
		return 1
	}
	if v.Version == 0 {
		return 1
	}
	return v.Version
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file at path.
// If the file doesn't exist, returns DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	version := PeekVersion(data)

	migrated := version != migrate.Config.CurrentVersion
	if migrated {
		// Back up before touching the user's file.
		if backupErr := os.WriteFile(path+".bak", data, 0o644); backupErr != nil {
			slog.Warn("failed to write config backup", "error", backupErr)
		}
		var migrateErr error
		data, _, migrateErr = migrate.Config.Run(data, version)
		if migrateErr != nil {
			return nil, fmt.Errorf("migrate config: %w", migrateErr)
		}
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Version = migrate.Config.CurrentVersion

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if migrated {
		if err := cfg.Save(path); err != nil {
			slog.Warn("failed to save migrated config", "error", err)
		}
	}

	return cfg, nil
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// minVersionRe matches a "major.minor" version requirement.
var minVersionRe = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fail": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if len(c.Python.Prefer) == 0 {
		return fmt.Errorf("python.prefer must list at least one interpreter command")
	}
	if c.Python.MinVersion != "" && !minVersionRe.MatchString(c.Python.MinVersion) {
		return fmt.Errorf("invalid python.min_version %q: must look like \"3.10\"", c.Python.MinVersion)
	}

	if c.Build.Name == "" {
		return fmt.Errorf("build.name must not be empty")
	}
	if c.Build.SpecFile == "" {
		if c.Build.Entry == "" {
			return fmt.Errorf("build.entry must not be empty when no spec_file is set")
		}
		if !strings.HasSuffix(c.Build.Entry, ".py") {
			return fmt.Errorf("invalid build.entry %q: must be a .py script", c.Build.Entry)
		}
	} else if !strings.HasSuffix(c.Build.SpecFile, paths.SpecExt) {
		return fmt.Errorf("invalid build.spec_file %q: must end with %s", c.Build.SpecFile, paths.SpecExt)
	}
	for _, d := range c.Build.Data {
		if d.Src == "" || d.Dest == "" {
			return fmt.Errorf("build.data entries need both src and dest (got src=%q dest=%q)", d.Src, d.Dest)
		}
	}

	if c.Run.ErrorLog == "" {
		return fmt.Errorf("run.error_log must not be empty")
	}
	if c.Run.TailLines <= 0 {
		return fmt.Errorf("run.tail_lines must be > 0, got %d", c.Run.TailLines)
	}

	for _, pattern := range append(append([]string{}, c.Clean.Remove...), c.Clean.Keep...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid clean glob %q", pattern)
		}
	}

	if c.Leaderboard.Enabled {
		if !strings.HasPrefix(c.Leaderboard.URL, "https://") {
			return fmt.Errorf("invalid leaderboard.url %q: must be an https URL", c.Leaderboard.URL)
		}
		if c.Leaderboard.Table == "" {
			return fmt.Errorf("leaderboard.table must not be empty")
		}
		if c.Leaderboard.Limit <= 0 || c.Leaderboard.Limit > 100 {
			return fmt.Errorf("leaderboard.limit must be 1..100, got %d", c.Leaderboard.Limit)
		}
		if c.Leaderboard.TimeoutSeconds <= 0 {
			return fmt.Errorf("leaderboard.timeout_seconds must be > 0, got %d", c.Leaderboard.TimeoutSeconds)
		}
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, error, or fail", c.Log.Level)
	}
	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	return nil
}

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

// SpecMode reports whether builds use a PyInstaller spec file instead of
// flag-mode arguments.
func (c *Config) SpecMode() bool {
	return c.Build.SpecFile != ""
}

// MinPython returns the configured minimum interpreter version as
// (major, minor). Returns (0, 0) when the check is disabled.
func (c *Config) MinPython() (major, minor int) {
	if c.Python.MinVersion == "" {
		return 0, 0
	}
	parts := strings.SplitN(c.Python.MinVersion, ".", 2)
	major, _ = strconv.Atoi(parts[0])
	minor, _ = strconv.Atoi(parts[1])
	return major, minor
}

// ShouldRemove reports whether the project-relative path rel matches a
// clean.remove glob without matching any clean.keep glob. Patterns that fail
// to compile are skipped with a warning; Validate catches them earlier for
// config-sourced values.
func (c *Config) ShouldRemove(rel string) bool {
	rel = strings.ReplaceAll(rel, "\\", "/")
	for _, keep := range c.Clean.Keep {
		matched, err := doublestar.Match(keep, rel)
		if err != nil {
			slog.Warn("invalid keep glob", "pattern", keep, "error", err)
			continue
		}
		if matched {
			return false
		}
	}
	for _, pattern := range c.Clean.Remove {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			slog.Warn("invalid remove glob", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

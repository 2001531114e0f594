// Package paths centralizes file and directory names used across the project.
// Every name the tool reads or writes inside a game project lives here as the
// single source of truth.
package paths

import "path/filepath"

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Project-root file and directory names.
const (
	ConfigFile   = "buriparty.toml"
	DistDir      = "dist"
	BuildDir     = "build"
	AssetsDir    = "assets"
	ErrorLogFile = "error_log.txt"
	EnvFile      = ".env"
	SpecExt      = ".spec"
)

// Tool data directory names, kept under DataDirName inside the project so a
// project checkout stays self-contained.
const (
	DataDirName          = ".buriparty"
	LogFile              = "buriparty.log"
	PIDFile              = "run.pid"
	LeaderboardCacheFile = "leaderboard-cache.json"
	ScoreStoreFile       = "scores.json"
)

// BinaryName is the name of the tool's own executable.
const BinaryName = "buriparty"

// Remote-fetched file paths (relative to repo root).
const ReleaseManifest = ".release-manifest.json"

// BestScoreFile returns the per-game best score dotfile name. The game
// bundles these files next to its entry script, so the names here must match
// what the mini-games expect (e.g. ".flappy_best_score").
func BestScoreFile(game string) string {
	return "." + game + "_best_score"
}

// ///////////////////////////////////////////////
// ProjectDir
// ///////////////////////////////////////////////

// ProjectDir provides path construction methods rooted at a game project
// directory (the directory containing the entry script and buriparty.toml).
type ProjectDir struct {
	Root string
}

// Join returns the full path to a project-relative file.
func (p ProjectDir) Join(rel string) string { return filepath.Join(p.Root, rel) }

// Config returns the full path to the project config file.
func (p ProjectDir) Config() string { return filepath.Join(p.Root, ConfigFile) }

// Dist returns the full path to the PyInstaller output directory.
func (p ProjectDir) Dist() string { return filepath.Join(p.Root, DistDir) }

// Build returns the full path to the PyInstaller work directory.
func (p ProjectDir) Build() string { return filepath.Join(p.Root, BuildDir) }

// Assets returns the full path to the bundled assets directory.
func (p ProjectDir) Assets() string { return filepath.Join(p.Root, AssetsDir) }

// ErrorLog returns the full path to the game's crash/error log.
func (p ProjectDir) ErrorLog() string { return filepath.Join(p.Root, ErrorLogFile) }

// Env returns the full path to the project's optional .env file.
func (p ProjectDir) Env() string { return filepath.Join(p.Root, EnvFile) }

// Data returns the full path to the tool's data directory.
func (p ProjectDir) Data() string { return filepath.Join(p.Root, DataDirName) }

// Log returns the full path to the tool's own log file.
func (p ProjectDir) Log() string { return filepath.Join(p.Data(), LogFile) }

// PID returns the full path to the run-command PID file.
func (p ProjectDir) PID() string { return filepath.Join(p.Data(), PIDFile) }

// LeaderboardCache returns the full path to the cached leaderboard snapshot.
func (p ProjectDir) LeaderboardCache() string {
	return filepath.Join(p.Data(), LeaderboardCacheFile)
}

// ScoreStore returns the full path to the versioned local score store.
func (p ProjectDir) ScoreStore() string { return filepath.Join(p.Data(), ScoreStoreFile) }

// BestScore returns the full path to a per-game best score dotfile.
func (p ProjectDir) BestScore(game string) string {
	return filepath.Join(p.Root, BestScoreFile(game))
}

// DistEntry returns the path to a named artifact inside the dist directory.
// Any platform executable suffix is the caller's concern.
func (p ProjectDir) DistEntry(name string) string {
	return filepath.Join(p.Dist(), name)
}

// Spec returns the full path to the PyInstaller spec file for the given
// application name.
func (p ProjectDir) Spec(name string) string {
	return filepath.Join(p.Root, name+SpecExt)
}

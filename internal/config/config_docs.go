package config

// ///////////////////////////////////////////////
// Documentation Types
// ///////////////////////////////////////////////

// FieldDoc holds documentation and alternative examples for a single config
// field. The genconfig tool uses [FieldDoc] values to annotate the generated
// config.default.toml.
type FieldDoc struct {
	// Comment is shown as a header comment above the field in the example config.
	Comment string

	// Alternatives are shown as commented-out lines below the active value.
	Alternatives []string
}

// ///////////////////////////////////////////////
// Field Documentation Map
// ///////////////////////////////////////////////

// ConfigDocs maps TOML field paths (dot-separated, e.g. "build.entry") to
// their [FieldDoc] entries. The genconfig tool uses this map to annotate the
// generated config.default.toml with inline comments and alternative examples.
var ConfigDocs = map[string]FieldDoc{
	// ── Root ──────────────────────────────────────────────────────
	"version": {
		Comment: "Config schema version, managed by the tool. Do not edit.",
	},

	// ── Python ────────────────────────────────────────────────────
	"python.prefer": {
		Comment: "Interpreter commands tried in order. The Windows \"py\" launcher\nis probed as \"py -3\" automatically.",
	},
	"python.min_version": {
		Comment: "Minimum accepted Python version. Leave empty to accept any.",
	},

	// ── Build ─────────────────────────────────────────────────────
	"build.name": {
		Comment: "Executable name passed to PyInstaller (--name).\nThe packaged game lands at dist/<name>[.exe].",
	},
	"build.entry": {
		Comment: "Entry script handed to PyInstaller in flag mode.",
	},
	"build.onefile": {
		Comment: "Bundle everything into a single executable (--onefile).",
	},
	"build.windowed": {
		Comment: "Hide the console window (--windowed). Keep this on for the game;\nturn it off to see Python tracebacks directly.",
	},
	"build.clean_build": {
		Comment: "Discard PyInstaller's cache before building (--clean).",
	},
	"build.icon": {
		Comment:      "Optional .ico for the executable.",
		Alternatives: []string{`icon = "assets/main_game/icon.ico"`},
	},
	"build.spec_file": {
		Comment:      "When set, build with this spec file instead of flag-mode options.",
		Alternatives: []string{`spec_file = "더부리부리파티.spec"`},
	},
	"build.requirements": {
		Comment: "pip requirements files installed before packaging.",
	},
	"build.extra_args": {
		Comment:      "Extra arguments appended verbatim to the PyInstaller command.",
		Alternatives: []string{`extra_args = ["--log-level=WARN"]`},
	},
	"build.data": {
		Comment: "Files and directories bundled via --add-data. The defaults match\nwhat the game expects at runtime: assets plus the best-score dotfiles.",
	},

	// ── Run ───────────────────────────────────────────────────────
	"run.error_log": {
		Comment: "Crash log the game writes next to the executable.",
	},
	"run.tail_lines": {
		Comment: "How many trailing error-log lines to print after a crash.",
	},
	"run.show_error_log": {
		Comment: "Print the error-log tail automatically when the game exits non-zero.",
	},

	// ── Clean ─────────────────────────────────────────────────────
	"clean.remove": {
		Comment: "Globs removed by `buriparty clean` in addition to dist/ and build/.\nPatterns are doublestar globs relative to the project root.",
	},
	"clean.keep": {
		Comment:      "Globs protected from removal even when matched above.",
		Alternatives: []string{`keep = ["dist/*.zip"]`},
	},

	// ── Leaderboard ───────────────────────────────────────────────
	"leaderboard.enabled": {
		Comment: "Gate all leaderboard network access. The anon key is read from\nSUPABASE_ANON_KEY (or SUPABASE_PUBLISHABLE_KEY / SUPABASE_KEY),\noptionally loaded from a .env file in the project root.",
	},
	"leaderboard.url": {
		Comment: "Supabase project base URL.",
	},
	"leaderboard.table": {},
	"leaderboard.limit": {
		Comment: "Entries returned by `buriparty scores top`.",
	},
	"leaderboard.timeout_seconds": {
		Comment: "Per-request timeout for leaderboard calls.",
	},

	// ── Log ───────────────────────────────────────────────────────
	"log.level": {
		Comment:      "Tool log level: trace, debug, info, warn, error, fail.",
		Alternatives: []string{`level = "debug"`},
	},
	"log.max_size_mb": {
		Comment: "Rotate the tool log when it exceeds this size.",
	},
}

package packager

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"tools.buriburi/party/buriparty/internal/config"
	"tools.buriburi/party/buriparty/internal/paths"
)

func newTestPackager(t *testing.T) *Packager {
	t.Helper()
	cfg := config.DefaultConfig()
	return &Packager{
		Project: paths.ProjectDir{Root: t.TempDir()},
		Config:  cfg,
	}
}

func TestArgsFlagMode(t *testing.T) {
	p := newTestPackager(t)
	args := p.Args()

	for _, want := range []string{"--name=더부리부리파티", "--onefile", "--windowed", "--clean"} {
		if !slices.Contains(args, want) {
			t.Errorf("args missing %q: %v", want, args)
		}
	}
	if args[len(args)-1] != "main_game.py" {
		t.Errorf("entry script must come last, got %v", args)
	}

	// All three default data pairs are present.
	var dataArgs int
	for _, a := range args {
		if strings.HasPrefix(a, "--add-data=") {
			dataArgs++
		}
	}
	if dataArgs != 3 {
		t.Errorf("got %d --add-data args, want 3: %v", dataArgs, args)
	}
}

func TestArgsFlagModeOptions(t *testing.T) {
	p := newTestPackager(t)
	p.Config.Build.OneFile = false
	p.Config.Build.Windowed = false
	p.Config.Build.CleanBuild = false
	p.Config.Build.Icon = "icon.ico"
	p.Config.Build.ExtraArgs = []string{"--log-level=WARN"}

	args := p.Args()
	for _, banned := range []string{"--onefile", "--windowed", "--clean"} {
		if slices.Contains(args, banned) {
			t.Errorf("args should not contain %q: %v", banned, args)
		}
	}
	if !slices.Contains(args, "--icon=icon.ico") {
		t.Errorf("args missing icon: %v", args)
	}
	if !slices.Contains(args, "--log-level=WARN") {
		t.Errorf("args missing extra arg: %v", args)
	}
}

func TestArgsSpecMode(t *testing.T) {
	p := newTestPackager(t)
	p.Config.Build.SpecFile = "더부리부리파티.spec"

	args := p.Args()
	want := []string{"--clean", "더부리부리파티.spec"}
	if !slices.Equal(args, want) {
		t.Errorf("spec mode args = %v, want %v", args, want)
	}
	// Flag-mode options must not leak into spec builds.
	for _, a := range args {
		if strings.HasPrefix(a, "--name=") || strings.HasPrefix(a, "--add-data=") {
			t.Errorf("spec mode leaked flag-mode arg %q", a)
		}
	}
}

func TestAddDataArgSeparators(t *testing.T) {
	pair := config.DataPair{Src: "assets", Dest: "assets"}
	if got := addDataArg(pair, ";"); got != "--add-data=assets;assets" {
		t.Errorf("windows separator: got %q", got)
	}
	if got := addDataArg(pair, ":"); got != "--add-data=assets:assets" {
		t.Errorf("posix separator: got %q", got)
	}

	dot := config.DataPair{Src: ".flappy_best_score", Dest: "."}
	if got := addDataArg(dot, ":"); got != "--add-data=.flappy_best_score:." {
		t.Errorf("dotfile pair: got %q", got)
	}
}

func TestCleanRemovesArtifacts(t *testing.T) {
	p := newTestPackager(t)
	root := p.Project.Root

	mustMkdir := func(path string) {
		t.Helper()
		if err := os.MkdirAll(path, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	mustWrite := func(path string) {
		t.Helper()
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mustMkdir(p.Project.Dist())
	mustWrite(filepath.Join(p.Project.Dist(), "game"))
	mustMkdir(p.Project.Build())
	mustMkdir(filepath.Join(root, "games", "__pycache__"))
	mustWrite(filepath.Join(root, "games", "__pycache__", "m.pyc"))
	mustWrite(filepath.Join(root, "main_game.py"))
	mustMkdir(filepath.Join(root, paths.DataDirName))
	mustWrite(filepath.Join(root, paths.DataDirName, "buriparty.log"))

	removed, err := p.Clean()
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if len(removed) != 3 {
		t.Errorf("removed %d paths, want 3: %v", len(removed), removed)
	}

	for _, gone := range []string{p.Project.Dist(), p.Project.Build(), filepath.Join(root, "games", "__pycache__")} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("%s should be removed", gone)
		}
	}
	for _, kept := range []string{filepath.Join(root, "main_game.py"), filepath.Join(root, paths.DataDirName, "buriparty.log")} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("%s should survive clean: %v", kept, err)
		}
	}
}

func TestCleanHonorsKeepGlobs(t *testing.T) {
	p := newTestPackager(t)
	p.Config.Clean.Remove = []string{"*.spec"}
	p.Config.Clean.Keep = []string{"keep.spec"}
	root := p.Project.Root

	for _, name := range []string{"old.spec", "keep.spec"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := p.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "old.spec")); !os.IsNotExist(err) {
		t.Error("old.spec should be removed")
	}
	if _, err := os.Stat(filepath.Join(root, "keep.spec")); err != nil {
		t.Errorf("keep.spec should survive: %v", err)
	}
}

func TestCleanEmptyProject(t *testing.T) {
	p := newTestPackager(t)
	removed, err := p.Clean()
	if err != nil {
		t.Fatalf("Clean on empty project: %v", err)
	}
	if len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
}

func TestExeName(t *testing.T) {
	got := ExeName("game")
	if got != "game" && got != "game.exe" {
		t.Errorf("ExeName = %q", got)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	rootpkg "tools.buriburi/party/buriparty"
	"tools.buriburi/party/buriparty/internal/atomicfile"
	"tools.buriburi/party/buriparty/internal/doctor"
	"tools.buriburi/party/buriparty/internal/launcher"
	"tools.buriburi/party/buriparty/internal/packager"
	"tools.buriburi/party/buriparty/internal/paths"
	"tools.buriburi/party/buriparty/internal/pyenv"
	"tools.buriburi/party/buriparty/internal/scores"
)

// ///////////////////////////////////////////////
// init
// ///////////////////////////////////////////////

// InitCmd writes the commented default config into the project.
type InitCmd struct {
	Force bool `help:"Overwrite an existing buriparty.toml."`
}

func (c *InitCmd) Run(env *appEnv) error {
	cfgPath := env.Project.Config()
	if _, err := os.Stat(cfgPath); err == nil && !c.Force {
		return fmt.Errorf("%s 파일이 이미 있습니다. 덮어쓰려면 --force를 사용하세요.", paths.ConfigFile)
	}
	if err := atomicfile.Write(cfgPath, rootpkg.DefaultConfigTOML, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", paths.ConfigFile, err)
	}
	fmt.Printf("%s 파일을 만들었습니다. 필요하면 설정을 수정하세요.\n", paths.ConfigFile)
	return nil
}

// ///////////////////////////////////////////////
// build
// ///////////////////////////////////////////////

// BuildCmd packages the game with PyInstaller.
type BuildCmd struct {
	SkipDeps bool   `help:"Skip pip requirements installation."`
	Spec     string `help:"Package from the given PyInstaller spec file instead of the configured flags."`
}

func (b *BuildCmd) Run(env *appEnv) error {
	ctx := context.Background()

	if b.Spec != "" {
		if !strings.HasSuffix(b.Spec, paths.SpecExt) {
			return fmt.Errorf("spec 파일은 %s로 끝나야 합니다: %s", paths.SpecExt, b.Spec)
		}
		env.Config.Build.SpecFile = b.Spec
	}

	interp, err := pyenv.Find(ctx, env.Config.Python.Prefer)
	if err != nil {
		return fmt.Errorf("Python을 찾을 수 없습니다. 설치 후 PATH에 추가하세요: %w", err)
	}
	fmt.Printf("Python 발견: %s (%s)\n", interp.String(), interp.Version)

	if major, minor := env.Config.MinPython(); major > 0 && !interp.AtLeast(major, minor) {
		fmt.Printf("경고: Python %s는 권장 버전 %d.%d보다 낮습니다.\n", interp.Version, major, minor)
	}

	if !b.SkipDeps {
		if files := existingRequirements(env); len(files) > 0 {
			fmt.Println("의존성을 설치하는 중...")
			if err := interp.InstallRequirements(ctx, os.Stdout, files); err != nil {
				return fmt.Errorf("의존성 설치에 실패했습니다: %w", err)
			}
		}
	}

	p := &packager.Packager{Project: env.Project, Config: env.Config, Out: os.Stdout}
	if err := p.EnsureInstalled(ctx, interp); err != nil {
		return err
	}

	fmt.Println("게임을 빌드하는 중... 잠시 기다려 주세요.")
	exe, err := p.Build(ctx, interp)
	if err != nil {
		var buildErr *packager.BuildError
		if errors.As(err, &buildErr) && buildErr.Remedy != "" {
			fmt.Println(buildErr.Remedy)
		}
		return err
	}

	fmt.Printf("빌드 완료: %s\n", exe)
	fmt.Println("'buriparty run'으로 게임을 실행할 수 있습니다.")
	return nil
}

// existingRequirements filters the configured requirements files down to the
// ones actually present, so a missing optional file is not a build failure.
func existingRequirements(env *appEnv) []string {
	var files []string
	for _, req := range env.Config.Build.Requirements {
		if _, err := os.Stat(env.Project.Join(req)); err != nil {
			slog.Info("skipping missing requirements file", "file", req)
			continue
		}
		files = append(files, env.Project.Join(req))
	}
	return files
}

// ///////////////////////////////////////////////
// run
// ///////////////////////////////////////////////

// RunCmd launches the packaged game and reports crashes.
type RunCmd struct {
	Follow bool `short:"f" help:"Stream the error log to the terminal while the game runs."`
}

func (r *RunCmd) Run(env *appEnv) error {
	if alive, pid := checkStalePID(env.Project); alive {
		return fmt.Errorf("게임이 이미 실행 중입니다 (pid %d).", pid)
	}
	token := pidToken()
	pidFile, err := writePID(env.Project, token)
	if err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	defer removePID(env.Project, token, pidFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-signalChannel()
		slog.Info("received shutdown signal")
		cancel()
	}()

	l := &launcher.Launcher{Project: env.Project, Config: env.Config}

	if r.Follow {
		closer, followErr := l.FollowErrorLog(os.Stdout)
		if followErr != nil {
			slog.Warn("cannot follow error log", "error", followErr)
		} else {
			defer closer.Close()
		}
	}

	fmt.Println("게임을 시작합니다...")
	code, err := l.Launch(ctx)
	if err != nil {
		if errors.Is(err, launcher.ErrExeMissing) {
			return errors.New(launcher.MissingExeRemedy)
		}
		return err
	}

	syncScoreStore(env)

	if code != 0 {
		fmt.Println(launcher.CrashRemedy)
		if env.Config.Run.ShowErrorLog && !r.Follow {
			report, reportErr := l.ErrorReport()
			switch {
			case reportErr != nil:
				slog.Warn("cannot read error log", "error", reportErr)
			case report == "":
				fmt.Println(launcher.NoErrorLogNote)
			default:
				fmt.Println(report)
			}
		}
		return fmt.Errorf("게임이 종료 코드 %d로 끝났습니다.", code)
	}

	fmt.Println("게임이 정상 종료되었습니다.")
	return nil
}

// syncScoreStore folds the dotfile best scores the game just wrote into the
// local score store. Best effort; a failure only logs.
func syncScoreStore(env *appEnv) {
	store, err := scores.LoadStore(env.Project.ScoreStore())
	if err != nil {
		slog.Warn("cannot load score store", "error", err)
		return
	}
	if store.SyncDotfiles(env.Project, time.Now()) {
		if err := store.Save(env.Project.ScoreStore()); err != nil {
			slog.Warn("cannot save score store", "error", err)
		}
	}
}

// ///////////////////////////////////////////////
// doctor
// ///////////////////////////////////////////////

// DoctorCmd diagnoses the build and run environment.
type DoctorCmd struct{}

func (d *DoctorCmd) Run(env *appEnv) error {
	doc := &doctor.Doctor{Project: env.Project, Config: env.Config}
	checks := doc.Run(context.Background())

	for _, c := range checks {
		fmt.Printf("[%-4s] %-12s %s\n", c.Status, c.Name, c.Detail)
		if c.Remedy != "" {
			fmt.Printf("       %s\n", c.Remedy)
		}
	}

	if doctor.Failed(checks) {
		return errors.New("환경 점검에 실패한 항목이 있습니다. 위의 안내를 따라 주세요.")
	}
	fmt.Println("환경 점검을 통과했습니다.")
	return nil
}

// ///////////////////////////////////////////////
// clean
// ///////////////////////////////////////////////

// CleanCmd removes build artifacts.
type CleanCmd struct{}

func (c *CleanCmd) Run(env *appEnv) error {
	p := &packager.Packager{Project: env.Project, Config: env.Config}
	removed, err := p.Clean()
	if err != nil {
		return err
	}
	for _, path := range removed {
		fmt.Printf("삭제: %s\n", path)
	}
	fmt.Printf("정리 완료 (%d개 삭제).\n", len(removed))
	return nil
}

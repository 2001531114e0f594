// Package doctor diagnoses the build and run environment for the game:
// interpreter availability, required Python modules, Korean font coverage,
// and project layout. Each check yields a status with a Korean remedy for
// anything broken, so players can fix their setup without reading code.
package doctor

import (
	"context"
	"fmt"
	"os"

	"tools.buriburi/party/buriparty/internal/config"
	"tools.buriburi/party/buriparty/internal/paths"
	"tools.buriburi/party/buriparty/internal/pyenv"
)

// Status classifies a check result.
type Status int

const (
	// StatusOK means the check passed.
	StatusOK Status = iota
	// StatusWarn means the check found something degraded but workable.
	StatusWarn
	// StatusFail means the check found a blocking problem.
	StatusFail
)

// String returns the display marker for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarn:
		return "WARN"
	default:
		return "FAIL"
	}
}

// Check is one diagnostic result.
type Check struct {
	// Name identifies the check (e.g. "python", "pygame").
	Name string
	// Status is the outcome.
	Status Status
	// Detail describes what was found.
	Detail string
	// Remedy tells the player how to fix a warn or fail, in Korean.
	// Empty for passing checks.
	Remedy string
}

// Doctor runs the environment diagnostics for a project.
type Doctor struct {
	Project paths.ProjectDir
	Config  *config.Config
}

// Run executes all checks and returns their results in display order.
// Module checks are skipped when no interpreter is found since they cannot
// run without one.
func (d *Doctor) Run(ctx context.Context) []Check {
	var checks []Check

	interp, pythonCheck := d.checkPython(ctx)
	checks = append(checks, pythonCheck)
	if interp != nil {
		checks = append(checks,
			d.checkModule(ctx, interp, "pygame", "pygame",
				"'buriparty build' 또는 'pip install pygame'으로 설치하세요."),
			d.checkModule(ctx, interp, "pyinstaller", "PyInstaller",
				"'buriparty build'가 자동으로 설치하며, 직접 하려면 'pip install pyinstaller'를 실행하세요."),
		)
	}

	checks = append(checks,
		d.checkEntry(),
		d.checkAssets(),
	)
	checks = append(checks, d.checkRequirements()...)
	checks = append(checks, d.checkFonts())
	return checks
}

// Failed reports whether any check in the list is a hard failure.
func Failed(checks []Check) bool {
	for _, c := range checks {
		if c.Status == StatusFail {
			return true
		}
	}
	return false
}

// ///////////////////////////////////////////////
// Individual Checks
// ///////////////////////////////////////////////

func (d *Doctor) checkPython(ctx context.Context) (*pyenv.Interpreter, Check) {
	interp, err := pyenv.Find(ctx, d.Config.Python.Prefer)
	if err != nil {
		return nil, Check{
			Name:   "python",
			Status: StatusFail,
			Detail: fmt.Sprintf("no interpreter found (tried %v)", d.Config.Python.Prefer),
			Remedy: "Python을 설치한 뒤 PATH에 추가하세요. https://www.python.org/downloads/",
		}
	}

	major, minor := d.Config.MinPython()
	if !interp.AtLeast(major, minor) {
		return interp, Check{
			Name:   "python",
			Status: StatusWarn,
			Detail: fmt.Sprintf("%s is %s, below %d.%d", interp.String(), interp.Version, major, minor),
			Remedy: fmt.Sprintf("Python %d.%d 이상으로 업그레이드하는 것을 권장합니다.", major, minor),
		}
	}
	return interp, Check{
		Name:   "python",
		Status: StatusOK,
		Detail: fmt.Sprintf("%s (%s)", interp.String(), interp.Version),
	}
}

func (d *Doctor) checkModule(ctx context.Context, interp *pyenv.Interpreter, name, importName, remedy string) Check {
	if !interp.HasModule(ctx, importName) {
		return Check{
			Name:   name,
			Status: StatusFail,
			Detail: importName + " is not importable",
			Remedy: remedy,
		}
	}
	return Check{Name: name, Status: StatusOK, Detail: importName + " importable"}
}

func (d *Doctor) checkEntry() Check {
	entry := d.Project.Join(d.Config.Build.Entry)
	if _, err := os.Stat(entry); err != nil {
		return Check{
			Name:   "entry",
			Status: StatusFail,
			Detail: fmt.Sprintf("entry file %s missing", d.Config.Build.Entry),
			Remedy: "게임 소스가 있는 폴더에서 실행했는지 확인하세요.",
		}
	}
	return Check{Name: "entry", Status: StatusOK, Detail: d.Config.Build.Entry}
}

func (d *Doctor) checkAssets() Check {
	info, err := os.Stat(d.Project.Assets())
	if err != nil || !info.IsDir() {
		return Check{
			Name:   "assets",
			Status: StatusWarn,
			Detail: "assets directory missing",
			Remedy: "assets 폴더가 없으면 게임 그래픽이 표시되지 않습니다.",
		}
	}
	return Check{Name: "assets", Status: StatusOK, Detail: paths.AssetsDir + "/"}
}

func (d *Doctor) checkRequirements() []Check {
	var checks []Check
	for _, req := range d.Config.Build.Requirements {
		if _, err := os.Stat(d.Project.Join(req)); err != nil {
			checks = append(checks, Check{
				Name:   "requirements",
				Status: StatusWarn,
				Detail: req + " missing",
				Remedy: fmt.Sprintf("%s 파일이 없어 의존성 설치를 건너뜁니다.", req),
			})
			continue
		}
		checks = append(checks, Check{Name: "requirements", Status: StatusOK, Detail: req})
	}
	return checks
}

func (d *Doctor) checkFonts() Check {
	name, ok := FindKoreanFont(fontSearchDirs(d.Project))
	if !ok {
		return Check{
			Name:   "fonts",
			Status: StatusWarn,
			Detail: "no known Korean font found",
			Remedy: "한글이 네모로 표시되면 Pretendard 또는 나눔고딕 폰트를 설치하세요.",
		}
	}
	return Check{Name: "fonts", Status: StatusOK, Detail: name}
}

package doctor

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"tools.buriburi/party/buriparty/internal/paths"
)

// KoreanFontCandidates lists font families the game tries in order when
// picking a Korean-capable font. The diagnosis passes when any of them is
// installed.
var KoreanFontCandidates = []string{
	"Pretendard",
	"Apple SD Gothic Neo",
	"AppleGothic",
	"Malgun Gothic",
	"NanumGothic",
	"NanumSquare",
	"Noto Sans CJK KR",
	"NotoSansKR",
	"Arial Unicode MS",
}

// fontExts are the font file extensions considered during the scan.
var fontExts = map[string]bool{
	".ttf": true,
	".otf": true,
	".ttc": true,
}

// fontSearchDirs returns the directories scanned for Korean fonts: the
// project's bundled fonts first, then the platform's system and user font
// directories.
func fontSearchDirs(project paths.ProjectDir) []string {
	dirs := []string{filepath.Join(project.Assets(), "fonts")}
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return append(dirs, systemFontDirs(runtime.GOOS, home)...)
}

// systemFontDirs returns the conventional font directories for an OS. Split
// out from fontSearchDirs so tests can cover each platform's list.
func systemFontDirs(goos, home string) []string {
	switch goos {
	case "windows":
		dirs := []string{filepath.Join(`C:\`, "Windows", "Fonts")}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "AppData", "Local", "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs,
				filepath.Join(home, ".fonts"),
				filepath.Join(home, ".local", "share", "fonts"),
			)
		}
		return dirs
	}
}

// FindKoreanFont scans the given directories for a font file matching any
// candidate family and returns the matched family name. Directories that do
// not exist are skipped silently.
func FindKoreanFont(dirs []string) (string, bool) {
	for _, dir := range dirs {
		found := ""
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // unreadable subtree, keep going
			}
			if found != "" {
				return fs.SkipAll
			}
			if d.IsDir() {
				return nil
			}
			if name, ok := matchFontFile(d.Name()); ok {
				found = name
				return fs.SkipAll
			}
			return nil
		})
		if found != "" {
			return found, true
		}
	}
	return "", false
}

// matchFontFile reports whether a font filename corresponds to one of the
// Korean candidate families. Matching ignores case, spaces, and hyphens so
// "NanumGothic-Bold.ttf" matches "NanumGothic".
func matchFontFile(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !fontExts[ext] {
		return "", false
	}
	base := normalizeFontName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	for _, cand := range KoreanFontCandidates {
		if strings.Contains(base, normalizeFontName(cand)) {
			return cand, true
		}
	}
	return "", false
}

func normalizeFontName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}

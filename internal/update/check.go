// Package update checks whether a newer buriparty release exists.
//
// The check reads a small JSON release manifest from the project's GitHub
// repository over raw content. Owner and repo come from build-time ldflags
// when set, otherwise from the local git remote origin. The check is
// best-effort: any failure is logged at debug level and otherwise ignored,
// so an offline machine never notices it.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"tools.buriburi/party/buriparty/internal/paths"
)

// Set at build time via:
//
//	-X tools.buriburi/party/buriparty/internal/update.ldOwner=...
//	-X tools.buriburi/party/buriparty/internal/update.ldRepo=...
var (
	ldOwner string
	ldRepo  string
)

var (
	originOnce sync.Once
	owner      string
	repo       string
)

// githubRemoteRe extracts owner and repo from GitHub remote URLs, covering
// both HTTPS (github.com/) and SSH (github.com:) forms.
var githubRemoteRe = regexp.MustCompile(`github\.com[:/]([^/]+)/([^/.]+)`)

// resolveOrigin lazily determines owner and repo on first call. Build-time
// ldflags win; otherwise the local git remote origin is consulted.
func resolveOrigin() {
	originOnce.Do(func() {
		if ldOwner != "" && ldRepo != "" {
			owner = ldOwner
			repo = ldRepo
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		out, err := exec.CommandContext(ctx, "git", "remote", "get-url", "origin").Output()
		if err != nil {
			slog.Debug("update: ldflags not set and git remote unavailable", "error", err)
			return
		}
		if m := githubRemoteRe.FindStringSubmatch(string(out)); len(m) == 3 {
			owner = m[1]
			repo = m[2]
		}
	})
}

// manifestURL returns the raw GitHub URL of the release manifest, or ""
// when the repository could not be determined.
func manifestURL() string {
	resolveOrigin()
	if owner == "" || repo == "" {
		return ""
	}
	return "https://raw.githubusercontent.com/" + owner + "/" + repo + "/main/" + paths.ReleaseManifest
}

// ///////////////////////////////////////////////
// Public API
// ///////////////////////////////////////////////

// Check fetches the release manifest and logs when a newer version is
// available. Intended to run in a background goroutine; failures never
// surface to the user.
func Check(current string) {
	url := manifestURL()
	if url == "" {
		slog.Debug("skipping version check: no repository configured")
		return
	}
	latest, err := fetchLatest(url)
	if err != nil {
		slog.Debug("version check failed", "error", err)
		return
	}
	if latest == "" || latest == current {
		return
	}
	if semverLess(current, latest) {
		slog.Info("new version available", "current", current, "latest", latest)
	}
}

// ///////////////////////////////////////////////
// Internal helpers
// ///////////////////////////////////////////////

// fetchLatest downloads the release manifest and returns the version stored
// under the "." key, the latest stable release.
func fetchLatest(url string) (string, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var manifest map[string]string
	if err := json.Unmarshal(body, &manifest); err != nil {
		return "", fmt.Errorf("parsing manifest: %w", err)
	}
	return manifest["."], nil
}

// semverLess reports whether a < b using numeric comparison of the three
// version components. Non-semver strings never compare as less. A
// pre-release version sorts below the same version without one, so
// "0.1.0-dev" < "0.1.0".
func semverLess(a, b string) bool {
	pa := parseSemver(a)
	pb := parseSemver(b)
	if pa == nil || pb == nil {
		return false
	}
	for i := range 3 {
		if pa[i] < pb[i] {
			return true
		}
		if pa[i] > pb[i] {
			return false
		}
	}
	return hasPreRelease(a) && !hasPreRelease(b)
}

// hasPreRelease reports whether a version string carries a pre-release
// suffix (e.g. "0.1.0-dev" or "v1.0.0-beta+build").
func hasPreRelease(s string) bool {
	return strings.Contains(strings.TrimPrefix(s, "v"), "-")
}

// parseSemver splits "v1.2.3" or "0.1.0-dev" into [major, minor, patch].
// Suffixes after "-" or "+" are stripped. Returns nil for non-semver input.
func parseSemver(s string) []int {
	s = strings.TrimPrefix(s, "v")
	parts := strings.SplitN(s, ".", 3)
	if len(parts) != 3 {
		return nil
	}
	result := make([]int, 3)
	for i, p := range parts {
		if idx := strings.IndexAny(p, "-+"); idx >= 0 {
			p = p[:idx]
		}
		n := 0
		for _, c := range p {
			if c < '0' || c > '9' {
				return nil
			}
			n = n*10 + int(c-'0')
		}
		result[i] = n
	}
	return result
}

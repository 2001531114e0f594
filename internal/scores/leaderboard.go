package scores

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/joho/godotenv"

	"tools.buriburi/party/buriparty/internal/atomicfile"
	"tools.buriburi/party/buriparty/internal/paths"
)

// MaxNicknameLen caps nicknames at the length the game's entry screen allows.
const MaxNicknameLen = 12

// anonKeyEnvVars lists the environment variables checked for the Supabase
// anon key, in priority order.
var anonKeyEnvVars = []string{
	"SUPABASE_ANON_KEY",
	"SUPABASE_PUBLISHABLE_KEY",
	"SUPABASE_KEY",
}

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// Entry is one leaderboard row as stored in the remote table.
type Entry struct {
	Nickname  string `json:"nickname"`
	Score     int    `json:"score"`
	Game      string `json:"game,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Client talks to the Supabase REST endpoint that backs the shared
// leaderboard. The zero value is not usable; use [NewClient].
type Client struct {
	baseURL string
	table   string
	anonKey string
	limit   int
	http    *retryablehttp.Client
}

// NewClient builds a leaderboard client. baseURL is the Supabase project URL
// without a trailing path, anonKey the publishable API key. timeout bounds
// each individual request.
func NewClient(baseURL, table, anonKey string, limit int, timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.HTTPClient.Timeout = timeout
	rc.Logger = nil // suppress retryablehttp's default logging
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		table:   table,
		anonKey: anonKey,
		limit:   limit,
		http:    rc,
	}
}

// ///////////////////////////////////////////////
// Credentials
// ///////////////////////////////////////////////

// LoadAnonKey resolves the Supabase anon key: a .env file in the project
// root is loaded first (without overriding the real environment), then the
// known variable names are checked in priority order. Returns "" when no
// key is configured.
func LoadAnonKey(project paths.ProjectDir) string {
	if vals, err := godotenv.Read(project.Env()); err == nil {
		for _, name := range anonKeyEnvVars {
			if os.Getenv(name) == "" && vals[name] != "" {
				os.Setenv(name, vals[name])
			}
		}
	}
	for _, name := range anonKeyEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// SanitizeNickname normalizes player input for submission: line breaks
// become spaces, surrounding whitespace is stripped, and the result is
// capped at [MaxNicknameLen] runes. An empty result falls back to "익명".
func SanitizeNickname(raw string) string {
	s := strings.NewReplacer("\r", " ", "\n", " ").Replace(raw)
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) > MaxNicknameLen {
		s = string(runes[:MaxNicknameLen])
	}
	if s == "" {
		return "익명"
	}
	return s
}

// ///////////////////////////////////////////////
// REST Calls
// ///////////////////////////////////////////////

// Submit inserts a score row for a game. The nickname is sanitized before
// sending.
func (c *Client) Submit(ctx context.Context, game, nickname string, score int) error {
	body, err := json.Marshal([]Entry{{
		Nickname: SanitizeNickname(nickname),
		Score:    score,
		Game:     game,
	}})
	if err != nil {
		return fmt.Errorf("encoding leaderboard entry: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(nil), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submitting score: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submitting score: status %d", resp.StatusCode)
	}
	return nil
}

// Top fetches the highest scores for a game, ordered by score then earliest
// submission.
func (c *Client) Top(ctx context.Context, game string) ([]Entry, error) {
	q := url.Values{}
	q.Set("select", "nickname,score,created_at")
	q.Set("game", "eq."+game)
	q.Set("order", "score.desc,created_at.asc")
	q.Set("limit", fmt.Sprintf("%d", c.limit))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(q), nil)
	if err != nil {
		return nil, err
	}
	c.auth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching leaderboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching leaderboard: status %d", resp.StatusCode)
	}

	const maxResponseBytes = 1 << 20 // 1 MiB
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard response: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("parsing leaderboard response: %w", err)
	}
	return entries, nil
}

// TopCached fetches the top scores with a cache fallback: a successful fetch
// refreshes the on-disk cache, a failed one serves the last cached entries.
// The returned error is non-nil when the data came from the cache.
func (c *Client) TopCached(ctx context.Context, game, cacheDir string) ([]Entry, error) {
	entries, err := c.Top(ctx, game)
	if err == nil {
		if cacheErr := writeCache(cacheDir, game, entries); cacheErr != nil {
			slog.Warn("failed to write leaderboard cache", "error", cacheErr)
		}
		return entries, nil
	}
	slog.Warn("leaderboard fetch failed, trying cache", "game", game, "error", err)

	cached, cacheErr := readCache(cacheDir, game)
	if cacheErr == nil {
		return cached, fmt.Errorf("using cached leaderboard: fetch failed: %w", err)
	}
	return nil, fmt.Errorf("leaderboard unavailable: fetch: %w; cache: %w", err, cacheErr)
}

func (c *Client) tableURL(q url.Values) string {
	u := c.baseURL + "/rest/v1/" + c.table
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (c *Client) auth(req *retryablehttp.Request) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
}

// ///////////////////////////////////////////////
// Cache
// ///////////////////////////////////////////////

// cacheFile holds the per-game cached leaderboard payload.
type cacheFile struct {
	Games map[string][]Entry `json:"games"`
}

func writeCache(cacheDir, game string, entries []Entry) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("creating leaderboard cache directory: %w", err)
	}
	path := filepath.Join(cacheDir, paths.LeaderboardCacheFile)

	cf := cacheFile{Games: map[string][]Entry{}}
	if b, err := os.ReadFile(path); err == nil {
		// Best effort; a corrupt cache file just starts over.
		_ = json.Unmarshal(b, &cf)
		if cf.Games == nil {
			cf.Games = map[string][]Entry{}
		}
	}
	cf.Games[game] = entries

	b, err := json.Marshal(cf)
	if err != nil {
		return fmt.Errorf("marshalling leaderboard cache: %w", err)
	}
	return atomicfile.Write(path, b, 0o644)
}

func readCache(cacheDir, game string) ([]Entry, error) {
	path := filepath.Join(cacheDir, paths.LeaderboardCacheFile)
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading leaderboard cache: %w", err)
	}
	var cf cacheFile
	if err := json.Unmarshal(b, &cf); err != nil {
		return nil, fmt.Errorf("parsing leaderboard cache: %w", err)
	}
	entries, ok := cf.Games[game]
	if !ok {
		return nil, fmt.Errorf("no cached leaderboard for game %q", game)
	}
	return entries, nil
}

package scores

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tools.buriburi/party/buriparty/internal/paths"
)

func TestSanitizeNickname(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "철수", want: "철수"},
		{name: "surrounding whitespace", in: "  kim  ", want: "kim"},
		{name: "line breaks become spaces", in: "a\r\nb", want: "a  b"},
		{name: "over limit truncates by rune", in: "가나다라마바사아자차카타파", want: "가나다라마바사아자차카타"},
		{name: "empty falls back", in: "   ", want: "익명"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeNickname(tt.in); got != tt.want {
				t.Errorf("SanitizeNickname(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLoadAnonKey(t *testing.T) {
	project := paths.ProjectDir{Root: t.TempDir()}

	for _, name := range anonKeyEnvVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	if got := LoadAnonKey(project); got != "" {
		t.Errorf("LoadAnonKey with nothing set = %q, want empty", got)
	}

	envContent := "SUPABASE_KEY=from-dotenv\nSUPABASE_ANON_KEY=anon-from-dotenv\n"
	if err := os.WriteFile(project.Env(), []byte(envContent), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := LoadAnonKey(project); got != "anon-from-dotenv" {
		t.Errorf("LoadAnonKey = %q, want %q (highest-priority .env value)", got, "anon-from-dotenv")
	}

	// Real environment wins over the .env file.
	t.Setenv("SUPABASE_ANON_KEY", "anon-from-env")
	if got := LoadAnonKey(project); got != "anon-from-env" {
		t.Errorf("LoadAnonKey = %q, want %q (environment over .env)", got, "anon-from-env")
	}
}

func TestClientSubmit(t *testing.T) {
	var gotPath, gotAPIKey, gotAuth string
	var gotBody []Entry

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "leaderboard_entries", "test-anon-key", 10, 6*time.Second)
	if err := c.Submit(context.Background(), "flappy", "  철수\n", 99); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if gotPath != "/rest/v1/leaderboard_entries" {
		t.Errorf("path = %q, want /rest/v1/leaderboard_entries", gotPath)
	}
	if gotAPIKey != "test-anon-key" {
		t.Errorf("apikey header = %q, want test-anon-key", gotAPIKey)
	}
	if gotAuth != "Bearer test-anon-key" {
		t.Errorf("Authorization header = %q, want Bearer test-anon-key", gotAuth)
	}
	if len(gotBody) != 1 {
		t.Fatalf("body entries = %d, want 1", len(gotBody))
	}
	if gotBody[0].Nickname != "철수" || gotBody[0].Score != 99 || gotBody[0].Game != "flappy" {
		t.Errorf("submitted entry = %+v", gotBody[0])
	}
}

func TestClientSubmitServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "row level security", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "leaderboard_entries", "bad-key", 10, 6*time.Second)
	err := c.Submit(context.Background(), "flappy", "kim", 1)
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error = %v, want status code mentioned", err)
	}
}

func TestClientTop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("select"); got != "nickname,score,created_at" {
			t.Errorf("select = %q", got)
		}
		if got := q.Get("game"); got != "eq.sugar" {
			t.Errorf("game filter = %q, want eq.sugar", got)
		}
		if got := q.Get("order"); got != "score.desc,created_at.asc" {
			t.Errorf("order = %q", got)
		}
		if got := q.Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		json.NewEncoder(w).Encode([]Entry{
			{Nickname: "kim", Score: 30, CreatedAt: "2026-08-01T00:00:00Z"},
			{Nickname: "lee", Score: 20, CreatedAt: "2026-08-02T00:00:00Z"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "leaderboard_entries", "key", 5, 6*time.Second)
	entries, err := c.Top(context.Background(), "sugar")
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Nickname != "kim" || entries[0].Score != 30 {
		t.Errorf("first entry = %+v", entries[0])
	}
}

func TestClientTopCachedFallback(t *testing.T) {
	cacheDir := t.TempDir()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode([]Entry{{Nickname: "kim", Score: 30}})
	}))

	c := NewClient(srv.URL, "leaderboard_entries", "key", 10, 2*time.Second)
	c.http.RetryWaitMin = time.Millisecond // keep retries on the dead server fast
	c.http.RetryWaitMax = 5 * time.Millisecond

	// First call succeeds and warms the cache.
	entries, err := c.TopCached(context.Background(), "flappy", cacheDir)
	if err != nil {
		t.Fatalf("TopCached: %v", err)
	}
	if len(entries) != 1 || entries[0].Nickname != "kim" {
		t.Errorf("entries = %+v", entries)
	}
	if _, statErr := os.Stat(filepath.Join(cacheDir, paths.LeaderboardCacheFile)); statErr != nil {
		t.Errorf("expected cache file to exist: %v", statErr)
	}

	// Kill the server; the cache should serve the same rows with a
	// fallback error.
	srv.Close()
	entries, err = c.TopCached(context.Background(), "flappy", cacheDir)
	if err == nil {
		t.Fatal("expected fallback error when the server is down")
	}
	if len(entries) != 1 || entries[0].Nickname != "kim" {
		t.Errorf("cached entries = %+v", entries)
	}

	// A game that was never cached fails outright.
	if _, err := c.TopCached(context.Background(), "sugar", cacheDir); err == nil {
		t.Fatal("expected error for uncached game")
	}
}

package paths

import (
	"path/filepath"
	"testing"
)

func TestProjectDirMethods(t *testing.T) {
	p := ProjectDir{Root: "/game"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Config", p.Config(), filepath.Join("/game", "buriparty.toml")},
		{"Dist", p.Dist(), filepath.Join("/game", "dist")},
		{"Build", p.Build(), filepath.Join("/game", "build")},
		{"Assets", p.Assets(), filepath.Join("/game", "assets")},
		{"ErrorLog", p.ErrorLog(), filepath.Join("/game", "error_log.txt")},
		{"Env", p.Env(), filepath.Join("/game", ".env")},
		{"Data", p.Data(), filepath.Join("/game", ".buriparty")},
		{"Log", p.Log(), filepath.Join("/game", ".buriparty", "buriparty.log")},
		{"PID", p.PID(), filepath.Join("/game", ".buriparty", "run.pid")},
		{"LeaderboardCache", p.LeaderboardCache(), filepath.Join("/game", ".buriparty", "leaderboard-cache.json")},
		{"ScoreStore", p.ScoreStore(), filepath.Join("/game", ".buriparty", "scores.json")},
		{"DistEntry", p.DistEntry("더부리부리파티"), filepath.Join("/game", "dist", "더부리부리파티")},
		{"Spec", p.Spec("더부리부리파티"), filepath.Join("/game", "더부리부리파티.spec")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestBestScoreFile(t *testing.T) {
	tests := []struct {
		game string
		want string
	}{
		{"flappy", ".flappy_best_score"},
		{"sugar", ".sugar_best_score"},
		{"snake", ".snake_best_score"},
	}
	for _, tt := range tests {
		if got := BestScoreFile(tt.game); got != tt.want {
			t.Errorf("BestScoreFile(%q) = %q, want %q", tt.game, got, tt.want)
		}
	}
}

func TestBestScorePath(t *testing.T) {
	p := ProjectDir{Root: "/game"}
	want := filepath.Join("/game", ".flappy_best_score")
	if got := p.BestScore("flappy"); got != want {
		t.Errorf("BestScore = %q, want %q", got, want)
	}
}

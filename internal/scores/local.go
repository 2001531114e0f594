// Package scores manages the game's score data: the per-game best-score
// dotfiles the mini-games read at startup, a versioned local score store,
// and the remote Supabase leaderboard client.
package scores

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"tools.buriburi/party/buriparty/internal/atomicfile"
	"tools.buriburi/party/buriparty/internal/migrate"
	"tools.buriburi/party/buriparty/internal/paths"
)

// KnownGames lists the mini-games that persist a best-score dotfile. The
// build bundles exactly these files into the executable.
var KnownGames = []string{"flappy", "sugar"}

// ///////////////////////////////////////////////
// Best-Score Dotfiles
// ///////////////////////////////////////////////

// ReadBest returns the best score stored in the dotfile at path. Missing or
// garbled files read as 0, matching the game's own tolerant loader.
func ReadBest(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		slog.Debug("unreadable best score file", "path", path, "content", s)
		return 0
	}
	return n
}

// WriteBest writes score to the dotfile at path in the bare-integer format
// the mini-games expect.
func WriteBest(path string, score int) error {
	return atomicfile.Write(path, []byte(strconv.Itoa(score)), 0o644)
}

// ///////////////////////////////////////////////
// Local Score Store
// ///////////////////////////////////////////////

// BestRecord is one game's entry in the local score store.
type BestRecord struct {
	// Score is the best score seen for the game.
	Score int `json:"score"`
	// UpdatedAt is the Unix timestamp of the last improvement.
	UpdatedAt int64 `json:"updatedAt"`
}

// Store aggregates per-game best scores under a versioned schema, persisted
// as JSON in the tool's data directory.
type Store struct {
	// Version is the schema version, used for migration.
	Version int `json:"$version"`
	// Best maps game identifiers to their best records.
	Best map[string]BestRecord `json:"best"`
}

// NewStore returns an empty store at the current schema version.
func NewStore() *Store {
	return &Store{
		Version: migrate.Scores.CurrentVersion,
		Best:    map[string]BestRecord{},
	}
}

// LoadStore reads the score store from path, applying schema migrations as
// needed. A missing file yields an empty store.
func LoadStore(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStore(), nil
		}
		return nil, err
	}

	version := peekStoreVersion(data)
	if version != migrate.Scores.CurrentVersion {
		var migrateErr error
		data, _, migrateErr = migrate.Scores.Run(data, version)
		if migrateErr != nil {
			return nil, migrateErr
		}
	}

	s := NewStore()
	if err := unmarshalStore(data, s); err != nil {
		// A corrupt store is not worth failing a command over; start fresh.
		slog.Warn("score store unreadable, starting fresh", "path", path, "error", err)
		return NewStore(), nil
	}
	s.Version = migrate.Scores.CurrentVersion
	if s.Best == nil {
		s.Best = map[string]BestRecord{}
	}
	return s, nil
}

// Save writes the store atomically to path, creating the parent directory
// if needed.
func (s *Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return atomicfile.WriteJSON(path, s, 0o644)
}

// Record updates the store with a score for a game, returning true when the
// score improves on the stored best.
func (s *Store) Record(game string, score int, now time.Time) bool {
	cur, ok := s.Best[game]
	if ok && score <= cur.Score {
		return false
	}
	s.Best[game] = BestRecord{Score: score, UpdatedAt: now.Unix()}
	return true
}

// SyncDotfiles folds the current dotfile values for the known games into the
// store, returning true when anything improved. The dotfiles stay the source
// of truth since the game writes them directly.
func (s *Store) SyncDotfiles(project paths.ProjectDir, now time.Time) bool {
	changed := false
	for _, game := range KnownGames {
		if score := ReadBest(project.BestScore(game)); score > 0 {
			if s.Record(game, score, now) {
				changed = true
			}
		}
	}
	return changed
}

// peekStoreVersion extracts just the schema version so migrations can run
// before a full unmarshal. Unversioned data reads as version 1.
func peekStoreVersion(data []byte) int {
	var probe struct {
		Version int `json:"$version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil || probe.Version == 0 {
		return 1
	}
	return probe.Version
}

func unmarshalStore(data []byte, s *Store) error {
	return json.Unmarshal(data, s)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"tools.buriburi/party/buriparty/internal/scores"
)

// gameNames maps game identifiers to their Korean display names.
var gameNames = map[string]string{
	"flappy": "부리부리 새",
	"sugar":  "각설탕쌓기",
}

// ScoresCmd groups the score subcommands.
type ScoresCmd struct {
	Best   ScoresBestCmd   `cmd:"" help:"Show the local best scores."`
	Top    ScoresTopCmd    `cmd:"" help:"Show the shared leaderboard."`
	Submit ScoresSubmitCmd `cmd:"" help:"Submit a score to the shared leaderboard."`
}

// leaderboard builds the REST client, or explains what is missing.
func (e *appEnv) leaderboard() (*scores.Client, error) {
	lb := e.Config.Leaderboard
	if !lb.Enabled {
		return nil, errors.New("리더보드가 설정에서 꺼져 있습니다 (leaderboard.enabled).")
	}
	key := scores.LoadAnonKey(e.Project)
	if key == "" {
		return nil, errors.New("리더보드 키가 없습니다. SUPABASE_ANON_KEY 환경 변수나 .env 파일을 설정하세요.")
	}
	return scores.NewClient(lb.URL, lb.Table, key, lb.Limit, time.Duration(lb.TimeoutSeconds)*time.Second), nil
}

// validGame checks a game argument against the known mini-games.
func validGame(game string) error {
	if slices.Contains(scores.KnownGames, game) {
		return nil
	}
	return fmt.Errorf("알 수 없는 게임 %q입니다. 사용 가능: %s", game, strings.Join(scores.KnownGames, ", "))
}

// displayName returns the Korean name for a game identifier.
func displayName(game string) string {
	if name, ok := gameNames[game]; ok {
		return name
	}
	return game
}

// printTop renders leaderboard entries as a ranked list.
func printTop(game string, entries []scores.Entry) {
	fmt.Printf("=== %s 리더보드 ===\n", displayName(game))
	if len(entries) == 0 {
		fmt.Println("아직 등록된 기록이 없습니다.")
		return
	}
	for i, e := range entries {
		fmt.Printf("%2d. %-12s %6d점\n", i+1, e.Nickname, e.Score)
	}
}

// ///////////////////////////////////////////////
// scores best
// ///////////////////////////////////////////////

// ScoresBestCmd prints the local best score for each mini-game, or for a
// single game when one is named.
type ScoresBestCmd struct {
	Game string `arg:"" optional:"" help:"Mini-game to show. Shows all when omitted."`
}

func (c *ScoresBestCmd) Run(env *appEnv) error {
	games := scores.KnownGames
	if c.Game != "" {
		if err := validGame(c.Game); err != nil {
			return err
		}
		games = []string{c.Game}
	}

	store, err := scores.LoadStore(env.Project.ScoreStore())
	if err != nil {
		return err
	}
	if store.SyncDotfiles(env.Project, time.Now()) {
		if err := store.Save(env.Project.ScoreStore()); err != nil {
			return err
		}
	}

	fmt.Println("=== 내 최고 기록 ===")
	for _, game := range games {
		if rec, ok := store.Best[game]; ok {
			fmt.Printf("%s: %d점\n", displayName(game), rec.Score)
		} else {
			fmt.Printf("%s: 기록 없음\n", displayName(game))
		}
	}
	return nil
}

// ///////////////////////////////////////////////
// scores top
// ///////////////////////////////////////////////

// ScoresTopCmd fetches and prints the shared leaderboard.
type ScoresTopCmd struct {
	Game string `arg:"" optional:"" default:"flappy" help:"Mini-game to list (flappy or sugar)."`
}

func (c *ScoresTopCmd) Run(env *appEnv) error {
	if err := validGame(c.Game); err != nil {
		return err
	}
	client, err := env.leaderboard()
	if err != nil {
		return err
	}

	entries, err := client.TopCached(context.Background(), c.Game, env.Project.Data())
	if err != nil {
		if entries == nil {
			return fmt.Errorf("리더보드를 불러오지 못했습니다: %w", err)
		}
		// Served from the on-disk cache.
		fmt.Println("네트워크에 연결할 수 없어 저장된 기록을 보여줍니다.")
	}
	printTop(c.Game, entries)
	return nil
}

// ///////////////////////////////////////////////
// scores submit
// ///////////////////////////////////////////////

// ScoresSubmitCmd submits a score and prints the refreshed leaderboard.
// Without an explicit score it submits the local best from the game's
// dotfile.
type ScoresSubmitCmd struct {
	Game     string `arg:"" help:"Mini-game the score belongs to (flappy or sugar)."`
	Nickname string `arg:"" help:"Nickname shown on the leaderboard (max 12 characters)."`
	Score    int    `arg:"" optional:"" default:"-1" help:"Score to submit. Defaults to the local best."`
}

func (c *ScoresSubmitCmd) Run(env *appEnv) error {
	if err := validGame(c.Game); err != nil {
		return err
	}
	client, err := env.leaderboard()
	if err != nil {
		return err
	}

	score := c.Score
	if score < 0 {
		score = scores.ReadBest(env.Project.BestScore(c.Game))
		if score <= 0 {
			return errors.New("제출할 점수가 없습니다. 먼저 게임을 플레이하세요.")
		}
	}

	ctx := context.Background()
	if err := client.Submit(ctx, c.Game, c.Nickname, score); err != nil {
		return fmt.Errorf("점수 제출에 실패했습니다: %w", err)
	}
	fmt.Printf("%s에 %d점을 제출했습니다!\n", displayName(c.Game), score)

	entries, err := client.TopCached(ctx, c.Game, env.Project.Data())
	if err != nil && entries == nil {
		// Submission went through; a failed refresh is only a warning.
		fmt.Println("제출은 완료했지만 리더보드를 새로 불러오지 못했습니다.")
		return nil
	}
	printTop(c.Game, entries)
	return nil
}

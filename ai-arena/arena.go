package main

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"gameportal/engine"
)

const startingElo = 1500.0

type arenaConfig struct {
	Games     int
	Kind      engine.GameKind
	BoardSize int
	WinLength int
	Seed      uint64
	EloK      float64
}

type contender struct {
	Difficulty engine.Difficulty `json:"difficulty"`
	Elo        float64           `json:"elo"`
}

type pairResult struct {
	First      engine.Difficulty `json:"first"`
	Second     engine.Difficulty `json:"second"`
	FirstWins  int               `json:"first_wins"`
	SecondWins int               `json:"second_wins"`
	Draws      int               `json:"draws"`
	AvgMoves   float64           `json:"avg_moves"`
}

type arenaReport struct {
	Kind      engine.GameKind `json:"kind"`
	BoardSize int             `json:"board_size"`
	WinLength int             `json:"win_length"`
	Seed      uint64          `json:"seed"`
	Games     int             `json:"games"`
	Pairs     []pairResult    `json:"pairs"`
	Standings []contender     `json:"standings"`
}

func (c arenaConfig) validate() error {
	if c.Games < 1 {
		return fmt.Errorf("games must be > 0")
	}
	req := engine.Request{
		Kind:         c.Kind,
		Board:        engine.NewBoard(c.BoardSize),
		WinCondition: c.WinLength,
		Bot:          engine.X,
		Opponent:     engine.O,
		Difficulty:   engine.Easy,
	}
	return req.Validate()
}

// runArena plays every pair of tiers against each other, swapping who opens
// after each game, and rates the tiers with Elo.
func runArena(ctx context.Context, cfg arenaConfig, logger *zap.Logger) (arenaReport, error) {
	if err := cfg.validate(); err != nil {
		return arenaReport{}, err
	}
	selector := engine.NewSeededSelector(cfg.Seed)
	population := []contender{
		{Difficulty: engine.Easy, Elo: startingElo},
		{Difficulty: engine.Medium, Elo: startingElo},
		{Difficulty: engine.Hard, Elo: startingElo},
	}
	report := arenaReport{
		Kind:      cfg.Kind,
		BoardSize: cfg.BoardSize,
		WinLength: cfg.WinLength,
		Seed:      cfg.Seed,
		Games:     cfg.Games,
	}
	for i := 0; i < len(population); i++ {
		for j := i + 1; j < len(population); j++ {
			pair := pairResult{First: population[i].Difficulty, Second: population[j].Difficulty}
			totalMoves := 0
			for game := 0; game < cfg.Games; game++ {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				firstStarts := game%2 == 0
				result, moves := playHeadToHead(selector, cfg, pair.First, pair.Second, firstStarts)
				switch result {
				case 1:
					pair.FirstWins++
				case 0:
					pair.SecondWins++
				default:
					pair.Draws++
				}
				totalMoves += moves
				updateElo(&population[i], &population[j], result, cfg.EloK)
			}
			pair.AvgMoves = math.Round(float64(totalMoves)/float64(cfg.Games)*10) / 10
			logger.Info("pair finished",
				zap.String("first", pair.First.String()),
				zap.String("second", pair.Second.String()),
				zap.Int("first_wins", pair.FirstWins),
				zap.Int("second_wins", pair.SecondWins),
				zap.Int("draws", pair.Draws),
			)
			report.Pairs = append(report.Pairs, pair)
		}
	}
	ranked := append([]contender(nil), population...)
	sortContendersByElo(ranked)
	report.Standings = ranked
	return report, nil
}

// playHeadToHead returns 1 when first wins, 0 when second wins and 0.5 for a draw.
func playHeadToHead(selector *engine.Selector, cfg arenaConfig, first, second engine.Difficulty, firstStarts bool) (float64, int) {
	xTier, oTier := first, second
	if !firstStarts {
		xTier, oTier = second, first
	}
	winner, moves := playGame(selector, cfg, xTier, oTier)
	switch winner {
	case engine.X:
		if firstStarts {
			return 1, moves
		}
		return 0, moves
	case engine.O:
		if firstStarts {
			return 0, moves
		}
		return 1, moves
	default:
		return 0.5, moves
	}
}

// playGame runs one game with X moving first and returns the winning mark or Empty.
func playGame(selector *engine.Selector, cfg arenaConfig, xTier, oTier engine.Difficulty) (engine.Cell, int) {
	board := engine.NewBoard(cfg.BoardSize)
	mover := engine.X
	moves := 0
	for !board.IsFull() {
		tier := xTier
		if mover == engine.O {
			tier = oTier
		}
		index := selector.SelectMove(engine.Request{
			Kind:         cfg.Kind,
			Board:        board,
			WinCondition: cfg.WinLength,
			Bot:          mover,
			Opponent:     mover.Opponent(),
			Difficulty:   tier,
		})
		if index == engine.NoMove || !board.IsEmpty(index) {
			break
		}
		board.Set(index, mover)
		moves++
		if engine.Wins(board, index, cfg.WinLength) {
			return mover, moves
		}
		mover = mover.Opponent()
	}
	return engine.Empty, moves
}

func updateElo(a *contender, b *contender, resultForA float64, k float64) {
	expA := 1.0 / (1.0 + math.Pow(10, (b.Elo-a.Elo)/400.0))
	expB := 1.0 / (1.0 + math.Pow(10, (a.Elo-b.Elo)/400.0))
	a.Elo += k * (resultForA - expA)
	b.Elo += k * ((1.0 - resultForA) - expB)
}

func sortContendersByElo(list []contender) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Elo > list[j].Elo
	})
}

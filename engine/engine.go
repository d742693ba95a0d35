// Package engine drives one run: it builds the model for a match count,
// searches it and optionally checks the answer against the game itself.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nimfibo/communication"
	"nimfibo/experiments/metrics"
	"nimfibo/game"
	"nimfibo/kernel"
	"nimfibo/model"
	"nimfibo/searcher"

	"github.com/rs/zerolog/log"
)

var (
	// ErrMismatch is returned by a verified run whose answer differs from
	// the game's.
	ErrMismatch = errors.New("search disagrees with the game")
	// ErrLosingLine is returned when a verified strategy loses a game.
	ErrLosingLine = errors.New("strategy loses")
)

type Config struct {
	N          int
	Cut        bool
	Goroutines int
	Duration   time.Duration
	Order      kernel.ValueOrder
	Seed       uint64
	Verify     bool
	Receivers  []communication.Receiver
}

type Report struct {
	N        int
	Cut      bool
	Holds    bool
	Strategy *searcher.Strategy
	Metrics  metrics.SearchMetric
	Oracle   *game.Outcome // set by verified runs
}

func Run(ctx context.Context, cfg Config) (Report, error) {
	report := Report{N: cfg.N, Cut: cfg.Cut}

	bus := communication.NewBus(cfg.Receivers...)
	m, err := model.Build(cfg.N,
		model.WithCut(cfg.Cut),
		model.WithValueOrder(cfg.Order),
		model.WithSeed(cfg.Seed),
		model.WithBus(bus),
	)
	if err != nil {
		return report, err
	}
	log.Info().Msgf("built model for %d matches: %d moves, cut=%t", m.N, m.M, cfg.Cut)

	q := searcher.NewQDFS(
		searcher.WithGoroutines(cfg.Goroutines),
		searcher.WithDuration(cfg.Duration),
		searcher.WithMetrics(),
	)
	result, err := q.Search(ctx, m)
	report.Metrics = result.Metrics
	if err != nil {
		return report, err
	}
	report.Holds = result.Holds
	report.Strategy = result.Strategy
	log.Info().Msgf("first player wins with %d matches: %t (%d nodes, %d cut, %s)",
		m.N, report.Holds, report.Metrics.Nodes, report.Metrics.Vacuous, report.Metrics.Duration)

	if cfg.Verify {
		oracle := game.Solve(cfg.N)
		report.Oracle = &oracle
		if oracle.FirstPlayerWins != report.Holds {
			return report, fmt.Errorf("%w: %d matches: search %t, game %t",
				ErrMismatch, cfg.N, report.Holds, oracle.FirstPlayerWins)
		}
		if report.Holds {
			if err := CheckStrategy(m, report.Strategy); err != nil {
				return report, err
			}
		}
		log.Info().Msg("verified against the game")
	}
	return report, nil
}

package experiments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nimfibo/engine"
	"nimfibo/experiments/metrics"

	"github.com/rs/zerolog/log"
)

const (
	TimeBudget = 30 * time.Second // Per run
	MinMatches = 2
)

var speedupGoroutines = []int{1, 2, 4, 8}

// RunCutExperiment solves every match count from 2 to maxN with and without
// the cut and stores the search metrics under root. It returns the directory
// it wrote to.
func RunCutExperiment(ctx context.Context, root string, maxN int) (string, error) {
	configs := []metrics.RunConfig{}
	for n := MinMatches; n <= maxN; n++ {
		configs = append(configs,
			metrics.RunConfig{N: n, Cut: true, Goroutines: 1},
			metrics.RunConfig{N: n, Cut: false, Goroutines: 1},
		)
	}
	return runExperiment(ctx, root, "cut", configs)
}

// RunSpeedupExperiment solves n matches with the cut on a growing number of
// goroutines.
func RunSpeedupExperiment(ctx context.Context, root string, n int) (string, error) {
	configs := []metrics.RunConfig{}
	for _, g := range speedupGoroutines {
		configs = append(configs, metrics.RunConfig{N: n, Cut: true, Goroutines: g})
	}
	return runExperiment(ctx, root, "speedup", configs)
}

func runExperiment(ctx context.Context, root, name string, configs []metrics.RunConfig) (string, error) {
	log.Info().Msgf("starting %s experiment...", name)
	start := time.Now()

	records := []metrics.RunRecord{}
	for i, config := range configs {
		log.Info().Msgf("starting run %d of %d with %+v...", i+1, len(configs), config)

		report, err := engine.Run(ctx, engine.Config{
			N:          config.N,
			Cut:        config.Cut,
			Goroutines: config.Goroutines,
			Duration:   TimeBudget,
		})
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("run %+v failed: %w", config, err)
		}
		records = append(records, metrics.RunRecord{
			ID:           i + 1,
			Holds:        report.Holds,
			RunConfig:    config,
			SearchMetric: report.Metrics,
		})

		log.Info().Msgf("completed run %d of %d: holds=%t nodes=%d timed_out=%t",
			i+1, len(configs), report.Holds, report.Metrics.Nodes, report.Metrics.TimedOut)
	}
	end := time.Now()
	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := writer.WriteSetup(name, start, end, configs); err != nil {
		return "", fmt.Errorf("failed to store setup: %w", err)
	}
	log.Info().Msg("stored setup")

	if err := writer.WriteRunRecords(records); err != nil {
		return "", fmt.Errorf("failed to store run records: %w", err)
	}
	log.Info().Msg("stored run records")

	return writer.Dir(), nil
}

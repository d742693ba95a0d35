package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"nimfibo/communication"
	"nimfibo/engine"
	"nimfibo/experiments"
	"nimfibo/kernel"
	"nimfibo/meta"
	"nimfibo/utils"

	"github.com/rs/zerolog/log"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [N]\n\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Decides Fibonacci Nim with N matches (default %d) as a quantified constraint problem.\n\nflags:\n", meta.MATCHES)
		flag.PrintDefaults()
	}
	cut := flag.Bool("cut", true, "Close states where the second player has no legal move")
	goroutines := flag.Int("goroutines", meta.GO_ROUTINES, "Number of goroutines for the search")
	duration := flag.Duration("time", 0, "Search time limit (0 for none)")
	order := flag.String("order", kernel.ValMin.String(), "Value order: min, max or rnd")
	seed := flag.Uint64("seed", 1, "Seed of the rnd value order")
	show := flag.Bool("print", false, "Print every message and the winning strategy")
	trace := flag.String("trace", "", "Write a JSON-lines trace to this file (zstd when it ends in .zst)")
	verify := flag.Bool("verify", false, "Check the answer against the game")
	experiment := flag.String("experiment", "", "Run an experiment instead: cut or speedup")
	out := flag.String("out", meta.RESULTS_DIR, "Directory for experiment results")
	maxN := flag.Int("max", meta.MAX_MATCHES, "Largest match count of the cut experiment")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	log.Logger = utils.NewLogger(os.Stderr, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *experiment != "" {
		if err := runExperiment(ctx, *experiment, *out, *maxN); err != nil {
			log.Fatal().Err(err).Msg("experiment failed")
		}
		return
	}

	n := meta.MATCHES
	if flag.NArg() > 0 {
		v, err := strconv.Atoi(flag.Arg(0))
		if err != nil {
			log.Fatal().Msgf("invalid match count %q", flag.Arg(0))
		}
		n = v
	}
	valueOrder, err := kernel.ParseValueOrder(*order)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid flag")
	}

	cfg := engine.Config{
		N:          n,
		Cut:        *cut,
		Goroutines: *goroutines,
		Duration:   *duration,
		Order:      valueOrder,
		Seed:       *seed,
		Verify:     *verify,
	}
	if err := run(ctx, cfg, *show, *trace); err != nil {
		log.Error().Err(err).Msgf("run with %d matches failed", n)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg engine.Config, show bool, trace string) error {
	count := &communication.NodeCount{}
	cfg.Receivers = []communication.Receiver{count}
	if show {
		cfg.Receivers = append(cfg.Receivers, communication.NewPrinter(os.Stdout))
	}
	if trace != "" {
		t, err := communication.CreateTrace(trace)
		if err != nil {
			return err
		}
		defer func() {
			if err := t.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close trace")
			}
		}()
		cfg.Receivers = append(cfg.Receivers, t)
	}

	report, err := engine.Run(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%d matches: first player wins: %t\n", cfg.N, report.Holds)
	fmt.Printf("nodes: %d, failures: %d, cut: %d, solutions: %d, instances: %d, time: %s\n",
		report.Metrics.Nodes, report.Metrics.Failures, report.Metrics.Vacuous,
		report.Metrics.Solutions, count.Instances(), report.Metrics.Duration)
	if show && report.Holds {
		return report.Strategy.Fprint(os.Stdout)
	}
	return nil
}

func runExperiment(ctx context.Context, name, out string, maxN int) error {
	var (
		dir string
		err error
	)
	switch name {
	case "cut":
		dir, err = experiments.RunCutExperiment(ctx, out, maxN)
	case "speedup":
		dir, err = experiments.RunSpeedupExperiment(ctx, out, meta.SPEEDUP_MATCHES)
	default:
		return fmt.Errorf("unknown experiment %q", name)
	}
	if err != nil {
		return err
	}
	log.Info().Msgf("results stored in %s", dir)
	return nil
}

// Package searcher decides quantified problems by depth-first search over
// the decision points of a kernel space.
package searcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nimfibo/experiments/metrics"
	"nimfibo/kernel"

	"github.com/rs/zerolog/log"
)

// Problem is a closed space to search together with its reporting hooks.
type Problem interface {
	Root() *kernel.Space
	// Report is called once for every successful state reached.
	Report(s *kernel.Space)
	Label(x kernel.IntVar) string
}

type Option func(q *QDFS)

type QDFS struct {
	goroutines int
	duration   time.Duration
	metrics    metrics.Collector
}

type Result struct {
	Holds    bool
	Strategy *Strategy // nil unless Holds
	Metrics  metrics.SearchMetric
}

func WithGoroutines(goroutines int) Option {
	return func(q *QDFS) {
		if goroutines > 0 {
			q.goroutines = goroutines
		}
	}
}

func WithDuration(duration time.Duration) Option {
	return func(q *QDFS) {
		if duration > 0 {
			q.duration = duration
		}
	}
}

func WithMetrics() Option {
	return func(q *QDFS) {
		q.metrics = metrics.NewCollector()
	}
}

func NewQDFS(options ...Option) *QDFS {
	q := &QDFS{ // Default values
		goroutines: 1,
		metrics:    metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(q)
	}
	return q
}

// Search decides whether the first player wins p. It stops with the context
// error when ctx is done or the duration limit is reached.
func (q *QDFS) Search(ctx context.Context, p Problem) (Result, error) {
	if q.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.duration)
		defer cancel()
	}

	q.metrics.Start(q.goroutines)
	var (
		holds    bool
		strategy *Strategy
		err      error
	)
	w := &worker{problem: p, metrics: q.metrics}
	if q.goroutines > 1 {
		holds, strategy, err = q.split(ctx, w, p.Root().Clone())
	} else {
		holds, strategy, err = w.solve(ctx, p.Root().Clone())
	}
	if err != nil {
		q.metrics.SetTimedOut(errors.Is(err, context.DeadlineExceeded))
		return Result{Metrics: q.metrics.Complete()}, fmt.Errorf("search interrupted: %w", err)
	}

	result := Result{Holds: holds, Metrics: q.metrics.Complete()}
	if holds {
		result.Strategy = strategy
	}
	log.Debug().Msgf("search completed: holds=%t metrics=%+v", result.Holds, result.Metrics)
	return result, nil
}

type worker struct {
	problem Problem
	metrics metrics.Collector
	buf     *branchLog // buffers the visits of a root branch when set
}

func (w *worker) visit(status kernel.Status) {
	if w.buf != nil {
		w.buf.statuses = append(w.buf.statuses, status)
		return
	}
	w.metrics.AddNode(status)
}

func (w *worker) report(s *kernel.Space) {
	if w.buf != nil {
		w.buf.reports = append(w.buf.reports, s)
		return
	}
	w.problem.Report(s)
}

// solve decides the state s, which it owns.
func (w *worker) solve(ctx context.Context, s *kernel.Space) (bool, *Strategy, error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}

	status := s.Status()
	w.visit(status)
	switch status {
	case kernel.Failed:
		return false, nil, nil
	case kernel.Solved, kernel.SolvedVacuously:
		w.report(s)
		return true, closed(status == kernel.SolvedVacuously), nil
	}

	d, _ := s.Next()
	node := &Strategy{Label: w.problem.Label(d.Var), ForAll: d.ForAll}
	for _, v := range d.Values {
		child := s.Clone()
		child.Decide(d, v)
		ok, sub, err := w.solve(ctx, child)
		if err != nil {
			return false, nil, err
		}
		switch {
		case d.ForAll && !ok:
			return false, nil, nil
		case d.ForAll:
			node.Moves = append(node.Moves, Move{Value: v, Next: sub})
		case ok:
			node.Moves = append(node.Moves, Move{Value: v, Next: sub})
			return true, node, nil
		}
	}
	return d.ForAll, node, nil
}

package searcher

import (
	"context"
	"sync/atomic"

	"nimfibo/kernel"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type branch struct {
	ok       bool
	strategy *Strategy
}

// branchLog holds what a root branch visited until it is known whether the
// sequential search would have reached that branch.
type branchLog struct {
	statuses []kernel.Status
	reports  []*kernel.Space
}

// split searches the values of the root decision on separate goroutines, each
// on its own fork of the root. The outcome, the node counts and the reported
// states are the ones the sequential search would give: branches after the
// first deciding value are cancelled and their visits dropped.
func (q *QDFS) split(ctx context.Context, w *worker, root *kernel.Space) (bool, *Strategy, error) {
	status := root.Status()
	if status != kernel.Branch {
		return w.finish(root, status)
	}
	w.metrics.AddNode(status)

	d, _ := root.Next()
	n := len(d.Values)
	forks := make([]*kernel.Space, n)
	for i, v := range d.Values {
		forks[i] = root.Fork()
		forks[i].Decide(d, v)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.goroutines)

	ctxs := make([]context.Context, n)
	cancels := make([]context.CancelFunc, n)
	for i := range n {
		ctxs[i], cancels[i] = context.WithCancel(gctx)
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	// stop is the smallest index that decides the root: a winning value of an
	// existential root or a refuting value of a universal one.
	var stop atomic.Int64
	stop.Store(int64(n))
	lower := func(i int) {
		for {
			cur := stop.Load()
			if int64(i) >= cur {
				return
			}
			if stop.CompareAndSwap(cur, int64(i)) {
				break
			}
		}
		for j := i + 1; j < n; j++ {
			cancels[j]()
		}
	}

	branches := make([]branch, n)
	logs := make([]branchLog, n)
	for i := range n {
		g.Go(func() error {
			if int64(i) > stop.Load() {
				return nil
			}
			log.Debug().Msgf("searching %s = %d", w.problem.Label(d.Var), d.Values[i])
			bw := &worker{problem: w.problem, metrics: w.metrics, buf: &logs[i]}
			ok, sub, err := bw.solve(ctxs[i], forks[i])
			if err != nil {
				if ctx.Err() == nil && int64(i) > stop.Load() {
					return nil
				}
				return err
			}
			branches[i] = branch{ok: ok, strategy: sub}
			if ok != d.ForAll {
				lower(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return false, nil, err
	}

	last := int(stop.Load())
	for i := 0; i < n && i <= last; i++ {
		for _, status := range logs[i].statuses {
			w.metrics.AddNode(status)
		}
		for _, s := range logs[i].reports {
			w.problem.Report(s)
		}
	}

	node := &Strategy{Label: w.problem.Label(d.Var), ForAll: d.ForAll}
	if d.ForAll {
		if last < n {
			return false, nil, nil
		}
		for i, v := range d.Values {
			node.Moves = append(node.Moves, Move{Value: v, Next: branches[i].strategy})
		}
		return true, node, nil
	}
	if last == n {
		return false, node, nil
	}
	node.Moves = append(node.Moves, Move{Value: d.Values[last], Next: branches[last].strategy})
	return true, node, nil
}

// finish handles a root that needs no decision.
func (w *worker) finish(s *kernel.Space, status kernel.Status) (bool, *Strategy, error) {
	w.metrics.AddNode(status)
	if status == kernel.Failed {
		return false, nil, nil
	}
	w.problem.Report(s)
	return true, closed(status == kernel.SolvedVacuously), nil
}

package searcher

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"testing"

	"nimfibo/communication"
	"nimfibo/game"
	"nimfibo/model"

	"github.com/stretchr/testify/require"
)

func build(t *testing.T, n int, options ...model.Option) *model.Model {
	t.Helper()
	m, err := model.Build(n, options...)
	require.NoError(t, err)
	return m
}

func TestSearchAgreesWithOracle(t *testing.T) {
	for n := 2; n <= 8; n++ {
		oracle := game.Solve(n)

		for _, cut := range []bool{true, false} {
			if !cut && n > 7 {
				continue
			}
			r, err := NewQDFS().Search(context.Background(), build(t, n, model.WithCut(cut)))
			require.NoError(t, err)
			require.Equal(t, oracle.FirstPlayerWins, r.Holds, "n=%d cut=%t", n, cut)

			if r.Holds {
				require.NotNil(t, r.Strategy)
				require.False(t, r.Strategy.ForAll, "The first decision belongs to the first player")
				require.Contains(t, oracle.Openings, r.Strategy.Moves[0].Value,
					"Opening of n=%d cut=%t should win", n, cut)
			} else {
				require.Nil(t, r.Strategy)
			}
		}
	}
}

func TestCutKeepsTheAnswer(t *testing.T) {
	for n := 2; n <= 7; n++ {
		with, err := NewQDFS(WithMetrics()).Search(context.Background(), build(t, n))
		require.NoError(t, err)
		without, err := NewQDFS(WithMetrics()).Search(context.Background(), build(t, n, model.WithCut(false)))
		require.NoError(t, err)

		require.Equal(t, without.Holds, with.Holds, "n=%d", n)
		if with.Holds {
			require.Equal(t, without.Strategy.Moves[0].Value, with.Strategy.Moves[0].Value,
				"Cut should not change the opening for n=%d", n)
		}
		if with.Holds {
			withLines := winningLines(t, with.Strategy, n)
			withoutLines := winningLines(t, without.Strategy, n)
			require.NotEmpty(t, withLines)
			require.Equal(t, withoutLines, withLines,
				"Cut should keep every winning line of the first player for n=%d", n)
		}
		require.Zero(t, without.Metrics.Vacuous, "Disabled cut never closes a state")
		require.LessOrEqual(t, with.Metrics.Nodes, without.Metrics.Nodes,
			"Cut should not grow the search for n=%d", n)
	}
}

// winningLines plays the strategy against every legal reply of the second
// player and collects each line ending in a move of the first player.
func winningLines(t *testing.T, s *Strategy, n int) map[string]bool {
	t.Helper()
	lines := map[string]bool{}
	var walk func(s *Strategy, state game.State, line []int)
	walk = func(s *Strategy, state game.State, line []int) {
		moves := state.LegalMoves()
		if len(moves) == 0 {
			return
		}
		ply := len(line)
		pending := s != nil && !s.Closed && s.Label == model.MoveName(ply)
		if model.QuantifierOf(ply) == model.Exists {
			var v int
			if pending {
				require.False(t, s.ForAll)
				require.Len(t, s.Moves, 1, "Existential nodes keep one value")
				v = s.Moves[0].Value
				s = s.Moves[0].Next
			} else {
				require.Len(t, moves, 1, "Only a forced move may be left out of %v", line)
				v = moves[0].Matches()
			}
			next := append(slices.Clone(line), v)
			lines[fmt.Sprint(next)] = true
			walk(s, state.Play(game.Take(v)), next)
			return
		}
		if !pending {
			return
		}
		require.True(t, s.ForAll)
		for _, m := range moves {
			reply := s.Follow(m.Matches())
			require.NotNil(t, reply, "Reply %d after %v is missing", m.Matches(), line)
			walk(reply, state.Play(m), append(slices.Clone(line), m.Matches()))
		}
	}
	walk(s, game.NewNim(n), nil)
	return lines
}

func TestSearchReportsStates(t *testing.T) {
	count := &communication.NodeCount{}
	m := build(t, 4, model.WithBus(communication.NewBus(count)))

	r, err := NewQDFS(WithMetrics()).Search(context.Background(), m)
	require.NoError(t, err)

	require.True(t, r.Holds)
	require.NotZero(t, r.Metrics.Vacuous, "The cut should close some states for n=4")
	require.Equal(t, int64(r.Metrics.Solutions+r.Metrics.Vacuous), count.Instances(),
		"Every successful state should be reported once")
}

func TestParallelSearch(t *testing.T) {
	for n := 2; n <= 8; n++ {
		seqCount, parCount := &communication.NodeCount{}, &communication.NodeCount{}
		seq, err := NewQDFS(WithMetrics()).Search(context.Background(),
			build(t, n, model.WithBus(communication.NewBus(seqCount))))
		require.NoError(t, err)
		par, err := NewQDFS(WithGoroutines(4), WithMetrics()).Search(context.Background(),
			build(t, n, model.WithBus(communication.NewBus(parCount))))
		require.NoError(t, err)

		require.Equal(t, seq.Holds, par.Holds, "n=%d", n)
		require.Equal(t, 4, par.Metrics.Goroutines)
		require.Equal(t, seq.Metrics.Nodes, par.Metrics.Nodes, "Parallel search should visit the same states for n=%d", n)
		require.Equal(t, seq.Metrics.Failures, par.Metrics.Failures, "n=%d", n)
		require.Equal(t, seq.Metrics.Vacuous, par.Metrics.Vacuous, "n=%d", n)
		require.Equal(t, seq.Metrics.Solutions, par.Metrics.Solutions, "n=%d", n)
		require.Equal(t, seqCount.Instances(), parCount.Instances(),
			"Parallel search should report the same states for n=%d", n)
		if seq.Holds {
			require.Equal(t, seq.Strategy.Moves[0].Value, par.Strategy.Moves[0].Value,
				"Parallel search should keep the first winning opening for n=%d", n)
		}
	}
}

func TestSearchInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewQDFS().Search(ctx, build(t, 5))
	require.ErrorIs(t, err, context.Canceled)

	r, err := NewQDFS(WithGoroutines(2), WithMetrics()).Search(ctx, build(t, 5))
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, r.Metrics.TimedOut, "Cancellation is not a timeout")
}

func TestStrategy(t *testing.T) {
	// x1 = 1, then y1 = 1 or 2, each answered by x2.
	s := &Strategy{
		Label: "x1",
		Moves: []Move{{Value: 1, Next: &Strategy{
			Label:  "y1",
			ForAll: true,
			Moves: []Move{
				{Value: 1, Next: &Strategy{Label: "x2", Moves: []Move{{Value: 2, Next: closed(false)}}}},
				{Value: 2, Next: closed(true)},
			},
		}}},
	}

	t.Run("following values", func(t *testing.T) {
		require.Equal(t, "x2", s.Follow(1, 1).Label)
		require.True(t, s.Follow(1, 2).Closed)
		require.Nil(t, s.Follow(2), "Value 2 is not part of the strategy")
		require.Nil(t, s.Follow(1, 2, 1), "Closed nodes have no moves")
	})

	t.Run("size", func(t *testing.T) {
		require.Equal(t, 3, s.Size())
	})

	t.Run("printing", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, s.Fprint(&buf))
		require.Equal(t,
			"x1 = 1\n"+
				"  y1 = 1\n"+
				"    x2 = 2\n"+
				"  y1 = 2 (no reply)\n",
			buf.String())
	})
}

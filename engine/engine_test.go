package engine

import (
	"context"
	"testing"

	"nimfibo/communication"
	"nimfibo/kernel"
	"nimfibo/model"
	"nimfibo/searcher"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("verifying a winning count", func(t *testing.T) {
		count := &communication.NodeCount{}
		report, err := Run(context.Background(), Config{
			N:         4,
			Cut:       true,
			Verify:    true,
			Receivers: []communication.Receiver{count},
		})

		require.NoError(t, err)
		require.True(t, report.Holds)
		require.NotNil(t, report.Oracle)
		require.Equal(t, []int{1}, report.Oracle.Openings)
		require.Equal(t, 1, report.Strategy.Moves[0].Value)
		require.Equal(t, int64(5), count.Vars())
		require.True(t, count.Closed())
		require.NotZero(t, count.Instances())
	})

	t.Run("verifying losing counts", func(t *testing.T) {
		for _, n := range []int{2, 3, 5, 8} {
			report, err := Run(context.Background(), Config{N: n, Cut: true, Verify: true})

			require.NoError(t, err, "n=%d", n)
			require.False(t, report.Holds, "n=%d is a Fibonacci number", n)
			require.Nil(t, report.Strategy)
		}
	})

	t.Run("verifying every order", func(t *testing.T) {
		for _, order := range []kernel.ValueOrder{kernel.ValMin, kernel.ValMax, kernel.ValRnd} {
			for _, n := range []int{6, 7, 9} {
				_, err := Run(context.Background(), Config{
					N: n, Cut: true, Verify: true, Order: order, Seed: 7, Goroutines: 2,
				})
				require.NoError(t, err, "n=%d order=%s", n, order)
			}
		}
	})

	t.Run("no feasible model", func(t *testing.T) {
		_, err := Run(context.Background(), Config{N: 1, Cut: true})

		require.ErrorIs(t, err, model.ErrNoFeasibleModel)
	})

	t.Run("interrupted search", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, Config{N: 6, Cut: true})

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckStrategy(t *testing.T) {
	m, err := model.Build(4)
	require.NoError(t, err)
	result, err := searcher.NewQDFS().Search(context.Background(), m)
	require.NoError(t, err)

	t.Run("winning strategy", func(t *testing.T) {
		require.NoError(t, CheckStrategy(m, result.Strategy))
	})

	t.Run("losing opening", func(t *testing.T) {
		tampered := *result.Strategy
		tampered.Moves = []searcher.Move{{Value: 2, Next: result.Strategy.Moves[0].Next}}

		require.ErrorIs(t, CheckStrategy(m, &tampered), ErrLosingLine)
	})
}

package model

import (
	"bytes"
	"testing"

	"nimfibo/communication"
	"nimfibo/kernel"

	"github.com/stretchr/testify/require"
)

func TestMoveCount(t *testing.T) {
	for n := 1; n <= 20; n++ {
		m := MoveCount(n)
		require.GreaterOrEqual(t, m, n)
		if n%2 == 1 {
			require.Equal(t, n, m, "Odd match counts keep their move count")
		} else {
			require.Equal(t, n+1, m, "Even match counts round up")
		}
		require.Equal(t, 1, m%2, "The last move belongs to the first player")
	}
}

func TestQuantifiers(t *testing.T) {
	t.Run("three matches", func(t *testing.T) {
		require.Equal(t, []Quantifier{Exists, ForAll, Exists}, Quantifiers(3))
	})

	t.Run("four matches", func(t *testing.T) {
		qs := Quantifiers(4)
		require.Len(t, qs, 5)
		require.Equal(t, Exists, qs[0])
		for i := 1; i < len(qs); i++ {
			require.NotEqual(t, qs[i-1], qs[i], "Quantifiers should alternate at move %d", i)
		}
	})

	t.Run("no moves for negative counts", func(t *testing.T) {
		require.Empty(t, Quantifiers(-4))
	})

	t.Run("names", func(t *testing.T) {
		require.Equal(t, "x1", MoveName(0))
		require.Equal(t, "y1", MoveName(1))
		require.Equal(t, "x2", MoveName(2))
		require.Equal(t, "y2", MoveName(3))
	})
}

func TestBuild(t *testing.T) {
	t.Run("no feasible model without matches to spare", func(t *testing.T) {
		for _, n := range []int{1, 0, -3} {
			count := &communication.NodeCount{}
			m, err := Build(n, WithBus(communication.NewBus(count)))

			require.Nil(t, m)
			require.ErrorIs(t, err, ErrNoFeasibleModel)
			require.ErrorIs(t, err, kernel.ErrEmptyDomain)
			require.Zero(t, count.Vars(), "Nothing should be declared for n=%d", n)
			require.False(t, count.Closed(), "Modeling should not be closed for n=%d", n)
		}
	})

	t.Run("three matches", func(t *testing.T) {
		var buf bytes.Buffer
		m, err := Build(3, WithBus(communication.NewBus(communication.NewPrinter(&buf))))
		require.NoError(t, err)

		require.Equal(t, 3, m.M)
		require.Len(t, m.X, 3)
		require.Equal(t, 1, m.Space.Min(m.X[0]))
		require.Equal(t, 2, m.Space.Max(m.X[0]))
		require.Len(t, m.Links, 2)
		require.Equal(t, ForAll, m.Links[0].Quantifier)
		require.Equal(t, Exists, m.Links[1].Quantifier)
		require.True(t, m.Space.ForAll(m.X[1]))
		require.False(t, m.Space.ForAll(m.X[2]))
		require.True(t, m.Space.Closed())
		require.Equal(t,
			"var EXISTS x1 int [1, 2]\n"+
				"var FORALL y1 int [1, 2]\n"+
				"var EXISTS x2 int [1, 2]\n"+
				"modeling closed\n",
			buf.String())

		require.Len(t, m.Cuts, 1, "One cut per universal move")
		require.Equal(t, 1, m.Cuts[0].Move)
		require.Empty(t, m.Cuts[0].Prior)
		require.Equal(t, NoFlag, m.Cuts[0].LastSum)
	})

	t.Run("four matches without cut", func(t *testing.T) {
		m, err := Build(4, WithCut(false))
		require.NoError(t, err)

		require.Equal(t, 5, m.M)
		require.Len(t, m.Links, 4)
		require.Empty(t, m.Cuts, "Disabled cut should install nothing")
	})

	t.Run("cut bookkeeping follows the universal moves", func(t *testing.T) {
		m, err := Build(7)
		require.NoError(t, err)

		require.Len(t, m.Cuts, 3)
		for k, c := range m.Cuts {
			require.Equal(t, 2*k+1, c.Move)
			require.Equal(t, ForAll, QuantifierOf(c.Move))
			require.Len(t, c.Prior, c.Move-1)
			if c.Move > 1 {
				require.Equal(t, m.Links[c.Move-2].Sum, c.LastSum)
			}
			require.Equal(t, m.Links[c.Move-1].Doubling, c.Doubling)
		}
	})

	t.Run("labels", func(t *testing.T) {
		m, err := Build(4)
		require.NoError(t, err)

		require.Equal(t, 3, m.MoveOf(m.X[3]))
		require.Equal(t, "y2", m.Label(m.X[3]))
		require.Equal(t, -1, m.MoveOf(kernel.IntVar(99)))
	})
}

// play decides the moves of m in order on a clone of the root.
func play(t *testing.T, m *Model, values ...int) *kernel.Space {
	t.Helper()
	s := m.Root().Clone()
	for i, v := range values {
		d, ok := s.Next()
		require.True(t, ok)
		require.Equal(t, m.X[i], d.Var)
		s.Decide(d, v)
	}
	return s
}

func TestFlags(t *testing.T) {
	values := []int{1, 2, 2, 4, 1}

	t.Run("flags agree with the assignment", func(t *testing.T) {
		m, err := Build(5, WithCut(false))
		require.NoError(t, err)

		s := play(t, m, values...)
		require.Equal(t, kernel.Solved, s.Status())

		sum := values[0]
		for _, l := range m.Links {
			i := l.Move
			sum += values[i]
			require.Equal(t, values[i] <= 2*values[i-1], s.Bool(l.Doubling) == kernel.True,
				"Doubling flag of move %d", i)
			require.Equal(t, sum <= 5, s.Bool(l.Sum) == kernel.True, "Sum flag of move %d", i)
		}
	})

	t.Run("cut fires once the first player took the last match", func(t *testing.T) {
		m, err := Build(5)
		require.NoError(t, err)

		s := play(t, m, values[:3]...)
		require.Equal(t, kernel.SolvedVacuously, s.Status())
		require.False(t, m.Cuts[0].Fires(s))
		require.True(t, m.Cuts[1].Fires(s))
	})
}

// explore visits every state below s, following every offered value.
func explore(s *kernel.Space, visit func(*kernel.Space, kernel.Status)) {
	st := s.Status()
	visit(s, st)
	if st != kernel.Branch {
		return
	}
	d, _ := s.Next()
	for _, v := range d.Values {
		c := s.Clone()
		c.Decide(d, v)
		explore(c, visit)
	}
}

func TestCutSoundness(t *testing.T) {
	for _, n := range []int{4, 5} {
		m, err := Build(n)
		require.NoError(t, err)

		vacuous := 0
		explore(m.Root().Clone(), func(s *kernel.Space, st kernel.Status) {
			if st != kernel.SolvedVacuously {
				return
			}
			vacuous++
			fired := false
			for _, c := range m.Cuts {
				if !c.Fires(s) {
					continue
				}
				fired = true
				sum := 0
				for j := 0; j < c.Move; j++ {
					v, ok := s.Value(m.X[j])
					require.True(t, ok, "Move %d should be fixed before the cut at %d", j, c.Move)
					if j > 0 {
						prev, _ := s.Value(m.X[j-1])
						require.LessOrEqual(t, v, 2*prev, "Move %d should be legal", j)
					}
					sum += v
				}
				require.LessOrEqual(t, sum, n)
				last, _ := s.Value(m.X[c.Move-1])
				replies := []int{}
				if s.Decided(m.X[c.Move]) {
					v, _ := s.Value(m.X[c.Move])
					replies = append(replies, v)
				} else {
					for v := 1; v <= n-1; v++ {
						replies = append(replies, v)
					}
				}
				for _, v := range replies {
					require.False(t, v <= 2*last && sum+v <= n,
						"Reply %d at move %d should be illegal", v, c.Move)
				}
			}
			require.True(t, fired, "A vacuous state needs a firing cut")
		})
		require.NotZero(t, vacuous, "Some state should be cut for n=%d", n)
	}
}

func TestCutDisabled(t *testing.T) {
	m, err := Build(5, WithCut(false))
	require.NoError(t, err)

	explore(m.Root().Clone(), func(_ *kernel.Space, st kernel.Status) {
		require.NotEqual(t, kernel.SolvedVacuously, st)
	})
}

func TestReport(t *testing.T) {
	count := &communication.NodeCount{}
	m, err := Build(3, WithBus(communication.NewBus(count)))
	require.NoError(t, err)

	s := play(t, m, 1)
	in := m.Instance(s)

	require.Equal(t, communication.Instance{
		communication.Known(1), communication.Unassigned, communication.Unassigned,
	}, in)
	require.Equal(t, in, m.Instance(s), "Reading an instance should not change the state")

	m.Report(s)
	require.Equal(t, int64(1), count.Instances())
}

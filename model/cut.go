package model

import "nimfibo/kernel"

// NoFlag stands for a flag that is constantly true.
const NoFlag kernel.BoolVar = -1

// Cut records the trigger installed on a universal move. It fires once every
// earlier move is legal and no reply at move Move can be: the replying player
// cannot move, so the state is won.
type Cut struct {
	Move     int
	Prior    []kernel.BoolVar // doubling flags of moves 1..Move-1
	LastSum  kernel.BoolVar   // sum flag of move Move-1, NoFlag before move 1
	Doubling kernel.BoolVar
	Sum      kernel.BoolVar
}

// Fires reports whether the cut condition is provably true on s, judged the
// way the kernel judges triggers.
func (c Cut) Fires(s *kernel.Space) bool {
	for _, d := range c.Prior {
		if s.Entailed(d) != kernel.True {
			return false
		}
	}
	if c.LastSum != NoFlag && s.Entailed(c.LastSum) != kernel.True {
		return false
	}
	return s.Entailed(c.Doubling) == kernel.False || s.Entailed(c.Sum) == kernel.False
}

type cutter struct {
	s       *kernel.Space
	enabled bool

	allPrior kernel.Expr
	lastSum  kernel.Expr
	prior    []kernel.BoolVar
	lastFlag kernel.BoolVar

	cuts []Cut
}

func newCutter(s *kernel.Space, enabled bool) *cutter {
	return &cutter{
		s:        s,
		enabled:  enabled,
		allPrior: s.True(),
		lastSum:  s.True(),
		lastFlag: NoFlag,
	}
}

// install puts a trigger on allPrior ∧ lastSum ∧ ¬(doubling ∧ sum).
func (c *cutter) install(move int, doubling, sum kernel.BoolVar) {
	if !c.enabled {
		return
	}
	s := c.s
	e := s.And(c.allPrior, c.lastSum, s.Not(s.And(s.Var(doubling), s.Var(sum))))
	s.When(e, func(state *kernel.Space) {
		state.Succeed()
	})
	c.cuts = append(c.cuts, Cut{
		Move:     move,
		Prior:    append([]kernel.BoolVar(nil), c.prior...),
		LastSum:  c.lastFlag,
		Doubling: doubling,
		Sum:      sum,
	})
}

func (c *cutter) advance(doubling, sum kernel.BoolVar) {
	if !c.enabled {
		return
	}
	c.allPrior = c.s.And(c.allPrior, c.s.Var(doubling))
	c.lastSum = c.s.Var(sum)
	c.prior = append(c.prior, doubling)
	c.lastFlag = sum
}

// Package model encodes Fibonacci Nim with n matches as a quantified
// constraint problem. The first player owns the even moves and must win
// against every sequence of replies on the odd moves. Every move variable
// takes 1..n-1 matches; each move is checked against the doubling rule and
// the running total, and the checks are chained move to move according to
// who is moving.
package model

import (
	"errors"
	"fmt"

	"nimfibo/communication"
	"nimfibo/kernel"
	"nimfibo/utils"
)

// ErrNoFeasibleModel is returned by Build when the move domain is empty.
var ErrNoFeasibleModel = errors.New("no feasible model")

type Option func(c *config)

type config struct {
	cut   bool
	order kernel.ValueOrder
	seed  uint64
	bus   *communication.Bus
}

// WithCut enables or disables the pruning of unplayable universal moves.
func WithCut(enabled bool) Option {
	return func(c *config) {
		c.cut = enabled
	}
}

func WithValueOrder(order kernel.ValueOrder) Option {
	return func(c *config) {
		c.order = order
	}
}

func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

func WithBus(bus *communication.Bus) Option {
	return func(c *config) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// Link is the boolean chain of one move i >= 1.
type Link struct {
	Move       int
	Quantifier Quantifier
	Doubling   kernel.BoolVar // X[i] <= 2*X[i-1]
	Sum        kernel.BoolVar // X[0] + ... + X[i] <= N
	Chosen     kernel.BoolVar
	Valid      kernel.Expr // chosen flag of move i-1, true for move 1
}

type Model struct {
	N     int
	M     int
	Space *kernel.Space
	X     []kernel.IntVar
	Links []Link
	Cuts  []Cut

	bus *communication.Bus
}

// Build compiles the game with n matches. The returned space is closed and
// ready to be searched.
func Build(n int, options ...Option) (*Model, error) {
	c := config{cut: true, order: kernel.ValMin}
	for _, option := range options {
		option(&c)
	}
	if c.bus == nil {
		c.bus = communication.NewBus()
	}

	s := kernel.NewSpace()
	s.SetSeed(c.seed)
	m := &Model{N: n, M: MoveCount(n), Space: s, bus: c.bus}

	x0, err := m.declare(0)
	if err != nil {
		return nil, fmt.Errorf("%w for %d matches: %w", ErrNoFeasibleModel, n, err)
	}
	s.Branch(x0, c.order)

	valid := s.True()
	cuts := newCutter(s, c.cut)
	for i := 1; i < m.M; i++ {
		x, err := m.declare(i)
		if err != nil {
			return nil, fmt.Errorf("%w for %d matches: %w", ErrNoFeasibleModel, n, err)
		}
		link := Link{
			Move:       i,
			Quantifier: QuantifierOf(i),
			Doubling:   s.NewBoolVar(),
			Sum:        s.NewBoolVar(),
			Chosen:     s.NewBoolVar(),
			Valid:      valid,
		}
		s.RelReif(x, 2, m.X[i-1], link.Doubling)
		s.LinearReif(m.X[:i+1], n, link.Sum)

		feasible := s.And(s.Var(link.Doubling), s.Var(link.Sum))
		if link.Quantifier == ForAll {
			// The reply obliges the first player only when it is legal.
			s.PostEquiv(valid, s.Implies(feasible, s.Var(link.Chosen)))
			cuts.install(i, link.Doubling, link.Sum)
		} else {
			s.PostEquiv(valid, s.And(feasible, s.Var(link.Chosen)))
		}
		s.Branch(x, c.order)

		cuts.advance(link.Doubling, link.Sum)
		m.Links = append(m.Links, link)
		valid = s.Var(link.Chosen)
	}
	m.Cuts = cuts.cuts

	c.bus.SendCloseModeling()
	s.Close()
	return m, nil
}

func (m *Model) declare(i int) (kernel.IntVar, error) {
	x, err := m.Space.NewIntVar(1, m.N-1)
	if err != nil {
		return x, err
	}
	q := QuantifierOf(i)
	if q == ForAll {
		m.Space.SetForAll(x)
	}
	m.bus.SendVar(communication.VarBinder{
		Quantifier: q,
		Name:       MoveName(i),
		Type:       "int",
		Lo:         1,
		Hi:         m.N - 1,
	})
	m.X = append(m.X, x)
	return x, nil
}

// Root is the state the search starts from.
func (m *Model) Root() *kernel.Space { return m.Space }

// MoveOf returns the move index of x, or -1.
func (m *Model) MoveOf(x kernel.IntVar) int {
	return utils.FindIndex(m.X, x)
}

// Label names the move variable x.
func (m *Model) Label(x kernel.IntVar) string {
	i := m.MoveOf(x)
	if i < 0 {
		panic(fmt.Sprintf("model: %d is not a move variable", x))
	}
	return MoveName(i)
}

// Package kernel is a small finite-domain propagation kernel: bounds domains
// for integer variables, reified arithmetic relations, a boolean layer decided
// by SAT, decision points and triggers. A Space is built once, closed, and then
// cloned at every branch of the search so that no state is shared between
// branches.
package kernel

import (
	"errors"
	"fmt"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
)

var (
	// ErrEmptyDomain is returned when a variable is declared with lo > hi.
	ErrEmptyDomain = errors.New("kernel: empty domain")
	// ErrClosed is the panic value when posting to a closed space.
	ErrClosed = errors.New("kernel: space is closed")
)

type IntVar int

type BoolVar int

// Status of a space after propagation.
type Status int

const (
	Failed Status = iota
	Solved
	SolvedVacuously
	Branch
)

func (st Status) String() string {
	switch st {
	case Failed:
		return "failed"
	case Solved:
		return "solved"
	case SolvedVacuously:
		return "solved-vacuously"
	case Branch:
		return "branch"
	}
	return fmt.Sprintf("Status(%d)", int(st))
}

// shape holds everything posted at construction time. It is read-only once
// the space is closed and shared by all clones.
type shape struct {
	declLo, declHi []int
	forall         []bool
	branchIndex    []int // brancher of each IntVar, -1 if none
	props          []propagator
	definedBy      []int // propagator defining each BoolVar, -1 if none

	circuit *logic.C
	lits    []z.Lit // circuit input of each BoolVar
	inputs  map[z.Var]BoolVar
	roots   []z.Lit

	branchers []brancher
	triggers  []trigger
	seed      uint64

	closed bool
}

// Space is one search state.
type Space struct {
	sh  *shape
	sat *gini.Gini

	lo, hi  []int
	bools   []Tri
	fired   []bool
	cursor  int
	vacuous bool
	failed  bool
}

// NewSpace returns an empty, open space.
func NewSpace() *Space {
	c := logic.NewC()
	return &Space{
		sh: &shape{
			circuit: c,
			inputs:  make(map[z.Var]BoolVar),
		},
	}
}

func (s *Space) mustBeOpen() {
	if s.sh.closed {
		panic(ErrClosed)
	}
}

// NewIntVar declares an integer variable with domain [lo, hi].
func (s *Space) NewIntVar(lo, hi int) (IntVar, error) {
	s.mustBeOpen()
	if lo > hi {
		return -1, fmt.Errorf("%w: [%d, %d]", ErrEmptyDomain, lo, hi)
	}
	x := IntVar(len(s.lo))
	s.lo = append(s.lo, lo)
	s.hi = append(s.hi, hi)
	s.sh.declLo = append(s.sh.declLo, lo)
	s.sh.declHi = append(s.sh.declHi, hi)
	s.sh.forall = append(s.sh.forall, false)
	s.sh.branchIndex = append(s.sh.branchIndex, -1)
	return x, nil
}

// NewBoolVar declares a boolean variable with unknown value.
func (s *Space) NewBoolVar() BoolVar {
	s.mustBeOpen()
	b := BoolVar(len(s.bools))
	s.bools = append(s.bools, Unknown)
	s.sh.definedBy = append(s.sh.definedBy, -1)
	m := s.sh.circuit.Lit()
	s.sh.lits = append(s.sh.lits, m)
	s.sh.inputs[m.Var()] = b
	return b
}

// SetForAll marks x as universally quantified.
func (s *Space) SetForAll(x IntVar) {
	s.mustBeOpen()
	s.sh.forall[x] = true
}

func (s *Space) ForAll(x IntVar) bool { return s.sh.forall[x] }

// SetSeed fixes the seed used by the random value order.
func (s *Space) SetSeed(seed uint64) {
	s.mustBeOpen()
	s.sh.seed = seed
}

// Close compiles the boolean layer. No posting is allowed afterwards.
func (s *Space) Close() {
	s.mustBeOpen()
	c := s.sh.circuit
	g := gini.New()
	for g.MaxVar() < z.Var(c.Len()-1) {
		g.Lit()
	}
	c.ToCnf(g)
	g.Add(c.T)
	g.Add(0)
	for _, m := range s.sh.roots {
		g.Add(m)
		g.Add(0)
	}
	s.sat = g
	s.fired = make([]bool, len(s.sh.triggers))
	s.sh.closed = true
}

func (s *Space) Closed() bool { return s.sh.closed }

// Clone copies the state for a new branch. The clone shares the SAT solver
// and must stay on the goroutine of its parent.
func (s *Space) Clone() *Space {
	if !s.sh.closed {
		panic("kernel: clone of an open space")
	}
	return &Space{
		sh:      s.sh,
		sat:     s.sat,
		lo:      append([]int(nil), s.lo...),
		hi:      append([]int(nil), s.hi...),
		bools:   append([]Tri(nil), s.bools...),
		fired:   append([]bool(nil), s.fired...),
		cursor:  s.cursor,
		vacuous: s.vacuous,
		failed:  s.failed,
	}
}

// Fork is like Clone but gives the copy its own SAT solver, so it can be
// searched on another goroutine.
func (s *Space) Fork() *Space {
	f := s.Clone()
	f.sat = s.sat.Copy()
	return f
}

func (s *Space) Min(x IntVar) int { return s.lo[x] }

func (s *Space) Max(x IntVar) int { return s.hi[x] }

func (s *Space) Assigned(x IntVar) bool { return s.lo[x] == s.hi[x] }

// Value returns the value of x if it is assigned.
func (s *Space) Value(x IntVar) (int, bool) {
	if s.lo[x] != s.hi[x] {
		return 0, false
	}
	return s.lo[x], true
}

// Declared returns the domain x was declared with.
func (s *Space) Declared(x IntVar) (lo, hi int) {
	return s.sh.declLo[x], s.sh.declHi[x]
}

// Pruned reports whether propagation removed values from the declared domain of x.
func (s *Space) Pruned(x IntVar) bool {
	return s.lo[x] != s.sh.declLo[x] || s.hi[x] != s.sh.declHi[x]
}

// Bool returns the current value of b in this state.
func (s *Space) Bool(b BoolVar) Tri { return s.bools[b] }

// Entailed judges b from the bounds of its defining relation alone. A
// universal variable that has not been decided yet counts with its whole
// declared domain, since propagation may have narrowed it to values the
// universal player is not bound to. For a variable without a defining
// relation it returns the current value.
func (s *Space) Entailed(b BoolVar) Tri {
	lo, hi := s.judgedBounds()
	return s.entailed(b, lo, hi)
}

func (s *Space) entailed(b BoolVar, lo, hi []int) Tri {
	if p := s.sh.definedBy[b]; p >= 0 {
		return s.sh.props[p].entailed(lo, hi)
	}
	return s.bools[b]
}

// Decided reports whether x was assigned by a decision of the search.
func (s *Space) Decided(x IntVar) bool {
	i := s.sh.branchIndex[x]
	return i >= 0 && i < s.cursor
}

func (s *Space) judgedBounds() (lo, hi []int) {
	lo, hi = s.lo, s.hi
	copied := false
	for i, forall := range s.sh.forall {
		x := IntVar(i)
		if !forall || s.Decided(x) {
			continue
		}
		if !copied {
			lo = append([]int(nil), s.lo...)
			hi = append([]int(nil), s.hi...)
			copied = true
		}
		lo[x], hi[x] = s.Declared(x)
	}
	return lo, hi
}

// Assign fixes x to v. Assigning outside the current domain fails the space.
func (s *Space) Assign(x IntVar, v int) {
	if v < s.lo[x] || v > s.hi[x] {
		s.failed = true
		return
	}
	s.lo[x], s.hi[x] = v, v
}

// Succeed marks the space as solved without further branching. Pending
// decision points are discarded.
func (s *Space) Succeed() {
	s.vacuous = true
}

// Status propagates to a fixpoint, runs triggers and classifies the state.
func (s *Space) Status() Status {
	if !s.sh.closed {
		panic("kernel: status of an open space")
	}
	if s.failed {
		return Failed
	}
	if !s.propagate() {
		s.failed = true
		return Failed
	}
	s.fire()
	if s.vacuous {
		return SolvedVacuously
	}
	if _, ok := s.Next(); !ok {
		return Solved
	}
	return Branch
}

func (s *Space) propagate() bool {
	for {
		changed := false
		for _, p := range s.sh.props {
			c, ok := p.propagate(s)
			if !ok {
				return false
			}
			changed = changed || c
		}
		if changed {
			continue
		}
		forced, ok := s.settle()
		if !ok {
			return false
		}
		if !forced {
			return true
		}
	}
}

func (s *Space) setMin(x IntVar, v int) (bool, bool) {
	if v <= s.lo[x] {
		return false, true
	}
	s.lo[x] = v
	return true, v <= s.hi[x]
}

func (s *Space) setMax(x IntVar, v int) (bool, bool) {
	if v >= s.hi[x] {
		return false, true
	}
	s.hi[x] = v
	return true, v >= s.lo[x]
}

// setBool records a value for b; it fails on a contradiction.
func (s *Space) setBool(b BoolVar, t Tri) (bool, bool) {
	switch s.bools[b] {
	case Unknown:
		s.bools[b] = t
		return true, true
	case t:
		return false, true
	}
	return false, false
}

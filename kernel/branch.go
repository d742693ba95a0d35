package kernel

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// ValueOrder selects the order in which a decision point tries its values.
type ValueOrder int

const (
	ValMin ValueOrder = iota // smallest first
	ValMax                   // largest first
	ValRnd                   // seeded random permutation
)

func (o ValueOrder) String() string {
	switch o {
	case ValMin:
		return "min"
	case ValMax:
		return "max"
	case ValRnd:
		return "rnd"
	}
	return fmt.Sprintf("ValueOrder(%d)", int(o))
}

// ParseValueOrder parses "min", "max" or "rnd".
func ParseValueOrder(s string) (ValueOrder, error) {
	for _, o := range []ValueOrder{ValMin, ValMax, ValRnd} {
		if o.String() == s {
			return o, nil
		}
	}
	return ValMin, fmt.Errorf("unknown value order %q", s)
}

type brancher struct {
	x     IntVar
	order ValueOrder
}

// Branch registers x as a decision point. Decision points are taken in
// registration order.
func (s *Space) Branch(x IntVar, order ValueOrder) {
	s.mustBeOpen()
	if s.sh.branchIndex[x] < 0 {
		s.sh.branchIndex[x] = len(s.sh.branchers)
	}
	s.sh.branchers = append(s.sh.branchers, brancher{x: x, order: order})
}

// Decision is the next pending decision point of a state.
type Decision struct {
	index  int
	Var    IntVar
	ForAll bool
	Values []int
}

// Next returns the first pending decision point. Existential variables that
// are already assigned need no decision and are skipped. A universal variable
// always offers its whole declared domain: the universal player may pick any
// of those values, whatever propagation removed.
func (s *Space) Next() (Decision, bool) {
	if s.vacuous {
		return Decision{}, false
	}
	for i := s.cursor; i < len(s.sh.branchers); i++ {
		br := s.sh.branchers[i]
		forall := s.sh.forall[br.x]
		if !forall && s.Assigned(br.x) {
			continue
		}
		lo, hi := s.lo[br.x], s.hi[br.x]
		if forall {
			lo, hi = s.Declared(br.x)
		}
		return Decision{
			index:  i,
			Var:    br.x,
			ForAll: forall,
			Values: s.order(br, lo, hi),
		}, true
	}
	return Decision{}, false
}

// Decide commits d to value v on s, which is normally a fresh clone.
func (s *Space) Decide(d Decision, v int) {
	s.cursor = d.index + 1
	s.Assign(d.Var, v)
}

func (s *Space) order(br brancher, lo, hi int) []int {
	values := make([]int, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		values = append(values, v)
	}
	switch br.order {
	case ValMax:
		for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
			values[i], values[j] = values[j], values[i]
		}
	case ValRnd:
		r := rand.New(rand.NewSource(s.sh.seed ^ uint64(br.x)<<32 ^ uint64(lo)<<16 ^ uint64(hi)))
		r.Shuffle(len(values), func(i, j int) {
			values[i], values[j] = values[j], values[i]
		})
	}
	return values
}

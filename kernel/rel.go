package kernel

import "fmt"

// Tri is a three-valued truth value.
type Tri int8

const (
	Unknown Tri = iota
	False
	True
)

func (t Tri) Not() Tri {
	switch t {
	case False:
		return True
	case True:
		return False
	}
	return Unknown
}

func (t Tri) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	}
	return "unknown"
}

func triOf(v bool) Tri {
	if v {
		return True
	}
	return False
}

func and3(a, b Tri) Tri {
	if a == False || b == False {
		return False
	}
	if a == True && b == True {
		return True
	}
	return Unknown
}

type propagator interface {
	// propagate narrows bounds and the reified flag. ok is false on failure.
	propagate(s *Space) (changed, ok bool)
	// entailed judges the relation from the given bounds only.
	entailed(lo, hi []int) Tri
}

// reify keeps b and the relation of p in agreement: a relation decided by the
// bounds fixes b, and a fixed b is enforced by narrowing.
func reify(s *Space, b BoolVar, e Tri, enforce, refute func() (bool, bool)) (bool, bool) {
	changed := false
	if e != Unknown {
		c, ok := s.setBool(b, e)
		if !ok {
			return false, false
		}
		changed = c
	}
	switch s.bools[b] {
	case True:
		c, ok := enforce()
		return changed || c, ok
	case False:
		c, ok := refute()
		return changed || c, ok
	}
	return changed, true
}

// relReif is b ⇔ x ≤ k·y with k ≥ 1.
type relReif struct {
	x, y IntVar
	k    int
	b    BoolVar
}

// RelReif posts b ⇔ (x ≤ k·y).
func (s *Space) RelReif(x IntVar, k int, y IntVar, b BoolVar) {
	s.mustBeOpen()
	if k < 1 {
		panic(fmt.Sprintf("kernel: RelReif needs k >= 1, got %d", k))
	}
	s.define(b, &relReif{x: x, y: y, k: k, b: b})
}

func (r *relReif) entailed(lo, hi []int) Tri {
	switch {
	case hi[r.x] <= r.k*lo[r.y]:
		return True
	case lo[r.x] > r.k*hi[r.y]:
		return False
	}
	return Unknown
}

func (r *relReif) propagate(s *Space) (bool, bool) {
	return reify(s, r.b, r.entailed(s.lo, s.hi), r.enforce(s), r.refute(s))
}

func (r *relReif) enforce(s *Space) func() (bool, bool) {
	return func() (bool, bool) {
		c1, ok := s.setMax(r.x, r.k*s.hi[r.y])
		if !ok {
			return c1, false
		}
		c2, ok := s.setMin(r.y, ceilDiv(s.lo[r.x], r.k))
		return c1 || c2, ok
	}
}

// refute enforces x ≥ k·y + 1.
func (r *relReif) refute(s *Space) func() (bool, bool) {
	return func() (bool, bool) {
		c1, ok := s.setMin(r.x, r.k*s.lo[r.y]+1)
		if !ok {
			return c1, false
		}
		c2, ok := s.setMax(r.y, floorDiv(s.hi[r.x]-1, r.k))
		return c1 || c2, ok
	}
}

// linearReif is b ⇔ Σ xs ≤ c.
type linearReif struct {
	xs []IntVar
	c  int
	b  BoolVar
}

// LinearReif posts b ⇔ (Σ xs ≤ c).
func (s *Space) LinearReif(xs []IntVar, c int, b BoolVar) {
	s.mustBeOpen()
	s.define(b, &linearReif{xs: append([]IntVar(nil), xs...), c: c, b: b})
}

func (l *linearReif) bounds(los, his []int) (lo, hi int) {
	for _, x := range l.xs {
		lo += los[x]
		hi += his[x]
	}
	return lo, hi
}

func (l *linearReif) entailed(los, his []int) Tri {
	lo, hi := l.bounds(los, his)
	switch {
	case hi <= l.c:
		return True
	case lo > l.c:
		return False
	}
	return Unknown
}

func (l *linearReif) propagate(s *Space) (bool, bool) {
	return reify(s, l.b, l.entailed(s.lo, s.hi), l.enforce(s), l.refute(s))
}

func (l *linearReif) enforce(s *Space) func() (bool, bool) {
	return func() (bool, bool) {
		changed := false
		for _, x := range l.xs {
			lo, _ := l.bounds(s.lo, s.hi)
			c, ok := s.setMax(x, l.c-(lo-s.lo[x]))
			changed = changed || c
			if !ok {
				return changed, false
			}
		}
		return changed, true
	}
}

// refute enforces Σ xs ≥ c + 1.
func (l *linearReif) refute(s *Space) func() (bool, bool) {
	return func() (bool, bool) {
		changed := false
		for _, x := range l.xs {
			_, hi := l.bounds(s.lo, s.hi)
			c, ok := s.setMin(x, l.c+1-(hi-s.hi[x]))
			changed = changed || c
			if !ok {
				return changed, false
			}
		}
		return changed, true
	}
}

func (s *Space) define(b BoolVar, p propagator) {
	if s.sh.definedBy[b] >= 0 {
		panic(fmt.Sprintf("kernel: bool variable %d is already reified", b))
	}
	s.sh.definedBy[b] = len(s.sh.props)
	s.sh.props = append(s.sh.props, p)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

package kernel

import (
	"github.com/go-air/gini/z"
)

// Expr is a boolean expression over the boolean variables of a space,
// represented as a node of the space's and-inverter graph.
type Expr struct {
	m z.Lit
}

func (s *Space) True() Expr { return Expr{s.sh.circuit.T} }

func (s *Space) False() Expr { return Expr{s.sh.circuit.F} }

func (s *Space) Var(b BoolVar) Expr { return Expr{s.sh.lits[b]} }

func (s *Space) Not(e Expr) Expr { return Expr{e.m.Not()} }

// And is the conjunction of es; it is True for no operands.
func (s *Space) And(es ...Expr) Expr {
	s.mustBeOpen()
	ms := make([]z.Lit, len(es))
	for i, e := range es {
		ms[i] = e.m
	}
	return Expr{s.sh.circuit.Ands(ms...)}
}

func (s *Space) Implies(a, b Expr) Expr {
	s.mustBeOpen()
	return Expr{s.sh.circuit.Implies(a.m, b.m)}
}

func (s *Space) Equiv(a, b Expr) Expr {
	s.mustBeOpen()
	return Expr{s.sh.circuit.Xor(a.m, b.m).Not()}
}

// Post requires e to hold in every solution.
func (s *Space) Post(e Expr) {
	s.mustBeOpen()
	s.sh.roots = append(s.sh.roots, e.m)
}

// PostEquiv requires a == b.
func (s *Space) PostEquiv(a, b Expr) {
	s.Post(s.Equiv(a, b))
}

// settle decides the boolean layer under the current values of the boolean
// variables. Every unknown variable whose value is the same in all models is
// fixed. It reports whether any variable was fixed and false on
// unsatisfiability.
func (s *Space) settle() (bool, bool) {
	known := make([]z.Lit, 0, len(s.bools))
	var open []BoolVar
	for b, t := range s.bools {
		switch t {
		case True:
			known = append(known, s.sh.lits[b])
		case False:
			known = append(known, s.sh.lits[b].Not())
		default:
			open = append(open, BoolVar(b))
		}
	}
	s.sat.Assume(known...)
	if s.sat.Solve() != 1 {
		return false, false
	}
	witness := make([]bool, len(open))
	for i, b := range open {
		witness[i] = s.sat.Value(s.sh.lits[b])
	}

	forced := false
	for i, b := range open {
		m := s.sh.lits[b]
		if witness[i] {
			m = m.Not()
		}
		s.sat.Assume(known...)
		s.sat.Assume(m)
		if s.sat.Solve() != -1 {
			continue
		}
		s.bools[b] = triOf(witness[i])
		known = append(known, m.Not())
		forced = true
	}
	return forced, true
}

type trigger struct {
	e  Expr
	fn func(*Space)
}

// When runs fn on a state the first time e is provably true there. Operands
// with a defining relation are judged as Entailed does, so a trigger never
// fires on a value the boolean layer only inferred.
func (s *Space) When(e Expr, fn func(*Space)) {
	s.mustBeOpen()
	s.sh.triggers = append(s.sh.triggers, trigger{e: e, fn: fn})
}

// Judge evaluates e in three-valued logic the way triggers do.
func (s *Space) Judge(e Expr) Tri {
	lo, hi := s.judgedBounds()
	return s.judge(e.m, lo, hi)
}

func (s *Space) judge(m z.Lit, lo, hi []int) Tri {
	c := s.sh.circuit
	switch m {
	case c.T:
		return True
	case c.F:
		return False
	}
	var t Tri
	if a, b := c.Ins(m); a == z.LitNull {
		t = s.entailed(s.sh.inputs[m.Var()], lo, hi)
	} else {
		t = and3(s.judge(a, lo, hi), s.judge(b, lo, hi))
	}
	if !m.IsPos() {
		t = t.Not()
	}
	return t
}

func (s *Space) fire() {
	lo, hi := s.judgedBounds()
	for i, tr := range s.sh.triggers {
		if s.fired[i] {
			continue
		}
		if s.judge(tr.e.m, lo, hi) != True {
			continue
		}
		s.fired[i] = true
		tr.fn(s)
		if s.vacuous {
			return
		}
	}
}

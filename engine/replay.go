package engine

import (
	"fmt"

	"nimfibo/game"
	"nimfibo/kernel"
	"nimfibo/model"
	"nimfibo/searcher"
)

// CheckStrategy plays the strategy as the first player against every line of
// legal replies and fails on the first game it does not win. Moves the search
// never had to decide are read from the model state.
func CheckStrategy(m *model.Model, strategy *searcher.Strategy) error {
	return replay(m, m.Root().Clone(), game.NewNim(m.N), strategy, 0, nil)
}

func replay(m *model.Model, s *kernel.Space, g game.State, node *searcher.Strategy, turn int, line []int) error {
	if w := g.Winner(); w != "" {
		if w != game.FirstPlayer {
			return fmt.Errorf("%w: line %v", ErrLosingLine, line)
		}
		return nil
	}
	if s.Status() == kernel.Failed {
		return fmt.Errorf("%w: line %v is refuted by the model", ErrLosingLine, line)
	}
	if turn >= len(m.X) {
		return fmt.Errorf("%w: line %v outlasts the model", ErrLosingLine, line)
	}

	x := m.X[turn]
	here := node != nil && !node.Closed && node.Label == model.MoveName(turn)
	if g.Player() == game.FirstPlayer {
		k, ok := s.Value(x)
		next := node
		if here {
			k, ok = node.Moves[0].Value, true
			next = node.Moves[0].Next
		}
		if !ok {
			return fmt.Errorf("%w: no move for %s after %v", ErrLosingLine, model.MoveName(turn), line)
		}
		if !legal(g, k) {
			return fmt.Errorf("%w: illegal move %s = %d after %v", ErrLosingLine, model.MoveName(turn), k, line)
		}
		return replay(m, decide(s, x, k), g.Play(game.Take(k)), next, turn+1, extend(line, k))
	}

	if !here {
		return fmt.Errorf("%w: no reply node for %s after %v", ErrLosingLine, model.MoveName(turn), line)
	}
	for _, mv := range g.LegalMoves() {
		k := mv.Matches()
		if err := replay(m, decide(s, x, k), g.Play(mv), node.Follow(k), turn+1, extend(line, k)); err != nil {
			return err
		}
	}
	return nil
}

func legal(g game.State, k int) bool {
	for _, mv := range g.LegalMoves() {
		if mv.Matches() == k {
			return true
		}
	}
	return false
}

// decide plays x = k on a clone of s, as a decision when x is the next
// decision point.
func decide(s *kernel.Space, x kernel.IntVar, k int) *kernel.Space {
	c := s.Clone()
	if d, ok := c.Next(); ok && d.Var == x {
		c.Decide(d, k)
	} else {
		c.Assign(x, k)
	}
	return c
}

func extend(line []int, k int) []int {
	return append(append([]int(nil), line...), k)
}

package searcher

import (
	"fmt"
	"io"
	"strings"

	"nimfibo/utils"
)

// Strategy is a winning strategy of the first player. A node for an
// existential decision keeps the one value that wins; a node for a universal
// decision keeps a reply for every value. A closed node is a state that
// needed no further decision.
type Strategy struct {
	Label   string
	ForAll  bool
	Moves   []Move
	Closed  bool
	Vacuous bool // closed by a cut
}

type Move struct {
	Value int
	Next  *Strategy
}

func closed(vacuous bool) *Strategy {
	return &Strategy{Closed: true, Vacuous: vacuous}
}

// Values lists the values of the node in search order.
func (s *Strategy) Values() []int {
	values := make([]int, len(s.Moves))
	for i, m := range s.Moves {
		values[i] = m.Value
	}
	return values
}

// Follow walks the strategy along values and returns the node reached, or
// nil when a value is not part of the strategy.
func (s *Strategy) Follow(values ...int) *Strategy {
	node := s
	for _, v := range values {
		if node == nil || node.Closed {
			return nil
		}
		i := utils.FindIndex(node.Values(), v)
		if i < 0 {
			return nil
		}
		node = node.Moves[i].Next
	}
	return node
}

// Size counts the decision nodes of the strategy.
func (s *Strategy) Size() int {
	if s == nil || s.Closed {
		return 0
	}
	size := 1
	for _, m := range s.Moves {
		size += m.Next.Size()
	}
	return size
}

// Fprint writes the strategy as an indented tree.
func (s *Strategy) Fprint(w io.Writer) error {
	if s == nil || s.Closed {
		_, err := fmt.Fprintln(w, "no decision needed")
		return err
	}
	return s.fprint(w, 0)
}

func (s *Strategy) fprint(w io.Writer, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, m := range s.Moves {
		line := fmt.Sprintf("%s%s = %d", indent, s.Label, m.Value)
		if m.Next.Closed && m.Next.Vacuous {
			line += " (no reply)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		if m.Next.Closed {
			continue
		}
		if err := m.Next.fprint(w, depth+1); err != nil {
			return err
		}
	}
	return nil
}

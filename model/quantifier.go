package model

import (
	"fmt"

	"nimfibo/communication"
)

type Quantifier = communication.Quantifier

const (
	Exists = communication.Exists
	ForAll = communication.ForAll
)

// MoveCount is the number of move variables for n matches: n when n is odd,
// n+1 otherwise, so that the last move always belongs to the first player.
func MoveCount(n int) int {
	if n%2 != 0 {
		return n
	}
	return n + 1
}

// QuantifierOf tags move i: the first player moves on even indices.
func QuantifierOf(i int) Quantifier {
	if i%2 == 0 {
		return Exists
	}
	return ForAll
}

func Quantifiers(n int) []Quantifier {
	qs := make([]Quantifier, max(MoveCount(n), 0))
	for i := range qs {
		qs[i] = QuantifierOf(i)
	}
	return qs
}

// MoveName names move i: x1, y1, x2, y2, ...
func MoveName(i int) string {
	if QuantifierOf(i) == Exists {
		return fmt.Sprintf("x%d", i/2+1)
	}
	return fmt.Sprintf("y%d", i/2+1)
}

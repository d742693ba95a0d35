package game

import (
	"encoding/binary"
	"hash/fnv"
)

const (
	FirstPlayer  = "first"
	SecondPlayer = "second"
)

// Take removes a number of matches from the heap.
type Take int

func (t Take) Matches() int { return int(t) }

// Nim is a Fibonacci Nim position: the player to move takes between 1 and
// Limit matches, and the next limit is twice the matches taken. The player
// who takes the last match wins.
type Nim struct {
	Left  int
	Limit int
	Turn  int
}

// NewNim starts a game with n matches. The opening move may take anything
// but the whole heap.
func NewNim(n int) *Nim {
	return &Nim{Left: n, Limit: n - 1}
}

func (g *Nim) Player() string {
	if g.Turn%2 == 0 {
		return FirstPlayer
	}
	return SecondPlayer
}

func (g *Nim) LegalMoves() []Move {
	moves := []Move{}
	for k := 1; k <= min(g.Limit, g.Left); k++ {
		moves = append(moves, Take(k))
	}
	return moves
}

func (g *Nim) Play(m Move) State {
	k := m.Matches()
	return &Nim{Left: g.Left - k, Limit: 2 * k, Turn: g.Turn + 1}
}

// Hash identifies the position from the point of view of the player to move.
func (g *Nim) Hash() StateHash {
	hasher := fnv.New64a()
	binary.Write(hasher, binary.LittleEndian, int64(g.Left))
	binary.Write(hasher, binary.LittleEndian, int64(min(g.Limit, g.Left)))
	return StateHash(hasher.Sum64())
}

// Winner is the player who took the last match, "" while the game goes on.
func (g *Nim) Winner() string {
	if g.Left > 0 || g.Turn == 0 {
		return ""
	}
	if g.Turn%2 == 1 {
		return FirstPlayer
	}
	return SecondPlayer
}

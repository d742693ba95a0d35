package game

// Outcome of a game under perfect play.
type Outcome struct {
	FirstPlayerWins bool
	Openings        []int // winning opening moves, in increasing order
}

// Solve plays Fibonacci Nim with n matches by memoized minimax.
func Solve(n int) Outcome {
	memo := map[StateHash]bool{}
	root := NewNim(n)
	out := Outcome{}
	for _, m := range root.LegalMoves() {
		if !wins(root.Play(m), memo) {
			out.Openings = append(out.Openings, m.Matches())
		}
	}
	out.FirstPlayerWins = len(out.Openings) > 0
	return out
}

// wins reports whether the player to move in s wins.
func wins(s State, memo map[StateHash]bool) bool {
	h := s.Hash()
	if w, ok := memo[h]; ok {
		return w
	}
	w := false
	for _, m := range s.LegalMoves() {
		if !wins(s.Play(m), memo) {
			w = true
			break
		}
	}
	memo[h] = w
	return w
}

// IsFibonacci reports whether n is a Fibonacci number.
func IsFibonacci(n int) bool {
	a, b := 1, 2
	for a < n {
		a, b = b, a+b
	}
	return a == n
}

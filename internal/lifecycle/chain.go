package lifecycle

// Chain is a strictly linear lifecycle: a canonical ordered sequence of
// states with single-step movement in either direction.
type Chain[S ~string] struct {
	order []S
	index map[S]int
}

// NewChain builds a Chain from the canonical sequence. Duplicate states keep
// their first position.
func NewChain[S ~string](order ...S) Chain[S] {
	seq := make([]S, len(order))
	copy(seq, order)
	index := make(map[S]int, len(seq))
	for i, s := range seq {
		if _, ok := index[s]; !ok {
			index[s] = i
		}
	}
	return Chain[S]{order: seq, index: index}
}

// Next returns the state after s. The second result is false at the end of
// the chain and for unknown input; the chain never wraps around.
func (c Chain[S]) Next(s S) (S, bool) {
	i, ok := c.index[s]
	if !ok || i >= len(c.order)-1 {
		var zero S
		return zero, false
	}
	return c.order[i+1], true
}

// Previous returns the state before s. The second result is false at the
// start of the chain and for unknown input.
func (c Chain[S]) Previous(s S) (S, bool) {
	i, ok := c.index[s]
	if !ok || i == 0 {
		var zero S
		return zero, false
	}
	return c.order[i-1], true
}

// Valid reports whether s is part of the chain.
func (c Chain[S]) Valid(s S) bool {
	_, ok := c.index[s]
	return ok
}

// Ordinal returns the zero-based position of s in the chain.
func (c Chain[S]) Ordinal(s S) (int, bool) {
	i, ok := c.index[s]
	return i, ok
}

// States returns the canonical sequence as a fresh slice.
func (c Chain[S]) States() []S {
	out := make([]S, len(c.order))
	copy(out, c.order)
	return out
}

// StepGraph derives the adjacency table that permits exactly the chain's
// single steps: every state may advance to its successor, every
// intermediate state may step back to its predecessor, and the final state
// is terminal.
func (c Chain[S]) StepGraph() Graph[S] {
	adjacency := make(map[S][]S, len(c.order))
	for i, s := range c.order {
		var targets []S
		if i < len(c.order)-1 {
			targets = append(targets, c.order[i+1])
		}
		if i > 0 && i < len(c.order)-1 {
			targets = append(targets, c.order[i-1])
		}
		adjacency[s] = targets
	}
	return NewGraph(adjacency)
}

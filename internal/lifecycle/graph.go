// Package lifecycle provides the generic status-transition machinery shared
// by every entity lifecycle in TaskHive. Each entity package declares its
// legal transitions as data; validation is a total table lookup that never
// panics on unknown input.
package lifecycle

import "sort"

// Graph is an immutable from-state adjacency table. The zero value is an
// empty graph for which every lookup fails closed.
type Graph[S ~string] struct {
	edges map[S]map[S]struct{}
}

// NewGraph builds a Graph from the given adjacency lists. The input map is
// copied; later mutation of it does not affect the graph. States that appear
// only as targets are registered as known terminal states.
func NewGraph[S ~string](adjacency map[S][]S) Graph[S] {
	edges := make(map[S]map[S]struct{}, len(adjacency))
	for from, targets := range adjacency {
		set := make(map[S]struct{}, len(targets))
		for _, to := range targets {
			set[to] = struct{}{}
		}
		edges[from] = set
	}
	for _, targets := range adjacency {
		for _, to := range targets {
			if _, ok := edges[to]; !ok {
				edges[to] = map[S]struct{}{}
			}
		}
	}
	return Graph[S]{edges: edges}
}

// CanTransition reports whether from -> to is a legal edge. Unknown source
// states, terminal states and absent edges all yield false.
func (g Graph[S]) CanTransition(from, to S) bool {
	targets, ok := g.edges[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Terminal reports whether s is a known state with no outgoing edges.
// Unknown states are not terminal; they are simply invalid.
func (g Graph[S]) Terminal(s S) bool {
	targets, ok := g.edges[s]
	return ok && len(targets) == 0
}

// Valid reports whether s is a state of this lifecycle.
func (g Graph[S]) Valid(s S) bool {
	_, ok := g.edges[s]
	return ok
}

// Successors returns the legal target states of s in stable order. The
// result is a fresh slice; it is empty for terminal or unknown states.
func (g Graph[S]) Successors(s S) []S {
	targets := g.edges[s]
	out := make([]S, 0, len(targets))
	for to := range targets {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// States returns every known state in stable order.
func (g Graph[S]) States() []S {
	out := make([]S, 0, len(g.edges))
	for s := range g.edges {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

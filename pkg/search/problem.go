package search

import "math/rand"

// Move is a perturbation of a state. Applying a move never mutates its
// input. Key returns the canonical tabu key; a move and its inverse share
// the same key (swaps and transpositions are self-inverse).
type Move[S any] interface {
	Key() string
	Apply(state S) S
}

// Generator defines a search problem: how to build a start state, how to
// enumerate the neighborhood of a state, and how to identify a state.
//
// Neighbors must return moves in a deterministic order so that seeded
// subsampling is reproducible. Signature must be canonical: equal states
// yield equal signatures regardless of how they were reached.
type Generator[S any] interface {
	Initial(rng *rand.Rand) (S, error)
	Neighbors(state S) []Move[S]
	Signature(state S) string
}

package search

import "github.com/phylogeno/subgenome/pkg/cache"

// TraceRecord is one committed step of a run. Records are append-only and
// owned by the engine for the duration of the run.
type TraceRecord struct {
	Iteration int     `json:"iteration"`
	MoveKey   string  `json:"move_key"`
	Fitness   float64 `json:"fitness"`
	NewBest   bool    `json:"new_best"`
}

// Candidate bundles a state with its cached fitness and the iteration it
// was discovered in.
type Candidate[S any] struct {
	State     S
	Fitness   float64
	Iteration int
}

// Result is the outcome of one engine run.
type Result[S any] struct {
	// Best is the best-ever candidate observed, tracked monotonically.
	Best Candidate[S]

	// Trace records every committed move in order.
	Trace []TraceRecord

	// Restarts counts reinitializations triggered by stuck iterations.
	Restarts int

	// Exhausted is set when the run terminated early because no admissible
	// move existed and restarts were disabled. Non-fatal: Best is valid.
	Exhausted bool

	// Canceled is set when the run stopped at an iteration boundary due to
	// context cancellation. Best holds the best-so-far solution.
	Canceled bool

	// Evaluations counts oracle calls that reached the (caching) oracle.
	Evaluations int

	// OracleFailures counts candidate evaluations absorbed as +Inf.
	OracleFailures int

	// CacheStats snapshots the fitness memoization counters at run end.
	CacheStats cache.Stats
}

package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes engine counters to Prometheus. Runs without metrics pass
// nil and pay nothing.
type Metrics struct {
	Evaluations    prometheus.Counter
	OracleFailures prometheus.Counter
	CommittedMoves prometheus.Counter
	Restarts       prometheus.Counter
	NewBest        prometheus.Counter
}

// NewMetrics registers engine counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Evaluations: factory.NewCounter(prometheus.CounterOpts{
			Name: "subgenome_search_evaluations_total",
			Help: "Number of candidate fitness evaluations requested.",
		}),
		OracleFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "subgenome_search_oracle_failures_total",
			Help: "Number of candidate evaluations absorbed as +Inf fitness.",
		}),
		CommittedMoves: factory.NewCounter(prometheus.CounterOpts{
			Name: "subgenome_search_committed_moves_total",
			Help: "Number of moves committed across all iterations.",
		}),
		Restarts: factory.NewCounter(prometheus.CounterOpts{
			Name: "subgenome_search_restarts_total",
			Help: "Number of random reinitializations after stuck iterations.",
		}),
		NewBest: factory.NewCounter(prometheus.CounterOpts{
			Name: "subgenome_search_new_best_total",
			Help: "Number of strict improvements of the best-ever solution.",
		}),
	}
}

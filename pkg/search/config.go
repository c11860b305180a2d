package search

import (
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// Unbounded disables the neighbor sample cap: the full neighborhood is
// evaluated every iteration.
const Unbounded = math.MaxInt

// Config carries the engine tunables. A zero sample cap is invalid: use
// Unbounded to evaluate complete neighborhoods.
type Config struct {
	// Tenure is the number of iterations a committed move's reversal stays
	// forbidden. Zero disables tabu memory entirely.
	Tenure int `yaml:"tenure" validate:"gte=0"`

	// MaxIterations is the iteration budget.
	MaxIterations int `yaml:"max_iterations" validate:"gt=0"`

	// SampleSize caps how many neighbors are evaluated per iteration,
	// drawn without replacement from the seeded stream.
	SampleSize int `yaml:"sample_size" validate:"gt=0"`

	// RestartWhenStuck reinitializes the search from a fresh random state
	// when no admissible candidate exists. Together with Tenure == 0 this
	// turns the engine into random-restart hillclimbing.
	RestartWhenStuck bool `yaml:"restart_when_stuck"`

	// Seed initializes the run's single pseudorandom stream.
	Seed int64 `yaml:"seed"`

	// MaxGoroutines bounds concurrent oracle evaluations within one
	// iteration. Values below two evaluate sequentially.
	MaxGoroutines int `yaml:"max_goroutines" validate:"gte=0"`

	// EvaluateInitial scores the start state before the first iteration so
	// it participates in best-ever tracking.
	EvaluateInitial bool `yaml:"evaluate_initial"`
}

// DefaultConfig mirrors the defaults of the reference tooling: short tenure,
// full neighborhoods, a generous budget.
func DefaultConfig() Config {
	return Config{
		Tenure:        2,
		MaxIterations: 500,
		SampleSize:    Unbounded,
		MaxGoroutines: 1,
	}
}

var validate = validator.New()

// Validate rejects invalid parameter combinations before any oracle budget
// is consumed.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.InvalidConfig, "invalid search configuration")
	}
	return nil
}

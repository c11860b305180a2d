package alignment

import (
	"context"
	"math"

	"github.com/phylogeno/subgenome/pkg/errors"
	"github.com/phylogeno/subgenome/pkg/search"
)

// LogBase selects the logarithm used by the entropy objective.
type LogBase int

const (
	// Natural measures entropy in nats.
	Natural LogBase = iota
	// Binary measures entropy in bits.
	Binary
)

// EntropyOracle scores an alignment by the total Shannon entropy of the
// summed membership rows. Perfectly agreeing runs sum to one-hot rows and
// score zero; label disagreement spreads the mass and raises the score.
type EntropyOracle struct {
	matrix *Matrix
	base   LogBase
}

// NewEntropyOracle builds the objective for a run matrix.
func NewEntropyOracle(m *Matrix, base LogBase) *EntropyOracle {
	return &EntropyOracle{matrix: m, base: base}
}

var _ search.Oracle[*State] = (*EntropyOracle)(nil)

// Evaluate computes the total row entropy under the state's permutations.
func (o *EntropyOracle) Evaluate(ctx context.Context, s *State) (float64, error) {
	if err := errors.CheckContext(ctx, "entropy evaluation"); err != nil {
		return 0, err
	}
	if len(s.perms) != o.matrix.Runs() {
		return 0, errors.New(errors.InvalidInput, "state run count does not match matrix")
	}

	total := 0.0
	for _, row := range o.matrix.Summed(s.perms) {
		total += o.rowEntropy(row)
	}
	return total, nil
}

// Coefficient is the mean row entropy of an alignment, the figure reported
// alongside the consensus clustering.
func (o *EntropyOracle) Coefficient(s *State) (float64, error) {
	total, err := o.Evaluate(context.Background(), s)
	if err != nil {
		return 0, err
	}
	return total / float64(o.matrix.Rows()), nil
}

func (o *EntropyOracle) rowEntropy(row []float64) float64 {
	mass := 0.0
	for _, v := range row {
		mass += v
	}
	if mass == 0 {
		return 0
	}

	h := 0.0
	for _, v := range row {
		if v == 0 {
			continue
		}
		p := v / mass
		h -= p * math.Log(p)
	}
	if o.base == Binary {
		h /= math.Ln2
	}
	return h
}

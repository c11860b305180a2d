// Package alignment solves the subgenome label-switching problem: the same
// clustering replicated across independent runs uses arbitrary cluster
// labels, and a permutation per run must be found that makes the runs
// agree. Agreement is measured by the Shannon entropy of the summed
// membership rows, which is zero exactly when all runs coincide.
package alignment

import (
	"github.com/phylogeno/subgenome/pkg/errors"
)

// Matrix holds the membership matrices of all runs. Every run has the same
// shape: one row per individual and one column per cluster label.
type Matrix struct {
	runs [][][]float64
}

// NewMatrix validates that all runs share one shape and wraps them.
func NewMatrix(runs [][][]float64) (*Matrix, error) {
	if len(runs) == 0 || len(runs[0]) == 0 || len(runs[0][0]) == 0 {
		return nil, errors.New(errors.InvalidInput, "alignment needs at least one run, row and cluster")
	}
	rows, clusters := len(runs[0]), len(runs[0][0])
	for r, run := range runs {
		if len(run) != rows {
			return nil, errors.WithFields(
				errors.New(errors.InvalidInput, "run row count differs"),
				errors.Fields{"run": r, "rows": len(run), "expected": rows},
			)
		}
		for i, row := range run {
			if len(row) != clusters {
				return nil, errors.WithFields(
					errors.New(errors.InvalidInput, "run cluster count differs"),
					errors.Fields{"run": r, "row": i, "clusters": len(row), "expected": clusters},
				)
			}
		}
	}
	return &Matrix{runs: runs}, nil
}

// Runs is the number of replicate runs.
func (m *Matrix) Runs() int {
	return len(m.runs)
}

// Rows is the number of individuals per run.
func (m *Matrix) Rows() int {
	return len(m.runs[0])
}

// Clusters is the number of cluster labels per run.
func (m *Matrix) Clusters() int {
	return len(m.runs[0][0])
}

// At returns the membership of row i in column c of run r.
func (m *Matrix) At(r, i, c int) float64 {
	return m.runs[r][i][c]
}

// Summed adds the rows of all runs under the given per-run column
// permutations: column c of the result collects runs[r][i][perms[r][c]].
func (m *Matrix) Summed(perms [][]int) [][]float64 {
	sum := make([][]float64, m.Rows())
	for i := range sum {
		row := make([]float64, m.Clusters())
		for r := range m.runs {
			for c := 0; c < m.Clusters(); c++ {
				row[c] += m.runs[r][i][perms[r][c]]
			}
		}
		sum[i] = row
	}
	return sum
}

// Averaged is Summed scaled by the run count, the consensus membership
// matrix written to the clustering output.
func (m *Matrix) Averaged(perms [][]int) [][]float64 {
	avg := m.Summed(perms)
	n := float64(m.Runs())
	for i := range avg {
		for c := range avg[i] {
			avg[i][c] /= n
		}
	}
	return avg
}

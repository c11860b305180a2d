package alignment

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// WritePermutations renders one line per run with the 1-based label
// permutation, tab separated, in run order.
func WritePermutations(w io.Writer, s *State) error {
	bw := bufio.NewWriter(w)
	for _, perm := range s.perms {
		cols := make([]string, len(perm))
		for c, src := range perm {
			cols[c] = fmt.Sprintf("%d", src+1)
		}
		if _, err := bw.WriteString(strings.Join(cols, "\t") + "\n"); err != nil {
			return errors.Wrap(err, errors.Unknown, "writing permutations")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.Unknown, "writing permutations")
	}
	return nil
}

// WriteSummary reports the objective of an alignment: the total row entropy
// and its per-row mean, the figure comparable across matrices of different
// size.
func WriteSummary(w io.Writer, o *EntropyOracle, s *State) error {
	total, err := o.Evaluate(context.Background(), s)
	if err != nil {
		return err
	}
	coeff, err := o.Coefficient(s)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "total entropy: %1.6f\nmean row entropy: %1.6f\n", total, coeff); err != nil {
		return errors.Wrap(err, errors.Unknown, "writing summary")
	}
	return nil
}

// WriteClustering renders the consensus membership matrix under the given
// alignment, one individual per row in the individual-file layout.
func WriteClustering(w io.Writer, m *Matrix, s *State) error {
	bw := bufio.NewWriter(w)
	for i, row := range m.Averaged(s.perms) {
		vals := make([]string, len(row))
		for c, v := range row {
			vals[c] = fmt.Sprintf("%1.6f", v)
		}
		if _, err := fmt.Fprintf(bw, "%d %d (x) 1 : %s\n", i+1, i+1, strings.Join(vals, " ")); err != nil {
			return errors.Wrap(err, errors.Unknown, "writing clustering")
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, errors.Unknown, "writing clustering")
	}
	return nil
}

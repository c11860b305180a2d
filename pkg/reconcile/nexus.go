package reconcile

import (
	"fmt"
	"io"
	"strings"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// TreeIDs names the first n gene trees the way the NEXUS block labels
// them: "g0000001, g0000002, ...".
func TreeIDs(n int) string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("g%07d", i+1)
	}
	return strings.Join(ids, ", ")
}

// Instruction builds the inference command for the tool's script block.
// The diploid mapping covers true species; the hypothesis mapping covers
// the pseudo-diploid subgenomes of the current partition. Either may be
// empty, but not both.
func Instruction(command, treeIDs, diploidMapping, hypothesisMapping string) (string, error) {
	var parts []string
	for _, m := range []string{diploidMapping, hypothesisMapping} {
		if m != "" {
			parts = append(parts, m)
		}
	}
	if len(parts) == 0 {
		return "", errors.New(errors.InvalidInput, "cannot build inference instruction, empty allele mapping")
	}
	return fmt.Sprintf("%s(%s) -a\n<%s>;\n", command, treeIDs, strings.Join(parts, ";")), nil
}

// WriteNexus renders a complete single-inference job: the gene trees in a
// TREES block followed by the instruction in the tool's script block.
func WriteNexus(w io.Writer, trees []string, instruction string) error {
	if len(trees) == 0 {
		return errors.New(errors.InvalidInput, "nexus job needs at least one gene tree")
	}

	var b strings.Builder
	b.WriteString("#NEXUS\n\nBEGIN TREES;\n\n")
	for i, tree := range trees {
		fmt.Fprintf(&b, "Tree g%07d =\n%s\n", i+1, strings.TrimSpace(tree))
	}
	b.WriteString("\nEND;\n\n\nBEGIN PhyloNet;\n\n")
	b.WriteString(instruction)
	b.WriteString("\nEND;\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, errors.Unknown, "writing nexus job")
	}
	return nil
}

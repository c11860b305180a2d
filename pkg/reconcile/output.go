package reconcile

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// Result is one parsed species tree inference.
type Result struct {
	// Tree is the inferred species tree in newick notation.
	Tree string
	// TreeIDs lists the gene tree labels the inference consumed.
	TreeIDs string
	// Mapping is the allele mapping echoed back by the tool.
	Mapping string
	// ExtraLineages is the reconciliation cost, the fitness of the mapping.
	ExtraLineages int
}

var (
	treePattern = regexp.MustCompile(`^(\(.+;)`)
	idsPattern  = regexp.MustCompile(`\(([ ,g0-9]*)\)`)
	mapPattern  = regexp.MustCompile(`<(.+)>`)
	distPattern = regexp.MustCompile(`Total number of extra lineages:(.+)`)
)

// ParseOutput reads the tool's plain text output. Every inference occupies
// four lines: a blank separator, the echoed instruction, the species tree,
// and the extra-lineage count. Batched jobs concatenate chunks.
func ParseOutput(r io.Reader) ([]Result, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.OracleFailed, "reading reconciliation output")
	}

	if len(lines) == 0 || len(lines)%4 != 0 {
		return nil, errors.WithFields(
			errors.New(errors.OracleFailed, "cannot parse reconciliation output"),
			errors.Fields{"lines": len(lines)},
		)
	}

	results := make([]Result, 0, len(lines)/4)
	for i := 0; i < len(lines); i += 4 {
		res, err := parseChunk(lines[i : i+4])
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, nil
}

func parseChunk(chunk []string) (*Result, error) {
	tree := treePattern.FindStringSubmatch(chunk[2])
	ids := idsPattern.FindStringSubmatch(chunk[1])
	mapping := mapPattern.FindStringSubmatch(chunk[1])
	dist := distPattern.FindStringSubmatch(chunk[3])

	if chunk[0] != "" || tree == nil || ids == nil || mapping == nil || dist == nil {
		return nil, errors.New(errors.OracleFailed, "cannot parse reconciliation output")
	}

	// The count is printed as a float by some tool versions.
	value, err := strconv.ParseFloat(strings.TrimSpace(dist[1]), 64)
	if err != nil {
		return nil, errors.Wrap(err, errors.OracleFailed, "cannot parse extra lineage count")
	}

	return &Result{
		Tree:          tree[1],
		TreeIDs:       ids[1],
		Mapping:       mapping[1],
		ExtraLineages: int(value),
	}, nil
}

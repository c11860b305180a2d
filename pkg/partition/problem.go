package partition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// Block is one independent sub-problem: the alleles observed for one
// accession at one marker. Allele counts may fall short of the ploidy when
// loci failed to amplify, but can never exceed it.
type Block struct {
	AccessionID string
	Marker      int
	Alleles     []string
}

// Problem describes the partition search space for one polyploid taxon.
// Every block shares the taxon's ploidy; the bin count is the number of
// hypothetical ancestral subgenomes, ploidy / subgenome size.
type Problem struct {
	Taxon         string
	Ploidy        int
	SubgenomeSize int

	blocks []Block
}

// NewProblem validates the instance and fixes the canonical block order
// (accession, then marker, then lexical allele order within each block).
func NewProblem(taxon string, ploidy, subgenomeSize int, blocks []Block) (*Problem, error) {
	if ploidy <= 0 || subgenomeSize <= 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "ploidy and subgenome size must be positive"),
			errors.Fields{"taxon": taxon, "ploidy": ploidy, "subgenome_size": subgenomeSize},
		)
	}
	if ploidy%subgenomeSize != 0 {
		return nil, errors.WithFields(
			errors.New(errors.InvalidConfig, "ploidy not divisible by subgenome size"),
			errors.Fields{"taxon": taxon, "ploidy": ploidy, "subgenome_size": subgenomeSize},
		)
	}
	if len(blocks) == 0 {
		return nil, errors.New(errors.InvalidConfig, "no partition blocks for taxon "+taxon)
	}

	ordered := make([]Block, len(blocks))
	for i, b := range blocks {
		if len(b.Alleles) == 0 {
			return nil, errors.WithFields(
				errors.New(errors.InvalidConfig, "empty allele block"),
				errors.Fields{"accession": b.AccessionID, "marker": b.Marker},
			)
		}
		if len(b.Alleles) > ploidy {
			return nil, errors.WithFields(
				errors.New(errors.InvalidConfig, "more alleles than ploidy allows"),
				errors.Fields{"accession": b.AccessionID, "marker": b.Marker, "alleles": len(b.Alleles), "ploidy": ploidy},
			)
		}
		alleles := make([]string, len(b.Alleles))
		copy(alleles, b.Alleles)
		sort.Strings(alleles)
		for j := 1; j < len(alleles); j++ {
			if alleles[j] == alleles[j-1] {
				return nil, errors.WithFields(
					errors.New(errors.InvalidConfig, "duplicate allele in block"),
					errors.Fields{"accession": b.AccessionID, "marker": b.Marker, "allele": alleles[j]},
				)
			}
		}
		ordered[i] = Block{AccessionID: b.AccessionID, Marker: b.Marker, Alleles: alleles}
	}

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].AccessionID != ordered[j].AccessionID {
			return ordered[i].AccessionID < ordered[j].AccessionID
		}
		return ordered[i].Marker < ordered[j].Marker
	})

	return &Problem{
		Taxon:         taxon,
		Ploidy:        ploidy,
		SubgenomeSize: subgenomeSize,
		blocks:        ordered,
	}, nil
}

// BinCount is the number of hypothetical subgenome bins.
func (p *Problem) BinCount() int {
	return p.Ploidy / p.SubgenomeSize
}

// Blocks exposes the canonical block order.
func (p *Problem) Blocks() []Block {
	return p.blocks
}

// CheckInvariants verifies that a state is structurally consistent with the
// problem: one bin per allele, legal bin indices, and no bin filled past
// its fixed capacity.
func (p *Problem) CheckInvariants(s *State) error {
	if len(s.bins) != len(p.blocks) {
		return errors.New(errors.InvalidInput, "state block count does not match problem")
	}
	for b, block := range p.blocks {
		if len(s.bins[b]) != len(block.Alleles) {
			return errors.WithFields(
				errors.New(errors.InvalidInput, "state allele count does not match block"),
				errors.Fields{"accession": block.AccessionID, "marker": block.Marker},
			)
		}
		counts := make([]int, p.BinCount())
		for _, bin := range s.bins[b] {
			if bin < 0 || bin >= p.BinCount() {
				return errors.WithFields(
					errors.New(errors.InvalidInput, "bin index out of range"),
					errors.Fields{"accession": block.AccessionID, "marker": block.Marker, "bin": bin},
				)
			}
			counts[bin]++
		}
		for bin, n := range counts {
			if n > p.SubgenomeSize {
				return errors.WithFields(
					errors.New(errors.InvalidInput, "bin filled past capacity"),
					errors.Fields{"accession": block.AccessionID, "marker": block.Marker, "bin": bin, "count": n},
				)
			}
		}
	}
	return nil
}

// Partition groups the allele names of a state per subgenome bin, across
// all blocks, in canonical block order. Bin k collects the alleles assigned
// to hypothetical ancestor k at every accession and marker.
func (p *Problem) Partition(s *State) [][]string {
	groups := make([][]string, p.BinCount())
	for b, block := range p.blocks {
		for i, allele := range block.Alleles {
			bin := s.bins[b][i]
			groups[bin] = append(groups[bin], allele)
		}
	}
	return groups
}

// MappingString renders bin groups as the allele-mapping clause consumed by
// the reconciliation tool: one hypothetical species per non-empty bin,
// named with a zero-padded two-digit suffix.
func MappingString(taxon string, groups [][]string) (string, error) {
	if len(groups) > 99 {
		return "", errors.New(errors.InvalidConfig, "maximal number of hypothetical ancestors exceeded")
	}

	var clauses []string
	next := 1
	for _, group := range groups {
		if len(group) == 0 {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s___%02d:%s", taxon, next, strings.Join(group, ",")))
		next++
	}
	if len(clauses) == 0 {
		return "", errors.New(errors.InvalidInput, "cannot build mapping from empty partition")
	}
	return strings.Join(clauses, ";"), nil
}

// Package partition models the allele-to-subgenome assignment problem for
// one polyploid taxon and plugs it into the generic search engine: states
// are per-accession/marker bin assignments, moves are allele swaps between
// bins, and fitness comes from an external reconciliation oracle.
package partition

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Accession is one sequenced individual: its taxon membership, the ordered
// allele identifiers recovered for it, and its ploidy level. Labels are
// NFC-normalized so that visually identical taxon names from different
// upstream tools compare equal.
type Accession struct {
	ID      string
	Taxon   string
	Alleles []string
	Ploidy  int
}

// NewAccession builds an accession with normalized labels.
func NewAccession(id, taxon string, alleles []string, ploidy int) Accession {
	normalized := make([]string, len(alleles))
	for i, a := range alleles {
		normalized[i] = norm.NFC.String(a)
	}
	return Accession{
		ID:      norm.NFC.String(id),
		Taxon:   norm.NFC.String(taxon),
		Alleles: normalized,
		Ploidy:  ploidy,
	}
}

// Diploid accessions carry a single subgenome and need no optimization.
func (a Accession) Diploid() bool {
	return a.Ploidy == 2
}

// BuildBlocks expands polyploid accessions into one partition block per
// accession and marker, suffixing allele names with the marker index the
// way the gene-tree preprocessing labels leaves (e.g. "a1" at marker 3
// becomes "a1_m3"). Diploid accessions are skipped.
func BuildBlocks(accessions []Accession, markers int) []Block {
	var blocks []Block
	for _, acc := range accessions {
		if acc.Diploid() {
			continue
		}
		for m := 0; m < markers; m++ {
			suffixed := make([]string, len(acc.Alleles))
			for i, allele := range acc.Alleles {
				suffixed[i] = fmt.Sprintf("%s_m%d", allele, m)
			}
			blocks = append(blocks, Block{
				AccessionID: acc.ID,
				Marker:      m,
				Alleles:     suffixed,
			})
		}
	}
	return blocks
}

package alignment

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/phylogeno/subgenome/pkg/errors"
)

// ParseIndfile reads replicate membership matrices in the individual-file
// layout used by cluster matching tools: one block per run, blocks
// separated by blank lines, one row per individual. Rows carry an optional
// "id id (pop) weight :" prefix before the membership values; everything up
// to the last colon is ignored.
func ParseIndfile(r io.Reader) (*Matrix, error) {
	var runs [][][]float64
	var current [][]float64

	flush := func() {
		if len(current) > 0 {
			runs = append(runs, current)
			current = nil
		}
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			flush()
			continue
		}
		if idx := strings.LastIndex(text, ":"); idx >= 0 {
			text = strings.TrimSpace(text[idx+1:])
		}
		fields := strings.Fields(text)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errors.WithFields(
					errors.Wrap(err, errors.InvalidInput, "malformed membership value"),
					errors.Fields{"line": line, "value": f},
				)
			}
			row[i] = v
		}
		current = append(current, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "reading indfile")
	}
	flush()

	if len(runs) == 0 {
		return nil, errors.New(errors.InvalidInput, "indfile contains no runs")
	}
	return NewMatrix(runs)
}

package parser

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Options controls how a sample file is read.
type Options struct {
	Delimiter       rune   // 0 splits on any run of whitespace
	Comment         string // lines starting with this prefix are ignored
	SkipRows        int    // physical lines skipped before parsing starts
	MeasurementType MeasurementType
}

// DefaultOptions matches plain whitespace-separated numeric text files.
func DefaultOptions() *Options {
	return &Options{
		Comment:         "#",
		MeasurementType: MeasurementOxidation,
	}
}

// ParseVoltammogramFile opens path and parses it with ParseVoltammogram.
func ParseVoltammogramFile(path string, opts *Options) (*Voltammogram, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer file.Close()

	v, err := ParseVoltammogram(file, path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}

// ParseVoltammogram reads rows of (x, col1, col2) numbers. Rows that cannot be used are
// skipped and reported in ParseErrors; a file without any usable row is an error.
// Columns beyond the third are ignored. If x is not non-decreasing the rows are
// co-sorted by x so every branch keeps its pairing with the axis.
func ParseVoltammogram(r io.Reader, source string, opts *Options) (*Voltammogram, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	mt, err := ParseMeasurementType(string(opts.MeasurementType))
	if err != nil {
		return nil, err
	}

	v := NewVoltammogram(source)
	var col1, col2 []float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= opts.SkipRows {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if opts.Comment != "" && strings.HasPrefix(line, opts.Comment) {
			continue
		}

		fields := splitFields(line, opts.Delimiter)
		if len(fields) < MinColumns {
			v.ParseErrors = append(v.ParseErrors, fmt.Sprintf("Warning: line %d has %d columns, need %d. Skipped.", lineNo, len(fields), MinColumns))
			continue
		}

		var row [MinColumns]float64
		ok := true
		for i := 0; i < MinColumns; i++ {
			val, perr := strconv.ParseFloat(fields[i], 64)
			if perr != nil || math.IsNaN(val) || math.IsInf(val, 0) {
				v.ParseErrors = append(v.ParseErrors, fmt.Sprintf("Warning: line %d column %d: %q is not a finite number. Line skipped.", lineNo, i+1, fields[i]))
				ok = false
				break
			}
			row[i] = val
		}
		if !ok {
			continue
		}
		v.X = append(v.X, row[0])
		col1 = append(col1, row[1])
		col2 = append(col2, row[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	if len(v.X) == 0 {
		return nil, fmt.Errorf("no numeric rows with at least %d columns found", MinColumns)
	}

	if mt == MeasurementReduction {
		col1, col2 = col2, col1
	}
	v.Oxidation = col1
	v.Reduction = col2

	if !isNonDecreasing(v.X) {
		SortByX(v)
		v.Resorted = true
	}
	return v, nil
}

// SortByX reorders all three sequences by ascending x, keeping equal x values in file order.
func SortByX(v *Voltammogram) {
	idx := make([]int, len(v.X))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return v.X[idx[a]] < v.X[idx[b]]
	})
	v.X = permute(v.X, idx)
	v.Oxidation = permute(v.Oxidation, idx)
	v.Reduction = permute(v.Reduction, idx)
}

func permute(src []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = src[j]
	}
	return out
}

func isNonDecreasing(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] < x[i-1] {
			return false
		}
	}
	return true
}

func splitFields(line string, delim rune) []string {
	if delim == 0 {
		return strings.Fields(line)
	}
	parts := strings.Split(line, string(delim))
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

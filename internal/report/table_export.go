package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/user/cv_analyzer_go/internal/analysis"
)

// ParameterHeaders are the columns of the results table.
var ParameterHeaders = []string{"Type", "x_peak", "y_peak", "Baseline", "H/D"}

// formatValue renders a table cell. NaN marks an empty cell.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type column struct {
	name   string
	values []float64
}

// dataColumns lists the per-sample columns present for these results, in export order.
func dataColumns(res *analysis.AnalysisResults) []column {
	cols := []column{
		{"x", res.X},
		{"y_ox", res.RawOxidation},
		{"y_red", res.RawReduction},
	}
	if res.Smoothed {
		cols = append(cols, column{"smoothed_y_ox", res.Oxidation}, column{"smoothed_y_red", res.Reduction})
	}
	if d := res.FirstDerivative; d != nil {
		cols = append(cols, column{"deriv_ox", d.Oxidation}, column{"deriv_red", d.Reduction})
	}
	if d := res.SecondDerivative; d != nil {
		cols = append(cols, column{"second_deriv_ox", d.Oxidation}, column{"second_deriv_red", d.Reduction})
	}
	return cols
}

// WriteDataTable writes one row per sample with the raw, smoothed and derivative curves.
func WriteDataTable(w io.Writer, res *analysis.AnalysisResults) error {
	cols := dataColumns(res)
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.name
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(cols))
	for row := range res.X {
		for i, c := range cols {
			record[i] = formatValue(c.values[row])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteParameterTable writes the results rows under ParameterHeaders.
func WriteParameterTable(w io.Writer, rows []analysis.ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ParameterHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Type, formatValue(r.XPeak), formatValue(r.YPeak), formatValue(r.Baseline), formatValue(r.Magnitude)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePoints writes an x, y table of crossing points.
func WritePoints(w io.Writer, pts []analysis.Point) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"x", "y"}); err != nil {
		return err
	}
	for _, p := range pts {
		if err := cw.Write([]string{formatValue(p.X), formatValue(p.Y)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the tabular export for res into dir and returns the paths written.
// Crossing tables are only written when they hold at least one point.
func ExportCSV(dir, prefix string, res *analysis.AnalysisResults) ([]string, error) {
	if res == nil || len(res.X) == 0 {
		return nil, fmt.Errorf("no analysis results to export")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, name))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := fn(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
		written = append(written, path)
		return nil
	}

	if err := write("data", func(w io.Writer) error { return WriteDataTable(w, res) }); err != nil {
		return written, err
	}
	if err := write("parameters", func(w io.Writer) error { return WriteParameterTable(w, res.Rows) }); err != nil {
		return written, err
	}

	type pointTable struct {
		name string
		pts  []analysis.Point
	}
	tables := []pointTable{{"intersections", res.Intersections}}
	if d := res.FirstDerivative; d != nil {
		tables = append(tables, pointTable{"first_derivative_zeros", d.Zeros()})
	}
	if d := res.SecondDerivative; d != nil {
		tables = append(tables, pointTable{"second_derivative_zeros", d.Zeros()})
	}
	for _, t := range tables {
		if len(t.pts) == 0 {
			continue
		}
		if err := write(t.name, func(w io.Writer) error { return WritePoints(w, t.pts) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

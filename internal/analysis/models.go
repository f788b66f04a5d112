package analysis

import "math"

// Point is a crossing or intersection location.
type Point struct {
	X float64
	Y float64
}

// Range is a closed interval on the x axis.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether Min <= x <= Max.
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// Normalized returns the range with its bounds ordered.
func (r Range) Normalized() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// selectRange returns the indices i with r.Contains(x[i]), in order.
func selectRange(x []float64, r Range) []int {
	idx := make([]int, 0, len(x))
	for i, v := range x {
		if r.Contains(v) {
			idx = append(idx, i)
		}
	}
	return idx
}

// ResultRow is one line of the parameter table. Cells without a value are NaN.
type ResultRow struct {
	Type      string
	XPeak     float64
	YPeak     float64
	Baseline  float64
	Magnitude float64 // height for oxidation, depth for reduction
}

// Result row types, in the order the analyzer emits them.
const (
	RowOxidation       = "Oxidation"
	RowReduction       = "Reduction"
	RowHalfWave        = "E1/2"
	RowZeroCrossing    = "Zero crossing"
	RowZeroCrossing2nd = "Zero crossing 2nd"
)

func newRow(typ string, x, y float64) ResultRow {
	return ResultRow{Type: typ, XPeak: x, YPeak: y, Baseline: math.NaN(), Magnitude: math.NaN()}
}

// DerivativeResults holds one derivative order of both branches.
// Oxidation and Reduction are the raw derivatives; the Search curves are what the
// crossing scan ran on (smoothed when that stage smooths, otherwise the same slices).
type DerivativeResults struct {
	Oxidation       []float64
	Reduction       []float64
	SearchOxidation []float64
	SearchReduction []float64
	Smoothed        bool
	Range           Range
	OxidationZeros  []Point
	ReductionZeros  []Point
}

// Zeros returns oxidation crossings followed by reduction crossings.
func (d *DerivativeResults) Zeros() []Point {
	out := make([]Point, 0, len(d.OxidationZeros)+len(d.ReductionZeros))
	out = append(out, d.OxidationZeros...)
	return append(out, d.ReductionZeros...)
}

// AnalysisResults is everything one analysis session produces.
type AnalysisResults struct {
	X            []float64
	RawOxidation []float64
	RawReduction []float64
	Oxidation    []float64 // smoothed when Smoothed, otherwise copies of the raw branches
	Reduction    []float64
	Smoothed     bool
	Smoothing    SmoothingParams // normalized parameters actually applied

	OxidationBaseline Baseline
	ReductionBaseline Baseline
	OxidationPeak     *PeakResult
	ReductionPeak     *PeakResult
	HalfWavePotential float64
	HasHalfWave       bool

	FirstDerivative   *DerivativeResults
	SecondDerivative  *DerivativeResults
	Intersections     []Point
	IntersectionRange Range
	HasIntersections  bool

	Rows           []ResultRow
	AnalysisErrors []string
}

// NewAnalysisResults initializes an empty result set.
func NewAnalysisResults() *AnalysisResults {
	return &AnalysisResults{
		Rows:           make([]ResultRow, 0),
		AnalysisErrors: make([]string, 0),
	}
}

package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Baseline is a straight reference line through (X1, Y1) and (X2, Y2).
// When X1 == X2 the line is degenerate: its slope is taken as 0 and it evaluates to Y1.
//
// Endpoint moves are evaluated on a snapshot of the endpoints taken at construction
// or at the last Commit, never on the previous intermediate state.
type Baseline struct {
	X1, Y1 float64
	X2, Y2 float64

	orig     [4]float64
	anchored bool
}

// NewBaseline returns a baseline anchored on the given endpoints.
func NewBaseline(x1, y1, x2, y2 float64) Baseline {
	b := Baseline{X1: x1, Y1: y1, X2: x2, Y2: y2}
	b.Commit()
	return b
}

// IsDegenerate reports whether both endpoints share the same x.
func (b Baseline) IsDegenerate() bool {
	return b.X1 == b.X2
}

// Slope of the line, 0 when degenerate.
func (b Baseline) Slope() float64 {
	return slope(b.X1, b.Y1, b.X2, b.Y2)
}

// ValueAt evaluates the line at x.
func (b Baseline) ValueAt(x float64) float64 {
	if b.IsDegenerate() {
		return b.Y1
	}
	return b.Y1 + (b.Y2-b.Y1)*(x-b.X1)/(b.X2-b.X1)
}

// Region is the x interval spanned by the endpoints, in ascending order.
func (b Baseline) Region() Range {
	return Range{Min: b.X1, Max: b.X2}.Normalized()
}

// MoveX1 sets X1 and recomputes Y1 on the snapshot line.
func (b *Baseline) MoveX1(x float64) {
	b.ensureAnchored()
	x1, y1 := b.orig[0], b.orig[1]
	b.X1 = x
	b.Y1 = y1 + b.origSlope()*(x-x1)
}

// MoveX2 sets X2 and recomputes Y2 on the snapshot line.
func (b *Baseline) MoveX2(x float64) {
	b.ensureAnchored()
	x2, y2 := b.orig[2], b.orig[3]
	b.X2 = x
	b.Y2 = y2 + b.origSlope()*(x-x2)
}

// Move sets both x endpoints, keeping the snapshot slope.
func (b *Baseline) Move(x1, x2 float64) {
	b.MoveX1(x1)
	b.MoveX2(x2)
}

// Commit makes the current endpoints the snapshot for later moves.
func (b *Baseline) Commit() {
	b.orig = [4]float64{b.X1, b.Y1, b.X2, b.Y2}
	b.anchored = true
}

func (b *Baseline) ensureAnchored() {
	if !b.anchored {
		b.Commit()
	}
}

func (b *Baseline) origSlope() float64 {
	return slope(b.orig[0], b.orig[1], b.orig[2], b.orig[3])
}

func slope(x1, y1, x2, y2 float64) float64 {
	if x1 == x2 {
		return 0
	}
	return (y2 - y1) / (x2 - x1)
}

// Interpolate evaluates the piecewise-linear curve (x, y) at xq. x must be non-decreasing.
// Outside the sampled interval the nearest end value is returned.
func Interpolate(x, y []float64, xq float64) (float64, error) {
	if err := checkSameLength("x and y", len(x), len(y)); err != nil {
		return 0, err
	}
	n := len(x)
	if n == 0 {
		return 0, fmt.Errorf("%w: cannot interpolate an empty curve", ErrInvalidInput)
	}
	if math.IsNaN(xq) {
		return 0, fmt.Errorf("%w: cannot interpolate at NaN", ErrInvalidInput)
	}
	if xq <= x[0] {
		return y[0], nil
	}
	if xq >= x[n-1] {
		return y[n-1], nil
	}
	// first index with x[j] > xq; 1 <= j <= n-1 here
	j := sort.Search(n, func(i int) bool { return x[i] > xq })
	i := j - 1
	return y[i] + (y[j]-y[i])*(xq-x[i])/(x[j]-x[i]), nil
}

// BaselineFromCurve places a baseline whose endpoints lie on the curve (x, y) at xa and xb.
func BaselineFromCurve(x, y []float64, xa, xb float64) (Baseline, error) {
	ya, err := Interpolate(x, y, xa)
	if err != nil {
		return Baseline{}, err
	}
	yb, err := Interpolate(x, y, xb)
	if err != nil {
		return Baseline{}, err
	}
	return NewBaseline(xa, ya, xb, yb), nil
}

// DefaultBaselines places flat baselines at the lowest current of both branches:
// the oxidation one over the lower half of the x extent, the reduction one over the upper half.
func DefaultBaselines(x, oxidation, reduction []float64) (Baseline, Baseline, error) {
	if err := checkSameLength("x, oxidation and reduction", len(x), len(oxidation), len(reduction)); err != nil {
		return Baseline{}, Baseline{}, err
	}
	if len(x) == 0 {
		return Baseline{}, Baseline{}, fmt.Errorf("%w: no samples", ErrInvalidInput)
	}
	xMin, xMax := floats.Min(x), floats.Max(x)
	yMin := min(floats.Min(oxidation), floats.Min(reduction))
	mid := (xMin + xMax) / 2
	return NewBaseline(xMin, yMin, mid, yMin), NewBaseline(mid, yMin, xMax, yMin), nil
}

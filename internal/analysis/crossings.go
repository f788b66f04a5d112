package analysis

import "gonum.org/v1/gonum/floats"

// ZeroCrossings finds where y changes sign over the samples with x in r.
// Each adjacent pair (i, i+1) of the selection is inspected in order: an exact zero
// at i is reported at x[i]; a strict sign change is linearly interpolated.
// Returned points have Y == 0. An empty selection gives an empty slice.
func ZeroCrossings(x, y []float64, r Range) ([]Point, error) {
	if err := checkSameLength("x and y", len(x), len(y)); err != nil {
		return nil, err
	}
	return scanSignChanges(x, y, nil, r), nil
}

// Intersections finds where curve1 and curve2 cross over the samples with x in r,
// using the same scan as ZeroCrossings on curve1-curve2. Y is taken from curve1,
// interpolated with the same ratio as x.
func Intersections(x, curve1, curve2 []float64, r Range) ([]Point, error) {
	if err := checkSameLength("x, curve1 and curve2", len(x), len(curve1), len(curve2)); err != nil {
		return nil, err
	}
	d := make([]float64, len(curve1))
	floats.SubTo(d, curve1, curve2)
	return scanSignChanges(x, d, curve1, r), nil
}

// scanSignChanges walks the in-range samples of d. When value is nil the reported Y is 0.
//
// A run of exact zeros is reported once, at its first sample. An exact zero whose next
// pair changes sign yields two nearby points; they are not merged. A zero on the last
// selected sample is never reported because it only appears as the right-hand side of a pair.
func scanSignChanges(x, d, value []float64, r Range) []Point {
	idx := selectRange(x, r)
	points := make([]Point, 0)
	inZeroRun := false
	for k := 0; k+1 < len(idx); k++ {
		i, j := idx[k], idx[k+1]
		startsRun := d[i] == 0 && !inZeroRun
		inZeroRun = d[i] == 0
		switch {
		case d[i] == 0:
			if !startsRun {
				continue
			}
			y := 0.0
			if value != nil {
				y = value[i]
			}
			points = append(points, Point{X: x[i], Y: y})
		case d[i]*d[j] < 0:
			ratio := d[i] / (d[i] - d[j])
			y := 0.0
			if value != nil {
				y = value[i] + ratio*(value[j]-value[i])
			}
			points = append(points, Point{X: x[i] + ratio*(x[j]-x[i]), Y: y})
		}
	}
	return points
}

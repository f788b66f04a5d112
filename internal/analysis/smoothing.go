package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SmoothingParams are the Savitzky-Golay window length and polynomial degree for one call.
type SmoothingParams struct {
	WindowLength int
	PolyDegree   int
}

// Normalize adapts the window to a series of n samples: an even window grows by one,
// and a window longer than the series shrinks to the largest odd length that fits.
// PolyDegree is left alone; Smooth rejects it if it no longer fits the window.
func (p SmoothingParams) Normalize(n int) SmoothingParams {
	w := p.WindowLength
	if w%2 == 0 {
		w++
	}
	if w > n {
		if n%2 == 1 {
			w = n
		} else {
			w = n - 1
		}
	}
	return SmoothingParams{WindowLength: w, PolyDegree: p.PolyDegree}
}

// Smooth applies a Savitzky-Golay filter to y after normalizing params against len(y).
// Interior samples use the centred least-squares polynomial; the first and last
// WindowLength/2 samples are evaluated on the polynomial fitted to the first and last
// full window. The input is not modified. A failure is a *SmoothingError.
func Smooth(y []float64, params SmoothingParams) ([]float64, error) {
	n := len(y)
	p := params.Normalize(n)
	fail := func(reason string) error {
		return &SmoothingError{Samples: n, WindowLength: p.WindowLength, PolyDegree: p.PolyDegree, Reason: reason}
	}

	switch {
	case n < 3:
		return nil, fail("need at least 3 samples")
	case p.WindowLength < 1:
		return nil, fail("window length must be positive")
	case p.PolyDegree < 0:
		return nil, fail("polynomial degree must not be negative")
	case p.PolyDegree >= p.WindowLength:
		return nil, fail("polynomial degree must be less than window length")
	}

	h, err := projection(p.WindowLength, p.PolyDegree)
	if err != nil {
		return nil, fail(err.Error())
	}

	w := p.WindowLength
	half := w / 2
	out := make([]float64, n)

	centre := h.RawRowView(half)
	for i := half; i < n-half; i++ {
		out[i] = floats.Dot(centre, y[i-half:i+half+1])
	}
	for i := 0; i < half; i++ {
		out[i] = floats.Dot(h.RawRowView(i), y[:w])
	}
	tail := y[n-w:]
	for r := half + 1; r < w; r++ {
		out[n-w+r] = floats.Dot(h.RawRowView(r), tail)
	}
	return out, nil
}

// SmoothPair smooths two curves with the same parameters so they stay comparable.
// If either curve fails, neither is smoothed.
func SmoothPair(a, b []float64, params SmoothingParams) ([]float64, []float64, error) {
	sa, err := Smooth(a, params)
	if err != nil {
		return nil, nil, err
	}
	sb, err := Smooth(b, params)
	if err != nil {
		return nil, nil, err
	}
	return sa, sb, nil
}

// projection returns the w×w least-squares hat matrix for a degree-deg polynomial over
// w equally spaced points. Row i maps a window of samples to the fitted value at point i.
// Abscissae are scaled to [-1, 1] to keep the Vandermonde matrix well conditioned;
// the projection does not depend on the scaling.
func projection(w, deg int) (*mat.Dense, error) {
	half := w / 2
	scale := 1.0
	if half > 0 {
		scale = float64(half)
	}

	a := mat.NewDense(w, deg+1, nil)
	for j := 0; j < w; j++ {
		t := float64(j-half) / scale
		v := 1.0
		for k := 0; k <= deg; k++ {
			a.Set(j, k, v)
			v *= t
		}
	}

	eye := mat.NewDiagDense(w, nil)
	for i := 0; i < w; i++ {
		eye.SetDiag(i, 1)
	}
	ident := mat.DenseCopyOf(eye)

	var pinv mat.Dense
	if err := pinv.Solve(a, ident); err != nil {
		return nil, fmt.Errorf("least-squares fit: %w", err)
	}

	var h mat.Dense
	h.Mul(a, &pinv)
	for _, v := range h.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("least-squares fit produced non-finite coefficients")
		}
	}
	return &h, nil
}

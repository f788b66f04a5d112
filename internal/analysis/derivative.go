package analysis

import "fmt"

// FirstDerivative returns dy/dx by central differences that account for uneven spacing.
// The first and last samples use one-sided differences. At least two samples are needed.
// Repeated x values divide by zero and yield Inf or NaN at the affected samples.
func FirstDerivative(x, y []float64) ([]float64, error) {
	if err := checkSameLength("x and y", len(x), len(y)); err != nil {
		return nil, err
	}
	n := len(y)
	if n < 2 {
		return nil, fmt.Errorf("%w: derivative needs at least 2 samples, got %d", ErrInvalidInput, n)
	}

	g := make([]float64, n)
	g[0] = (y[1] - y[0]) / (x[1] - x[0])
	g[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]
		g[i] = (hs*hs*y[i+1] + (hd*hd-hs*hs)*y[i] - hd*hd*y[i-1]) / (hs * hd * (hd + hs))
	}
	return g, nil
}

// SecondDerivative applies FirstDerivative twice.
func SecondDerivative(x, y []float64) ([]float64, error) {
	d1, err := FirstDerivative(x, y)
	if err != nil {
		return nil, err
	}
	return FirstDerivative(x, d1)
}

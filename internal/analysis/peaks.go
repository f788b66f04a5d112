package analysis

import "fmt"

// PeakMode selects which extremum ExtractPeak looks for.
type PeakMode int

const (
	// PeakMax finds the largest value (oxidation peaks); magnitude is a height.
	PeakMax PeakMode = iota
	// PeakMin finds the smallest value (reduction peaks); magnitude is a depth.
	PeakMin
)

func (m PeakMode) String() string {
	switch m {
	case PeakMax:
		return "max"
	case PeakMin:
		return "min"
	}
	return fmt.Sprintf("PeakMode(%d)", int(m))
}

// PeakResult describes a baseline-relative peak.
type PeakResult struct {
	Mode          PeakMode
	XPeak         float64
	YPeak         float64
	BaselineValue float64
	Magnitude     float64   // YPeak-BaselineValue for PeakMax, BaselineValue-YPeak for PeakMin
	X             []float64 // x of the selected samples
	HeightCurve   []float64 // y - baseline over the selected samples
}

// ExtractPeak finds the extremum of y among samples with x in r and measures it against
// baseline. It returns nil and no error when the range holds no samples. Ties resolve to
// the first sample.
func ExtractPeak(x, y []float64, r Range, baseline Baseline, mode PeakMode) (*PeakResult, error) {
	if err := checkSameLength("x and y", len(x), len(y)); err != nil {
		return nil, err
	}
	if mode != PeakMax && mode != PeakMin {
		return nil, fmt.Errorf("%w: unknown peak mode %v", ErrInvalidInput, mode)
	}
	idx := selectRange(x, r)
	if len(idx) == 0 {
		return nil, nil
	}

	best := idx[0]
	for _, i := range idx[1:] {
		if (mode == PeakMax && y[i] > y[best]) || (mode == PeakMin && y[i] < y[best]) {
			best = i
		}
	}

	res := &PeakResult{
		Mode:          mode,
		XPeak:         x[best],
		YPeak:         y[best],
		BaselineValue: baseline.ValueAt(x[best]),
		X:             make([]float64, len(idx)),
		HeightCurve:   make([]float64, len(idx)),
	}
	if mode == PeakMax {
		res.Magnitude = res.YPeak - res.BaselineValue
	} else {
		res.Magnitude = res.BaselineValue - res.YPeak
	}
	for k, i := range idx {
		res.X[k] = x[i]
		res.HeightCurve[k] = y[i] - baseline.ValueAt(x[i])
	}
	return res, nil
}

// HalfWavePotential is the midpoint between an oxidation and a reduction peak position.
// ok is false unless both peaks are present.
func HalfWavePotential(oxidation, reduction *PeakResult) (e float64, ok bool) {
	if oxidation == nil || reduction == nil {
		return 0, false
	}
	return (oxidation.XPeak + reduction.XPeak) / 2, true
}

package analysis

import (
	"fmt"
	"math"
	"slices"

	"github.com/user/cv_analyzer_go/internal/config"
	"github.com/user/cv_analyzer_go/internal/parser"

	"gonum.org/v1/gonum/floats"
)

// BaselineFromConfig builds an anchored baseline from configured endpoints. An endpoint
// without a y value is placed on the curve (x, y) at its x.
func BaselineFromConfig(c config.BaselineConfig, x, y []float64) (Baseline, error) {
	if c.X1 == nil || c.X2 == nil {
		return Baseline{}, fmt.Errorf("%w: baseline needs both x1 and x2", ErrInvalidInput)
	}
	if c.Y1 == nil && c.Y2 == nil {
		return BaselineFromCurve(x, y, *c.X1, *c.X2)
	}
	endpoint := func(xv float64, yv *float64) (float64, error) {
		if yv != nil {
			return *yv, nil
		}
		return Interpolate(x, y, xv)
	}
	y1, err := endpoint(*c.X1, c.Y1)
	if err != nil {
		return Baseline{}, err
	}
	y2, err := endpoint(*c.X2, c.Y2)
	if err != nil {
		return Baseline{}, err
	}
	return NewBaseline(*c.X1, y1, *c.X2, y2), nil
}

// ParamsFromConfig converts a smoothing section to filter parameters.
func ParamsFromConfig(c config.SmoothingConfig) SmoothingParams {
	return SmoothingParams{WindowLength: c.WindowLength, PolyDegree: c.PolyDegree}
}

// FullRange spans every sample of x. x must not be empty.
func FullRange(x []float64) Range {
	return Range{Min: floats.Min(x), Max: floats.Max(x)}
}

func rangeOrFull(rc *config.RangeConfig, x []float64) Range {
	if rc == nil {
		return FullRange(x)
	}
	return Range{Min: rc.Min, Max: rc.Max}
}

// Analyze runs one analysis session over v:
// smoothing, baseline-relative peaks and E1/2, derivatives with their zero crossings,
// and optionally the intersections of the two branches.
// Empty ranges, smoothing failures and degenerate baselines are recorded in
// AnalysisErrors and never abort the session.
func Analyze(v *parser.Voltammogram, cfg config.Analysis) (*AnalysisResults, error) {
	if v == nil || v.Len() == 0 {
		return nil, fmt.Errorf("%w: voltammogram is nil or empty, cannot analyze", ErrInvalidInput)
	}
	if err := checkSameLength("x, oxidation and reduction", len(v.X), len(v.Oxidation), len(v.Reduction)); err != nil {
		return nil, err
	}

	results := NewAnalysisResults()
	results.X = slices.Clone(v.X)
	results.RawOxidation = slices.Clone(v.Oxidation)
	results.RawReduction = slices.Clone(v.Reduction)
	results.Oxidation = slices.Clone(v.Oxidation)
	results.Reduction = slices.Clone(v.Reduction)

	if cfg.Smoothing.Enabled {
		params := ParamsFromConfig(cfg.Smoothing)
		results.Smoothing = params.Normalize(len(results.X))
		so, sr, err := SmoothPair(results.RawOxidation, results.RawReduction, params)
		if err != nil {
			results.warnf("Smoothing skipped, using raw data: %v", err)
		} else {
			results.Oxidation, results.Reduction = so, sr
			results.Smoothed = true
		}
	}

	if err := results.measurePeaks(cfg.Baselines); err != nil {
		return nil, err
	}

	if cfg.Derivatives.First.Enabled {
		d, err := results.derivativeStage("First derivative", FirstDerivative, cfg.Derivatives.First)
		if err != nil {
			results.warnf("First derivative skipped: %v", err)
		} else {
			results.FirstDerivative = d
			if zeros := d.Zeros(); len(zeros) > 0 {
				results.Rows = append(results.Rows, newRow(RowZeroCrossing, zeros[0].X, zeros[0].Y))
			}
		}
	}
	if cfg.Derivatives.Second.Enabled {
		d, err := results.derivativeStage("Second derivative", SecondDerivative, cfg.Derivatives.Second)
		if err != nil {
			results.warnf("Second derivative skipped: %v", err)
		} else {
			results.SecondDerivative = d
			for _, z := range d.Zeros() {
				results.Rows = append(results.Rows, newRow(RowZeroCrossing2nd, z.X, z.Y))
			}
		}
	}

	if cfg.Intersections.Enabled {
		r := rangeOrFull(cfg.Intersections.Range, results.X)
		pts, err := Intersections(results.X, results.Oxidation, results.Reduction, r)
		if err != nil {
			return nil, err
		}
		results.Intersections = pts
		results.IntersectionRange = r
		results.HasIntersections = true
		if len(pts) == 0 {
			results.warnf("Intersections: no crossing of the branches in [%.3f, %.3f].", r.Min, r.Max)
		}
	}

	return results, nil
}

func (res *AnalysisResults) warnf(format string, args ...any) {
	res.AnalysisErrors = append(res.AnalysisErrors, fmt.Sprintf(format, args...))
}

// measurePeaks places the baselines and extracts the oxidation maximum, the reduction
// minimum and E1/2 from the current (possibly smoothed) branches.
func (res *AnalysisResults) measurePeaks(bc config.BaselinesConfig) error {
	defOx, defRed, err := DefaultBaselines(res.X, res.Oxidation, res.Reduction)
	if err != nil {
		return err
	}
	res.OxidationBaseline = defOx
	if bc.Oxidation != nil {
		if res.OxidationBaseline, err = BaselineFromConfig(*bc.Oxidation, res.X, res.Oxidation); err != nil {
			return fmt.Errorf("oxidation baseline: %w", err)
		}
	}
	res.ReductionBaseline = defRed
	if bc.Reduction != nil {
		if res.ReductionBaseline, err = BaselineFromConfig(*bc.Reduction, res.X, res.Reduction); err != nil {
			return fmt.Errorf("reduction baseline: %w", err)
		}
	}

	branches := []struct {
		name     string
		y        []float64
		baseline Baseline
		mode     PeakMode
		dst      **PeakResult
	}{
		{RowOxidation, res.Oxidation, res.OxidationBaseline, PeakMax, &res.OxidationPeak},
		{RowReduction, res.Reduction, res.ReductionBaseline, PeakMin, &res.ReductionPeak},
	}
	for _, b := range branches {
		if b.baseline.IsDegenerate() {
			res.warnf("%s: baseline endpoints share x=%.3f, treating it as flat at %.3f.", b.name, b.baseline.X1, b.baseline.Y1)
		}
		region := b.baseline.Region()
		peak, err := ExtractPeak(res.X, b.y, region, b.baseline, b.mode)
		if err != nil {
			return err
		}
		if peak == nil {
			res.warnf("%s: no data in range [%.3f, %.3f].", b.name, region.Min, region.Max)
			continue
		}
		*b.dst = peak
		res.Rows = append(res.Rows, ResultRow{
			Type:      b.name,
			XPeak:     peak.XPeak,
			YPeak:     peak.YPeak,
			Baseline:  peak.BaselineValue,
			Magnitude: peak.Magnitude,
		})
	}

	if e, ok := HalfWavePotential(res.OxidationPeak, res.ReductionPeak); ok {
		res.HalfWavePotential = e
		res.HasHalfWave = true
		res.Rows = append(res.Rows, newRow(RowHalfWave, e, math.NaN()))
	}
	return nil
}

// derivativeStage differentiates both branches, optionally smooths the derivatives for
// the crossing search, and collects the zero crossings of each.
func (res *AnalysisResults) derivativeStage(name string, diff func(x, y []float64) ([]float64, error), sc config.DerivativeStageConfig) (*DerivativeResults, error) {
	dOx, err := diff(res.X, res.Oxidation)
	if err != nil {
		return nil, err
	}
	dRed, err := diff(res.X, res.Reduction)
	if err != nil {
		return nil, err
	}

	d := &DerivativeResults{
		Oxidation:       dOx,
		Reduction:       dRed,
		SearchOxidation: dOx,
		SearchReduction: dRed,
		Range:           rangeOrFull(sc.Range, res.X),
	}
	if sc.Smoothing.Enabled {
		so, sr, err := SmoothPair(dOx, dRed, ParamsFromConfig(sc.Smoothing))
		if err != nil {
			res.warnf("%s: smoothing skipped, using unsmoothed curves: %v", name, err)
		} else {
			d.SearchOxidation, d.SearchReduction = so, sr
			d.Smoothed = true
		}
	}

	if d.OxidationZeros, err = ZeroCrossings(res.X, d.SearchOxidation, d.Range); err != nil {
		return nil, err
	}
	if d.ReductionZeros, err = ZeroCrossings(res.X, d.SearchReduction, d.Range); err != nil {
		return nil, err
	}
	if len(d.OxidationZeros)+len(d.ReductionZeros) == 0 {
		res.warnf("%s: no zero crossings in [%.3f, %.3f].", name, d.Range.Min, d.Range.Max)
	}
	return d, nil
}

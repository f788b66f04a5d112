package analysis_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/user/cv_analyzer_go/internal/analysis"
	"github.com/user/cv_analyzer_go/internal/config"
	"github.com/user/cv_analyzer_go/internal/parser"
)

// syntheticCV builds a voltammogram over [-200, 300] with a Gaussian oxidation peak at
// +100 (height 10 over an offset of 1) and a Gaussian reduction trough at -50 (depth 8
// under -1). The tails stay well above rounding so no derivative is flat.
func syntheticCV() *parser.Voltammogram {
	v := parser.NewVoltammogram("synthetic")
	for i := 0; i <= 100; i++ {
		x := -200 + 5*float64(i)
		v.X = append(v.X, x)
		v.Oxidation = append(v.Oxidation, 1+10*gauss(x-100, 50))
		v.Reduction = append(v.Reduction, -1-8*gauss(x+50, 50))
	}
	return v
}

func gauss(d, sigma float64) float64 {
	return math.Exp(-d * d / (2 * sigma * sigma))
}

// AnalyzerSuite exercises the full session over synthetic data.
type AnalyzerSuite struct {
	suite.Suite
	v   *parser.Voltammogram
	cfg config.Analysis
}

func (s *AnalyzerSuite) SetupTest() {
	s.v = syntheticCV()
	s.cfg = config.Default().Analysis
	s.cfg.Smoothing.Enabled = false
	s.cfg.Baselines.Oxidation = config.FixedBaseline(0, 1, 300, 1)
	s.cfg.Baselines.Reduction = config.FixedBaseline(-200, -1, 100, -1)
}

// TestPeaksAndHalfWave: both peaks found, E1/2 is their midpoint.
func (s *AnalyzerSuite) TestPeaksAndHalfWave() {
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	require.NotNil(s.T(), res.OxidationPeak)
	s.Equal(100.0, res.OxidationPeak.XPeak)
	s.InDelta(10.0, res.OxidationPeak.Magnitude, 1e-9)

	require.NotNil(s.T(), res.ReductionPeak)
	s.Equal(-50.0, res.ReductionPeak.XPeak)
	s.InDelta(8.0, res.ReductionPeak.Magnitude, 1e-9)

	s.True(res.HasHalfWave)
	s.Equal(25.0, res.HalfWavePotential)
	s.False(res.Smoothed)
	s.Equal(res.RawOxidation, res.Oxidation)
}

// TestDerivativeCrossings: the first derivative vanishes at each peak.
func (s *AnalyzerSuite) TestDerivativeCrossings() {
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	require.NotNil(s.T(), res.FirstDerivative)
	s.Equal([]analysis.Point{{X: 100, Y: 0}}, res.FirstDerivative.OxidationZeros)
	s.Equal([]analysis.Point{{X: -50, Y: 0}}, res.FirstDerivative.ReductionZeros)
	s.Equal([]analysis.Point{{X: 100, Y: 0}, {X: -50, Y: 0}}, res.FirstDerivative.Zeros())

	require.NotNil(s.T(), res.SecondDerivative)
	// Inflection points of a Gaussian sit one sigma either side of the peak.
	ox := res.SecondDerivative.OxidationZeros
	require.Len(s.T(), ox, 2)
	s.InDelta(50, ox[0].X, 5)
	s.InDelta(150, ox[1].X, 5)
}

// TestResultRows: rows appear in table order and carry NaN for empty cells.
func (s *AnalyzerSuite) TestResultRows() {
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	types := make([]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		types = append(types, r.Type)
	}
	s.Equal([]string{
		analysis.RowOxidation, analysis.RowReduction, analysis.RowHalfWave,
		analysis.RowZeroCrossing,
		analysis.RowZeroCrossing2nd, analysis.RowZeroCrossing2nd,
		analysis.RowZeroCrossing2nd, analysis.RowZeroCrossing2nd,
	}, types)

	half := res.Rows[2]
	s.Equal(25.0, half.XPeak)
	s.True(math.IsNaN(half.YPeak))
	s.True(math.IsNaN(half.Baseline))
	s.True(math.IsNaN(half.Magnitude))

	zc := res.Rows[3]
	s.Equal(100.0, zc.XPeak)
	s.Equal(0.0, zc.YPeak)
}

// TestSmoothingApplied: smoothing keeps the peak where it is.
func (s *AnalyzerSuite) TestSmoothingApplied() {
	s.cfg.Smoothing = config.SmoothingConfig{Enabled: true, WindowLength: 14, PolyDegree: 3}
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	s.True(res.Smoothed)
	s.Equal(15, res.Smoothing.WindowLength)
	s.NotEqual(res.RawOxidation, res.Oxidation)
	s.Equal(100.0, res.OxidationPeak.XPeak)
	s.InDelta(10.0, res.OxidationPeak.Magnitude, 0.5)
	s.Empty(filterWarnings(res, "Smoothing"))
}

// TestSmoothingFailureFallsBack: an impossible degree leaves the raw curves in place.
func (s *AnalyzerSuite) TestSmoothingFailureFallsBack() {
	s.cfg.Smoothing = config.SmoothingConfig{Enabled: true, WindowLength: 301, PolyDegree: 250}
	s.v.X, s.v.Oxidation, s.v.Reduction = s.v.X[:20], s.v.Oxidation[:20], s.v.Reduction[:20]

	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)
	s.False(res.Smoothed)
	s.Equal(res.RawOxidation, res.Oxidation)
	s.Len(filterWarnings(res, "Smoothing skipped"), 1)
}

// TestEmptyPeakRange: no samples under the baseline means no peak and no E1/2.
func (s *AnalyzerSuite) TestEmptyPeakRange() {
	s.cfg.Baselines.Oxidation = config.FixedBaseline(1000, 0, 2000, 0)
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	s.Nil(res.OxidationPeak)
	s.NotNil(res.ReductionPeak)
	s.False(res.HasHalfWave)
	s.Len(filterWarnings(res, "Oxidation: no data in range"), 1)
	for _, r := range res.Rows {
		s.NotEqual(analysis.RowHalfWave, r.Type)
	}
}

// TestDegenerateBaselineWarns: equal x endpoints are a warning, not an error.
func (s *AnalyzerSuite) TestDegenerateBaselineWarns() {
	s.cfg.Baselines.Oxidation = config.FixedBaseline(100, 2, 100, 50)
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	require.NotNil(s.T(), res.OxidationPeak)
	s.Equal(2.0, res.OxidationPeak.BaselineValue)
	s.Len(filterWarnings(res, "share x"), 1)
}

// TestOnCurveBaseline: endpoints without y values sit on the analyzed branch.
func (s *AnalyzerSuite) TestOnCurveBaseline() {
	s.cfg.Baselines.Oxidation = config.OnCurveBaseline(0, 300)
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	b := res.OxidationBaseline
	s.InDelta(1+10*gauss(-100, 50), b.Y1, 1e-9)
	s.InDelta(1+10*gauss(200, 50), b.Y2, 1e-9)
	require.NotNil(s.T(), res.OxidationPeak)
	s.Equal(100.0, res.OxidationPeak.XPeak)
	s.InDelta(b.ValueAt(100), res.OxidationPeak.BaselineValue, 1e-12)
}

// TestOnCurveBaselineFollowsSmoothing: anchors are read from the smoothed branch.
func (s *AnalyzerSuite) TestOnCurveBaselineFollowsSmoothing() {
	s.cfg.Smoothing.Enabled = true
	s.cfg.Baselines.Oxidation = config.OnCurveBaseline(2.5, 102.5)
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)
	require.True(s.T(), res.Smoothed)

	y1, err := analysis.Interpolate(res.X, res.Oxidation, 2.5)
	require.NoError(s.T(), err)
	y2, err := analysis.Interpolate(res.X, res.Oxidation, 102.5)
	require.NoError(s.T(), err)
	s.Equal(y1, res.OxidationBaseline.Y1)
	s.Equal(y2, res.OxidationBaseline.Y2)
}

// TestHalfAnchoredBaseline: a given y is kept, a missing one comes from the curve.
func (s *AnalyzerSuite) TestHalfAnchoredBaseline() {
	x1, y1, x2 := -200.0, -3.0, 100.0
	s.cfg.Baselines.Reduction = &config.BaselineConfig{X1: &x1, Y1: &y1, X2: &x2}
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	s.Equal(-3.0, res.ReductionBaseline.Y1)
	s.InDelta(-1-8*gauss(150, 50), res.ReductionBaseline.Y2, 1e-9)
}

// TestBaselineWithoutX: a programmatic entry missing an x is rejected.
func (s *AnalyzerSuite) TestBaselineWithoutX() {
	x1 := 0.0
	s.cfg.Baselines.Oxidation = &config.BaselineConfig{X1: &x1}
	_, err := analysis.Analyze(s.v, s.cfg)
	s.ErrorIs(err, analysis.ErrInvalidInput)
	s.ErrorContains(err, "oxidation baseline")
}

// TestDefaultBaselines: without configured baselines the data extent decides.
func (s *AnalyzerSuite) TestDefaultBaselines() {
	s.cfg.Baselines = config.BaselinesConfig{}
	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)

	s.Equal(analysis.Range{Min: -200, Max: 50}, res.OxidationBaseline.Region())
	s.Equal(analysis.Range{Min: 50, Max: 300}, res.ReductionBaseline.Region())
	// Lowest current of both branches.
	s.InDelta(-9.0, res.OxidationBaseline.Y1, 1e-9)
}

// TestDerivativeRangeAndStageSmoothing: a configured range limits the crossing scan.
func (s *AnalyzerSuite) TestDerivativeRangeAndStageSmoothing() {
	s.cfg.Derivatives.First.Range = &config.RangeConfig{Min: 0, Max: 300}
	s.cfg.Derivatives.First.Smoothing = config.SmoothingConfig{Enabled: true, WindowLength: 5, PolyDegree: 2}
	s.cfg.Derivatives.Second.Enabled = false

	res, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), res.FirstDerivative)
	s.True(res.FirstDerivative.Smoothed)
	s.Equal(analysis.Range{Min: 0, Max: 300}, res.FirstDerivative.Range)
	s.Empty(res.FirstDerivative.ReductionZeros)
	require.Len(s.T(), res.FirstDerivative.OxidationZeros, 1)
	s.InDelta(100, res.FirstDerivative.OxidationZeros[0].X, 1e-6)
	s.Nil(res.SecondDerivative)
}

// TestIntersections: crossing branches are located when enabled.
func (s *AnalyzerSuite) TestIntersections() {
	v := parser.NewVoltammogram("lines")
	v.X = []float64{0, 1, 2, 3}
	v.Oxidation = []float64{0, 1, 2, 3}
	v.Reduction = []float64{3, 2, 1, 0}
	cfg := config.Default().Analysis
	cfg.Smoothing.Enabled = false
	cfg.Intersections.Enabled = true

	res, err := analysis.Analyze(v, cfg)
	require.NoError(s.T(), err)
	s.True(res.HasIntersections)
	require.Len(s.T(), res.Intersections, 1)
	s.InDelta(1.5, res.Intersections[0].X, 1e-12)
	s.InDelta(1.5, res.Intersections[0].Y, 1e-12)
}

// TestSingleSample: too short for derivatives, still analyzable.
func (s *AnalyzerSuite) TestSingleSample() {
	v := parser.NewVoltammogram("one")
	v.X, v.Oxidation, v.Reduction = []float64{1}, []float64{2}, []float64{-2}

	res, err := analysis.Analyze(v, config.Default().Analysis)
	require.NoError(s.T(), err)
	s.False(res.Smoothed)
	s.Nil(res.FirstDerivative)
	s.Nil(res.SecondDerivative)
	s.NotEmpty(filterWarnings(res, "First derivative skipped"))
}

// TestInvalidInput: empty or ragged data is the only hard failure.
func (s *AnalyzerSuite) TestInvalidInput() {
	_, err := analysis.Analyze(nil, s.cfg)
	s.ErrorIs(err, analysis.ErrInvalidInput)

	v := parser.NewVoltammogram("ragged")
	v.X, v.Oxidation, v.Reduction = []float64{1, 2}, []float64{1}, []float64{1, 2}
	_, err = analysis.Analyze(v, s.cfg)
	s.ErrorIs(err, analysis.ErrInvalidInput)
}

// TestInputUntouched: the session never writes into the caller's slices.
func (s *AnalyzerSuite) TestInputUntouched() {
	before := syntheticCV()
	s.cfg.Smoothing.Enabled = true
	_, err := analysis.Analyze(s.v, s.cfg)
	require.NoError(s.T(), err)
	s.Equal(before.X, s.v.X)
	s.Equal(before.Oxidation, s.v.Oxidation)
	s.Equal(before.Reduction, s.v.Reduction)
}

func filterWarnings(res *analysis.AnalysisResults, substr string) []string {
	var out []string
	for _, w := range res.AnalysisErrors {
		if strings.Contains(w, substr) {
			out = append(out, w)
		}
	}
	return out
}

func TestAnalyzerSuite(t *testing.T) {
	suite.Run(t, new(AnalyzerSuite))
}

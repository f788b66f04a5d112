package report

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/user/cv_analyzer_go/internal/analysis"
	"github.com/user/cv_analyzer_go/internal/config"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart size in points.
var (
	PlotWidth  = vg.Points(800)
	PlotHeight = vg.Points(400)
)

var (
	colorOxidation = color.RGBA{R: 200, G: 30, B: 30, A: 255}
	colorReduction = color.RGBA{R: 30, G: 60, B: 200, A: 255}
	colorRaw       = color.Gray{Y: 170}
	colorHalfWave  = color.RGBA{G: 140, B: 60, A: 255}
)

func xys(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, len(x))
	for i := range x {
		pts[i] = plotter.XY{X: x[i], Y: y[i]}
	}
	return pts
}

func pointXYs(points []analysis.Point) plotter.XYs {
	pts := make(plotter.XYs, len(points))
	for i, p := range points {
		pts[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return pts
}

// chart is a plot together with its legend labels in the order they were added.
type chart struct {
	*plot.Plot
	legends []string
}

func newChart(title, xLabel, yLabel string) *chart {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return &chart{Plot: p}
}

func (c *chart) addLine(pts plotter.XYs, col color.Color, width vg.Length, dashed bool, legend string) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to create line %q: %w", legend, err)
	}
	line.Color = col
	line.LineStyle.Width = width
	if dashed {
		line.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	}
	c.Add(line)
	if legend != "" {
		c.Legend.Add(legend, line)
		c.legends = append(c.legends, legend)
	}
	return nil
}

func (c *chart) addScatter(pts plotter.XYs, col color.Color, legend string) error {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to create scatter %q: %w", legend, err)
	}
	s.GlyphStyle.Color = col
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(3)
	c.Add(s)
	c.Legend.Add(legend, s)
	c.legends = append(c.legends, legend)
	return nil
}

func (c *chart) renderPNG() ([]byte, error) {
	c.Legend.Top = true
	c.Legend.XOffs = vg.Points(10)
	writer, err := c.WriterTo(PlotWidth, PlotHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// CreateVoltammogramPlot draws both branches with their baselines, the peak heights
// and the E1/2 line.
func CreateVoltammogramPlot(res *analysis.AnalysisResults, axis config.AxisConfig) ([]byte, error) {
	c, err := voltammogramChart(res, axis)
	if err != nil {
		return nil, err
	}
	return c.renderPNG()
}

func voltammogramChart(res *analysis.AnalysisResults, axis config.AxisConfig) (*chart, error) {
	if res == nil || len(res.X) == 0 {
		return nil, fmt.Errorf("no analysis results to plot")
	}

	c := newChart("Cyclic voltammogram", axis.XLabel, axis.YLabel)
	if res.Smoothed {
		if err := c.addLine(xys(res.X, res.RawOxidation), colorRaw, vg.Points(0.8), false, ""); err != nil {
			return nil, err
		}
		if err := c.addLine(xys(res.X, res.RawReduction), colorRaw, vg.Points(0.8), false, "Raw data"); err != nil {
			return nil, err
		}
	}
	if err := c.addLine(xys(res.X, res.Oxidation), colorOxidation, vg.Points(1.5), false, "Oxidation"); err != nil {
		return nil, err
	}
	if err := c.addLine(xys(res.X, res.Reduction), colorReduction, vg.Points(1.5), false, "Reduction"); err != nil {
		return nil, err
	}

	branches := []struct {
		label    string
		height   string
		baseline analysis.Baseline
		peak     *analysis.PeakResult
		c        color.Color
	}{
		{"Ip,a", "Peak height Ox", res.OxidationBaseline, res.OxidationPeak, colorOxidation},
		{"Ip,c", "Peak height Red", res.ReductionBaseline, res.ReductionPeak, colorReduction},
	}
	for _, b := range branches {
		bl := b.baseline
		if err := c.addLine(plotter.XYs{{X: bl.X1, Y: bl.ValueAt(bl.X1)}, {X: bl.X2, Y: bl.ValueAt(bl.X2)}}, b.c, vg.Points(1), true, ""); err != nil {
			return nil, err
		}
		if b.peak == nil {
			continue
		}
		if err := c.addLine(xys(b.peak.X, b.peak.HeightCurve), b.c, vg.Points(0.8), true, b.height); err != nil {
			return nil, err
		}
		seg := plotter.XYs{{X: b.peak.XPeak, Y: b.peak.BaselineValue}, {X: b.peak.XPeak, Y: b.peak.YPeak}}
		legend := fmt.Sprintf("%s = %.3f", b.label, b.peak.Magnitude)
		if err := c.addLine(seg, color.Black, vg.Points(1.2), false, legend); err != nil {
			return nil, err
		}
	}

	if res.HasHalfWave {
		lo := min(floats.Min(res.Oxidation), floats.Min(res.Reduction))
		hi := max(floats.Max(res.Oxidation), floats.Max(res.Reduction))
		seg := plotter.XYs{{X: res.HalfWavePotential, Y: lo}, {X: res.HalfWavePotential, Y: hi}}
		legend := fmt.Sprintf("E1/2 = %.3f", res.HalfWavePotential)
		if err := c.addLine(seg, colorHalfWave, vg.Points(1), true, legend); err != nil {
			return nil, err
		}
	}

	if res.HasIntersections && len(res.Intersections) > 0 {
		if err := c.addScatter(pointXYs(res.Intersections), color.Black, "Intersections"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// CreateDerivativePlot draws the derivative curves of one stage and marks their zero crossings.
func CreateDerivativePlot(d *analysis.DerivativeResults, x []float64, title string, axis config.AxisConfig) ([]byte, error) {
	c, err := derivativeChart(d, x, title, axis)
	if err != nil {
		return nil, err
	}
	return c.renderPNG()
}

func derivativeChart(d *analysis.DerivativeResults, x []float64, title string, axis config.AxisConfig) (*chart, error) {
	if d == nil || len(x) == 0 {
		return nil, fmt.Errorf("no derivative results to plot")
	}

	c := newChart(title, axis.XLabel, title)
	if err := c.addLine(xys(x, d.SearchOxidation), colorOxidation, vg.Points(1.5), false, "Oxidation"); err != nil {
		return nil, err
	}
	if err := c.addLine(xys(x, d.SearchReduction), colorReduction, vg.Points(1.5), false, "Reduction"); err != nil {
		return nil, err
	}
	if err := c.addLine(plotter.XYs{{X: d.Range.Min, Y: 0}, {X: d.Range.Max, Y: 0}}, color.Gray{Y: 128}, vg.Points(1), true, ""); err != nil {
		return nil, err
	}
	if zeros := d.Zeros(); len(zeros) > 0 {
		if err := c.addScatter(pointXYs(zeros), color.Black, "Zero crossings"); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Plot keys used by CreatePlots and BuildPDFReport.
const (
	PlotVoltammogram     = "voltammogram"
	PlotFirstDerivative  = "first_derivative"
	PlotSecondDerivative = "second_derivative"
)

// CreatePlots renders every chart the results support. A chart that fails to render is
// left out and described in the returned warnings. Nothing else is drawn when the
// voltammogram itself fails.
func CreatePlots(res *analysis.AnalysisResults, axis config.AxisConfig) (map[string][]byte, []string) {
	images := make(map[string][]byte)
	var warnings []string

	img, err := CreateVoltammogramPlot(res, axis)
	if err != nil {
		return images, append(warnings, fmt.Sprintf("Voltammogram plot: %v", err))
	}
	images[PlotVoltammogram] = img

	stages := []struct {
		key   string
		title string
		d     *analysis.DerivativeResults
	}{
		{PlotFirstDerivative, "First derivative", res.FirstDerivative},
		{PlotSecondDerivative, "Second derivative", res.SecondDerivative},
	}
	for _, s := range stages {
		if s.d == nil {
			continue
		}
		img, err := CreateDerivativePlot(s.d, res.X, s.title, axis)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s plot: %v", s.title, err))
			continue
		}
		images[s.key] = img
	}
	return images, warnings
}

package report

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/user/cv_analyzer_go/internal/analysis"
)

const (
	inchToMm               = 25.4
	pdfPageWidthLandscape  = 11 * inchToMm // Letter landscape
	pdfPageHeightLandscape = 8.5 * inchToMm
	pdfMargin              = 0.5 * inchToMm
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
)

// ReportInfo is the header information printed above the results.
type ReportInfo struct {
	Source string // data file the results came from
	XLabel string
	YLabel string
}

// pdfStyler holds reusable styling and state for PDF generation
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	tr          func(string) string // UTF-8 to the core font code page
	styles      map[string]func()
	lineHeight  float64
	currentY    float64 // To manually track Y position for flowing content
	pageHeight  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		tr:          coreFontTranslator(pdf),
		styles:      make(map[string]func()),
		lineHeight:  6, // mm
		pageHeight:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

// coreFontTranslator maps UTF-8 to cp1252. Greek small mu, common in current units,
// has no cp1252 code and is written as the micro sign.
func coreFontTranslator(pdf *gofpdf.Fpdf) func(string) string {
	cp := pdf.UnicodeTranslatorFromDescriptor("")
	return func(text string) string {
		return cp(strings.ReplaceAll(text, "\u03bc", "\u00b5"))
	}
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 14)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 9)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 9)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["warning"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(200, 0, 0)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageHeight {
		s.newPage()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) writeParagraph(text string, styleName string, align string) {
	s.applyStyle(styleName)
	lines := s.pdf.SplitLines([]byte(s.tr(text)), pdfContentWidth)
	s.checkAddPage(float64(max(len(lines), 1)) * s.lineHeight)

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, s.tr(text), "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

// drawTable writes a bordered table. colWidthsRel are fractions of the content width.
// The header row is repeated after a page break.
func (s *pdfStyler) drawTable(headers []string, colWidthsRel []float64, rows [][]string) {
	widths := make([]float64, len(colWidthsRel))
	for i, rel := range colWidthsRel {
		widths[i] = rel * pdfContentWidth
	}

	header := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for i, h := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, s.tr(h), "1", 0, "C", true, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	header()
	for _, row := range rows {
		if s.currentY+s.lineHeight > s.pageHeight {
			s.newPage()
			header()
		}
		s.applyStyle("tableCell")
		x := pdfMargin
		for i, v := range row {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(widths[i], s.lineHeight, s.tr(v), "1", 0, "C", false, 0, "")
			x += widths[i]
		}
		s.currentY += s.lineHeight
	}
}

func (s *pdfStyler) addImage(imageBytes []byte, imageName string, width float64, height float64, caption string) {
	s.pdf.RegisterImageOptionsReader(imageName, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(imageBytes))

	if width > pdfContentWidth {
		ratio := pdfContentWidth / width
		width = pdfContentWidth
		height *= ratio
	}

	captionHeight := 0.0
	if caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(imageName, x, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if caption != "" {
		s.addSpacer(1)
		s.writeParagraph(caption, "normal", "C")
	}
	s.addSpacer(2)
}

func pointRows(pts []analysis.Point) [][]string {
	rows := make([][]string, len(pts))
	for i, p := range pts {
		rows[i] = []string{fmt.Sprintf("%.4f", p.X), fmt.Sprintf("%.4f", p.Y)}
	}
	return rows
}

func cell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

// WritePDFReport renders the report for res to w.
func WritePDFReport(w io.Writer, info ReportInfo, res *analysis.AnalysisResults, plotImages map[string][]byte) error {
	if info.XLabel == "" {
		info.XLabel = "x"
	}
	pdf := gofpdf.New("L", "mm", "Letter", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()

	styler := newPDFStyler(pdf)

	styler.writeParagraph("Cyclic Voltammetry Analysis Report", "h1", "C")
	styler.addSpacer(3)
	if info.Source != "" {
		styler.writeParagraph(fmt.Sprintf("Data file: %s", info.Source), "normal", "L")
	}

	if res == nil || len(res.X) == 0 {
		styler.writeParagraph("No analysis results to display.", "normal", "L")
		return pdf.Output(w)
	}

	smoothing := "Smoothing: off"
	if res.Smoothed {
		smoothing = fmt.Sprintf("Smoothing: Savitzky-Golay, window %d, degree %d", res.Smoothing.WindowLength, res.Smoothing.PolyDegree)
	}
	styler.writeParagraph(fmt.Sprintf("Samples: %d (x from %.3f to %.3f). %s.", len(res.X), res.X[0], res.X[len(res.X)-1], smoothing), "normal", "L")
	for _, b := range []struct {
		name string
		bl   analysis.Baseline
	}{{"Oxidation", res.OxidationBaseline}, {"Reduction", res.ReductionBaseline}} {
		styler.writeParagraph(fmt.Sprintf("%s baseline: (%.3f, %.3f) to (%.3f, %.3f)", b.name, b.bl.X1, b.bl.Y1, b.bl.X2, b.bl.Y2), "normal", "L")
	}
	styler.addSpacer(5)

	styler.writeParagraph("Parameters", "h2", "L")
	if len(res.Rows) > 0 {
		rows := make([][]string, len(res.Rows))
		for i, r := range res.Rows {
			rows[i] = []string{r.Type, cell(r.XPeak), cell(r.YPeak), cell(r.Baseline), cell(r.Magnitude)}
		}
		styler.drawTable(ParameterHeaders, []float64{0.24, 0.19, 0.19, 0.19, 0.19}, rows)
	} else {
		styler.writeParagraph("No parameters could be measured.", "normal", "L")
	}
	styler.addSpacer(5)

	crossingTables := []struct {
		title string
		pts   []analysis.Point
		ran   bool
	}{
		{"First derivative zero crossings", zeros(res.FirstDerivative), res.FirstDerivative != nil},
		{"Second derivative zero crossings", zeros(res.SecondDerivative), res.SecondDerivative != nil},
		{"Intersections of the branches", res.Intersections, res.HasIntersections},
	}
	for _, t := range crossingTables {
		if !t.ran {
			continue
		}
		styler.writeParagraph(t.title, "h2", "L")
		if len(t.pts) > 0 {
			styler.drawTable([]string{info.XLabel, "y"}, []float64{0.3, 0.3}, pointRows(t.pts))
		} else {
			styler.writeParagraph("None found.", "normal", "L")
		}
		styler.addSpacer(5)
	}

	if len(res.AnalysisErrors) > 0 {
		styler.writeParagraph("Warnings", "h2", "L")
		for _, msg := range res.AnalysisErrors {
			styler.writeParagraph(msg, "warning", "L")
		}
	}

	plotDefs := []struct {
		Key     string
		Caption string
	}{
		{PlotVoltammogram, fmt.Sprintf("Voltammogram, %s against %s", info.YLabel, info.XLabel)},
		{PlotFirstDerivative, "First derivative with zero crossings"},
		{PlotSecondDerivative, "Second derivative with zero crossings"},
	}
	imgWidth := pdfContentWidth * 0.9
	imgHeight := imgWidth / 2 // charts are rendered at 2:1

	for _, pDef := range plotDefs {
		imgBytes, ok := plotImages[pDef.Key]
		if !ok || len(imgBytes) == 0 {
			continue
		}
		styler.newPage()
		styler.addImage(imgBytes, pDef.Key, imgWidth, imgHeight, pDef.Caption)
	}

	return pdf.Output(w)
}

func zeros(d *analysis.DerivativeResults) []analysis.Point {
	if d == nil {
		return nil
	}
	return d.Zeros()
}

// BuildPDFReport creates the PDF report at path.
func BuildPDFReport(path string, info ReportInfo, res *analysis.AnalysisResults, plotImages map[string][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WritePDFReport(f, info, res, plotImages); err != nil {
		f.Close()
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	return f.Close()
}

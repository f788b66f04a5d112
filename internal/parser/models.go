package parser

import "fmt"

// MinColumns is the number of numeric columns a data row must carry: x plus the two sweep branches.
const MinColumns = 3

// MeasurementType tells the loader which file column holds the oxidation branch.
type MeasurementType string

const (
	// MeasurementOxidation maps column 1 to oxidation and column 2 to reduction.
	MeasurementOxidation MeasurementType = "oxidation"
	// MeasurementReduction swaps the two branch columns.
	MeasurementReduction MeasurementType = "reduction"
)

// ParseMeasurementType accepts the names used in config files and on the command line.
func ParseMeasurementType(s string) (MeasurementType, error) {
	switch MeasurementType(s) {
	case MeasurementOxidation, "":
		return MeasurementOxidation, nil
	case MeasurementReduction:
		return MeasurementReduction, nil
	}
	return "", fmt.Errorf("unknown measurement type %q (want %q or %q)", s, MeasurementOxidation, MeasurementReduction)
}

// Voltammogram holds one cyclic-voltammetry measurement: a shared x axis (potential)
// and the oxidation and reduction current branches sampled on it.
// X is non-decreasing once the loader returns.
type Voltammogram struct {
	Source      string
	X           []float64
	Oxidation   []float64
	Reduction   []float64
	Resorted    bool     // true when rows were co-sorted by x on load
	ParseErrors []string // non-fatal problems met while reading
}

// NewVoltammogram initializes an empty Voltammogram.
func NewVoltammogram(source string) *Voltammogram {
	return &Voltammogram{
		Source:      source,
		X:           make([]float64, 0),
		Oxidation:   make([]float64, 0),
		Reduction:   make([]float64, 0),
		ParseErrors: make([]string, 0),
	}
}

// Len returns the number of samples.
func (v *Voltammogram) Len() int {
	return len(v.X)
}

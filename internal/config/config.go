package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// SmoothingConfig selects Savitzky-Golay smoothing for a pair of curves.
type SmoothingConfig struct {
	Enabled      bool `yaml:"enabled"`
	WindowLength int  `yaml:"window_length" validate:"gte=3"`
	PolyDegree   int  `yaml:"poly_degree" validate:"gte=1,ltfield=WindowLength"`
}

// BaselineConfig holds the two endpoints of a linear baseline. Both x values are
// required. An omitted y anchors that endpoint on the analyzed curve at its x.
type BaselineConfig struct {
	X1 *float64 `yaml:"x1" validate:"required"`
	Y1 *float64 `yaml:"y1"`
	X2 *float64 `yaml:"x2" validate:"required"`
	Y2 *float64 `yaml:"y2"`
}

// FixedBaseline returns a baseline entry with both endpoints given explicitly.
func FixedBaseline(x1, y1, x2, y2 float64) *BaselineConfig {
	return &BaselineConfig{X1: &x1, Y1: &y1, X2: &x2, Y2: &y2}
}

// OnCurveBaseline returns a baseline entry whose endpoints lie on the curve at x1 and x2.
func OnCurveBaseline(x1, x2 float64) *BaselineConfig {
	return &BaselineConfig{X1: &x1, X2: &x2}
}

// RangeConfig is a closed x interval. Min > Max is allowed and simply selects nothing.
type RangeConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// BaselinesConfig holds one baseline per sweep branch. A nil entry means
// the baseline is placed automatically from the data extent.
type BaselinesConfig struct {
	Oxidation *BaselineConfig `yaml:"oxidation"`
	Reduction *BaselineConfig `yaml:"reduction"`
}

// DerivativeStageConfig configures one derivative order.
// Range nil searches crossings over the whole x axis.
type DerivativeStageConfig struct {
	Enabled   bool            `yaml:"enabled"`
	Smoothing SmoothingConfig `yaml:"smoothing"`
	Range     *RangeConfig    `yaml:"range"`
}

// DerivativesConfig groups the first and second derivative stages.
type DerivativesConfig struct {
	First  DerivativeStageConfig `yaml:"first"`
	Second DerivativeStageConfig `yaml:"second"`
}

// IntersectionsConfig enables the oxidation/reduction curve intersection search.
type IntersectionsConfig struct {
	Enabled bool         `yaml:"enabled"`
	Range   *RangeConfig `yaml:"range"`
}

// Analysis is everything the numerical session needs. It is passed by value
// into the analyzer; nothing in it is shared between runs.
type Analysis struct {
	Smoothing     SmoothingConfig     `yaml:"smoothing"`
	Baselines     BaselinesConfig     `yaml:"baselines"`
	Derivatives   DerivativesConfig   `yaml:"derivatives"`
	Intersections IntersectionsConfig `yaml:"intersections"`
}

// InputConfig controls the data file reader.
type InputConfig struct {
	MeasurementType string `yaml:"measurement_type" validate:"oneof=oxidation reduction"`
	Delimiter       string `yaml:"delimiter" validate:"max=1"`
	Comment         string `yaml:"comment"`
	SkipRows        int    `yaml:"skip_rows" validate:"gte=0"`
}

// AxisConfig labels the chart axes.
type AxisConfig struct {
	XLabel string `yaml:"x_label"`
	YLabel string `yaml:"y_label"`
}

// OutputConfig selects which artifacts are written and where.
type OutputConfig struct {
	Dir    string `yaml:"dir" validate:"required"`
	Prefix string `yaml:"prefix"`
	CSV    bool   `yaml:"csv"`
	PDF    bool   `yaml:"pdf"`
	PNG    bool   `yaml:"png"`
}

// Config is the root of the YAML configuration file.
type Config struct {
	Input    InputConfig  `yaml:"input"`
	Analysis Analysis     `yaml:"analysis"`
	Axis     AxisConfig   `yaml:"axis"`
	Output   OutputConfig `yaml:"output"`
}

// DefaultSmoothing mirrors the defaults of the interactive tool: window 15, degree 3.
func DefaultSmoothing(enabled bool) SmoothingConfig {
	return SmoothingConfig{Enabled: enabled, WindowLength: 15, PolyDegree: 3}
}

// Default returns a complete, valid configuration.
func Default() Config {
	return Config{
		Input: InputConfig{
			MeasurementType: "oxidation",
			Comment:         "#",
		},
		Analysis: Analysis{
			Smoothing: DefaultSmoothing(true),
			Derivatives: DerivativesConfig{
				First:  DerivativeStageConfig{Enabled: true, Smoothing: DefaultSmoothing(false)},
				Second: DerivativeStageConfig{Enabled: true, Smoothing: DefaultSmoothing(false)},
			},
			Intersections: IntersectionsConfig{Enabled: false},
		},
		Axis: AxisConfig{
			XLabel: "E [mV]",
			YLabel: "I [µA]",
		},
		Output: OutputConfig{
			Dir:    ".",
			Prefix: "cv",
			CSV:    true,
			PDF:    true,
			PNG:    false,
		},
	}
}

var validate = validator.New()

// Validate checks field constraints and returns a single error listing every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config validation: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Parse decodes YAML from r on top of Default. Unknown keys are rejected.
// An empty document yields the defaults.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DelimiterRune converts the configured delimiter string to the parser's rune form.
// An empty delimiter means whitespace.
func (i InputConfig) DelimiterRune() rune {
	if i.Delimiter == "" {
		return 0
	}
	return []rune(i.Delimiter)[0]
}

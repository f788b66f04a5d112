package parser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVoltammogramWhitespace(t *testing.T) {
	data := `# E  I_ox  I_red
-100  0.5  -0.2
0     1.5  -1.0

100   0.7  -0.4  extra
`
	v, err := ParseVoltammogram(strings.NewReader(data), "mem", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, v.Len())
	assert.Equal(t, []float64{-100, 0, 100}, v.X)
	assert.Equal(t, []float64{0.5, 1.5, 0.7}, v.Oxidation)
	assert.Equal(t, []float64{-0.2, -1.0, -0.4}, v.Reduction)
	assert.False(t, v.Resorted)
	assert.Empty(t, v.ParseErrors)
}

func TestParseVoltammogramReductionSwapsColumns(t *testing.T) {
	data := "0 1 2\n1 3 4\n"
	opts := DefaultOptions()
	opts.MeasurementType = MeasurementReduction

	v, err := ParseVoltammogram(strings.NewReader(data), "mem", opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, v.Oxidation)
	assert.Equal(t, []float64{1, 3}, v.Reduction)
}

func TestParseVoltammogramSortsUnorderedAxis(t *testing.T) {
	data := "3 30 -30\n1 10 -10\n2 20 -20\n1 11 -11\n"
	v, err := ParseVoltammogram(strings.NewReader(data), "mem", nil)
	require.NoError(t, err)

	assert.True(t, v.Resorted)
	assert.Equal(t, []float64{1, 1, 2, 3}, v.X)
	// Stable: the two x=1 rows keep file order.
	assert.Equal(t, []float64{10, 11, 20, 30}, v.Oxidation)
	assert.Equal(t, []float64{-10, -11, -20, -30}, v.Reduction)
}

func TestParseVoltammogramSkipsBadRows(t *testing.T) {
	data := "x;ox;red\n0;1;2\n1;abc;3\n2;4\n3;nan;1\n4;5;6\n"
	opts := DefaultOptions()
	opts.Delimiter = ';'

	v, err := ParseVoltammogram(strings.NewReader(data), "mem", opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 4}, v.X)
	assert.Len(t, v.ParseErrors, 4)
}

func TestParseVoltammogramSkipRows(t *testing.T) {
	data := "Instrument XYZ\nE I1 I2\n0 1 2\n"
	opts := DefaultOptions()
	opts.SkipRows = 2

	v, err := ParseVoltammogram(strings.NewReader(data), "mem", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Len())
	assert.Empty(t, v.ParseErrors)
}

func TestParseVoltammogramErrors(t *testing.T) {
	_, err := ParseVoltammogram(strings.NewReader("# only comments\n"), "mem", nil)
	require.Error(t, err)

	opts := DefaultOptions()
	opts.MeasurementType = "sideways"
	_, err = ParseVoltammogram(strings.NewReader("0 1 2\n"), "mem", opts)
	require.Error(t, err)
}

func TestParseVoltammogramFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cv.txt")
	require.NoError(t, os.WriteFile(path, []byte("0 1 2\n1 2 3\n"), 0o644))

	v, err := ParseVoltammogramFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, v.Source)
	assert.Equal(t, 2, v.Len())

	_, err = ParseVoltammogramFile(filepath.Join(t.TempDir(), "missing.txt"), nil)
	require.Error(t, err)
}

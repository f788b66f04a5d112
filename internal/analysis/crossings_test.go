package analysis

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroCrossingsSingle(t *testing.T) {
	zeros, err := ZeroCrossings([]float64{0, 1}, []float64{-1, 1}, Range{0, 1})
	require.NoError(t, err)
	require.Len(t, zeros, 1)
	assert.InDelta(t, 0.5, zeros[0].X, 1e-12)
	assert.Equal(t, 0.0, zeros[0].Y)
}

func TestZeroCrossingsLinearIsExact(t *testing.T) {
	x := []float64{0, 0.5, 1.25, 2, 3, 4.5}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 2*v - 3 // root at 1.5
	}
	zeros, err := ZeroCrossings(x, y, Range{-10, 10})
	require.NoError(t, err)
	require.Len(t, zeros, 1)
	assert.InDelta(t, 1.5, zeros[0].X, 1e-12)
	assert.Greater(t, zeros[0].X, 1.25)
	assert.Less(t, zeros[0].X, 2.0)
}

func TestZeroCrossingsCases(t *testing.T) {
	tests := []struct {
		name string
		x    []float64
		y    []float64
		r    Range
		want []Point
	}{
		{
			name: "no samples in range",
			x:    []float64{0, 1, 2},
			y:    []float64{-1, 1, -1},
			r:    Range{5, 6},
			want: []Point{},
		},
		{
			name: "inverted range selects nothing",
			x:    []float64{0, 1, 2},
			y:    []float64{-1, 1, -1},
			r:    Range{2, 0},
			want: []Point{},
		},
		{
			name: "single sample in range",
			x:    []float64{0, 1, 2},
			y:    []float64{-1, 0, 1},
			r:    Range{0.5, 1.5},
			want: []Point{},
		},
		{
			name: "exact zero sample",
			x:    []float64{0, 1, 2},
			y:    []float64{1, 0, -1},
			r:    Range{0, 2},
			want: []Point{{1, 0}},
		},
		{
			name: "zero run reported at first sample",
			x:    []float64{0, 1, 2, 3, 4},
			y:    []float64{1, 0, 0, 0, -1},
			r:    Range{0, 4},
			want: []Point{{1, 0}},
		},
		{
			name: "exact zero followed by sign change keeps both points",
			x:    []float64{0, 1, 2},
			y:    []float64{0, -1, 1},
			r:    Range{0, 2},
			want: []Point{{0, 0}, {1.5, 0}},
		},
		{
			name: "zero on last selected sample is not reported",
			x:    []float64{0, 1, 2},
			y:    []float64{1, 2, 0},
			r:    Range{0, 2},
			want: []Point{},
		},
		{
			name: "touching zero without sign change",
			x:    []float64{0, 1, 2, 3},
			y:    []float64{1, 0.5, 0.25, 1},
			r:    Range{0, 3},
			want: []Point{},
		},
		{
			name: "sign change across range edge ignored",
			x:    []float64{0, 1, 2, 3},
			y:    []float64{-1, 1, 2, 3},
			r:    Range{1, 3},
			want: []Point{},
		},
		{
			name: "multiple crossings in x order",
			x:    []float64{0, 1, 2, 3, 4},
			y:    []float64{-1, 1, 3, -1, 1},
			r:    Range{0, 4},
			want: []Point{{0.5, 0}, {2.75, 0}, {3.5, 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ZeroCrossings(tt.x, tt.y, tt.r)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i].X, got[i].X, 1e-12, "point %d x", i)
				assert.Equal(t, 0.0, got[i].Y, "point %d y", i)
			}
		})
	}
}

func TestIntersectionsSimpleLines(t *testing.T) {
	pts, err := Intersections([]float64{0, 1}, []float64{0, 1}, []float64{1, 0}, Range{0, 1})
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.InDelta(t, 0.5, pts[0].X, 1e-12)
	assert.InDelta(t, 0.5, pts[0].Y, 1e-12)
}

func TestIntersectionsAlgebraic(t *testing.T) {
	// y = x + 1 and y = -2x + 7 meet at (2, 3).
	x := []float64{-1, 0.5, 1.7, 2.6, 4}
	c1 := make([]float64, len(x))
	c2 := make([]float64, len(x))
	for i, v := range x {
		c1[i] = v + 1
		c2[i] = -2*v + 7
	}
	pts, err := Intersections(x, c1, c2, Range{-1, 4})
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.InDelta(t, 2.0, pts[0].X, 1e-12)
	assert.InDelta(t, 3.0, pts[0].Y, 1e-12)
}

func TestIntersectionsExactSampleUsesCurve1(t *testing.T) {
	pts, err := Intersections([]float64{0, 1, 2}, []float64{4, 5, 6}, []float64{3, 5, 9}, Range{0, 2})
	require.NoError(t, err)
	assert.Equal(t, []Point{{X: 1, Y: 5}}, pts)
}

func TestIntersectionsEmptyRange(t *testing.T) {
	pts, err := Intersections([]float64{0, 1}, []float64{0, 1}, []float64{1, 0}, Range{3, 4})
	require.NoError(t, err)
	assert.Empty(t, pts)
	assert.NotNil(t, pts)
}

func TestCrossingsLengthMismatch(t *testing.T) {
	_, err := ZeroCrossings([]float64{0, 1}, []float64{1}, Range{0, 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = Intersections([]float64{0, 1}, []float64{0, 1}, []float64{1}, Range{0, 1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCrossingsLeaveInputsAlone(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	c1 := []float64{-1, 2, -3, 4}
	c2 := []float64{1, 1, 1, 1}
	x0, c10, c20 := slices.Clone(x), slices.Clone(c1), slices.Clone(c2)

	first, err := Intersections(x, c1, c2, Range{0, 3})
	require.NoError(t, err)
	second, err := Intersections(x, c1, c2, Range{0, 3})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, x0, x)
	assert.Equal(t, c10, c1)
	assert.Equal(t, c20, c2)
}

package panel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitTrend_TwoPointsZeroResidual(t *testing.T) {
	xs := []float64{1, 3}
	ys := []float64{2, 8}

	line := FitTrend(xs, ys)
	require.NotNil(t, line)

	for i := range xs {
		assert.InDelta(t, ys[i], line.At(xs[i]), 1e-9)
	}
	assert.InDelta(t, 3.0, line.Slope, 1e-9)
	assert.InDelta(t, -1.0, line.Intercept, 1e-9)
	assert.InDelta(t, 1.0, line.RSquared, 1e-9)
	assert.Equal(t, [2]float64{1, 3}, line.X)
	assert.InDelta(t, 2.0, line.Y[0], 1e-9)
	assert.InDelta(t, 8.0, line.Y[1], 1e-9)
}

func TestFitTrend_Degenerate(t *testing.T) {
	tests := []struct {
		name string
		xs   []float64
		ys   []float64
	}{
		{"empty", nil, nil},
		{"single point", []float64{1}, []float64{1}},
		{"length mismatch", []float64{1, 2}, []float64{1}},
		{"vertical", []float64{2, 2, 2}, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, FitTrend(tt.xs, tt.ys))
		})
	}
}

func TestFitTrend_FlatLine(t *testing.T) {
	line := FitTrend([]float64{1, 2, 3}, []float64{5, 5, 5})
	require.NotNil(t, line)
	assert.InDelta(t, 0.0, line.Slope, 1e-9)
	assert.InDelta(t, 5.0, line.Intercept, 1e-9)
	assert.Equal(t, 0.0, line.RSquared)
}

func TestFitTrend_NoisyData(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := []float64{2.1, 3.9, 6.2, 7.8, 10.1}

	line := FitTrend(xs, ys)
	require.NotNil(t, line)
	assert.InDelta(t, 1.99, line.Slope, 0.01)
	assert.Greater(t, line.RSquared, 0.99)
	assert.Less(t, line.RSquared, 1.0)
}

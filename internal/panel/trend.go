package panel

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"hcpdash/domain/figure"
)

// FitTrend fits y = intercept + slope*x by ordinary least squares. It returns nil for
// fewer than two points or when every x is the same.
func FitTrend(xs, ys []float64) *figure.TrendLine {
	if len(xs) < 2 || len(xs) != len(ys) {
		return nil
	}

	lo, hi := floats.Min(xs), floats.Max(xs)
	if lo == hi {
		return nil
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return nil
	}

	// R² is undefined when every y is equal; report 0 so the figure stays JSON-safe.
	r2 := stat.RSquared(xs, ys, nil, intercept, slope)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}

	line := &figure.TrendLine{
		X:         [2]float64{lo, hi},
		Slope:     slope,
		Intercept: intercept,
		RSquared:  r2,
	}
	line.Y = [2]float64{line.At(lo), line.At(hi)}
	return line
}

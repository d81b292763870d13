package profiling

import (
	"fmt"
	"log"

	"github.com/montanaflynn/stats"

	"hcpdash/domain/figure"
)

// Summarize computes the distribution summary of one plotted axis. It returns nil
// for an empty input.
func Summarize(data []float64) *figure.Summary {
	if len(data) == 0 {
		return nil
	}
	s, err := summarize(data)
	if err != nil {
		log.Printf("[Profiling] Failed to summarize %d values: %v", len(data), err)
		return nil
	}
	return s
}

func summarize(data []float64) (*figure.Summary, error) {
	mean, err := stats.Mean(data)
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	median, err := stats.Median(data)
	if err != nil {
		return nil, fmt.Errorf("median: %w", err)
	}
	min, err := stats.Min(data)
	if err != nil {
		return nil, fmt.Errorf("min: %w", err)
	}
	max, err := stats.Max(data)
	if err != nil {
		return nil, fmt.Errorf("max: %w", err)
	}
	q25, err := quartile(data, 25)
	if err != nil {
		return nil, err
	}
	q75, err := quartile(data, 75)
	if err != nil {
		return nil, err
	}

	var stdDev float64
	if len(data) > 1 {
		if stdDev, err = stats.StandardDeviationSample(data); err != nil {
			return nil, fmt.Errorf("std dev: %w", err)
		}
	}

	return &figure.Summary{
		N:      len(data),
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Q25:    q25,
		Q75:    q75,
	}, nil
}

// quartile uses interpolated percentiles and falls back to nearest rank where the
// interpolation index falls below the first element (small samples).
func quartile(data []float64, percent float64) (float64, error) {
	q, err := stats.Percentile(data, percent)
	if err == nil {
		return q, nil
	}
	q, err = stats.PercentileNearestRank(data, percent)
	if err != nil {
		return 0, fmt.Errorf("percentile %.0f: %w", percent, err)
	}
	return q, nil
}

// detectOutliers counts values outside the 1.5*IQR fences
func detectOutliers(data []float64, q25, q75 float64) int {
	iqr := q75 - q25
	lowerBound := q25 - 1.5*iqr
	upperBound := q75 + 1.5*iqr

	outlierCount := 0
	for _, x := range data {
		if x < lowerBound || x > upperBound {
			outlierCount++
		}
	}

	return outlierCount
}

// Outliers counts values outside the 1.5*IQR fences of s
func Outliers(data []float64, s *figure.Summary) int {
	if s == nil {
		return 0
	}
	return detectOutliers(data, s.Q25, s.Q75)
}

package profiling

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"
)

// ColumnStats holds the descriptive statistics of one numeric column.
// Std is the sample standard deviation (n-1 denominator).
type ColumnStats struct {
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Std       float64 `json:"std"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	NullCount int     `json:"null_count"`
}

// SummarizeColumn computes mean, median, std, min and max over non-missing values.
// Any statistic that is undefined for the input is NaN.
func SummarizeColumn(data []float64) ColumnStats {
	nan := math.NaN()
	summary := ColumnStats{Mean: nan, Median: nan, Std: nan, Min: nan, Max: nan}
	if len(data) == 0 {
		return summary
	}

	if mean, err := stats.Mean(data); err == nil {
		summary.Mean = mean
	}
	if median, err := stats.Median(data); err == nil {
		summary.Median = median
	}
	if min, err := stats.Min(data); err == nil {
		summary.Min = min
	}
	if max, err := stats.Max(data); err == nil {
		summary.Max = max
	}

	// A single observation has no sample spread
	if len(data) > 1 {
		if stdDev, err := stats.StandardDeviationSample(data); err == nil {
			summary.Std = stdDev
		}
	}

	return summary
}

// MarshalJSON writes NaN statistics as null
func (s ColumnStats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean      *float64 `json:"mean"`
		Median    *float64 `json:"median"`
		Std       *float64 `json:"std"`
		Min       *float64 `json:"min"`
		Max       *float64 `json:"max"`
		NullCount int      `json:"null_count"`
	}{
		Mean:      finite(s.Mean),
		Median:    finite(s.Median),
		Std:       finite(s.Std),
		Min:       finite(s.Min),
		Max:       finite(s.Max),
		NullCount: s.NullCount,
	})
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Package calculator provides the series statistics used for run metrics,
// scoring and reports.
package calculator

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean is the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values provided")
	}
	return stat.Mean(values, nil), nil
}

// StdDev is the sample standard deviation (n-1 denominator).
func StdDev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, errors.New("need at least two values for a standard deviation")
	}
	return stat.StdDev(values, nil), nil
}

// Median averages the two middle values for an even count.
func Median(values []float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, errors.New("no values provided")
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2], nil
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2, nil
}

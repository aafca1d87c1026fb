// Package metrics summarizes recorded result series. The interesting one is
// [Drift], which measures how far a conserved quantity wandered from its
// initial value over a run.
package metrics

import "math"

// Drift reports the largest relative deviation of series from its first
// value. When the first value is zero the deviation is absolute instead.
// Empty and single-value series report zero.
func Drift(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}

	first := series[0]
	scale := math.Abs(first)

	max := 0.0
	for _, v := range series[1:] {
		d := math.Abs(v - first)
		if scale != 0 {
			d /= scale
		}
		if d > max {
			max = d
		}
	}
	return max
}

// Span reports the smallest and largest values of series. An empty series
// reports zero for both.
func Span(series []float64) (lo, hi float64) {
	if len(series) == 0 {
		return 0, 0
	}
	lo, hi = series[0], series[0]
	for _, v := range series[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}

// Mean reports the arithmetic mean of series, zero when empty.
func Mean(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}

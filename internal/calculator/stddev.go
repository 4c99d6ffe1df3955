package calculator

import (
	"errors"
	"math"
)

// CalculateStdDev returns the sample standard deviation (n-1 denominator) of
// the trailing period prices.
func CalculateStdDev(prices []float64, period int) (float64, error) {
	if period < 2 {
		return 0, errors.New("period must be at least 2")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for standard deviation")
	}
	window := prices[len(prices)-period:]
	return sampleStdDev(window, mean(window)), nil
}

// sampleStdDev is the two-pass Bessel-corrected deviation around m.
// A constant window yields exactly 0.
func sampleStdDev(window []float64, m float64) float64 {
	ss := 0.0
	for _, x := range window {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(window)-1))
}

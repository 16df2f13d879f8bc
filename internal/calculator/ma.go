package calculator

import (
	"errors"
	"math"
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingMean returns the trailing SMA for every index of values.
// Indexes before the first full window hold NaN.
func RollingMean(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		ma, err := CalculateSMA(values[:i+1], period)
		if err != nil {
			return nil, err
		}
		out[i] = ma
	}
	return out, nil
}

package model

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned when strategy parameters are inconsistent.
var ErrInvalidParams = errors.New("invalid strategy parameters")

// Params holds the immutable strategy configuration passed to the signal engine.
type Params struct {
	LowerMultipleQuantile   float64
	UpperMultipleQuantile   float64
	LowerSentimentThreshold int
	UpperSentimentThreshold int
	ShortWindow             int
	LongWindow              int
}

// DefaultParams returns the stock Mayer multiple / Fear & Greed settings.
func DefaultParams() Params {
	return Params{
		LowerMultipleQuantile:   0.10,
		UpperMultipleQuantile:   0.90,
		LowerSentimentThreshold: 25,
		UpperSentimentThreshold: 76,
		ShortWindow:             100,
		LongWindow:              200,
	}
}

// Validate checks ranges and the lower < upper ordering of both indicator pairs.
func (p Params) Validate() error {
	switch {
	case p.LowerMultipleQuantile < 0 || p.UpperMultipleQuantile > 1:
		return fmt.Errorf("%w: quantiles must be within [0,1]", ErrInvalidParams)
	case p.LowerMultipleQuantile >= p.UpperMultipleQuantile:
		return fmt.Errorf("%w: lower quantile %.2f must be below upper quantile %.2f",
			ErrInvalidParams, p.LowerMultipleQuantile, p.UpperMultipleQuantile)
	case p.LowerSentimentThreshold < 0 || p.UpperSentimentThreshold > 100:
		return fmt.Errorf("%w: sentiment thresholds must be within [0,100]", ErrInvalidParams)
	case p.LowerSentimentThreshold >= p.UpperSentimentThreshold:
		return fmt.Errorf("%w: lower sentiment threshold %d must be below upper threshold %d",
			ErrInvalidParams, p.LowerSentimentThreshold, p.UpperSentimentThreshold)
	case p.ShortWindow <= 0 || p.LongWindow <= 0:
		return fmt.Errorf("%w: SMA windows must be positive", ErrInvalidParams)
	case p.ShortWindow >= p.LongWindow:
		return fmt.Errorf("%w: short window %d must be below long window %d",
			ErrInvalidParams, p.ShortWindow, p.LongWindow)
	}
	return nil
}

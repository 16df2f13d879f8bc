package strategy

import "MayerSentinel/internal/model"

// Classify maps one row's multiple and sentiment to a signal. Both comparisons against
// the quantiles are strict, both against the sentiment thresholds are inclusive.
// A missing score is always hold.
func Classify(multiple float64, score *int, lowerQ, upperQ float64, p model.Params) model.Signal {
	if score == nil {
		return model.SignalHold
	}
	switch {
	case multiple < lowerQ && *score <= p.LowerSentimentThreshold:
		return model.SignalBuy
	case multiple > upperQ && *score >= p.UpperSentimentThreshold:
		return model.SignalSell
	default:
		return model.SignalHold
	}
}

// ClassifySentiment returns the Fear & Greed label for a score.
func ClassifySentiment(score int) string {
	switch {
	case score >= 0 && score <= 25:
		return "Extreme Fear"
	case score >= 26 && score <= 46:
		return "Fear"
	case score >= 47 && score <= 54:
		return "Neutral"
	case score >= 55 && score <= 75:
		return "Greed"
	case score >= 76 && score <= 100:
		return "Extreme Greed"
	default:
		return "Invalid Value"
	}
}

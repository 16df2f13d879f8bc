package model

import "time"

// Signal is the per-day trading classification.
type Signal string

const (
	SignalBuy  Signal = "buy"
	SignalSell Signal = "sell"
	SignalHold Signal = "hold"
)

// MergedRow is a price bar extended with indicators, joined sentiment and a signal.
type MergedRow struct {
	PriceBar
	SMAShort      float64 `json:"sma_short"`
	SMALong       float64 `json:"sma_long"`
	SMA200        float64 `json:"sma_200"`
	Multiple      float64 `json:"multiple"`
	Score         *int    `json:"score"` // nil when no sentiment exists for the date
	LowerQuantile float64 `json:"lower_quantile"`
	UpperQuantile float64 `json:"upper_quantile"`
	Signal        Signal  `json:"signal"`
}

// TradeEvent is a signal transition emitted by the alternating buy/sell state machine.
type TradeEvent struct {
	Date          time.Time `json:"date"`
	Close         float64   `json:"close"`
	Volume        float64   `json:"volume"`
	Multiple      float64   `json:"multiple"`
	LowerQuantile float64   `json:"lower_quantile"`
	UpperQuantile float64   `json:"upper_quantile"`
	Signal        Signal    `json:"signal"`
}

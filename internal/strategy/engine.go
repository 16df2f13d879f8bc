package strategy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"MayerSentinel/internal/calculator"
	"MayerSentinel/internal/model"
)

// MultipleWindow is the fixed SMA period the Mayer multiple is measured against.
const MultipleWindow = 200

// ErrInsufficientData is returned when no row survives the SMA warm-up.
var ErrInsufficientData = errors.New("insufficient price history")

// WarmUp returns how many leading bars are dropped before the first merged row.
func WarmUp(p model.Params) int {
	return max(p.LongWindow, MultipleWindow) - 1
}

// Process merges price bars with sentiment, computes the SMA and multiple columns,
// broadcasts the multiple quantiles and classifies every row.
func Process(prices []model.PriceBar, sentiment []model.SentimentPoint, p model.Params) ([]model.MergedRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("%w: no price bars", ErrInsufficientData)
	}
	warmUp := WarmUp(p)
	if len(prices) <= warmUp {
		return nil, fmt.Errorf("%w: %d bars, need more than %d", ErrInsufficientData, len(prices), warmUp)
	}

	bars := make([]model.PriceBar, len(prices))
	copy(bars, prices)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	smaShort, err := calculator.RollingMean(closes, p.ShortWindow)
	if err != nil {
		return nil, fmt.Errorf("short SMA: %w", err)
	}
	smaLong, err := calculator.RollingMean(closes, p.LongWindow)
	if err != nil {
		return nil, fmt.Errorf("long SMA: %w", err)
	}
	sma200, err := calculator.RollingMean(closes, MultipleWindow)
	if err != nil {
		return nil, fmt.Errorf("multiple SMA: %w", err)
	}

	scores := make(map[time.Time]int, len(sentiment))
	for _, s := range sentiment {
		scores[model.Day(s.Date)] = s.Score
	}

	rows := make([]model.MergedRow, 0, len(bars)-warmUp)
	multiples := make([]float64, 0, len(bars)-warmUp)
	for i := warmUp; i < len(bars); i++ {
		bar := bars[i]
		bar.Date = model.Day(bar.Date)
		row := model.MergedRow{
			PriceBar: bar,
			SMAShort: smaShort[i],
			SMALong:  smaLong[i],
			SMA200:   sma200[i],
			Multiple: bar.Close / sma200[i],
		}
		if score, ok := scores[bar.Date]; ok {
			row.Score = &score
		}
		rows = append(rows, row)
		multiples = append(multiples, row.Multiple)
	}

	lowerQ, err := calculator.Quantile(multiples, p.LowerMultipleQuantile)
	if err != nil {
		return nil, fmt.Errorf("lower quantile: %w", err)
	}
	upperQ, err := calculator.Quantile(multiples, p.UpperMultipleQuantile)
	if err != nil {
		return nil, fmt.Errorf("upper quantile: %w", err)
	}

	for i := range rows {
		rows[i].LowerQuantile = lowerQ
		rows[i].UpperQuantile = upperQ
		rows[i].Signal = Classify(rows[i].Multiple, rows[i].Score, lowerQ, upperQ, p)
	}
	return rows, nil
}

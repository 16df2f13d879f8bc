package collector

import (
	"context"

	"MayerSentinel/internal/model"
)

// PriceFetcher retrieves daily price bars for one instrument.
type PriceFetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error)
	Name() string
}

// SentimentFetcher retrieves the daily Fear & Greed index.
type SentimentFetcher interface {
	FetchSentiment(ctx context.Context, days int) ([]model.SentimentPoint, error)
}

package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"MayerSentinel/internal/model"
)

// Dataset is the raw input of one processing run.
type Dataset struct {
	Prices    []model.PriceBar
	Sentiment []model.SentimentPoint
	Message   string
}

// CollectError reports which of the two fetches failed.
type CollectError struct {
	Message   string
	Sentiment error
	Price     error
}

func (e *CollectError) Error() string { return e.Message }

func (e *CollectError) Unwrap() []error {
	var errs []error
	if e.Sentiment != nil {
		errs = append(errs, e.Sentiment)
	}
	if e.Price != nil {
		errs = append(errs, e.Price)
	}
	return errs
}

// Collector fetches the sentiment and price series for one run.
type Collector struct {
	Prices    PriceFetcher
	Sentiment SentimentFetcher
	Symbol    string
	Days      int
	log       zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(prices PriceFetcher, sentiment SentimentFetcher, symbol string, days int, log zerolog.Logger) *Collector {
	return &Collector{Prices: prices, Sentiment: sentiment, Symbol: symbol, Days: days, log: log}
}

// Collect fetches sentiment, then prices. Both fetches are attempted even when the first
// fails, so the returned message always describes both sources.
func (c *Collector) Collect(ctx context.Context) (*Dataset, error) {
	c.log.Info().Int("days", c.Days).Msg("fetching fear and greed index")
	sentiment, sErr := c.Sentiment.FetchSentiment(ctx, c.Days)
	sMsg := "Fear and greed data successfully fetched!"
	if sErr != nil {
		c.log.Error().Err(sErr).Msg("fear and greed fetch failed")
		sMsg = "Error fetching fear and greed data!"
	}

	c.log.Info().Str("symbol", c.Symbol).Str("source", c.Prices.Name()).Msg("fetching historical prices")
	prices, pErr := c.Prices.FetchDailyBars(ctx, c.Symbol, c.Days)
	pMsg := fmt.Sprintf("Historical %s prices successfully fetched!", c.Symbol)
	if pErr != nil {
		c.log.Error().Err(pErr).Msg("historical price fetch failed")
		pMsg = fmt.Sprintf("Error fetching historical data: %v", pErr)
	}

	msg := "Fear and Greed Data: " + sMsg + " | Historical Data: " + pMsg
	if sErr != nil || pErr != nil {
		return nil, &CollectError{Message: msg, Sentiment: sErr, Price: pErr}
	}
	return &Dataset{Prices: prices, Sentiment: sentiment, Message: msg}, nil
}

// ErrMock is returned by MockFetcher when Fail is set.
var ErrMock = errors.New("mock fetch failure")

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars   []model.PriceBar
	Points []model.SentimentPoint
	Fail   bool
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, _ int) ([]model.PriceBar, error) {
	m.Calls++
	if m.Fail {
		return nil, ErrMock
	}
	return m.Bars, nil
}

func (m *MockFetcher) FetchSentiment(_ context.Context, _ int) ([]model.SentimentPoint, error) {
	m.Calls++
	if m.Fail {
		return nil, ErrMock
	}
	return m.Points, nil
}

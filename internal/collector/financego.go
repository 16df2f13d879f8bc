package collector

import (
	"context"
	"fmt"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/shopspring/decimal"

	"MayerSentinel/internal/model"
)

// FinanceGoFetcher implements PriceFetcher with the piquette/finance-go chart client.
type FinanceGoFetcher struct {
	Client chart.Client
	Now    func() time.Time
}

// NewFinanceGoFetcher creates a fetcher with its own proxied backend instead of the
// package-level finance-go default. An empty baseURL selects the library's Yahoo host.
func NewFinanceGoFetcher(baseURL, proxyURL string) *FinanceGoFetcher {
	if baseURL == "" {
		baseURL = finance.YFinURL
	}
	backend := &finance.BackendConfiguration{
		Type:       finance.YFinBackend,
		URL:        baseURL,
		HTTPClient: newRestyClient("", proxyURL).GetClient(),
	}
	return &FinanceGoFetcher{Client: chart.Client{B: backend}, Now: time.Now}
}

func (f *FinanceGoFetcher) Name() string { return "financego" }

// FetchDailyBars requests the last `days` calendar days of daily bars.
// Panics inside finance-go on short responses are returned as errors.
func (f *FinanceGoFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) (bars []model.PriceBar, err error) {
	if days <= 0 {
		return nil, fmt.Errorf("financego: days must be positive")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			bars, err = nil, fmt.Errorf("financego chart %s: malformed response: %v", symbol, r)
		}
	}()

	end := f.Now()
	start := end.AddDate(0, 0, -days)
	iter := f.Client.Get(&chart.Params{
		Params:   finance.Params{Context: &ctx},
		Symbol:   symbol,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("financego chart %s: %w", symbol, err)
	}
	offset := iter.Meta().Gmtoffset

	for iter.Next() {
		bar := iter.Bar()
		bars = append(bars, model.PriceBar{
			Date:   model.LocalDay(int64(bar.Timestamp), offset),
			Open:   toFloat(bar.Open),
			High:   toFloat(bar.High),
			Low:    toFloat(bar.Low),
			Close:  toFloat(bar.Close),
			Volume: float64(bar.Volume),
		})
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("financego: no data returned")
	}
	return normalizeBars(bars), nil
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"MayerSentinel/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance chart API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements PriceFetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	Client *resty.Client
	Now    func() time.Time
}

// NewYahooFetcher creates a Yahoo fetcher. An empty baseURL selects the public API.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooFetcher{
		Client: newRestyClient(baseURL, proxyURL).SetHeader("User-Agent", "Mozilla/5.0"),
		Now:    time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Gmtoffset int `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchDailyBars requests the last `days` calendar days of daily bars.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.PriceBar, error) {
	if days <= 0 {
		return nil, fmt.Errorf("yahoo: days must be positive")
	}
	end := f.Now()
	start := end.AddDate(0, 0, -days)

	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"interval": "1d",
			"period1":  strconv.FormatInt(start.Unix(), 10),
			"period2":  strconv.FormatInt(end.Unix(), 10),
		}).
		Get("/v8/finance/chart/" + url.PathEscape(symbol))
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var chart yahooChart
	if err := json.Unmarshal(resp.Body(), &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]model.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		c := valueAt(quote.Close, i)
		if c == nil {
			continue // null bar
		}
		bars = append(bars, model.PriceBar{
			Date:   model.LocalDay(ts, result.Meta.Gmtoffset),
			Open:   deref(valueAt(quote.Open, i)),
			High:   deref(valueAt(quote.High, i)),
			Low:    deref(valueAt(quote.Low, i)),
			Close:  *c,
			Volume: deref(valueAt(quote.Volume, i)),
		})
	}
	return normalizeBars(bars), nil
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// normalizeBars sorts bars by date and keeps the last bar of each calendar day.
func normalizeBars(bars []model.PriceBar) []model.PriceBar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

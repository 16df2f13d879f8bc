package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"MayerSentinel/internal/model"
)

// DefaultSentimentBaseURL hosts the alternative.me Fear & Greed index.
const DefaultSentimentBaseURL = "https://api.alternative.me"

// FearGreedFetcher implements SentimentFetcher against the alternative.me API.
type FearGreedFetcher struct {
	Client *resty.Client
}

// NewFearGreedFetcher creates a sentiment fetcher. An empty baseURL selects the public API.
func NewFearGreedFetcher(baseURL, proxyURL string) *FearGreedFetcher {
	if baseURL == "" {
		baseURL = DefaultSentimentBaseURL
	}
	return &FearGreedFetcher{Client: newRestyClient(baseURL, proxyURL)}
}

type fngResponse struct {
	Data []struct {
		Value           string `json:"value"`
		Timestamp       string `json:"timestamp"`
		TimeUntilUpdate string `json:"time_until_update"`
	} `json:"data"`
	Metadata struct {
		Error *string `json:"error"`
	} `json:"metadata"`
}

// FetchSentiment returns the last `days` daily readings in ascending date order.
func (f *FearGreedFetcher) FetchSentiment(ctx context.Context, days int) ([]model.SentimentPoint, error) {
	if days <= 0 {
		return nil, fmt.Errorf("fear and greed: days must be positive")
	}
	resp, err := f.Client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(days)).
		Get("/fng/")
	if err != nil {
		return nil, fmt.Errorf("fear and greed fetch: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fear and greed: status %d, body: %s", resp.StatusCode(), resp.String())
	}

	var body fngResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("fear and greed decode: %w", err)
	}
	if body.Metadata.Error != nil && *body.Metadata.Error != "" {
		return nil, fmt.Errorf("fear and greed api error: %s", *body.Metadata.Error)
	}
	if len(body.Data) == 0 {
		return nil, fmt.Errorf("fear and greed: no data returned")
	}

	points := make([]model.SentimentPoint, 0, len(body.Data))
	for _, d := range body.Data {
		score, err := strconv.Atoi(d.Value)
		if err != nil {
			// an unreadable reading becomes a missing score for that day
			continue
		}
		ts, err := strconv.ParseInt(d.Timestamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fear and greed: bad timestamp %q: %w", d.Timestamp, err)
		}
		p := model.SentimentPoint{Date: model.Day(time.Unix(ts, 0)), Score: score}
		if d.TimeUntilUpdate != "" {
			p.TimeUntilUpdate, _ = strconv.ParseInt(d.TimeUntilUpdate, 10, 64)
		}
		points = append(points, p)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("fear and greed: no numeric values in %d records", len(body.Data))
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	return points, nil
}

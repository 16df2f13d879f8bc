package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"MayerSentinel/internal/model"
	"MayerSentinel/internal/pipeline"
	"MayerSentinel/internal/strategy"
)

const noHistory = "historical signals can not be displayed"

type deltaView struct {
	Label string
	Value string
	Delta string
	Up    bool
}

type tradeView struct {
	Date          string
	Signal        string
	Close         string
	Volume        string
	Multiple      string
	LowerQuantile string
	UpperQuantile string
}

type ruleView struct {
	LowerPercent   string
	UpperPercent   string
	LowerLabel     string
	UpperLabel     string
	LowerThreshold int
	UpperThreshold int
}

type pageData struct {
	Asset          string
	OK             bool
	Message        string
	Recommendation string
	Color          string
	Deltas         []deltaView
	DeltaError     string
	Rule           ruleView
	Charts         []Chart
	Trades         []tradeView
	TradesError    string
	NotifyEnabled  bool
	FlagError      string
	RefreshSeconds int
	FetchedAt      string
}

func recommendation(sig model.Signal) (string, string) {
	switch sig {
	case model.SignalBuy:
		return "Buy", "green"
	case model.SignalSell:
		return "Sell", "red"
	default:
		return "Hold", "blue"
	}
}

func newPage(snap *pipeline.Snapshot, opts Options) pageData {
	p := model.DefaultParams()
	if snap != nil {
		p = snap.Params
	}
	page := pageData{
		Asset:          opts.Asset(),
		RefreshSeconds: int(opts.Refresh.Seconds()),
		Rule: ruleView{
			LowerPercent:   fmt.Sprintf("%.0f %%", p.LowerMultipleQuantile*100),
			UpperPercent:   fmt.Sprintf("%.0f %%", p.UpperMultipleQuantile*100),
			LowerLabel:     strategy.ClassifySentiment(p.LowerSentimentThreshold),
			UpperLabel:     strategy.ClassifySentiment(p.UpperSentimentThreshold),
			LowerThreshold: p.LowerSentimentThreshold,
			UpperThreshold: p.UpperSentimentThreshold,
		},
	}
	latest, ok := snap.Latest()
	if !ok {
		return page
	}
	page.OK = true
	page.Message = snap.Message
	page.FetchedAt = snap.FetchedAt.Format("2006-01-02 15:04:05")
	page.Recommendation, page.Color = recommendation(latest.Signal)

	deltas, err := snap.Deltas(opts.MetricsDays)
	if errors.Is(err, pipeline.ErrNotEnoughData) {
		page.DeltaError = "Not enough data available for the specified period."
	}
	for _, d := range deltas {
		page.Deltas = append(page.Deltas, newDeltaView(d))
	}

	page.Charts = buildCharts(snap, opts)

	if len(snap.Trades) == 0 {
		page.TradesError = noHistory
	}
	for _, ev := range snap.Trades {
		page.Trades = append(page.Trades, tradeView{
			Date:          ev.Date.Format("2006-01-02"),
			Signal:        string(ev.Signal),
			Close:         fmt.Sprintf("%.2f", ev.Close),
			Volume:        fmt.Sprintf("%.0f", ev.Volume),
			Multiple:      fmt.Sprintf("%.4f", ev.Multiple),
			LowerQuantile: fmt.Sprintf("%.4f", ev.LowerQuantile),
			UpperQuantile: fmt.Sprintf("%.4f", ev.UpperQuantile),
		})
	}
	return page
}

func newDeltaView(d pipeline.Delta) deltaView {
	v := deltaView{Label: d.Label, Value: "n/a", Delta: "n/a"}
	if !d.Available {
		return v
	}
	v.Value = fmt.Sprintf("%.2f", d.Current)
	v.Delta = fmt.Sprintf("%.2f (%.2f%%)", d.Difference, d.Percent)
	v.Up = d.Difference >= 0
	return v
}

func buildCharts(snap *pipeline.Snapshot, opts Options) []Chart {
	rows := snap.Rows
	n := len(rows)
	p := snap.Params
	closes := make([]float64, n)
	short := make([]float64, n)
	long := make([]float64, n)
	multiple := make([]float64, n)
	score := make([]float64, n)
	index := make(map[string]int, n)
	for i, r := range rows {
		closes[i] = r.Close
		short[i] = r.SMAShort
		long[i] = r.SMALong
		multiple[i] = r.Multiple
		score[i] = math.NaN()
		if r.Score != nil {
			score[i] = float64(*r.Score)
		}
		index[r.Date.Format("2006-01-02")] = i
	}

	var closeM, multM, scoreM []Marker
	for _, ev := range snap.Trades {
		i, ok := index[ev.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		buy := ev.Signal == model.SignalBuy
		closeM = append(closeM, Marker{Index: i, Value: closes[i], Buy: buy})
		multM = append(multM, Marker{Index: i, Value: multiple[i], Buy: buy})
		scoreM = append(scoreM, Marker{Index: i, Value: score[i], Buy: buy})
	}

	latest := rows[n-1]
	asset := opts.Asset()
	return []Chart{
		BuildChart(fmt.Sprintf("%s Closing Prices and SMAs", asset), 360, n,
			[]Series{
				{Label: "close", Color: "steelblue", Values: closes},
				{Label: fmt.Sprintf("%d_SMA", p.ShortWindow), Color: "darkorange", Values: short},
				{Label: fmt.Sprintf("%d_SMA", p.LongWindow), Color: "seagreen", Values: long},
			}, nil, closeM),
		BuildChart("Mayer Multiple", 200, n,
			[]Series{{Label: "Mayer Multiple", Color: "orange", Values: multiple}},
			[]HLine{
				{Label: fmt.Sprintf("%s quantile", trimFloat(p.LowerMultipleQuantile)), Color: "blue", Value: latest.LowerQuantile},
				{Label: fmt.Sprintf("%s quantile", trimFloat(p.UpperMultipleQuantile)), Color: "purple", Value: latest.UpperQuantile},
			}, multM),
		BuildChart("Fear and Greed Index", 260, n,
			[]Series{{Label: "Fear and Greed", Color: "orange", Values: score}},
			[]HLine{
				{Label: fmt.Sprintf("%s (%d)", strategy.ClassifySentiment(p.LowerSentimentThreshold), p.LowerSentimentThreshold), Color: "blue", Value: float64(p.LowerSentimentThreshold)},
				{Label: fmt.Sprintf("%s (%d)", strategy.ClassifySentiment(p.UpperSentimentThreshold), p.UpperSentimentThreshold), Color: "purple", Value: float64(p.UpperSentimentThreshold)},
			}, scoreM),
	}
}

func trimFloat(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}

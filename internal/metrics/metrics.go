package metrics

import (
	"math"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"MayerSentinel/internal/model"
)

var (
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_runs_total", Help: "Pipeline runs by result"},
		[]string{"result"},
	)
	FetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_fetch_failures_total", Help: "Failed upstream fetches"},
		[]string{"source"},
	)
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "sentinel_notifications_total", Help: "Telegram notifications by result"},
		[]string{"result"},
	)
	CurrentSignal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "sentinel_signal", Help: "1 for the latest signal, 0 otherwise"},
		[]string{"signal"},
	)
	MayerMultiple = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sentinel_mayer_multiple", Help: "Latest close / 200-day SMA"},
	)
	Sentiment = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sentinel_fear_greed", Help: "Latest Fear & Greed score"},
	)
	TradeEvents = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "sentinel_trade_events", Help: "Trade events in the latest run"},
	)
)

func init() {
	prometheus.MustRegister(RunsTotal, FetchFailuresTotal, NotificationsTotal,
		CurrentSignal, MayerMultiple, Sentiment, TradeEvents)
}

// ObserveLatest publishes the most recent row and trade count.
func ObserveLatest(row model.MergedRow, trades int) {
	for _, s := range []model.Signal{model.SignalBuy, model.SignalSell, model.SignalHold} {
		v := 0.0
		if row.Signal == s {
			v = 1
		}
		CurrentSignal.WithLabelValues(string(s)).Set(v)
	}
	MayerMultiple.Set(row.Multiple)
	if row.Score != nil {
		Sentiment.Set(float64(*row.Score))
	} else {
		Sentiment.Set(math.NaN())
	}
	TradeEvents.Set(float64(trades))
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

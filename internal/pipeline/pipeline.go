// Package pipeline runs one fetch-merge-extract cycle and packages the result for
// the dashboard, terminal report and notifier.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"MayerSentinel/internal/collector"
	"MayerSentinel/internal/metrics"
	"MayerSentinel/internal/model"
	"MayerSentinel/internal/strategy"
)

const tradesFound = "Trades were identified in the given time frame"

// Runner wires the collector to the signal engine.
type Runner struct {
	Collector *collector.Collector
	Params    model.Params
	Now       func() time.Time
	log       zerolog.Logger
}

// NewRunner creates a Runner with immutable strategy parameters.
func NewRunner(col *collector.Collector, params model.Params, log zerolog.Logger) *Runner {
	return &Runner{Collector: col, Params: params, Now: time.Now, log: log}
}

// Run performs one full cycle. Any fetch or processing failure is terminal for the run.
// Finding no trades is not a failure; the reason is kept on the snapshot.
func (r *Runner) Run(ctx context.Context) (*Snapshot, error) {
	ds, err := r.Collector.Collect(ctx)
	if err != nil {
		var ce *collector.CollectError
		if errors.As(err, &ce) {
			if ce.Sentiment != nil {
				metrics.FetchFailuresTotal.WithLabelValues("sentiment").Inc()
			}
			if ce.Price != nil {
				metrics.FetchFailuresTotal.WithLabelValues("price").Inc()
			}
		}
		metrics.RunsTotal.WithLabelValues("fetch_error").Inc()
		return nil, err
	}

	rows, err := strategy.Process(ds.Prices, ds.Sentiment, r.Params)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to process and merge data")
		metrics.RunsTotal.WithLabelValues("process_error").Inc()
		return nil, fmt.Errorf("data processing failed: %w", err)
	}
	r.log.Info().Int("rows", len(rows)).Msg("data merged and processed")

	snap := &Snapshot{
		Rows:      rows,
		Message:   ds.Message,
		Params:    r.Params,
		FetchedAt: r.Now(),
	}
	trades, err := strategy.ExtractTrades(rows)
	switch {
	case errors.Is(err, strategy.ErrNoTrades):
		r.log.Info().Msg("no trades were triggered with the given parameters")
		snap.TradesMessage = err.Error()
	case err != nil:
		metrics.RunsTotal.WithLabelValues("process_error").Inc()
		return nil, fmt.Errorf("calculate trade history: %w", err)
	default:
		snap.Trades = trades
		snap.TradesMessage = tradesFound
	}

	latest, _ := snap.Latest()
	metrics.ObserveLatest(latest, len(snap.Trades))
	metrics.RunsTotal.WithLabelValues("success").Inc()
	r.log.Info().Str("signal", string(latest.Signal)).Int("trades", len(snap.Trades)).Msg("run complete")
	return snap, nil
}

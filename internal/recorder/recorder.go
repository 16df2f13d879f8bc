package recorder

import "MayerSentinel/internal/model"

// RunRecord holds the summary of one scheduled run.
type RunRecord struct {
	Symbol   string
	Latest   model.MergedRow
	Trades   []model.TradeEvent
	Notified bool
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}

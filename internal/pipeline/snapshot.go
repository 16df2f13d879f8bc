package pipeline

import (
	"errors"
	"fmt"
	"time"

	"MayerSentinel/internal/calculator"
	"MayerSentinel/internal/model"
)

// ErrNotEnoughData is returned when the metrics horizon exceeds the available rows.
var ErrNotEnoughData = errors.New("not enough data available for the specified period")

// Snapshot is the result of one pipeline run.
type Snapshot struct {
	Rows          []model.MergedRow  `json:"rows"`
	Trades        []model.TradeEvent `json:"trades"`
	TradesMessage string             `json:"trades_message"`
	Message       string             `json:"message"`
	Params        model.Params       `json:"params"`
	FetchedAt     time.Time          `json:"fetched_at"`
}

// Latest returns the most recent merged row.
func (s *Snapshot) Latest() (model.MergedRow, bool) {
	if s == nil || len(s.Rows) == 0 {
		return model.MergedRow{}, false
	}
	return s.Rows[len(s.Rows)-1], true
}

// Delta compares the latest value of an indicator with its value `days` rows earlier.
type Delta struct {
	Label      string  `json:"label"`
	Current    float64 `json:"current"`
	Previous   float64 `json:"previous"`
	Difference float64 `json:"difference"`
	Percent    float64 `json:"percent"`
	Available  bool    `json:"available"`
}

// Deltas returns close, multiple and sentiment deltas over the given horizon.
func (s *Snapshot) Deltas(days int) ([]Delta, error) {
	if days <= 0 || s == nil || days >= len(s.Rows) {
		return nil, ErrNotEnoughData
	}
	cur := s.Rows[len(s.Rows)-1]
	prev := s.Rows[len(s.Rows)-1-days]

	deltas := []Delta{
		newDelta(fmt.Sprintf("%d-Day Closing Price", days), cur.Close, prev.Close),
		newDelta(fmt.Sprintf("%d-Day Mayer Multiple", days), cur.Multiple, prev.Multiple),
	}
	fg := Delta{Label: fmt.Sprintf("%d-Day Fear and Greed", days)}
	if cur.Score != nil && prev.Score != nil {
		fg = newDelta(fg.Label, float64(*cur.Score), float64(*prev.Score))
	}
	return append(deltas, fg), nil
}

func newDelta(label string, current, previous float64) Delta {
	d := Delta{Label: label, Current: current, Previous: previous}
	diff, pct, err := calculator.Change(current, previous)
	d.Difference = diff
	if err == nil {
		d.Percent = pct
		d.Available = true
	}
	return d
}

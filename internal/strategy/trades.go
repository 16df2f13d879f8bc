package strategy

import (
	"errors"

	"MayerSentinel/internal/model"
)

// ErrNoTrades is returned when no row flips the buy/sell state.
var ErrNoTrades = errors.New("no trades were triggered with the given parameters")

// ExtractTrades reduces date-ordered rows to alternating entry/exit events.
// The state starts at sell, hold rows are skipped and repeats are suppressed.
func ExtractTrades(rows []model.MergedRow) ([]model.TradeEvent, error) {
	state := model.SignalSell
	var events []model.TradeEvent
	for _, row := range rows {
		switch {
		case row.Signal == model.SignalBuy && state == model.SignalSell,
			row.Signal == model.SignalSell && state == model.SignalBuy:
			state = row.Signal
			events = append(events, toEvent(row))
		}
	}
	if len(events) == 0 {
		return nil, ErrNoTrades
	}
	return events, nil
}

func toEvent(row model.MergedRow) model.TradeEvent {
	return model.TradeEvent{
		Date:          row.Date,
		Close:         row.Close,
		Volume:        row.Volume,
		Multiple:      row.Multiple,
		LowerQuantile: row.LowerQuantile,
		UpperQuantile: row.UpperQuantile,
		Signal:        row.Signal,
	}
}

package strategy

import (
	"errors"
	"testing"

	"MayerSentinel/internal/model"
)

func rowsWithSignals(signals ...model.Signal) []model.MergedRow {
	rows := make([]model.MergedRow, len(signals))
	for i, s := range signals {
		rows[i] = model.MergedRow{
			PriceBar: model.PriceBar{Date: day0.AddDate(0, 0, i), Close: float64(100 + i)},
			Signal:   s,
		}
	}
	return rows
}

func TestExtractTrades_SuppressesRepeats(t *testing.T) {
	b, s := model.SignalBuy, model.SignalSell
	events, err := ExtractTrades(rowsWithSignals(b, b, s, s, b))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		signal model.Signal
		close  float64
	}{{b, 100}, {s, 102}, {b, 104}}
	if len(events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(events))
	}
	for i, w := range want {
		if events[i].Signal != w.signal || events[i].Close != w.close {
			t.Errorf("event %d: expected %s@%.0f, got %s@%.0f", i, w.signal, w.close, events[i].Signal, events[i].Close)
		}
	}
}

func TestExtractTrades_HoldDoesNotResetState(t *testing.T) {
	b, s, h := model.SignalBuy, model.SignalSell, model.SignalHold
	events, err := ExtractTrades(rowsWithSignals(h, b, h, h, b, h, s, h, s))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[0].Signal != b || events[1].Signal != s {
		t.Fatalf("expected [buy sell], got %+v", events)
	}
}

func TestExtractTrades_LeadingSellIgnored(t *testing.T) {
	s := model.SignalSell
	if _, err := ExtractTrades(rowsWithSignals(s, s)); !errors.Is(err, ErrNoTrades) {
		t.Errorf("expected ErrNoTrades for sells from initial sell state, got %v", err)
	}
	if _, err := ExtractTrades(nil); !errors.Is(err, ErrNoTrades) {
		t.Errorf("expected ErrNoTrades for empty input, got %v", err)
	}
}

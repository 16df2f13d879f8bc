package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"MayerSentinel/internal/model"
)

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "sentinel.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	score := 18
	rec := &RunRecord{
		Symbol: "BTC-USD",
		Latest: model.MergedRow{
			PriceBar: model.PriceBar{Date: day, Close: 61000},
			Multiple: 0.71,
			Score:    &score,
			Signal:   model.SignalBuy,
		},
		Trades: []model.TradeEvent{
			{Date: day.AddDate(0, 0, -30), Signal: model.SignalBuy, Close: 40000},
			{Date: day.AddDate(0, 0, -10), Signal: model.SignalSell, Close: 70000},
		},
		Notified: true,
	}
	if err := r.RecordRun(rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	rec.Latest.Score = nil
	rec.Trades = nil
	if err := r.RecordRun(rec); err != nil {
		t.Fatalf("record without score: %v", err)
	}

	var runs, events int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs); err != nil {
		t.Fatal(err)
	}
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM trade_events`).Scan(&events); err != nil {
		t.Fatal(err)
	}
	if runs != 2 || events != 2 {
		t.Errorf("expected 2 runs and 2 events, got %d and %d", runs, events)
	}

	var signal, date string
	var gotScore *int64
	if err := r.db.QueryRow(`SELECT signal, last_date, score FROM runs ORDER BY id LIMIT 1`).
		Scan(&signal, &date, &gotScore); err != nil {
		t.Fatal(err)
	}
	if signal != "buy" || date != "2024-03-01" || gotScore == nil || *gotScore != 18 {
		t.Errorf("unexpected first run: %s %s %v", signal, date, gotScore)
	}
	if err := r.db.QueryRow(`SELECT score FROM runs ORDER BY id DESC LIMIT 1`).Scan(&gotScore); err != nil {
		t.Fatal(err)
	}
	if gotScore != nil {
		t.Errorf("expected NULL score, got %d", *gotScore)
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	if err := r.RecordRun(&RunRecord{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

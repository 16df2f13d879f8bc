package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"MayerSentinel/internal/model"
	"MayerSentinel/internal/pipeline"
	"MayerSentinel/internal/state"
)

type fakeRunner struct {
	snap  *pipeline.Snapshot
	err   error
	calls int
}

func (f *fakeRunner) Run(context.Context) (*pipeline.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func intPtr(v int) *int { return &v }

func testSnapshot() *pipeline.Snapshot {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := model.DefaultParams()
	rows := make([]model.MergedRow, 5)
	for i := range rows {
		rows[i] = model.MergedRow{
			PriceBar:      model.PriceBar{Date: start.AddDate(0, 0, i), Close: 100 + float64(i)},
			SMAShort:      100,
			SMALong:       100,
			SMA200:        100,
			Multiple:      1 + float64(i)/100,
			Score:         intPtr(40 + i),
			LowerQuantile: 1.004,
			UpperQuantile: 1.036,
			Signal:        model.SignalHold,
		}
	}
	rows[0].Signal = model.SignalBuy
	rows[4].Signal = model.SignalSell
	return &pipeline.Snapshot{
		Rows: rows,
		Trades: []model.TradeEvent{
			{Date: rows[0].Date, Close: rows[0].Close, Multiple: rows[0].Multiple, Signal: model.SignalBuy},
			{Date: rows[4].Date, Close: rows[4].Close, Multiple: rows[4].Multiple, Signal: model.SignalSell},
		},
		TradesMessage: "Trades were identified in the given time frame",
		Message:       "Fear and Greed Data: Data fetched successfully | Historical Data: Data fetched successfully",
		Params:        p,
		FetchedAt:     start.AddDate(0, 0, 5),
	}
}

func newTestServer(t *testing.T, r Runner, flags state.Store) *Server {
	t.Helper()
	s, err := NewServer(r, flags, Options{Symbol: "BTC-USD", MetricsDays: 1, Refresh: time.Hour}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestIndex_RendersSnapshot(t *testing.T) {
	runner := &fakeRunner{snap: testSnapshot()}
	s := newTestServer(t, runner, state.NewMemoryStore())

	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"BTC Trading Dashboard",
		`<h1 style="color:red">Sell</h1>`,
		"1-Day Closing Price",
		"1-Day Mayer Multiple",
		"1-Day Fear and Greed",
		"Mayer Multiple",
		"Fear and Greed Index",
		"<polygon",
		"2024-01-05",
		`content="3600"`,
		"Send trading signal to telegram bot",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
	if strings.Contains(body, " checked") {
		t.Error("checkbox should be unchecked by default")
	}
	if runner.calls != 1 {
		t.Errorf("expected one pipeline run per page load, got %d", runner.calls)
	}
}

func TestIndex_RunFailureShowsWarning(t *testing.T) {
	runner := &fakeRunner{err: errors.New("Fear and Greed Data: timeout | Historical Data: Data fetched successfully")}
	s := newTestServer(t, runner, state.NewMemoryStore())

	rec := get(t, s.Handler(), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `class="banner warning">Fear and Greed Data: timeout`) {
		t.Errorf("expected warning banner, got %s", body)
	}
	if strings.Contains(body, "<svg") {
		t.Error("charts must not render when the run fails")
	}
}

func TestIndex_NoTrades(t *testing.T) {
	snap := testSnapshot()
	snap.Trades = nil
	snap.TradesMessage = "no trades were triggered with the given parameters"
	s := newTestServer(t, &fakeRunner{snap: snap}, state.NewMemoryStore())

	body := get(t, s.Handler(), "/").Body.String()
	if !strings.Contains(body, noHistory) {
		t.Error("expected no-history warning")
	}
	if strings.Contains(body, "<polygon") {
		t.Error("no markers expected without trades")
	}
}

func TestNotify_RoundTrip(t *testing.T) {
	flags := state.NewMemoryStore()
	s := newTestServer(t, &fakeRunner{snap: testSnapshot()}, flags)
	h := s.Handler()

	post := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/notify", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post(url.Values{"enabled": {"true"}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("expected redirect to /, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if v, _ := flags.Get(state.KeySendTelegram); !v {
		t.Fatal("flag should be enabled")
	}
	if body := get(t, h, "/").Body.String(); !strings.Contains(body, " checked") {
		t.Error("checkbox should render checked")
	}

	post(url.Values{})
	if v, _ := flags.Get(state.KeySendTelegram); v {
		t.Fatal("missing field should disable the flag")
	}

	if rec := post(url.Values{"enabled": {"maybe"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid value, got %d", rec.Code)
	}
}

func TestSnapshotAPI(t *testing.T) {
	s := newTestServer(t, &fakeRunner{snap: testSnapshot()}, state.NewMemoryStore())
	rec := get(t, s.Handler(), "/api/snapshot")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got struct {
		Rows   []json.RawMessage `json:"rows"`
		Trades []struct {
			Signal string `json:"signal"`
		} `json:"trades"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Rows) != 5 || len(got.Trades) != 2 || got.Trades[0].Signal != "buy" {
		t.Errorf("unexpected snapshot %+v", got)
	}

	s = newTestServer(t, &fakeRunner{err: errors.New("boom")}, state.NewMemoryStore())
	rec = get(t, s.Handler(), "/api/snapshot")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	s := newTestServer(t, &fakeRunner{snap: testSnapshot()}, state.NewMemoryStore())
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "sentinel_runs_total") && !strings.Contains(string(b), "go_goroutines") {
		t.Errorf("unexpected metrics output")
	}
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := newTestServer(t, &fakeRunner{snap: testSnapshot()}, state.NewMemoryStore())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

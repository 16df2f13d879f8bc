package scheduler

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"MayerSentinel/internal/model"
	"MayerSentinel/internal/pipeline"
	"MayerSentinel/internal/recorder"
	"MayerSentinel/internal/state"
)

type fakeRunner struct {
	snap *pipeline.Snapshot
	err  error
}

func (f *fakeRunner) Run(context.Context) (*pipeline.Snapshot, error) { return f.snap, f.err }

type fakeSender struct {
	texts []string
	err   error
}

func (f *fakeSender) Send(_ context.Context, text string) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	return nil
}

type fakeRecorder struct {
	runs []*recorder.RunRecord
}

func (f *fakeRecorder) RecordRun(rec *recorder.RunRecord) error {
	f.runs = append(f.runs, rec)
	return nil
}
func (f *fakeRecorder) Close() error { return nil }

func snapshot() *pipeline.Snapshot {
	score := 22
	return &pipeline.Snapshot{Rows: []model.MergedRow{{
		PriceBar: model.PriceBar{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Close: 64123.6},
		Score:    &score,
		Signal:   model.SignalBuy,
	}}}
}

func newTestScheduler(r Runner, flags state.Store, s Sender, rec recorder.Recorder) *Scheduler {
	sched := NewScheduler(context.Background(), r, flags, s, rec,
		Options{Symbol: "BTC-USD", Currency: "USD"}, zerolog.Nop())
	sched.Now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }
	return sched
}

func TestRunNow_SendsWhenEnabled(t *testing.T) {
	flags := state.NewMemoryStore()
	_ = flags.Set(state.KeySendTelegram, true)
	sender := &fakeSender{}
	rec := &fakeRecorder{}

	s := newTestScheduler(&fakeRunner{snap: snapshot()}, flags, sender, rec)
	if err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if len(sender.texts) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.texts))
	}
	want := "BTC Trading Dashboard on 01.05.2024 08:00:00:\nSignal: <b>BUY</b>\nPrice: <b>64124</b> USD\nFear and Greed Index: <b>22</b>"
	if sender.texts[0] != want {
		t.Errorf("unexpected message:\n%s", sender.texts[0])
	}
	if len(rec.runs) != 1 || !rec.runs[0].Notified {
		t.Errorf("expected one notified run record, got %+v", rec.runs)
	}
}

func TestRunNow_SkipsWhenDisabled(t *testing.T) {
	sender := &fakeSender{}
	rec := &fakeRecorder{}
	s := newTestScheduler(&fakeRunner{snap: snapshot()}, state.NewMemoryStore(), sender, rec)

	if err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if len(sender.texts) != 0 {
		t.Errorf("expected no messages, got %d", len(sender.texts))
	}
	if len(rec.runs) != 1 || rec.runs[0].Notified {
		t.Errorf("expected one unnotified run record, got %+v", rec.runs)
	}
}

func TestRunNow_PipelineFailure(t *testing.T) {
	sender := &fakeSender{}
	rec := &fakeRecorder{}
	flags := state.NewMemoryStore()
	_ = flags.Set(state.KeySendTelegram, true)
	s := newTestScheduler(&fakeRunner{err: errors.New("Fear and Greed Data: down | Historical Data: ok")}, flags, sender, rec)

	err := s.RunNow(context.Background())
	if err == nil || !strings.Contains(err.Error(), "Fear and Greed Data") {
		t.Fatalf("expected pipeline error, got %v", err)
	}
	if len(sender.texts) != 0 || len(rec.runs) != 0 {
		t.Error("no send or record expected after a failed run")
	}
}

func TestRunNow_SendFailureIsRecorded(t *testing.T) {
	flags := state.NewMemoryStore()
	_ = flags.Set(state.KeySendTelegram, true)
	rec := &fakeRecorder{}
	s := newTestScheduler(&fakeRunner{snap: snapshot()}, flags, &fakeSender{err: errors.New("chat not found")}, rec)

	if err := s.RunNow(context.Background()); err != nil {
		t.Fatalf("send failure should not fail the run: %v", err)
	}
	if len(rec.runs) != 1 || rec.runs[0].Notified {
		t.Errorf("expected unnotified record, got %+v", rec.runs)
	}
}

func TestRegister(t *testing.T) {
	s := newTestScheduler(&fakeRunner{snap: snapshot()}, state.NewMemoryStore(), &fakeSender{}, nil)
	if err := s.Register("0 0 8 * * *"); err != nil {
		t.Fatalf("valid cron rejected: %v", err)
	}
	if err := s.Register("not a cron"); err == nil {
		t.Error("expected error for invalid cron")
	}
	if len(s.Cron.Entries()) != 1 {
		t.Errorf("expected 1 entry, got %d", len(s.Cron.Entries()))
	}
}

type blockingRunner struct {
	release chan struct{}
	snap    *pipeline.Snapshot
}

func (b *blockingRunner) Run(context.Context) (*pipeline.Snapshot, error) {
	<-b.release
	return b.snap, nil
}

func TestStop_WaitsForBackgroundRun(t *testing.T) {
	runner := &blockingRunner{release: make(chan struct{}), snap: snapshot()}
	rec := &fakeRecorder{}
	s := newTestScheduler(runner, state.NewMemoryStore(), &fakeSender{}, rec)
	s.Start()
	s.RunInBackground(context.Background())

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the background run was still in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(runner.release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the background run finished")
	}
	if len(rec.runs) != 1 {
		t.Errorf("expected the background run to be recorded before Stop returned, got %d", len(rec.runs))
	}
}

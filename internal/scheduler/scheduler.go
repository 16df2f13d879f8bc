package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"MayerSentinel/internal/metrics"
	"MayerSentinel/internal/notifier"
	"MayerSentinel/internal/pipeline"
	"MayerSentinel/internal/recorder"
	"MayerSentinel/internal/state"
)

// Runner produces one pipeline snapshot.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Snapshot, error)
}

// Sender delivers a formatted message.
type Sender interface {
	Send(ctx context.Context, text string) error
}

// Options controls message formatting.
type Options struct {
	Symbol   string
	Currency string
	Location *time.Location
}

// Scheduler manages the notification cron job.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Flags    state.Store
	Sender   Sender
	Recorder recorder.Recorder
	Options  Options
	Ctx      context.Context
	Now      func() time.Time

	log        zerolog.Logger
	background sync.WaitGroup
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, flags state.Store, sender Sender, rec recorder.Recorder, opts Options, log zerolog.Logger) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Flags:    flags,
		Sender:   sender,
		Recorder: rec,
		Options:  opts,
		Ctx:      ctx,
		Now:      time.Now,
		log:      log,
	}
}

// Register adds the notification task on the given cron expression.
func (s *Scheduler) Register(notifyCron string) error {
	if _, err := s.Cron.AddFunc(notifyCron, s.notifyTask); err != nil {
		return fmt.Errorf("register notify task: %w", err)
	}
	s.log.Info().Str("cron", notifyCron).Msg("notify task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running cron and background tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.background.Wait()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the notification task immediately (CLI run).
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.runOnce(ctx)
}

// RunInBackground starts one notification task outside the cron schedule (RUN_ON_START).
// Stop waits for it to finish.
func (s *Scheduler) RunInBackground(ctx context.Context) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.runOnce(ctx); err != nil {
			s.log.Error().Err(err).Msg("background notify task failed")
		}
	}()
}

func (s *Scheduler) notifyTask() {
	if err := s.runOnce(s.Ctx); err != nil {
		s.log.Error().Err(err).Msg("notify task failed")
	}
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	s.log.Info().Msg("running notify task")
	snap, err := s.Runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	latest, ok := snap.Latest()
	if !ok {
		return errors.New("pipeline produced no rows")
	}

	notified := false
	enabled, err := s.Flags.Get(state.KeySendTelegram)
	if err != nil {
		s.log.Error().Err(err).Msg("read notification flag")
	}
	if enabled {
		text := notifier.FormatSignalMessage(notifier.AssetName(s.Options.Symbol), latest,
			s.Options.Currency, s.Now().In(s.Options.Location))
		if err := s.Sender.Send(ctx, text); err != nil {
			metrics.NotificationsTotal.WithLabelValues("error").Inc()
			s.log.Error().Err(err).Msg("send notification")
		} else {
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
			notified = true
			s.log.Info().Str("signal", string(latest.Signal)).Msg("notification sent")
		}
	} else {
		metrics.NotificationsTotal.WithLabelValues("disabled").Inc()
		s.log.Info().Msg("notifications disabled, skipping send")
	}

	if err := s.Recorder.RecordRun(&recorder.RunRecord{
		Symbol:   s.Options.Symbol,
		Latest:   latest,
		Trades:   snap.Trades,
		Notified: notified,
	}); err != nil {
		s.log.Error().Err(err).Msg("record run")
	}
	return nil
}

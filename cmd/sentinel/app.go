package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"MayerSentinel/internal/collector"
	"MayerSentinel/internal/config"
	"MayerSentinel/internal/notifier"
	"MayerSentinel/internal/pipeline"
	"MayerSentinel/internal/recorder"
	"MayerSentinel/internal/state"
	"MayerSentinel/internal/util"
)

// app holds the wired components shared by all commands.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	runner   *pipeline.Runner
	flags    state.Store
	notifier *notifier.TelegramNotifier
}

func loadApp(cfgPath string) (*app, error) {
	if cfgPath == "" {
		cfgPath = config.Path()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	log := util.NewLogger(cfg.LogLevel)

	var prices collector.PriceFetcher
	switch cfg.DataSource.Provider {
	case "financego":
		prices = collector.NewFinanceGoFetcher(cfg.DataSource.PriceURL, cfg.Proxy)
	default:
		prices = collector.NewYahooFetcher(cfg.DataSource.PriceURL, cfg.Proxy)
	}
	log.Info().Str("provider", prices.Name()).Str("symbol", cfg.DataSource.Symbol).Msg("price source selected")

	sentiment := collector.NewFearGreedFetcher(cfg.DataSource.SentimentURL, cfg.Proxy)
	col := collector.NewCollector(prices, sentiment, cfg.DataSource.Symbol, cfg.DataSource.Days, log)

	return &app{
		cfg:      cfg,
		log:      log,
		runner:   pipeline.NewRunner(col, cfg.Params(), log),
		flags:    state.NewJSONFileStore(cfg.StateFile),
		notifier: notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.Endpoint, cfg.Proxy),
	}, nil
}

// openRecorder falls back to a no-op recorder when SQLite is unavailable.
func (a *app) openRecorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, a.log)
	if err != nil {
		a.log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

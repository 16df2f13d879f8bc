package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"MayerSentinel/internal/model"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Strategy struct {
		LowerMultipleQuantile   float64 `yaml:"lower_multiple_quantile"`
		UpperMultipleQuantile   float64 `yaml:"upper_multiple_quantile"`
		LowerSentimentThreshold int     `yaml:"lower_sentiment_threshold"`
		UpperSentimentThreshold int     `yaml:"upper_sentiment_threshold"`
		ShortWindow             int     `yaml:"short_window"`
		LongWindow              int     `yaml:"long_window"`
	} `yaml:"strategy"`
	DataSource struct {
		Provider     string `yaml:"provider"`
		Symbol       string `yaml:"symbol"`
		Days         int    `yaml:"days"`
		SentimentURL string `yaml:"sentiment_url"`
		PriceURL     string `yaml:"price_url"`
		Currency     string `yaml:"currency"`
	} `yaml:"data_source"`
	MetricsDays int `yaml:"metrics_days"`
	Telegram    struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"telegram"`
	StateFile string `yaml:"state_file"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		NotifyCron string `yaml:"notify_cron"`
		Timezone   string `yaml:"timezone"`
	} `yaml:"schedule"`
	Dashboard struct {
		Addr    string        `yaml:"addr"`
		Refresh time.Duration `yaml:"refresh"`
	} `yaml:"dashboard"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Path returns CONFIG_PATH or the default location.
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, loads .env, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := firstEnv("BOT_ID", "TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := firstEnv("CHAT_ID", "TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("STATE_FILE"); v != "" {
		cfg.StateFile = v
	}
	if v := os.Getenv("DASHBOARD_ADDR"); v != "" {
		cfg.Dashboard.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CRON_NOTIFY"); v != "" {
		cfg.Schedule.NotifyCron = v
	}
	if v := os.Getenv("PRICE_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("METRICS_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MetricsDays = n
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func applyDefaults(cfg *Config) {
	def := model.DefaultParams()
	s := &cfg.Strategy
	if s.LowerMultipleQuantile == 0 && s.UpperMultipleQuantile == 0 {
		s.LowerMultipleQuantile = def.LowerMultipleQuantile
		s.UpperMultipleQuantile = def.UpperMultipleQuantile
	}
	if s.LowerSentimentThreshold == 0 && s.UpperSentimentThreshold == 0 {
		s.LowerSentimentThreshold = def.LowerSentimentThreshold
		s.UpperSentimentThreshold = def.UpperSentimentThreshold
	}
	if s.ShortWindow == 0 {
		s.ShortWindow = def.ShortWindow
	}
	if s.LongWindow == 0 {
		s.LongWindow = def.LongWindow
	}

	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "BTC-USD"
	}
	if cfg.DataSource.Days == 0 {
		cfg.DataSource.Days = 2000
	}
	if cfg.DataSource.Currency == "" {
		cfg.DataSource.Currency = "USD"
	}
	if cfg.MetricsDays == 0 {
		cfg.MetricsDays = 1
	}
	if cfg.StateFile == "" {
		cfg.StateFile = "data/checkbox_state.json"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/mayer_sentinel.db"
	}
	if cfg.Schedule.NotifyCron == "" {
		cfg.Schedule.NotifyCron = "0 0 8 * * *"
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Europe/Zurich"
	}
	if cfg.Dashboard.Addr == "" {
		cfg.Dashboard.Addr = ":8501"
	}
	if cfg.Dashboard.Refresh == 0 {
		cfg.Dashboard.Refresh = time.Hour
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Params returns the strategy parameters for the signal engine.
func (c *Config) Params() model.Params {
	return model.Params{
		LowerMultipleQuantile:   c.Strategy.LowerMultipleQuantile,
		UpperMultipleQuantile:   c.Strategy.UpperMultipleQuantile,
		LowerSentimentThreshold: c.Strategy.LowerSentimentThreshold,
		UpperSentimentThreshold: c.Strategy.UpperSentimentThreshold,
		ShortWindow:             c.Strategy.ShortWindow,
		LongWindow:              c.Strategy.LongWindow,
	}
}

// Location resolves the schedule timezone used for message timestamps.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Schedule.Timezone, err)
	}
	return loc, nil
}

// Validate checks strategy bounds and data source settings.
// Telegram credentials are checked only when a message is sent.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	switch c.DataSource.Provider {
	case "yahoo", "financego":
	default:
		return fmt.Errorf("data_source.provider must be yahoo or financego, got %q", c.DataSource.Provider)
	}
	if c.DataSource.Days < 200 {
		return fmt.Errorf("data_source.days must be at least 200")
	}
	if c.MetricsDays <= 0 {
		return fmt.Errorf("metrics_days must be positive")
	}
	if c.Dashboard.Refresh < 0 {
		return fmt.Errorf("dashboard.refresh must not be negative")
	}
	return nil
}

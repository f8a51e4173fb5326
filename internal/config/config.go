package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"SignalWatch/internal/model"
)

// Data providers.
const (
	ProviderYahoo = "yahoo"
	ProviderREST  = "rest"
)

// Portfolio stores.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// DefaultWatchlist is screened when analysis.watchlist is empty.
var DefaultWatchlist = []string{
	"7203.T", // Toyota Motor
	"9984.T", // SoftBank Group
	"6758.T", // Sony Group
	"6861.T", // Keyence
	"8306.T", // Mitsubishi UFJ
	"6367.T", // Daikin
	"9983.T", // Fast Retailing
	"4502.T", // Takeda
	"9432.T", // NTT
	"9433.T", // KDDI
	"4503.T", // Astellas
	"6369.T",
	"8308.T", // Resona
	"6368.T", // Organo
	"8309.T", // Sumitomo Mitsui Trust
	"6366.T",
}

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Analysis struct {
		Period       string        `yaml:"period"`
		Interval     string        `yaml:"interval"`
		FetchTimeout time.Duration `yaml:"fetch_timeout"`
		Concurrency  int           `yaml:"concurrency"`
		Watchlist    []string      `yaml:"watchlist"`
	} `yaml:"analysis"`
	Portfolio struct {
		Store string `yaml:"store"`
		File  string `yaml:"file"`
	} `yaml:"portfolio"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		SellScanCron  string `yaml:"sell_scan_cron"`
		ValuationCron string `yaml:"valuation_cron"`
		ScreenCron    string `yaml:"screen_cron"`
	} `yaml:"schedule"`
	Web struct {
		Addr string `yaml:"addr"`
	} `yaml:"web"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Currency string `yaml:"currency"`
	Proxy    string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"DATA_PROVIDER":      &c.DataSource.Provider,
		"DATA_BASE_URL":      &c.DataSource.BaseURL,
		"DATA_API_KEY":       &c.DataSource.APIKey,
		"HTTPS_PROXY":        &c.Proxy,
		"SQLITE_PATH":        &c.Database.SQLitePath,
		"PORTFOLIO_FILE":     &c.Portfolio.File,
		"WEB_ADDR":           &c.Web.Addr,
		"LOG_LEVEL":          &c.Log.Level,
	}
	for key, dst := range overrides {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("FETCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.Concurrency = n
		}
	}
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.Analysis.Period == "" {
		c.Analysis.Period = string(model.Period6mo)
	}
	if c.Analysis.Interval == "" {
		c.Analysis.Interval = string(model.Interval1d)
	}
	if c.Analysis.FetchTimeout == 0 {
		c.Analysis.FetchTimeout = 10 * time.Second
	}
	if c.Analysis.Concurrency == 0 {
		c.Analysis.Concurrency = 8
	}
	if len(c.Analysis.Watchlist) == 0 {
		c.Analysis.Watchlist = append([]string(nil), DefaultWatchlist...)
	}
	if c.Portfolio.Store == "" {
		c.Portfolio.Store = StoreFile
	}
	if c.Portfolio.File == "" {
		c.Portfolio.File = "data/portfolio.json"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/signalwatch.db"
	}
	if c.Schedule.SellScanCron == "" {
		c.Schedule.SellScanCron = "0 30 15 * * 1-5" // after the TSE close
	}
	if c.Schedule.ValuationCron == "" {
		c.Schedule.ValuationCron = "0 0 16 * * 1-5"
	}
	if c.Schedule.ScreenCron == "" {
		c.Schedule.ScreenCron = "0 0 8 * * 1-5"
	}
	if c.Web.Addr == "" {
		c.Web.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Currency == "" {
		c.Currency = "JPY"
	}
}

// Validate checks that all fields hold usable values. Telegram credentials
// are checked separately by TelegramEnabled since the bot is optional.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case ProviderYahoo:
	case ProviderREST:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if !model.Period(c.Analysis.Period).Valid() {
		return fmt.Errorf("analysis.period %q is not supported", c.Analysis.Period)
	}
	if !model.Interval(c.Analysis.Interval).Valid() {
		return fmt.Errorf("analysis.interval %q is not supported", c.Analysis.Interval)
	}
	if c.Analysis.FetchTimeout <= 0 {
		return fmt.Errorf("analysis.fetch_timeout must be positive")
	}
	if c.Analysis.Concurrency <= 0 {
		return fmt.Errorf("analysis.concurrency must be positive")
	}
	switch c.Portfolio.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("portfolio.store %q is not supported", c.Portfolio.Store)
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// TelegramEnabled reports whether bot credentials are configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ChatID parses telegram.chat_id.
func (c *Config) ChatID() (int64, error) {
	id, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("telegram.chat_id: %w", err)
	}
	return id, nil
}

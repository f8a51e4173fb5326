package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderYahoo, cfg.DataSource.Provider)
	assert.Equal(t, "6mo", cfg.Analysis.Period)
	assert.Equal(t, "1d", cfg.Analysis.Interval)
	assert.Equal(t, 10*time.Second, cfg.Analysis.FetchTimeout)
	assert.Equal(t, 8, cfg.Analysis.Concurrency)
	assert.Equal(t, DefaultWatchlist, cfg.Analysis.Watchlist)
	assert.Equal(t, StoreFile, cfg.Portfolio.Store)
	assert.Equal(t, "data/portfolio.json", cfg.Portfolio.File)
	assert.Equal(t, "data/signalwatch.db", cfg.Database.SQLitePath)
	assert.Equal(t, ":8080", cfg.Web.Addr)
	assert.Equal(t, "JPY", cfg.Currency)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "12345"
data_source:
  provider: rest
  base_url: http://quotes.local
analysis:
  period: 1y
  fetch_timeout: 3s
  watchlist: [AAPL, MSFT]
portfolio:
  store: sqlite
currency: USD
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("WEB_ADDR", ":9090")
	t.Setenv("FETCH_CONCURRENCY", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, ProviderREST, cfg.DataSource.Provider)
	assert.Equal(t, "1y", cfg.Analysis.Period)
	assert.Equal(t, 3*time.Second, cfg.Analysis.FetchTimeout)
	assert.Equal(t, 3, cfg.Analysis.Concurrency)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Analysis.Watchlist)
	assert.Equal(t, StoreSQLite, cfg.Portfolio.Store)
	assert.Equal(t, ":9090", cfg.Web.Addr)
	assert.Equal(t, "USD", cfg.Currency)
	assert.True(t, cfg.TelegramEnabled())

	id, err := cfg.ChatID()
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "telegram: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }},
		{"rest without url", func(c *Config) { c.DataSource.Provider = ProviderREST }},
		{"bad period", func(c *Config) { c.Analysis.Period = "7w" }},
		{"bad interval", func(c *Config) { c.Analysis.Interval = "1h" }},
		{"negative timeout", func(c *Config) { c.Analysis.FetchTimeout = -time.Second }},
		{"negative concurrency", func(c *Config) { c.Analysis.Concurrency = -1 }},
		{"unknown store", func(c *Config) { c.Portfolio.Store = "redis" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

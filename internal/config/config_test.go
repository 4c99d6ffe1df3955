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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "alphavantage", cfg.DataSource.Provider)
	assert.Equal(t, 2, cfg.DataSource.RecentDays)
	assert.Equal(t, 5, cfg.DataSource.RequestsPerMinute)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 20, cfg.Indicators.Window)
	assert.Equal(t, 1.96, cfg.Indicators.Z)
	assert.Equal(t, "0 0 22 * * 1-5", cfg.Schedule.FetchCron)
	assert.Equal(t, 24*time.Hour, cfg.Export.RedisTTL)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: alphavantage
  api_key: file-key
  symbols: [IBM, AAPL]
  recent_days: 5
database:
  driver: postgres
  postgres_dsn: postgres://localhost/stocks
indicators:
  window: 10
  z: 2
export:
  json_dir: out
  redis_ttl: 1h
`)
	t.Setenv("ALPHAVANTAGE_API_KEY", "env-key")
	t.Setenv("STOCK_SYMBOLS", "MSFT, TSLA ,")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.DataSource.APIKey)
	assert.Equal(t, []string{"MSFT", "TSLA"}, cfg.DataSource.Symbols)
	assert.Equal(t, 5, cfg.DataSource.RecentDays)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Indicators.Window)
	assert.Equal(t, 2.0, cfg.Indicators.Z)
	assert.Equal(t, "out", cfg.Export.JSONDir)
	assert.Equal(t, time.Hour, cfg.Export.RedisTTL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExplicitZeros(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
data_source:
  symbols: [IBM]
  recent_days: 0
indicators:
  z: 0
`))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.DataSource.RecentDays)
	assert.Equal(t, 0.0, cfg.Indicators.Z)
	assert.Equal(t, 20, cfg.Indicators.Window)

	cfg, err = Load(writeConfig(t, `
data_source:
  symbols: [IBM]
`))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.DataSource.RecentDays)
	assert.Equal(t, 1.96, cfg.Indicators.Z)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "data_source: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		cfg.DataSource.Symbols = []string{"IBM"}
		cfg.DataSource.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name string
		edit func(c *Config)
		ok   bool
	}{
		{"valid", func(c *Config) {}, true},
		{"no symbols", func(c *Config) { c.DataSource.Symbols = nil }, false},
		{"padded symbol", func(c *Config) { c.DataSource.Symbols = []string{" IBM"} }, false},
		{"missing api key", func(c *Config) { c.DataSource.APIKey = "" }, false},
		{"yahoo needs no key", func(c *Config) { c.DataSource.Provider, c.DataSource.APIKey = "yahoo", "" }, true},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, false},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"memory driver", func(c *Config) { c.Database.Driver = "memory" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, false},
		{"window too small", func(c *Config) { c.Indicators.Window = 1 }, false},
		{"negative z", func(c *Config) { c.Indicators.Z = -1 }, false},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "t" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.edit(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

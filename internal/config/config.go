package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource DataSource `yaml:"data_source"`
	Database   Database   `yaml:"database"`
	Indicators Indicators `yaml:"indicators"`
	Schedule   Schedule   `yaml:"schedule"`
	Export     Export     `yaml:"export"`
	Telegram   Telegram   `yaml:"telegram"`
	Metrics    Metrics    `yaml:"metrics"`
	Proxy      string     `yaml:"proxy"`
}

type DataSource struct {
	Provider          string   `yaml:"provider"` // alphavantage, yahoo or mock
	APIKey            string   `yaml:"api_key"`
	Symbols           []string `yaml:"symbols"`
	RecentDays        int      `yaml:"recent_days"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
}

type Database struct {
	Driver      string `yaml:"driver"` // sqlite, postgres or memory
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type Indicators struct {
	Window int     `yaml:"window"`
	Z      float64 `yaml:"z"`
}

type Schedule struct {
	FetchCron   string `yaml:"fetch_cron"`
	AnalyzeCron string `yaml:"analyze_cron"` // optional
}

type Export struct {
	JSONDir   string        `yaml:"json_dir"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisTTL  time.Duration `yaml:"redis_ttl"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// Enabled reports whether run summaries should be sent.
func (t Telegram) Enabled() bool { return t.BotToken != "" && t.ChatID != "" }

type Metrics struct {
	Addr string `yaml:"addr"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (*Config, error) {
	// Zero is a valid recent_days (merge everything) and z (bands on the SMA),
	// so their defaults are in place before decoding instead of filled in after.
	cfg := &Config{
		DataSource: DataSource{RecentDays: 2},
		Indicators: Indicators{Z: 1.96},
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("STOCK_SYMBOLS"); v != "" {
		cfg.DataSource.Symbols = splitList(v)
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Export.RedisAddr = v
	}
	if v := os.Getenv("EXPORT_JSON_DIR"); v != "" {
		cfg.Export.JSONDir = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_FETCH"); v != "" {
		cfg.Schedule.FetchCron = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("INDICATOR_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indicators.Window = n
		}
	}

	// Defaults
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "alphavantage"
	}
	if cfg.DataSource.RequestsPerMinute == 0 {
		cfg.DataSource.RequestsPerMinute = 5
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/stock_data.db"
	}
	if cfg.Indicators.Window == 0 {
		cfg.Indicators.Window = 20
	}
	if cfg.Schedule.FetchCron == "" {
		cfg.Schedule.FetchCron = "0 0 22 * * 1-5"
	}
	if cfg.Export.RedisTTL == 0 {
		cfg.Export.RedisTTL = 24 * time.Hour
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if len(c.DataSource.Symbols) == 0 {
		return fmt.Errorf("data_source.symbols is required")
	}
	for _, s := range c.DataSource.Symbols {
		if strings.TrimSpace(s) == "" || strings.TrimSpace(s) != s {
			return fmt.Errorf("data_source.symbols: invalid symbol %q", s)
		}
	}
	switch c.DataSource.Provider {
	case "alphavantage":
		if c.DataSource.APIKey == "" {
			return fmt.Errorf("data_source.api_key is required for alphavantage")
		}
	case "yahoo", "mock":
	default:
		return fmt.Errorf("data_source.provider %q is not supported", c.DataSource.Provider)
	}
	if c.DataSource.RecentDays < 0 {
		return fmt.Errorf("data_source.recent_days must not be negative")
	}
	if c.DataSource.RequestsPerMinute < 0 {
		return fmt.Errorf("data_source.requests_per_minute must not be negative")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("database.sqlite_path is required")
		}
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required for postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Indicators.Window < 2 {
		return fmt.Errorf("indicators.window must be at least 2")
	}
	if c.Indicators.Z < 0 {
		return fmt.Errorf("indicators.z must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

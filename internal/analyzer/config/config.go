package config

import (
	"time"

	"golang-stock-analyzer/pkg/config"
)

// Analyzer holds orchestration settings for the analysis service.
type Analyzer struct {
	MaxConcurrentJobs int           `mapstructure:"max_concurrent_jobs"`
	MaxBatchSize      int           `mapstructure:"max_batch_size"`
	SubjectTimeout    time.Duration `mapstructure:"subject_timeout"`
	QueueSize         int           `mapstructure:"queue_size"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`

	// Cache TTLs per category.
	PriceCacheTTL       time.Duration `mapstructure:"price_cache_ttl"`
	FundamentalCacheTTL time.Duration `mapstructure:"fundamental_cache_ttl"`
	NewsCacheTTL        time.Duration `mapstructure:"news_cache_ttl"`

	// Score weights; must sum to 1.0.
	TechnicalWeight   float64 `mapstructure:"technical_weight"`
	FundamentalWeight float64 `mapstructure:"fundamental_weight"`
	SentimentWeight   float64 `mapstructure:"sentiment_weight"`

	PriceLookback string `mapstructure:"price_lookback"`
	NewsWindow    int    `mapstructure:"news_window_days"`
	MaxNewsCount  int    `mapstructure:"max_news_count"`
}

// Watchlist holds the scheduled re-analysis settings.
type Watchlist struct {
	CronSpec string   `mapstructure:"cron_spec"`
	Symbols  []string `mapstructure:"symbols"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI holds configuration for AI providers.
type AI struct {
	Provider        string `mapstructure:"provider"`
	EnableStreaming bool   `mapstructure:"enable_streaming"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// MarketData holds the configuration for the market data API.
type MarketData struct {
	BaseURL             string `mapstructure:"base_url"`
	NewsFeedURL         string `mapstructure:"news_feed_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Config holds the full configuration for the analyzer service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Analyzer   Analyzer        `mapstructure:"analyzer"`
	Watchlist  Watchlist       `mapstructure:"watchlist"`
	Gemini     Gemini          `mapstructure:"gemini"`
	AI         AI              `mapstructure:"ai"`
	Telegram   Telegram        `mapstructure:"telegram"`
	MarketData MarketData      `mapstructure:"market_data"`
}

// Load loads the analyzer configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Analyzer.MaxConcurrentJobs <= 0 {
		c.Analyzer.MaxConcurrentJobs = 4
	}
	if c.Analyzer.MaxBatchSize <= 0 {
		c.Analyzer.MaxBatchSize = 10
	}
	if c.Analyzer.SubjectTimeout <= 0 {
		c.Analyzer.SubjectTimeout = 60 * time.Second
	}
	if c.Analyzer.QueueSize <= 0 {
		c.Analyzer.QueueSize = 256
	}
	if c.Analyzer.HeartbeatInterval <= 0 {
		c.Analyzer.HeartbeatInterval = 30 * time.Second
	}
	if c.Analyzer.PriceCacheTTL <= 0 {
		c.Analyzer.PriceCacheTTL = time.Hour
	}
	if c.Analyzer.FundamentalCacheTTL <= 0 {
		c.Analyzer.FundamentalCacheTTL = 6 * time.Hour
	}
	if c.Analyzer.NewsCacheTTL <= 0 {
		c.Analyzer.NewsCacheTTL = 2 * time.Hour
	}
	if c.Analyzer.TechnicalWeight == 0 && c.Analyzer.FundamentalWeight == 0 && c.Analyzer.SentimentWeight == 0 {
		c.Analyzer.TechnicalWeight = 0.4
		c.Analyzer.FundamentalWeight = 0.4
		c.Analyzer.SentimentWeight = 0.2
	}
	if c.Analyzer.PriceLookback == "" {
		c.Analyzer.PriceLookback = "1y"
	}
	if c.Analyzer.NewsWindow <= 0 {
		c.Analyzer.NewsWindow = 30
	}
	if c.Analyzer.MaxNewsCount <= 0 {
		c.Analyzer.MaxNewsCount = 50
	}
}

package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/brandscope/brandscope-cli/internal/cost"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Serper    SerperConfig    `yaml:"serper" mapstructure:"serper"`
	Intel     IntelConfig     `yaml:"intel" mapstructure:"intel"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Pricing   cost.Rates      `yaml:"pricing" mapstructure:"pricing"`
}

// StoreConfig configures the run store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AnthropicConfig holds Anthropic API settings. Model drives the search and
// classification stages; NarrativeModel drives the white-space narrative.
type AnthropicConfig struct {
	Key            string `yaml:"key" mapstructure:"key"`
	Model          string `yaml:"model" mapstructure:"model"`
	NarrativeModel string `yaml:"narrative_model" mapstructure:"narrative_model"`
	MaxTokens      int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SerperConfig holds web search API settings.
type SerperConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// IntelConfig configures the competitive-intelligence pipeline.
type IntelConfig struct {
	SearchTimeoutSecs     int `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	ClassifyTimeoutSecs   int `yaml:"classify_timeout_secs" mapstructure:"classify_timeout_secs"`
	WhitespaceTimeoutSecs int `yaml:"whitespace_timeout_secs" mapstructure:"whitespace_timeout_secs"`
	SearchResults         int `yaml:"search_results" mapstructure:"search_results"`
	MaxClassify           int `yaml:"max_classify" mapstructure:"max_classify"`
	MaxExposed            int `yaml:"max_exposed" mapstructure:"max_exposed"`
	MaxRegionConcurrency  int `yaml:"max_region_concurrency" mapstructure:"max_region_concurrency"`
	CacheSize             int `yaml:"cache_size" mapstructure:"cache_size"`
}

// SearchTimeout returns the per-call region search timeout.
func (c IntelConfig) SearchTimeout() time.Duration {
	return time.Duration(c.SearchTimeoutSecs) * time.Second
}

// ClassifyTimeout returns the classification call timeout.
func (c IntelConfig) ClassifyTimeout() time.Duration {
	return time.Duration(c.ClassifyTimeoutSecs) * time.Second
}

// WhitespaceTimeout returns the white-space analysis call timeout.
func (c IntelConfig) WhitespaceTimeout() time.Duration {
	return time.Duration(c.WhitespaceTimeoutSecs) * time.Second
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BRANDSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "brandscope.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent", 3)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.narrative_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("serper.rate_limit", 5.0)
	v.SetDefault("intel.search_timeout_secs", 20)
	v.SetDefault("intel.classify_timeout_secs", 45)
	v.SetDefault("intel.whitespace_timeout_secs", 45)
	v.SetDefault("intel.search_results", 5)
	v.SetDefault("intel.max_classify", 30)
	v.SetDefault("intel.max_exposed", 20)
	v.SetDefault("intel.max_region_concurrency", 6)
	v.SetDefault("intel.cache_size", 512)
	v.SetDefault("pricing.serper.per_query", 0.001)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if len(cfg.Pricing.Anthropic) == 0 {
		cfg.Pricing.Anthropic = cost.DefaultRates().Anthropic
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Navigate  NavigateConfig  `yaml:"navigate" mapstructure:"navigate"`
	Pacing    PacingConfig    `yaml:"pacing" mapstructure:"pacing"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Selectors SelectorsConfig `yaml:"selectors" mapstructure:"selectors"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// BrowserConfig configures the Chrome session.
type BrowserConfig struct {
	// Headless moves the window off-screen rather than using headless mode,
	// which Maps fingerprints aggressively.
	Headless bool   `yaml:"headless" mapstructure:"headless"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	// SearchURL is the search endpoint the query is percent-encoded against.
	SearchURL string `yaml:"search_url" mapstructure:"search_url"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// NavigateConfig bounds the page-load retry loop.
type NavigateConfig struct {
	MaxLoadRetries  int `yaml:"max_load_retries" mapstructure:"max_load_retries"`
	LoadTimeoutSecs int `yaml:"load_timeout_secs" mapstructure:"load_timeout_secs"`
	// FeedTimeoutSecs bounds the wait for the results feed before the
	// indirect click-through phase.
	FeedTimeoutSecs   int `yaml:"feed_timeout_secs" mapstructure:"feed_timeout_secs"`
	DetailTimeoutSecs int `yaml:"detail_timeout_secs" mapstructure:"detail_timeout_secs"`
}

// PacingConfig configures the randomized inter-lookup delay.
type PacingConfig struct {
	MinSecs float64 `yaml:"min_secs" mapstructure:"min_secs"`
	MaxSecs float64 `yaml:"max_secs" mapstructure:"max_secs"`
}

// BatchConfig configures checkpointing.
type BatchConfig struct {
	Size int `yaml:"size" mapstructure:"size"`
}

// SelectorsConfig optionally points at a YAML file overriding the built-in
// selector/heuristic table.
type SelectorsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// CacheConfig configures the cross-run lookup cache. Empty path disables it.
type CacheConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
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
	v.SetEnvPrefix("ADDRESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.base_url", "https://www.google.com/maps?hl=en&gl=us")
	v.SetDefault("browser.search_url", "https://www.google.com/maps/search/")
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36")
	v.SetDefault("navigate.max_load_retries", 2)
	v.SetDefault("navigate.load_timeout_secs", 12)
	v.SetDefault("navigate.feed_timeout_secs", 8)
	v.SetDefault("navigate.detail_timeout_secs", 10)
	v.SetDefault("pacing.min_secs", 1.5)
	v.SetDefault("pacing.max_secs", 3.0)
	v.SetDefault("batch.size", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

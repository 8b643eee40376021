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
	Google  GoogleConfig  `yaml:"google" mapstructure:"google"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Pricing PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Places API credentials and client settings.
type GoogleConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSec float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Language   string  `yaml:"language" mapstructure:"language"`
}

// CrawlConfig configures the crawl engine.
type CrawlConfig struct {
	MaxPages          int    `yaml:"max_pages" mapstructure:"max_pages"`
	DetailConcurrency int    `yaml:"detail_concurrency" mapstructure:"detail_concurrency"`
	TokenDelaySecs    int    `yaml:"token_delay_secs" mapstructure:"token_delay_secs"`
	CheckpointPath    string `yaml:"checkpoint_path" mapstructure:"checkpoint_path"`
	OutputPath        string `yaml:"output_path" mapstructure:"output_path"`
}

// StoreConfig configures the run archive backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PricingConfig holds per-call provider pricing (USD).
type PricingConfig struct {
	NearbySearch float64 `yaml:"nearby_search" mapstructure:"nearby_search"`
	PlaceDetails float64 `yaml:"place_details" mapstructure:"place_details"`
}

// ServerConfig configures the read-only status API server.
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
	v.SetEnvPrefix("SURVEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("google.base_url", "https://maps.googleapis.com/maps/api/place")
	v.SetDefault("google.rate_per_sec", 10)
	v.SetDefault("google.language", "")
	v.SetDefault("crawl.max_pages", 3)
	v.SetDefault("crawl.detail_concurrency", 4)
	v.SetDefault("crawl.token_delay_secs", 2)
	v.SetDefault("crawl.checkpoint_path", "crawl_progress.json")
	v.SetDefault("crawl.output_path", "survey_dataset.csv")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "survey_runs.db")
	v.SetDefault("pricing.nearby_search", 0.032)
	v.SetDefault("pricing.place_details", 0.017)
	v.SetDefault("server.port", 8080)
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

// Validate checks the settings a crawl cannot start without. Reported before
// any network call.
func (c *Config) Validate() error {
	if c.Google.Key == "" {
		return eris.New("config: google.key is required (set SURVEY_GOOGLE_KEY)")
	}
	if c.Google.RatePerSec <= 0 {
		return eris.Errorf("config: google.rate_per_sec must be positive, got %v", c.Google.RatePerSec)
	}
	if c.Crawl.MaxPages < 1 {
		return eris.Errorf("config: crawl.max_pages must be at least 1, got %d", c.Crawl.MaxPages)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store.driver %q (want sqlite or postgres)", c.Store.Driver)
	}
	return nil
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

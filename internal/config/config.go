// Package config loads application configuration from file and environment
// and owns global logger setup.
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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Google    GoogleConfig    `yaml:"google" mapstructure:"google"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Collect   CollectConfig   `yaml:"collect" mapstructure:"collect"`
	Scoring   ScoringConfig   `yaml:"scoring" mapstructure:"scoring"`
	Roster    RosterConfig    `yaml:"roster" mapstructure:"roster"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// GoogleConfig holds Google Places API settings.
type GoogleConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// AnthropicConfig holds Anthropic API settings for court-type enrichment.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// CollectConfig configures the facility collection phase.
type CollectConfig struct {
	MaxConcurrentCities int `yaml:"max_concurrent_cities" mapstructure:"max_concurrent_cities"`
	CacheTTLHours       int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// ScoringConfig holds the four opportunity-score factor weights. They must
// sum to 1.0; the scorer rejects anything else at construction.
type ScoringConfig struct {
	PopulationWeight    float64 `yaml:"population_weight" mapstructure:"population_weight"`
	SaturationWeight    float64 `yaml:"saturation_weight" mapstructure:"saturation_weight"`
	QualityGapWeight    float64 `yaml:"quality_gap_weight" mapstructure:"quality_gap_weight"`
	GeographicGapWeight float64 `yaml:"geographic_gap_weight" mapstructure:"geographic_gap_weight"`
}

// RosterConfig points at an optional municipality roster override.
type RosterConfig struct {
	// Path to a YAML roster file. Empty means the built-in Algarve roster.
	Path string `yaml:"path" mapstructure:"path"`
	// Shapefile to derive reference centers from instead of the fixed
	// coordinates. Optional.
	Shapefile      string `yaml:"shapefile" mapstructure:"shapefile"`
	ShapefileField string `yaml:"shapefile_field" mapstructure:"shapefile_field"`
}

// ServerConfig configures the HTTP results server.
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
	v.SetEnvPrefix("PADEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "padel.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("google.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("google.requests_per_sec", 5)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("collect.max_concurrent_cities", 4)
	v.SetDefault("collect.cache_ttl_hours", 24)
	v.SetDefault("scoring.population_weight", 0.20)
	v.SetDefault("scoring.saturation_weight", 0.30)
	v.SetDefault("scoring.quality_gap_weight", 0.20)
	v.SetDefault("scoring.geographic_gap_weight", 0.30)
	v.SetDefault("roster.shapefile_field", "NAME_2")

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

package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Catalog   CatalogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Matching  MatchingConfig
	Registry  RegistryConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig holds product catalog API configuration
type CatalogConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// CacheConfig holds feature cache configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "none"
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP   int `mapstructure:"per_ip"`  // requests per minute per client IP
	Catalog int `mapstructure:"catalog"` // catalog requests per minute
}

// MatchingConfig holds the scoring and selection knobs
type MatchingConfig struct {
	HighConfidenceThreshold float64       `mapstructure:"high_confidence_threshold"`
	MinViableScore          float64       `mapstructure:"min_viable_score"`
	MaxCandidates           int           `mapstructure:"max_candidates"`
	Workers                 int           `mapstructure:"workers"`
	FuzzyEditDistance       int           `mapstructure:"fuzzy_edit_distance"`
	ProcessingBudget        time.Duration `mapstructure:"processing_budget"`
}

// RegistryConfig points at optional vocabulary overrides
type RegistryConfig struct {
	OverridesPath string `mapstructure:"overrides_path"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, eris.Wrap(err, "error reading .env file")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/specmatch/")

	// SPECMATCH_SERVER_PORT -> server.port
	v.SetEnvPrefix("SPECMATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional, env vars and defaults are enough
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "error reading config file")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, eris.Wrap(err, "unable to decode config")
	}

	if err := validate(&config); err != nil {
		return nil, eris.Wrap(err, "invalid configuration")
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Catalog defaults. The key has an empty default so env lookups reach Unmarshal.
	v.SetDefault("catalog.api_key", "")
	v.SetDefault("catalog.base_url", "https://api.catalog.example.com")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.capacity", 1000)
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.catalog", 300)

	// Matching defaults
	v.SetDefault("matching.high_confidence_threshold", 0.85)
	v.SetDefault("matching.min_viable_score", 0.2)
	v.SetDefault("matching.max_candidates", 3)
	v.SetDefault("matching.workers", 4)
	v.SetDefault("matching.fuzzy_edit_distance", 1)
	v.SetDefault("matching.processing_budget", "300ms")

	v.SetDefault("registry.overrides_path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Catalog.BaseURL == "" {
		return eris.New("catalog base URL is required (set SPECMATCH_CATALOG_BASE_URL)")
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "none" {
		return eris.Errorf("cache type must be 'memory' or 'none', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "memory" && config.Cache.Capacity <= 0 {
		return eris.Errorf("cache capacity must be positive, got: %d", config.Cache.Capacity)
	}

	if !unit(config.Matching.HighConfidenceThreshold) {
		return eris.Errorf("matching.high_confidence_threshold must be in [0,1], got: %v", config.Matching.HighConfidenceThreshold)
	}

	if !unit(config.Matching.MinViableScore) {
		return eris.Errorf("matching.min_viable_score must be in [0,1], got: %v", config.Matching.MinViableScore)
	}

	if config.Matching.Workers <= 0 {
		return eris.Errorf("matching.workers must be positive, got: %d", config.Matching.Workers)
	}

	if config.Matching.MaxCandidates <= 0 {
		return eris.Errorf("matching.max_candidates must be positive, got: %d", config.Matching.MaxCandidates)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return eris.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

// loadEnvFile loads ./.env without overriding variables that are already
// set. A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return eris.Wrap(err, "config: stat .env")
	}
	if err := godotenv.Load(); err != nil {
		return eris.Wrap(err, "config: load .env")
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

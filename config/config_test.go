package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, key := range []string{
			"SPECMATCH_SERVER_PORT",
			"SPECMATCH_SERVER_ENVIRONMENT",
			"SPECMATCH_CATALOG_API_KEY",
			"SPECMATCH_CATALOG_BASE_URL",
			"SPECMATCH_CACHE_TYPE",
			"SPECMATCH_CACHE_CAPACITY",
			"SPECMATCH_CACHE_TTL",
			"SPECMATCH_RATELIMIT_PER_IP",
			"SPECMATCH_RATELIMIT_CATALOG",
			"SPECMATCH_MATCHING_WORKERS",
			"SPECMATCH_MATCHING_HIGH_CONFIDENCE_THRESHOLD",
			"SPECMATCH_MATCHING_PROCESSING_BUDGET",
			"SPECMATCH_LOG_FORMAT",
		} {
			os.Unsetenv(key)
		}
	}

	// Load reads ./.env, so run from an empty directory
	originalDir, _ := os.Getwd()
	defer os.Chdir(originalDir)
	os.Chdir(t.TempDir())

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.Capacity != 1000 {
			t.Errorf("Cache.Capacity = %d, want 1000", cfg.Cache.Capacity)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Matching.HighConfidenceThreshold != 0.85 {
			t.Errorf("Matching.HighConfidenceThreshold = %v, want 0.85", cfg.Matching.HighConfidenceThreshold)
		}
		if cfg.Matching.ProcessingBudget != 300*time.Millisecond {
			t.Errorf("Matching.ProcessingBudget = %v, want 300ms", cfg.Matching.ProcessingBudget)
		}
		if cfg.Matching.Workers != 4 {
			t.Errorf("Matching.Workers = %d, want 4", cfg.Matching.Workers)
		}
		if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
			t.Errorf("Log = %+v, want info/json", cfg.Log)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SPECMATCH_SERVER_PORT", "9090")
		os.Setenv("SPECMATCH_SERVER_ENVIRONMENT", "production")
		os.Setenv("SPECMATCH_CATALOG_API_KEY", "custom-api-key")
		os.Setenv("SPECMATCH_CATALOG_BASE_URL", "https://custom.api.com")
		os.Setenv("SPECMATCH_CACHE_TYPE", "none")
		os.Setenv("SPECMATCH_CACHE_TTL", "1h")
		os.Setenv("SPECMATCH_RATELIMIT_PER_IP", "200")
		os.Setenv("SPECMATCH_MATCHING_WORKERS", "8")
		os.Setenv("SPECMATCH_MATCHING_PROCESSING_BUDGET", "1s")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.Catalog.APIKey != "custom-api-key" {
			t.Errorf("Catalog.APIKey = %s, want custom-api-key", cfg.Catalog.APIKey)
		}
		if cfg.Catalog.BaseURL != "https://custom.api.com" {
			t.Errorf("Catalog.BaseURL = %s, want https://custom.api.com", cfg.Catalog.BaseURL)
		}
		if cfg.Cache.Type != "none" {
			t.Errorf("Cache.Type = %s, want none", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Matching.Workers != 8 {
			t.Errorf("Matching.Workers = %d, want 8", cfg.Matching.Workers)
		}
		if cfg.Matching.ProcessingBudget != time.Second {
			t.Errorf("Matching.ProcessingBudget = %v, want 1s", cfg.Matching.ProcessingBudget)
		}
	})

	t.Run("fails validation for invalid cache type", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SPECMATCH_CACHE_TYPE", "redis")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Fatal("Load() error = nil, want error for invalid cache type")
		}
		if !strings.Contains(err.Error(), "cache type must be 'memory' or 'none'") {
			t.Errorf("Load() error = %v, want cache type message", err)
		}
	})

	t.Run("fails validation for threshold outside unit range", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SPECMATCH_MATCHING_HIGH_CONFIDENCE_THRESHOLD", "1.5")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for threshold 1.5")
		}
	})

	t.Run("fails validation for unknown log format", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("SPECMATCH_LOG_FORMAT", "xml")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for log format xml")
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2="value2"

# Another comment
TEST_VAR_3=value3
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
			os.Unsetenv("TEST_VAR_3")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_VAR_1") != "value1" {
			t.Errorf("TEST_VAR_1 = %s, want value1", os.Getenv("TEST_VAR_1"))
		}
		if os.Getenv("TEST_VAR_2") != "value2" {
			t.Errorf("TEST_VAR_2 = %s, want value2", os.Getenv("TEST_VAR_2"))
		}
		if os.Getenv("TEST_VAR_3") != "value3" {
			t.Errorf("TEST_VAR_3 = %s, want value3", os.Getenv("TEST_VAR_3"))
		}
	})

	t.Run("skips empty lines and comments", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		envContent := `
# This is a comment
   # This is also a comment

TEST_SKIP_1=value1
# TEST_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_SKIP_1")
		os.Unsetenv("TEST_COMMENTED")
		defer os.Unsetenv("TEST_SKIP_1")

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_SKIP_1") != "value1" {
			t.Errorf("TEST_SKIP_1 not loaded correctly")
		}
		if os.Getenv("TEST_COMMENTED") != "" {
			t.Errorf("TEST_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)
		os.Chdir(t.TempDir())

		os.Setenv("TEST_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_OVERRIDE")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func validConfig() *Config {
	return &Config{
		Catalog:  CatalogConfig{BaseURL: "https://api.catalog.example.com"},
		Cache:    CacheConfig{Type: "memory", Capacity: 10},
		Matching: MatchingConfig{HighConfidenceThreshold: 0.85, MinViableScore: 0.2, Workers: 2, MaxCandidates: 3},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(*Config) {}, false},
		{"missing base URL", func(c *Config) { c.Catalog.BaseURL = "" }, true},
		{"invalid cache type", func(c *Config) { c.Cache.Type = "redis" }, true},
		{"no cache ignores capacity", func(c *Config) { c.Cache.Type = "none"; c.Cache.Capacity = 0 }, false},
		{"memory cache needs capacity", func(c *Config) { c.Cache.Capacity = 0 }, true},
		{"negative threshold", func(c *Config) { c.Matching.HighConfidenceThreshold = -0.1 }, true},
		{"viable score above one", func(c *Config) { c.Matching.MinViableScore = 1.2 }, true},
		{"zero workers", func(c *Config) { c.Matching.Workers = 0 }, true},
		{"zero candidates", func(c *Config) { c.Matching.MaxCandidates = 0 }, true},
		{"console log format", func(c *Config) { c.Log.Format = "console" }, false},
		{"unknown log format", func(c *Config) { c.Log.Format = "text" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     LogConfig
		wantErr bool
	}{
		{"json info", LogConfig{Level: "info", Format: "json"}, false},
		{"console debug", LogConfig{Level: "debug", Format: "console"}, false},
		{"invalid level", LogConfig{Level: "loud", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitLogger(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("InitLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

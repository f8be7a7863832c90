package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/specmatch/backend/config"
	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/infrastructure/cache"
	"github.com/specmatch/backend/internal/infrastructure/catalog"
	"github.com/specmatch/backend/internal/usecase"
	"github.com/specmatch/backend/internal/vocabulary"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "specmatch",
	Short: "Match shopping queries against product specifications",
	Long: "Extracts technical requirements from free-text shopping queries, analyzes product " +
		"listings, ranks them and selects one or several candidates to present.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newService builds the pipeline from the loaded configuration. The catalog
// client is only attached when an API key is configured.
func newService(c *config.Config) (*usecase.RecommendationService, error) {
	registry := vocabulary.NewRegistry()
	if c.Registry.OverridesPath != "" {
		if err := vocabulary.LoadOverrides(registry, c.Registry.OverridesPath); err != nil {
			return nil, err
		}
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	selector := usecase.DefaultSelectorConfig()
	selector.HighConfidenceThreshold = c.Matching.HighConfidenceThreshold
	selector.MinViableScore = c.Matching.MinViableScore
	selector.MaxCandidates = c.Matching.MaxCandidates

	return usecase.NewRecommendationService(
		registry,
		cache.New(c.Cache.Type, c.Cache.Capacity, c.Cache.TTL),
		newCatalogClient(c),
		usecase.RecommendationServiceConfig{
			ProcessingBudget:  c.Matching.ProcessingBudget,
			Workers:           c.Matching.Workers,
			FuzzyEditDistance: c.Matching.FuzzyEditDistance,
			Selector:          selector,
		},
	), nil
}

// newCatalogClient returns nil when no API key is configured
func newCatalogClient(c *config.Config) domain.CatalogClient {
	if c.Catalog.APIKey == "" {
		return nil
	}
	client := catalog.NewClient(c.Catalog.APIKey, c.Catalog.BaseURL)
	client.SetRateLimit(c.RateLimit.Catalog)
	return client
}

// readJSONFile decodes a JSON file into out
func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrapf(err, "decode %s", path)
	}
	return nil
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

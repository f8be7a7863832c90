package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/specmatch/backend/config"
	httpDelivery "github.com/specmatch/backend/internal/delivery/http"
	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/infrastructure/cache"
	"github.com/specmatch/backend/internal/infrastructure/catalog"
	"github.com/specmatch/backend/internal/usecase"
	"github.com/specmatch/backend/internal/vocabulary"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitLogger(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer zap.L().Sync() //nolint:errcheck

	log := zap.L()
	log.Info("starting SpecMatch backend",
		zap.String("version", httpDelivery.Version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type),
	)

	service, err := buildService(cfg)
	if err != nil {
		log.Fatal("failed to build recommendation service", zap.Error(err))
	}

	handler := httpDelivery.NewHandler(service)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}

// buildService wires the vocabulary, cache and catalog client into the
// recommendation pipeline
func buildService(cfg *config.Config) (*usecase.RecommendationService, error) {
	log := zap.L()

	registry := vocabulary.NewRegistry()
	if cfg.Registry.OverridesPath != "" {
		if err := vocabulary.LoadOverrides(registry, cfg.Registry.OverridesPath); err != nil {
			return nil, err
		}
		log.Info("vocabulary overrides loaded", zap.String("path", cfg.Registry.OverridesPath))
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	featureCache := cache.New(cfg.Cache.Type, cfg.Cache.Capacity, cfg.Cache.TTL)
	log.Info("feature cache ready",
		zap.Int("capacity", cfg.Cache.Capacity),
		zap.Duration("ttl", cfg.Cache.TTL),
	)

	// A nil catalog still serves requests that carry their own products
	var catalogClient domain.CatalogClient
	if cfg.Catalog.APIKey != "" {
		client := catalog.NewClient(cfg.Catalog.APIKey, cfg.Catalog.BaseURL)
		client.SetRateLimit(cfg.RateLimit.Catalog)
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
			log.Info("catalog client debug mode enabled")
		}
		catalogClient = client
		log.Info("catalog API configured", zap.String("base_url", cfg.Catalog.BaseURL))
	} else {
		log.Warn("catalog API key not configured, requests must include products")
	}

	selector := usecase.DefaultSelectorConfig()
	selector.HighConfidenceThreshold = cfg.Matching.HighConfidenceThreshold
	selector.MinViableScore = cfg.Matching.MinViableScore
	selector.MaxCandidates = cfg.Matching.MaxCandidates

	log.Info("matching configured",
		zap.String("registry", registry.Version()),
		zap.Int("workers", cfg.Matching.Workers),
		zap.Float64("high_confidence", selector.HighConfidenceThreshold),
		zap.Duration("budget", cfg.Matching.ProcessingBudget),
	)

	return usecase.NewRecommendationService(registry, featureCache, catalogClient, usecase.RecommendationServiceConfig{
		ProcessingBudget:  cfg.Matching.ProcessingBudget,
		Workers:           cfg.Matching.Workers,
		FuzzyEditDistance: cfg.Matching.FuzzyEditDistance,
		Selector:          selector,
	}), nil
}

package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// DefaultProcessingBudget is the soft time budget of one recommendation
const DefaultProcessingBudget = 300 * time.Millisecond

// RecommendationServiceConfig holds configuration for the recommendation service
type RecommendationServiceConfig struct {
	ProcessingBudget  time.Duration
	Workers           int
	FuzzyEditDistance int
	Selector          SelectorConfig
}

// RecommendationService assembles the matching pipeline once and runs it
// per request: extract, fetch, rank, select
type RecommendationService struct {
	registry  *vocabulary.Registry
	catalog   domain.CatalogClient
	extractor *RequirementExtractor
	analyzer  *FeatureAnalyzer
	engine    *MatchingService
	ranker    *Ranker
	selector  *CandidateSelector
	budget    time.Duration
}

// NewRecommendationService creates a new recommendation service with dependencies.
// catalog may be nil when every request carries its own products.
func NewRecommendationService(
	registry *vocabulary.Registry,
	cache domain.FeatureCache,
	catalog domain.CatalogClient,
	config RecommendationServiceConfig,
) *RecommendationService {
	analyzer := NewFeatureAnalyzer(registry, cache)
	engine := NewMatchingService(registry, MatchConfig{
		EnableFuzzyMatching: true,
		FuzzyEditDistance:   config.FuzzyEditDistance,
	})

	budget := config.ProcessingBudget
	if budget <= 0 {
		budget = DefaultProcessingBudget
	}

	return &RecommendationService{
		registry:  registry,
		catalog:   catalog,
		extractor: NewRequirementExtractor(registry),
		analyzer:  analyzer,
		engine:    engine,
		ranker:    NewRanker(registry, analyzer, engine, RankConfig{Workers: config.Workers}),
		selector:  NewCandidateSelector(registry, config.Selector),
		budget:    budget,
	}
}

// RegistryVersion returns the version of the loaded vocabulary tables
func (s *RecommendationService) RegistryVersion() string {
	return s.registry.Version()
}

// ExtractRequirements parses a query and validates the result
func (s *RecommendationService) ExtractRequirements(query, category string) (domain.RequirementSet, []domain.ValidationWarning) {
	req := s.extractor.Extract(query, category)
	return req, s.extractor.Validate(req)
}

// AnalyzeProduct extracts the feature set of one product
func (s *RecommendationService) AnalyzeProduct(product domain.ProductRecord, category string) domain.ProductFeatureSet {
	return s.analyzer.Analyze(product, category)
}

// ScoreProduct scores one feature set against a requirement and blends the
// hybrid score
func (s *RecommendationService) ScoreProduct(
	req domain.RequirementSet,
	features domain.ProductFeatureSet,
	category string,
) (domain.ScoreResult, domain.HybridBreakdown, error) {
	result, err := s.engine.Score(req, features, category)
	if err != nil {
		return domain.ScoreResult{}, domain.HybridBreakdown{}, err
	}
	return result, s.engine.Hybrid(result, features, req), nil
}

// Recommend runs the full pipeline.
// Flow: extract requirement -> products from request or catalog -> rank -> select
func (s *RecommendationService) Recommend(ctx context.Context, request domain.RecommendRequest) (*domain.Recommendation, error) {
	if strings.TrimSpace(request.Query) == "" && len(request.Products) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	start := time.Now()
	log := zap.L().With(zap.String("query", request.Query))

	req, warnings := s.ExtractRequirements(request.Query, request.Category)

	products := request.Products
	if len(products) == 0 {
		if s.catalog == nil {
			return nil, domain.ErrCatalogNotConfigured
		}
		fetched, err := s.catalog.SearchProducts(ctx, request.Query, req.CategoryDetected)
		if err != nil {
			return nil, eris.Wrap(err, "recommend: search catalog")
		}
		products = fetched
	}

	ranked, err := s.ranker.RankBatch(ctx, req, products, req.CategoryDetected)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: rank batch")
	}

	selection := s.selector.Select(req, ranked)

	rec := &domain.Recommendation{
		Requirement:    req,
		Warnings:       warnings,
		Ranked:         ranked,
		Selection:      selection,
		ProcessingTime: time.Since(start),
	}

	if rec.ProcessingTime > s.budget {
		rec.BudgetExceeded = true
		log.Warn("recommendation exceeded processing budget",
			zap.Duration("elapsed", rec.ProcessingTime),
			zap.Duration("budget", s.budget),
			zap.Int("products", len(products)),
		)
	}

	log.Info("recommendation complete",
		zap.String("category", req.CategoryDetected),
		zap.Float64("requirement_confidence", req.Confidence),
		zap.Int("products", len(products)),
		zap.String("mode", string(selection.Mode)),
		zap.Duration("elapsed", rec.ProcessingTime),
	)

	return rec, nil
}

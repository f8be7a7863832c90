package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	searchResult  []domain.ProductRecord
	searchError   error
	productResult *domain.ProductRecord
	productError  error
	searchCalled  bool
	lastQuery     string
	lastCategory  string
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{}
}

func (m *MockCatalogClient) SearchProducts(ctx context.Context, query, category string) ([]domain.ProductRecord, error) {
	m.searchCalled = true
	m.lastQuery = query
	m.lastCategory = category
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.searchResult, nil
}

func (m *MockCatalogClient) GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error) {
	if m.productError != nil {
		return nil, m.productError
	}
	return m.productResult, nil
}

func catalogProducts() []domain.ProductRecord {
	return []domain.ProductRecord{
		{
			ID:    "B0MATCH001",
			Title: "LG UltraGear 27 inch QHD 144Hz IPS Gaming Monitor",
			Price: 21999,
			TechnicalInfo: map[string]string{
				"Refresh Rate": "144 Hz",
				"Screen Size":  "27 Inches",
				"Resolution":   "2560 x 1440",
				"Panel Type":   "IPS",
			},
			Brand:       "LG",
			RatingCount: 1200,
			Rating:      4.4,
		},
		{
			ID:          "B0SLOW0002",
			Title:       "Zebronics 24 inch FHD 75Hz VA Monitor",
			Price:       7499,
			Brand:       "Zebronics",
			RatingCount: 300,
			Rating:      4.0,
		},
		{
			ID:    "B0FAST0003",
			Title: "Samsung Odyssey G5 27 inch QHD 165Hz VA Curved Gaming Monitor",
			Price: 26499,
			Brand: "Samsung",
		},
	}
}

func newTestRecommendationService(catalog domain.CatalogClient) *RecommendationService {
	return NewRecommendationService(vocabulary.NewRegistry(), nil, catalog, RecommendationServiceConfig{})
}

func TestNewRecommendationService(t *testing.T) {
	t.Run("uses default processing budget when zero", func(t *testing.T) {
		svc := newTestRecommendationService(nil)
		if svc.budget != DefaultProcessingBudget {
			t.Errorf("budget = %v, want %v", svc.budget, DefaultProcessingBudget)
		}
	})

	t.Run("uses provided processing budget", func(t *testing.T) {
		svc := NewRecommendationService(vocabulary.NewRegistry(), nil, nil, RecommendationServiceConfig{
			ProcessingBudget: time.Second,
		})
		if svc.budget != time.Second {
			t.Errorf("budget = %v, want 1s", svc.budget)
		}
	})

	t.Run("exposes the registry version", func(t *testing.T) {
		svc := newTestRecommendationService(nil)
		if svc.RegistryVersion() == "" {
			t.Error("RegistryVersion() is empty")
		}
	})
}

func TestRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("returns error for empty request", func(t *testing.T) {
		svc := newTestRecommendationService(NewMockCatalogClient())
		_, err := svc.Recommend(ctx, domain.RecommendRequest{Query: "  "})
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("returns error when products must be fetched without a catalog", func(t *testing.T) {
		svc := newTestRecommendationService(nil)
		_, err := svc.Recommend(ctx, domain.RecommendRequest{Query: "27 inch monitor"})
		if !errors.Is(err, domain.ErrCatalogNotConfigured) {
			t.Errorf("error = %v, want ErrCatalogNotConfigured", err)
		}
	})

	t.Run("propagates catalog errors", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.searchError = domain.ErrCatalogAPIFailure
		svc := newTestRecommendationService(catalog)

		_, err := svc.Recommend(ctx, domain.RecommendRequest{Query: "27 inch monitor"})
		if !errors.Is(err, domain.ErrCatalogAPIFailure) {
			t.Errorf("error = %v, want ErrCatalogAPIFailure", err)
		}
	})

	t.Run("fetches from catalog and recommends", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.searchResult = catalogProducts()
		svc := newTestRecommendationService(catalog)

		rec, err := svc.Recommend(ctx, domain.RecommendRequest{Query: "27 inch 144hz QHD IPS monitor under 25000"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !catalog.searchCalled {
			t.Error("expected catalog search to be called")
		}
		if catalog.lastCategory != "monitor" {
			t.Errorf("search category = %v, want monitor", catalog.lastCategory)
		}
		if rec.Requirement.MatchedFeaturesCount != 4 {
			t.Errorf("MatchedFeaturesCount = %v, want 4", rec.Requirement.MatchedFeaturesCount)
		}
		if len(rec.Ranked) != 3 {
			t.Fatalf("ranked %d products, want 3", len(rec.Ranked))
		}
		if rec.Ranked[0].Product.ID != "B0MATCH001" {
			t.Errorf("top product = %v, want B0MATCH001", rec.Ranked[0].Product.ID)
		}
		if len(rec.Selection.Candidates) == 0 {
			t.Fatal("expected at least one candidate")
		}
		if rec.Selection.Candidates[0].Product.ID != "B0MATCH001" {
			t.Errorf("first candidate = %v, want B0MATCH001", rec.Selection.Candidates[0].Product.ID)
		}
		if len(rec.Selection.Comparison.Headers) != len(rec.Selection.Candidates) {
			t.Errorf("headers = %d, candidates = %d", len(rec.Selection.Comparison.Headers), len(rec.Selection.Candidates))
		}
		if rec.Selection.Mode != domain.ModeForCount(len(rec.Selection.Candidates)) {
			t.Errorf("Mode = %v does not fit %d candidates", rec.Selection.Mode, len(rec.Selection.Candidates))
		}
	})

	t.Run("request products bypass the catalog", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		svc := newTestRecommendationService(catalog)

		rec, err := svc.Recommend(ctx, domain.RecommendRequest{
			Query:    "27 inch 144hz monitor",
			Products: catalogProducts(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.searchCalled {
			t.Error("catalog should not be searched when products are supplied")
		}
		if len(rec.Ranked) != 3 {
			t.Errorf("ranked %d products, want 3", len(rec.Ranked))
		}
	})

	t.Run("marketing query still ranks on quality", func(t *testing.T) {
		svc := newTestRecommendationService(nil)

		rec, err := svc.Recommend(ctx, domain.RecommendRequest{
			Query:    "cinematic eye care stunning experience",
			Products: catalogProducts(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rec.Requirement.MarketingHeavy {
			t.Error("expected marketing-heavy requirement")
		}
		for _, rp := range rec.Ranked {
			if rp.Result.ScoringMethod != domain.MethodProductQuality {
				t.Errorf("%s scored by %v, want %v", rp.Product.ID, rp.Result.ScoringMethod, domain.MethodProductQuality)
			}
		}
		if rec.Selection.Mode == domain.ModeNone {
			t.Error("expected at least one candidate")
		}
	})

	t.Run("empty catalog result", func(t *testing.T) {
		catalog := NewMockCatalogClient()
		catalog.searchResult = []domain.ProductRecord{}
		svc := newTestRecommendationService(catalog)

		rec, err := svc.Recommend(ctx, domain.RecommendRequest{Query: "27 inch monitor"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Selection.Mode != domain.ModeNone {
			t.Errorf("Mode = %v, want none", rec.Selection.Mode)
		}
	})

	t.Run("flags requests over the processing budget", func(t *testing.T) {
		svc := NewRecommendationService(vocabulary.NewRegistry(), nil, nil, RecommendationServiceConfig{
			ProcessingBudget: time.Nanosecond,
		})

		rec, err := svc.Recommend(ctx, domain.RecommendRequest{Query: "27 inch monitor", Products: catalogProducts()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !rec.BudgetExceeded {
			t.Error("expected BudgetExceeded with a 1ns budget")
		}
	})
}

func TestScoreProduct(t *testing.T) {
	svc := newTestRecommendationService(nil)
	req, warnings := svc.ExtractRequirements("27 inch 144hz monitor", "")
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	features := svc.AnalyzeProduct(catalogProducts()[0], "monitor")
	result, hybrid, err := svc.ScoreProduct(req, features, "monitor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Score != 1 {
		t.Errorf("Score = %v, want 1", result.Score)
	}
	if hybrid.TechnicalScore != result.Score {
		t.Errorf("TechnicalScore = %v, want %v", hybrid.TechnicalScore, result.Score)
	}

	features.Category = "laptop"
	if _, _, err := svc.ScoreProduct(req, features, "monitor"); !errors.Is(err, domain.ErrContractViolation) {
		t.Errorf("error = %v, want ErrContractViolation", err)
	}
}

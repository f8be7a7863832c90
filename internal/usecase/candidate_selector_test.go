package usecase

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// ranked builds a ranked product with the given headline scores. scores maps
// matched features to their per-feature score.
func ranked(id string, final, confidence, price float64, brand string, scores map[string]float64) domain.RankedProduct {
	values := map[string]string{}
	if price > 0 {
		values[domain.PriceFeature] = vocabulary.FormatNumber(price)
	}
	if brand != "" {
		values[vocabulary.FeatureBrand] = brand
	}
	features := monitorFeatures(id, values)

	result := domain.ScoreResult{
		ProductID:       id,
		Score:           final,
		Confidence:      confidence,
		MatchedFeatures: []string{},
		FeatureScores:   make(map[string]domain.FeatureScore),
	}
	for _, feature := range sortedScoreNames(scores) {
		result.FeatureScores[feature] = domain.FeatureScore{Feature: feature, Score: scores[feature], ProductValue: "x"}
		if scores[feature] >= matchedThreshold {
			result.MatchedFeatures = append(result.MatchedFeatures, feature)
		}
	}

	return domain.RankedProduct{
		Product:  domain.ProductRecord{ID: id, Title: "Monitor " + id, Price: price},
		Features: features,
		Result:   result,
		Hybrid:   domain.HybridBreakdown{TechnicalScore: final, FinalScore: final},
	}
}

func sortedScoreNames(scores map[string]float64) []string {
	names := make([]string, 0, len(scores))
	for _, name := range []string{vocabulary.FeatureRefreshRate, vocabulary.FeatureResolution, vocabulary.FeatureSize} {
		if _, ok := scores[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func rankedBatch(items ...domain.RankedProduct) domain.RankedBatch {
	for i := range items {
		items[i].Rank = i + 1
	}
	return items
}

func newTestSelector() *CandidateSelector {
	return NewCandidateSelector(vocabulary.NewRegistry(), SelectorConfig{})
}

func TestNewCandidateSelector_Defaults(t *testing.T) {
	s := NewCandidateSelector(vocabulary.NewRegistry(), SelectorConfig{MaxCandidates: 2})
	assert.Equal(t, 2, s.config.MaxCandidates)
	assert.Equal(t, DefaultSelectorConfig().HighConfidenceThreshold, s.config.HighConfidenceThreshold)
	assert.Equal(t, DefaultSelectorConfig().MinViableScore, s.config.MinViableScore)
}

func TestSelect_Scenarios(t *testing.T) {
	s := newTestSelector()
	req := monitorRequirement(0.7, map[string]string{vocabulary.FeatureRefreshRate: "144"})
	req.Budget = 30000

	t.Run("empty batch", func(t *testing.T) {
		result := s.Select(req, domain.RankedBatch{})
		assert.Equal(t, domain.ModeNone, result.Mode)
		assert.NotNil(t, result.Candidates)
		assert.Empty(t, result.Candidates)
		assert.Equal(t, ReasonNoCandidates, result.SelectionReason)
		assert.Empty(t, result.Comparison.Headers)
	})

	t.Run("single product", func(t *testing.T) {
		batch := rankedBatch(ranked("a", 0.7, 0.6, 20000, "dell", nil))
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeSingle, result.Mode)
		require.Len(t, result.Candidates, 1)
		assert.Equal(t, ReasonOnlyOneViable, result.SelectionReason)
	})

	t.Run("high confidence top match", func(t *testing.T) {
		batch := rankedBatch(
			ranked("a", 0.95, 0.95, 20000, "dell", nil),
			ranked("b", 0.40, 0.50, 15000, "lg", nil),
			ranked("c", 0.35, 0.50, 12000, "aoc", nil),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeSingle, result.Mode)
		assert.Contains(t, result.SelectionReason, "high confidence")
		assert.Equal(t, "a", result.Candidates[0].Product.ID)
	})

	t.Run("close scores with a wide price spread", func(t *testing.T) {
		batch := rankedBatch(
			ranked("a", 0.90, 0.80, 30000, "dell", nil),
			ranked("b", 0.88, 0.80, 24000, "dell", nil),
			ranked("c", 0.86, 0.80, 18000, "dell", nil),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeTrio, result.Mode)
		require.Len(t, result.Candidates, 3)
		assert.Contains(t, result.Metadata.ShowMultipleSignals, SignalCloseCompetition)
		assert.Contains(t, result.Metadata.ShowMultipleSignals, SignalPriceSpread)
		assert.InDelta(t, 0.4, result.Metadata.PriceSpread, 1e-9)
		assert.InDelta(t, 0.02, result.Metadata.TopScoreGap, 1e-9)

		var priceRow *domain.ComparisonRow
		for i := range result.Comparison.KeyDifferences {
			if result.Comparison.KeyDifferences[i].Feature == domain.PriceFeature {
				priceRow = &result.Comparison.KeyDifferences[i]
			}
		}
		require.NotNil(t, priceRow)
		assert.Equal(t, 2, priceRow.BestIndex)
		assert.Equal(t, []string{"30000", "24000", "18000"}, priceRow.Values)
		assert.Equal(t, "30000", priceRow.UserPreference)
	})
}

func TestSelect_Decisions(t *testing.T) {
	s := newTestSelector()
	req := monitorRequirement(0.7, map[string]string{vocabulary.FeatureRefreshRate: "144"})

	t.Run("nothing viable shows the best available", func(t *testing.T) {
		batch := rankedBatch(
			ranked("a", 0.15, 0.3, 20000, "dell", nil),
			ranked("b", 0.10, 0.3, 20000, "lg", nil),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeSingle, result.Mode)
		assert.Equal(t, ReasonBestAvailable, result.SelectionReason)
		assert.Equal(t, "a", result.Candidates[0].Product.ID)
	})

	t.Run("clear winner", func(t *testing.T) {
		batch := rankedBatch(
			ranked("a", 0.90, 0.7, 20000, "dell", nil),
			ranked("b", 0.60, 0.7, 19000, "dell", nil),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeSingle, result.Mode)
		assert.Equal(t, ReasonClearWinner, result.SelectionReason)
		assert.Empty(t, result.Metadata.ShowMultipleSignals)
	})

	t.Run("large gap needs strengths and spread together", func(t *testing.T) {
		batch := rankedBatch(
			ranked("a", 0.90, 0.7, 40000, "dell", nil),
			ranked("b", 0.60, 0.7, 15000, "dell", nil),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeSingle, result.Mode)
		assert.Contains(t, result.Metadata.ShowMultipleSignals, SignalPriceSpread)
	})

	t.Run("similar alternatives collapse to one", func(t *testing.T) {
		scores := map[string]float64{vocabulary.FeatureRefreshRate: 1}
		batch := rankedBatch(
			ranked("a", 0.80, 0.7, 20000, "dell", scores),
			ranked("b", 0.79, 0.7, 19500, "dell", scores),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeSingle, result.Mode)
		assert.Equal(t, ReasonNoDiversity, result.SelectionReason)
	})

	t.Run("different strengths", func(t *testing.T) {
		batch := rankedBatch(
			ranked("a", 0.80, 0.7, 20000, "dell", map[string]float64{
				vocabulary.FeatureRefreshRate: 1, vocabulary.FeatureResolution: 0.5,
			}),
			ranked("b", 0.72, 0.7, 20000, "dell", map[string]float64{
				vocabulary.FeatureRefreshRate: 0.5, vocabulary.FeatureResolution: 1,
			}),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeDuo, result.Mode)
		assert.Equal(t, []string{SignalDifferentStrength}, result.Metadata.ShowMultipleSignals)
		assert.True(t, strings.HasPrefix(result.SelectionReason, ReasonComparison))
	})

	t.Run("brand difference counts as diversity", func(t *testing.T) {
		batch := rankedBatch(
			ranked("a", 0.80, 0.7, 20000, "dell", nil),
			ranked("b", 0.78, 0.7, 20000, "lg", nil),
		)
		result := s.Select(req, batch)
		assert.Equal(t, domain.ModeDuo, result.Mode)
	})

	t.Run("candidate count is capped", func(t *testing.T) {
		capped := NewCandidateSelector(vocabulary.NewRegistry(), SelectorConfig{MaxCandidates: 2})
		batch := rankedBatch(
			ranked("a", 0.80, 0.7, 30000, "dell", nil),
			ranked("b", 0.79, 0.7, 20000, "lg", nil),
			ranked("c", 0.78, 0.7, 10000, "aoc", nil),
		)
		result := capped.Select(req, batch)
		assert.Equal(t, domain.ModeDuo, result.Mode)
		assert.Len(t, result.Candidates, 2)
	})
}

func TestSelect_Metadata(t *testing.T) {
	s := newTestSelector()
	batch := rankedBatch(ranked("a", 0.7, 0.6, 20000, "dell", nil), ranked("b", 0.1, 0.6, 20000, "dell", nil))

	result := s.Select(monitorRequirement(0.5, nil), batch)

	_, err := uuid.Parse(result.Metadata.SelectionID)
	assert.NoError(t, err)
	assert.Equal(t, 2, result.Metadata.CandidatesConsidered)
	assert.Equal(t, EngineVersion, result.Metadata.EngineVersion)
	assert.NotEmpty(t, result.Metadata.RegistryVersion)

	other := s.Select(monitorRequirement(0.5, nil), batch)
	assert.NotEqual(t, result.Metadata.SelectionID, other.Metadata.SelectionID)
}

func TestBuildComparisonTable(t *testing.T) {
	s := newTestSelector()
	req := monitorRequirement(0.7, map[string]string{vocabulary.FeatureRefreshRate: "144"})

	a := ranked("a", 0.85, 0.7, 30000, "dell", map[string]float64{vocabulary.FeatureRefreshRate: 1})
	a.Features.Features[vocabulary.FeatureRefreshRate] = domain.Annotated("144", 0.95, domain.SourceTechnicalInfo)
	a.Result.FeatureScores[vocabulary.FeatureRefreshRate] = domain.FeatureScore{
		Feature: vocabulary.FeatureRefreshRate, Score: 1, UserValue: "144", ProductValue: "144",
	}
	b := ranked("b", 0.80, 0.7, 20000, "lg", map[string]float64{vocabulary.FeatureRefreshRate: 0.95})
	b.Features.Features[vocabulary.FeatureRefreshRate] = domain.Annotated("165", 0.95, domain.SourceTechnicalInfo)
	b.Result.FeatureScores[vocabulary.FeatureRefreshRate] = domain.FeatureScore{
		Feature: vocabulary.FeatureRefreshRate, Score: 0.95, UserValue: "144", ProductValue: "165",
	}

	table := s.BuildComparisonTable(req, []domain.RankedProduct{a, b})

	assert.Equal(t, []string{"Monitor a", "Monitor b"}, table.Headers)

	rows := make(map[string]domain.ComparisonRow)
	for _, row := range table.KeyDifferences {
		rows[row.Feature] = row
		assert.Len(t, row.Values, 2)
	}

	require.Contains(t, rows, domain.PriceFeature)
	assert.Equal(t, 1, rows[domain.PriceFeature].BestIndex)

	require.Contains(t, rows, vocabulary.FeatureRefreshRate)
	assert.Equal(t, "144", rows[vocabulary.FeatureRefreshRate].UserPreference)
	assert.Equal(t, 0, rows[vocabulary.FeatureRefreshRate].BestIndex)

	require.Contains(t, rows, vocabulary.FeatureBrand)
	assert.Equal(t, -1, rows[vocabulary.FeatureBrand].BestIndex)

	assert.Contains(t, table.Strengths[0], "Matches your refresh rate (144)")
	assert.Contains(t, table.Strengths[0], StrengthPremium)
	assert.Contains(t, table.Strengths[1], "Exceeds your refresh rate (165)")
	assert.Contains(t, table.Strengths[1], StrengthBudgetFriendly)

	require.Len(t, table.TradeOffs, 1)
	assert.Contains(t, table.TradeOffs[0], "Monitor a costs ₹10000 more than Monitor b")
	assert.Contains(t, table.Summary, "Comparing 2 options")

	t.Run("trade-offs do not depend on candidate order", func(t *testing.T) {
		reversed := s.BuildComparisonTable(req, []domain.RankedProduct{b, a})
		require.Len(t, reversed.TradeOffs, 1)
		assert.Contains(t, reversed.TradeOffs[0], "Monitor a costs ₹10000 more than Monitor b")

		cheapBest := ranked("c", 0.90, 0.7, 15000, "lg", nil)
		for _, order := range [][]domain.RankedProduct{{cheapBest, a}, {a, cheapBest}} {
			table := s.BuildComparisonTable(req, order)
			require.Len(t, table.TradeOffs, 1)
			assert.Equal(t, "Monitor c scores higher and costs ₹15000 less than Monitor a", table.TradeOffs[0])
		}
	})

	t.Run("empty", func(t *testing.T) {
		empty := s.BuildComparisonTable(req, nil)
		assert.Empty(t, empty.Headers)
		assert.NotNil(t, empty.KeyDifferences)
		assert.Equal(t, "No matching products found.", empty.Summary)
	})

	t.Run("single candidate", func(t *testing.T) {
		single := s.BuildComparisonTable(req, []domain.RankedProduct{b})
		assert.Len(t, single.Headers, 1)
		assert.Contains(t, single.Summary, "Best match: Monitor b")
	})

	t.Run("long titles are truncated", func(t *testing.T) {
		long := a
		long.Product.Title = strings.Repeat("Ultra Wide Gaming Monitor ", 5)
		h := header(long)
		assert.Equal(t, 60, len([]rune(h)))
		assert.True(t, strings.HasSuffix(h, "..."))
	})
}

func TestUniqueMax(t *testing.T) {
	testCases := []struct {
		name   string
		scores []float64
		valid  []bool
		want   int
	}{
		{"single best", []float64{1, 3, 2}, []bool{true, true, true}, 1},
		{"tie for best", []float64{3, 3, 2}, []bool{true, true, true}, -1},
		{"invalid skipped", []float64{5, 3, 2}, []bool{false, true, true}, 1},
		{"nothing valid", []float64{1, 2}, []bool{false, false}, -1},
		{"tie below best is fine", []float64{1, 1, 2}, []bool{true, true, true}, 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, uniqueMax(tc.scores, tc.valid))
		})
	}
}

package usecase

import (
	"math"

	"github.com/specmatch/backend/internal/domain"
)

// Budget adherence steps: price/budget ratio upper bound -> score
var budgetSteps = []struct {
	maxRatio float64
	score    float64
}{
	{0.70, 1.00},
	{0.90, 0.95},
	{1.00, 0.85},
	{1.10, 0.50},
	{1.25, 0.25},
}

const (
	overBudgetScore     = 0.05
	noBudgetScore       = 0.7 // no budget stated: mildly positive, never decisive
	unknownPriceScore   = 0.5
	defaultValueRatio   = 10.0
	performancePerPoint = 100.0 // performance is scaled to points before dividing by price
)

// Hybrid blends technical fit with value for money, budget adherence and an
// excellence bonus. The weight set depends on the requirement's usage
// context and always sums to 1.
func (s *MatchingService) Hybrid(
	result domain.ScoreResult,
	features domain.ProductFeatureSet,
	req domain.RequirementSet,
) domain.HybridBreakdown {
	category := features.Category
	if category == "" {
		category = req.CategoryDetected
	}
	cat := s.registry.Category(category)
	weights := cat.HybridWeightsFor(req.UsageContext)

	price := features.Price()
	ratioCap := cat.ValueRatioCap
	if ratioCap <= 0 {
		ratioCap = defaultValueRatio
	}

	breakdown := domain.HybridBreakdown{
		TechnicalScore:  result.Score,
		ValueScore:      valueScore(s.PerformanceScore(features), price, ratioCap),
		BudgetScore:     budgetScore(price, req.Budget),
		ExcellenceBonus: cat.ExcellenceBonus(featureValues(features)),
		WeightsUsed:     weights,
	}

	breakdown.FinalScore = clamp01(
		breakdown.TechnicalScore*weights.Technical +
			breakdown.ValueScore*weights.Value +
			breakdown.BudgetScore*weights.Budget +
			breakdown.ExcellenceBonus*weights.Excellence,
	)
	return breakdown
}

// valueScore is performance points per thousand currency units, capped at
// ratioCap and normalized to [0,1]
func valueScore(performance, price, ratioCap float64) float64 {
	if price <= 0 {
		return unknownPriceScore
	}
	ratio := performance * performancePerPoint / (price / 1000)
	return clamp01(math.Min(ratio, ratioCap) / ratioCap)
}

// budgetScore rewards products comfortably under budget and penalizes overage
func budgetScore(price, budget float64) float64 {
	if budget <= 0 {
		return noBudgetScore
	}
	if price <= 0 {
		return unknownPriceScore
	}
	ratio := price / budget
	for _, step := range budgetSteps {
		if ratio <= step.maxRatio {
			return step.score
		}
	}
	return overBudgetScore
}

func featureValues(features domain.ProductFeatureSet) map[string]string {
	values := make(map[string]string, len(features.Features))
	for name, v := range features.Features {
		values[name] = v.Value()
	}
	return values
}

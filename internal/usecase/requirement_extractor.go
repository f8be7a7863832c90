package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// Extraction tuning constants
const (
	marketingFillerThreshold = 0.5  // filler share above which a query is marketing-heavy
	marketingConfidence      = 0.15 // fixed confidence for marketing-heavy queries
	shortQueryTokens         = 5
	shortQueryBoost          = 1.5
	longQueryBoost           = 1.2
	maxBaseConfidence        = 0.8
	technicalDensityWeight   = 0.4
)

// Plausible budget window in major currency units
const (
	minPlausibleBudget = 1000
	maxPlausibleBudget = 1000000
)

// queryTokenRegex splits a normalized query into word and number tokens,
// keeping unit suffixes attached ("144hz", "1.5ms")
var queryTokenRegex = regexp.MustCompile(`[\p{L}\p{N}]+(?:\.\p{N}+)?[\p{L}]*`)

// RequirementExtractor turns free-text shopping queries into requirement sets
type RequirementExtractor struct {
	registry *vocabulary.Registry
}

// NewRequirementExtractor creates a new requirement extractor
func NewRequirementExtractor(registry *vocabulary.Registry) *RequirementExtractor {
	return &RequirementExtractor{registry: registry}
}

// Extract builds a requirement set from a query. It never fails: empty and
// marketing-heavy queries produce low-confidence sets with a fallback reason.
func (e *RequirementExtractor) Extract(query, categoryHint string) domain.RequirementSet {
	text := vocabulary.NormalizeText(query)

	req := domain.RequirementSet{
		Query:    query,
		Features: make(map[string]domain.FeatureValue),
	}

	category := e.resolveCategory(text, categoryHint)
	req.CategoryDetected = category.Name

	if text == "" {
		req.FallbackReason = domain.FallbackEmptyQuery
		return req
	}

	tokens := queryTokens(text)
	if len(tokens) == 0 {
		req.FallbackReason = domain.FallbackEmptyQuery
		return req
	}

	technical := 0
	for _, tok := range tokens {
		if category.IsTechnicalToken(tok) {
			technical++
		}
	}
	req.TechnicalDensity = float64(technical) / float64(len(tokens))

	if isMarketingHeavy(category, text, tokens) {
		req.MarketingHeavy = true
		req.Confidence = marketingConfidence
		req.FallbackReason = domain.FallbackMarketingHeavy
		zap.L().Debug("marketing-heavy query short-circuited",
			zap.String("query", query),
			zap.String("category", category.Name),
		)
		return req
	}

	for _, feature := range category.Features {
		if _, seen := req.Features[feature]; seen {
			continue
		}
		if value, ok := category.Extract(feature, text); ok {
			req.Features[feature] = domain.Scalar(value)
		}
	}
	req.MatchedFeaturesCount = len(req.Features)

	if budget, ok := category.ExtractBudget(text); ok {
		req.Budget = budget
	}
	req.UsageContext = category.DetectUsageContext(text)

	req.Confidence = requirementConfidence(req.MatchedFeaturesCount, len(tokens), req.TechnicalDensity)

	if req.MatchedFeaturesCount == 0 {
		if req.UsageContext != "" {
			req.FallbackReason = domain.FallbackUsageContext
		} else {
			req.FallbackReason = domain.FallbackNoFeatures
		}
	}

	zap.L().Debug("requirement extracted",
		zap.String("category", req.CategoryDetected),
		zap.Int("features", req.MatchedFeaturesCount),
		zap.Float64("confidence", req.Confidence),
		zap.Float64("technical_density", req.TechnicalDensity),
		zap.Float64("budget", req.Budget),
		zap.String("usage", req.UsageContext),
	)

	return req
}

// Validate flags implausible requirement values. Warnings never block scoring.
func (e *RequirementExtractor) Validate(req domain.RequirementSet) []domain.ValidationWarning {
	category := e.registry.Category(req.CategoryDetected)

	var warnings []domain.ValidationWarning
	for _, feature := range req.FeatureNames() {
		if !category.IsNumeric(feature) {
			continue
		}
		value := req.Features[feature].Value()
		if category.Plausible(feature, value) {
			continue
		}
		rng := category.Ranges[feature]
		warnings = append(warnings, domain.ValidationWarning{
			Feature: feature,
			Value:   value,
			Message: fmt.Sprintf("%s %s is outside the plausible range %s-%s",
				category.Label(feature), value,
				vocabulary.FormatNumber(rng.Min), vocabulary.FormatNumber(rng.Max)),
		})
	}

	if req.Budget != 0 && (req.Budget < minPlausibleBudget || req.Budget > maxPlausibleBudget) {
		warnings = append(warnings, domain.ValidationWarning{
			Feature: "budget",
			Value:   vocabulary.FormatNumber(req.Budget),
			Message: fmt.Sprintf("budget %s is outside the plausible range %d-%d",
				vocabulary.FormatNumber(req.Budget), minPlausibleBudget, maxPlausibleBudget),
		})
	}

	return warnings
}

func (e *RequirementExtractor) resolveCategory(text, hint string) *vocabulary.Category {
	if hint != "" && e.registry.Has(hint) {
		return e.registry.Category(hint)
	}
	name, _ := e.registry.DetectCategory(text)
	return e.registry.Category(name)
}

func queryTokens(text string) []string {
	return queryTokenRegex.FindAllString(text, -1)
}

// isMarketingHeavy reports whether filler words dominate the query or a
// strong promotional phrase is present
func isMarketingHeavy(category *vocabulary.Category, text string, tokens []string) bool {
	for _, phrase := range category.StrongFillerPhrases {
		if vocabulary.ContainsWord(text, phrase) {
			return true
		}
	}

	filler := 0
	for _, tok := range tokens {
		if category.FillerWords[strings.ToLower(tok)] {
			filler++
		}
	}
	return float64(filler)/float64(len(tokens)) > marketingFillerThreshold
}

func requirementConfidence(matched, tokens int, density float64) float64 {
	if tokens == 0 {
		return 0
	}
	base := float64(matched) / float64(tokens)
	if tokens <= shortQueryTokens {
		base *= shortQueryBoost
	} else {
		base *= longQueryBoost
	}
	if base > maxBaseConfidence {
		base = maxBaseConfidence
	}
	return clamp01(base + technicalDensityWeight*density)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

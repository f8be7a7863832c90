package usecase

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// sourceBaseConfidence is the starting confidence of a value by where it was found
var sourceBaseConfidence = map[domain.FeatureSource]float64{
	domain.SourceTechnicalInfo: 0.95,
	domain.SourceFeatures:      0.85,
	domain.SourceBrandInfo:     0.80,
	domain.SourceTitle:         0.60,
}

// featureConfidenceDelta adjusts base confidence for features that are more
// or less consistently documented
var featureConfidenceDelta = map[string]float64{
	vocabulary.FeatureBrand:     0.05,
	vocabulary.FeaturePanelType: -0.05,
}

const (
	highPrecedenceShare = 0.5 // share of features from specs/bullets that earns the boost
	highPrecedenceBoost = 1.1
	titleOnlyPenalty    = 0.7
	priceConfidence     = 1.0
)

// FeatureAnalyzer extracts product feature sets from heterogeneous product
// records, honoring source precedence
type FeatureAnalyzer struct {
	registry *vocabulary.Registry
	cache    domain.FeatureCache
}

// NewFeatureAnalyzer creates a new analyzer. A nil cache disables caching.
func NewFeatureAnalyzer(registry *vocabulary.Registry, cache domain.FeatureCache) *FeatureAnalyzer {
	return &FeatureAnalyzer{
		registry: registry,
		cache:    cache,
	}
}

// Analyze builds the feature set of a product for a category. An empty
// category is detected from the product title. Analysis never fails:
// missing or implausible values are omitted and lower the confidence.
//
// Only the text extraction is cached. Price comes from the record passed
// in, so a repriced product never sees a stale value.
func (a *FeatureAnalyzer) Analyze(product domain.ProductRecord, category string) domain.ProductFeatureSet {
	cat := a.resolveCategory(product, category)

	cacheKey := ""
	if a.cache != nil && product.ID != "" {
		cacheKey = product.ID + "|" + cat.Name
		if cached, ok := a.cache.Get(cacheKey); ok {
			return withPrice(cached, cat, product.Price)
		}
	}

	result := a.analyze(product, cat)

	if cacheKey != "" {
		a.cache.Set(cacheKey, result)
	}
	return withPrice(result, cat, product.Price)
}

// withPrice adds the price pseudo-feature to an extracted feature set
func withPrice(fs domain.ProductFeatureSet, cat *vocabulary.Category, raw float64) domain.ProductFeatureSet {
	price := normalizePrice(cat, raw)
	if price <= 0 {
		return fs
	}
	if fs.Features == nil {
		fs.Features = make(map[string]domain.FeatureValue, 1)
	}
	fs.Features[domain.PriceFeature] = domain.Annotated(
		vocabulary.FormatNumber(price), priceConfidence, domain.SourceTechnicalInfo)
	return fs
}

func (a *FeatureAnalyzer) resolveCategory(product domain.ProductRecord, category string) *vocabulary.Category {
	if category == "" {
		name, _ := a.registry.DetectCategory(product.Title + " " + strings.Join(product.Features, " "))
		return a.registry.Category(name)
	}
	return a.registry.Category(category)
}

// candidate is one value found in one source, before merging
type candidate struct {
	value      string
	confidence float64
	source     domain.FeatureSource
}

// better reports whether c should replace the current winner
func (c candidate) better(than candidate) bool {
	if c.source.Precedence() != than.source.Precedence() {
		return c.source.Precedence() > than.source.Precedence()
	}
	return c.confidence > than.confidence
}

func (a *FeatureAnalyzer) analyze(product domain.ProductRecord, cat *vocabulary.Category) domain.ProductFeatureSet {
	found := make(map[string]candidate)
	var consulted []domain.FeatureSource

	offer := func(feature, value string, source domain.FeatureSource) {
		if value == "" {
			return
		}
		if cat.IsNumeric(feature) && !cat.Plausible(feature, value) {
			zap.L().Debug("dropping implausible product value",
				zap.String("product_id", product.ID),
				zap.String("feature", feature),
				zap.String("value", value),
				zap.String("source", string(source)),
			)
			return
		}
		c := candidate{value: value, confidence: sourceConfidence(source, feature), source: source}
		if existing, ok := found[feature]; !ok || c.better(existing) {
			found[feature] = c
		}
	}

	if len(product.TechnicalInfo) > 0 {
		consulted = append(consulted, domain.SourceTechnicalInfo)
		a.fromTechnicalInfo(product.TechnicalInfo, cat, offer)
	}

	if len(product.Features) > 0 {
		consulted = append(consulted, domain.SourceFeatures)
		text := vocabulary.NormalizeText(strings.Join(product.Features, " | "))
		for _, feature := range cat.Features {
			if v, ok := cat.Extract(feature, text); ok {
				offer(feature, v, domain.SourceFeatures)
			}
		}
	}

	if product.Brand != "" || product.Manufacturer != "" {
		consulted = append(consulted, domain.SourceBrandInfo)
		for _, raw := range []string{product.Brand, product.Manufacturer} {
			if raw == "" {
				continue
			}
			offer(vocabulary.FeatureBrand, brandValue(cat, raw), domain.SourceBrandInfo)
		}
	}

	if product.Title != "" {
		consulted = append(consulted, domain.SourceTitle)
		text := vocabulary.NormalizeText(product.Title)
		for _, feature := range cat.Features {
			if v, ok := cat.Extract(feature, text); ok {
				offer(feature, v, domain.SourceTitle)
			}
		}
	}

	result := domain.ProductFeatureSet{
		ProductID:        product.ID,
		Category:         cat.Name,
		Features:         make(map[string]domain.FeatureValue, len(found)+1),
		FeaturesFound:    len(found),
		SourcesConsulted: consulted,
	}
	for feature, c := range found {
		result.Features[feature] = domain.Annotated(c.value, c.confidence, c.source)
	}
	result.OverallConfidence = overallConfidence(found)

	zap.L().Debug("product analyzed",
		zap.String("product_id", product.ID),
		zap.String("category", cat.Name),
		zap.Int("features_found", result.FeaturesFound),
		zap.Float64("overall_confidence", result.OverallConfidence),
	)

	return result
}

// fromTechnicalInfo maps spec table rows onto features. Keys known to the
// category are parsed directly; remaining rows are pattern-matched as text.
func (a *FeatureAnalyzer) fromTechnicalInfo(
	info map[string]string,
	cat *vocabulary.Category,
	offer func(feature, value string, source domain.FeatureSource),
) {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var unmapped []string
	for _, key := range keys {
		raw := strings.TrimSpace(info[key])
		if raw == "" || cat.IgnoresSpecKey(key) {
			continue
		}
		feature, ok := cat.SpecKeyAliases[vocabulary.NormalizeText(key)]
		if !ok {
			unmapped = append(unmapped, key+" "+raw)
			continue
		}

		text := vocabulary.NormalizeText(raw)
		if feature == vocabulary.FeatureBrand {
			offer(feature, brandValue(cat, raw), domain.SourceTechnicalInfo)
			continue
		}
		if v, ok := cat.Extract(feature, text); ok {
			offer(feature, v, domain.SourceTechnicalInfo)
			continue
		}
		if v, ok := cat.ExtractBare(feature, text); ok {
			offer(feature, v, domain.SourceTechnicalInfo)
		}
	}

	if len(unmapped) == 0 {
		return
	}
	text := vocabulary.NormalizeText(strings.Join(unmapped, " | "))
	for _, feature := range cat.Features {
		if feature == vocabulary.FeatureBrand {
			continue
		}
		if v, ok := cat.Extract(feature, text); ok {
			offer(feature, v, domain.SourceTechnicalInfo)
		}
	}
}

// brandValue canonicalizes a brand string, preferring a known alias match
func brandValue(cat *vocabulary.Category, raw string) string {
	if v, ok := cat.Extract(vocabulary.FeatureBrand, vocabulary.NormalizeText(raw)); ok {
		return v
	}
	v, _ := cat.Normalize(vocabulary.FeatureBrand, raw, "")
	return v
}

func sourceConfidence(source domain.FeatureSource, feature string) float64 {
	return clamp01(sourceBaseConfidence[source] + featureConfidenceDelta[feature])
}

// normalizePrice converts a raw price to major currency units. Values above
// the category's threshold are assumed to be in the minor unit.
func normalizePrice(cat *vocabulary.Category, price float64) float64 {
	if price <= 0 {
		return 0
	}
	bands := cat.Prices
	if bands.MinorUnitThreshold > 0 && price > bands.MinorUnitThreshold && bands.MinorUnitDivisor > 0 {
		return price / bands.MinorUnitDivisor
	}
	return price
}

// overallConfidence is the confidence-weighted mean of feature confidences,
// boosted when specs and bullets dominate and penalized when only the title
// contributed
func overallConfidence(found map[string]candidate) float64 {
	if len(found) == 0 {
		return 0
	}

	var sum, weights float64
	highPrecedence, titleOnly := 0, 0
	features := make([]string, 0, len(found))
	for feature := range found {
		features = append(features, feature)
	}
	// fixed summation order keeps results bit-identical across runs
	sort.Strings(features)
	for _, feature := range features {
		c := found[feature]
		sum += c.confidence * c.confidence
		weights += c.confidence
		switch c.source {
		case domain.SourceTechnicalInfo, domain.SourceFeatures:
			highPrecedence++
		case domain.SourceTitle:
			titleOnly++
		}
	}
	if weights == 0 {
		return 0
	}

	overall := sum / weights
	if float64(highPrecedence)/float64(len(found)) >= highPrecedenceShare {
		overall *= highPrecedenceBoost
	}
	if titleOnly == len(found) {
		overall *= titleOnlyPenalty
	}
	return clamp01(overall)
}

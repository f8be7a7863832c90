package usecase

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// Package-level compiled regex pattern for performance
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Per-feature scores
const (
	exactMatchScore     = 1.0
	tierUpgradeScore    = 0.95
	tierDowngradeScore  = 0.85
	toleranceFloor      = 0.85 // score at the edge of a tolerance window
	minOutsideReduction = 0.1  // graduated reduction never drops below this factor
	containmentScore    = 0.7
	tokenOverlapCap     = 0.6
	noMatchBase         = 0.1
	fuzzyWeightFactor   = 0.8 // fuzzy token matches get 80% of an exact token

	// matchedThreshold classifies a feature score as a match
	matchedThreshold = toleranceFloor - 1e-9
)

// Confidence blend of a score result
const (
	coverageWeight              = 0.5
	productConfidenceWeight     = 0.3
	requirementConfidenceWeight = 0.2
)

// Product-quality fallback
const (
	qualityScale            = 0.9
	documentationBonusStep  = 0.02
	documentationBonusCap   = 0.1
	neutralPreferenceScore  = 0.5
	neutralPerformanceScore = 0.5
)

// stopWords are dropped before token-overlap comparison of free-text values
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"it": true, "as": true, "be": true, "are": true,
	"series": true, "edition": true, "model": true, "version": true,
}

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableFuzzyMatching bool
	FuzzyEditDistance   int
}

// MatchingService scores product feature sets against requirement sets
type MatchingService struct {
	registry            *vocabulary.Registry
	enableFuzzyMatching bool
	fuzzyEditDistance   int
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(registry *vocabulary.Registry, config MatchConfig) *MatchingService {
	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1 // Default edit distance of 1
	}

	return &MatchingService{
		registry:            registry,
		enableFuzzyMatching: config.EnableFuzzyMatching,
		fuzzyEditDistance:   fuzzyDist,
	}
}

// Score evaluates one product against one requirement. Missing product
// features are never penalized. The only error is a contract violation:
// invalid feature values or a feature set built for another category.
func (s *MatchingService) Score(
	req domain.RequirementSet,
	features domain.ProductFeatureSet,
	category string,
) (domain.ScoreResult, error) {
	start := time.Now()

	if category == "" {
		category = req.CategoryDetected
	}
	cat := s.registry.Category(category)

	if err := checkContract(req, features, cat.Name); err != nil {
		return domain.ScoreResult{}, err
	}

	var result domain.ScoreResult
	switch {
	case len(req.Features) > 0:
		result = s.scoreTechnical(req, features, cat)
	case req.UsageContext != "" && cat.UsageProfiles[req.UsageContext] != nil:
		result = s.scoreUsageContext(req, features, cat)
	default:
		result = s.scoreProductQuality(req, features, cat, domain.FallbackNoFeatures)
	}

	result.ProductID = features.ProductID
	result.ProcessingTime = time.Since(start)

	zap.L().Debug("product scored",
		zap.String("product_id", result.ProductID),
		zap.String("method", result.ScoringMethod),
		zap.Float64("score", result.Score),
		zap.Float64("confidence", result.Confidence),
		zap.Strings("matched", result.MatchedFeatures),
		zap.Strings("missing", result.MissingFeatures),
	)

	return result, nil
}

func checkContract(req domain.RequirementSet, features domain.ProductFeatureSet, category string) error {
	for _, name := range req.FeatureNames() {
		if !req.Features[name].IsValid() {
			return domain.NewContractViolationError("requirement_set", name, "feature value is not a scalar")
		}
	}
	for _, name := range features.FeatureNames() {
		if !features.Features[name].IsValid() {
			return domain.NewContractViolationError("product_feature_set", name, "feature value is not a scalar")
		}
	}
	if features.Category != "" && features.Category != category {
		return domain.NewContractViolationError("product_feature_set", "category",
			fmt.Sprintf("built for %q, scored as %q", features.Category, category))
	}
	return nil
}

// scoreTechnical is the explicit requirement path: weighted mean over the
// features present in both requirement and product
func (s *MatchingService) scoreTechnical(
	req domain.RequirementSet,
	features domain.ProductFeatureSet,
	cat *vocabulary.Category,
) domain.ScoreResult {
	result := domain.ScoreResult{
		MatchedFeatures:    []string{},
		MismatchedFeatures: []string{},
		MissingFeatures:    []string{},
		FeatureScores:      make(map[string]domain.FeatureScore),
		ScoringMethod:      domain.MethodTechnical,
	}

	var weighted, totalWeight float64
	scorable := 0
	for _, feature := range req.FeatureNames() {
		weight := cat.Weight(feature)
		if weight <= 0 {
			continue
		}
		scorable++

		userValue := req.Features[feature].Value()
		productValue, ok := features.Feature(feature)
		if !ok {
			result.MissingFeatures = append(result.MissingFeatures, feature)
			continue
		}

		score := s.ScoreFeature(cat, feature, userValue, productValue.Value())
		result.FeatureScores[feature] = domain.FeatureScore{
			Feature:      feature,
			Score:        score,
			UserValue:    userValue,
			ProductValue: productValue.Value(),
			Weight:       weight,
		}
		weighted += score * weight
		totalWeight += weight

		if score >= matchedThreshold {
			result.MatchedFeatures = append(result.MatchedFeatures, feature)
		} else {
			result.MismatchedFeatures = append(result.MismatchedFeatures, feature)
		}
	}

	if scorable == 0 {
		return s.scoreProductQuality(req, features, cat, domain.FallbackNoFeatures)
	}
	if totalWeight == 0 {
		// nothing requested is documented on the product
		fallback := s.scoreProductQuality(req, features, cat, domain.FallbackNoOverlap)
		fallback.MissingFeatures = result.MissingFeatures
		return fallback
	}

	result.Score = clamp01(weighted / totalWeight)
	coverage := float64(len(result.FeatureScores)) / float64(scorable)
	result.Confidence = blendConfidence(coverage, features.OverallConfidence, req.Confidence)
	result.Rationale = technicalRationale(cat, result)
	return result
}

// scoreUsageContext substitutes a context preference table for explicit
// requirements when the query only states an intent
func (s *MatchingService) scoreUsageContext(
	req domain.RequirementSet,
	features domain.ProductFeatureSet,
	cat *vocabulary.Category,
) domain.ScoreResult {
	profile := cat.UsageProfiles[req.UsageContext]
	result := domain.ScoreResult{
		MatchedFeatures:    []string{},
		MismatchedFeatures: []string{},
		MissingFeatures:    []string{},
		FeatureScores:      make(map[string]domain.FeatureScore),
		ScoringMethod:      domain.MethodUsageContext,
		FallbackReason:     domain.FallbackUsageContext,
	}

	var weighted, totalWeight float64
	names := sortedFeatureNames(profile)
	for _, feature := range names {
		productValue, ok := features.Feature(feature)
		if !ok {
			result.MissingFeatures = append(result.MissingFeatures, feature)
			continue
		}
		weight := cat.Weight(feature)
		if weight <= 0 {
			weight = 1
		}
		score := preferenceScore(profile[feature], productValue.Value(), cat.IsNumeric(feature))
		result.FeatureScores[feature] = domain.FeatureScore{
			Feature:      feature,
			Score:        score,
			UserValue:    req.UsageContext,
			ProductValue: productValue.Value(),
			Weight:       weight,
		}
		weighted += score * weight
		totalWeight += weight

		if score >= matchedThreshold {
			result.MatchedFeatures = append(result.MatchedFeatures, feature)
		} else {
			result.MismatchedFeatures = append(result.MismatchedFeatures, feature)
		}
	}

	result.Score = neutralPreferenceScore
	if totalWeight > 0 {
		result.Score = clamp01(weighted / totalWeight)
	}
	coverage := 0.0
	if len(names) > 0 {
		coverage = float64(len(result.FeatureScores)) / float64(len(names))
	}
	result.Confidence = blendConfidence(coverage, features.OverallConfidence, req.Confidence)
	result.Rationale = fmt.Sprintf("scored for %s use: %s", req.UsageContext, joinLabels(cat, result.MatchedFeatures, "no standout features"))
	return result
}

// scoreProductQuality ranks on intrinsic quality when there is nothing to
// match against
func (s *MatchingService) scoreProductQuality(
	req domain.RequirementSet,
	features domain.ProductFeatureSet,
	cat *vocabulary.Category,
	reason string,
) domain.ScoreResult {
	quality, rated := s.qualityScore(cat, features)
	bonus := math.Min(documentationBonusCap, documentationBonusStep*float64(features.FeaturesFound))

	score := bonus
	if rated > 0 {
		score = quality*qualityScale + bonus
	}

	return domain.ScoreResult{
		Score:              clamp01(score),
		Confidence:         blendConfidence(0, features.OverallConfidence, req.Confidence),
		MatchedFeatures:    []string{},
		MismatchedFeatures: []string{},
		MissingFeatures:    []string{},
		FeatureScores:      make(map[string]domain.FeatureScore),
		ScoringMethod:      domain.MethodProductQuality,
		FallbackReason:     reason,
		Rationale: fmt.Sprintf("no explicit requirements to match; ranked on product quality across %d documented features",
			features.FeaturesFound),
	}
}

// qualityScore is the weight-averaged intrinsic quality of the product's
// rateable features and the number of features rated
func (s *MatchingService) qualityScore(cat *vocabulary.Category, features domain.ProductFeatureSet) (float64, int) {
	var weighted, totalWeight float64
	rated := 0
	for _, feature := range features.FeatureNames() {
		if feature == domain.PriceFeature {
			continue
		}
		q, ok := cat.QualityOf(feature, features.Features[feature].Value())
		if !ok {
			continue
		}
		weight := cat.Weight(feature)
		if weight <= 0 {
			continue
		}
		weighted += q * weight
		totalWeight += weight
		rated++
	}
	if totalWeight == 0 {
		return 0, 0
	}
	return weighted / totalWeight, rated
}

// PerformanceScore is the intrinsic technical performance of a product in
// [0,1], neutral when nothing is rateable
func (s *MatchingService) PerformanceScore(features domain.ProductFeatureSet) float64 {
	cat := s.registry.Category(features.Category)
	q, rated := s.qualityScore(cat, features)
	if rated == 0 {
		return neutralPerformanceScore
	}
	return q
}

// ScoreFeature scores one requirement value against one product value.
// Rules are tried in order: exact, tier, tolerance window, containment,
// token overlap, no match.
func (s *MatchingService) ScoreFeature(cat *vocabulary.Category, feature, userValue, productValue string) float64 {
	u := strings.ToLower(strings.TrimSpace(userValue))
	p := strings.ToLower(strings.TrimSpace(productValue))
	if u == "" || p == "" {
		return noMatchBase * cat.Penalty(feature)
	}

	if u == p {
		return exactMatchScore
	}

	numeric := cat.IsNumeric(feature) && domain.IsNumber(u) && domain.IsNumber(p)
	var uf, pf float64
	if numeric {
		uf, pf = domain.ParseNumber(u), domain.ParseNumber(p)
		if math.Abs(uf-pf) < 1e-9 {
			return exactMatchScore
		}
	}

	if tiers, ok := cat.Tiers[feature][u]; ok {
		if containsValue(tiers.Upgrades, p) {
			return tierUpgradeScore
		}
		if containsValue(tiers.Downgrades, p) {
			return tierDowngradeScore
		}
		if numeric && beyondUpgrades(cat.QualityCurves[feature], tiers.Upgrades, pf) {
			return tierUpgradeScore
		}
	}

	if tol, ok := cat.Tolerances[feature]; ok && numeric && uf != 0 {
		return toleranceScore(math.Abs(uf-pf)/math.Abs(uf), tol, cat.Penalty(feature))
	}

	if !numeric && (strings.Contains(p, u) || strings.Contains(u, p)) {
		return containmentScore
	}

	if !numeric {
		if overlap := s.tokenOverlap(u, p); overlap > 0 {
			return overlap * tokenOverlapCap
		}
	}

	return noMatchBase * cat.Penalty(feature)
}

// toleranceScore decays linearly from 1 to the floor across the window.
// Outside the window the floor is scaled by the mismatch penalty and a
// reduction proportional to how far past the edge the value lies.
func toleranceScore(ratio, tol, penalty float64) float64 {
	if ratio <= tol+1e-12 {
		return math.Max(toleranceFloor, 1-(ratio/tol)*(1-toleranceFloor))
	}
	excess := ratio - tol
	return toleranceFloor * penalty * math.Max(minOutsideReduction, 1-excess/tol)
}

// tokenOverlap is the share of distinct tokens two free-text values have in
// common, fuzzy matches counting at a reduced weight
func (s *MatchingService) tokenOverlap(userValue, productValue string) float64 {
	userTokens := tokenize(userValue)
	productTokens := tokenize(productValue)
	if len(userTokens) == 0 || len(productTokens) == 0 {
		return 0
	}

	exact, matched := findIntersection(productTokens, userTokens)
	matchedSet := make(map[string]bool, len(matched))
	for _, t := range matched {
		matchedSet[t] = true
	}

	fuzzy := 0
	if s.enableFuzzyMatching {
		for _, u := range userTokens {
			if matchedSet[u] {
				continue
			}
			for _, p := range productTokens {
				if fuzzyTokenMatch(u, p, s.fuzzyEditDistance) {
					fuzzy++
					matchedSet[u] = true
					break
				}
			}
		}
	}

	union := findUnion(userTokens, productTokens) - fuzzy
	if union <= 0 {
		return 0
	}
	return math.Min(1, (float64(exact)+fuzzyWeightFactor*float64(fuzzy))/float64(union))
}

// preferenceScore looks a product value up in a usage profile table.
// Numeric values use the largest key not above the value.
func preferenceScore(table map[string]float64, value string, numeric bool) float64 {
	if score, ok := table[value]; ok {
		return score
	}
	if !numeric || !domain.IsNumber(value) {
		return neutralPreferenceScore
	}

	v := domain.ParseNumber(value)
	bestKey, lowestKey := math.Inf(-1), math.Inf(1)
	bestScore, lowestScore := neutralPreferenceScore, neutralPreferenceScore
	for key, score := range table {
		k, ok := parseKey(key)
		if !ok {
			continue
		}
		if k <= v && k > bestKey {
			bestKey, bestScore = k, score
		}
		if k < lowestKey {
			lowestKey, lowestScore = k, score
		}
	}
	if !math.IsInf(bestKey, -1) {
		return bestScore
	}
	if !math.IsInf(lowestKey, 1) {
		return lowestScore
	}
	return neutralPreferenceScore
}

func parseKey(key string) (float64, bool) {
	if !domain.IsNumber(key) {
		return 0, false
	}
	return domain.ParseNumber(key), true
}

func blendConfidence(coverage, productConfidence, requirementConfidence float64) float64 {
	return clamp01(coverageWeight*coverage +
		productConfidenceWeight*productConfidence +
		requirementConfidenceWeight*requirementConfidence)
}

func technicalRationale(cat *vocabulary.Category, result domain.ScoreResult) string {
	parts := []string{"matches " + joinLabels(cat, result.MatchedFeatures, "none of the requested features")}
	if len(result.MismatchedFeatures) > 0 {
		details := make([]string, 0, len(result.MismatchedFeatures))
		for _, f := range result.MismatchedFeatures {
			fs := result.FeatureScores[f]
			details = append(details, fmt.Sprintf("%s (%s vs requested %s)", cat.Label(f), fs.ProductValue, fs.UserValue))
		}
		parts = append(parts, "differs on "+strings.Join(details, ", "))
	}
	if len(result.MissingFeatures) > 0 {
		parts = append(parts, "does not document "+joinLabels(cat, result.MissingFeatures, ""))
	}
	return strings.Join(parts, "; ")
}

func joinLabels(cat *vocabulary.Category, features []string, empty string) string {
	if len(features) == 0 {
		return empty
	}
	labels := make([]string, len(features))
	for i, f := range features {
		labels[i] = cat.Label(f)
	}
	return strings.Join(labels, ", ")
}

// beyondUpgrades reports whether v is better than every listed numeric
// upgrade, e.g. 360 Hz when the tiers stop at 165
func beyondUpgrades(curve vocabulary.QualityCurve, upgrades []string, v float64) bool {
	if curve.Direction != "higher" && curve.Direction != "lower" {
		return false
	}
	found := false
	var edge float64
	for _, u := range upgrades {
		if !domain.IsNumber(u) {
			continue
		}
		n := domain.ParseNumber(u)
		switch {
		case !found:
			edge = n
		case curve.Direction == "higher":
			edge = math.Max(edge, n)
		default:
			edge = math.Min(edge, n)
		}
		found = true
	}
	if !found {
		return false
	}
	if curve.Direction == "higher" {
		return v > edge
	}
	return v < edge
}

func containsValue(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func sortedFeatureNames(profile vocabulary.UsageProfile) []string {
	names := make([]string, 0, len(profile))
	for name := range profile {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words and pure numeric tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	words := strings.Fields(cleaned)

	var tokens []string
	for _, word := range words {
		// Skip short tokens (1 char or less)
		if len(word) <= 1 {
			continue
		}
		if stopWords[word] {
			continue
		}
		if isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// isNumeric checks if a string contains only digits
func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens > 4 chars to avoid false positives
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	// Quick length check - if lengths differ by more than threshold, can't match
	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	// Use two rows instead of full matrix for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// findIntersection returns the count of common tokens and the list of matched tokens
func findIntersection(tokens1, tokens2 []string) (int, []string) {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}

	var matched []string
	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] && !seen[t] {
			matched = append(matched, t)
			seen[t] = true
		}
	}

	return len(matched), matched
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}

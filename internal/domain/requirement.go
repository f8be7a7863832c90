package domain

import "sort"

// Fallback reasons recorded on requirement sets and score results
const (
	FallbackEmptyQuery     = "empty_query"
	FallbackMarketingHeavy = "marketing_heavy"
	FallbackNoFeatures     = "no_scorable_features"
	FallbackUsageContext   = "usage_context_only"
	FallbackNoOverlap      = "no_overlapping_features"
)

// RequirementSet is the normalized representation of what a user asked for.
// It is produced once per query and treated as read-only afterwards.
type RequirementSet struct {
	Query                string                  `json:"query"`
	Features             map[string]FeatureValue `json:"features"`
	Budget               float64                 `json:"budget,omitempty"`       // major currency units, 0 = unknown
	UsageContext         string                  `json:"usageContext,omitempty"` // e.g. "gaming", "coding"
	Confidence           float64                 `json:"confidence"`
	TechnicalDensity     float64                 `json:"technicalDensity"`
	MarketingHeavy       bool                    `json:"marketingHeavy"`
	CategoryDetected     string                  `json:"categoryDetected"`
	MatchedFeaturesCount int                     `json:"matchedFeaturesCount"`
	FallbackReason       string                  `json:"fallbackReason,omitempty"`
}

// Feature returns the requested value for a feature
func (r RequirementSet) Feature(name string) (FeatureValue, bool) {
	v, ok := r.Features[name]
	return v, ok
}

// FeatureNames returns the requested feature names in sorted order
func (r RequirementSet) FeatureNames() []string {
	names := make([]string, 0, len(r.Features))
	for name := range r.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidationWarning flags an implausible requirement value. Scoring still
// proceeds with the raw value.
type ValidationWarning struct {
	Feature string `json:"feature"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

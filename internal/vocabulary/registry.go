// Package vocabulary holds the per-category tables that drive requirement
// extraction, product analysis and scoring: extraction patterns, synonym and
// unit maps, weights, tolerance windows, categorical tiers and penalties.
// It is pure data plus the normalization rules shared by both extractors.
package vocabulary

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/specmatch/backend/internal/domain"
)

// DefaultCategory is the fully populated category used when nothing else matches
const DefaultCategory = "monitor"

// Pattern is one extraction rule. The first capture group holds the raw value.
type Pattern struct {
	Expr *regexp.Regexp
	Unit string // unit of the captured value, "" when unitless
}

// TierRule lists the values accepted in place of a required value
type TierRule struct {
	Upgrades   []string `yaml:"upgrades"`
	Downgrades []string `yaml:"downgrades"`
}

// Range is a plausible value window for a numeric feature
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies inside the range (inclusive)
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// QualityCurve maps a numeric value onto intrinsic quality in [Floor,1]
type QualityCurve struct {
	Direction string  // "higher", "lower" or "band"
	Best      float64 // higher/lower: value at which quality reaches 1
	Worst     float64 // higher/lower: value at which quality bottoms out
	BandMin   float64 // band: quality is 1 inside [BandMin, BandMax]
	BandMax   float64
	Floor     float64
}

// Quality evaluates the curve at v
func (q QualityCurve) Quality(v float64) float64 {
	switch q.Direction {
	case "higher":
		if v >= q.Best {
			return 1
		}
		if v <= q.Worst {
			return q.Floor
		}
		return q.Floor + (1-q.Floor)*(v-q.Worst)/(q.Best-q.Worst)
	case "lower":
		if v <= q.Best {
			return 1
		}
		if v >= q.Worst {
			return q.Floor
		}
		return q.Floor + (1-q.Floor)*(q.Worst-v)/(q.Worst-q.Best)
	case "band":
		if v >= q.BandMin && v <= q.BandMax {
			return 1
		}
		return q.Floor
	}
	return q.Floor
}

// PriceBands drive the price-tier tie-breaker and currency normalization
type PriceBands struct {
	UltraBudgetMax     float64 `yaml:"ultra_budget_max"`
	SweetSpotMin       float64 `yaml:"sweet_spot_min"`
	SweetSpotMax       float64 `yaml:"sweet_spot_max"`
	UltraPremiumMin    float64 `yaml:"ultra_premium_min"`
	MinorUnitThreshold float64 `yaml:"minor_unit_threshold"` // prices above are in the minor unit
	MinorUnitDivisor   float64 `yaml:"minor_unit_divisor"`
	CurrencySymbol     string  `yaml:"currency_symbol"`
}

// ExcellenceRule awards a bonus when a product value clears a threshold
type ExcellenceRule struct {
	Feature string   `yaml:"feature"`
	Min     float64  `yaml:"min"`    // numeric: value >= Min (or <= Max when Max > 0)
	Max     float64  `yaml:"max"`    // numeric upper bound, 0 = unbounded
	Values  []string `yaml:"values"` // categorical: value in Values
	Bonus   float64  `yaml:"bonus"`
}

// UsageProfile maps feature -> value -> preference score for one usage context
type UsageProfile map[string]map[string]float64

// Category is the complete vocabulary of one product category
type Category struct {
	Name     string
	Keywords []string

	// Features lists the extractable features in extraction order
	Features        []string
	NumericFeatures map[string]bool
	Patterns        map[string][]Pattern
	Synonyms        map[string]map[string]string // feature -> compact alias -> canonical
	UnitFactors     map[string]float64           // unit -> factor to the canonical unit
	Rounding        map[string]float64           // feature -> rounding step applied after unit conversion
	SpecKeyAliases  map[string]string            // spec table key (lowercase) -> feature
	IgnoredSpecKeys []string                     // words marking spec rows that never describe a feature

	Weights    map[string]float64
	Tolerances map[string]float64 // fraction of the requirement value
	Tiers      map[string]map[string]TierRule
	Penalties  map[string]float64
	Ranges     map[string]Range

	TechnicalTerms        map[string]bool
	TechnicalTokenPattern *regexp.Regexp
	FillerWords           map[string]bool
	StrongFillerPhrases   []string
	BudgetPatterns        []Pattern

	UsageKeywords map[string][]string
	UsageProfiles map[string]UsageProfile

	QualityRanks  map[string]map[string]float64 // categorical feature -> value -> quality
	QualityCurves map[string]QualityCurve       // numeric feature -> curve

	ComparisonFeatures []string
	FeatureLabels      map[string]string

	Prices              PriceBands
	HybridProfiles      map[string]domain.HybridWeights
	PerformanceContexts map[string]bool
	Excellence          []ExcellenceRule
	ExcellenceCap       float64
	ValueRatioCap       float64 // assumed maximum performance per thousand currency units
}

// IgnoresSpecKey reports whether a spec table row should be skipped, e.g.
// "Product Dimensions" whose numbers read like a screen size
func (c *Category) IgnoresSpecKey(key string) bool {
	normalized := NormalizeText(key)
	for _, word := range c.IgnoredSpecKeys {
		if containsWord(normalized, word) {
			return true
		}
	}
	return false
}

// Weight returns the importance weight of a feature, 0 when unknown
func (c *Category) Weight(feature string) float64 {
	return c.Weights[feature]
}

// Penalty returns the mismatch penalty multiplier of a feature
func (c *Category) Penalty(feature string) float64 {
	if p, ok := c.Penalties[feature]; ok {
		return p
	}
	return 0.5
}

// Label returns a human-readable feature label
func (c *Category) Label(feature string) string {
	if l, ok := c.FeatureLabels[feature]; ok {
		return l
	}
	return strings.ReplaceAll(feature, "_", " ")
}

// IsNumeric reports whether a feature carries numeric values
func (c *Category) IsNumeric(feature string) bool {
	return c.NumericFeatures[feature]
}

// HybridWeightsFor picks the hybrid weight set for a usage context
func (c *Category) HybridWeightsFor(usageContext string) domain.HybridWeights {
	if c.PerformanceContexts[usageContext] {
		return c.HybridProfiles["performance"]
	}
	return c.HybridProfiles["general"]
}

// Registry resolves categories by name
type Registry struct {
	version         string
	categories      map[string]*Category
	defaultCategory string
}

// NewRegistry creates a registry with the built-in category tables
func NewRegistry() *Registry {
	r := &Registry{
		version:         "2025.10-builtin",
		categories:      make(map[string]*Category),
		defaultCategory: DefaultCategory,
	}
	r.Register(monitorCategory())
	r.Register(laptopCategory())
	return r
}

// Register adds or replaces a category
func (r *Registry) Register(c *Category) {
	r.categories[c.Name] = c
}

// Version returns the version identifier of the loaded tables
func (r *Registry) Version() string {
	return r.version
}

// Category returns the named category, falling back to the default
func (r *Registry) Category(name string) *Category {
	if c, ok := r.categories[strings.ToLower(strings.TrimSpace(name))]; ok {
		return c
	}
	return r.categories[r.defaultCategory]
}

// Has reports whether a category is registered under the exact name
func (r *Registry) Has(name string) bool {
	_, ok := r.categories[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Names returns the registered category names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectCategory scores categories by keyword hits in the text.
// Returns the default category with matched=false when nothing hits.
func (r *Registry) DetectCategory(text string) (string, bool) {
	lower := NormalizeText(text)
	best := ""
	bestScore := 0

	for _, name := range r.Names() {
		score := 0
		for _, kw := range r.categories[name].Keywords {
			if containsWord(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = name, score
		}
	}

	if bestScore == 0 {
		return r.defaultCategory, false
	}
	return best, true
}

// Validate checks the tables for internal consistency
func (r *Registry) Validate() error {
	var errs []string

	if _, ok := r.categories[r.defaultCategory]; !ok {
		errs = append(errs, fmt.Sprintf("default category %q not registered", r.defaultCategory))
	}

	for _, name := range r.Names() {
		c := r.categories[name]
		for feature, w := range c.Weights {
			if w < 0 {
				errs = append(errs, fmt.Sprintf("%s.%s weight must be >= 0", name, feature))
			}
		}
		for feature, p := range c.Penalties {
			if p <= 0 || p >= 1 {
				errs = append(errs, fmt.Sprintf("%s.%s penalty must be in (0,1), got %.2f", name, feature, p))
			}
		}
		for feature, t := range c.Tolerances {
			if t <= 0 || t >= 1 {
				errs = append(errs, fmt.Sprintf("%s.%s tolerance must be in (0,1), got %.2f", name, feature, t))
			}
		}
		for profile, hw := range c.HybridProfiles {
			if math.Abs(hw.Sum()-1) > 1e-6 {
				errs = append(errs, fmt.Sprintf("%s hybrid profile %q weights sum to %.3f, want 1", name, profile, hw.Sum()))
			}
		}
		for _, required := range []string{"performance", "general"} {
			if _, ok := c.HybridProfiles[required]; !ok {
				errs = append(errs, fmt.Sprintf("%s is missing hybrid profile %q", name, required))
			}
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("vocabulary: registry validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// containsWord reports whether phrase occurs in text on word boundaries
func containsWord(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		if (start == 0 || !isWordByte(text[start-1])) && (end == len(text) || !isWordByte(text[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

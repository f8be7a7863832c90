package vocabulary

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	numberRegex     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	compactRegex    = regexp.MustCompile(`[\s\-_.]+`)
)

// NormalizeText folds compatibility characters (full-width digits, prime
// marks), lowercases and collapses whitespace
func NormalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ContainsWord reports whether phrase occurs in normalized text on word boundaries
func ContainsWord(text, phrase string) bool {
	return containsWord(text, phrase)
}

// FormatNumber renders a numeric feature value with at most two decimals and
// no trailing zeros, so "27.0" and "27" compare equal as strings
func FormatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func compact(s string) string {
	return compactRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// Normalize converts a raw captured value into the canonical form for the
// feature: numeric values are unit-converted to the canonical unit,
// categorical values are mapped through the synonym table.
func (c *Category) Normalize(feature, raw, unit string) (string, bool) {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if raw == "" {
		return "", false
	}

	if c.NumericFeatures[feature] {
		num := numberRegex.FindString(raw)
		if num == "" {
			return "", false
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return "", false
		}
		factor := 1.0
		if unit != "" {
			if f, ok := c.UnitFactors[unit]; ok {
				factor = f
			}
		}
		v *= factor
		if factor != 1 {
			if step := c.Rounding[feature]; step > 0 {
				v = math.Round(v/step) * step
			}
		}
		return FormatNumber(v), true
	}

	if syn, ok := c.Synonyms[feature][compact(raw)]; ok {
		return syn, true
	}
	return whitespaceRegex.ReplaceAllString(raw, " "), true
}

// Extract runs the feature's patterns over normalized text in declared
// order and returns the first successfully normalized match
func (c *Category) Extract(feature, text string) (string, bool) {
	for _, p := range c.Patterns[feature] {
		m := p.Expr.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		raw := m[1]
		if raw == "" {
			// optional alternations put the value in a later group
			for _, g := range m[2:] {
				if g != "" {
					raw = g
					break
				}
			}
		}
		if v, ok := c.Normalize(feature, raw, p.Unit); ok {
			return v, true
		}
	}
	return "", false
}

// ExtractBare pulls a unitless number out of a value whose unit is implied
// by context, e.g. a spec table row "Refresh Rate: 144"
func (c *Category) ExtractBare(feature, text string) (string, bool) {
	if !c.NumericFeatures[feature] {
		return c.Normalize(feature, text, "")
	}
	num := numberRegex.FindString(text)
	if num == "" {
		return "", false
	}
	return c.Normalize(feature, num, "")
}

// ExtractBudget finds a budget amount in major currency units
func (c *Category) ExtractBudget(text string) (float64, bool) {
	for _, p := range c.BudgetPatterns {
		for _, m := range p.Expr.FindAllStringSubmatch(text, -1) {
			if v, ok := c.budgetAmount(p, m); ok {
				return v, true
			}
		}
	}
	return 0, false
}

func (c *Category) budgetAmount(p Pattern, m []string) (float64, bool) {
	if len(m) < 2 || m[1] == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	suffix := ""
	if len(m) > 2 {
		suffix = strings.TrimSpace(m[2])
	}
	if p.Unit == "bare" {
		// "upto 4k" names a resolution unless a currency marker says otherwise
		if suffix == "k" && c.Synonyms[FeatureResolution][m[1]+"k"] != "" {
			return 0, false
		}
	}
	switch suffix {
	case "k", "thousand":
		v *= 1000
	case "lakh", "lac", "l":
		v *= 100000
	}
	// without a currency marker "under 27" is more likely a size than a budget
	if p.Unit == "bare" && v < 1000 {
		return 0, false
	}
	return v, true
}

// IsTechnicalToken reports whether a query token is domain vocabulary
func (c *Category) IsTechnicalToken(token string) bool {
	if c.TechnicalTerms[token] {
		return true
	}
	return c.TechnicalTokenPattern != nil && c.TechnicalTokenPattern.MatchString(token)
}

// DetectUsageContext returns the usage context with the most keyword hits in
// text; ties go to the alphabetically first context
func (c *Category) DetectUsageContext(text string) string {
	best, bestHits := "", 0
	for _, ctx := range sortedKeys(c.UsageKeywords) {
		hits := 0
		for _, kw := range c.UsageKeywords[ctx] {
			if containsWord(text, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = ctx, hits
		}
	}
	return best
}

// QualityOf returns the intrinsic quality of a feature value and whether the
// category knows how to rate it
func (c *Category) QualityOf(feature, value string) (float64, bool) {
	if curve, ok := c.QualityCurves[feature]; ok {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return curve.Quality(v), true
	}
	if ranks, ok := c.QualityRanks[feature]; ok {
		if q, ok := ranks[value]; ok {
			return q, true
		}
		return ranks["*"], ranks["*"] > 0
	}
	return 0, false
}

// Plausible reports whether a numeric value lies in the feature's known range.
// Features without a range are always plausible.
func (c *Category) Plausible(feature, value string) bool {
	r, ok := c.Ranges[feature]
	if !ok {
		return true
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	return r.Contains(v)
}

// ExcellenceBonus sums the best matching rule bonus per feature, capped at
// ExcellenceCap
func (c *Category) ExcellenceBonus(features map[string]string) float64 {
	best := make(map[string]float64)
	for _, rule := range c.Excellence {
		value, ok := features[rule.Feature]
		if !ok || value == "" {
			continue
		}
		if !rule.matches(value, c.NumericFeatures[rule.Feature]) {
			continue
		}
		if rule.Bonus > best[rule.Feature] {
			best[rule.Feature] = rule.Bonus
		}
	}

	total := 0.0
	for _, feature := range sortedKeys(best) {
		total += best[feature]
	}
	if c.ExcellenceCap > 0 && total > c.ExcellenceCap {
		total = c.ExcellenceCap
	}
	return total
}

func (r ExcellenceRule) matches(value string, numeric bool) bool {
	if !numeric || len(r.Values) > 0 {
		for _, v := range r.Values {
			if v == value {
				return true
			}
		}
		return false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return false
	}
	if r.Min > 0 && v < r.Min {
		return false
	}
	if r.Max > 0 && v > r.Max {
		return false
	}
	return r.Min > 0 || r.Max > 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

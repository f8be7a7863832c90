package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

const (
	maxHeaderRunes    = 60
	maxSummaryLabels  = 3
	excellentSpecsMin = 0.1 // excellence bonus that earns an "Excellent specs" strength
)

// Strength labels
const (
	StrengthBudgetFriendly = "Budget-friendly"
	StrengthPremium        = "Premium option"
	StrengthExcellentSpecs = "Excellent specs"
)

// BuildComparisonTable builds the comparison of the selected candidates.
// The header count always equals the candidate count.
func (s *CandidateSelector) BuildComparisonTable(req domain.RequirementSet, candidates []domain.RankedProduct) domain.ComparisonTable {
	table := domain.ComparisonTable{
		Headers:        make([]string, 0, len(candidates)),
		KeyDifferences: []domain.ComparisonRow{},
		Strengths:      make(map[int][]string),
		TradeOffs:      []string{},
	}
	if len(candidates) == 0 {
		table.Summary = "No matching products found."
		return table
	}

	category := candidates[0].Features.Category
	if category == "" {
		category = req.CategoryDetected
	}
	cat := s.registry.Category(category)

	for _, rp := range candidates {
		table.Headers = append(table.Headers, header(rp))
	}

	for _, feature := range cat.ComparisonFeatures {
		if row, ok := s.comparisonRow(cat, req, feature, candidates); ok {
			table.KeyDifferences = append(table.KeyDifferences, row)
		}
	}

	for i := range candidates {
		if strengths := s.strengths(cat, i, candidates, table.KeyDifferences); len(strengths) > 0 {
			table.Strengths[i] = strengths
		}
	}

	table.TradeOffs = tradeOffs(cat, candidates, table.Headers)
	table.Summary = summary(cat, candidates, table)
	return table
}

func header(rp domain.RankedProduct) string {
	h := strings.TrimSpace(rp.Product.Title)
	if h == "" {
		h = rp.Product.ID
	}
	if r := []rune(h); len(r) > maxHeaderRunes {
		h = strings.TrimSpace(string(r[:maxHeaderRunes-3])) + "..."
	}
	return h
}

// comparisonRow builds the row of one feature. A row is kept when values
// differ across candidates or the user asked for the feature.
func (s *CandidateSelector) comparisonRow(
	cat *vocabulary.Category,
	req domain.RequirementSet,
	feature string,
	candidates []domain.RankedProduct,
) (domain.ComparisonRow, bool) {
	row := domain.ComparisonRow{
		Feature:   feature,
		Values:    make([]string, len(candidates)),
		BestIndex: -1,
	}

	distinct := make(map[string]bool)
	known := 0
	for i, rp := range candidates {
		if v, ok := rp.Features.Feature(feature); ok {
			row.Values[i] = v.Value()
			known++
		}
		distinct[row.Values[i]] = true
	}
	if known == 0 {
		return row, false
	}

	if feature == domain.PriceFeature {
		if req.Budget > 0 {
			row.UserPreference = vocabulary.FormatNumber(req.Budget)
		}
	} else if v, ok := req.Feature(feature); ok {
		row.UserPreference = v.Value()
	}

	if len(distinct) < 2 && row.UserPreference == "" {
		return row, false
	}

	row.BestIndex = bestIndex(cat, feature, row, candidates)
	return row, true
}

// bestIndex picks the standout candidate of a row: lowest price, the value
// closest to the user's preference, or the highest intrinsic quality.
// Returns -1 when no single candidate stands out.
func bestIndex(cat *vocabulary.Category, feature string, row domain.ComparisonRow, candidates []domain.RankedProduct) int {
	scores := make([]float64, len(candidates))
	valid := make([]bool, len(candidates))

	for i, value := range row.Values {
		if value == "" {
			continue
		}
		switch {
		case feature == domain.PriceFeature:
			if p := domain.ParseNumber(value); p > 0 {
				scores[i], valid[i] = -p, true
			}
		case row.UserPreference != "":
			if cat.IsNumeric(feature) && domain.IsNumber(value) && domain.IsNumber(row.UserPreference) {
				scores[i] = -math.Abs(domain.ParseNumber(value) - domain.ParseNumber(row.UserPreference))
				valid[i] = true
			} else if fs, ok := candidates[i].Result.FeatureScores[feature]; ok {
				scores[i], valid[i] = fs.Score, true
			}
		default:
			if q, ok := cat.QualityOf(feature, value); ok {
				scores[i], valid[i] = q, true
			}
		}
	}

	return uniqueMax(scores, valid)
}

// uniqueMax returns the index of the strictly highest valid score, or -1
func uniqueMax(scores []float64, valid []bool) int {
	best := -1
	tied := false
	for i := range scores {
		if !valid[i] {
			continue
		}
		switch {
		case best < 0 || scores[i] > scores[best]+scoreEpsilon:
			best, tied = i, false
		case math.Abs(scores[i]-scores[best]) <= scoreEpsilon:
			tied = true
		}
	}
	if tied {
		return -1
	}
	return best
}

func (s *CandidateSelector) strengths(
	cat *vocabulary.Category,
	i int,
	candidates []domain.RankedProduct,
	rows []domain.ComparisonRow,
) []string {
	rp := candidates[i]
	var out []string
	listed := make(map[string]bool)

	for _, feature := range rp.Result.MatchedFeatures {
		fs := rp.Result.FeatureScores[feature]
		switch {
		case fs.Score >= exactMatchScore-scoreEpsilon:
			out = append(out, fmt.Sprintf("Matches your %s (%s)", cat.Label(feature), fs.ProductValue))
		case fs.Score >= tierUpgradeScore-scoreEpsilon:
			out = append(out, fmt.Sprintf("Exceeds your %s (%s)", cat.Label(feature), fs.ProductValue))
		default:
			continue
		}
		listed[feature] = true
	}

	if len(candidates) > 1 {
		for _, row := range rows {
			if row.BestIndex == i && row.Feature != domain.PriceFeature && !listed[row.Feature] {
				out = append(out, fmt.Sprintf("Best %s (%s)", cat.Label(row.Feature), row.Values[i]))
			}
		}
	}

	if label := s.priceLabel(cat, i, candidates); label != "" {
		out = append(out, label)
	}
	if rp.Hybrid.ExcellenceBonus >= excellentSpecsMin {
		out = append(out, StrengthExcellentSpecs)
	}
	return out
}

// priceLabel marks the cheapest and dearest of a comparison set when their
// prices differ meaningfully; a lone candidate is judged against the
// category's price bands
func (s *CandidateSelector) priceLabel(cat *vocabulary.Category, i int, candidates []domain.RankedProduct) string {
	price := candidates[i].Features.Price()
	if price <= 0 {
		return ""
	}

	if len(candidates) == 1 {
		switch {
		case price < cat.Prices.SweetSpotMin:
			return StrengthBudgetFriendly
		case price > cat.Prices.SweetSpotMax:
			return StrengthPremium
		}
		return ""
	}

	lo, hi := price, price
	for _, rp := range candidates {
		p := rp.Features.Price()
		if p <= 0 {
			continue
		}
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	if (hi-lo)/hi <= s.config.DiversityPriceGap {
		return ""
	}
	switch price {
	case lo:
		return StrengthBudgetFriendly
	case hi:
		return StrengthPremium
	}
	return ""
}

// tradeOffs narrates pairs where paying more buys a better match, and pairs
// where the better match is also cheaper
func tradeOffs(cat *vocabulary.Category, candidates []domain.RankedProduct, headers []string) []string {
	out := []string{}
	symbol := cat.Prices.CurrencySymbol

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			a, b := candidates[i], candidates[j]
			pa, pb := a.Features.Price(), b.Features.Price()
			if pa <= 0 || pb <= 0 {
				continue
			}
			sa, sb := a.Hybrid.FinalScore, b.Hybrid.FinalScore
			// orient the pair so hi is the better match
			hi, lo := i, j
			if sb > sa {
				hi, lo = j, i
				pa, pb, sa, sb = pb, pa, sb, sa
			}
			if sa-sb <= scoreEpsilon {
				continue
			}
			switch {
			case pa > pb:
				out = append(out, fmt.Sprintf("%s costs %s%s more than %s for a higher match score (%.2f vs %.2f)",
					headers[hi], symbol, vocabulary.FormatNumber(pa-pb), headers[lo], sa, sb))
			case pa < pb:
				out = append(out, fmt.Sprintf("%s scores higher and costs %s%s less than %s",
					headers[hi], symbol, vocabulary.FormatNumber(pb-pa), headers[lo]))
			}
		}
	}
	return out
}

func summary(cat *vocabulary.Category, candidates []domain.RankedProduct, table domain.ComparisonTable) string {
	if len(candidates) == 1 {
		return fmt.Sprintf("Best match: %s (score %.2f)", table.Headers[0], candidates[0].Hybrid.FinalScore)
	}

	var labels []string
	for _, row := range table.KeyDifferences {
		if len(labels) == maxSummaryLabels {
			break
		}
		labels = append(labels, cat.Label(row.Feature))
	}
	if len(labels) == 0 {
		return fmt.Sprintf("Comparing %d similar options", len(candidates))
	}
	return fmt.Sprintf("Comparing %d options; key differences: %s", len(candidates), strings.Join(labels, ", "))
}

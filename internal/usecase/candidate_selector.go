package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// EngineVersion identifies the scoring and selection rules in selection metadata
const EngineVersion = "specmatch-engine/1.2"

// Selection reasons
const (
	ReasonNoCandidates   = "no candidates"
	ReasonBestAvailable  = "no option reached the minimum viable score; showing the best available"
	ReasonOnlyOneViable  = "only one viable option"
	ReasonHighConfidence = "high confidence in the top match"
	ReasonClearWinner    = "clear winner"
	ReasonNoDiversity    = "alternatives are too similar to the top match"
	ReasonComparison     = "multiple strong options worth comparing"
)

// Show-multiple signals recorded in selection metadata
const (
	SignalCloseCompetition  = "close_competition"
	SignalDifferentStrength = "different_strengths"
	SignalPriceSpread       = "price_spread"
)

const signalWindow = 3 // candidates examined by the show-multiple predicate

// SelectorConfig holds the thresholds of the selection state machine
type SelectorConfig struct {
	HighConfidenceThreshold float64 // top confidence above this shows a single result
	CloseGapThreshold       float64 // top-two score gap at or below this is close competition
	LargeGapThreshold       float64 // gap above this needs both strengths and spread
	PriceSpreadThreshold    float64 // (max-min)/max above this is a meaningful value choice
	DiversityPriceGap       float64 // relative price gap that makes a candidate diverse
	MinViableScore          float64
	MaxCandidates           int
}

// DefaultSelectorConfig returns the standard selection thresholds
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		HighConfidenceThreshold: 0.85,
		CloseGapThreshold:       0.05,
		LargeGapThreshold:       0.20,
		PriceSpreadThreshold:    0.25,
		DiversityPriceGap:       0.15,
		MinViableScore:          0.2,
		MaxCandidates:           3,
	}
}

// CandidateSelector decides between a single result and a diverse
// comparison set
type CandidateSelector struct {
	registry *vocabulary.Registry
	config   SelectorConfig
}

// NewCandidateSelector creates a selector. Zero config fields take defaults.
func NewCandidateSelector(registry *vocabulary.Registry, config SelectorConfig) *CandidateSelector {
	def := DefaultSelectorConfig()
	if config.HighConfidenceThreshold <= 0 {
		config.HighConfidenceThreshold = def.HighConfidenceThreshold
	}
	if config.CloseGapThreshold <= 0 {
		config.CloseGapThreshold = def.CloseGapThreshold
	}
	if config.LargeGapThreshold <= 0 {
		config.LargeGapThreshold = def.LargeGapThreshold
	}
	if config.PriceSpreadThreshold <= 0 {
		config.PriceSpreadThreshold = def.PriceSpreadThreshold
	}
	if config.DiversityPriceGap <= 0 {
		config.DiversityPriceGap = def.DiversityPriceGap
	}
	if config.MinViableScore <= 0 {
		config.MinViableScore = def.MinViableScore
	}
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = def.MaxCandidates
	}
	return &CandidateSelector{registry: registry, config: config}
}

// Select runs the selection state machine over a ranked batch
func (s *CandidateSelector) Select(req domain.RequirementSet, batch domain.RankedBatch) domain.SelectionResult {
	start := time.Now()

	result := domain.SelectionResult{
		Metadata: domain.SelectionMetadata{
			SelectionID:          uuid.NewString(),
			CandidatesConsidered: len(batch),
			EngineVersion:        EngineVersion,
			RegistryVersion:      s.registry.Version(),
		},
	}
	s.decide(&result, req, batch)
	result.Metadata.ProcessingTime = time.Since(start)

	zap.L().Info("selection decided",
		zap.String("selection_id", result.Metadata.SelectionID),
		zap.String("mode", string(result.Mode)),
		zap.String("reason", result.SelectionReason),
		zap.Int("considered", result.Metadata.CandidatesConsidered),
		zap.Float64("top_score_gap", result.Metadata.TopScoreGap),
		zap.Float64("price_spread", result.Metadata.PriceSpread),
	)
	return result
}

func (s *CandidateSelector) decide(result *domain.SelectionResult, req domain.RequirementSet, batch domain.RankedBatch) {
	if len(batch) == 0 {
		s.finish(result, req, []domain.RankedProduct{}, ReasonNoCandidates)
		return
	}

	if len(batch) > 1 {
		result.Metadata.TopScoreGap = batch[0].Hybrid.FinalScore - batch[1].Hybrid.FinalScore
	}
	result.Metadata.PriceSpread = priceSpread(batch[:min(signalWindow, len(batch))])

	var viable []domain.RankedProduct
	for _, rp := range batch {
		if rp.Hybrid.FinalScore >= s.config.MinViableScore {
			viable = append(viable, rp)
		}
	}

	switch {
	case len(viable) == 0:
		s.finish(result, req, batch[:1], ReasonBestAvailable)
		return
	case len(viable) == 1:
		s.finish(result, req, viable, ReasonOnlyOneViable)
		return
	case viable[0].Result.Confidence > s.config.HighConfidenceThreshold:
		s.finish(result, req, viable[:1], ReasonHighConfidence)
		return
	}

	signals, show := s.showMultiple(viable)
	result.Metadata.ShowMultipleSignals = signals
	if !show {
		s.finish(result, req, viable[:1], ReasonClearWinner)
		return
	}

	selected := s.diverseSubset(viable)
	if len(selected) == 1 {
		s.finish(result, req, selected, ReasonNoDiversity)
		return
	}
	s.finish(result, req, selected, fmt.Sprintf("%s (%s)", ReasonComparison, strings.Join(signals, ", ")))
}

func (s *CandidateSelector) finish(result *domain.SelectionResult, req domain.RequirementSet, candidates []domain.RankedProduct, reason string) {
	result.Candidates = append(make([]domain.RankedProduct, 0, len(candidates)), candidates...)
	result.Mode = domain.ModeForCount(len(candidates))
	result.SelectionReason = reason
	result.Comparison = s.BuildComparisonTable(req, result.Candidates)
}

// showMultiple evaluates the show-multiple predicate over the top candidates.
// A very large score gap needs both different strengths and a price spread.
func (s *CandidateSelector) showMultiple(viable []domain.RankedProduct) ([]string, bool) {
	top := viable[:min(signalWindow, len(viable))]
	gap := top[0].Hybrid.FinalScore - top[1].Hybrid.FinalScore

	var signals []string
	isClose := gap <= s.config.CloseGapThreshold+scoreEpsilon
	strengths := differentStrengths(top)
	spread := priceSpread(top) > s.config.PriceSpreadThreshold

	if isClose {
		signals = append(signals, SignalCloseCompetition)
	}
	if strengths {
		signals = append(signals, SignalDifferentStrength)
	}
	if spread {
		signals = append(signals, SignalPriceSpread)
	}

	if gap > s.config.LargeGapThreshold {
		return signals, strengths && spread
	}
	return signals, isClose || strengths || spread
}

// diverseSubset greedily keeps candidates in rank order that differ from
// every already selected candidate
func (s *CandidateSelector) diverseSubset(viable []domain.RankedProduct) []domain.RankedProduct {
	selected := []domain.RankedProduct{viable[0]}
	covered := matchedSet(viable[0])

	for _, rp := range viable[1:] {
		if len(selected) >= s.config.MaxCandidates {
			break
		}
		unique := hasUncovered(rp, covered)
		diverse := true
		for _, sel := range selected {
			if !(unique || s.priceGap(rp, sel) || differentBrand(rp, sel)) {
				diverse = false
				break
			}
		}
		if !diverse {
			continue
		}
		selected = append(selected, rp)
		for f := range matchedSet(rp) {
			covered[f] = true
		}
	}
	return selected
}

func (s *CandidateSelector) priceGap(a, b domain.RankedProduct) bool {
	pa, pb := a.Features.Price(), b.Features.Price()
	if pa <= 0 || pb <= 0 {
		return false
	}
	return math.Abs(pa-pb)/math.Max(pa, pb) > s.config.DiversityPriceGap
}

// differentStrengths reports whether at least two candidates each uniquely
// lead on a matched feature
func differentStrengths(top []domain.RankedProduct) bool {
	leaders := make(map[int]bool)
	for i, rp := range top {
		for _, feature := range rp.Result.MatchedFeatures {
			mine := rp.Result.FeatureScores[feature].Score
			leads := true
			for j, other := range top {
				if j == i {
					continue
				}
				if theirs, ok := other.Result.FeatureScores[feature]; ok && theirs.Score >= mine-scoreEpsilon {
					leads = false
					break
				}
			}
			if leads {
				leaders[i] = true
				break
			}
		}
	}
	return len(leaders) >= 2
}

// priceSpread is (max-min)/max over the known prices of the candidates
func priceSpread(candidates []domain.RankedProduct) float64 {
	lo, hi := math.Inf(1), 0.0
	known := 0
	for _, rp := range candidates {
		p := rp.Features.Price()
		if p <= 0 {
			continue
		}
		known++
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	if known < 2 || hi == 0 {
		return 0
	}
	return (hi - lo) / hi
}

func brandOf(rp domain.RankedProduct) string {
	if v, ok := rp.Features.Feature(vocabulary.FeatureBrand); ok {
		return v.Value()
	}
	return strings.ToLower(strings.TrimSpace(rp.Product.Brand))
}

func differentBrand(a, b domain.RankedProduct) bool {
	ba, bb := brandOf(a), brandOf(b)
	return ba != "" && bb != "" && ba != bb
}

func matchedSet(rp domain.RankedProduct) map[string]bool {
	set := make(map[string]bool, len(rp.Result.MatchedFeatures))
	for _, f := range rp.Result.MatchedFeatures {
		set[f] = true
	}
	return set
}

func hasUncovered(rp domain.RankedProduct, covered map[string]bool) bool {
	for _, f := range rp.Result.MatchedFeatures {
		if !covered[f] {
			return true
		}
	}
	return false
}

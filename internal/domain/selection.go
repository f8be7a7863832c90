package domain

import "time"

// PresentationMode is how many candidates the presentation layer should surface
type PresentationMode string

const (
	ModeNone   PresentationMode = "none"
	ModeSingle PresentationMode = "single"
	ModeDuo    PresentationMode = "duo"
	ModeTrio   PresentationMode = "trio"
	ModeMulti  PresentationMode = "multi"
)

// ModeForCount derives the presentation mode from a candidate count
func ModeForCount(n int) PresentationMode {
	switch {
	case n <= 0:
		return ModeNone
	case n == 1:
		return ModeSingle
	case n == 2:
		return ModeDuo
	case n == 3:
		return ModeTrio
	default:
		return ModeMulti
	}
}

// ComparisonRow is one differentiating feature across the selected candidates
type ComparisonRow struct {
	Feature        string   `json:"feature"`
	Values         []string `json:"values"` // one per candidate, "" when unknown
	UserPreference string   `json:"userPreference,omitempty"`
	BestIndex      int      `json:"bestIndex"` // -1 when no candidate stands out
}

// ComparisonTable is the structured comparison built for a selection
type ComparisonTable struct {
	Headers        []string         `json:"headers"`
	KeyDifferences []ComparisonRow  `json:"keyDifferences"`
	Strengths      map[int][]string `json:"strengths"`
	TradeOffs      []string         `json:"tradeOffs"`
	Summary        string           `json:"summary"`
}

// SelectionMetadata carries monitoring information about a selection decision
type SelectionMetadata struct {
	SelectionID          string        `json:"selectionId"`
	CandidatesConsidered int           `json:"candidatesConsidered"`
	TopScoreGap          float64       `json:"topScoreGap"`
	PriceSpread          float64       `json:"priceSpread"`
	ShowMultipleSignals  []string      `json:"showMultipleSignals,omitempty"`
	ProcessingTime       time.Duration `json:"processingTime"`
	EngineVersion        string        `json:"engineVersion"`
	RegistryVersion      string        `json:"registryVersion"`
}

// SelectionResult is the terminal artifact of the matching pipeline
type SelectionResult struct {
	Candidates      []RankedProduct   `json:"candidates"`
	Comparison      ComparisonTable   `json:"comparison"`
	Mode            PresentationMode  `json:"presentationMode"`
	SelectionReason string            `json:"selectionReason"`
	Metadata        SelectionMetadata `json:"metadata"`
}

// RecommendRequest is a full pipeline request
type RecommendRequest struct {
	Query    string          `json:"query"`
	Category string          `json:"category,omitempty"`
	Products []ProductRecord `json:"products,omitempty"`
}

// Recommendation bundles every pipeline artifact for one request
type Recommendation struct {
	Requirement    RequirementSet      `json:"requirement"`
	Warnings       []ValidationWarning `json:"warnings,omitempty"`
	Ranked         RankedBatch         `json:"ranked"`
	Selection      SelectionResult     `json:"selection"`
	ProcessingTime time.Duration       `json:"processingTime"`
	BudgetExceeded bool                `json:"budgetExceeded"`
}

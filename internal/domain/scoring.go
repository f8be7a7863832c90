package domain

import "time"

// Scoring methods recorded on a ScoreResult
const (
	MethodTechnical      = "technical"
	MethodUsageContext   = "usage_context"
	MethodProductQuality = "product_quality"
)

// FeatureScore is the per-feature outcome of matching one requirement value
type FeatureScore struct {
	Feature      string  `json:"feature"`
	Score        float64 `json:"score"`
	UserValue    string  `json:"userValue"`
	ProductValue string  `json:"productValue"`
	Weight       float64 `json:"weight"`
}

// ScoreResult is the outcome of scoring one product against one requirement
type ScoreResult struct {
	ProductID          string                  `json:"productId"`
	Score              float64                 `json:"score"`
	Confidence         float64                 `json:"confidence"`
	Rationale          string                  `json:"rationale"`
	MatchedFeatures    []string                `json:"matchedFeatures"`
	MismatchedFeatures []string                `json:"mismatchedFeatures"`
	MissingFeatures    []string                `json:"missingFeatures"`
	FeatureScores      map[string]FeatureScore `json:"featureScores"`
	ScoringMethod      string                  `json:"scoringMethod"`
	FallbackReason     string                  `json:"fallbackReason,omitempty"`
	ProcessingTime     time.Duration           `json:"processingTime"`
}

// HybridWeights are the blend weights of a hybrid score. They sum to 1.
type HybridWeights struct {
	Profile    string  `json:"profile" yaml:"profile"`
	Technical  float64 `json:"technical" yaml:"technical"`
	Value      float64 `json:"value" yaml:"value"`
	Budget     float64 `json:"budget" yaml:"budget"`
	Excellence float64 `json:"excellence" yaml:"excellence"`
}

// Sum returns the total of all weights
func (w HybridWeights) Sum() float64 {
	return w.Technical + w.Value + w.Budget + w.Excellence
}

// HybridBreakdown explains how the headline ranking score was blended
type HybridBreakdown struct {
	TechnicalScore  float64       `json:"technicalScore"`
	ValueScore      float64       `json:"valueScore"`
	BudgetScore     float64       `json:"budgetScore"`
	ExcellenceBonus float64       `json:"excellenceBonus"`
	WeightsUsed     HybridWeights `json:"weightsUsed"`
	FinalScore      float64       `json:"finalScore"`
}

// RankedProduct pairs a product with its features and scores
type RankedProduct struct {
	Rank     int               `json:"rank"`
	Product  ProductRecord     `json:"product"`
	Features ProductFeatureSet `json:"features"`
	Result   ScoreResult       `json:"result"`
	Hybrid   HybridBreakdown   `json:"hybrid"`
}

// RankedBatch is a batch of products in total tie-break order, best first
type RankedBatch []RankedProduct

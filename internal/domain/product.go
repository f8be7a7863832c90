package domain

import "sort"

// ProductRecord is a heterogeneous product listing handed over by the catalog fetch layer
type ProductRecord struct {
	ID            string            `json:"id"` // stable identifier, e.g. ASIN
	Title         string            `json:"title"`
	Price         float64           `json:"price"` // currency unit ambiguous, normalized by the analyzer
	Features      []string          `json:"features,omitempty"`
	TechnicalInfo map[string]string `json:"technicalInfo,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Manufacturer  string            `json:"manufacturer,omitempty"`
	RatingCount   int               `json:"ratingCount,omitempty"`
	Rating        float64           `json:"rating,omitempty"`
	SalesRank     int               `json:"salesRank,omitempty"`
	URL           string            `json:"url,omitempty"`
}

// PriceFeature is the name of the price pseudo-feature on product feature sets
const PriceFeature = "price"

// ProductFeatureSet is the normalized representation of a product's
// specifications with per-feature provenance. Values are Annotated.
type ProductFeatureSet struct {
	ProductID         string                  `json:"productId"`
	Category          string                  `json:"category"`
	Features          map[string]FeatureValue `json:"features"`
	OverallConfidence float64                 `json:"overallConfidence"`
	FeaturesFound     int                     `json:"featuresFound"`
	SourcesConsulted  []FeatureSource         `json:"sourcesConsulted"`
}

// Feature returns the extracted value for a feature
func (p ProductFeatureSet) Feature(name string) (FeatureValue, bool) {
	v, ok := p.Features[name]
	return v, ok
}

// Price returns the normalized price, 0 when unknown
func (p ProductFeatureSet) Price() float64 {
	v, ok := p.Features[PriceFeature]
	if !ok {
		return 0
	}
	return ParseNumber(v.Value())
}

// FeatureNames returns the extracted feature names in sorted order
func (p ProductFeatureSet) FeatureNames() []string {
	names := make([]string, 0, len(p.Features))
	for name := range p.Features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so cached entries are never shared mutably
func (p ProductFeatureSet) Clone() ProductFeatureSet {
	out := p
	out.Features = make(map[string]FeatureValue, len(p.Features))
	for k, v := range p.Features {
		out.Features[k] = v
	}
	out.SourcesConsulted = append([]FeatureSource(nil), p.SourcesConsulted...)
	return out
}

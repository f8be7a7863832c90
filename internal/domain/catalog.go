package domain

// CatalogItem represents a product from the third-party catalog search API
type CatalogItem struct {
	ASIN          string            `json:"asin"`
	Title         string            `json:"title"`
	Price         *CatalogPrice     `json:"price,omitempty"`
	FeatureBullet []string          `json:"feature_bullets,omitempty"`
	Specs         []CatalogSpec     `json:"technical_details,omitempty"`
	ProductInfo   map[string]string `json:"product_information,omitempty"`
	Brand         string            `json:"brand,omitempty"`
	Manufacturer  string            `json:"manufacturer,omitempty"`
	Rating        float64           `json:"rating,omitempty"`
	RatingsTotal  int               `json:"ratings_total,omitempty"`
	Bestsellers   []CatalogRank     `json:"bestsellers_rank,omitempty"`
	Link          string            `json:"link,omitempty"`
}

// CatalogPrice is the catalog's price object
type CatalogPrice struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
	Raw      string  `json:"raw,omitempty"`
}

// CatalogSpec is a single name/value row of a catalog technical details table
type CatalogSpec struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CatalogRank is a sales rank entry
type CatalogRank struct {
	Category string `json:"category"`
	Rank     int    `json:"rank"`
}

// CatalogSearchResponse represents the response from the catalog search API
type CatalogSearchResponse struct {
	Products    []CatalogItem `json:"search_results"`
	TotalHits   int           `json:"total_results"`
	CurrentPage int           `json:"current_page"`
	TotalPages  int           `json:"total_pages"`
}

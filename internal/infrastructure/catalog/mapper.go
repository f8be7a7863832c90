package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/specmatch/backend/internal/domain"
)

var rawPriceRegex = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// MapToProductRecord converts a catalog item to our domain ProductRecord
func MapToProductRecord(item domain.CatalogItem) domain.ProductRecord {
	return domain.ProductRecord{
		ID:            item.ASIN,
		Title:         strings.TrimSpace(item.Title),
		Price:         priceOf(item.Price),
		Features:      nonEmpty(item.FeatureBullet),
		TechnicalInfo: technicalInfo(item),
		Brand:         strings.TrimSpace(item.Brand),
		Manufacturer:  strings.TrimSpace(item.Manufacturer),
		RatingCount:   item.RatingsTotal,
		Rating:        item.Rating,
		SalesRank:     bestSalesRank(item.Bestsellers),
		URL:           item.Link,
	}
}

// MapToProductRecords converts a page of catalog items, skipping items
// without an identifier
func MapToProductRecords(items []domain.CatalogItem) []domain.ProductRecord {
	records := make([]domain.ProductRecord, 0, len(items))
	for _, item := range items {
		if item.ASIN == "" {
			continue
		}
		records = append(records, MapToProductRecord(item))
	}
	return records
}

// priceOf prefers the numeric price and falls back to parsing the raw
// display string, e.g. "₹21,999.00"
func priceOf(p *domain.CatalogPrice) float64 {
	if p == nil {
		return 0
	}
	if p.Value > 0 {
		return p.Value
	}
	return ParseRawPrice(p.Raw)
}

// ParseRawPrice extracts the first number from a display price
func ParseRawPrice(raw string) float64 {
	m := rawPriceRegex.FindString(raw)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

// technicalInfo merges the technical details table with the product
// information map. Technical details win on duplicate keys.
func technicalInfo(item domain.CatalogItem) map[string]string {
	if len(item.Specs) == 0 && len(item.ProductInfo) == 0 {
		return nil
	}
	info := make(map[string]string, len(item.Specs)+len(item.ProductInfo))
	for k, v := range item.ProductInfo {
		if k = strings.TrimSpace(k); k != "" {
			info[k] = strings.TrimSpace(v)
		}
	}
	for _, spec := range item.Specs {
		if name := strings.TrimSpace(spec.Name); name != "" {
			info[name] = strings.TrimSpace(spec.Value)
		}
	}
	return info
}

func bestSalesRank(ranks []domain.CatalogRank) int {
	best := 0
	for _, r := range ranks {
		if r.Rank > 0 && (best == 0 || r.Rank < best) {
			best = r.Rank
		}
	}
	return best
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

package domain

import "context"

// FeatureCache stores analyzed product feature sets keyed by product and
// category. It is an optimization only: results must not depend on hits.
// Implementations copy values on Set and Get, so callers may mutate them.
type FeatureCache interface {
	Get(key string) (ProductFeatureSet, bool)
	Set(key string, value ProductFeatureSet)
	Len() int
}

// CatalogClient defines the interface for the third-party product catalog API
type CatalogClient interface {
	SearchProducts(ctx context.Context, query, category string) ([]ProductRecord, error)
	GetProduct(ctx context.Context, id string) (*ProductRecord, error)
}

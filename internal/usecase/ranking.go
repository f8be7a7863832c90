package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/vocabulary"
)

// scoreEpsilon treats float scores closer than this as tied
const scoreEpsilon = 1e-9

// Popularity heuristic blend
const (
	reviewWeight       = 0.4
	ratingWeight       = 0.4
	salesRankWeight    = 0.2
	reviewLogSaturates = 5.0 // log10(1+reviews) at which the review term saturates
	maxRating          = 5.0
)

// Price-tier heuristic scores
const (
	sweetSpotTier    = 1.0
	nearSweetTier    = 0.7
	extremePriceTier = 0.4
	unknownPriceTier = 0.5
)

// DefaultWorkers bounds concurrent product scoring when unset
const DefaultWorkers = 8

// RankConfig holds configuration for batch ranking
type RankConfig struct {
	Workers int
}

// Ranker analyzes, scores and orders a batch of products
type Ranker struct {
	registry *vocabulary.Registry
	analyzer *FeatureAnalyzer
	engine   *MatchingService
	workers  int
}

// NewRanker creates a ranker from its pipeline stages
func NewRanker(registry *vocabulary.Registry, analyzer *FeatureAnalyzer, engine *MatchingService, config RankConfig) *Ranker {
	workers := config.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Ranker{
		registry: registry,
		analyzer: analyzer,
		engine:   engine,
		workers:  workers,
	}
}

// RankBatch scores every product concurrently, then sorts the batch by the
// total tie-break order. Products are independent; only the final sort
// needs all results.
func (r *Ranker) RankBatch(
	ctx context.Context,
	req domain.RequirementSet,
	products []domain.ProductRecord,
	category string,
) (domain.RankedBatch, error) {
	start := time.Now()
	if category == "" {
		category = req.CategoryDetected
	}
	category = r.registry.Category(category).Name

	batch := make(domain.RankedBatch, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, product := range products {
		i, product := i, product
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			features := r.analyzer.Analyze(product, category)
			result, err := r.engine.Score(req, features, category)
			if err != nil {
				return eris.Wrapf(err, "score product %q", product.ID)
			}

			batch[i] = domain.RankedProduct{
				Product:  product,
				Features: features,
				Result:   result,
				Hybrid:   r.engine.Hybrid(result, features, req),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortBatch(r.registry.Category(category), batch)

	zap.L().Info("batch ranked",
		zap.String("category", category),
		zap.Int("products", len(batch)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return batch, nil
}

// rankKey holds the precomputed tie-break values of one product
type rankKey struct {
	final      float64
	confidence float64
	matched    int
	popularity float64
	priceTier  float64
	missing    int
	id         string
	title      string
	url        string
	price      float64
}

// SortBatch orders a batch best first and assigns ranks. The chain is hybrid
// score, confidence, matched features, popularity, price tier, fewer missing
// features, product ID, title, URL, then lower price.
func SortBatch(cat *vocabulary.Category, batch domain.RankedBatch) {
	keys := make([]rankKey, len(batch))
	order := make([]int, len(batch))
	for i := range batch {
		keys[i] = rankKeyOf(cat, batch[i])
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return rankLess(keys[order[a]], keys[order[b]])
	})

	sorted := make(domain.RankedBatch, len(batch))
	for pos, idx := range order {
		sorted[pos] = batch[idx]
		sorted[pos].Rank = pos + 1
	}
	copy(batch, sorted)
}

func rankKeyOf(cat *vocabulary.Category, rp domain.RankedProduct) rankKey {
	return rankKey{
		final:      rp.Hybrid.FinalScore,
		confidence: rp.Result.Confidence,
		matched:    len(rp.Result.MatchedFeatures),
		popularity: popularityScore(rp.Product),
		priceTier:  priceTierScore(cat, rp.Features.Price()),
		missing:    len(rp.Result.MissingFeatures),
		id:         rp.Product.ID,
		title:      rp.Product.Title,
		url:        rp.Product.URL,
		price:      rp.Features.Price(),
	}
}

// rankLess reports whether a ranks strictly ahead of b. Scores are compared
// on a fixed grid of scoreEpsilon so that ties stay transitive.
func rankLess(a, b rankKey) bool {
	if qa, qb := quantize(a.final), quantize(b.final); qa != qb {
		return qa > qb
	}
	if qa, qb := quantize(a.confidence), quantize(b.confidence); qa != qb {
		return qa > qb
	}
	if a.matched != b.matched {
		return a.matched > b.matched
	}
	if qa, qb := quantize(a.popularity), quantize(b.popularity); qa != qb {
		return qa > qb
	}
	if qa, qb := quantize(a.priceTier), quantize(b.priceTier); qa != qb {
		return qa > qb
	}
	if a.missing != b.missing {
		return a.missing < b.missing
	}
	if a.id != b.id {
		return a.id < b.id
	}
	if a.title != b.title {
		return a.title < b.title
	}
	if a.url != b.url {
		return a.url < b.url
	}
	return quantize(a.price) < quantize(b.price)
}

func quantize(v float64) float64 {
	return math.Round(v / scoreEpsilon)
}

// popularityScore blends log-scaled review count, average rating and
// inverse-log sales rank into [0,1]
func popularityScore(p domain.ProductRecord) float64 {
	reviews := 0.0
	if p.RatingCount > 0 {
		reviews = math.Min(1, math.Log10(1+float64(p.RatingCount))/reviewLogSaturates)
	}

	rating := 0.0
	if p.Rating > 0 {
		rating = math.Min(1, p.Rating/maxRating)
	}

	rank := 0.0
	if p.SalesRank > 0 {
		rank = 1 / (1 + math.Log10(float64(p.SalesRank)))
	}

	return reviewWeight*reviews + ratingWeight*rating + salesRankWeight*rank
}

// priceTierScore rewards the category's sweet-spot price band over both
// ultra-budget and ultra-premium products
func priceTierScore(cat *vocabulary.Category, price float64) float64 {
	if price <= 0 {
		return unknownPriceTier
	}
	b := cat.Prices
	switch {
	case price >= b.SweetSpotMin && price <= b.SweetSpotMax:
		return sweetSpotTier
	case price < b.SweetSpotMin && price >= b.UltraBudgetMax:
		return nearSweetTier
	case price > b.SweetSpotMax && price <= b.UltraPremiumMin:
		return nearSweetTier
	default:
		return extremePriceTier
	}
}

package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/specmatch/backend/internal/domain"
)

const (
	maxAttempts     = 3
	defaultPageSize = 20
	maxErrorBody    = 4096
	maxResponseBody = 10 << 20
)

// Client handles communication with the product catalog search API
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	pageSize    int
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new catalog API client
func NewClient(apiKey, baseURL string) *Client {
	// The catalog plan allows 5 requests per second with short bursts
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		pageSize:    defaultPageSize,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetRateLimit overrides the request rate, expressed per minute
func (c *Client) SetRateLimit(perMinute int) {
	if perMinute <= 0 {
		return
	}
	c.rateLimiter.SetLimit(rate.Limit(float64(perMinute) / 60))
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		zap.L().Sugar().Debugf("[catalog] "+format, args...)
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of a response body
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", "SpecMatch/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(domain.ErrCatalogAPIFailure, "transport: %v", err)
	}
	return resp, nil
}

// getJSON performs a rate-limited GET with retries on transport errors, 429
// and 5xx responses, decoding a 200 body into out
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return eris.Wrap(ctx.Err(), "catalog request cancelled")
			case <-time.After(exponentialBackoff(attempt - 1)):
			}
		}

		if err := c.rateLimiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "rate limiter error")
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return eris.Wrap(ctx.Err(), "catalog request cancelled")
			}
			if !eris.Is(err, domain.ErrCatalogAPIFailure) {
				return err
			}
			zap.L().Warn("catalog request failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := readLimitedBody(resp.Body, maxErrorBody)
			resp.Body.Close()
			c.debugLog("status %d (attempt %d): %s", resp.StatusCode, attempt, string(body))

			switch {
			case resp.StatusCode == http.StatusNotFound:
				return domain.ErrProductNotFound
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				zap.L().Warn("catalog API error, retrying",
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt),
				)
				lastErr = eris.Wrapf(domain.ErrCatalogAPIFailure, "status %d", resp.StatusCode)
				continue
			default:
				return eris.Wrapf(domain.ErrCatalogAPIFailure, "status %d, body: %s", resp.StatusCode, string(body))
			}
		}

		body, err := readLimitedBody(resp.Body, maxResponseBody)
		resp.Body.Close()
		if err != nil {
			return eris.Wrap(err, "failed to read response")
		}
		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrap(err, "failed to decode response")
		}
		return nil
	}

	zap.L().Error("catalog request failed after retries", zap.Int("attempts", maxAttempts), zap.Error(lastErr))
	return lastErr
}

// SearchProducts searches the catalog and maps the results to product records
func (c *Client) SearchProducts(ctx context.Context, query, category string) ([]domain.ProductRecord, error) {
	c.debugLog("SearchProducts query=%q category=%q", query, category)

	params := url.Values{}
	params.Add("q", query)
	params.Add("api_key", c.apiKey)
	params.Add("page_size", strconv.Itoa(c.pageSize))
	if category != "" {
		params.Add("category", category)
	}
	reqURL := c.baseURL + "/v1/search?" + params.Encode()

	var searchResp domain.CatalogSearchResponse
	if err := c.getJSON(ctx, reqURL, &searchResp); err != nil {
		return nil, err
	}

	if len(searchResp.Products) == 0 {
		zap.L().Info("no catalog products found", zap.String("query", query))
		return nil, domain.ErrProductNotFound
	}

	products := MapToProductRecords(searchResp.Products)
	zap.L().Info("catalog search complete",
		zap.String("query", query),
		zap.String("category", category),
		zap.Int("results", len(products)),
		zap.Int("total_hits", searchResp.TotalHits),
	)
	return products, nil
}

// GetProduct retrieves a single product by its catalog identifier
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.ProductRecord, error) {
	c.debugLog("GetProduct id=%q", id)

	params := url.Values{}
	params.Add("api_key", c.apiKey)
	reqURL := c.baseURL + "/v1/products/" + url.PathEscape(id) + "?" + params.Encode()

	var item domain.CatalogItem
	if err := c.getJSON(ctx, reqURL, &item); err != nil {
		return nil, err
	}

	record := MapToProductRecord(item)
	return &record, nil
}

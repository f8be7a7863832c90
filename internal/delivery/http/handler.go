package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/specmatch/backend/internal/domain"
	"github.com/specmatch/backend/internal/usecase"
)

// Version is reported by the health endpoint
const Version = "1.2.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service *usecase.RecommendationService
}

// NewHandler creates a new HTTP handler. service may be nil, in which case
// the API endpoints answer 501.
func NewHandler(service *usecase.RecommendationService) *Handler {
	return &Handler{service: service}
}

// ExtractRequest is the body of POST /api/v1/requirements/extract
type ExtractRequest struct {
	Query    string `json:"query" binding:"required"`
	Category string `json:"category"`
}

// ExtractResponse carries the parsed requirement and its validation warnings
type ExtractResponse struct {
	Requirement domain.RequirementSet      `json:"requirement"`
	Warnings    []domain.ValidationWarning `json:"warnings"`
}

// AnalyzeRequest is the body of POST /api/v1/products/analyze
type AnalyzeRequest struct {
	Product  domain.ProductRecord `json:"product"`
	Category string               `json:"category"`
}

// ScoreRequest is the body of POST /api/v1/products/score
type ScoreRequest struct {
	Requirement     domain.RequirementSet    `json:"requirement"`
	ProductFeatures domain.ProductFeatureSet `json:"product_features"`
	Category        string                   `json:"category"`
}

// ScoreResponse pairs the technical score with the hybrid blend
type ScoreResponse struct {
	Result domain.ScoreResult      `json:"result"`
	Hybrid domain.HybridBreakdown `json:"hybrid"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "specmatch-backend",
		"version": Version,
		"engine":  usecase.EngineVersion,
	}
	if h.service != nil {
		resp["registry"] = h.service.RegistryVersion()
	}
	c.JSON(http.StatusOK, resp)
}

// ExtractRequirements handles requirement extraction requests
func (h *Handler) ExtractRequirements(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	requirement, warnings := h.service.ExtractRequirements(req.Query, req.Category)
	if warnings == nil {
		warnings = []domain.ValidationWarning{}
	}
	c.JSON(http.StatusOK, ExtractResponse{Requirement: requirement, Warnings: warnings})
}

// AnalyzeProduct handles product feature analysis requests
func (h *Handler) AnalyzeProduct(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if strings.TrimSpace(req.Product.Title) == "" && len(req.Product.Features) == 0 && len(req.Product.TechnicalInfo) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product has no title, features or technical info"})
		return
	}

	c.JSON(http.StatusOK, h.service.AnalyzeProduct(req.Product, req.Category))
}

// ScoreProduct handles single product scoring requests
func (h *Handler) ScoreProduct(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, hybrid, err := h.service.ScoreProduct(req.Requirement, req.ProductFeatures, req.Category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ScoreResponse{Result: result, Hybrid: hybrid})
}

// Recommend handles full recommendation requests
func (h *Handler) Recommend(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req domain.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	rec, err := h.service.Recommend(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) ready(c *gin.Context) bool {
	if h.service == nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error": "recommendation service not configured",
		})
		return false
	}
	return true
}

// respondBindError maps a body decoding failure. Malformed feature values
// are contract violations and get 422; everything else is a bad request.
func respondBindError(c *gin.Context, err error) {
	var cv *domain.ContractViolationError
	if errors.As(err, &cv) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cv.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var cv *domain.ContractViolationError
	switch {
	case errors.As(err, &cv):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": cv.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "query or products are required"})
	case errors.Is(err, domain.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no products found"})
	case errors.Is(err, domain.ErrCatalogNotConfigured):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "catalog not configured, send products with the request"})
	case errors.Is(err, domain.ErrCatalogAPIFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog API temporarily unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		zap.L().Error("request failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

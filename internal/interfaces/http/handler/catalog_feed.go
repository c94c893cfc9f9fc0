package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/keyvault/backend/internal/application/catalog"
	"github.com/keyvault/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// FeedSearcher looks up products in the legacy CSV catalog feed
type FeedSearcher interface {
	Search(ctx context.Context, query string) ([]catalogapp.FeedProduct, error)
	Invalidate()
}

// SearchProductsRequest is the body of POST /search-products. The body is
// optional; an empty query lists the head of the feed.
type SearchProductsRequest struct {
	Query string `json:"query"`
}

// SearchProductsResponse wraps the matched feed rows
type SearchProductsResponse struct {
	Products []catalogapp.FeedProduct `json:"products"`
}

// CatalogFeedHandler serves the legacy search-products function
type CatalogFeedHandler struct {
	BaseHandler
	feed FeedSearcher
}

// NewCatalogFeedHandler creates a new CatalogFeedHandler
func NewCatalogFeedHandler(feed FeedSearcher) *CatalogFeedHandler {
	return &CatalogFeedHandler{feed: feed}
}

// SearchProducts handles POST /search-products
// @Summary      Search the catalog feed
// @Description  Returns up to 50 rows of the legacy CSV catalog feed matching the query
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body SearchProductsRequest false "Optional query"
// @Success      200 {object} SearchProductsResponse
// @Failure      400 {object} FunctionError
// @Failure      500 {object} FunctionError
// @Router       /search-products [post]
func (h *CatalogFeedHandler) SearchProducts(c *gin.Context) {
	var req SearchProductsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondFunctionError(c, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	products, err := h.feed.Search(c.Request.Context(), req.Query)
	if err != nil {
		logger.L(c.Request.Context()).Error("Catalog feed search failed", zap.Error(err))
		respondFunctionError(c, http.StatusInternalServerError, "Failed to load products")
		return
	}
	c.JSON(http.StatusOK, SearchProductsResponse{Products: products})
}

// Refresh handles POST /api/v1/admin/catalog-feed/refresh. The next search
// re-reads the feed source.
// @Summary      Refresh the catalog feed
// @Description  Drops the cached feed so the next search reloads it
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Router       /api/v1/admin/catalog-feed/refresh [post]
func (h *CatalogFeedHandler) Refresh(c *gin.Context) {
	h.feed.Invalidate()
	logger.L(c.Request.Context()).Info("Catalog feed cache invalidated")
	h.Success(c, gin.H{"invalidated": true})
}

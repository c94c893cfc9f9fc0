package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	searchapp "github.com/keyvault/backend/internal/application/search"
	"github.com/keyvault/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SmartSearcher runs the ranked catalog search
type SmartSearcher interface {
	Search(ctx context.Context, raw string) (*searchapp.Response, error)
}

// SearchRequest is the body of POST /smart-search
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchHandler serves the smart-search function
type SearchHandler struct {
	searcher SmartSearcher
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searcher SmartSearcher) *SearchHandler {
	return &SearchHandler{searcher: searcher}
}

// SmartSearch handles POST /smart-search
// @Summary      Smart catalog search
// @Description  Ranks products, sellers and categories against the query and suggests a correction when nothing matches well
// @Tags         storefront
// @Accept       json
// @Produce      json
// @Param        request body SearchRequest true "Search query"
// @Success      200 {object} searchapp.Response
// @Failure      400 {object} FunctionError
// @Failure      500 {object} FunctionError
// @Router       /smart-search [post]
func (h *SearchHandler) SmartSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFunctionError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.searcher.Search(c.Request.Context(), req.Query)
	if err != nil {
		logger.L(c.Request.Context()).Error("Smart search failed", zap.Error(err))
		respondFunctionError(c, http.StatusInternalServerError, "Search failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

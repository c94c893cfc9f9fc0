package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	searchapp "github.com/keyvault/backend/internal/application/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupSearchRouter(s SmartSearcher) *gin.Engine {
	router := gin.New()
	router.POST("/smart-search", NewSearchHandler(s).SmartSearch)
	return router
}

func TestSearchHandler_SmartSearch(t *testing.T) {
	searcher := new(mockSearcher)
	corrected := "minecraft"
	resp := searchapp.EmptyResponse()
	resp.CorrectedQuery = &corrected
	resp.Suggestions = []string{"minecraft java"}
	searcher.On("Search", mock.Anything, "minecarft").Return(resp, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/smart-search", strings.NewReader(`{"query":"minecarft"}`))
	req.Header.Set("Content-Type", "application/json")
	setupSearchRouter(searcher).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "minecraft", body["correctedQuery"])
	assert.Equal(t, []any{}, body["products"])
	assert.Equal(t, []any{"minecraft java"}, body["suggestions"])
	searcher.AssertExpectations(t)
}

func TestSearchHandler_EmptyResultShape(t *testing.T) {
	searcher := new(mockSearcher)
	searcher.On("Search", mock.Anything, "a").Return(searchapp.EmptyResponse(), nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/smart-search", strings.NewReader(`{"query":"a"}`))
	setupSearchRouter(searcher).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"products":[],"sellers":[],"categories":[],"suggestions":[],"recommendations":[],"correctedQuery":null}`,
		w.Body.String())
}

func TestSearchHandler_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		searcher := new(mockSearcher)
		w := httptest.NewRecorder()
		setupSearchRouter(searcher).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/smart-search", strings.NewReader(`{`)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		searcher.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("backend failure", func(t *testing.T) {
		searcher := new(mockSearcher)
		searcher.On("Search", mock.Anything, "steam keys").Return(nil, errors.New("connection refused"))

		w := httptest.NewRecorder()
		setupSearchRouter(searcher).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/smart-search", strings.NewReader(`{"query":"steam keys"}`)))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Search failed"}`, w.Body.String())
	})
}

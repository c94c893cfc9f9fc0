package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/keyvault/backend/internal/domain/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatAnswer(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: "https://llm.example/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "https://llm.example/v1", c.cfg.BaseURL)
	assert.Equal(t, defaultModel, c.cfg.Model)
}

func TestClient_Suggest(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(chatAnswer("```json\n{\"correctedQuery\":\"steam\",\"suggestions\":[\"steam wallet\",\"gift card\"]}\n```")))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL, SampleProducts: 1})
	require.NoError(t, err)

	s, err := c.Suggest(context.Background(), "stem", search.SuggestContext{
		Categories:   []string{"Gift Card", "Games"},
		ProductNames: []string{"Steam Wallet R$50", "Xbox Game Pass"},
	})
	require.NoError(t, err)
	assert.Equal(t, "steam", s.CorrectedQuery)
	assert.Equal(t, []string{"steam wallet", "gift card"}, s.Suggestions)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "stem", got.Messages[1].Content)
	assert.Contains(t, got.Messages[0].Content, "Gift Card, Games")
	assert.Contains(t, got.Messages[0].Content, "Steam Wallet R$50")
	assert.NotContains(t, got.Messages[0].Content, "Xbox Game Pass")
}

func TestClient_Suggest_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}},
		{"prose answer", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(chatAnswer("I think you meant steam")))
		}},
		{"slow", func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(chatAnswer(`{"correctedQuery":"x"}`)))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
			require.NoError(t, err)

			s, err := c.Suggest(context.Background(), "stem", search.SuggestContext{})
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestParseSuggestion(t *testing.T) {
	s, err := ParseSuggestion(`  {"correctedQuery":"netflix","suggestions":[]}  `)
	require.NoError(t, err)
	assert.Equal(t, "netflix", s.CorrectedQuery)

	_, err = ParseSuggestion("```\n```")
	assert.ErrorIs(t, err, ErrEmptyAnswer)

	_, err = ParseSuggestion(`{"correctedQuery":`)
	assert.Error(t, err)
}

package search

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/keyvault/backend/internal/domain/catalog"
	domain "github.com/keyvault/backend/internal/domain/search"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockProductReader struct{ mock.Mock }

func (m *mockProductReader) FindActive(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	products, _ := args.Get(0).([]catalog.Product)
	return products, args.Error(1)
}

func (m *mockProductReader) DistinctCategories(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]string)
	return categories, args.Error(1)
}

type mockSellerReader struct{ mock.Mock }

func (m *mockSellerReader) FindListable(ctx context.Context, limit int) ([]catalog.Seller, error) {
	args := m.Called(ctx, limit)
	sellers, _ := args.Get(0).([]catalog.Seller)
	return sellers, args.Error(1)
}

func (m *mockSellerReader) FindAwaitingApproval(ctx context.Context, limit int) ([]catalog.Seller, error) {
	args := m.Called(ctx, limit)
	sellers, _ := args.Get(0).([]catalog.Seller)
	return sellers, args.Error(1)
}

type suggesterFunc func(ctx context.Context, query string, sc domain.SuggestContext) (*domain.Suggestion, error)

func (f suggesterFunc) Suggest(ctx context.Context, query string, sc domain.SuggestContext) (*domain.Suggestion, error) {
	return f(ctx, query, sc)
}

func testProduct(name, category string, likes int) catalog.Product {
	return catalog.Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Category:   category,
		Likes:      likes,
		Status:     catalog.ProductStatusActive,
	}
}

type fixture struct {
	products *mockProductReader
	sellers  *mockSellerReader
	catalog  []catalog.Product
}

func newFixture() *fixture {
	f := &fixture{
		products: &mockProductReader{},
		sellers:  &mockSellerReader{},
		catalog: []catalog.Product{
			testProduct("Steam Wallet R$50", "Gift Card", 10),
			testProduct("Xbox Game Pass", "Assinaturas", 500),
			testProduct("Steam Deck Case", "Acessórios", 3),
			testProduct("PSN Card", "Gift Card", 40),
		},
	}
	f.products.On("FindActive", mock.Anything, 100).Return(f.catalog, nil)
	f.products.On("DistinctCategories", mock.Anything).Return([]string{"Gift Card", "Assinaturas", "Acessórios"}, nil)
	f.sellers.On("FindListable", mock.Anything, 50).Return([]catalog.Seller{
		{BaseEntity: shared.NewBaseEntity(), DisplayName: "Steam Keys BR", AverageRating: 4.5, TotalSales: 100, Approved: true},
		{BaseEntity: shared.NewBaseEntity(), DisplayName: "Loja do Zé", AverageRating: 5, TotalSales: 900, Approved: true},
	}, nil)
	return f
}

func (f *fixture) service(s domain.Suggester, timeout time.Duration) *Service {
	return NewService(ServiceConfig{
		Products:       f.products,
		Sellers:        f.sellers,
		Suggester:      s,
		Weights:        domain.DefaultWeights(),
		Limits:         domain.DefaultLimits(),
		SuggestTimeout: timeout,
		Logger:         zap.NewNop(),
	})
}

func TestSearch_ShortQueryMakesNoCalls(t *testing.T) {
	f := &fixture{products: &mockProductReader{}, sellers: &mockSellerReader{}}
	called := false
	svc := f.service(suggesterFunc(func(context.Context, string, domain.SuggestContext) (*domain.Suggestion, error) {
		called = true
		return nil, nil
	}), 0)

	for _, q := range []string{"", " ", "a", "  é  "} {
		resp, err := svc.Search(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, EmptyResponse(), resp, "query %q", q)
	}

	assert.False(t, called)
	f.products.AssertNotCalled(t, "FindActive", mock.Anything, mock.Anything)
	f.products.AssertNotCalled(t, "DistinctCategories", mock.Anything)
	f.sellers.AssertNotCalled(t, "FindListable", mock.Anything, mock.Anything)
}

func TestSearch_RanksWithoutSuggester(t *testing.T) {
	f := newFixture()
	svc := f.service(nil, 0)

	resp, err := svc.Search(context.Background(), "steam")
	require.NoError(t, err)

	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Steam Wallet R$50", resp.Products[0].Name)
	assert.GreaterOrEqual(t, resp.Products[0].Score, 150.0)
	for _, p := range resp.Products {
		assert.NotEqual(t, "Xbox Game Pass", p.Name)
	}

	require.Len(t, resp.Sellers, 1)
	assert.Equal(t, "Steam Keys BR", resp.Sellers[0].DisplayName)

	assert.Nil(t, resp.CorrectedQuery)
	assert.Equal(t, []string{}, resp.Suggestions)

	hit := map[string]bool{}
	for _, p := range resp.Products {
		hit[p.ID.String()] = true
	}
	for _, r := range resp.Recommendations {
		assert.False(t, hit[r.ID.String()], "recommendation %s duplicates a hit", r.Name)
	}
	assert.Equal(t, "Xbox Game Pass", resp.Recommendations[0].Name)

	f.products.AssertExpectations(t)
	f.sellers.AssertExpectations(t)
}

func TestSearch_AppliesCorrection(t *testing.T) {
	f := newFixture()
	var got domain.SuggestContext
	svc := f.service(suggesterFunc(func(_ context.Context, q string, sc domain.SuggestContext) (*domain.Suggestion, error) {
		got = sc
		assert.Equal(t, "stema", q)
		return &domain.Suggestion{CorrectedQuery: "steam", Suggestions: []string{"steam wallet", " ", "gift card"}}, nil
	}), time.Second)

	resp, err := svc.Search(context.Background(), "stema")
	require.NoError(t, err)

	require.NotNil(t, resp.CorrectedQuery)
	assert.Equal(t, "steam", *resp.CorrectedQuery)
	assert.Equal(t, []string{"steam wallet", "gift card"}, resp.Suggestions)
	require.NotEmpty(t, resp.Products)
	assert.Equal(t, "Steam Wallet R$50", resp.Products[0].Name)

	assert.Equal(t, []string{"Gift Card", "Assinaturas", "Acessórios"}, got.Categories)
	assert.Len(t, got.ProductNames, len(f.catalog))
}

func TestSearch_SameCorrectionIsNotReported(t *testing.T) {
	f := newFixture()
	svc := f.service(suggesterFunc(func(context.Context, string, domain.SuggestContext) (*domain.Suggestion, error) {
		return &domain.Suggestion{CorrectedQuery: "  STEAM "}, nil
	}), time.Second)

	resp, err := svc.Search(context.Background(), "steam")
	require.NoError(t, err)
	assert.Nil(t, resp.CorrectedQuery)
}

func TestSearch_SuggesterFailuresFallBack(t *testing.T) {
	tests := []struct {
		name      string
		suggester domain.Suggester
	}{
		{"error", suggesterFunc(func(context.Context, string, domain.SuggestContext) (*domain.Suggestion, error) {
			return nil, errors.New("upstream 503")
		})},
		{"nil answer", suggesterFunc(func(context.Context, string, domain.SuggestContext) (*domain.Suggestion, error) {
			return nil, nil
		})},
		{"panic", suggesterFunc(func(context.Context, string, domain.SuggestContext) (*domain.Suggestion, error) {
			panic("bad json")
		})},
		{"ignores context and hangs", suggesterFunc(func(context.Context, string, domain.SuggestContext) (*domain.Suggestion, error) {
			time.Sleep(time.Second)
			return &domain.Suggestion{CorrectedQuery: "xbox"}, nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			svc := f.service(tt.suggester, 20*time.Millisecond)

			start := time.Now()
			resp, err := svc.Search(context.Background(), "steam")
			require.NoError(t, err)
			assert.Less(t, time.Since(start), 500*time.Millisecond)

			assert.Nil(t, resp.CorrectedQuery)
			assert.Equal(t, []string{}, resp.Suggestions)
			require.NotEmpty(t, resp.Products)
			assert.Equal(t, "Steam Wallet R$50", resp.Products[0].Name)
		})
	}
}

func TestSearch_FetchErrorFails(t *testing.T) {
	products := &mockProductReader{}
	sellers := &mockSellerReader{}
	products.On("FindActive", mock.Anything, 100).Return(nil, errors.New("db down"))
	products.On("DistinctCategories", mock.Anything).Return([]string{}, nil).Maybe()
	sellers.On("FindListable", mock.Anything, 50).Return([]catalog.Seller{}, nil).Maybe()

	svc := NewService(ServiceConfig{Products: products, Sellers: sellers, Limits: domain.DefaultLimits(), Weights: domain.DefaultWeights()})
	_, err := svc.Search(context.Background(), "steam")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch products")
}

func TestSearch_NoMatchesEncodesEmptyArrays(t *testing.T) {
	products := &mockProductReader{}
	sellers := &mockSellerReader{}
	products.On("FindActive", mock.Anything, 100).Return([]catalog.Product{}, nil)
	products.On("DistinctCategories", mock.Anything).Return(nil, nil)
	sellers.On("FindListable", mock.Anything, 50).Return(nil, nil)

	svc := NewService(ServiceConfig{Products: products, Sellers: sellers, Limits: domain.DefaultLimits(), Weights: domain.DefaultWeights()})
	resp, err := svc.Search(context.Background(), "nothing here")
	require.NoError(t, err)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"products":[],"sellers":[],"categories":[],"suggestions":[],"recommendations":[],"correctedQuery":null}`, string(body))
}

func TestWeightsFromConfig(t *testing.T) {
	w := WeightsFromConfig(map[string]float64{
		"full_name":   120,
		"like_factor": 0,
		"bogus":       9,
	})
	def := domain.DefaultWeights()
	assert.Equal(t, 120.0, w.FullName)
	assert.Equal(t, def.LikeFactor, w.LikeFactor)
	assert.Equal(t, def.SalesFactor, w.SalesFactor)
}

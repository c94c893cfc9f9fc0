package search

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/catalog"
	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(name, description, category string, likes int) catalog.Product {
	return catalog.Product{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Description: description,
		Category:    category,
		Likes:       likes,
		Status:      catalog.ProductStatusActive,
	}
}

func seller(name, bio string, rating float64, sales int) catalog.Seller {
	return catalog.Seller{
		BaseEntity:    shared.NewBaseEntity(),
		DisplayName:   name,
		Bio:           bio,
		AverageRating: rating,
		TotalSales:    sales,
		Approved:      true,
	}
}

func defaultRanker() *Ranker {
	return NewRanker(DefaultWeights(), DefaultLimits())
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single token", "steam", []string{"steam"}},
		{"drops one-rune tokens", "a steam x card", []string{"steam", "card"}},
		{"collapses whitespace", "  gift \t card\n", []string{"gift", "card"}},
		{"multibyte runes count once", "é ção", []string{"ção"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestIsSearchable(t *testing.T) {
	assert.False(t, IsSearchable(""))
	assert.False(t, IsSearchable("   "))
	assert.False(t, IsSearchable(" a "))
	assert.True(t, IsSearchable("ab"))
	assert.True(t, IsSearchable("  çã "))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "steam wallet", Normalize("  Steam WALLET "))
	assert.Equal(t, "ação", Normalize("AÇÃO"))
}

func TestRanker_ScoreProduct(t *testing.T) {
	r := defaultRanker()

	t.Run("full name and token match", func(t *testing.T) {
		p := product("Steam Wallet R$50", "", "Gift Card", 0)
		assert.GreaterOrEqual(t, r.ScoreProduct("steam", p), 150.0)
	})

	t.Run("no textual overlap scores zero even with likes", func(t *testing.T) {
		p := product("Xbox Game Pass", "Ultimate 3 months", "Subscription", 40)
		assert.Equal(t, 0.0, r.ScoreProduct("steam", p))
	})

	t.Run("adds popularity bonus on match", func(t *testing.T) {
		p := product("Steam Key", "", "", 10)
		// full 100 + token name 50 + 10 * 0.5
		assert.Equal(t, 155.0, r.ScoreProduct("steam", p))
	})

	t.Run("description and category tokens", func(t *testing.T) {
		p := product("Wallet Code", "redeem on steam", "Steam Cards", 0)
		// description 20 + category 30
		assert.Equal(t, 50.0, r.ScoreProduct("steam", p))
	})

	t.Run("case insensitive", func(t *testing.T) {
		p := product("STEAM wallet", "", "", 0)
		assert.Equal(t, r.ScoreProduct("steam", p), r.ScoreProduct("SteAm", p))
	})

	t.Run("each token scores independently", func(t *testing.T) {
		p := product("Steam Gift Card", "", "", 0)
		// full "steam card" is not a substring; two token name matches
		assert.Equal(t, 100.0, r.ScoreProduct("steam card", p))
	})
}

func TestRanker_ScoreSeller(t *testing.T) {
	r := defaultRanker()

	t.Run("name match with reputation", func(t *testing.T) {
		s := seller("Steam Store BR", "", 4, 100)
		// full 100 + token 50 + 4*5 + 100*0.1
		assert.InDelta(t, 180.0, r.ScoreSeller("steam", s), 1e-9)
	})

	t.Run("bio match", func(t *testing.T) {
		s := seller("KeyHouse", "we sell steam keys", 0, 0)
		assert.Equal(t, 20.0, r.ScoreSeller("steam", s))
	})

	t.Run("no match scores zero regardless of rating", func(t *testing.T) {
		s := seller("KeyHouse", "xbox only", 5, 1000)
		assert.Equal(t, 0.0, r.ScoreSeller("steam", s))
	})
}

func TestRanker_Rank(t *testing.T) {
	r := defaultRanker()

	steam := product("Steam Wallet R$50", "", "Gift Card", 3)
	xbox := product("Xbox Game Pass", "", "Subscription", 50)
	steamKey := product("Steam Key Random", "", "Games", 1)
	psn := product("PSN Card", "", "Gift Card", 20)

	snap := Snapshot{
		Products:   []catalog.Product{xbox, steamKey, steam, psn},
		Sellers:    []catalog.Seller{seller("Steam Master", "", 5, 10), seller("Xbox Guy", "", 5, 10)},
		Categories: []string{"Games", "Gift Card", "Steam Cards", "Subscription"},
	}

	res := r.Rank("steam", snap)

	t.Run("excludes zero scores", func(t *testing.T) {
		for _, sp := range res.Products {
			assert.Greater(t, sp.Score, 0.0)
			assert.NotEqual(t, xbox.ID, sp.Product.ID)
		}
		require.Len(t, res.Products, 2)
	})

	t.Run("sorted by score", func(t *testing.T) {
		assert.Equal(t, steam.ID, res.Products[0].Product.ID)
		assert.Equal(t, steamKey.ID, res.Products[1].Product.ID)
	})

	t.Run("sellers", func(t *testing.T) {
		require.Len(t, res.Sellers, 1)
		assert.Equal(t, "Steam Master", res.Sellers[0].Seller.DisplayName)
	})

	t.Run("categories", func(t *testing.T) {
		assert.Equal(t, []string{"Steam Cards"}, res.Categories)
	})

	t.Run("recommendations exclude ranked products and follow likes", func(t *testing.T) {
		require.Len(t, res.Recommendations, 2)
		assert.Equal(t, xbox.ID, res.Recommendations[0].ID)
		assert.Equal(t, psn.ID, res.Recommendations[1].ID)
	})
}

func TestRanker_Rank_Limits(t *testing.T) {
	r := defaultRanker()

	var products []catalog.Product
	for i := 0; i < 30; i++ {
		products = append(products, product(fmt.Sprintf("Steam Key %d", i), "", "", i))
	}
	var sellers []catalog.Seller
	for i := 0; i < 12; i++ {
		sellers = append(sellers, seller(fmt.Sprintf("Steam Seller %d", i), "", float64(i%5), i))
	}
	var categories []string
	for i := 0; i < 9; i++ {
		categories = append(categories, fmt.Sprintf("Steam %d", i))
	}

	res := r.Rank("steam", Snapshot{Products: products, Sellers: sellers, Categories: categories})

	assert.Len(t, res.Products, 10)
	assert.Len(t, res.Sellers, 5)
	assert.Len(t, res.Categories, 5)
	assert.Len(t, res.Recommendations, 4)

	for i := 1; i < len(res.Products); i++ {
		assert.GreaterOrEqual(t, res.Products[i-1].Score, res.Products[i].Score)
	}
	for i := 1; i < len(res.Sellers); i++ {
		assert.GreaterOrEqual(t, res.Sellers[i-1].Score, res.Sellers[i].Score)
	}

	ranked := make(map[uuid.UUID]bool)
	for _, sp := range res.Products {
		ranked[sp.Product.ID] = true
	}
	seen := make(map[uuid.UUID]bool)
	for _, p := range res.Recommendations {
		assert.False(t, ranked[p.ID], "recommendation repeats a ranked product")
		assert.False(t, seen[p.ID], "duplicate recommendation")
		seen[p.ID] = true
	}
}

func TestRanker_Rank_StableTies(t *testing.T) {
	r := defaultRanker()
	a := product("Steam A", "", "", 0)
	b := product("Steam B", "", "", 0)
	c := product("Steam C", "", "", 0)

	res := r.Rank("steam", Snapshot{Products: []catalog.Product{b, a, c}})
	require.Len(t, res.Products, 3)
	assert.Equal(t, b.ID, res.Products[0].Product.ID)
	assert.Equal(t, a.ID, res.Products[1].Product.ID)
	assert.Equal(t, c.ID, res.Products[2].Product.ID)
}

func TestRanker_Rank_DuplicateSnapshotRows(t *testing.T) {
	r := defaultRanker()
	p := product("Random Key", "", "", 5)

	res := r.Rank("steam", Snapshot{Products: []catalog.Product{p, p}})
	assert.Empty(t, res.Products)
	assert.Len(t, res.Recommendations, 1)
}

func TestRanker_CustomWeights(t *testing.T) {
	w := DefaultWeights()
	w.FullName = 0
	r := NewRanker(w, DefaultLimits())

	assert.Equal(t, 50.0, r.ScoreProduct("steam", product("Steam", "", "", 0)))
}

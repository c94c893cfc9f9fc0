package search

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/catalog"
)

// Snapshot is the catalog data one search is ranked against.
// Recommendations are drawn from the same snapshot as the ranked products.
type Snapshot struct {
	Products   []catalog.Product
	Sellers    []catalog.Seller
	Categories []string
}

// ScoredProduct is a product with its relevance score
type ScoredProduct struct {
	Product catalog.Product
	Score   float64
}

// ScoredSeller is a seller with its relevance score
type ScoredSeller struct {
	Seller catalog.Seller
	Score  float64
}

// Result is the ranked outcome of a search
type Result struct {
	Products        []ScoredProduct
	Sellers         []ScoredSeller
	Categories      []string
	Recommendations []catalog.Product
}

// query holds a normalized query and its tokens
type query struct {
	full   string
	tokens []string
}

// Ranker scores a snapshot against a query
type Ranker struct {
	weights Weights
	limits  Limits
}

// NewRanker creates a ranker with the given weights and limits
func NewRanker(weights Weights, limits Limits) *Ranker {
	return &Ranker{weights: weights, limits: limits}
}

// Rank scores every product and seller in the snapshot, keeps the positive
// ones in descending score order (ties keep snapshot order) and fills the
// category and recommendation lists.
func (r *Ranker) Rank(rawQuery string, snap Snapshot) Result {
	n := newNormalizer()
	q := query{full: n.lower(strings.TrimSpace(rawQuery))}
	q.tokens = Tokenize(q.full)

	products := make([]ScoredProduct, 0)
	for _, p := range snap.Products {
		if score := r.scoreProduct(n, q, &p); score > 0 {
			products = append(products, ScoredProduct{Product: p, Score: score})
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Score > products[j].Score
	})
	products = truncate(products, r.limits.Products)

	sellers := make([]ScoredSeller, 0)
	for _, s := range snap.Sellers {
		if score := r.scoreSeller(n, q, &s); score > 0 {
			sellers = append(sellers, ScoredSeller{Seller: s, Score: score})
		}
	}
	sort.SliceStable(sellers, func(i, j int) bool {
		return sellers[i].Score > sellers[j].Score
	})
	sellers = truncate(sellers, r.limits.Sellers)

	return Result{
		Products:        products,
		Sellers:         sellers,
		Categories:      r.matchCategories(n, q, snap.Categories),
		Recommendations: r.recommend(snap.Products, products),
	}
}

// ScoreProduct scores a single product against a raw query
func (r *Ranker) ScoreProduct(rawQuery string, p catalog.Product) float64 {
	n := newNormalizer()
	full := n.lower(strings.TrimSpace(rawQuery))
	return r.scoreProduct(n, query{full: full, tokens: Tokenize(full)}, &p)
}

// ScoreSeller scores a single seller against a raw query
func (r *Ranker) ScoreSeller(rawQuery string, s catalog.Seller) float64 {
	n := newNormalizer()
	full := n.lower(strings.TrimSpace(rawQuery))
	return r.scoreSeller(n, query{full: full, tokens: Tokenize(full)}, &s)
}

func (r *Ranker) scoreProduct(n *normalizer, q query, p *catalog.Product) float64 {
	name := n.lower(p.Name)
	description := n.lower(p.Description)
	category := n.lower(p.Category)

	score := 0.0
	if q.full != "" && strings.Contains(name, q.full) {
		score += r.weights.FullName
	}
	for _, tok := range q.tokens {
		if strings.Contains(name, tok) {
			score += r.weights.TokenName
		}
		if strings.Contains(description, tok) {
			score += r.weights.TokenDescription
		}
		if category != "" && strings.Contains(category, tok) {
			score += r.weights.TokenCategory
		}
	}
	// popularity only breaks ties between textual matches
	if score > 0 {
		score += float64(p.Likes) * r.weights.LikeFactor
	}
	return score
}

func (r *Ranker) scoreSeller(n *normalizer, q query, s *catalog.Seller) float64 {
	name := n.lower(s.DisplayName)
	bio := n.lower(s.Bio)

	score := 0.0
	if q.full != "" && strings.Contains(name, q.full) {
		score += r.weights.SellerFullName
	}
	for _, tok := range q.tokens {
		if strings.Contains(name, tok) {
			score += r.weights.SellerTokenName
		}
		if strings.Contains(bio, tok) {
			score += r.weights.SellerTokenBio
		}
	}
	if score > 0 {
		score += s.AverageRating*r.weights.RatingFactor + float64(s.TotalSales)*r.weights.SalesFactor
	}
	return score
}

func (r *Ranker) matchCategories(n *normalizer, q query, categories []string) []string {
	matched := make([]string, 0)
	for _, c := range categories {
		if len(matched) >= r.limits.Categories {
			break
		}
		lc := n.lower(c)
		if lc == "" {
			continue
		}
		if q.full != "" && strings.Contains(lc, q.full) {
			matched = append(matched, c)
			continue
		}
		for _, tok := range q.tokens {
			if strings.Contains(lc, tok) {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}

// recommend picks the most-liked snapshot products not already in the ranked list
func (r *Ranker) recommend(all []catalog.Product, ranked []ScoredProduct) []catalog.Product {
	seen := make(map[uuid.UUID]struct{}, len(ranked))
	for _, sp := range ranked {
		seen[sp.Product.ID] = struct{}{}
	}

	candidates := make([]catalog.Product, 0, len(all))
	for _, p := range all {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		candidates = append(candidates, p)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Likes > candidates[j].Likes
	})
	return truncate(candidates, r.limits.Recommendations)
}

func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

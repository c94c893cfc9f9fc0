package search

import (
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/catalog"
	domain "github.com/keyvault/backend/internal/domain/search"
	"github.com/shopspring/decimal"
)

// ProductResult is a product as returned by smart search
type ProductResult struct {
	ID          uuid.UUID       `json:"id" swaggertype:"string" format:"uuid"`
	SellerID    uuid.UUID       `json:"seller_id" swaggertype:"string" format:"uuid"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    *string         `json:"category"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"49.90"`
	ImageURL    string          `json:"image_url"`
	Likes       int             `json:"likes"`
	Score       float64         `json:"score,omitempty"`
}

// SellerResult is a seller as returned by smart search
type SellerResult struct {
	ID            uuid.UUID `json:"id" swaggertype:"string" format:"uuid"`
	UserID        uuid.UUID `json:"user_id" swaggertype:"string" format:"uuid"`
	DisplayName   string    `json:"display_name"`
	Bio           string    `json:"bio"`
	AvatarURL     string    `json:"avatar_url"`
	AverageRating float64   `json:"average_rating"`
	TotalSales    int       `json:"total_sales"`
	IsOnline      bool      `json:"is_online"`
	Score         float64   `json:"score"`
}

// Response is the smart search response body. Slices are never nil so they
// encode as [] rather than null.
type Response struct {
	Products        []ProductResult `json:"products"`
	Sellers         []SellerResult  `json:"sellers"`
	Categories      []string        `json:"categories"`
	Suggestions     []string        `json:"suggestions"`
	Recommendations []ProductResult `json:"recommendations"`
	CorrectedQuery  *string         `json:"correctedQuery"`
}

// EmptyResponse is the result of a query too short to search
func EmptyResponse() *Response {
	return &Response{
		Products:        []ProductResult{},
		Sellers:         []SellerResult{},
		Categories:      []string{},
		Suggestions:     []string{},
		Recommendations: []ProductResult{},
	}
}

// NewResponse converts a ranked result into the response body
func NewResponse(result domain.Result, res domain.Resolution) *Response {
	resp := EmptyResponse()
	for _, sp := range result.Products {
		resp.Products = append(resp.Products, toProductResult(sp.Product, sp.Score))
	}
	for _, ss := range result.Sellers {
		resp.Sellers = append(resp.Sellers, SellerResult{
			ID:            ss.Seller.ID,
			UserID:        ss.Seller.UserID,
			DisplayName:   ss.Seller.DisplayName,
			Bio:           ss.Seller.Bio,
			AvatarURL:     ss.Seller.AvatarURL,
			AverageRating: ss.Seller.AverageRating,
			TotalSales:    ss.Seller.TotalSales,
			IsOnline:      ss.Seller.Online,
			Score:         ss.Score,
		})
	}
	resp.Categories = append(resp.Categories, result.Categories...)
	for _, p := range result.Recommendations {
		resp.Recommendations = append(resp.Recommendations, toProductResult(p, 0))
	}
	if res.Suggestions != nil {
		resp.Suggestions = res.Suggestions
	}
	resp.CorrectedQuery = res.Corrected
	return resp
}

func toProductResult(p catalog.Product, score float64) ProductResult {
	var category *string
	if p.Category != "" {
		c := p.Category
		category = &c
	}
	return ProductResult{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Category:    category,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Likes:       p.Likes,
		Score:       score,
	}
}

package search

// Weights are the additive scoring weights used by Rank.
// The defaults are tuned for the storefront and can be overridden from configuration.
type Weights struct {
	// Product scoring
	FullName         float64
	TokenName        float64
	TokenDescription float64
	TokenCategory    float64
	LikeFactor       float64

	// Seller scoring
	SellerFullName  float64
	SellerTokenName float64
	SellerTokenBio  float64
	RatingFactor    float64
	SalesFactor     float64
}

// DefaultWeights returns the storefront's scoring weights
func DefaultWeights() Weights {
	return Weights{
		FullName:         100,
		TokenName:        50,
		TokenDescription: 20,
		TokenCategory:    30,
		LikeFactor:       0.5,
		SellerFullName:   100,
		SellerTokenName:  50,
		SellerTokenBio:   20,
		RatingFactor:     5,
		SalesFactor:      0.1,
	}
}

// Limits caps the size of each result list
type Limits struct {
	Products        int
	Sellers         int
	Categories      int
	Recommendations int
	Suggestions     int
}

// DefaultLimits returns the storefront's result caps
func DefaultLimits() Limits {
	return Limits{
		Products:        10,
		Sellers:         5,
		Categories:      5,
		Recommendations: 4,
		Suggestions:     5,
	}
}

// MinQueryLength is the shortest trimmed query, in runes, that triggers a search
const MinQueryLength = 2

package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Default fetch limits for catalog snapshots
const (
	DefaultActiveProductLimit  = 100
	DefaultApprovedSellerLimit = 50
)

// ProductReader reads products for search snapshots
type ProductReader interface {
	// FindActive returns up to limit active products, newest first
	FindActive(ctx context.Context, limit int) ([]Product, error)

	// DistinctCategories returns the distinct non-empty categories of active products
	DistinctCategories(ctx context.Context) ([]string, error)
}

// ProductFinder loads a single product by id.
// Returns shared.ErrNotFound if the product does not exist.
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
}

// SellerReader reads seller profiles for search snapshots
type SellerReader interface {
	// FindListable returns up to limit approved, non-suspended sellers
	FindListable(ctx context.Context, limit int) ([]Seller, error)

	// FindAwaitingApproval returns sellers an admin still has to review
	FindAwaitingApproval(ctx context.Context, limit int) ([]Seller, error)
}

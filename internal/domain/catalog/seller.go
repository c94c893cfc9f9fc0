package catalog

import (
	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/shared"
)

// Seller is the public profile of a user who sells on the marketplace
type Seller struct {
	shared.BaseEntity
	UserID        uuid.UUID
	DisplayName   string
	Bio           string
	AvatarURL     string
	AverageRating float64
	TotalSales    int
	Approved      bool
	Suspended     bool
	Online        bool
}

// IsListable reports whether the seller may appear in search results
func (s *Seller) IsListable() bool {
	return s.Approved && !s.Suspended
}

// AwaitingApproval reports whether an admin still has to review the seller
func (s *Seller) AwaitingApproval() bool {
	return !s.Approved && !s.Suspended
}

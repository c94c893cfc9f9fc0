package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewBaseEntity(t *testing.T) {
	a := NewBaseEntity()
	b := NewBaseEntity()

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
}

func TestNewAggregateRoot_Events(t *testing.T) {
	root := NewAggregateRoot()
	assert.NotEqual(t, uuid.Nil, root.ID)
	assert.Empty(t, root.GetDomainEvents())

	root.AddDomainEvent(nil)
	assert.Len(t, root.GetDomainEvents(), 1)
	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}

package cache

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/keyvault/backend/internal/domain/notification"
	"github.com/redis/go-redis/v9"
)

const dismissalKeyPrefix = "keyvault:admin:dismissed:"

// RedisDismissalStore keeps each admin's dismissed notification ids in a Redis set
type RedisDismissalStore struct {
	client *redis.Client
}

// NewRedisDismissalStore creates a new RedisDismissalStore
func NewRedisDismissalStore(client *redis.Client) *RedisDismissalStore {
	return &RedisDismissalStore{client: client}
}

// List returns the ids the admin dismissed
func (s *RedisDismissalStore) List(ctx context.Context, adminID uuid.UUID) ([]string, error) {
	ids, err := s.client.SMembers(ctx, dismissalKey(adminID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list dismissals: %w", err)
	}
	return ids, nil
}

// Dismiss adds ids to the admin's set
func (s *RedisDismissalStore) Dismiss(ctx context.Context, adminID uuid.UUID, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, dismissalKey(adminID), members...).Err(); err != nil {
		return fmt.Errorf("failed to store dismissals: %w", err)
	}
	return nil
}

func dismissalKey(adminID uuid.UUID) string {
	return dismissalKeyPrefix + adminID.String()
}

var _ notification.DismissalStore = (*RedisDismissalStore)(nil)

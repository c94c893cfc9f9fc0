package cache

import (
	"testing"

	"github.com/keyvault/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestStoreFactory_Disabled(t *testing.T) {
	f, err := NewStoreFactory(config.RedisConfig{Enabled: false}, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	defer f.Close()

	assert.Nil(t, f.Client())
	store := f.IdempotencyStore()
	defer store.Close()
	assert.IsType(t, &InMemoryIdempotencyStore{}, store)
}

func TestStoreFactory_UnreachableRedis(t *testing.T) {
	cfg := config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1}

	t.Run("falls back to in-memory", func(t *testing.T) {
		f, err := NewStoreFactory(cfg)
		require.NoError(t, err)
		assert.Nil(t, f.Client())
		assert.IsType(t, &InMemoryIdempotencyStore{}, f.IdempotencyStore())
	})

	t.Run("fails when fallback is disabled", func(t *testing.T) {
		_, err := NewStoreFactory(cfg, WithInMemoryFallback(false))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis required")
	})
}

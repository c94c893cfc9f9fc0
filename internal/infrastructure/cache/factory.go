package cache

import (
	"fmt"

	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/keyvault/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// StoreFactory creates Redis-backed stores, falling back to in-memory
// implementations when Redis is disabled or unreachable.
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// StoreFactoryOption is a functional option for configuring the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis is tolerated.
// Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a factory and, when Redis is enabled, connects to it
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) (*StoreFactory, error) {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}

	if !cfg.Enabled {
		f.logger.Info("Redis disabled, using in-memory stores")
		return f, nil
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
			"Webhook deduplication will not be shared across instances.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return f, nil
	}

	f.logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()))
	f.client = client
	return f, nil
}

// Client returns the Redis client, or nil when running without Redis
func (f *StoreFactory) Client() *redis.Client {
	return f.client
}

// IdempotencyStore returns the store for webhook deduplication
func (f *StoreFactory) IdempotencyStore() shared.IdempotencyStore {
	if f.client != nil {
		return NewRedisIdempotencyStore(f.client, DefaultIdempotencyKeyPrefix)
	}
	return NewInMemoryIdempotencyStore()
}

// Close closes the Redis connection if one was opened
func (f *StoreFactory) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/keyvault/backend/internal/domain/shared"
	"github.com/keyvault/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (failingStore) IsProcessed(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}
func (failingStore) Close() error { return nil }

func TestIdempotentHandler_Handle(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := newTestHandler("order.status_changed")
	h := NewIdempotentHandler(inner, store, zap.NewNop())
	event := newTestEvent("order.status_changed")

	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), newTestEvent("order.status_changed")))

	assert.Len(t, inner.getHandled(), 2)
	assert.Equal(t, IdempotencyStats{EventsProcessed: 2, EventsDuplicate: 1}, h.Stats())
	assert.Equal(t, []string{"order.status_changed"}, h.EventTypes())
}

func TestIdempotentHandler_HandlerError(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := newTestHandler()
	inner.err = errors.New("downstream failure")
	h := NewIdempotentHandler(inner, store, nil)

	err := h.Handle(context.Background(), newTestEvent("x"))
	require.Error(t, err)
	assert.Equal(t, int64(1), h.Stats().EventsFailed)
}

func TestIdempotentHandler_StoreErrorStillProcesses(t *testing.T) {
	inner := newTestHandler()
	h := NewIdempotentHandler(inner, failingStore{}, zap.NewNop())

	event := newTestEvent("x")
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Len(t, inner.getHandled(), 2)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := newTestHandler()
	h := NewIdempotentHandlerWithConfig(inner, failingStore{}, zap.NewNop(), shared.IdempotencyConfig{Enabled: false})

	event := newTestEvent("x")
	require.NoError(t, h.Handle(context.Background(), event))
	require.NoError(t, h.Handle(context.Background(), event))
	assert.Len(t, inner.getHandled(), 2)
}

func TestIdempotentHandler_ConcurrentDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	inner := newTestHandler()
	h := NewIdempotentHandler(inner, store, zap.NewNop())
	event := newTestEvent("x")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Handle(context.Background(), event)
		}()
	}
	wg.Wait()

	assert.Len(t, inner.getHandled(), 1)
	assert.Equal(t, int64(19), h.Stats().EventsDuplicate)
}

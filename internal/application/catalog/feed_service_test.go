package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keyvault/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const feedCSV = "id,name,description,category,price\n" +
	"1,Steam Wallet R$50,Crédito para a loja Steam,Gift Card,50.00\n" +
	"2,PlayStation Plus 12 meses,Assinatura anual,Assinatura,199.90\n" +
	"3,Chave Elden Ring,Jogo para STEAM,Jogos,149.90\n"

type countingSource struct {
	inner storage.FeedSource
	opens atomic.Int32
	err   error
}

func (s *countingSource) Open(ctx context.Context) (io.ReadCloser, error) {
	s.opens.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.inner.Open(ctx)
}

func (s *countingSource) Name() string { return "counting" }

func newTestFeedService(t *testing.T, src FeedSource, ttl time.Duration, now func() time.Time) *FeedService {
	t.Helper()
	return NewFeedService(FeedServiceConfig{
		Source:   src,
		CacheTTL: ttl,
		Logger:   zaptest.NewLogger(t),
		Now:      now,
	})
}

func TestFeedService_Search(t *testing.T) {
	svc := newTestFeedService(t, storage.NewStaticFeedSource([]byte(feedCSV)), time.Minute, nil)
	ctx := context.Background()

	t.Run("empty query lists everything", func(t *testing.T) {
		products, err := svc.Search(ctx, "  ")
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("matches are case-insensitive across name and description", func(t *testing.T) {
		products, err := svc.Search(ctx, "steam")
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, "1", products[0].ID)
		assert.Equal(t, "3", products[1].ID)
	})

	t.Run("matches category", func(t *testing.T) {
		products, err := svc.Search(ctx, "ASSINATURA")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "2", products[0].ID)
	})

	t.Run("no match is an empty list", func(t *testing.T) {
		products, err := svc.Search(ctx, "nintendo")
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})
}

func TestFeedService_CapsRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("name,price\n")
	for i := range 80 {
		fmt.Fprintf(&b, "Gift Card %d,10\n", i)
	}
	svc := newTestFeedService(t, storage.NewStaticFeedSource([]byte(b.String())), 0, nil)

	products, err := svc.Search(context.Background(), "gift")
	require.NoError(t, err)
	assert.Len(t, products, DefaultFeedRowLimit)
	assert.Equal(t, "Gift Card 0", products[0].Name)
}

func TestFeedService_Cache(t *testing.T) {
	src := &countingSource{inner: storage.NewStaticFeedSource([]byte(feedCSV))}
	var mu sync.Mutex
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	svc := newTestFeedService(t, src, time.Minute, now)
	ctx := context.Background()

	_, err := svc.Search(ctx, "steam")
	require.NoError(t, err)
	_, err = svc.Search(ctx, "plus")
	require.NoError(t, err)
	assert.EqualValues(t, 1, src.opens.Load())

	mu.Lock()
	clock = clock.Add(2 * time.Minute)
	mu.Unlock()
	_, err = svc.Search(ctx, "steam")
	require.NoError(t, err)
	assert.EqualValues(t, 2, src.opens.Load())

	svc.Invalidate()
	_, err = svc.Search(ctx, "steam")
	require.NoError(t, err)
	assert.EqualValues(t, 3, src.opens.Load())
}

func TestFeedService_SourceError(t *testing.T) {
	src := &countingSource{err: storage.ErrFeedNotFound}
	svc := newTestFeedService(t, src, time.Minute, nil)

	_, err := svc.Search(context.Background(), "steam")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrFeedNotFound))
	assert.Contains(t, err.Error(), "counting")
}

func TestFeedService_Refresh(t *testing.T) {
	src := &countingSource{inner: storage.NewStaticFeedSource([]byte(feedCSV))}
	svc := newTestFeedService(t, src, time.Hour, nil)
	ctx := context.Background()

	require.NoError(t, svc.Refresh(ctx))
	products, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 3)
	assert.Equal(t, int32(1), src.opens.Load(), "search is served from the refreshed cache")

	src.err = errors.New("bucket unavailable")
	require.Error(t, svc.Refresh(ctx))

	products, err = svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, products, 3, "a failed refresh keeps the previous rows")
}

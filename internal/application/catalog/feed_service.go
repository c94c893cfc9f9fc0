package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/keyvault/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultFeedRowLimit caps how many feed products one request returns
const DefaultFeedRowLimit = 50

// FeedSource yields the raw catalog CSV
type FeedSource interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

// FeedServiceConfig holds the dependencies of FeedService
type FeedServiceConfig struct {
	Source   FeedSource
	CacheTTL time.Duration
	MaxRows  int
	Logger   *zap.Logger
	// Now is overridden in tests
	Now func() time.Time
}

// FeedService serves the legacy search-products feed from a short-lived cache
type FeedService struct {
	source   FeedSource
	cacheTTL time.Duration
	maxRows  int
	logger   *zap.Logger
	now      func() time.Time
	metrics  *telemetry.MarketMetrics

	group     singleflight.Group
	mu        sync.RWMutex
	cached    []FeedProduct
	fetchedAt time.Time
}

// NewFeedService creates a FeedService. A zero CacheTTL disables caching.
func NewFeedService(cfg FeedServiceConfig) *FeedService {
	s := &FeedService{
		source:   cfg.Source,
		cacheTTL: cfg.CacheTTL,
		maxRows:  cfg.MaxRows,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if s.maxRows <= 0 {
		s.maxRows = DefaultFeedRowLimit
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SetMarketMetrics sets the business metrics collector
func (s *FeedService) SetMarketMetrics(m *telemetry.MarketMetrics) {
	s.metrics = m
}

// Search returns feed products whose name, category, platform or
// description contain query, at most MaxRows. An empty query lists the feed.
func (s *FeedService) Search(ctx context.Context, query string) ([]FeedProduct, error) {
	s.metrics.RecordFeedRequest(ctx, s.source.Name())

	products, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	caser := cases.Lower(language.Und)
	q := caser.String(strings.TrimSpace(query))

	out := make([]FeedProduct, 0, min(len(products), s.maxRows))
	for _, p := range products {
		if len(out) >= s.maxRows {
			break
		}
		if q == "" || matches(caser, p, q) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Invalidate drops the cached feed
func (s *FeedService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}

// Refresh reloads the feed from the source. The previous cache is kept when
// the reload fails.
func (s *FeedService) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("feed", func() (any, error) {
		return s.fetch(ctx)
	})
	return err
}

func (s *FeedService) load(ctx context.Context) ([]FeedProduct, error) {
	s.mu.RLock()
	cached, fetchedAt := s.cached, s.fetchedAt
	s.mu.RUnlock()
	if cached != nil && s.cacheTTL > 0 && s.now().Sub(fetchedAt) < s.cacheTTL {
		return cached, nil
	}

	v, err, _ := s.group.Do("feed", func() (any, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]FeedProduct), nil
}

func (s *FeedService) fetch(ctx context.Context) ([]FeedProduct, error) {
	ctx, span := telemetry.StartSpan(ctx, "catalog_feed", "fetch",
		telemetry.WithAttribute("feed.source", s.source.Name()))
	defer span.End()

	start := s.now()
	body, err := s.source.Open(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("open catalog feed %s: %w", s.source.Name(), err)
	}
	defer body.Close()

	products, err := ParseFeed(body)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.mu.Lock()
	s.cached = products
	s.fetchedAt = s.now()
	s.mu.Unlock()

	s.logger.Info("Catalog feed refreshed",
		zap.String("source", s.source.Name()),
		zap.Int("rows", len(products)),
		zap.Duration("took", s.now().Sub(start)))
	return products, nil
}

func matches(caser cases.Caser, p FeedProduct, q string) bool {
	for _, field := range []string{p.Name, p.Category, p.Platform, p.Description} {
		if field != "" && strings.Contains(caser.String(field), q) {
			return true
		}
	}
	return false
}

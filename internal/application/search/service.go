package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keyvault/backend/internal/domain/catalog"
	domain "github.com/keyvault/backend/internal/domain/search"
	"github.com/keyvault/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultSuggestTimeout bounds the assistive model call
const DefaultSuggestTimeout = 3 * time.Second

// ServiceConfig holds the dependencies of Service
type ServiceConfig struct {
	Products       catalog.ProductReader
	Sellers        catalog.SellerReader
	Suggester      domain.Suggester
	Weights        domain.Weights
	Limits         domain.Limits
	ProductFetch   int
	SellerFetch    int
	SuggestTimeout time.Duration
	// SampleProducts is how many product names are handed to the suggester
	SampleProducts int
	Logger         *zap.Logger
}

// Service runs smart searches against a fresh catalog snapshot
type Service struct {
	products       catalog.ProductReader
	sellers        catalog.SellerReader
	suggester      domain.Suggester
	ranker         *domain.Ranker
	limits         domain.Limits
	productFetch   int
	sellerFetch    int
	suggestTimeout time.Duration
	sampleProducts int
	logger         *zap.Logger
	metrics        *telemetry.MarketMetrics
}

// NewService creates a search Service. A nil Suggester disables query correction.
func NewService(cfg ServiceConfig) *Service {
	s := &Service{
		products:       cfg.Products,
		sellers:        cfg.Sellers,
		suggester:      cfg.Suggester,
		ranker:         domain.NewRanker(cfg.Weights, cfg.Limits),
		limits:         cfg.Limits,
		productFetch:   cfg.ProductFetch,
		sellerFetch:    cfg.SellerFetch,
		suggestTimeout: cfg.SuggestTimeout,
		sampleProducts: cfg.SampleProducts,
		logger:         cfg.Logger,
	}
	if s.suggester == nil {
		s.suggester = domain.NoopSuggester{}
	}
	if s.productFetch <= 0 {
		s.productFetch = catalog.DefaultActiveProductLimit
	}
	if s.sellerFetch <= 0 {
		s.sellerFetch = catalog.DefaultApprovedSellerLimit
	}
	if s.suggestTimeout <= 0 {
		s.suggestTimeout = DefaultSuggestTimeout
	}
	if s.sampleProducts <= 0 {
		s.sampleProducts = 30
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// SetMarketMetrics sets the business metrics collector
func (s *Service) SetMarketMetrics(m *telemetry.MarketMetrics) {
	s.metrics = m
}

// Search ranks the catalog against raw. Queries shorter than the minimum
// length return an empty response without touching any backend.
func (s *Service) Search(ctx context.Context, raw string) (*Response, error) {
	if !domain.IsSearchable(raw) {
		return EmptyResponse(), nil
	}

	ctx, span := telemetry.StartSpan(ctx, "search", "smart_search")
	defer span.End()
	start := time.Now()

	snap, err := s.fetchSnapshot(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	resolution := domain.Resolve(raw, s.suggest(ctx, raw, snap), s.limits.Suggestions)
	result := s.ranker.Rank(resolution.Query, snap)

	telemetry.SetAttributes(span,
		"search.products", len(result.Products),
		"search.sellers", len(result.Sellers),
		"search.corrected", resolution.Corrected != nil,
	)
	s.metrics.RecordSearch(ctx, resolution.Corrected != nil, time.Since(start))

	return NewResponse(result, resolution), nil
}

// fetchSnapshot loads products, sellers and categories concurrently
func (s *Service) fetchSnapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		products, err := s.products.FindActive(gctx, s.productFetch)
		if err != nil {
			return fmt.Errorf("fetch products: %w", err)
		}
		snap.Products = products
		return nil
	})
	g.Go(func() error {
		sellers, err := s.sellers.FindListable(gctx, s.sellerFetch)
		if err != nil {
			return fmt.Errorf("fetch sellers: %w", err)
		}
		snap.Sellers = sellers
		return nil
	})
	g.Go(func() error {
		categories, err := s.products.DistinctCategories(gctx)
		if err != nil {
			return fmt.Errorf("fetch categories: %w", err)
		}
		snap.Categories = categories
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.Snapshot{}, err
	}
	return snap, nil
}

// suggest asks the suggester under a hard timeout. Any failure, including a
// panic inside the suggester, yields nil.
func (s *Service) suggest(ctx context.Context, query string, snap domain.Snapshot) *domain.Suggestion {
	ctx, cancel := context.WithTimeout(ctx, s.suggestTimeout)
	defer cancel()

	names := make([]string, 0, min(len(snap.Products), s.sampleProducts))
	for i := 0; i < len(snap.Products) && i < s.sampleProducts; i++ {
		names = append(names, snap.Products[i].Name)
	}

	type answer struct {
		s   *domain.Suggestion
		err error
	}
	done := make(chan answer, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- answer{err: fmt.Errorf("suggester panic: %v", r)}
			}
		}()
		res, err := s.suggester.Suggest(ctx, query, domain.SuggestContext{
			Categories:   snap.Categories,
			ProductNames: names,
		})
		done <- answer{s: res, err: err}
	}()

	select {
	case a := <-done:
		if a.err != nil {
			s.logSuggestFailure(ctx, a.err)
			return nil
		}
		return a.s
	case <-ctx.Done():
		s.logSuggestFailure(ctx, ctx.Err())
		return nil
	}
}

func (s *Service) logSuggestFailure(ctx context.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("Query assistant timed out", zap.Duration("timeout", s.suggestTimeout))
	} else {
		s.logger.Warn("Query assistant failed, using original query", zap.Error(err))
	}
	s.metrics.RecordAssistFailure(ctx)
}

// WeightsFromConfig overlays configured weights onto the defaults.
// Unknown keys and non-positive values are ignored.
func WeightsFromConfig(overrides map[string]float64) domain.Weights {
	w := domain.DefaultWeights()
	fields := map[string]*float64{
		"full_name":         &w.FullName,
		"token_name":        &w.TokenName,
		"token_description": &w.TokenDescription,
		"token_category":    &w.TokenCategory,
		"like_factor":       &w.LikeFactor,
		"seller_full_name":  &w.SellerFullName,
		"seller_token_name": &w.SellerTokenName,
		"seller_token_bio":  &w.SellerTokenBio,
		"rating_factor":     &w.RatingFactor,
		"sales_factor":      &w.SalesFactor,
	}
	for key, value := range overrides {
		if ptr, ok := fields[key]; ok && value > 0 {
			*ptr = value
		}
	}
	return w
}

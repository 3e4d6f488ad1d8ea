package catalog

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"concierge/internal/metrics"
)

// Fetcher retrieves products for a single keyword.
type Fetcher interface {
	FetchKeyword(ctx context.Context, keyword string) ([]Product, error)
}

// Service runs multi-keyword searches with per-keyword failure isolation.
type Service struct {
	fetcher Fetcher
	cache   Cache
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewService creates a Service. cache may be nil to disable caching.
func NewService(fetcher Fetcher, cache Cache, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New("")
	}
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		logger:  logger.Named("catalog"),
		metrics: m,
	}
}

// Search fetches up to MaxKeywords keywords concurrently and merges the results in
// keyword order, keeping the first product seen for each SKU. A keyword that fails
// contributes nothing; it never fails the whole search.
func (s *Service) Search(ctx context.Context, keywords []string) []Product {
	keywords = normalizeKeywords(keywords)
	if len(keywords) == 0 {
		return []Product{}
	}

	results := make([][]Product, len(keywords))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxKeywords)
	for i, kw := range keywords {
		g.Go(func() error {
			results[i] = s.searchKeyword(gctx, kw)
			return nil
		})
	}
	// per-keyword failures are logged in searchKeyword and never surface here
	_ = g.Wait()

	seen := make(map[string]bool)
	merged := []Product{}
	for _, list := range results {
		for _, p := range list {
			key := p.Key()
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, p)
		}
	}
	return merged
}

func (s *Service) searchKeyword(ctx context.Context, keyword string) []Product {
	if s.cache != nil {
		products, ok, err := s.cache.Get(ctx, keyword)
		switch {
		case err != nil:
			s.metrics.CatalogCache.WithLabelValues("error").Inc()
			s.logger.Warn("catalog cache read failed", zap.String("keyword", keyword), zap.Error(err))
		case ok:
			s.metrics.CatalogCache.WithLabelValues("hit").Inc()
			return products
		default:
			s.metrics.CatalogCache.WithLabelValues("miss").Inc()
		}
	}

	products, err := s.fetcher.FetchKeyword(ctx, keyword)
	s.metrics.CatalogRequests.WithLabelValues(metrics.Status(err)).Inc()
	if err != nil {
		s.logger.Warn("catalog keyword fetch failed", zap.String("keyword", keyword), zap.Error(err))
		return nil
	}
	s.logger.Debug("catalog keyword fetched", zap.String("keyword", keyword), zap.Int("count", len(products)))

	if s.cache != nil && len(products) > 0 {
		if err := s.cache.Set(ctx, keyword, products); err != nil {
			s.logger.Warn("catalog cache write failed", zap.String("keyword", keyword), zap.Error(err))
		}
	}
	return products
}

// normalizeKeywords trims, drops blanks and case-insensitive repeats, and keeps the first MaxKeywords.
func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, MaxKeywords)
	seen := make(map[string]bool)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		key := strings.ToLower(kw)
		if kw == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

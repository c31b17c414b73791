package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/creamcroissant/ovenboard/internal/cache"
	"github.com/creamcroissant/ovenboard/internal/deal"
)

// DealsFetcher is the storefront capability the deal service consumes.
type DealsFetcher interface {
	ActiveDeals(ctx context.Context) ([]deal.Deal, error)
}

// DealService supplies the active deals snapshot used for line item
// classification.
type DealService interface {
	// Snapshot returns the current active deals. A fetch failure degrades
	// to an empty snapshot (heuristic-only classification) instead of
	// failing the caller.
	Snapshot(ctx context.Context) []deal.Deal
	// Invalidate drops the cached snapshot.
	Invalidate(ctx context.Context)
}

const dealsSnapshotKey = "snapshot"

type dealService struct {
	fetcher DealsFetcher
	cache   cache.Store
	logger  *slog.Logger
	ttl     time.Duration
}

// NewDealService constructs a deal snapshot service.
func NewDealService(fetcher DealsFetcher, cacheStore cache.Store, logger *slog.Logger, ttl time.Duration) DealService {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	if cacheStore == nil {
		cacheStore = cache.NewStore(cache.Options{DefaultTTL: ttl})
	}
	return &dealService{
		fetcher: fetcher,
		cache:   cacheStore.Namespace("deals"),
		logger:  logger,
		ttl:     ttl,
	}
}

func (s *dealService) Snapshot(ctx context.Context) []deal.Deal {
	var cached []deal.Deal
	if found, err := s.cache.GetJSON(ctx, dealsSnapshotKey, &cached); err == nil && found {
		return cached
	}

	if s.fetcher == nil {
		return nil
	}
	deals, err := s.fetcher.ActiveDeals(ctx)
	if err != nil {
		// Notifications about deals still work but items classify by
		// heuristic until the storefront recovers.
		s.logger.Warn("deals fetch failed, classification degrades to heuristic", "error", err)
		return nil
	}
	if err := s.cache.SetJSON(ctx, dealsSnapshotKey, deals, s.ttl); err != nil {
		s.logger.Warn("deals snapshot cache write failed", "error", err)
	}
	return deals
}

func (s *dealService) Invalidate(ctx context.Context) {
	s.cache.Delete(ctx, dealsSnapshotKey)
}

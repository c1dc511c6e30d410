package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gifts-buyer/internal/domain"
	"gifts-buyer/internal/domain/model"
	"gifts-buyer/internal/domain/ports/adapter"
	"gifts-buyer/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ CatalogUseCase = (*CatalogCache)(nil)

type CatalogUseCase interface {
	// Snapshot returns the catalog, fetching it when the cached copy is empty or stale.
	Snapshot(ctx context.Context) ([]model.CatalogItem, error)
	// Refresh always fetches and replaces the cached copy.
	Refresh(ctx context.Context) ([]model.CatalogItem, error)
	// Known reports whether id was present in the most recent snapshot.
	Known(id int64) bool
}

// CatalogCache keeps the latest catalog snapshot for gift id validation and /l listings.
type CatalogCache struct {
	fetcher adapter.CatalogFetcher
	maxAge  time.Duration
	now     func() time.Time

	mu        sync.RWMutex
	items     []model.CatalogItem
	ids       map[int64]struct{}
	fetchedAt time.Time

	log *zerolog.Logger
}

func NewCatalogCache(fetcher adapter.CatalogFetcher, maxAge time.Duration, logger *zerolog.Logger) *CatalogCache {
	l := logger.With().Str("component", "CatalogCache").Logger()
	return &CatalogCache{fetcher: fetcher, maxAge: maxAge, now: time.Now, ids: map[int64]struct{}{}, log: &l}
}

func (c *CatalogCache) Snapshot(ctx context.Context) ([]model.CatalogItem, error) {
	c.mu.RLock()
	fresh := len(c.items) > 0 && c.now().Sub(c.fetchedAt) <= c.maxAge
	items := c.items
	c.mu.RUnlock()
	if fresh {
		metrics.IncCatalogRequest("hit")
		return append([]model.CatalogItem(nil), items...), nil
	}
	return c.Refresh(ctx)
}

func (c *CatalogCache) Refresh(ctx context.Context) ([]model.CatalogItem, error) {
	items, err := c.fetcher.FetchCatalog(ctx)
	if err != nil {
		metrics.IncCatalogRequest("failed")
		c.log.Warn().Err(err).Msg("catalog fetch failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	metrics.IncCatalogRequest("fetched")
	c.Store(items)
	return append([]model.CatalogItem(nil), items...), nil
}

// Store installs items as the current snapshot. The buyer loop calls it with every snapshot it processes.
func (c *CatalogCache) Store(items []model.CatalogItem) {
	ids := make(map[int64]struct{}, len(items))
	for _, it := range items {
		ids[it.ID] = struct{}{}
	}
	c.mu.Lock()
	c.items = append([]model.CatalogItem(nil), items...)
	c.ids = ids
	c.fetchedAt = c.now()
	c.mu.Unlock()
}

func (c *CatalogCache) Known(id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ids[id]
	return ok
}

// SortForListing orders available gifts first, then sold-out ones, each group by price and id.
func SortForListing(items []model.CatalogItem) []model.CatalogItem {
	out := append([]model.CatalogItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.SoldOut != b.SoldOut {
			return !a.SoldOut
		}
		if a.Price != b.Price {
			return a.Price < b.Price
		}
		return a.ID < b.ID
	})
	return out
}

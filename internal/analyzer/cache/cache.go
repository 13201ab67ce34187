package cache

import (
	"fmt"
	"time"

	"golang-stock-analyzer/internal/analyzer/dto"

	gocache "github.com/patrickmn/go-cache"
)

// Category names one class of cached stage result. Categories expire
// independently; a miss in one never invalidates another.
type Category string

const (
	CategoryPrice       Category = "price"
	CategoryFundamental Category = "fundamentals"
	CategoryNews        Category = "news"
)

// ResultCache stores intermediate pipeline results keyed by
// (subject, category), each category with its own TTL. Reads are
// cheap and never trigger a fetch; writes are last-writer-wins.
type ResultCache struct {
	store *gocache.Cache
	ttls  map[Category]time.Duration
}

// New creates a ResultCache with per-category TTLs.
func New(priceTTL, fundamentalTTL, newsTTL time.Duration) *ResultCache {
	return &ResultCache{
		store: gocache.New(gocache.NoExpiration, 10*time.Minute),
		ttls: map[Category]time.Duration{
			CategoryPrice:       priceTTL,
			CategoryFundamental: fundamentalTTL,
			CategoryNews:        newsTTL,
		},
	}
}

// Get returns the cached value for (subject, category) if it is still
// fresh. Stale entries are simply not returned; the next Put
// overwrites them.
func (c *ResultCache) Get(subject dto.SubjectKey, category Category) (interface{}, bool) {
	return c.store.Get(key(subject, category))
}

// Put stores value under (subject, category) with the category's TTL.
func (c *ResultCache) Put(subject dto.SubjectKey, category Category, value interface{}) {
	ttl, ok := c.ttls[category]
	if !ok {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key(subject, category), value, ttl)
}

// ItemCount returns the number of stored entries, expired included.
func (c *ResultCache) ItemCount() int {
	return c.store.ItemCount()
}

func key(subject dto.SubjectKey, category Category) string {
	return fmt.Sprintf("%s:%s", subject.String(), category)
}

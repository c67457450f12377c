package signer

import (
	"context"
	"sync"
	"time"

	"paw-guardian/internal/ports/media"
)

// Cache memoriza las URLs resueltas por URI. Cada entrada vive el 90% del
// TTL de la firma: nadie recibe una URL a punto de vencer.
type Cache struct {
	inner media.Resolver
	keep  time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	url       string
	refreshAt time.Time
}

func NewCache(inner media.Resolver, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		inner:   inner,
		keep:    ttl - ttl/10,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Cache) PlaybackURL(ctx context.Context, storageURI string) (string, error) {
	c.mu.Lock()
	if e, ok := c.entries[storageURI]; ok && c.now().Before(e.refreshAt) {
		c.mu.Unlock()
		return e.url, nil
	}
	c.mu.Unlock()

	// Resolución fuera del lock; si dos corridas compiten, firmar dos
	// veces es barato y la última gana.
	url, err := c.inner.PlaybackURL(ctx, storageURI)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[storageURI] = cacheEntry{url: url, refreshAt: c.now().Add(c.keep)}
	c.mu.Unlock()

	return url, nil
}

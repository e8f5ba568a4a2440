// Package channels resolves public channel profiles.
package channels

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vidtweet/backend/internal/models"
)

// ErrProviderUnavailable indicates the channel provider is not configured.
var ErrProviderUnavailable = errors.New("channel provider unavailable")

// Provider resolves a channel profile for a username as seen by a viewer.
type Provider interface {
	Lookup(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
}

type cacheEntry struct {
	profile models.ChannelProfile
	expires time.Time
}

// CachingProvider wraps another Provider with a TTL-based in-memory cache.
// Entries are keyed per viewer because IsSubscribed depends on who asks.
type CachingProvider struct {
	base Provider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingProvider returns a Provider that caches lookups for the provided TTL.
func NewCachingProvider(base Provider, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Lookup returns a cached profile when available, otherwise it delegates
// to the underlying provider and stores the result.
func (c *CachingProvider) Lookup(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	if c == nil || c.base == nil {
		return models.ChannelProfile{}, ErrProviderUnavailable
	}

	key := username + "\x00" + viewerID
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.profile, nil
	}

	profile, err := c.base.Lookup(ctx, username, viewerID)
	if err != nil {
		return models.ChannelProfile{}, err
	}

	c.mu.Lock()
	c.items[key] = cacheEntry{profile: profile, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return profile, nil
}

package config

import (
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	// Fact rows are immutable for the serving lifetime, so resolved
	// name-to-code pairs can live for a long while.
	resolverCacheDuration   = 24 * time.Hour
	resolverCleanupInterval = 48 * time.Hour
)

// NewResolverCache builds the TTL cache the dimension resolver uses for
// (level, name) -> code lookups.
func NewResolverCache() *cache.Cache {
	return cache.New(resolverCacheDuration, resolverCleanupInterval)
}

// Package cache keeps list results keyed by entity and filter, and drops them
// when a mutation invalidates the entity.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/yukikurage/studio-manager-api/internal/metrics"
)

// Entity names used as cache key prefixes.
const (
	EntityProfiles       = "profiles"
	EntityClients        = "clients"
	EntityProjects       = "projects"
	EntityProjectMembers = "project_members"
	EntityTasks          = "tasks"
	EntityTimeEntries    = "time_entries"
	EntityDashboard      = "dashboard"
)

// QueryCache stores query results under entity + filter keys. Every entity
// carries a generation counter; a result computed while the generation moved
// on is discarded instead of stored.
type QueryCache struct {
	store *gocache.Cache

	mu          sync.Mutex
	generations map[string]uint64
}

func New(ttl time.Duration) *QueryCache {
	return &QueryCache{
		store:       gocache.New(ttl, 2*ttl),
		generations: make(map[string]uint64),
	}
}

// Key renders the cache key for entity and filter.
func Key(entity string, filter any) string {
	if filter == nil {
		return entity + ":"
	}
	b, err := json.Marshal(filter)
	if err != nil {
		return entity + ":" + fmt.Sprintf("%#v", filter)
	}
	return entity + ":" + string(b)
}

func (c *QueryCache) Generation(entity string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[entity]
}

func (c *QueryCache) Get(entity string, filter any) (any, bool) {
	return c.store.Get(Key(entity, filter))
}

// Set stores value only when generation still matches the entity's current
// generation. It reports whether the value was stored.
func (c *QueryCache) Set(entity string, filter any, generation uint64, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[entity] != generation {
		return false
	}
	c.store.SetDefault(Key(entity, filter), value)
	return true
}

// Invalidate bumps the generation of each entity and removes its keys. It is
// a no-op on a nil cache.
func (c *QueryCache) Invalidate(entities ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entity := range entities {
		c.generations[entity]++
		prefix := entity + ":"
		for key := range c.store.Items() {
			if strings.HasPrefix(key, prefix) {
				c.store.Delete(key)
			}
		}
	}
}

// Fetch returns the cached value for entity and filter or loads it. A nil
// cache always loads.
func Fetch[T any](c *QueryCache, entity string, filter any, load func() (T, error)) (T, error) {
	if c == nil {
		return load()
	}

	if v, ok := c.Get(entity, filter); ok {
		if typed, ok := v.(T); ok {
			recordLookup(entity, true)
			return typed, nil
		}
	}
	recordLookup(entity, false)

	generation := c.Generation(entity)
	value, err := load()
	if err != nil {
		return value, err
	}
	c.Set(entity, filter, generation, value)
	return value, nil
}

func recordLookup(entity string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.CacheLookups.WithLabelValues(entity, result).Inc()
}

package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/alanyang/agent-market/internal/domain/querykey"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	"github.com/alanyang/agent-market/internal/port/querycache"
)

var _ querycache.Cache = (*Cache)(nil)

const (
	DefaultGCTime = 5 * time.Minute
	sharedScope   = "shared"
)

type cacheEntry struct {
	value       any
	updatedAt   time.Time
	lastRead    time.Time
	staleTime   time.Duration
	invalidated bool
	fetch       querycache.Fetcher
}

func (e *cacheEntry) isStale(now time.Time, staleTime time.Duration) bool {
	return e.invalidated || !now.Before(e.updatedAt.Add(staleTime))
}

// Cache is an in-process query cache with stale-while-revalidate reads.
// Entries are grouped by scope: shared keys in one scope, every other key
// under the viewer found in the calling context.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]map[querykey.Key]*cacheEntry

	group  singleflight.Group
	wg     sync.WaitGroup
	gcTime time.Duration
	now    func() time.Time
}

type Option func(*Cache)

func WithGCTime(d time.Duration) Option {
	return func(c *Cache) { c.gcTime = d }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func NewCache(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]map[querykey.Key]*cacheEntry),
		gcTime:  DefaultGCTime,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func scopeOf(ctx context.Context, key querykey.Key) string {
	if key.Shared() {
		return sharedScope
	}
	return viewer.FromContext(ctx).ID.String()
}

// Fetch serves key from the cache. A stale entry is returned as-is while a
// background refetch runs; a missing entry is fetched synchronously, with
// concurrent misses sharing one call.
func (c *Cache) Fetch(ctx context.Context, key querykey.Key, fetch querycache.Fetcher, opts querycache.FetchOptions) (any, error) {
	scope := scopeOf(ctx, key)
	now := c.now()

	c.mu.Lock()
	e, ok := c.entries[scope][key]
	if ok {
		e.lastRead = now
		e.fetch = fetch
		e.staleTime = opts.StaleTime
		value, stale := e.value, e.isStale(now, opts.StaleTime)
		c.mu.Unlock()
		if stale {
			c.revalidate(ctx, scope, key, fetch, opts.StaleTime)
		}
		return value, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(flightKey(scope, key), func() (any, error) {
		return c.load(ctx, scope, key, fetch, opts.StaleTime)
	})
	return v, err
}

// Prefetch fills key unless a fresh entry already exists. It does not share
// in-flight calls: every prefetch that finds the entry missing or stale fetches.
func (c *Cache) Prefetch(ctx context.Context, key querykey.Key, fetch querycache.Fetcher, opts querycache.PrefetchOptions) error {
	scope := scopeOf(ctx, key)

	c.mu.RLock()
	e, ok := c.entries[scope][key]
	fresh := ok && !e.isStale(c.now(), opts.StaleTime)
	c.mu.RUnlock()
	if fresh {
		return nil
	}

	_, err := c.load(ctx, scope, key, fetch, opts.StaleTime)
	return err
}

// Invalidate flags key and every key derived from it as stale. With
// RefetchNone nothing is fetched; the next Fetch serves the old value and
// revalidates.
func (c *Cache) Invalidate(ctx context.Context, key querykey.Key, opts querycache.InvalidateOptions) {
	scope := scopeOf(ctx, key)

	type refetch struct {
		key       querykey.Key
		fetch     querycache.Fetcher
		staleTime time.Duration
	}
	var pending []refetch

	c.mu.Lock()
	for k, e := range c.entries[scope] {
		if !key.Covers(k) {
			continue
		}
		e.invalidated = true
		if opts.Refetch == querycache.RefetchActive && e.fetch != nil {
			pending = append(pending, refetch{key: k, fetch: e.fetch, staleTime: e.staleTime})
		}
	}
	c.mu.Unlock()

	for _, r := range pending {
		c.revalidate(ctx, scope, r.key, r.fetch, r.staleTime)
	}
}

func (c *Cache) Peek(ctx context.Context, key querykey.Key) (any, querycache.State, bool) {
	scope := scopeOf(ctx, key)

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[scope][key]
	if !ok {
		return nil, querycache.State{}, false
	}
	return e.value, querycache.State{
		UpdatedAt:   e.updatedAt,
		Invalidated: e.invalidated,
		Stale:       e.isStale(c.now(), e.staleTime),
	}, true
}

func (c *Cache) load(ctx context.Context, scope string, key querykey.Key, fetch querycache.Fetcher, staleTime time.Duration) (any, error) {
	v, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	now := c.now()
	c.mu.Lock()
	bucket, ok := c.entries[scope]
	if !ok {
		bucket = make(map[querykey.Key]*cacheEntry)
		c.entries[scope] = bucket
	}
	bucket[key] = &cacheEntry{
		value:     v,
		updatedAt: now,
		lastRead:  now,
		staleTime: staleTime,
		fetch:     fetch,
	}
	c.mu.Unlock()
	return v, nil
}

func (c *Cache) revalidate(ctx context.Context, scope string, key querykey.Key, fetch querycache.Fetcher, staleTime time.Duration) {
	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_, err, _ := c.group.Do(flightKey(scope, key), func() (any, error) {
			return c.load(bg, scope, key, fetch, staleTime)
		})
		if err != nil {
			slog.DebugContext(bg, "query cache: background refetch failed", "key", key, "error", err)
		}
	}()
}

// Sweep drops entries nobody has read for longer than the GC time.
func (c *Cache) Sweep() int {
	cutoff := c.now().Add(-c.gcTime)
	removed := 0

	c.mu.Lock()
	defer c.mu.Unlock()
	for scope, bucket := range c.entries {
		for k, e := range bucket {
			if e.lastRead.Before(cutoff) {
				delete(bucket, k)
				removed++
			}
		}
		if len(bucket) == 0 {
			delete(c.entries, scope)
		}
	}
	return removed
}

// StartJanitor runs Sweep every interval until ctx is done.
func (c *Cache) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := c.Sweep(); n > 0 {
					slog.Debug("query cache: swept idle entries", "count", n)
				}
			}
		}
	}()
}

// Wait blocks until every background refetch has finished.
func (c *Cache) Wait() { c.wg.Wait() }

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, bucket := range c.entries {
		n += len(bucket)
	}
	return n
}

func flightKey(scope string, key querykey.Key) string {
	return scope + "|" + string(key)
}

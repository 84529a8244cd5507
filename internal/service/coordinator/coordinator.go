// Package coordinator keeps cached query results fresh as a viewer moves
// between pages. It maps the current path to the queries that path reads,
// marks them stale on navigation and can warm them ahead of a visit.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alanyang/agent-market/internal/domain/route"
	"github.com/alanyang/agent-market/internal/port/querycache"
)

// PrefetchStaleTime is the freshness window given to prefetched entries.
const PrefetchStaleTime = 30 * time.Second

// ErrNotConfigured is returned (or panicked with, on a nil receiver) when the
// coordinator is used without being built by New.
var ErrNotConfigured = errors.New("coordinator: must be constructed with a cache and route table")

// Coordinator is safe for concurrent use; it holds no mutable state of its own.
type Coordinator struct {
	table route.Table
	cache querycache.Coordinated
}

func New(cache querycache.Coordinated, table route.Table) (*Coordinator, error) {
	if cache == nil || table.Len() == 0 {
		return nil, ErrNotConfigured
	}
	return &Coordinator{table: table, cache: cache}, nil
}

// OnNavigate marks every query of every route pattern that path starts with
// as stale. It never fetches; the next read of each key does.
func (c *Coordinator) OnNavigate(ctx context.Context, path string) {
	c.mustBeConfigured()

	keys := c.table.Match(path)
	for _, k := range keys {
		c.cache.Invalidate(ctx, k, querycache.InvalidateOptions{Refetch: querycache.RefetchNone})
	}
	slog.DebugContext(ctx, "coordinator: navigation invalidated queries", "path", path, "keys", len(keys))
}

// PrefetchRoute asks the cache to populate every query of route, which must
// equal a pattern exactly. Unknown routes are ignored. Failures are dropped:
// a failed prefetch looks the same as one that never ran.
func (c *Coordinator) PrefetchRoute(ctx context.Context, route string) {
	c.mustBeConfigured()

	keys, ok := c.table.Lookup(route)
	if !ok {
		return
	}
	for _, k := range keys {
		err := c.cache.Prefetch(ctx, k, placeholder, querycache.PrefetchOptions{StaleTime: PrefetchStaleTime})
		if err != nil {
			slog.DebugContext(ctx, "coordinator: prefetch failed", "route", route, "key", k, "error", err)
		}
	}
}

// Watch applies OnNavigate for every path received on nav until nav is closed
// or ctx is done. A path equal to the previous one is not a navigation.
func (c *Coordinator) Watch(ctx context.Context, nav <-chan string) {
	c.mustBeConfigured()

	var last string
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case path, ok := <-nav:
			if !ok {
				return
			}
			if !first && path == last {
				continue
			}
			first = false
			last = path
			c.OnNavigate(ctx, path)
		}
	}
}

// Routes lists the patterns the coordinator knows, in table order.
func (c *Coordinator) Routes() []string {
	c.mustBeConfigured()
	return c.table.Patterns()
}

func (c *Coordinator) mustBeConfigured() {
	if c == nil || c.cache == nil {
		panic(ErrNotConfigured)
	}
}

// placeholder resolves to no data. Pages register the real fetcher for the
// same key on their first read.
// TODO: accept a per-key fetcher registry so prefetch can load real data.
func placeholder(context.Context) (any, error) { return nil, nil }

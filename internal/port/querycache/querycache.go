package querycache

import (
	"context"
	"fmt"
	"time"

	"github.com/alanyang/agent-market/internal/domain/querykey"
)

// Fetcher loads the value for one query. A nil value with a nil error
// means "no data" and leaves the cache untouched.
type Fetcher func(ctx context.Context) (any, error)

type RefetchType int

const (
	// RefetchNone only flags entries stale; the next read refetches.
	RefetchNone RefetchType = iota
	// RefetchActive also starts a background refetch with the entry's last fetcher.
	RefetchActive
)

type InvalidateOptions struct {
	Refetch RefetchType
}

type PrefetchOptions struct {
	// StaleTime is how long an existing entry counts as fresh enough to skip the fetch.
	StaleTime time.Duration
}

type FetchOptions struct {
	StaleTime time.Duration
}

// State describes an entry without exposing its storage.
type State struct {
	UpdatedAt   time.Time
	Invalidated bool
	Stale       bool
}

// Cache is the key-value query cache used by pages and by the route coordinator.
// Non-shared keys are scoped to the viewer carried by ctx.
// [ISP] Consumers that only invalidate or prefetch use Invalidator / Prefetcher.
type Cache interface {
	Invalidator
	Prefetcher
	Fetch(ctx context.Context, key querykey.Key, fetch Fetcher, opts FetchOptions) (any, error)
	Peek(ctx context.Context, key querykey.Key) (any, State, bool)
}

type Invalidator interface {
	Invalidate(ctx context.Context, key querykey.Key, opts InvalidateOptions)
}

type Prefetcher interface {
	Prefetch(ctx context.Context, key querykey.Key, fetch Fetcher, opts PrefetchOptions) error
}

// Coordinated is what the route coordinator needs from a cache.
type Coordinated interface {
	Invalidator
	Prefetcher
}

// Get reads key through c and asserts the cached value back to T.
// Services use it so their fetchers stay typed.
func Get[T any](ctx context.Context, c Cache, key querykey.Key, staleTime time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	}, FetchOptions{StaleTime: staleTime})
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("query cache: %s holds %T, want %T", key, v, zero)
	}
	return t, nil
}

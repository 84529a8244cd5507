package wire

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyang/agent-market/internal/domain/event"
	"github.com/alanyang/agent-market/internal/domain/querykey"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	porteventbus "github.com/alanyang/agent-market/internal/port/eventbus"
	portnotifier "github.com/alanyang/agent-market/internal/port/notifier"
	"github.com/alanyang/agent-market/internal/port/querycache"
)

// Pusher reaches connected browsers; the websocket hub implements it.
type Pusher interface {
	portnotifier.Broadcaster
	portnotifier.ViewerNotifier
}

// pendingKey identifies one coalesced invalidation. viewerID is uuid.Nil for
// shared keys.
type pendingKey struct {
	viewerID uuid.UUID
	key      querykey.Key
}

// invalidator marks cached queries stale when domain events arrive. Bursts of
// events for the same (viewer, key) within window collapse into one
// invalidation at the end of the window.
type invalidator struct {
	cache  querycache.Invalidator
	window time.Duration

	mu     sync.Mutex
	timers map[pendingKey]*time.Timer
}

func newInvalidator(cache querycache.Invalidator, window time.Duration) *invalidator {
	return &invalidator{
		cache:  cache,
		window: window,
		timers: make(map[pendingKey]*time.Timer),
	}
}

func (iv *invalidator) handle(e event.Event) {
	for _, k := range event.KeysFor(e.Type) {
		p := pendingKey{key: k}
		if !k.Shared() {
			if e.IsPublic() {
				continue // no viewer scope to invalidate
			}
			p.viewerID = e.ViewerID
		}
		iv.schedule(p)
	}
}

func (iv *invalidator) schedule(p pendingKey) {
	if iv.window <= 0 {
		iv.flush(p)
		return
	}

	iv.mu.Lock()
	defer iv.mu.Unlock()
	if _, ok := iv.timers[p]; ok {
		return
	}
	iv.timers[p] = time.AfterFunc(iv.window, func() {
		iv.mu.Lock()
		delete(iv.timers, p)
		iv.mu.Unlock()
		iv.flush(p)
	})
}

func (iv *invalidator) flush(p pendingKey) {
	ctx := context.Background()
	if p.viewerID != uuid.Nil {
		ctx = viewer.WithID(ctx, p.viewerID)
	}
	iv.cache.Invalidate(ctx, p.key, querycache.InvalidateOptions{Refetch: querycache.RefetchNone})
}

// stop cancels pending invalidations.
func (iv *invalidator) stop() {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	for p, t := range iv.timers {
		t.Stop()
		delete(iv.timers, p)
	}
}

// forward pushes e to browsers. Catalog events go to everyone; the rest go
// only to the viewer they belong to.
func forward(ctx context.Context, push Pusher, e event.Event) {
	var err error
	if event.ChannelFor(e.Type) == event.ChannelCatalog || e.IsPublic() {
		err = push.Broadcast(ctx, e)
	} else {
		err = push.NotifyViewer(ctx, e.ViewerID, e)
	}
	if err != nil {
		slog.ErrorContext(ctx, "realtime: push failed", "type", e.Type, "error", err)
	}
}

// startRealtime subscribes to every domain channel (one Postgres connection
// each). Every event invalidates the queries it affects and is forwarded to
// browsers. The returned stop func unsubscribes and drops pending work.
func startRealtime(ctx context.Context, bus porteventbus.EventBus, cache querycache.Invalidator, push Pusher, window time.Duration) func() {
	iv := newInvalidator(cache, window)

	var subs []porteventbus.Subscription
	for _, ch := range event.Channels {
		sub, err := bus.Subscribe(ctx, ch, func(ctx context.Context, e event.Event) {
			iv.handle(e)
			forward(ctx, push, e)
		})
		if err != nil {
			slog.Error("realtime: failed to subscribe", "channel", ch, "error", err)
			continue
		}
		subs = append(subs, sub)
	}

	return func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
		iv.stop()
	}
}

package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/agent-market/internal/domain/event"
	porteventbus "github.com/alanyang/agent-market/internal/port/eventbus"
)

// maxPayload is Postgres' limit on a NOTIFY payload.
const maxPayload = 8000

const retryDelay = time.Second

var (
	ErrUnknownType     = errors.New("event type has no channel")
	ErrPayloadTooLarge = errors.New("event payload exceeds NOTIFY limit")
)

// EventBus carries marketplace events between instances over LISTEN/NOTIFY.
// Each Subscribe holds one pooled connection until Unsubscribe.
type EventBus struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{pool: pool}
}

// Publish sends e on the channel its type belongs to.
func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)
	if ch == "" {
		return fmt.Errorf("publishing %q: %w", e.Type, ErrUnknownType)
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	if len(payload) >= maxPayload {
		return fmt.Errorf("publishing %q: %w", e.Type, ErrPayloadTooLarge)
	}

	name := channelName(ch)
	if _, err := eb.pool.Exec(ctx, "SELECT pg_notify($1, $2)", name, string(payload)); err != nil {
		return fmt.Errorf("publishing event on channel %s: %w", name, err)
	}
	return nil
}

// Subscribe LISTENs on ch and calls handler for every event received, in
// order, from a single goroutine. Events of types that do not belong to ch
// are dropped.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for LISTEN: %w", err)
	}

	name := channelName(ch)
	if _, err := conn.Exec(ctx, "LISTEN "+name); err != nil {
		conn.Release()
		return nil, fmt.Errorf("executing LISTEN on channel %s: %w", name, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		defer conn.Release()
		defer func() {
			if _, err := conn.Exec(context.Background(), "UNLISTEN "+name); err != nil {
				slog.Warn("unlisten failed", "channel", name, "error", err)
			}
		}()

		for {
			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				slog.WarnContext(subCtx, "waiting for notification", "channel", name, "error", err)
				select {
				case <-subCtx.Done():
					return
				case <-time.After(retryDelay):
				}
				continue
			}

			var e event.Event
			if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
				slog.WarnContext(subCtx, "dropping malformed event", "channel", name, "error", err)
				continue
			}
			if event.ChannelFor(e.Type) != ch {
				continue
			}
			handler(subCtx, e)
		}
	}()

	return sub, nil
}

func channelName(ch event.Channel) string {
	return "agent_market_" + string(ch)
}

type subscription struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// Unsubscribe stops delivery and waits for the listener to release its
// connection. Safe to call more than once.
func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}

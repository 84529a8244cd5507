//go:build integration

package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgeventbus "github.com/alanyang/agent-market/internal/adapter/postgres/eventbus"
	"github.com/alanyang/agent-market/internal/domain/event"
	"github.com/alanyang/agent-market/internal/testutil"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := pgeventbus.New(pool)

	received := make(chan event.Event, 1)
	sub, err := bus.Subscribe(ctx, event.ChannelAccount, func(_ context.Context, e event.Event) {
		received <- e
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	viewerID := uuid.New()
	sent := event.New(event.TypeCreditsChanged, viewerID).ForViewer(viewerID)
	require.NoError(t, bus.Publish(ctx, sent))

	select {
	case got := <-received:
		assert.Equal(t, event.TypeCreditsChanged, got.Type)
		assert.Equal(t, viewerID, got.ViewerID)
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestEventBus_PublishRejectsUnknownType(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	bus := pgeventbus.New(pool)

	err := bus.Publish(context.Background(), event.New("not_a_type", uuid.New()))
	assert.ErrorIs(t, err, pgeventbus.ErrUnknownType)
}

func TestEventBus_UnsubscribeTwice(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	bus := pgeventbus.New(pool)

	sub, err := bus.Subscribe(context.Background(), event.ChannelCatalog, func(context.Context, event.Event) {})
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe()
}

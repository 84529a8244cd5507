package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NotifyCall records a single delivery made through CaptureNotifier.
type NotifyCall struct {
	ViewerID uuid.UUID
	Event    any
}

// CaptureNotifier implements both ViewerNotifier and Broadcaster.
// Broadcasts are recorded with a nil ViewerID. Safe for concurrent use.
type CaptureNotifier struct {
	mu    sync.Mutex
	Calls []NotifyCall
}

func (c *CaptureNotifier) NotifyViewer(_ context.Context, viewerID uuid.UUID, event any) error {
	c.mu.Lock()
	c.Calls = append(c.Calls, NotifyCall{ViewerID: viewerID, Event: event})
	c.mu.Unlock()
	return nil
}

func (c *CaptureNotifier) Broadcast(_ context.Context, event any) error {
	c.mu.Lock()
	c.Calls = append(c.Calls, NotifyCall{Event: event})
	c.mu.Unlock()
	return nil
}

// ViewerNotifications returns all calls made for a specific viewer.
func (c *CaptureNotifier) ViewerNotifications(viewerID uuid.UUID) []NotifyCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []NotifyCall
	for _, call := range c.Calls {
		if call.ViewerID == viewerID {
			out = append(out, call)
		}
	}
	return out
}

// Broadcasts returns every call that was not addressed to a viewer.
func (c *CaptureNotifier) Broadcasts() []NotifyCall {
	return c.ViewerNotifications(uuid.Nil)
}

func (c *CaptureNotifier) Reset() {
	c.mu.Lock()
	c.Calls = nil
	c.mu.Unlock()
}

package notifier

import (
	"context"

	"github.com/google/uuid"
)

// ViewerNotifier pushes an event to every live session of one viewer.
// [ISP] Services that only push to a viewer do not see broadcast.
type ViewerNotifier interface {
	NotifyViewer(ctx context.Context, viewerID uuid.UUID, event any) error
}

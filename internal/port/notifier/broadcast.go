package notifier

import "context"

// Broadcaster pushes an event to every live session.
// [LSP] The websocket hub and the MCP session registry both satisfy this interface.
type Broadcaster interface {
	Broadcast(ctx context.Context, event any) error
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/agent-market/internal/domain/viewer"
)

// SessionRegistry is the in-memory map of MCP sessions to the viewers they
// signed in as. It implements port/notifier.ViewerNotifier.
//
// [SRP] Session storage and notification dispatch only.
// [DIP] The inbox service depends on the port interface, not this concrete type.
type SessionRegistry struct {
	mu        sync.RWMutex
	bySession map[string]viewer.Viewer          // sessionID → viewer
	byViewer  map[uuid.UUID]map[string]struct{} // viewerID → sessionIDs

	// mcpSrv is set after the MCP server is constructed (avoids circular init dependency).
	mcpMu  sync.RWMutex
	mcpSrv *mcpserver.MCPServer
}

// NewSessionRegistry creates a registry without an MCP server reference.
// Call SetMCPServer once the mcp-go server is constructed.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		bySession: make(map[string]viewer.Viewer),
		byViewer:  make(map[uuid.UUID]map[string]struct{}),
	}
}

func (r *SessionRegistry) SetMCPServer(s *mcpserver.MCPServer) {
	r.mcpMu.Lock()
	r.mcpSrv = s
	r.mcpMu.Unlock()
}

// Bind signs a session in as v. A viewer may hold several sessions; binding
// an already bound session moves it to v.
func (r *SessionRegistry) Bind(sessionID string, v viewer.Viewer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unbindLocked(sessionID)
	r.bySession[sessionID] = v
	if r.byViewer[v.ID] == nil {
		r.byViewer[v.ID] = make(map[string]struct{})
	}
	r.byViewer[v.ID][sessionID] = struct{}{}
}

// Unbind forgets a closed session. Returns the viewer it was signed in as.
func (r *SessionRegistry) Unbind(sessionID string) (viewer.Viewer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unbindLocked(sessionID)
}

func (r *SessionRegistry) unbindLocked(sessionID string) (viewer.Viewer, bool) {
	v, ok := r.bySession[sessionID]
	if !ok {
		return viewer.Anonymous, false
	}
	delete(r.bySession, sessionID)
	delete(r.byViewer[v.ID], sessionID)
	if len(r.byViewer[v.ID]) == 0 {
		delete(r.byViewer, v.ID)
	}
	return v, true
}

// Viewer returns the viewer a session signed in as, or Anonymous.
func (r *SessionRegistry) Viewer(sessionID string) viewer.Viewer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.bySession[sessionID]; ok {
		return v
	}
	return viewer.Anonymous
}

// NotifyViewer implements port/notifier.ViewerNotifier.
func (r *SessionRegistry) NotifyViewer(_ context.Context, viewerID uuid.UUID, event any) error {
	r.mu.RLock()
	targets := make([]string, 0, len(r.byViewer[viewerID]))
	for sessionID := range r.byViewer[viewerID] {
		targets = append(targets, sessionID)
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		return nil // no MCP session for this viewer
	}

	r.mcpMu.RLock()
	srv := r.mcpSrv
	r.mcpMu.RUnlock()

	if srv == nil {
		return fmt.Errorf("mcp server not initialized")
	}

	params, err := toParams(event)
	if err != nil {
		return fmt.Errorf("serialize notification: %w", err)
	}

	var lastErr error
	for _, sessionID := range targets {
		if err := srv.SendNotificationToSpecificClient(sessionID, "notifications/message", params); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// IsConnected reports whether the viewer has at least one MCP session.
func (r *SessionRegistry) IsConnected(viewerID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byViewer[viewerID]) > 0
}

func toParams(event any) (map[string]any, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return map[string]any{"data": event}, nil
	}
	return params, nil
}

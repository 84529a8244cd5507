package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	portprofile "github.com/alanyang/agent-market/internal/port/profile"
	accountsvc "github.com/alanyang/agent-market/internal/service/account"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
)

// Services are the application services the MCP tools call.
type Services struct {
	Profiles portprofile.Repository
	Catalog  *catalogsvc.Service
	Contact  *contactsvc.Service
	Account  *accountsvc.Service
}

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// [SRP] HTTP server lifecycle only (start, stop, session open/close).
//
//	Tools are registered in tools.go, prompts in prompts.go, session state in registry.go.
//
// [OCP] Adding new tools or prompts never requires changes to this file.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
	reg     *SessionRegistry
}

// New creates the MCP transport server.
// The reg parameter is built before the inbox service in the wire, which
// pushes through it. The MCPServer reference is set on the registry here.
func New(reg *SessionRegistry, svcs Services) *Server {
	s := &Server{reg: reg}

	hooks := &mcpserver.Hooks{}
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, s.onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"agent-market",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	reg.SetMCPServer(mcpSrv)

	RegisterTools(mcpSrv, reg, svcs)
	RegisterPrompts(mcpSrv, svcs.Catalog)

	s.httpSrv = mcpserver.NewStreamableHTTPServer(mcpSrv)
	return s
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

// Registry returns the session registry (implements ViewerNotifier).
func (s *Server) Registry() *SessionRegistry {
	return s.reg
}

// Shutdown closes open MCP sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	v, ok := s.reg.Unbind(session.SessionID())
	if !ok {
		return
	}
	slog.InfoContext(ctx, "mcp: session closed", "session_id", session.SessionID(), "viewer_id", v.ID)
}

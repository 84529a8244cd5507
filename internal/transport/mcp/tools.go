package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	domainnotification "github.com/alanyang/agent-market/internal/domain/notification"
	"github.com/alanyang/agent-market/internal/domain/viewer"
	portprofile "github.com/alanyang/agent-market/internal/port/profile"
	accountsvc "github.com/alanyang/agent-market/internal/service/account"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
)

const errSignIn = "error: call sign_in first"

// RegisterTools registers all MCP tools on the server.
// [SRP] Tool registration only.
// [OCP] New tools are one more AddTool call; server.go does not change.
func RegisterTools(s *mcpserver.MCPServer, reg *SessionRegistry, svcs Services) {
	s.AddTool(mcpmcp.NewTool("sign_in",
		mcpmcp.WithDescription("Bind this session to a marketplace viewer. Required before contact_agent, get_balance and list_notifications. Notifications for the viewer are then pushed to this session."),
		mcpmcp.WithString("viewer_id", mcpmcp.Required(), mcpmcp.Description("Viewer (profile) UUID")),
	), signInHandler(reg, svcs.Profiles))

	s.AddTool(mcpmcp.NewTool("search_agents",
		mcpmcp.WithDescription("Search published agents by free text and category."),
		mcpmcp.WithString("query", mcpmcp.Description("Matched against name, description and tags")),
		mcpmcp.WithString("category", mcpmcp.Description("Exact category, case-insensitive")),
		mcpmcp.WithString("sort", mcpmcp.Description("One of: newest, price_low, price_high, rating")),
	), searchAgentsHandler(reg, svcs.Catalog))

	s.AddTool(mcpmcp.NewTool("get_agent",
		mcpmcp.WithDescription("Returns a published agent with its reviews."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent UUID")),
	), getAgentHandler(reg, svcs.Catalog))

	s.AddTool(mcpmcp.NewTool("contact_agent",
		mcpmcp.WithDescription("Send input to an agent and return its output. Costs the agent's price per call, charged only on success."),
		mcpmcp.WithString("agent_id", mcpmcp.Required(), mcpmcp.Description("Agent UUID")),
		mcpmcp.WithString("input", mcpmcp.Required(), mcpmcp.Description("JSON document, or plain text sent as {\"input\": text}")),
	), contactAgentHandler(reg, svcs.Contact))

	s.AddTool(mcpmcp.NewTool("get_balance",
		mcpmcp.WithDescription("Returns the signed-in viewer's credit balance."),
	), getBalanceHandler(reg, svcs.Account))

	s.AddTool(mcpmcp.NewTool("list_notifications",
		mcpmcp.WithDescription("Returns the signed-in viewer's most recent notifications."),
		mcpmcp.WithBoolean("unread_only", mcpmcp.Description("Only unread notifications")),
	), listNotificationsHandler(reg, svcs.Account))
}

// ── Session helpers ───────────────────────────────────────────────────────

func sessionID(ctx context.Context) string {
	if session := mcpserver.ClientSessionFromContext(ctx); session != nil {
		return session.SessionID()
	}
	return ""
}

// asViewer returns the session's viewer and a ctx carrying it, so cached
// reads land in that viewer's scope.
func asViewer(ctx context.Context, reg *SessionRegistry) (context.Context, viewer.Viewer) {
	v := reg.Viewer(sessionID(ctx))
	return viewer.WithViewer(ctx, v), v
}

func jsonResult(v any) *mcpmcp.CallToolResult {
	data, _ := json.Marshal(v)
	return mcpmcp.NewToolResultText(string(data))
}

func errorResult(err error) *mcpmcp.CallToolResult {
	return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func signInHandler(reg *SessionRegistry, profiles portprofile.Repository) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id, err := uuid.Parse(mcpmcp.ParseString(req, "viewer_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid viewer_id"), nil
		}
		sid := sessionID(ctx)
		if sid == "" {
			return mcpmcp.NewToolResultText("error: no session"), nil
		}

		p, err := profiles.GetByID(ctx, id)
		if err != nil {
			return errorResult(err), nil
		}

		reg.Bind(sid, viewer.Viewer{ID: p.ID, Role: p.Role})
		return jsonResult(map[string]string{"viewer_id": p.ID.String(), "role": string(p.Role)}), nil
	}
}

func searchAgentsHandler(reg *SessionRegistry, catalog *catalogsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		ctx, _ = asViewer(ctx, reg)

		filters := domainagent.ListFilters{
			Query: strings.TrimSpace(mcpmcp.ParseString(req, "query", "")),
			Sort:  domainagent.Sort(mcpmcp.ParseString(req, "sort", string(domainagent.SortNewest))),
		}
		if category := mcpmcp.ParseString(req, "category", ""); category != "" {
			filters.Category = &category
		}

		agents, err := catalog.Browse(ctx, filters)
		if err != nil {
			return errorResult(err), nil
		}
		if agents == nil {
			agents = []domainagent.Agent{}
		}
		return jsonResult(agents), nil
	}
}

func getAgentHandler(reg *SessionRegistry, catalog *catalogsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		ctx, _ = asViewer(ctx, reg)

		id, err := uuid.Parse(mcpmcp.ParseString(req, "agent_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid agent_id"), nil
		}

		a, err := catalog.GetAgent(ctx, id)
		if err != nil {
			return errorResult(err), nil
		}
		reviews, err := catalog.Reviews(ctx, id)
		if err != nil {
			return errorResult(err), nil
		}
		if reviews == nil {
			reviews = []domainagent.Review{}
		}
		return jsonResult(map[string]any{"agent": a, "reviews": reviews}), nil
	}
}

func contactAgentHandler(reg *SessionRegistry, contact *contactsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		ctx, v := asViewer(ctx, reg)
		if !v.SignedIn() {
			return mcpmcp.NewToolResultText(errSignIn), nil
		}

		id, err := uuid.Parse(mcpmcp.ParseString(req, "agent_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid agent_id"), nil
		}

		res, err := contact.Contact(ctx, v.ID, id, toInput(mcpmcp.ParseString(req, "input", "")))
		if err != nil && !errors.Is(err, contactsvc.ErrUpstream) {
			return errorResult(err), nil
		}
		return jsonResult(res), nil
	}
}

// toInput passes JSON through and wraps anything else as {"input": text}.
func toInput(s string) json.RawMessage {
	if json.Valid([]byte(s)) {
		return json.RawMessage(s)
	}
	data, _ := json.Marshal(map[string]string{"input": s})
	return data
}

func getBalanceHandler(reg *SessionRegistry, account *accountsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		ctx, v := asViewer(ctx, reg)
		if !v.SignedIn() {
			return mcpmcp.NewToolResultText(errSignIn), nil
		}

		b, err := account.Balance(ctx, v.ID)
		if err != nil {
			return errorResult(err), nil
		}
		return jsonResult(b), nil
	}
}

func listNotificationsHandler(reg *SessionRegistry, account *accountsvc.Service) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		ctx, v := asViewer(ctx, reg)
		if !v.SignedIn() {
			return mcpmcp.NewToolResultText(errSignIn), nil
		}

		ns, err := account.Notifications(ctx, v.ID, mcpmcp.ParseBoolean(req, "unread_only", false))
		if err != nil {
			return errorResult(err), nil
		}
		if ns == nil {
			ns = []domainnotification.Notification{}
		}
		return jsonResult(ns), nil
	}
}

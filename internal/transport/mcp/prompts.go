package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	domainagent "github.com/alanyang/agent-market/internal/domain/agent"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
)

// RegisterPrompts registers the marketplace guide prompt.
// [SRP] Prompt registration only; server lifecycle and tools live elsewhere.
func RegisterPrompts(s *mcpserver.MCPServer, catalog *catalogsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("marketplace_guide",
			mcpmcp.WithPromptDescription("How to find and call agents on the marketplace, with the current categories and featured agents."),
			mcpmcp.WithArgument("category",
				mcpmcp.ArgumentDescription("Optional category to list agents from instead of the featured set."),
			),
		),
		guideHandler(catalog),
	)
}

func guideHandler(catalog *catalogsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		categories, err := catalog.Categories(ctx)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}

		var agents []domainagent.Agent
		if category := req.Params.Arguments["category"]; category != "" {
			agents, err = catalog.Browse(ctx, domainagent.ListFilters{Category: &category, Sort: domainagent.SortRating})
		} else {
			agents, err = catalog.Featured(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("list agents: %w", err)
		}

		return mcpmcp.NewGetPromptResult(
			"Agent marketplace guide",
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: guideText(categories, agents),
					},
				),
			},
		), nil
	}
}

func guideText(categories []string, agents []domainagent.Agent) string {
	var b strings.Builder
	b.WriteString("You are connected to an AI agent marketplace.\n")
	b.WriteString("Call sign_in with your viewer_id first; contact_agent and list_notifications need it.\n")
	b.WriteString("Use search_agents to find agents and get_agent for details and reviews. ")
	b.WriteString("contact_agent spends credits only when the agent answers successfully.\n\n")
	fmt.Fprintf(&b, "Categories: %s\n", strings.Join(categories, ", "))
	if len(agents) > 0 {
		b.WriteString("\nAgents:\n")
		for _, a := range agents {
			fmt.Fprintf(&b, "- %s (%s) %s credits/call, rating %.1f: %s\n",
				a.Name, a.ID, a.PricePerCall.StringFixed(2), a.Rating, a.Description)
		}
	}
	return b.String()
}

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// registerDynamicTools exposes the catalog through a two-tool
// indirection for hosts that cannot handle large tool lists: search the
// catalog, then execute by name.
func (s *Server) registerDynamicTools() {
	searchTool := mcp.NewTool("search-tools",
		mcp.WithDescription("Search the available Microsoft 365 tools by keyword or category. Returns tool names, descriptions and parameters for use with execute-tool."),
		mcp.WithString("search", mcp.Description("Keyword matched against tool names and descriptions")),
		mcp.WithString("category", mcp.Description("Restrict to one category: mail, calendar, files, contacts, todo, user, sites, teams, chat, planner")),
	)
	s.mcp.AddTool(searchTool, s.searchToolsHandler)

	executeTool := mcp.NewTool("execute-tool",
		mcp.WithDescription("Execute a Microsoft 365 tool found via search-tools."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Tool name to execute")),
		mcp.WithObject("params", mcp.Description("Parameters for the tool, as returned by search-tools")),
	)
	s.mcp.AddTool(executeTool, s.executeToolHandler)
}

// toolSummary is the search result shape for one endpoint.
type toolSummary struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Method      string         `json:"method"`
	Category    string         `json:"category"`
	Params      []paramSummary `json:"params,omitempty"`
}

type paramSummary struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

func (s *Server) searchToolsHandler(_ context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	search := strings.ToLower(r.GetString("search", ""))
	category := strings.ToLower(r.GetString("category", ""))

	var matches []toolSummary
	for _, ep := range s.endpoints {
		if category != "" && strings.ToLower(ep.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(ep.Tool), search) &&
			!strings.Contains(strings.ToLower(ep.Description), search) {
			continue
		}

		summary := toolSummary{
			Name:        ep.Tool,
			Description: ep.Description,
			Method:      ep.Method,
			Category:    ep.Category,
		}
		for _, p := range ep.Params {
			summary.Params = append(summary.Params, paramSummary{
				Name:        p.Name,
				Type:        p.Type,
				Description: p.Description,
				Required:    p.Required,
			})
		}
		matches = append(matches, summary)
	}

	out, err := json.Marshal(map[string]any{"tools": matches, "count": len(matches)})
	if err != nil {
		return errorResult("failed to marshal search results"), nil
	}
	return textResult(string(out)), nil
}

func (s *Server) executeToolHandler(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := r.GetString("name", "")
	if name == "" {
		return errorResult("Error: name parameter is required"), nil
	}

	for _, ep := range s.endpoints {
		if ep.Tool == name {
			return s.dispatch(ctx, ep, executeArgs(r)), nil
		}
	}
	return errorResult(fmt.Sprintf("Error: unknown tool %q, use search-tools to discover available tools", name)), nil
}

// executeArgs extracts the nested params object, tolerating a JSON
// string form for hosts that serialize objects as text.
func executeArgs(r mcp.CallToolRequest) map[string]any {
	args := r.GetArguments()
	switch params := args["params"].(type) {
	case map[string]any:
		return params
	case string:
		var decoded map[string]any
		if json.Unmarshal([]byte(params), &decoded) == nil {
			return decoded
		}
	}
	return map[string]any{}
}

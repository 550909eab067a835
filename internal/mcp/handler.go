package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/graph"
)

// EndpointHandler creates a handler that dispatches an MCP tool call to
// the Graph endpoint described by ep.
func (s *Server) EndpointHandler(ep graph.Endpoint) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.dispatch(ctx, ep, r.GetArguments()), nil
	}
}

// dispatch runs the full pipeline for one endpoint invocation: required
// parameter check, request binding, execution with token recovery, page
// aggregation, and response normalization. Errors surface as MCP error
// results, never as Go errors, so the host always receives a response.
func (s *Server) dispatch(ctx context.Context, ep graph.Endpoint, args map[string]any) *mcp.CallToolResult {
	logger := s.logger.WithCorrelationId(uuid.New().String())

	for _, param := range ep.Params {
		if param.Required {
			if v, ok := args[param.Name]; !ok || v == nil || v == "" {
				return errorResult(fmt.Sprintf("Error: %s parameter is required", param.Name))
			}
		}
	}

	shape := graph.BuildRequest(&ep, args, logger)

	logger.Debug().
		Str("tool", ep.Tool).
		Str("method", shape.Method).
		Str("path", shape.Path).
		Msg("dispatching tool call")

	result, err := s.exec.Execute(ctx, shape)
	if err != nil {
		return graphError(err)
	}

	body := result.Body
	if shape.Method == http.MethodGet && graph.BoolArg(args, graph.ControlFetchAllPages) {
		body = graph.AggregatePages(ctx, s.exec, body, logger)
	}

	opts := graph.NormalizeOptions{
		Minimal:        graph.BoolArg(args, graph.ControlExcludeResponse),
		Raw:            ep.ReturnDownloadURL,
		IncludeHeaders: graph.BoolArg(args, graph.ControlIncludeHeaders),
		Format:         s.opts.ResponseFormat,
	}

	var res *mcp.CallToolResult
	if ep.Binary && !opts.Minimal {
		// Raw content passes through untouched; minimal mode still wins.
		res = textResult(string(body))
	} else {
		res = textResult(graph.Normalize(body, opts))
	}
	if opts.IncludeHeaders {
		if headers := graph.CaptureHeaders(result); headers != nil {
			res.Meta = &mcp.Meta{AdditionalFields: map[string]any{"headers": headers}}
		}
	}
	return res
}

// graphError renders a dispatch failure as an MCP error result,
// preserving the distinguished login and scope messages.
func graphError(err error) *mcp.CallToolResult {
	var scopeErr *graph.ScopeError
	if errors.As(err, &scopeErr) {
		return errorResult(scopeErr.Error())
	}
	if errors.Is(err, graph.ErrAuthExpired) || errors.Is(err, graph.ErrNoToken) {
		return errorResult(err.Error())
	}

	var upstream *graph.UpstreamError
	if errors.As(err, &upstream) {
		return errorResult(fmt.Sprintf("Error: Graph returned %d %s: %s",
			upstream.Status, upstream.Reason, upstream.Body))
	}
	return errorResult(fmt.Sprintf("Error: %v", err))
}

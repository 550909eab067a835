package mcp

import (
	"fmt"
	"regexp"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/config"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/graph"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/onedrive"
)

// Options control which tools are exposed and how results are encoded.
type Options struct {
	ReadOnly       bool
	OrgMode        bool
	Enabled        string
	Dynamic        bool
	ResponseFormat string
}

// OptionsFromConfig maps the tools configuration onto server options.
func OptionsFromConfig(cfg config.ToolsConfig) Options {
	return Options{
		ReadOnly:       cfg.ReadOnly,
		OrgMode:        cfg.OrgMode,
		Enabled:        cfg.Enabled,
		Dynamic:        cfg.Dynamic,
		ResponseFormat: cfg.ResponseFormat,
	}
}

// Server wires the endpoint catalog and drive tools onto an MCP server.
type Server struct {
	mcp       *server.MCPServer
	exec      graph.Executor
	collector *onedrive.Collector
	endpoints []graph.Endpoint
	opts      Options
	download  string
	logger    *common.Logger
}

// NewServer builds the MCP server and registers every visible tool. The
// catalog is filtered by visibility rules before registration; in
// dynamic mode the filtered catalog is reachable only through the
// search-tools/execute-tool pair.
func NewServer(name, version string, exec graph.Executor, collector *onedrive.Collector,
	downloadDir string, catalog []graph.Endpoint, opts Options, logger *common.Logger) (*Server, error) {

	if logger == nil {
		logger = common.NewSilentLogger()
	}

	visible, err := visibleEndpoints(catalog, opts)
	if err != nil {
		return nil, err
	}

	s := &Server{
		mcp: server.NewMCPServer(
			name,
			version,
			server.WithToolCapabilities(true),
		),
		exec:      exec,
		collector: collector,
		endpoints: visible,
		opts:      opts,
		download:  downloadDir,
		logger:    logger,
	}

	if opts.Dynamic {
		s.registerDynamicTools()
	} else {
		for _, ep := range visible {
			s.mcp.AddTool(BuildTool(ep), s.EndpointHandler(ep))
		}
	}
	s.registerDriveTools()

	logger.Info().
		Int("endpoints", len(visible)).
		Str("mode", registrationMode(opts.Dynamic)).
		Msg("mcp tools registered")

	return s, nil
}

func registrationMode(dynamic bool) string {
	if dynamic {
		return "dynamic"
	}
	return "direct"
}

// MCPServer returns the underlying mcp-go server for transport setup.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// ServeHTTP serves the streamable HTTP transport on the given port.
func (s *Server) ServeHTTP(port string) error {
	httpServer := server.NewStreamableHTTPServer(s.mcp,
		server.WithStateLess(true),
	)
	return httpServer.Start(":" + port)
}

// visibleEndpoints applies the visibility rules: org-only endpoints need
// org mode, mutating endpoints are hidden in read-only mode, and the
// enabled pattern restricts by tool name.
func visibleEndpoints(catalog []graph.Endpoint, opts Options) ([]graph.Endpoint, error) {
	var enabled *regexp.Regexp
	if opts.Enabled != "" {
		re, err := regexp.Compile(opts.Enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid enabled-tools pattern %q: %w", opts.Enabled, err)
		}
		enabled = re
	}

	visible := make([]graph.Endpoint, 0, len(catalog))
	for _, ep := range catalog {
		if ep.OrgOnly && !opts.OrgMode {
			continue
		}
		if opts.ReadOnly && ep.Mutating() {
			continue
		}
		if enabled != nil && !enabled.MatchString(ep.Tool) {
			continue
		}
		visible = append(visible, ep)
	}
	return visible, nil
}

// BuildTool converts an endpoint into an mcp.Tool with the appropriate
// input schema. Control parameters are added to every endpoint tool.
func BuildTool(ep graph.Endpoint) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ep.Description)}
	for _, p := range ep.Params {
		opts = append(opts, buildParamOption(p))
	}

	if ep.Method == "GET" {
		opts = append(opts, mcp.WithBoolean(graph.ControlFetchAllPages,
			mcp.Description("Follow pagination cursors and return all pages merged")))
	}
	opts = append(opts,
		mcp.WithBoolean(graph.ControlIncludeHeaders,
			mcp.Description("Include selected response headers in result metadata")),
		mcp.WithBoolean(graph.ControlExcludeResponse,
			mcp.Description("Suppress the response body, returning only a success marker")),
	)
	if ep.SupportsTimezone {
		opts = append(opts, mcp.WithString(graph.ControlTimezone,
			mcp.Description("IANA timezone for returned date/time values")))
	}

	return mcp.NewTool(ep.Tool, opts...)
}

// buildParamOption maps a parameter descriptor to the appropriate
// mcp-go tool option.
func buildParamOption(p graph.ParamDescriptor) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case "number":
		return mcp.WithNumber(p.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, opts...)
	case "array":
		opts = append([]mcp.PropertyOption{mcp.WithStringItems()}, opts...)
		return mcp.WithArray(p.Name, opts...)
	case "object":
		return mcp.WithObject(p.Name, opts...)
	default:
		return mcp.WithString(p.Name, opts...)
	}
}

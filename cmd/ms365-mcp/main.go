package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/config"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/graph"
	mcpserver "github.com/clye-gmbh/ms-365-mcp-server/internal/mcp"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/onedrive"
)

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "ms365-mcp.toml", "Path to config file")
	catalogFile := flag.String("catalog", "", "Path to an external endpoint catalog (JSON); overrides the built-in catalog")
	readOnly := flag.Bool("read-only", false, "Hide all mutating tools")
	orgMode := flag.Bool("org-mode", false, "Expose work/school-only tools (Teams, Planner, Sites)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *readOnly {
		cfg.Tools.ReadOnly = true
	}
	if *orgMode {
		cfg.Tools.OrgMode = true
	}

	common.LoadVersionFromFile()

	logger := common.NewLoggerFromConfig(cfg.Logging)

	store := graph.NewFileTokenStore(cfg.Graph.TokenFile)
	session := graph.NewSession(cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret, store, logger)
	client := graph.NewClient(cfg.Graph.BaseURL, session, logger)

	catalog := graph.DefaultEndpoints()
	if *catalogFile != "" {
		data, err := os.ReadFile(*catalogFile)
		if err != nil {
			log.Fatalf("Failed to read catalog file %s: %v", *catalogFile, err)
		}
		catalog, err = graph.LoadCatalog(data)
		if err != nil {
			log.Fatalf("Failed to parse catalog file %s: %v", *catalogFile, err)
		}
	}
	catalog = graph.ValidateCatalog(catalog, logger)

	collector := onedrive.NewCollector(client, logger)

	srv, err := mcpserver.NewServer(
		cfg.Server.Name,
		common.GetVersion(),
		client,
		collector,
		cfg.Download.BaseDir,
		catalog,
		mcpserver.OptionsFromConfig(cfg.Tools),
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to build MCP server: %v", err)
	}

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		if err := srv.ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	port := cfg.Server.Port
	logger.Info().Str("port", port).Msg("starting MCP streamable HTTP transport")
	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on :%s\n", port)

	if err := srv.ServeHTTP(port); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}

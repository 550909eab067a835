// Package config loads ms-365-mcp-server configuration from TOML files
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
)

// Config holds all ms-365-mcp-server configuration.
type Config struct {
	Server   ServerConfig         `toml:"server"`
	Graph    GraphConfig          `toml:"graph"`
	Tools    ToolsConfig          `toml:"tools"`
	Download DownloadConfig       `toml:"download"`
	Logging  common.LoggingConfig `toml:"logging"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `toml:"name"`
	Port string `toml:"port"`
}

// GraphConfig holds Microsoft Graph connection settings.
type GraphConfig struct {
	BaseURL      string `toml:"base_url"`
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenFile    string `toml:"token_file"`
}

// ToolsConfig controls which endpoint tools are exposed and how results
// are encoded.
type ToolsConfig struct {
	// ReadOnly hides every mutating (non-GET) endpoint.
	ReadOnly bool `toml:"read_only"`
	// OrgMode exposes work/school-only endpoints (Teams, Planner, Sites).
	OrgMode bool `toml:"org_mode"`
	// Enabled is a regular expression; only tool names matching it are
	// registered. Empty means all.
	Enabled string `toml:"enabled"`
	// Dynamic switches from direct per-endpoint registration to the
	// search-tools/execute-tool indirection for hosts that cannot handle
	// large tool catalogs.
	Dynamic bool `toml:"dynamic"`
	// ResponseFormat selects the result encoding: "json" (default) or
	// "toml" (compact, falls back to JSON when a body cannot be encoded).
	ResponseFormat string `toml:"response_format"`
}

// DownloadConfig holds settings for the file download side-effect.
type DownloadConfig struct {
	// BaseDir is the directory all downloaded files must resolve under.
	BaseDir string `toml:"base_dir"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Server: ServerConfig{
			Name: "ms-365-mcp-server",
			Port: "4380",
		},
		Graph: GraphConfig{
			BaseURL:   "https://graph.microsoft.com/v1.0",
			TenantID:  "common",
			TokenFile: filepath.Join(home, ".ms365-mcp", "tokens.json"),
		},
		Tools: ToolsConfig{
			ResponseFormat: "json",
		},
		Download: DownloadConfig{
			BaseDir: filepath.Join(home, ".ms365-mcp", "downloads"),
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/ms365-mcp.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Missing files are skipped; later files override earlier ones.
func LoadConfig(paths ...string) (*Config, error) {
	cfg := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides applies MS365_MCP_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("MS365_MCP_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if url := os.Getenv("MS365_MCP_GRAPH_BASE_URL"); url != "" {
		cfg.Graph.BaseURL = url
	}
	if tenant := os.Getenv("MS365_MCP_TENANT_ID"); tenant != "" {
		cfg.Graph.TenantID = tenant
	}
	if id := os.Getenv("MS365_MCP_CLIENT_ID"); id != "" {
		cfg.Graph.ClientID = id
	}
	if secret := os.Getenv("MS365_MCP_CLIENT_SECRET"); secret != "" {
		cfg.Graph.ClientSecret = secret
	}
	if file := os.Getenv("MS365_MCP_TOKEN_FILE"); file != "" {
		cfg.Graph.TokenFile = file
	}
	if ro := os.Getenv("MS365_MCP_READ_ONLY"); ro != "" {
		if b, err := strconv.ParseBool(ro); err == nil {
			cfg.Tools.ReadOnly = b
		}
	}
	if org := os.Getenv("MS365_MCP_ORG_MODE"); org != "" {
		if b, err := strconv.ParseBool(org); err == nil {
			cfg.Tools.OrgMode = b
		}
	}
	if enabled := os.Getenv("MS365_MCP_ENABLED_TOOLS"); enabled != "" {
		cfg.Tools.Enabled = enabled
	}
	if dir := os.Getenv("MS365_MCP_DOWNLOAD_DIR"); dir != "" {
		cfg.Download.BaseDir = dir
	}
	if level := os.Getenv("MS365_MCP_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}

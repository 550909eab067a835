package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/onedrive"
)

// registerDriveTools adds the drive traversal and download tools, which
// are built on the collector rather than a single catalog endpoint.
func (s *Server) registerDriveTools() {
	listTool := mcp.NewTool("list-folder-files",
		mcp.WithDescription("Recursively list files in a OneDrive or SharePoint folder. Resolves the drive by id or name, walks subfolders depth-first, and returns a flat list or a nested tree."),
		mcp.WithString("siteId", mcp.Description("SharePoint site id; omit to use the signed-in user's drives")),
		mcp.WithString("driveId", mcp.Description("Drive id; takes precedence over driveName")),
		mcp.WithString("driveName", mcp.Description("Drive display name, e.g. Documents")),
		mcp.WithString("folderId", mcp.Description("Folder item id to start from; omit for the drive root")),
		mcp.WithString("mode", mcp.Description("Result shape: flat (default) or tree")),
		mcp.WithBoolean("includeFolders", mcp.Description("Include matching folders in flat results")),
		mcp.WithNumber("maxDepth", mcp.Description("Maximum folder depth to descend (default 10, max 20)")),
		mcp.WithString("filter", mcp.Description("File name filter: glob (*.pdf) or substring")),
		mcp.WithNumber("pageSize", mcp.Description("Page size hint for child-listing calls (default 200)")),
	)
	s.mcp.AddTool(listTool, s.listFolderFilesHandler)

	if !s.opts.ReadOnly {
		downloadTool := mcp.NewTool("download-drive-item",
			mcp.WithDescription("Download a drive item's content to a file under the configured download directory."),
			mcp.WithString("driveId", mcp.Required(), mcp.Description("Drive id")),
			mcp.WithString("itemId", mcp.Required(), mcp.Description("Item id")),
			mcp.WithString("localPath", mcp.Required(), mcp.Description("Target path relative to the download directory")),
			mcp.WithBoolean("overwrite", mcp.Description("Replace an existing file")),
		)
		s.mcp.AddTool(downloadTool, s.downloadDriveItemHandler)
	}

	versionTool := mcp.NewTool("get-server-version",
		mcp.WithDescription("Get the server version and build info. Use this to verify connectivity."),
	)
	s.mcp.AddTool(versionTool, s.versionHandler)
}

func (s *Server) listFolderFilesHandler(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := s.logger.WithCorrelationId(uuid.New().String())

	opts := onedrive.ListOptions{
		SiteID:         r.GetString("siteId", ""),
		DriveID:        r.GetString("driveId", ""),
		DriveName:      r.GetString("driveName", ""),
		FolderID:       r.GetString("folderId", ""),
		Mode:           r.GetString("mode", "flat"),
		IncludeFolders: r.GetBool("includeFolders", false),
		MaxDepth:       r.GetInt("maxDepth", 0),
		Filter:         r.GetString("filter", ""),
		PageSize:       r.GetInt("pageSize", 0),
	}

	result, err := s.collector.List(ctx, opts)
	if err != nil {
		logger.Warn().Str("error", err.Error()).Msg("folder listing failed")
		return errorResult(fmt.Sprintf("Error: %v", err)), nil
	}

	out, err := json.Marshal(result)
	if err != nil {
		return errorResult("failed to marshal listing"), nil
	}
	return textResult(string(out)), nil
}

func (s *Server) downloadDriveItemHandler(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := s.logger.WithCorrelationId(uuid.New().String())

	opts := onedrive.DownloadOptions{
		DriveID:   r.GetString("driveId", ""),
		ItemID:    r.GetString("itemId", ""),
		LocalPath: r.GetString("localPath", ""),
		Overwrite: r.GetBool("overwrite", false),
	}

	result, err := onedrive.Download(ctx, s.exec, s.download, opts)
	if err != nil {
		logger.Warn().Str("error", err.Error()).Msg("download failed")
		return errorResult(fmt.Sprintf("Error: %v", err)), nil
	}

	logger.Info().Str("path", result.Path).Int("bytes", result.Bytes).Msg("drive item downloaded")

	out, err := json.Marshal(result)
	if err != nil {
		return errorResult("failed to marshal download result"), nil
	}
	return textResult(string(out)), nil
}

func (s *Server) versionHandler(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
	if err != nil {
		return errorResult("failed to marshal version info"), nil
	}
	return textResult(string(out)), nil
}

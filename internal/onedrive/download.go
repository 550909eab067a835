package onedrive

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/graph"
)

// ErrPathEscapesBase indicates the requested local path resolves outside
// the configured download directory.
var ErrPathEscapesBase = errors.New("onedrive: local path escapes the download directory")

// ErrFileExists indicates the target file exists and overwrite was not
// requested.
var ErrFileExists = errors.New("onedrive: local file already exists")

// DownloadOptions control one drive item download.
type DownloadOptions struct {
	DriveID   string
	ItemID    string
	LocalPath string
	Overwrite bool
}

// DownloadResult reports where the content was written.
type DownloadResult struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

// Download fetches a drive item's content and writes it under baseDir.
// The path containment check runs before any network or filesystem
// activity, so a hostile LocalPath never triggers a fetch.
func Download(ctx context.Context, exec graph.Executor, baseDir string, opts DownloadOptions) (*DownloadResult, error) {
	if opts.DriveID == "" || opts.ItemID == "" {
		return nil, errors.New("onedrive: driveId and itemId are required")
	}
	if opts.LocalPath == "" {
		return nil, errors.New("onedrive: localPath is required")
	}

	target, err := resolveLocal(baseDir, opts.LocalPath)
	if err != nil {
		return nil, err
	}

	if !opts.Overwrite {
		if _, err := os.Stat(target); err == nil {
			return nil, fmt.Errorf("%w: %s", ErrFileExists, target)
		}
	}

	path := fmt.Sprintf("/drives/%s/items/%s/content",
		url.PathEscape(opts.DriveID), url.PathEscape(opts.ItemID))
	result, err := exec.Execute(ctx, graph.RequestShape{Method: http.MethodGet, Path: path})
	if err != nil {
		return nil, fmt.Errorf("fetch item content: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}
	if err := os.WriteFile(target, result.Body, 0600); err != nil {
		return nil, fmt.Errorf("write download: %w", err)
	}

	return &DownloadResult{Path: target, Bytes: len(result.Body)}, nil
}

// resolveLocal joins the requested path onto the base directory and
// verifies containment.
func resolveLocal(baseDir, local string) (string, error) {
	base, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}

	target := local
	if !filepath.IsAbs(target) {
		target = filepath.Join(base, target)
	}
	target, err = filepath.Abs(target)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(base, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapesBase, local)
	}
	return target, nil
}

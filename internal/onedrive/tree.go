package onedrive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
	"github.com/clye-gmbh/ms-365-mcp-server/internal/graph"
)

const (
	// DefaultMaxDepth bounds traversal when the caller gives no depth.
	DefaultMaxDepth = 10
	// MaxDepthCeiling is the hard cap a caller cannot exceed.
	MaxDepthCeiling = 20

	defaultPageSize = 200
)

// ErrDriveNotFound indicates drive resolution produced no usable drive.
var ErrDriveNotFound = errors.New("onedrive: no matching drive found")

// preferredDriveNames are tried in order when the caller names neither a
// drive id nor a drive name. They are the default document library names
// on SharePoint sites.
var preferredDriveNames = []string{"Documents", "Shared Documents"}

// Collector walks drive folder hierarchies through a Graph executor.
type Collector struct {
	exec   graph.Executor
	logger *common.Logger
}

// NewCollector creates a collector over the given executor.
func NewCollector(exec graph.Executor, logger *common.Logger) *Collector {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Collector{exec: exec, logger: logger}
}

// ListOptions control one folder listing.
type ListOptions struct {
	// SiteID scopes drive resolution to a SharePoint site. When empty,
	// the signed-in user's drives are used.
	SiteID string
	// DriveID selects a drive directly, skipping name resolution.
	DriveID string
	// DriveName selects a drive by display name.
	DriveName string
	// FolderID is the traversal root. When empty the drive root is used.
	FolderID string

	// Mode is "flat" (default) or "tree".
	Mode string
	// IncludeFolders emits matching folders in flat mode. Tree mode
	// always keeps folders as structure.
	IncludeFolders bool
	// MaxDepth bounds recursion. Zero selects DefaultMaxDepth; values
	// above MaxDepthCeiling are clamped.
	MaxDepth int
	// Filter restricts file names, glob or substring (see MatchesName).
	Filter string
	// PageSize is the per-request child page size.
	PageSize int
}

// ListResult is the outcome of one listing.
type ListResult struct {
	Drive     DriveInfo   `json:"drive"`
	Truncated bool        `json:"truncated"`
	Count     int         `json:"count"`
	Items     []*FileNode `json:"items,omitempty"`
	Root      *FileNode   `json:"root,omitempty"`
}

// List resolves the target drive and walks its folder hierarchy
// depth-first, honoring mode, filter and depth bounds. Truncated is set
// when a folder was left unexpanded because the depth bound was reached.
func (c *Collector) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxDepth > MaxDepthCeiling {
		maxDepth = MaxDepthCeiling
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	drive, err := c.resolveDrive(ctx, opts)
	if err != nil {
		return nil, err
	}

	rootID := opts.FolderID
	if rootID == "" {
		rootID = drive.RootItemID
	}

	result := &ListResult{Drive: *drive}
	walk := &walker{
		collector: c,
		driveID:   drive.ID,
		maxDepth:  maxDepth,
		pageSize:  pageSize,
		opts:      opts,
	}

	if opts.Mode == "tree" {
		children, err := walk.tree(ctx, rootID, "", 1)
		if err != nil {
			return nil, err
		}
		result.Root = &FileNode{
			DriveID:  drive.ID,
			ItemID:   rootID,
			Name:     drive.Name,
			Folder:   true,
			Children: children,
		}
		result.Count = countNodes(children)
	} else {
		result.Items, err = walk.flat(ctx, rootID, "", 1)
		if err != nil {
			return nil, err
		}
		result.Count = len(result.Items)
	}
	result.Truncated = walk.truncated

	c.logger.Debug().
		Str("drive", drive.ID).
		Str("mode", opts.Mode).
		Int("count", result.Count).
		Msg("drive listing complete")

	return result, nil
}

// resolveDrive picks the drive for a listing: explicit id, then name
// match against the available drives, then the conventional document
// library names, then the first drive.
func (c *Collector) resolveDrive(ctx context.Context, opts ListOptions) (*DriveInfo, error) {
	if opts.DriveID != "" {
		var drive Drive
		path := fmt.Sprintf("/drives/%s", url.PathEscape(opts.DriveID))
		if err := c.getJSON(ctx, path, &drive); err != nil {
			return nil, fmt.Errorf("get drive %s: %w", opts.DriveID, err)
		}
		return c.withRootItem(ctx, &drive)
	}

	listPath := "/me/drives"
	if opts.SiteID != "" {
		listPath = fmt.Sprintf("/sites/%s/drives", url.PathEscape(opts.SiteID))
	}

	var page struct {
		Value []Drive `json:"value"`
	}
	if err := c.getJSON(ctx, listPath, &page); err != nil {
		return nil, fmt.Errorf("list drives: %w", err)
	}
	if len(page.Value) == 0 {
		return nil, ErrDriveNotFound
	}

	if opts.DriveName != "" {
		for i := range page.Value {
			if page.Value[i].Name == opts.DriveName {
				return c.withRootItem(ctx, &page.Value[i])
			}
		}
		return nil, fmt.Errorf("%w: no drive named %q", ErrDriveNotFound, opts.DriveName)
	}

	for _, preferred := range preferredDriveNames {
		for i := range page.Value {
			if page.Value[i].Name == preferred {
				return c.withRootItem(ctx, &page.Value[i])
			}
		}
	}
	return c.withRootItem(ctx, &page.Value[0])
}

// withRootItem fills in the drive's root item id.
func (c *Collector) withRootItem(ctx context.Context, drive *Drive) (*DriveInfo, error) {
	var root DriveItem
	path := fmt.Sprintf("/drives/%s/root", url.PathEscape(drive.ID))
	if err := c.getJSON(ctx, path, &root); err != nil {
		return nil, fmt.Errorf("get drive root: %w", err)
	}
	return &DriveInfo{ID: drive.ID, Name: drive.Name, RootItemID: root.ID}, nil
}

// listChildren fetches every child of a folder, following continuation
// cursors until the collection is exhausted.
func (c *Collector) listChildren(ctx context.Context, driveID, itemID string, pageSize int) ([]DriveItem, error) {
	path := fmt.Sprintf("/drives/%s/items/%s/children", url.PathEscape(driveID), url.PathEscape(itemID))
	query := url.Values{}
	query.Set("$top", strconv.Itoa(pageSize))

	var items []DriveItem
	shape := graph.RequestShape{Method: http.MethodGet, Path: path, Query: query}
	for {
		result, err := c.exec.Execute(ctx, shape)
		if err != nil {
			return nil, fmt.Errorf("list children of %s: %w", itemID, err)
		}

		var page struct {
			Value    []DriveItem `json:"value"`
			NextLink string      `json:"@odata.nextLink"`
		}
		if err := json.Unmarshal(result.Body, &page); err != nil {
			return nil, fmt.Errorf("decode children of %s: %w", itemID, err)
		}

		items = append(items, page.Value...)
		if page.NextLink == "" {
			return items, nil
		}
		shape = graph.RequestShape{Method: http.MethodGet, Path: page.NextLink}
	}
}

// getJSON executes a GET and decodes the response body.
func (c *Collector) getJSON(ctx context.Context, path string, out any) error {
	result, err := c.exec.Execute(ctx, graph.RequestShape{Method: http.MethodGet, Path: path})
	if err != nil {
		return err
	}
	return json.Unmarshal(result.Body, out)
}

// walker carries the per-listing traversal state.
type walker struct {
	collector *Collector
	driveID   string
	maxDepth  int
	pageSize  int
	opts      ListOptions
	truncated bool
}

// flat walks the hierarchy and emits matching items in depth-first
// order. depth is the depth of the children being listed; the traversal
// descends into a folder at depth d only when d < maxDepth.
func (w *walker) flat(ctx context.Context, folderID, parentPath string, depth int) ([]*FileNode, error) {
	children, err := w.collector.listChildren(ctx, w.driveID, folderID, w.pageSize)
	if err != nil {
		return nil, err
	}

	var out []*FileNode
	for i := range children {
		item := &children[i]
		matches := MatchesName(item.Name, w.opts.Filter)

		if item.IsFolder() {
			if w.opts.IncludeFolders && matches {
				out = append(out, newFileNode(w.driveID, parentPath, item))
			}
			if depth < w.maxDepth {
				nested, err := w.flat(ctx, item.ID, parentPath+"/"+item.Name, depth+1)
				if err != nil {
					return nil, err
				}
				out = append(out, nested...)
			} else if item.Folder.ChildCount > 0 {
				w.truncated = true
			}
			continue
		}

		if matches {
			out = append(out, newFileNode(w.driveID, parentPath, item))
		}
	}
	return out, nil
}

// tree walks the hierarchy preserving folder structure. Every visited
// item is attached; the name filter applies to flat mode only.
func (w *walker) tree(ctx context.Context, folderID, parentPath string, depth int) ([]*FileNode, error) {
	children, err := w.collector.listChildren(ctx, w.driveID, folderID, w.pageSize)
	if err != nil {
		return nil, err
	}

	var out []*FileNode
	for i := range children {
		item := &children[i]
		node := newFileNode(w.driveID, parentPath, item)

		if item.IsFolder() {
			if depth < w.maxDepth {
				node.Children, err = w.tree(ctx, item.ID, node.Path, depth+1)
				if err != nil {
					return nil, err
				}
			} else if item.Folder.ChildCount > 0 {
				w.truncated = true
			}
		}
		out = append(out, node)
	}
	return out, nil
}

// countNodes counts every node in a tree, folders included.
func countNodes(nodes []*FileNode) int {
	total := 0
	for _, n := range nodes {
		total += 1 + countNodes(n.Children)
	}
	return total
}

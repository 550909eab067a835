package onedrive

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/graph"
)

// fakeGraph serves canned JSON bodies keyed by request path.
type fakeGraph struct {
	responses map[string]string
	calls     []string
	queries   []url.Values
}

func (f *fakeGraph) Execute(_ context.Context, shape graph.RequestShape) (*graph.RawResult, error) {
	f.calls = append(f.calls, shape.Path)
	f.queries = append(f.queries, shape.Query)
	body, ok := f.responses[shape.Path]
	if !ok {
		return nil, fmt.Errorf("unexpected request %s", shape.Path)
	}
	return &graph.RawResult{Status: 200, Body: []byte(body)}, nil
}

func folderJSON(id, name string, childCount int) string {
	return fmt.Sprintf(`{"id":%q,"name":%q,"folder":{"childCount":%d}}`, id, name, childCount)
}

func fileJSON(id, name string, size int) string {
	return fmt.Sprintf(`{"id":%q,"name":%q,"size":%d,"file":{"mimeType":"text/plain"}}`, id, name, size)
}

func children(items ...string) string {
	out := `{"value":[`
	for i, it := range items {
		if i > 0 {
			out += ","
		}
		out += it
	}
	return out + `]}`
}

// newTestGraph builds a drive with this layout:
//
//	root
//	├── a.txt
//	├── Reports/
//	│   ├── q1.pdf
//	│   └── Archive/
//	│       └── old.pdf
//	└── b.md
func newTestGraph() *fakeGraph {
	return &fakeGraph{responses: map[string]string{
		"/me/drives":     `{"value":[{"id":"d1","name":"Documents"}]}`,
		"/drives/d1/root": `{"id":"root1","name":"root","folder":{"childCount":3}}`,
		"/drives/d1/items/root1/children": children(
			fileJSON("f1", "a.txt", 10),
			folderJSON("dir1", "Reports", 2),
			fileJSON("f2", "b.md", 20),
		),
		"/drives/d1/items/dir1/children": children(
			fileJSON("f3", "q1.pdf", 30),
			folderJSON("dir2", "Archive", 1),
		),
		"/drives/d1/items/dir2/children": children(
			fileJSON("f4", "old.pdf", 40),
		),
	}}
}

func TestListFlatDepthFirstOrder(t *testing.T) {
	c := NewCollector(newTestGraph(), nil)

	result, err := c.List(context.Background(), ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, "d1", result.Drive.ID)
	assert.Equal(t, "root1", result.Drive.RootItemID)
	assert.False(t, result.Truncated)

	var names []string
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	// Files appear in recursion order: siblings before the subtree items
	// that follow the folder, subtree items before later siblings.
	assert.Equal(t, []string{"a.txt", "q1.pdf", "old.pdf", "b.md"}, names)

	assert.Equal(t, "/Reports/q1.pdf", result.Items[1].Path)
	assert.Equal(t, "/Reports/Archive/old.pdf", result.Items[2].Path)
}

func TestListFlatIncludeFoldersRequiresFilterMatch(t *testing.T) {
	c := NewCollector(newTestGraph(), nil)

	result, err := c.List(context.Background(), ListOptions{
		IncludeFolders: true,
		Filter:         "report",
	})
	require.NoError(t, err)

	var names []string
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	// Only the folder whose own name matches is emitted; its non-matching
	// children are still traversed but filtered out.
	assert.Equal(t, []string{"Reports"}, names)
	assert.True(t, result.Items[0].Folder)
}

func TestListFlatGlobFilter(t *testing.T) {
	c := NewCollector(newTestGraph(), nil)

	result, err := c.List(context.Background(), ListOptions{Filter: "*.pdf"})
	require.NoError(t, err)

	var names []string
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"q1.pdf", "old.pdf"}, names)
}

func TestListMaxDepthTruncates(t *testing.T) {
	c := NewCollector(newTestGraph(), nil)

	// Depth 1 lists the root children only; Reports has children, so the
	// result is marked truncated.
	result, err := c.List(context.Background(), ListOptions{MaxDepth: 1})
	require.NoError(t, err)

	var names []string
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.md"}, names)
	assert.True(t, result.Truncated)
}

func TestListMaxDepthExactFitNotTruncated(t *testing.T) {
	c := NewCollector(newTestGraph(), nil)

	result, err := c.List(context.Background(), ListOptions{MaxDepth: 3})
	require.NoError(t, err)
	assert.False(t, result.Truncated)
	assert.Len(t, result.Items, 4)
}

func TestListTreeMode(t *testing.T) {
	c := NewCollector(newTestGraph(), nil)

	result, err := c.List(context.Background(), ListOptions{Mode: "tree"})
	require.NoError(t, err)

	root := result.Root
	require.NotNil(t, root)
	assert.True(t, root.Folder)
	assert.Equal(t, "Documents", root.Name)

	require.Len(t, root.Children, 3)
	assert.Equal(t, "a.txt", root.Children[0].Name)

	reports := root.Children[1]
	assert.Equal(t, "Reports", reports.Name)
	assert.True(t, reports.Folder)
	require.Len(t, reports.Children, 2)
	assert.Equal(t, "q1.pdf", reports.Children[0].Name)

	archive := reports.Children[1]
	require.Len(t, archive.Children, 1)
	assert.Equal(t, "/Reports/Archive/old.pdf", archive.Children[0].Path)

	assert.Equal(t, 6, result.Count)
}

func TestListTreeModeAttachesEveryLeaf(t *testing.T) {
	c := NewCollector(newTestGraph(), nil)

	// The name filter restricts flat emission only; tree mode attaches
	// every visited item.
	result, err := c.List(context.Background(), ListOptions{Mode: "tree", Filter: "*.pdf"})
	require.NoError(t, err)

	require.Len(t, result.Root.Children, 3)
	assert.Equal(t, 6, result.Count)
}

func TestListFollowsChildPaging(t *testing.T) {
	g := newTestGraph()
	g.responses["/drives/d1/items/root1/children"] = `{
		"value":[` + fileJSON("f1", "a.txt", 10) + `],
		"@odata.nextLink":"https://graph.microsoft.com/v1.0/next-page"
	}`
	g.responses["https://graph.microsoft.com/v1.0/next-page"] = children(fileJSON("f2", "b.md", 20))

	c := NewCollector(g, nil)
	result, err := c.List(context.Background(), ListOptions{MaxDepth: 1})
	require.NoError(t, err)

	var names []string
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"a.txt", "b.md"}, names)
}

func TestResolveDriveByName(t *testing.T) {
	g := &fakeGraph{responses: map[string]string{
		"/sites/s1/drives": `{"value":[
			{"id":"d1","name":"Documents"},
			{"id":"d2","name":"Design Assets"}
		]}`,
		"/drives/d2/root":                 `{"id":"root2"}`,
		"/drives/d2/items/root2/children": children(),
	}}

	c := NewCollector(g, nil)
	result, err := c.List(context.Background(), ListOptions{SiteID: "s1", DriveName: "Design Assets"})
	require.NoError(t, err)
	assert.Equal(t, "d2", result.Drive.ID)
}

func TestResolveDrivePrefersDocuments(t *testing.T) {
	g := &fakeGraph{responses: map[string]string{
		"/sites/s1/drives": `{"value":[
			{"id":"d9","name":"Style Library"},
			{"id":"d1","name":"Documents"}
		]}`,
		"/drives/d1/root":                 `{"id":"root1"}`,
		"/drives/d1/items/root1/children": children(),
	}}

	c := NewCollector(g, nil)
	result, err := c.List(context.Background(), ListOptions{SiteID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "d1", result.Drive.ID)
}

func TestResolveDriveUnknownName(t *testing.T) {
	g := &fakeGraph{responses: map[string]string{
		"/me/drives": `{"value":[{"id":"d1","name":"Documents"}]}`,
	}}

	c := NewCollector(g, nil)
	_, err := c.List(context.Background(), ListOptions{DriveName: "Nope"})
	assert.ErrorIs(t, err, ErrDriveNotFound)
}

func TestResolveDriveNoDrives(t *testing.T) {
	g := &fakeGraph{responses: map[string]string{
		"/me/drives": `{"value":[]}`,
	}}

	c := NewCollector(g, nil)
	_, err := c.List(context.Background(), ListOptions{})
	assert.ErrorIs(t, err, ErrDriveNotFound)
}

func TestListPageSizeHint(t *testing.T) {
	g := newTestGraph()
	c := NewCollector(g, nil)

	_, err := c.List(context.Background(), ListOptions{PageSize: 7, MaxDepth: 1})
	require.NoError(t, err)

	// The last call is the root children listing.
	last := g.queries[len(g.queries)-1]
	assert.Equal(t, "7", last.Get("$top"))
}

func TestListDefaultPageSize(t *testing.T) {
	g := newTestGraph()
	c := NewCollector(g, nil)

	_, err := c.List(context.Background(), ListOptions{MaxDepth: 1})
	require.NoError(t, err)

	last := g.queries[len(g.queries)-1]
	assert.Equal(t, "200", last.Get("$top"))
}

func TestListExplicitFolderStart(t *testing.T) {
	g := newTestGraph()
	c := NewCollector(g, nil)

	result, err := c.List(context.Background(), ListOptions{FolderID: "dir1"})
	require.NoError(t, err)

	var names []string
	for _, item := range result.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"q1.pdf", "old.pdf"}, names)
}

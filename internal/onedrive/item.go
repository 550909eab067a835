// Package onedrive implements drive discovery and recursive folder
// traversal on top of the generic Graph dispatch layer.
package onedrive

import "time"

// Drive is a document library or personal drive.
type Drive struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DriveType string `json:"driveType"`
	WebURL    string `json:"webUrl"`
}

// DriveItem is the Graph representation of a file or folder.
type DriveItem struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Size                 int64      `json:"size"`
	WebURL               string     `json:"webUrl"`
	CreatedDateTime      *time.Time `json:"createdDateTime,omitempty"`
	LastModifiedDateTime *time.Time `json:"lastModifiedDateTime,omitempty"`

	File   *FileFacet   `json:"file,omitempty"`
	Folder *FolderFacet `json:"folder,omitempty"`

	ParentReference *ItemReference `json:"parentReference,omitempty"`
}

// FileFacet is present on file items.
type FileFacet struct {
	MimeType string `json:"mimeType"`
}

// FolderFacet is present on folder items.
type FolderFacet struct {
	ChildCount int `json:"childCount"`
}

// ItemReference locates an item's parent.
type ItemReference struct {
	DriveID string `json:"driveId"`
	ID      string `json:"id"`
	Path    string `json:"path"`
}

// IsFolder reports whether the item is a folder.
func (d *DriveItem) IsFolder() bool {
	return d.Folder != nil
}

// DriveInfo identifies the drive a listing was resolved against.
type DriveInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	RootItemID string `json:"rootItemId"`
}

// FileNode is one entry in a listing result: a drive item with its
// drive-relative path and, in tree mode, its children.
type FileNode struct {
	DriveID  string     `json:"driveId"`
	ItemID   string     `json:"itemId"`
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Folder   bool       `json:"folder"`
	Size     int64      `json:"size,omitempty"`
	MimeType string     `json:"mimeType,omitempty"`
	Created  *time.Time `json:"created,omitempty"`
	Modified *time.Time `json:"modified,omitempty"`
	WebURL   string     `json:"webUrl,omitempty"`

	Children []*FileNode `json:"children,omitempty"`
}

// newFileNode converts a DriveItem into a FileNode under the given
// drive-relative parent path.
func newFileNode(driveID, parentPath string, item *DriveItem) *FileNode {
	node := &FileNode{
		DriveID:  driveID,
		ItemID:   item.ID,
		Name:     item.Name,
		Path:     parentPath + "/" + item.Name,
		Folder:   item.IsFolder(),
		Size:     item.Size,
		Created:  item.CreatedDateTime,
		Modified: item.LastModifiedDateTime,
		WebURL:   item.WebURL,
	}
	if item.File != nil {
		node.MimeType = item.File.MimeType
	}
	return node
}

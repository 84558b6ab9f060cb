package docsync

import (
	"path/filepath"
	"strings"
	"time"
)

// DocumentExt is the only file extension the store manages.
const DocumentExt = ".pdf"

// LocalRecord is an immutable snapshot of one document in the local store.
// Mutating operations return a new record rather than updating in place.
type LocalRecord struct {
	// Path is the document's current absolute location. It changes on rename.
	Path string

	// Name is the current base name including extension.
	Name string

	// StableID identifies the document independently of its name. It is
	// assigned once and survives renames and folder moves. It is also the
	// document's key in the remote store.
	StableID string

	// DisplayName is Name without the extension.
	DisplayName string

	ModifiedAt time.Time
	SizeBytes  int64

	// PageCount is 0 until a background sweep has counted the document's
	// pages. 0 is a valid transient state, not an error.
	PageCount int

	// FolderID is the folder this document is assigned to, or empty.
	// Folders are a logical grouping over a flat directory; assignment
	// never moves the underlying file.
	FolderID string
}

// WithFolder returns a copy of the record assigned to the given folder.
func (r LocalRecord) WithFolder(folderID string) LocalRecord {
	r.FolderID = folderID
	return r
}

// FolderRecord is a user-created grouping of documents.
type FolderRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// RemoteObject mirrors a LocalRecord's identity-relevant fields plus the
// document bytes. Its Key equals the document's StableID.
type RemoteObject struct {
	Key        string    `json:"key"`
	Name       string    `json:"name"`
	FolderID   string    `json:"folderId,omitempty"`
	ModifiedAt time.Time `json:"modifiedAt"`
	SizeBytes  int64     `json:"sizeBytes"`
	Encrypted  bool      `json:"encrypted,omitempty"`
	Bytes      []byte    `json:"bytes"`
}

// DisplayName derives a display name from a file name by stripping the
// extension.
func DisplayName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

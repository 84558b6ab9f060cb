package docsync

// LocalStore is the slice of the local document store the synchronization
// coordinator depends on. The full store (create, import, rename, delete)
// is driven by the application layer; the coordinator only reads documents
// for push and materializes restored objects.
type LocalStore interface {
	// Enumerate returns a snapshot of all local documents.
	Enumerate() ([]LocalRecord, error)

	// ReadDocument returns the document's current bytes.
	ReadDocument(record LocalRecord) ([]byte, error)

	// StoreRestored writes a document restored from the remote store into a
	// collision-free local path, preserving the given stable id instead of
	// minting one. Preserving the id is what keeps the next push an upsert
	// against the same remote key rather than a duplicate.
	StoreRestored(data []byte, preferredName, stableID string) (LocalRecord, error)

	// Folders returns all local folder records.
	Folders() ([]FolderRecord, error)

	// AddFolder inserts a folder record with its identity already assigned,
	// used when recreating folders reported by the remote store.
	AddFolder(folder FolderRecord) error

	// MoveToFolder persists a folder assignment for the record's stable id.
	// An empty folderID clears the assignment. The underlying file is not
	// moved.
	MoveToFolder(record LocalRecord, folderID string) (LocalRecord, error)

	// DeleteFolder removes a folder record and deletes every document
	// assigned to it, returning the deleted documents so remote deletes can
	// be fanned out.
	DeleteFolder(folderID string) ([]LocalRecord, error)
}

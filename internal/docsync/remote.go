package docsync

import "context"

// RemoteStore is the adapter contract for the per-user remote object store.
// Objects are keyed by stable id; pushes are whole-object upserts (last
// writer wins). The remote store has no change feed, so reconciliation is a
// full key scan — acceptable for the low-cardinality object sets this system
// manages.
type RemoteStore interface {
	// CheckAvailability probes whether the remote store can be used right
	// now. A nil return means available; a non-nil return wraps
	// ErrRemoteUnavailable with a reason.
	CheckAvailability(ctx context.Context) error

	// Push upserts an object by its key. Creating and overwriting are the
	// same operation; pushing identical state redundantly is safe.
	Push(ctx context.Context, obj *RemoteObject) error

	// ListKeys returns the keys of all stored objects.
	ListKeys(ctx context.Context) ([]string, error)

	// Fetch returns the object stored under key, or (nil, nil) if absent.
	Fetch(ctx context.Context, key string) (*RemoteObject, error)

	// Delete removes the object stored under key. Deleting an absent key
	// succeeds.
	Delete(ctx context.Context, key string) error

	// PushFolder upserts a folder record so folder assignments survive
	// restore on another device.
	PushFolder(ctx context.Context, folder FolderRecord) error

	// ListFolders returns all stored folder records.
	ListFolders(ctx context.Context) ([]FolderRecord, error)

	// DeleteFolder removes a folder record. Deleting an absent folder
	// succeeds.
	DeleteFolder(ctx context.Context, folderID string) error
}

// AvailabilityChecker reports whether the remote store is usable, typically
// backed by a cached probe with a refresh interval so batch operations don't
// hammer the transport.
type AvailabilityChecker interface {
	// Availability returns nil when the remote is available, or an error
	// wrapping ErrRemoteUnavailable when it is not.
	Availability(ctx context.Context) error
}

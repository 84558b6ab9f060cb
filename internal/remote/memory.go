package remote

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// MemoryStore is an in-memory implementation of the RemoteStore interface.
// It is the reference implementation for tests and supports simulating
// outages and per-operation failures. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]*docsync.RemoteObject
	folders map[string]docsync.FolderRecord

	// availErr, when set, makes CheckAvailability report the store as
	// unavailable. pushErr and deleteErr fail the next matching operation.
	availErr  error
	pushErr   error
	deleteErr error
}

// NewMemoryStore creates a new in-memory remote store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*docsync.RemoteObject),
		folders: make(map[string]docsync.FolderRecord),
	}
}

// SetUnavailable simulates an outage; a nil reason restores availability.
func (m *MemoryStore) SetUnavailable(reason error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.availErr = reason
}

// FailPushes makes every Push fail with err until reset with nil.
func (m *MemoryStore) FailPushes(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushErr = err
}

// FailDeletes makes every Delete fail with err until reset with nil.
func (m *MemoryStore) FailDeletes(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteErr = err
}

// Object returns the stored object for key, or nil. Test helper.
func (m *MemoryStore) Object(key string) *docsync.RemoteObject {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.objects[key]
}

// CheckAvailability reports the simulated availability state.
func (m *MemoryStore) CheckAvailability(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.availErr != nil {
		return fmt.Errorf("%w: %v", docsync.ErrRemoteUnavailable, m.availErr)
	}
	return nil
}

// Push upserts an object by key.
func (m *MemoryStore) Push(_ context.Context, obj *docsync.RemoteObject) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushErr != nil {
		return m.pushErr
	}
	stored := *obj
	stored.Bytes = append([]byte(nil), obj.Bytes...)
	m.objects[obj.Key] = &stored
	return nil
}

// ListKeys returns all object keys, sorted for determinism.
func (m *MemoryStore) ListKeys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Fetch returns the object stored under key, or (nil, nil) if absent.
func (m *MemoryStore) Fetch(_ context.Context, key string) (*docsync.RemoteObject, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, nil
	}
	copied := *obj
	copied.Bytes = append([]byte(nil), obj.Bytes...)
	return &copied, nil
}

// Delete removes the object stored under key. Absent keys succeed.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.objects, key)
	return nil
}

// PushFolder upserts a folder record.
func (m *MemoryStore) PushFolder(_ context.Context, folder docsync.FolderRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pushErr != nil {
		return m.pushErr
	}
	m.folders[folder.ID] = folder
	return nil
}

// ListFolders returns all folder records, sorted by id for determinism.
func (m *MemoryStore) ListFolders(_ context.Context) ([]docsync.FolderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	folders := make([]docsync.FolderRecord, 0, len(m.folders))
	for _, f := range m.folders {
		folders = append(folders, f)
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	return folders, nil
}

// DeleteFolder removes a folder record. Absent folders succeed.
func (m *MemoryStore) DeleteFolder(_ context.Context, folderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.folders, folderID)
	return nil
}

// Compile-time check that MemoryStore implements docsync.RemoteStore.
var _ docsync.RemoteStore = (*MemoryStore)(nil)

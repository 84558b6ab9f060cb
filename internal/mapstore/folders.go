package mapstore

import (
	"fmt"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// FolderMap maps a document's stable id to its folder id. Keying by stable
// id (not name) is what keeps folder membership intact across renames.
//
// Persisted as a flat JSON object {"<stable id>": "<folder id>", ...}.
// Older installs persisted the same shape keyed by file name; MigrateIfLegacy
// rewrites such a store into the current format once, on load.
type FolderMap struct {
	path     string
	logger   docsync.Logger
	migrated bool
}

// NewFolderMap creates a folder map persisted at path.
func NewFolderMap(path string, logger docsync.Logger) *FolderMap {
	return &FolderMap{path: path, logger: logger}
}

// Get returns the folder id for stableID, or empty if there is no entry.
func (m *FolderMap) Get(stableID string) (string, error) {
	entries, err := m.load()
	if err != nil {
		return "", err
	}
	return entries[stableID], nil
}

// Set persists a folder assignment for stableID. An empty folderID removes
// the entry.
func (m *FolderMap) Set(stableID, folderID string) error {
	entries, err := m.load()
	if err != nil {
		return err
	}
	if folderID == "" {
		if _, ok := entries[stableID]; !ok {
			return nil
		}
		delete(entries, stableID)
	} else {
		entries[stableID] = folderID
	}
	return m.save(entries)
}

// Members returns the stable ids assigned to folderID.
func (m *FolderMap) Members(folderID string) ([]string, error) {
	entries, err := m.load()
	if err != nil {
		return nil, err
	}
	var ids []string
	for id, fid := range entries {
		if fid == folderID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// MigrateIfLegacy rewrites a legacy name-keyed store into the current
// stable-id-keyed format. A store is current iff every key has the textual
// shape of a stable id; otherwise every key is treated as a file name and
// resolved through the provided callback, which returns the stable id for a
// name whose file still exists, or ok=false to drop the entry.
//
// The migration runs at most once per load and is idempotent: a second run
// on an already-migrated store finds only stable-id keys and does nothing.
func (m *FolderMap) MigrateIfLegacy(resolve func(name string) (stableID string, ok bool)) error {
	if m.migrated {
		return nil
	}
	m.migrated = true

	entries, err := m.load()
	if err != nil {
		return err
	}

	legacy := false
	for key := range entries {
		if !docsync.IsStableID(key) {
			legacy = true
			break
		}
	}
	if !legacy {
		return nil
	}

	migrated := make(map[string]string, len(entries))
	for name, folderID := range entries {
		stableID, ok := resolve(name)
		if !ok {
			m.logger.Warn("dropping folder entry for missing file", "name", name)
			continue
		}
		migrated[stableID] = folderID
	}

	if err := m.save(migrated); err != nil {
		return err
	}
	m.logger.Info("folder map migrated to stable-id keys", "entries", len(migrated))
	return nil
}

func (m *FolderMap) load() (map[string]string, error) {
	entries := make(map[string]string)
	if _, err := readJSON(m.path, &entries); err != nil {
		return nil, fmt.Errorf("loading folder map: %w", err)
	}
	return entries, nil
}

func (m *FolderMap) save(entries map[string]string) error {
	if err := writeJSON(m.path, entries); err != nil {
		return fmt.Errorf("saving folder map: %w", err)
	}
	return nil
}

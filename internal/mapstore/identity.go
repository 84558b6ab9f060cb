package mapstore

import (
	"fmt"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// IdentityMap maps a document's current file name (including extension) to
// its stable id. There is at most one entry per name; a rename explicitly
// re-keys the entry, so no history of prior names is retained.
//
// Persisted as a flat JSON object {"<name>": "<stable id>", ...}.
type IdentityMap struct {
	path  string
	idgen docsync.IDGenerator
}

// NewIdentityMap creates an identity map persisted at path.
func NewIdentityMap(path string, idgen docsync.IDGenerator) *IdentityMap {
	return &IdentityMap{path: path, idgen: idgen}
}

// Resolve returns the stable id for name, minting and persisting a fresh one
// if none exists. The returned id is always usable: on a persistence failure
// the freshly minted id is still returned alongside the error, so the caller
// can keep working and a later write retries the persist.
func (m *IdentityMap) Resolve(name string) (string, error) {
	entries, err := m.load()
	if err != nil {
		return m.idgen.New(), err
	}
	if id, ok := entries[name]; ok {
		return id, nil
	}

	id := m.idgen.New()
	entries[name] = id
	if err := m.save(entries); err != nil {
		return id, err
	}
	return id, nil
}

// Lookup returns the stable id for name, or empty if there is no entry.
// It never creates an entry.
func (m *IdentityMap) Lookup(name string) (string, error) {
	entries, err := m.load()
	if err != nil {
		return "", err
	}
	return entries[name], nil
}

// Assign persists an explicit name → id entry, replacing any existing entry
// for that name. Used when materializing a restored document whose id must
// be preserved.
func (m *IdentityMap) Assign(name, stableID string) error {
	entries, err := m.load()
	if err != nil {
		return err
	}
	entries[name] = stableID
	return m.save(entries)
}

// Rekey moves the entry for oldName to newName. If oldName has no entry this
// is a no-op, not an error: callers that need an id call Resolve first, and
// minting here would silently attach a fresh id to the new name.
func (m *IdentityMap) Rekey(oldName, newName string) error {
	entries, err := m.load()
	if err != nil {
		return err
	}
	id, ok := entries[oldName]
	if !ok {
		return nil
	}
	delete(entries, oldName)
	entries[newName] = id
	return m.save(entries)
}

// Remove deletes the entry for name. Removing an absent entry succeeds.
func (m *IdentityMap) Remove(name string) error {
	entries, err := m.load()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return m.save(entries)
}

func (m *IdentityMap) load() (map[string]string, error) {
	entries := make(map[string]string)
	if _, err := readJSON(m.path, &entries); err != nil {
		return nil, fmt.Errorf("loading identity map: %w", err)
	}
	return entries, nil
}

func (m *IdentityMap) save(entries map[string]string) error {
	if err := writeJSON(m.path, entries); err != nil {
		return fmt.Errorf("saving identity map: %w", err)
	}
	return nil
}

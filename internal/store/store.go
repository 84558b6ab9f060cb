// Package store owns the flat local directory that holds documents. All
// other components see only the LocalRecord snapshots it returns. Operations
// are expected to be invoked from a single serialized owner; the read-
// modify-write cycles on the map files need no locking beyond that.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tuncaytekle/docsync/internal/docsync"
	"github.com/tuncaytekle/docsync/internal/mapstore"
)

// Store is the local object store: the sole owner of the documents
// directory and of the identity and folder maps layered over it.
type Store struct {
	dir        string
	ids        *mapstore.IdentityMap
	folderMap  *mapstore.FolderMap
	folderList *mapstore.FolderList
	idgen      docsync.IDGenerator
	clock      docsync.Clock
	logger     docsync.Logger
}

var _ docsync.LocalStore = (*Store)(nil)

// NewStore creates a Store over dir, creating the directory if needed, and
// runs the one-time folder map migration before any other access.
func NewStore(dir string, ids *mapstore.IdentityMap, folderMap *mapstore.FolderMap, folderList *mapstore.FolderList, idgen docsync.IDGenerator, clock docsync.Clock, logger docsync.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}

	s := &Store{
		dir:        dir,
		ids:        ids,
		folderMap:  folderMap,
		folderList: folderList,
		idgen:      idgen,
		clock:      clock,
		logger:     logger,
	}

	if err := folderMap.MigrateIfLegacy(s.resolveExisting); err != nil {
		// A failed migration must not block the app; the legacy store is
		// still readable and migration retries on the next load.
		logger.Warn("folder map migration failed", "error", err)
	}

	return s, nil
}

// resolveExisting maps a legacy folder-map key (a file name) to a stable id,
// minting one if the file still exists in the documents directory.
func (s *Store) resolveExisting(name string) (string, bool) {
	if _, err := os.Stat(filepath.Join(s.dir, name)); err != nil {
		return "", false
	}
	id, err := s.ids.Resolve(name)
	if err != nil {
		s.logger.Warn("resolving identity during migration", "name", name, "error", err)
	}
	return id, true
}

// Dir returns the documents directory the store owns.
func (s *Store) Dir() string { return s.dir }

// Enumerate lists all documents with filesystem metadata, stable ids, and
// folder assignments. Page counts are left at 0; counting is deferred to a
// background sweep. An unreadable directory yields an empty listing rather
// than an error so the rest of the app keeps working.
func (s *Store) Enumerate() ([]docsync.LocalRecord, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("documents directory unreadable", "dir", s.dir, "error", err)
		return nil, nil
	}

	var records []docsync.LocalRecord
	for _, entry := range entries {
		if entry.IsDir() || !isDocumentName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			s.logger.Warn("stat failed during enumeration", "name", entry.Name(), "error", err)
			continue
		}

		// Resolve creates an entry when absent, which is how pre-existing
		// files get identities on first run.
		id, err := s.ids.Resolve(entry.Name())
		if err != nil {
			s.logger.Warn("identity map write failed", "name", entry.Name(), "error", err)
		}
		folderID, err := s.folderMap.Get(id)
		if err != nil {
			s.logger.Warn("folder map read failed", "name", entry.Name(), "error", err)
		}

		records = append(records, s.record(entry.Name(), id, folderID, info.ModTime(), info.Size()))
	}
	return records, nil
}

// Create moves a document from a temporary path into the store under a
// sanitized, collision-free name and mints a fresh stable id for it.
func (s *Store) Create(sourceTmpPath, suggestedName string) (docsync.LocalRecord, error) {
	name, err := collisionFreeName(s.dir, sanitizeName(suggestedName))
	if err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("choosing destination name: %w", err)
	}
	dest := filepath.Join(s.dir, name)

	if err := os.Rename(sourceTmpPath, dest); err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("moving document into place: %w", err)
	}

	id := s.idgen.New()
	if err := s.ids.Assign(name, id); err != nil {
		// The document is usable with the in-memory id; the entry is
		// persisted on the next enumeration.
		s.logger.Warn("identity map write failed", "name", name, "error", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("stat new document: %w", err)
	}
	s.logger.Info("document created", "name", name, "id", id)
	return s.record(name, id, "", info.ModTime(), info.Size()), nil
}

// ImportExternal copies externally owned documents into the store. Sources
// are copied, never moved: they may be security-scoped or otherwise not ours
// to consume. Inputs without the document extension are skipped, and one
// failing item does not abort the batch. Only an unresolvable destination
// directory fails the operation as a whole.
func (s *Store) ImportExternal(sourcePaths []string) ([]docsync.LocalRecord, error) {
	if _, err := os.Stat(s.dir); err != nil {
		return nil, fmt.Errorf("resolving documents directory: %w", err)
	}

	var records []docsync.LocalRecord
	for _, src := range sourcePaths {
		if !isDocumentName(src) {
			s.logger.Debug("skipping non-document import", "path", src)
			continue
		}
		rec, err := s.importOne(src)
		if err != nil {
			s.logger.Warn("import failed", "path", src, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Store) importOne(src string) (docsync.LocalRecord, error) {
	name, err := collisionFreeName(s.dir, sanitizeName(filepath.Base(src)))
	if err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("choosing destination name: %w", err)
	}
	dest := filepath.Join(s.dir, name)

	if err := copyFile(src, dest); err != nil {
		return docsync.LocalRecord{}, err
	}

	id := s.idgen.New()
	if err := s.ids.Assign(name, id); err != nil {
		s.logger.Warn("identity map write failed", "name", name, "error", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("stat imported document: %w", err)
	}
	s.logger.Info("document imported", "name", name, "id", id)
	return s.record(name, id, "", info.ModTime(), info.Size()), nil
}

// Rename gives the document a new sanitized name, re-keying its identity map
// entry. The stable id is carried over unchanged — this operation never
// mints. Renaming to the current name is a no-op.
func (s *Store) Rename(record docsync.LocalRecord, newName string) (docsync.LocalRecord, error) {
	base := sanitizeName(newName)
	if base == record.DisplayName {
		return record, nil
	}

	name, err := collisionFreeName(s.dir, base)
	if err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("choosing destination name: %w", err)
	}
	dest := filepath.Join(s.dir, name)

	if err := os.Rename(record.Path, dest); err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("renaming document: %w", err)
	}

	if err := s.ids.Rekey(record.Name, name); err != nil {
		s.logger.Warn("identity map rekey failed", "from", record.Name, "to", name, "error", err)
	}

	s.logger.Info("document renamed", "from", record.Name, "to", name, "id", record.StableID)
	renamed := record
	renamed.Path = dest
	renamed.Name = name
	renamed.DisplayName = docsync.DisplayName(name)
	return renamed, nil
}

// Delete removes the document and purges its map entries. The stable id is
// looked up before the file is removed because the folder map is keyed by
// id. A missing identity entry is a data-integrity anomaly: it is logged,
// and the deletion proceeds best-effort — the file is gone either way.
func (s *Store) Delete(record docsync.LocalRecord) error {
	id, err := s.ids.Lookup(record.Name)
	if err != nil {
		s.logger.Warn("identity lookup before delete failed", "name", record.Name, "error", err)
	}

	if err := os.Remove(record.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := s.ids.Remove(record.Name); err != nil {
		s.logger.Warn("identity map remove failed", "name", record.Name, "error", err)
	}

	if id == "" {
		s.logger.Warn("deleted document had no identity entry", "name", record.Name)
		return nil
	}
	if err := s.folderMap.Set(id, ""); err != nil {
		s.logger.Warn("folder map cleanup failed", "id", id, "error", err)
	}

	s.logger.Info("document deleted", "name", record.Name, "id", id)
	return nil
}

// MoveToFolder persists a folder assignment keyed by the record's stable id.
// Folders are a logical grouping over the flat directory; the file itself
// does not move. An empty folderID clears the assignment.
func (s *Store) MoveToFolder(record docsync.LocalRecord, folderID string) (docsync.LocalRecord, error) {
	if folderID != "" {
		folder, err := s.folderList.Find(folderID)
		if err != nil {
			return docsync.LocalRecord{}, err
		}
		if folder == nil {
			return docsync.LocalRecord{}, fmt.Errorf("folder %s: %w", folderID, docsync.ErrNotFound)
		}
	}

	if err := s.folderMap.Set(record.StableID, folderID); err != nil {
		return docsync.LocalRecord{}, err
	}
	return record.WithFolder(folderID), nil
}

// ReadDocument returns the document's current bytes.
func (s *Store) ReadDocument(record docsync.LocalRecord) ([]byte, error) {
	data, err := os.ReadFile(record.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document %s: %w", record.Name, docsync.ErrNotFound)
		}
		return nil, fmt.Errorf("reading document %s: %w", record.Name, err)
	}
	return data, nil
}

// StoreRestored materializes a document fetched from the remote store under
// a collision-free local name, preserving the given stable id instead of
// minting one. If the identity entry cannot be persisted the file is removed
// again: leaving it without its id would mint a fresh one on the next
// enumeration and push a duplicate remote record.
func (s *Store) StoreRestored(data []byte, preferredName, stableID string) (docsync.LocalRecord, error) {
	name, err := collisionFreeName(s.dir, sanitizeName(preferredName))
	if err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("choosing destination name: %w", err)
	}
	dest := filepath.Join(s.dir, name)

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("writing restored document: %w", err)
	}

	if err := s.ids.Assign(name, stableID); err != nil {
		os.Remove(dest)
		return docsync.LocalRecord{}, fmt.Errorf("recording restored identity: %w", err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return docsync.LocalRecord{}, fmt.Errorf("stat restored document: %w", err)
	}
	s.logger.Info("document restored", "name", name, "id", stableID)
	return s.record(name, stableID, "", info.ModTime(), info.Size()), nil
}

func (s *Store) record(name, id, folderID string, modifiedAt time.Time, size int64) docsync.LocalRecord {
	return docsync.LocalRecord{
		Path:        filepath.Join(s.dir, name),
		Name:        name,
		StableID:    id,
		DisplayName: docsync.DisplayName(name),
		ModifiedAt:  modifiedAt,
		SizeBytes:   size,
		FolderID:    folderID,
	}
}

func isDocumentName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), docsync.DocumentExt)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copying document: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("closing destination: %w", err)
	}
	return nil
}

package store

import (
	"fmt"
	"strings"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// CreateFolder creates a new folder record with a generated id.
func (s *Store) CreateFolder(name string) (docsync.FolderRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return docsync.FolderRecord{}, fmt.Errorf("folder name is empty")
	}

	folder := docsync.FolderRecord{
		ID:        s.idgen.New(),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.folderList.Add(folder); err != nil {
		return docsync.FolderRecord{}, err
	}
	s.logger.Info("folder created", "name", name, "id", folder.ID)
	return folder, nil
}

// AddFolder inserts a folder record with its identity already assigned.
// Used when recreating folders reported by the remote store; adding an id
// that already exists locally is a no-op.
func (s *Store) AddFolder(folder docsync.FolderRecord) error {
	return s.folderList.Add(folder)
}

// Folders returns all folder records.
func (s *Store) Folders() ([]docsync.FolderRecord, error) {
	return s.folderList.All()
}

// RenameFolder updates a folder's display name. The folder id is immutable.
func (s *Store) RenameFolder(folderID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("folder name is empty")
	}
	return s.folderList.Rename(folderID, name)
}

// DeleteFolder removes the folder record and deletes every document assigned
// to it, locally. No orphaned folder references may persist, so the cascade
// always completes locally; remote propagation is the coordinator's concern
// and the deleted records are returned for that fan-out.
func (s *Store) DeleteFolder(folderID string) ([]docsync.LocalRecord, error) {
	folder, err := s.folderList.Find(folderID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, fmt.Errorf("folder %s: %w", folderID, docsync.ErrNotFound)
	}

	records, err := s.Enumerate()
	if err != nil {
		return nil, err
	}

	var deleted []docsync.LocalRecord
	for _, rec := range records {
		if rec.FolderID != folderID {
			continue
		}
		if err := s.Delete(rec); err != nil {
			s.logger.Warn("cascade delete failed", "name", rec.Name, "error", err)
			continue
		}
		deleted = append(deleted, rec)
	}

	if err := s.folderList.Remove(folderID); err != nil {
		return deleted, err
	}
	s.logger.Info("folder deleted", "id", folderID, "documents", len(deleted))
	return deleted, nil
}

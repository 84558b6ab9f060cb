package mapstore

import (
	"fmt"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// FolderList persists the user's folder records as a JSON array of
// {id, name, createdAt} objects, in creation order.
type FolderList struct {
	path string
}

// NewFolderList creates a folder list persisted at path.
func NewFolderList(path string) *FolderList {
	return &FolderList{path: path}
}

// All returns every folder record.
func (l *FolderList) All() ([]docsync.FolderRecord, error) {
	return l.load()
}

// Find returns the folder with the given id, or (nil, nil) if absent.
func (l *FolderList) Find(folderID string) (*docsync.FolderRecord, error) {
	folders, err := l.load()
	if err != nil {
		return nil, err
	}
	for i := range folders {
		if folders[i].ID == folderID {
			return &folders[i], nil
		}
	}
	return nil, nil
}

// Add appends a folder record. Adding an id that already exists is a no-op,
// so recreating folders reported by the remote store is safe.
func (l *FolderList) Add(folder docsync.FolderRecord) error {
	folders, err := l.load()
	if err != nil {
		return err
	}
	for _, f := range folders {
		if f.ID == folder.ID {
			return nil
		}
	}
	return l.save(append(folders, folder))
}

// Rename updates a folder's display name.
func (l *FolderList) Rename(folderID, name string) error {
	folders, err := l.load()
	if err != nil {
		return err
	}
	for i := range folders {
		if folders[i].ID == folderID {
			folders[i].Name = name
			return l.save(folders)
		}
	}
	return fmt.Errorf("renaming folder %s: %w", folderID, docsync.ErrNotFound)
}

// Remove deletes a folder record. Removing an absent id succeeds.
func (l *FolderList) Remove(folderID string) error {
	folders, err := l.load()
	if err != nil {
		return err
	}
	kept := folders[:0]
	for _, f := range folders {
		if f.ID != folderID {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(folders) {
		return nil
	}
	return l.save(kept)
}

func (l *FolderList) load() ([]docsync.FolderRecord, error) {
	var folders []docsync.FolderRecord
	if _, err := readJSON(l.path, &folders); err != nil {
		return nil, fmt.Errorf("loading folder list: %w", err)
	}
	return folders, nil
}

func (l *FolderList) save(folders []docsync.FolderRecord) error {
	if err := writeJSON(l.path, folders); err != nil {
		return fmt.Errorf("saving folder list: %w", err)
	}
	return nil
}

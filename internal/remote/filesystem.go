package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// FileSystemStore is a filesystem-backed implementation of the RemoteStore
// interface, useful for local mirrors and integration tests. Records are
// stored one JSON document per object:
//
//	<root>/
//	  objects/
//	    <stableId>.json   (metadata plus base64 document bytes)
//	  folders/
//	    <folderId>.json   (folder record)
type FileSystemStore struct {
	root       string
	objectsDir string
	foldersDir string
}

// NewFileSystemStore creates a filesystem remote store rooted at the given
// path.
func NewFileSystemStore(root string) (*FileSystemStore, error) {
	objectsDir := filepath.Join(root, "objects")
	foldersDir := filepath.Join(root, "folders")

	if err := os.MkdirAll(objectsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create objects directory: %w", err)
	}
	if err := os.MkdirAll(foldersDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create folders directory: %w", err)
	}

	return &FileSystemStore{
		root:       root,
		objectsDir: objectsDir,
		foldersDir: foldersDir,
	}, nil
}

// CheckAvailability verifies the store directories are accessible.
func (s *FileSystemStore) CheckAvailability(_ context.Context) error {
	for _, dir := range []string{s.root, s.objectsDir, s.foldersDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("%w: %v", docsync.ErrRemoteUnavailable, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: not a directory: %s", docsync.ErrRemoteUnavailable, dir)
		}
	}
	return nil
}

// Push upserts an object by key using an atomic write (temp file + rename).
func (s *FileSystemStore) Push(_ context.Context, obj *docsync.RemoteObject) error {
	return writeRecord(filepath.Join(s.objectsDir, obj.Key+".json"), obj)
}

// ListKeys returns the keys of all stored objects.
func (s *FileSystemStore) ListKeys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.objectsDir)
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), ".json"))
	}
	return keys, nil
}

// Fetch returns the object stored under key, or (nil, nil) if absent.
func (s *FileSystemStore) Fetch(_ context.Context, key string) (*docsync.RemoteObject, error) {
	var obj docsync.RemoteObject
	found, err := readRecord(filepath.Join(s.objectsDir, key+".json"), &obj)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &obj, nil
}

// Delete removes the object stored under key. Absent keys succeed.
func (s *FileSystemStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(s.objectsDir, key+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// PushFolder upserts a folder record.
func (s *FileSystemStore) PushFolder(_ context.Context, folder docsync.FolderRecord) error {
	return writeRecord(filepath.Join(s.foldersDir, folder.ID+".json"), folder)
}

// ListFolders returns all stored folder records.
func (s *FileSystemStore) ListFolders(_ context.Context) ([]docsync.FolderRecord, error) {
	entries, err := os.ReadDir(s.foldersDir)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	var folders []docsync.FolderRecord
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		var folder docsync.FolderRecord
		found, err := readRecord(filepath.Join(s.foldersDir, e.Name()), &folder)
		if err != nil || !found {
			continue
		}
		folders = append(folders, folder)
	}
	return folders, nil
}

// DeleteFolder removes a folder record. Absent folders succeed.
func (s *FileSystemStore) DeleteFolder(_ context.Context, folderID string) error {
	err := os.Remove(filepath.Join(s.foldersDir, folderID+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting folder %s: %w", folderID, err)
	}
	return nil
}

func writeRecord(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing record: %w", err)
	}
	return nil
}

func readRecord(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading record: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing record: %w", err)
	}
	return true, nil
}

// Compile-time check that FileSystemStore implements docsync.RemoteStore.
var _ docsync.RemoteStore = (*FileSystemStore)(nil)

package remote_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/tuncaytekle/docsync/internal/docsync"
	"github.com/tuncaytekle/docsync/internal/remote"
)

func newFSStore(t *testing.T) *remote.FileSystemStore {
	t.Helper()
	s, err := remote.NewFileSystemStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemStore() error = %v", err)
	}
	return s
}

func testObject(key string) *docsync.RemoteObject {
	return &docsync.RemoteObject{
		Key:        key,
		Name:       "Doc.pdf",
		ModifiedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		SizeBytes:  4,
		Bytes:      []byte("%PDF"),
	}
}

func TestFileSystemStore_Objects(t *testing.T) {
	ctx := context.Background()

	t.Run("push then fetch round-trips", func(t *testing.T) {
		s := newFSStore(t)
		obj := testObject("key-1")
		obj.FolderID = "folder-1"

		if err := s.Push(ctx, obj); err != nil {
			t.Fatalf("Push() error = %v", err)
		}

		got, err := s.Fetch(ctx, "key-1")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got == nil {
			t.Fatal("Fetch() = nil, want object")
		}
		if got.Name != obj.Name || got.FolderID != obj.FolderID || string(got.Bytes) != "%PDF" {
			t.Errorf("Fetch() = %+v", got)
		}
	})

	t.Run("push is an upsert", func(t *testing.T) {
		s := newFSStore(t)
		s.Push(ctx, testObject("key-1"))

		updated := testObject("key-1")
		updated.Name = "Renamed.pdf"
		if err := s.Push(ctx, updated); err != nil {
			t.Fatalf("second Push() error = %v", err)
		}

		got, _ := s.Fetch(ctx, "key-1")
		if got.Name != "Renamed.pdf" {
			t.Errorf("Name = %q, want Renamed.pdf", got.Name)
		}

		keys, _ := s.ListKeys(ctx)
		if len(keys) != 1 {
			t.Errorf("ListKeys() = %v, want one key", keys)
		}
	})

	t.Run("fetch of an absent key returns nil", func(t *testing.T) {
		s := newFSStore(t)

		got, err := s.Fetch(ctx, "missing")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if got != nil {
			t.Errorf("Fetch() = %+v, want nil", got)
		}
	})

	t.Run("delete of an absent key succeeds", func(t *testing.T) {
		s := newFSStore(t)

		if err := s.Delete(ctx, "missing"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
	})

	t.Run("list keys", func(t *testing.T) {
		s := newFSStore(t)
		s.Push(ctx, testObject("key-a"))
		s.Push(ctx, testObject("key-b"))

		keys, err := s.ListKeys(ctx)
		if err != nil {
			t.Fatalf("ListKeys() error = %v", err)
		}
		if len(keys) != 2 {
			t.Errorf("ListKeys() = %v, want 2 keys", keys)
		}
	})
}

func TestFileSystemStore_Folders(t *testing.T) {
	ctx := context.Background()
	s := newFSStore(t)

	folder := docsync.FolderRecord{
		ID:        "folder-1",
		Name:      "Taxes",
		CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}

	if err := s.PushFolder(ctx, folder); err != nil {
		t.Fatalf("PushFolder() error = %v", err)
	}

	folders, err := s.ListFolders(ctx)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 1 || folders[0] != folder {
		t.Errorf("ListFolders() = %v, want [%v]", folders, folder)
	}

	if err := s.DeleteFolder(ctx, "folder-1"); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
	folders, _ = s.ListFolders(ctx)
	if len(folders) != 0 {
		t.Errorf("ListFolders() after delete = %v, want empty", folders)
	}
}

func TestFileSystemStore_CheckAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("available when directories exist", func(t *testing.T) {
		s := newFSStore(t)
		if err := s.CheckAvailability(ctx); err != nil {
			t.Errorf("CheckAvailability() error = %v", err)
		}
	})

	t.Run("unavailable when root is gone", func(t *testing.T) {
		root := t.TempDir()
		s, err := remote.NewFileSystemStore(root)
		if err != nil {
			t.Fatal(err)
		}
		os.RemoveAll(root)

		err = s.CheckAvailability(ctx)
		if err == nil {
			t.Fatal("CheckAvailability() = nil, want error")
		}
		if !errors.Is(err, docsync.ErrRemoteUnavailable) {
			t.Errorf("error %v does not wrap ErrRemoteUnavailable", err)
		}
	})
}

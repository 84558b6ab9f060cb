package remote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tuncaytekle/docsync/internal/docsync"
	"github.com/tuncaytekle/docsync/internal/remote"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("push copies bytes", func(t *testing.T) {
		s := remote.NewMemoryStore()
		data := []byte("%PDF")
		obj := testObject("key-1")
		obj.Bytes = data

		if err := s.Push(ctx, obj); err != nil {
			t.Fatalf("Push() error = %v", err)
		}
		data[0] = 'X'

		got, _ := s.Fetch(ctx, "key-1")
		if string(got.Bytes) != "%PDF" {
			t.Errorf("stored bytes = %q, want %%PDF", got.Bytes)
		}
	})

	t.Run("fetch of an absent key returns nil", func(t *testing.T) {
		s := remote.NewMemoryStore()
		got, err := s.Fetch(ctx, "missing")
		if err != nil || got != nil {
			t.Errorf("Fetch() = (%v, %v), want (nil, nil)", got, err)
		}
	})

	t.Run("list keys is sorted", func(t *testing.T) {
		s := remote.NewMemoryStore()
		s.Push(ctx, testObject("key-b"))
		s.Push(ctx, testObject("key-a"))

		keys, err := s.ListKeys(ctx)
		if err != nil {
			t.Fatalf("ListKeys() error = %v", err)
		}
		if len(keys) != 2 || keys[0] != "key-a" || keys[1] != "key-b" {
			t.Errorf("ListKeys() = %v, want [key-a key-b]", keys)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := remote.NewMemoryStore()
		s.Push(ctx, testObject("key-1"))

		if err := s.Delete(ctx, "key-1"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := s.Delete(ctx, "key-1"); err != nil {
			t.Fatalf("second Delete() error = %v", err)
		}
		if s.Object("key-1") != nil {
			t.Error("object still present after delete")
		}
	})

	t.Run("simulated outage wraps ErrRemoteUnavailable", func(t *testing.T) {
		s := remote.NewMemoryStore()
		s.SetUnavailable(errors.New("network down"))

		err := s.CheckAvailability(ctx)
		if !errors.Is(err, docsync.ErrRemoteUnavailable) {
			t.Errorf("CheckAvailability() = %v, want ErrRemoteUnavailable", err)
		}

		s.SetUnavailable(nil)
		if err := s.CheckAvailability(ctx); err != nil {
			t.Errorf("CheckAvailability() after recovery = %v", err)
		}
	})

	t.Run("injected push failure", func(t *testing.T) {
		s := remote.NewMemoryStore()
		boom := errors.New("boom")
		s.FailPushes(boom)

		if err := s.Push(ctx, testObject("key-1")); !errors.Is(err, boom) {
			t.Errorf("Push() = %v, want %v", err, boom)
		}

		s.FailPushes(nil)
		if err := s.Push(ctx, testObject("key-1")); err != nil {
			t.Errorf("Push() after reset = %v", err)
		}
	})
}

func TestMemoryStore_Folders(t *testing.T) {
	ctx := context.Background()
	s := remote.NewMemoryStore()

	s.PushFolder(ctx, docsync.FolderRecord{ID: "folder-b", Name: "Receipts"})
	s.PushFolder(ctx, docsync.FolderRecord{ID: "folder-a", Name: "Taxes"})

	folders, err := s.ListFolders(ctx)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 2 || folders[0].ID != "folder-a" || folders[1].ID != "folder-b" {
		t.Errorf("ListFolders() = %v, want sorted by id", folders)
	}

	if err := s.DeleteFolder(ctx, "folder-a"); err != nil {
		t.Fatalf("DeleteFolder() error = %v", err)
	}
	folders, _ = s.ListFolders(ctx)
	if len(folders) != 1 || folders[0].ID != "folder-b" {
		t.Errorf("ListFolders() after delete = %v", folders)
	}
}

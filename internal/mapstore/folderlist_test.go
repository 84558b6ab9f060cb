package mapstore_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/tuncaytekle/docsync/internal/docsync"
	"github.com/tuncaytekle/docsync/internal/mapstore"
)

func TestFolderList(t *testing.T) {
	newList := func(t *testing.T) *mapstore.FolderList {
		t.Helper()
		return mapstore.NewFolderList(filepath.Join(t.TempDir(), "folderlist.json"))
	}

	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	t.Run("add and list", func(t *testing.T) {
		l := newList(t)

		f := docsync.FolderRecord{ID: folderF, Name: "Taxes", CreatedAt: created}
		if err := l.Add(f); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		all, err := l.All()
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		if len(all) != 1 || all[0] != f {
			t.Errorf("All() = %v, want [%v]", all, f)
		}
	})

	t.Run("add with an existing id is a no-op", func(t *testing.T) {
		l := newList(t)

		l.Add(docsync.FolderRecord{ID: folderF, Name: "Taxes", CreatedAt: created})
		l.Add(docsync.FolderRecord{ID: folderF, Name: "Other", CreatedAt: created})

		all, _ := l.All()
		if len(all) != 1 {
			t.Fatalf("All() returned %d folders, want 1", len(all))
		}
		if all[0].Name != "Taxes" {
			t.Errorf("duplicate Add overwrote name: %q", all[0].Name)
		}
	})

	t.Run("find", func(t *testing.T) {
		l := newList(t)
		l.Add(docsync.FolderRecord{ID: folderF, Name: "Taxes", CreatedAt: created})

		f, err := l.Find(folderF)
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if f == nil || f.Name != "Taxes" {
			t.Errorf("Find() = %v, want Taxes", f)
		}

		missing, err := l.Find(folderG)
		if err != nil {
			t.Fatalf("Find(missing) error = %v", err)
		}
		if missing != nil {
			t.Errorf("Find(missing) = %v, want nil", missing)
		}
	})

	t.Run("rename", func(t *testing.T) {
		l := newList(t)
		l.Add(docsync.FolderRecord{ID: folderF, Name: "Taxes", CreatedAt: created})

		if err := l.Rename(folderF, "Taxes 2024"); err != nil {
			t.Fatalf("Rename() error = %v", err)
		}
		f, _ := l.Find(folderF)
		if f.Name != "Taxes 2024" {
			t.Errorf("name = %q, want Taxes 2024", f.Name)
		}

		if err := l.Rename(folderG, "x"); err == nil {
			t.Error("Rename() of missing folder succeeded")
		}
	})

	t.Run("remove", func(t *testing.T) {
		l := newList(t)
		l.Add(docsync.FolderRecord{ID: folderF, Name: "Taxes", CreatedAt: created})

		if err := l.Remove(folderF); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		all, _ := l.All()
		if len(all) != 0 {
			t.Errorf("All() after Remove() = %v, want empty", all)
		}

		// Removing an absent folder succeeds.
		if err := l.Remove(folderF); err != nil {
			t.Fatalf("second Remove() error = %v", err)
		}
	})
}

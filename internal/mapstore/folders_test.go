package mapstore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tuncaytekle/docsync/internal/docsync"
	"github.com/tuncaytekle/docsync/internal/mapstore"
)

const (
	idA     = "aaaaaaaa-1111-4111-8111-111111111111"
	idB     = "bbbbbbbb-2222-4222-8222-222222222222"
	folderF = "f0f0f0f0-3333-4333-8333-333333333333"
	folderG = "0d0d0d0d-4444-4444-8444-444444444444"
)

func newFolderMap(t *testing.T) (*mapstore.FolderMap, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folders.json")
	return mapstore.NewFolderMap(path, docsync.NewNopLogger()), path
}

func TestFolderMap_GetSet(t *testing.T) {
	t.Run("get returns empty when unset", func(t *testing.T) {
		m, _ := newFolderMap(t)

		got, err := m.Get(idA)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != "" {
			t.Errorf("Get() = %q, want empty", got)
		}
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		m, _ := newFolderMap(t)

		if err := m.Set(idA, folderF); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, _ := m.Get(idA)
		if got != folderF {
			t.Errorf("Get() = %q, want %q", got, folderF)
		}
	})

	t.Run("empty folder id removes the entry", func(t *testing.T) {
		m, _ := newFolderMap(t)

		m.Set(idA, folderF)
		if err := m.Set(idA, ""); err != nil {
			t.Fatalf("Set(empty) error = %v", err)
		}
		got, _ := m.Get(idA)
		if got != "" {
			t.Errorf("Get() after removal = %q, want empty", got)
		}
	})
}

func TestFolderMap_Members(t *testing.T) {
	m, _ := newFolderMap(t)

	m.Set(idA, folderF)
	m.Set(idB, folderG)

	members, err := m.Members(folderF)
	if err != nil {
		t.Fatalf("Members() error = %v", err)
	}
	if len(members) != 1 || members[0] != idA {
		t.Errorf("Members(%s) = %v, want [%s]", folderF, members, idA)
	}
}

func TestFolderMap_MigrateIfLegacy(t *testing.T) {
	writeStore := func(t *testing.T, entries map[string]string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "folders.json")
		data, _ := json.Marshal(entries)
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	readStore := func(t *testing.T, path string) map[string]string {
		t.Helper()
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var entries map[string]string
		if err := json.Unmarshal(data, &entries); err != nil {
			t.Fatal(err)
		}
		return entries
	}

	resolve := func(name string) (string, bool) {
		switch name {
		case "Invoice.pdf":
			return idA, true
		case "Report.pdf":
			return idB, true
		default:
			return "", false
		}
	}

	t.Run("rewrites a name-keyed store to stable-id keys", func(t *testing.T) {
		path := writeStore(t, map[string]string{
			"Invoice.pdf": folderF,
			"Report.pdf":  folderG,
		})
		m := mapstore.NewFolderMap(path, docsync.NewNopLogger())

		if err := m.MigrateIfLegacy(resolve); err != nil {
			t.Fatalf("MigrateIfLegacy() error = %v", err)
		}

		want := map[string]string{idA: folderF, idB: folderG}
		if got := readStore(t, path); !reflect.DeepEqual(got, want) {
			t.Errorf("migrated store = %v, want %v", got, want)
		}
	})

	t.Run("drops entries for files that no longer exist", func(t *testing.T) {
		path := writeStore(t, map[string]string{
			"Invoice.pdf": folderF,
			"Gone.pdf":    folderG,
		})
		m := mapstore.NewFolderMap(path, docsync.NewNopLogger())

		if err := m.MigrateIfLegacy(resolve); err != nil {
			t.Fatalf("MigrateIfLegacy() error = %v", err)
		}

		want := map[string]string{idA: folderF}
		if got := readStore(t, path); !reflect.DeepEqual(got, want) {
			t.Errorf("migrated store = %v, want %v", got, want)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		path := writeStore(t, map[string]string{
			"Invoice.pdf": folderF,
		})

		first := mapstore.NewFolderMap(path, docsync.NewNopLogger())
		if err := first.MigrateIfLegacy(resolve); err != nil {
			t.Fatalf("first migration error = %v", err)
		}
		after := readStore(t, path)

		// A fresh load over the migrated store must be a no-op.
		second := mapstore.NewFolderMap(path, docsync.NewNopLogger())
		if err := second.MigrateIfLegacy(func(string) (string, bool) {
			t.Error("resolve called on an already-migrated store")
			return "", false
		}); err != nil {
			t.Fatalf("second migration error = %v", err)
		}

		if got := readStore(t, path); !reflect.DeepEqual(got, after) {
			t.Errorf("second migration changed store: %v != %v", got, after)
		}
	})

	t.Run("treats an empty store as current", func(t *testing.T) {
		m, _ := newFolderMap(t)

		if err := m.MigrateIfLegacy(func(string) (string, bool) {
			t.Error("resolve called on an empty store")
			return "", false
		}); err != nil {
			t.Fatalf("MigrateIfLegacy() error = %v", err)
		}
	})

	t.Run("runs at most once per load", func(t *testing.T) {
		path := writeStore(t, map[string]string{"Invoice.pdf": folderF})
		m := mapstore.NewFolderMap(path, docsync.NewNopLogger())

		calls := 0
		counting := func(name string) (string, bool) {
			calls++
			return resolve(name)
		}

		m.MigrateIfLegacy(counting)
		m.MigrateIfLegacy(counting)

		if calls != 1 {
			t.Errorf("resolve called %d times, want 1", calls)
		}
	})
}

package mapstore_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/tuncaytekle/docsync/internal/mapstore"
	"github.com/tuncaytekle/docsync/internal/testutil"
)

func newIdentityMap(t *testing.T) *mapstore.IdentityMap {
	t.Helper()
	path := filepath.Join(t.TempDir(), "identity.json")
	return mapstore.NewIdentityMap(path, testutil.NewStubIDGenerator())
}

func TestIdentityMap_Resolve(t *testing.T) {
	t.Run("mints an id for a new name", func(t *testing.T) {
		m := newIdentityMap(t)

		id, err := m.Resolve("Invoice.pdf")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if id == "" {
			t.Fatal("Resolve() returned empty id")
		}
	})

	t.Run("returns the same id on repeated calls", func(t *testing.T) {
		m := newIdentityMap(t)

		first, err := m.Resolve("Invoice.pdf")
		if err != nil {
			t.Fatalf("first Resolve() error = %v", err)
		}
		second, err := m.Resolve("Invoice.pdf")
		if err != nil {
			t.Fatalf("second Resolve() error = %v", err)
		}
		if first != second {
			t.Errorf("Resolve() minted a new id: %s != %s", first, second)
		}
	})

	t.Run("distinct names get distinct ids", func(t *testing.T) {
		m := newIdentityMap(t)

		a, _ := m.Resolve("A.pdf")
		b, _ := m.Resolve("B.pdf")
		if a == b {
			t.Errorf("two names share id %s", a)
		}
	})
}

func TestIdentityMap_Lookup(t *testing.T) {
	t.Run("returns empty for an unknown name", func(t *testing.T) {
		m := newIdentityMap(t)

		id, err := m.Lookup("Missing.pdf")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if id != "" {
			t.Errorf("Lookup() = %q, want empty", id)
		}
	})

	t.Run("does not create an entry", func(t *testing.T) {
		m := newIdentityMap(t)

		m.Lookup("Missing.pdf")

		id, err := m.Lookup("Missing.pdf")
		if err != nil {
			t.Fatalf("Lookup() error = %v", err)
		}
		if id != "" {
			t.Errorf("Lookup() minted id %q", id)
		}
	})
}

func TestIdentityMap_Rekey(t *testing.T) {
	t.Run("moves the entry to the new name", func(t *testing.T) {
		m := newIdentityMap(t)

		id, _ := m.Resolve("Old.pdf")
		if err := m.Rekey("Old.pdf", "New.pdf"); err != nil {
			t.Fatalf("Rekey() error = %v", err)
		}

		got, _ := m.Lookup("New.pdf")
		if got != id {
			t.Errorf("Lookup(New.pdf) = %q, want %q", got, id)
		}
		old, _ := m.Lookup("Old.pdf")
		if old != "" {
			t.Errorf("Lookup(Old.pdf) = %q, want empty", old)
		}
	})

	t.Run("id survives repeated renames", func(t *testing.T) {
		m := newIdentityMap(t)

		id, _ := m.Resolve("A.pdf")
		names := []string{"A.pdf", "B.pdf", "C.pdf", "D.pdf"}
		for i := 1; i < len(names); i++ {
			if err := m.Rekey(names[i-1], names[i]); err != nil {
				t.Fatalf("Rekey(%s, %s) error = %v", names[i-1], names[i], err)
			}
		}

		got, _ := m.Lookup("D.pdf")
		if got != id {
			t.Errorf("id changed across renames: got %q, want %q", got, id)
		}
	})

	t.Run("is a no-op when the old name has no entry", func(t *testing.T) {
		m := newIdentityMap(t)

		if err := m.Rekey("Old.pdf", "New.pdf"); err != nil {
			t.Fatalf("Rekey() error = %v", err)
		}
		id, _ := m.Lookup("New.pdf")
		if id != "" {
			t.Errorf("Rekey() minted id %q under the new name", id)
		}
	})
}

func TestIdentityMap_Remove(t *testing.T) {
	m := newIdentityMap(t)

	m.Resolve("Doc.pdf")
	if err := m.Remove("Doc.pdf"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	id, _ := m.Lookup("Doc.pdf")
	if id != "" {
		t.Errorf("Lookup() after Remove() = %q, want empty", id)
	}

	// Removing again is fine.
	if err := m.Remove("Doc.pdf"); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
}

func TestIdentityMap_Assign(t *testing.T) {
	m := newIdentityMap(t)

	if err := m.Assign("Restored.pdf", "11111111-2222-4333-8444-555555555555"); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	id, _ := m.Lookup("Restored.pdf")
	if id != "11111111-2222-4333-8444-555555555555" {
		t.Errorf("Lookup() = %q, want assigned id", id)
	}

	// Resolve must return the assigned id, not mint a new one.
	resolved, _ := m.Resolve("Restored.pdf")
	if resolved != id {
		t.Errorf("Resolve() = %q, want %q", resolved, id)
	}
}

func TestIdentityMap_PersistedFormat(t *testing.T) {
	// The on-disk shape is a flat JSON object of name → id and is relied on
	// by existing installs.
	path := filepath.Join(t.TempDir(), "identity.json")
	m := mapstore.NewIdentityMap(path, testutil.NewStubIDGenerator())

	id, _ := m.Resolve("Invoice.pdf")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store: %v", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("store is not a flat JSON object: %v", err)
	}
	if raw["Invoice.pdf"] != id {
		t.Errorf("persisted entry = %q, want %q", raw["Invoice.pdf"], id)
	}
}

package journal

import (
	"sync"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// MemoryJournal is an in-memory Journal for tests and ephemeral runs. Safe
// for concurrent use.
type MemoryJournal struct {
	clock docsync.Clock

	mu      sync.Mutex
	nextID  int64
	entries []docsync.JournalEntry
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal(clock docsync.Clock) *MemoryJournal {
	return &MemoryJournal{clock: clock, nextID: 1}
}

// Record appends an entry, stamping it with the current time.
func (j *MemoryJournal) Record(entry docsync.JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry.ID = j.nextID
	entry.CreatedAt = j.clock.Now()
	j.nextID++
	j.entries = append(j.entries, entry)
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *MemoryJournal) Recent(limit int) ([]docsync.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []docsync.JournalEntry
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}

// Entries returns all entries oldest first. Test helper.
func (j *MemoryJournal) Entries() []docsync.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]docsync.JournalEntry(nil), j.entries...)
}

// Close is a no-op.
func (j *MemoryJournal) Close() error { return nil }

// Compile-time check that MemoryJournal implements docsync.Journal.
var _ docsync.Journal = (*MemoryJournal)(nil)

package docsync

import "time"

// Journal operation names.
const (
	OpPush         = "push"
	OpRestore      = "restore"
	OpRemoteDelete = "remote-delete"
	OpReconcile    = "reconcile"
)

// Journal operation outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeFailed      = "failed"
	OutcomeUnavailable = "unavailable"
	OutcomeSkipped     = "skipped"
)

// JournalEntry records the outcome of one sync operation for diagnostics.
// The journal is purely observational: no sync decision reads it back, so
// the flat JSON map files remain the only load-bearing local state.
type JournalEntry struct {
	ID        int64
	Op        string // OpPush, OpRestore, OpRemoteDelete, OpReconcile
	Key       string // stable id, or empty for whole-run entries
	Name      string // display name at the time of the operation
	Outcome   string // OutcomeOK, OutcomeFailed, OutcomeUnavailable, OutcomeSkipped
	Detail    string // free-form, e.g. the error message on failure
	CreatedAt time.Time
}

// Journal is an append-only record of sync operation outcomes.
type Journal interface {
	// Record appends an entry. CreatedAt and ID are assigned by the journal.
	Record(entry JournalEntry) error

	// Recent returns up to limit entries, newest first.
	Recent(limit int) ([]JournalEntry, error)

	// Close releases the journal's resources.
	Close() error
}

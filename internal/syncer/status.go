package syncer

import (
	"sync"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// StatusBoard tracks the per-document sync status, keyed by stable id.
// Statuses are in-memory only; a fresh process starts every document at
// idle. Safe for concurrent use.
type StatusBoard struct {
	clock docsync.Clock

	mu   sync.Mutex
	byID map[string]docsync.SyncStatus
}

// NewStatusBoard creates an empty StatusBoard.
func NewStatusBoard(clock docsync.Clock) *StatusBoard {
	return &StatusBoard{
		clock: clock,
		byID:  make(map[string]docsync.SyncStatus),
	}
}

// Set records a state transition for the given stable id.
func (b *StatusBoard) Set(stableID string, state docsync.SyncState, reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byID[stableID] = docsync.SyncStatus{
		State:     state,
		Reason:    reason,
		UpdatedAt: b.clock.Now(),
	}
}

// Get returns the status for the given stable id. Documents never touched by
// a sync attempt report the zero status, whose state is idle.
func (b *StatusBoard) Get(stableID string) docsync.SyncStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byID[stableID]
}

// Snapshot returns a copy of all tracked statuses.
func (b *StatusBoard) Snapshot() map[string]docsync.SyncStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]docsync.SyncStatus, len(b.byID))
	for id, status := range b.byID {
		out[id] = status
	}
	return out
}

// Forget drops the tracked status for a stable id, used when the document is
// deleted locally.
func (b *StatusBoard) Forget(stableID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.byID, stableID)
}

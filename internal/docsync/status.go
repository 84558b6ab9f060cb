package docsync

import "time"

// SyncState is the synchronization state of a single document.
//
// The state machine is idle → syncing → {synced | failed | unavailable}.
// failed and unavailable are retriable: the next mutation or an explicit
// sync re-enters syncing.
type SyncState int

const (
	// StateIdle means no sync has been attempted for this document yet.
	StateIdle SyncState = iota

	// StateSyncing means a push is in flight.
	StateSyncing

	// StateSynced means the remote store matches the local document.
	StateSynced

	// StateFailed means the last push executed against an available remote
	// but failed. The reason is carried in SyncStatus.Reason.
	StateFailed

	// StateUnavailable means the remote store could not be reached when the
	// push was attempted. This is not an error condition.
	StateUnavailable
)

func (s SyncState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	case StateFailed:
		return "failed"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// SyncStatus is the observable status of one document, keyed by stable id.
type SyncStatus struct {
	State     SyncState
	Reason    string // set when State is StateFailed or StateUnavailable
	UpdatedAt time.Time
}

package docsync

import (
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts stable-id generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs in their canonical textual form.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// IsStableID reports whether s has the textual shape of a stable id.
// The folder map relies on this to tell a current-format store (keyed by
// stable id) apart from a legacy one (keyed by file name).
func IsStableID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

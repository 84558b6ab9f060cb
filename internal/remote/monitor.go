package remote

import (
	"context"
	"sync"
	"time"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// Monitor caches the remote store's availability behind an explicit state
// machine: unknown until the first probe, then available or unavailable with
// a reason. The cached result is refreshed once it is older than the TTL, so
// batch operations share one probe instead of each hitting the transport,
// and stale state cannot outlive the refresh window.
type Monitor struct {
	store docsync.RemoteStore
	clock docsync.Clock
	ttl   time.Duration

	mu        sync.Mutex
	probed    bool
	lastErr   error
	checkedAt time.Time
}

// DefaultAvailabilityTTL is how long a probe result stays cached.
const DefaultAvailabilityTTL = 30 * time.Second

// NewMonitor creates a Monitor over the given store. A non-positive ttl
// falls back to DefaultAvailabilityTTL.
func NewMonitor(store docsync.RemoteStore, clock docsync.Clock, ttl time.Duration) *Monitor {
	if ttl <= 0 {
		ttl = DefaultAvailabilityTTL
	}
	return &Monitor{store: store, clock: clock, ttl: ttl}
}

// Availability returns nil when the remote is available, or an error
// wrapping docsync.ErrRemoteUnavailable. The underlying store is probed at
// most once per TTL window.
func (m *Monitor) Availability(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if m.probed && now.Sub(m.checkedAt) < m.ttl {
		return m.lastErr
	}

	m.lastErr = m.store.CheckAvailability(ctx)
	m.probed = true
	m.checkedAt = now
	return m.lastErr
}

// Invalidate drops the cached probe so the next Availability call re-probes.
// Called on explicit user-initiated retries.
func (m *Monitor) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probed = false
}

// State describes the last known availability for display purposes.
// Returns "unknown" before the first probe.
func (m *Monitor) State() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case !m.probed:
		return "unknown"
	case m.lastErr != nil:
		return "unavailable"
	default:
		return "available"
	}
}

// Compile-time check that Monitor implements docsync.AvailabilityChecker.
var _ docsync.AvailabilityChecker = (*Monitor)(nil)

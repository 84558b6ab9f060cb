package pagecount

import (
	"context"
	"sync"

	"github.com/tuncaytekle/docsync/internal/docsync"
)

// DefaultConcurrency bounds how many documents are parsed at once.
const DefaultConcurrency = 2

// Sweeper fills in missing page counts in the background. A count of zero
// marks a document as not yet counted; enumeration returns immediately and
// the sweep catches up afterwards, so listing is never blocked on parsing.
// Starting a new sweep cancels the one in flight.
type Sweeper struct {
	counter Counter
	workers int
	logger  docsync.Logger

	startMu sync.Mutex
	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewSweeper creates a Sweeper. A non-positive concurrency falls back to
// DefaultConcurrency.
func NewSweeper(counter Counter, concurrency int, logger docsync.Logger) *Sweeper {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = docsync.NewNopLogger()
	}
	return &Sweeper{counter: counter, workers: concurrency, logger: logger}
}

// Sweep schedules a background count of every record whose PageCount is
// still zero. apply is invoked once per successfully counted document; it
// must be safe for concurrent use. Any sweep already in flight is cancelled
// and drained before the new one starts.
func (s *Sweeper) Sweep(ctx context.Context, records []docsync.LocalRecord, apply func(stableID string, pages int)) {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()

	var pending []docsync.LocalRecord
	for _, rec := range records {
		if rec.PageCount == 0 {
			pending = append(pending, rec)
		}
	}
	if len(pending) == 0 {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.logger.Debug("starting page count sweep", "pending", len(pending))

	sem := make(chan struct{}, s.workers)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for _, rec := range pending {
			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			rec := rec
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer func() { <-sem }()
				pages, err := s.counter.Count(rec.Path)
				if err != nil {
					s.logger.Debug("page count failed", "name", rec.Name, "error", err)
					return
				}
				if ctx.Err() != nil {
					return
				}
				apply(rec.StableID, pages)
			}()
		}
	}()
}

// Stop cancels the sweep in flight and waits for its workers to exit.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Wait blocks until the current sweep finishes. Test helper.
func (s *Sweeper) Wait() {
	s.wg.Wait()
}

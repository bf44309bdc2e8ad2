// Package ledger owns the current in-memory ledger snapshot. Readers
// share an immutable snapshot; reloads are serialized so no reader ever
// observes a partially rebuilt ledger.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"finboard/internal/consolidate"
	"finboard/internal/core"
	"finboard/internal/loader"
)

// Snapshot is an immutable view of the ledger produced by one
// consolidation run. Version increases with every successful reload and
// can key response caches.
type Snapshot struct {
	Ledger   []core.Transaction
	Rejected []loader.RejectedRow
	Version  uint64
	LoadedAt time.Time
}

// Service holds the ledger snapshot behind a read-write lock.
type Service struct {
	consolidator *consolidate.Consolidator

	mu   sync.RWMutex
	snap Snapshot

	reloads singleflight.Group
}

// NewService builds a ledger service around a consolidator. The service
// starts empty; call Reload to populate it.
func NewService(c *consolidate.Consolidator) *Service {
	return &Service{consolidator: c}
}

// Snapshot returns the current snapshot. The contained slices must be
// treated as read-only.
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Reload runs a full consolidation and swaps in the new snapshot.
// Concurrent calls collapse into a single run; every caller gets that
// run's outcome. A persistence failure still installs the freshly
// consolidated in-memory ledger and is reported to the caller.
func (s *Service) Reload(ctx context.Context) (Snapshot, error) {
	v, err, shared := s.reloads.Do("reload", func() (any, error) {
		result, err := s.consolidator.Consolidate(ctx)
		if err != nil {
			var perr *core.PersistenceError
			if !errors.As(err, &perr) {
				return Snapshot{}, err
			}
			// The run itself succeeded: keep serving the fresh data.
			slog.Warn("Ledger reload persisted with error", "error", err)
		}

		s.mu.Lock()
		s.snap = Snapshot{
			Ledger:   result.Ledger,
			Rejected: result.Rejected,
			Version:  s.snap.Version + 1,
			LoadedAt: time.Now(),
		}
		snap := s.snap
		s.mu.Unlock()

		slog.Info("Ledger reloaded", "version", snap.Version, "records", len(snap.Ledger), "rejected_rows", len(snap.Rejected))
		return snap, err
	})

	snap, ok := v.(Snapshot)
	if !ok {
		snap = Snapshot{}
	}
	if shared {
		slog.Debug("Reload request coalesced")
	}
	return snap, err
}

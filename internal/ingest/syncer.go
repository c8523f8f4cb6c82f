package ingest

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/agentdash/agent-analytics/internal/record"
)

// Syncer periodically fetches from a Source and atomically replaces the
// store's contents. Fetch errors are logged and retried on the next tick;
// they are never papered over with substitute data.
type Syncer struct {
	source   Source
	store    *record.Store
	interval time.Duration
	onChange func()

	mu       sync.RWMutex
	lastSync time.Time
}

// NewSyncer creates a syncer replacing the store every interval. onChange,
// if non-nil, is invoked after each successful replace so consumers can
// mark derived output stale.
func NewSyncer(source Source, store *record.Store, interval time.Duration, onChange func()) *Syncer {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Syncer{source: source, store: store, interval: interval, onChange: onChange}
}

// Sync performs one fetch-and-replace cycle.
func (s *Syncer) Sync(ctx context.Context) error {
	records, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}
	if err := s.store.ReplaceAll(records); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastSync = time.Now()
	s.mu.Unlock()
	if s.onChange != nil {
		s.onChange()
	}
	return nil
}

// LastSync returns the time of the last successful cycle.
func (s *Syncer) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// Run starts the periodic sync loop. Blocks until ctx is cancelled.
func (s *Syncer) Run(ctx context.Context) error {
	if err := s.Sync(ctx); err != nil {
		log.Printf("ingest initial sync: %v", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sync(ctx); err != nil {
				log.Printf("ingest sync: %v", err)
			}
		}
	}
}

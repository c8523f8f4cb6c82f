package record

import (
	"iter"
	"sync"
)

// Store holds the working set of records in insertion order.
// Readers always observe a complete set: ReplaceAll swaps the backing slice
// in one step, so an iterator started before a swap keeps seeing the old
// set and one started after sees only the new one.
type Store struct {
	mu      sync.RWMutex
	records []Record
	ids     map[string]struct{}
	schemas Schemas
	version uint64
}

// NewStore creates an empty store with no schema validation.
func NewStore() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// NewStoreWithSchemas creates an empty store that validates each incoming
// record against the given per-category schemas.
func NewStoreWithSchemas(schemas Schemas) *Store {
	s := NewStore()
	s.schemas = schemas
	return s
}

func (s *Store) validate(r Record) error {
	if s.schemas != nil {
		return s.schemas.Validate(r)
	}
	return r.Validate()
}

// Append adds one record. It fails with a *ValidationError if the record is
// malformed or its ID collides with an existing record.
func (s *Store) Append(r Record) error {
	if err := s.validate(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.ids[r.ID]; exists {
		return &ValidationError{RecordID: r.ID, Field: "id", Reason: "duplicate"}
	}
	// Copy-on-write keeps snapshots handed to readers immutable.
	next := make([]Record, len(s.records), len(s.records)+1)
	copy(next, s.records)
	s.records = append(next, r.Clone())
	s.ids[r.ID] = struct{}{}
	s.version++
	return nil
}

// ReplaceAll atomically swaps the entire record set. All records are
// validated before any state changes, so a failed replace leaves the
// previous set intact.
func (s *Store) ReplaceAll(records []Record) error {
	next := make([]Record, 0, len(records))
	ids := make(map[string]struct{}, len(records))
	for _, r := range records {
		if err := s.validate(r); err != nil {
			return err
		}
		if _, exists := ids[r.ID]; exists {
			return &ValidationError{RecordID: r.ID, Field: "id", Reason: "duplicate"}
		}
		ids[r.ID] = struct{}{}
		next = append(next, r.Clone())
	}

	s.mu.Lock()
	s.records = next
	s.ids = ids
	s.version++
	s.mu.Unlock()
	return nil
}

// All returns a restartable sequence over the records in insertion order.
// The sequence iterates a snapshot taken when All is called.
func (s *Store) All() iter.Seq[Record] {
	s.mu.RLock()
	snapshot := s.records
	s.mu.RUnlock()

	return func(yield func(Record) bool) {
		for _, r := range snapshot {
			if !yield(r.Clone()) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the current record set in insertion order.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	snapshot := s.records
	s.mu.RUnlock()

	out := make([]Record, len(snapshot))
	for i, r := range snapshot {
		out[i] = r.Clone()
	}
	return out
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Version increments on every successful Append or ReplaceAll. Consumers
// caching derived output compare versions to detect staleness.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

package record

import (
	"fmt"
	"math"
	"time"
)

// Category tags a record with its domain variant (decision type, sentiment
// symbol, farm snapshot, market snapshot).
type Category = string

// Record is one timestamped observation fed into the analytics core.
// Records are immutable once created; an update is a new record with a new ID.
type Record struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Category  Category           `json:"category"`
	Numeric   map[string]float64 `json:"numeric,omitempty"`
	Outcome   *bool              `json:"outcome,omitempty"`
	Label     string             `json:"label,omitempty"`
	Reasoning string             `json:"reasoning,omitempty"`
	Tags      []string           `json:"tags,omitempty"`
}

// Success reports whether the record carries a successful outcome.
// Records without an outcome count as neither success nor failure.
func (r Record) Success() bool {
	return r.Outcome != nil && *r.Outcome
}

// Value returns the named numeric measurement and whether it is present.
func (r Record) Value(field string) (float64, bool) {
	v, ok := r.Numeric[field]
	return v, ok
}

// Clone returns a deep copy so callers can hand out records without
// exposing the store's internal maps and slices to mutation.
func (r Record) Clone() Record {
	out := r
	if r.Numeric != nil {
		out.Numeric = make(map[string]float64, len(r.Numeric))
		for k, v := range r.Numeric {
			out.Numeric[k] = v
		}
	}
	if r.Outcome != nil {
		o := *r.Outcome
		out.Outcome = &o
	}
	if r.Tags != nil {
		out.Tags = append([]string(nil), r.Tags...)
	}
	return out
}

// ValidationError reports a malformed record rejected at ingestion.
type ValidationError struct {
	RecordID string
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.RecordID == "" {
		return fmt.Sprintf("invalid record: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid record %s: %s: %s", e.RecordID, e.Field, e.Reason)
}

// Validate checks the structural invariants every record must satisfy
// before entering the store.
func (r Record) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{RecordID: r.ID, Field: "timestamp", Reason: "must be set"}
	}
	if r.Category == "" {
		return &ValidationError{RecordID: r.ID, Field: "category", Reason: "must not be empty"}
	}
	for field, v := range r.Numeric {
		if math.IsNaN(v) {
			return &ValidationError{RecordID: r.ID, Field: field, Reason: "must not be NaN"}
		}
	}
	return nil
}

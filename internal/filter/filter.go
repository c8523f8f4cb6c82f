// Package filter applies declarative filter specifications to record sets.
// All clauses are ANDed; clause order never changes the result.
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentdash/agent-analytics/internal/record"
)

// TimeWindow bounds records to [Start, End] inclusive.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NumericRange bounds one named numeric field to [Min, Max] inclusive.
// A record missing the field is excluded by the clause.
type NumericRange struct {
	Field string  `json:"field"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Spec describes which records to include in a view. The zero value matches
// every record.
type Spec struct {
	Window       *TimeWindow       `json:"window,omitempty"`
	Categories   []record.Category `json:"categories,omitempty"`
	Ranges       []NumericRange    `json:"ranges,omitempty"`
	Search       string            `json:"search,omitempty"`
	SearchFields []string          `json:"search_fields,omitempty"`
}

// DefaultSearchFields are the text fields matched when a spec does not name
// its own.
var DefaultSearchFields = []string{"label", "reasoning", "tags", "category"}

// InvalidFilterError reports a contradictory filter clause.
type InvalidFilterError struct {
	Clause string
	Reason string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Clause, e.Reason)
}

// Validate rejects specs whose bounds can never match anything.
func (s Spec) Validate() error {
	if s.Window != nil && !s.Window.Start.IsZero() && !s.Window.End.IsZero() && s.Window.Start.After(s.Window.End) {
		return &InvalidFilterError{Clause: "window", Reason: "start after end"}
	}
	for _, nr := range s.Ranges {
		if nr.Field == "" {
			return &InvalidFilterError{Clause: "range", Reason: "field must not be empty"}
		}
		if nr.Min > nr.Max {
			return &InvalidFilterError{
				Clause: "range " + nr.Field,
				Reason: fmt.Sprintf("min %g greater than max %g", nr.Min, nr.Max),
			}
		}
	}
	return nil
}

// Apply returns the records matching spec, in input order. An empty spec
// returns all records.
func Apply(records []record.Record, spec Spec) ([]record.Record, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if spec.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Matches reports whether a single record passes every clause of the spec.
// Specs should be validated before use; Matches does not re-check bounds.
func (s Spec) Matches(r record.Record) bool {
	return s.matchWindow(r) && s.matchCategory(r) && s.matchRanges(r) && s.matchSearch(r)
}

func (s Spec) matchWindow(r record.Record) bool {
	if s.Window == nil {
		return true
	}
	if !s.Window.Start.IsZero() && r.Timestamp.Before(s.Window.Start) {
		return false
	}
	if !s.Window.End.IsZero() && r.Timestamp.After(s.Window.End) {
		return false
	}
	return true
}

func (s Spec) matchCategory(r record.Record) bool {
	if len(s.Categories) == 0 {
		return true
	}
	for _, c := range s.Categories {
		if r.Category == c {
			return true
		}
	}
	return false
}

func (s Spec) matchRanges(r record.Record) bool {
	for _, nr := range s.Ranges {
		v, ok := r.Value(nr.Field)
		if !ok || v < nr.Min || v > nr.Max {
			return false
		}
	}
	return true
}

func (s Spec) matchSearch(r record.Record) bool {
	query := strings.ToLower(strings.TrimSpace(s.Search))
	if query == "" {
		return true
	}
	fields := s.SearchFields
	if len(fields) == 0 {
		fields = DefaultSearchFields
	}
	for _, f := range fields {
		for _, text := range searchText(r, f) {
			if strings.Contains(strings.ToLower(text), query) {
				return true
			}
		}
	}
	return false
}

func searchText(r record.Record, field string) []string {
	switch field {
	case "label":
		return []string{r.Label}
	case "reasoning":
		return []string{r.Reasoning}
	case "category":
		return []string{r.Category}
	case "tags":
		return r.Tags
	case "id":
		return []string{r.ID}
	default:
		return nil
	}
}

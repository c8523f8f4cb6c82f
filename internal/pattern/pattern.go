// Package pattern surfaces named threshold heuristics over the full record
// set. All statistics on a fired pattern are computed by the aggregate
// package over the matching subset, never inlined here.
package pattern

import (
	"fmt"

	"github.com/agentdash/agent-analytics/internal/record"
)

// Rule is one named threshold heuristic. Confidence is a static property of
// the rule used only for ordering the output, not recomputed from data.
type Rule struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Confidence float64           `json:"confidence"`
	Categories []record.Category `json:"categories,omitempty"`
	// Field bounds the rule to records whose named numeric field lies in
	// [Min, Max]. Nil bounds are open on that side; a record missing the
	// field never matches.
	Field string   `json:"field,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`
	// Outcome, when set, requires the record's outcome to equal it.
	Outcome *bool `json:"outcome,omitempty"`
	// MagnitudeField names the numeric field averaged into the pattern's
	// magnitude. Empty means no magnitude is reported.
	MagnitudeField string `json:"magnitude_field,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	// MinSamples overrides the detector's minimum sample size when > 0.
	MinSamples int `json:"min_samples,omitempty"`
}

// Matches reports whether a single record satisfies the rule's thresholds.
func (r Rule) Matches(rec record.Record) bool {
	if len(r.Categories) > 0 {
		found := false
		for _, c := range r.Categories {
			if rec.Category == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if r.Field != "" {
		v, ok := rec.Value(r.Field)
		if !ok {
			return false
		}
		if r.Min != nil && v < *r.Min {
			return false
		}
		if r.Max != nil && v > *r.Max {
			return false
		}
	}
	if r.Outcome != nil {
		if rec.Outcome == nil || *rec.Outcome != *r.Outcome {
			return false
		}
	}
	return true
}

// Pattern is a fired rule with statistics derived from its matching subset.
// Patterns are recomputed from scratch on every detection pass.
type Pattern struct {
	RuleID           string   `json:"rule_id"`
	Label            string   `json:"label"`
	RecordIDs        []string `json:"record_ids"`
	Frequency        float64  `json:"frequency"`
	SuccessRate      float64  `json:"success_rate"`
	AverageMagnitude float64  `json:"average_magnitude"`
	Recommendation   string   `json:"recommendation,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// UnknownRuleError reports a rule identifier that was never registered.
type UnknownRuleError struct {
	RuleID string
}

func (e *UnknownRuleError) Error() string {
	return fmt.Sprintf("unknown pattern rule %q", e.RuleID)
}

package pattern

import (
	"fmt"
	"sort"

	"github.com/agentdash/agent-analytics/internal/aggregate"
	"github.com/agentdash/agent-analytics/internal/record"
)

// DefaultMinSamples is the minimum matching-subset size before a rule fires.
const DefaultMinSamples = 5

// Detector evaluates registered rules against a record set.
type Detector struct {
	rules      []Rule
	byID       map[string]int
	minSamples int
}

// NewDetector creates a detector with the given default minimum sample
// size; values <= 0 fall back to DefaultMinSamples.
func NewDetector(minSamples int) *Detector {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	return &Detector{byID: make(map[string]int), minSamples: minSamples}
}

// Register adds a rule. Registration order breaks confidence ties in the
// detection output.
func (d *Detector) Register(r Rule) error {
	if r.ID == "" {
		return fmt.Errorf("pattern rule: id must not be empty")
	}
	if _, exists := d.byID[r.ID]; exists {
		return fmt.Errorf("pattern rule %q: already registered", r.ID)
	}
	d.byID[r.ID] = len(d.rules)
	d.rules = append(d.rules, r)
	return nil
}

// Rules returns the registered rules in registration order.
func (d *Detector) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Detect evaluates rules against the full record set. With no ruleIDs every
// registered rule is evaluated; otherwise only the named ones, and an
// unregistered name fails with a *UnknownRuleError. Output is sorted by
// static rule confidence descending, ties in registration order.
func (d *Detector) Detect(records []record.Record, ruleIDs ...string) ([]Pattern, error) {
	selected := make([]int, 0, len(d.rules))
	if len(ruleIDs) == 0 {
		for i := range d.rules {
			selected = append(selected, i)
		}
	} else {
		for _, id := range ruleIDs {
			idx, ok := d.byID[id]
			if !ok {
				return nil, &UnknownRuleError{RuleID: id}
			}
			selected = append(selected, idx)
		}
		sort.Ints(selected)
	}

	patterns := make([]Pattern, 0, len(selected))
	for _, idx := range selected {
		if p, fired := d.evaluate(d.rules[idx], records); fired {
			patterns = append(patterns, p)
		}
	}

	// Stable sort keeps registration order on equal confidence.
	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Confidence > patterns[j].Confidence
	})
	return patterns, nil
}

func (d *Detector) evaluate(rule Rule, records []record.Record) (Pattern, bool) {
	matching := make([]record.Record, 0, len(records))
	for _, r := range records {
		if rule.Matches(r) {
			matching = append(matching, r)
		}
	}

	min := rule.MinSamples
	if min <= 0 {
		min = d.minSamples
	}
	if len(matching) < min {
		return Pattern{}, false
	}

	summary := aggregate.Aggregate(matching)
	p := Pattern{
		RuleID:         rule.ID,
		Label:          rule.Label,
		RecordIDs:      make([]string, 0, len(matching)),
		SuccessRate:    summary.SuccessRate,
		Recommendation: rule.Recommendation,
		Confidence:     rule.Confidence,
	}
	for _, r := range matching {
		p.RecordIDs = append(p.RecordIDs, r.ID)
	}
	if len(records) > 0 {
		p.Frequency = float64(len(matching)) / float64(len(records))
	}
	if rule.MagnitudeField != "" {
		p.AverageMagnitude = aggregate.Mean(matching, rule.MagnitudeField)
	}
	return p, true
}

// Package aggregate folds record sets into summary statistics. Every
// function is total over any well-formed set, including the empty one.
package aggregate

import (
	"fmt"

	"github.com/agentdash/agent-analytics/internal/record"
)

// Summary is the aggregator's output, rendered as-is by the dashboard.
type Summary struct {
	Count       int     `json:"count"`
	Successes   int     `json:"successes"`
	Failures    int     `json:"failures"`
	SuccessRate float64 `json:"success_rate"`
	ByCategory  *Groups `json:"by_category"`
}

// DivisionByZeroError reports a weighted mean whose total weight is zero.
type DivisionByZeroError struct {
	Field       string
	WeightField string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("weighted mean of %q: total weight over %q is zero", e.Field, e.WeightField)
}

// Aggregate computes the standard summary over a record set. The empty set
// yields a zero summary with success rate 0, not NaN.
func Aggregate(records []record.Record) Summary {
	s := Summary{ByCategory: GroupBy(records, func(r record.Record) string { return r.Category })}
	s.Count = len(records)
	for _, r := range records {
		if r.Outcome == nil {
			continue
		}
		if *r.Outcome {
			s.Successes++
		} else {
			s.Failures++
		}
	}
	if s.Count > 0 {
		s.SuccessRate = float64(s.Successes) / float64(s.Count)
	}
	return s
}

// Mean returns the arithmetic mean of the named numeric field across records
// where the field is present. Records missing the field are excluded from
// the denominator. The empty case returns 0.
func Mean(records []record.Record, field string) float64 {
	var sum float64
	var n int
	for _, r := range records {
		if v, ok := r.Value(field); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WeightedMean returns the mean of field weighted by weightField, over
// records carrying both fields. If no record carries both, the result is 0
// with no error; if matching records exist but their weights sum to zero,
// it fails with a *DivisionByZeroError.
func WeightedMean(records []record.Record, field, weightField string) (float64, error) {
	if weightField == "" {
		return Mean(records, field), nil
	}

	var weighted, totalWeight float64
	var n int
	for _, r := range records {
		v, ok := r.Value(field)
		if !ok {
			continue
		}
		w, ok := r.Value(weightField)
		if !ok {
			continue
		}
		weighted += v * w
		totalWeight += w
		n++
	}
	if n == 0 {
		return 0, nil
	}
	if totalWeight == 0 {
		return 0, &DivisionByZeroError{Field: field, WeightField: weightField}
	}
	return weighted / totalWeight, nil
}

// SuccessRate returns count(success)/count, 0 for the empty set.
func SuccessRate(records []record.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var successes int
	for _, r := range records {
		if r.Success() {
			successes++
		}
	}
	return float64(successes) / float64(len(records))
}

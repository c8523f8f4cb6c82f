package aggregate

import (
	"bytes"
	"encoding/json"

	"github.com/agentdash/agent-analytics/internal/record"
)

// Groups is a distribution of counts keyed by a derived value. Keys keep
// first-seen order from the input; callers wanting sorted output sort the
// keys themselves.
type Groups struct {
	keys   []string
	counts map[string]int
}

// NewGroups returns an empty distribution.
func NewGroups() *Groups {
	return &Groups{counts: make(map[string]int)}
}

// GroupBy counts records per value of the key function.
func GroupBy(records []record.Record, key func(record.Record) string) *Groups {
	g := NewGroups()
	for _, r := range records {
		g.Add(key(r))
	}
	return g
}

// GroupByField counts records per value of a numeric field bucketed by the
// given function; records missing the field are skipped.
func GroupByField(records []record.Record, field string, bucket func(float64) string) *Groups {
	g := NewGroups()
	for _, r := range records {
		if v, ok := r.Value(field); ok {
			g.Add(bucket(v))
		}
	}
	return g
}

// Add increments the count for key, registering it on first sight.
func (g *Groups) Add(key string) {
	if _, seen := g.counts[key]; !seen {
		g.keys = append(g.keys, key)
	}
	g.counts[key]++
}

// Count returns the count for key, 0 if unseen.
func (g *Groups) Count(key string) int {
	return g.counts[key]
}

// Keys returns the distinct keys in first-seen order.
func (g *Groups) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Len returns the number of distinct keys.
func (g *Groups) Len() int {
	return len(g.keys)
}

// MarshalJSON renders the distribution as an object whose keys keep
// first-seen order.
func (g *Groups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(g.counts[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package app

import (
	"sort"

	"github.com/agentdash/agent-analytics/internal/record"
)

// sortByTimestampDesc orders records most recent first, stable so records
// sharing a timestamp keep their insertion order.
func sortByTimestampDesc(records []record.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}

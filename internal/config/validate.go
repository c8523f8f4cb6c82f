package config

import (
	"fmt"
	"strings"

	"github.com/agentdash/agent-analytics/internal/pattern"
)

// Validate checks high-impact runtime configuration constraints.
func (c Config) Validate() error {
	mode := strings.ToLower(strings.TrimSpace(c.Mode))
	if mode != "" && mode != "demo" && mode != "replay" && mode != "live" {
		return fmt.Errorf("mode must be 'demo', 'replay' or 'live', got %q", c.Mode)
	}

	if c.Demo.InitialRecords < 0 {
		return fmt.Errorf("demo.initial_records must be >= 0, got %d", c.Demo.InitialRecords)
	}
	if c.Demo.BatchPerTick < 0 {
		return fmt.Errorf("demo.batch_per_tick must be >= 0, got %d", c.Demo.BatchPerTick)
	}
	if c.Pattern.MinSamples < 1 {
		return fmt.Errorf("pattern.min_samples must be >= 1, got %d", c.Pattern.MinSamples)
	}
	if c.History.ReloadLimit < 0 {
		return fmt.Errorf("history.reload_limit must be >= 0, got %d", c.History.ReloadLimit)
	}
	if mode == "replay" && !c.History.Enabled {
		return fmt.Errorf("replay mode requires history.enabled")
	}

	known := make(map[string]bool)
	for _, r := range pattern.DefaultRules() {
		known[r.ID] = true
	}
	for _, id := range c.Pattern.Rules {
		if !known[id] {
			return fmt.Errorf("pattern.rules: unknown rule %q", id)
		}
	}
	return nil
}

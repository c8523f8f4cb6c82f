package config

import (
	"fmt"
	"strings"
	"time"
)

// ApplyProfile applies a deployment preset to the config.
// Supported profiles:
// - demo:   seeded in-memory demo data, no persistence
// - replay: reload the archived record set once, no live fetch
// - live:   Gamma-backed market snapshots with persistence
func ApplyProfile(cfg *Config, profile string) error {
	p := strings.ToLower(strings.TrimSpace(profile))
	if p == "" {
		return nil
	}

	switch p {
	case "demo":
		cfg.Mode = "demo"
		cfg.History.Enabled = false
	case "replay":
		cfg.Mode = "replay"
		cfg.History.Enabled = true
	case "live":
		cfg.Mode = "live"
		cfg.History.Enabled = true
		if cfg.Ingest.SyncInterval <= 0 {
			cfg.Ingest.SyncInterval = time.Minute
		}
	default:
		return fmt.Errorf("unknown profile %q (supported: demo|replay|live)", profile)
	}
	return nil
}

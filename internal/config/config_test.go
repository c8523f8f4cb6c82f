package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Mode != "demo" {
		t.Fatalf("expected demo mode by default, got %q", cfg.Mode)
	}
	if cfg.Pattern.MinSamples != 5 {
		t.Fatalf("expected min_samples 5, got %d", cfg.Pattern.MinSamples)
	}
	if !cfg.API.Enabled || cfg.API.Addr != ":8080" {
		t.Fatalf("unexpected api defaults: %+v", cfg.API)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("mode: live\npattern:\n  min_samples: 10\ningest:\n  sync_interval: 30s\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "live" {
		t.Fatalf("expected live, got %q", cfg.Mode)
	}
	if cfg.Pattern.MinSamples != 10 {
		t.Fatalf("expected 10, got %d", cfg.Pattern.MinSamples)
	}
	if cfg.Ingest.SyncInterval != 30*time.Second {
		t.Fatalf("expected 30s, got %v", cfg.Ingest.SyncInterval)
	}
	// Untouched fields keep defaults.
	if cfg.Demo.InitialRecords != 200 {
		t.Fatalf("expected default initial_records, got %d", cfg.Demo.InitialRecords)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ANALYTICS_MODE", "Live")
	t.Setenv("ANALYTICS_API_ADDR", ":9090")
	t.Setenv("ANALYTICS_DEMO_SEED", "99")
	t.Setenv("ANALYTICS_HISTORY_PATH", "/tmp/x.db")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Mode != "live" {
		t.Fatalf("expected live, got %q", cfg.Mode)
	}
	if cfg.API.Addr != ":9090" {
		t.Fatalf("expected :9090, got %q", cfg.API.Addr)
	}
	if cfg.Demo.Seed != 99 {
		t.Fatalf("expected seed 99, got %d", cfg.Demo.Seed)
	}
	if !cfg.History.Enabled || cfg.History.Path != "/tmp/x.db" {
		t.Fatalf("unexpected history config: %+v", cfg.History)
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Default()
	cfg.Mode = "yolo"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected mode rejection")
	}
}

func TestValidateRejectsBadMinSamples(t *testing.T) {
	cfg := Default()
	cfg.Pattern.MinSamples = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected min_samples rejection")
	}
}

func TestValidateRejectsUnknownRule(t *testing.T) {
	cfg := Default()
	cfg.Pattern.Rules = []string{"no-such-rule"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown rule rejection")
	}
}

func TestValidateAcceptsKnownRules(t *testing.T) {
	cfg := Default()
	cfg.Pattern.Rules = []string{"high-confidence-entry", "losing-exits"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected known rules accepted: %v", err)
	}
}

func TestValidateReplayRequiresHistory(t *testing.T) {
	cfg := Default()
	cfg.Mode = "replay"
	cfg.History.Enabled = false
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected replay without history rejected")
	}
}

func TestApplyProfile(t *testing.T) {
	cfg := Default()
	if err := ApplyProfile(&cfg, "live"); err != nil {
		t.Fatalf("live profile: %v", err)
	}
	if cfg.Mode != "live" || !cfg.History.Enabled {
		t.Fatalf("unexpected live profile result: mode=%s history=%t", cfg.Mode, cfg.History.Enabled)
	}

	cfg = Default()
	if err := ApplyProfile(&cfg, "demo"); err != nil {
		t.Fatalf("demo profile: %v", err)
	}
	if cfg.Mode != "demo" || cfg.History.Enabled {
		t.Fatal("demo profile must disable history")
	}

	if err := ApplyProfile(&cfg, "bogus"); err == nil {
		t.Fatal("expected unknown profile rejected")
	}
	if err := ApplyProfile(&cfg, ""); err != nil {
		t.Fatalf("empty profile must be a noop: %v", err)
	}
}

package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/gamma"

	"github.com/agentdash/agent-analytics/internal/aggregate"
	"github.com/agentdash/agent-analytics/internal/config"
	"github.com/agentdash/agent-analytics/internal/filter"
	"github.com/agentdash/agent-analytics/internal/fixture"
	"github.com/agentdash/agent-analytics/internal/history"
	"github.com/agentdash/agent-analytics/internal/ingest"
	"github.com/agentdash/agent-analytics/internal/pattern"
	"github.com/agentdash/agent-analytics/internal/record"
)

// App wires the record store, detector, ingestion, and archive together and
// owns the recomputation of derived analytics.
type App struct {
	cfg      config.Config
	mode     string
	store    *record.Store
	detector *pattern.Detector
	archive  *history.Archive

	generator *fixture.Generator
	syncer    *ingest.Syncer

	mu        sync.RWMutex
	running   bool
	startAt   time.Time
	computed  uint64 // store version the cached outputs were derived from
	haveCache bool
	summary   aggregate.Summary
	patterns  []pattern.Pattern
}

// New constructs the app from config. gammaClient may be nil outside live
// mode.
func New(cfg config.Config, gammaClient gamma.Client) (*App, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "demo"
	}

	a := &App{
		cfg:      cfg,
		mode:     mode,
		store:    record.NewStoreWithSchemas(record.DefaultSchemas()),
		detector: pattern.NewDefaultDetector(cfg.Pattern.MinSamples),
		startAt:  time.Now(),
	}

	switch mode {
	case "demo":
		a.generator = fixture.NewGenerator(fixture.Config{
			Seed:    cfg.Demo.Seed,
			Agents:  cfg.Demo.Agents,
			Symbols: cfg.Demo.Symbols,
			Farms:   cfg.Demo.Farms,
		})
	case "live":
		if gammaClient == nil {
			return nil, fmt.Errorf("live mode requires a gamma client")
		}
		source := ingest.NewGammaSource(gammaClient, cfg.Ingest.MarketLimit)
		a.syncer = ingest.NewSyncer(source, a.store, cfg.Ingest.SyncInterval, a.onStoreChange)
	case "replay":
		// Records come from the archive alone.
	default:
		return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
	}

	if cfg.History.Enabled {
		archive, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.archive = archive
	}
	return a, nil
}

func (a *App) onStoreChange() {
	// Derived outputs are recomputed lazily; nothing to do beyond letting
	// the store version advance. Persist the new set when archiving.
	if a.archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.archive.SaveAll(ctx, a.store.Snapshot()); err != nil {
			log.Printf("history save: %v", err)
		}
	}
}

// Bootstrap populates the store before the run loop starts: archived
// records first (replay and warm start), then the demo seed batch.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.archive != nil {
		records, err := a.archive.LoadRecent(ctx, a.cfg.History.ReloadLimit)
		if err != nil {
			return fmt.Errorf("history reload: %w", err)
		}
		if len(records) > 0 {
			if err := a.store.ReplaceAll(records); err != nil {
				return fmt.Errorf("history reload: %w", err)
			}
			log.Printf("loaded %d archived records", len(records))
		}
	}

	if a.generator != nil && a.store.Len() == 0 && a.cfg.Demo.InitialRecords > 0 {
		batch := a.generator.Batch(a.cfg.Demo.InitialRecords)
		for _, r := range batch {
			if err := a.store.Append(r); err != nil {
				return fmt.Errorf("seed demo records: %w", err)
			}
		}
		log.Printf("seeded %d demo records (seed=%d)", len(batch), a.cfg.Demo.Seed)
		a.onStoreChange()
	}
	return nil
}

// Run drives the mode's ingestion loop and the heartbeat. Blocks until ctx
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}

	heartbeat := a.cfg.HeartbeatInterval
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	hbTicker := time.NewTicker(heartbeat)
	defer hbTicker.Stop()

	if a.syncer != nil {
		go func() {
			if err := a.syncer.Run(ctx); err != nil && err != context.Canceled {
				log.Printf("syncer stopped: %v", err)
			}
		}()
	}

	var demoTicker *time.Ticker
	var demoC <-chan time.Time
	if a.generator != nil && a.cfg.Demo.BatchPerTick > 0 {
		interval := a.cfg.Demo.TickInterval
		if interval <= 0 {
			interval = 15 * time.Second
		}
		demoTicker = time.NewTicker(interval)
		defer demoTicker.Stop()
		demoC = demoTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-demoC:
			a.appendDemoBatch()
		case <-hbTicker.C:
			s := a.Summary()
			log.Printf("heartbeat: mode=%s records=%d success_rate=%.2f patterns=%d",
				a.mode, s.Count, s.SuccessRate, len(a.Patterns()))
		}
	}
}

func (a *App) appendDemoBatch() {
	batch := a.generator.Batch(a.cfg.Demo.BatchPerTick)
	for _, r := range batch {
		if err := a.store.Append(r); err != nil {
			log.Printf("demo append: %v", err)
		}
	}
	a.onStoreChange()
}

// recompute refreshes the cached summary and patterns if the store changed
// since they were derived. Both are pure functions of the record set.
func (a *App) recompute() {
	version := a.store.Version()

	a.mu.RLock()
	fresh := a.haveCache && a.computed == version
	a.mu.RUnlock()
	if fresh {
		return
	}

	records := a.store.Snapshot()
	summary := aggregate.Aggregate(records)
	patterns, err := a.detector.Detect(records, a.cfg.Pattern.Rules...)
	if err != nil {
		// Only reachable with an invalid configured rule id, which
		// Validate rejects at startup.
		log.Printf("pattern detect: %v", err)
		patterns = nil
	}

	a.mu.Lock()
	a.computed = version
	a.haveCache = true
	a.summary = summary
	a.patterns = patterns
	a.mu.Unlock()
}

// Summary returns the aggregate summary of the full record set.
func (a *App) Summary() aggregate.Summary {
	a.recompute()
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.summary
}

// Patterns returns the current detected patterns.
func (a *App) Patterns() []pattern.Pattern {
	a.recompute()
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]pattern.Pattern(nil), a.patterns...)
}

// Records returns the records matching spec, most recent first.
func (a *App) Records(spec filter.Spec) ([]record.Record, error) {
	if len(spec.SearchFields) == 0 {
		spec.SearchFields = a.cfg.Filter.SearchFields
	}
	matched, err := filter.Apply(a.store.Snapshot(), spec)
	if err != nil {
		return nil, err
	}
	// Conventional UI order is most-recent-first; insertion order is not
	// guaranteed chronological, so sort explicitly.
	sortByTimestampDesc(matched)
	return matched, nil
}

// FilteredSummary aggregates over the records matching spec.
func (a *App) FilteredSummary(spec filter.Spec) (aggregate.Summary, error) {
	if len(spec.SearchFields) == 0 {
		spec.SearchFields = a.cfg.Filter.SearchFields
	}
	matched, err := filter.Apply(a.store.Snapshot(), spec)
	if err != nil {
		return aggregate.Summary{}, err
	}
	return aggregate.Aggregate(matched), nil
}

// IsRunning reports whether the run loop is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Mode returns the configured mode.
func (a *App) Mode() string {
	return a.mode
}

// RecordCount returns the current store size.
func (a *App) RecordCount() int {
	return a.store.Len()
}

// Rules returns the registered pattern rules.
func (a *App) Rules() []pattern.Rule {
	return a.detector.Rules()
}

// LastSync returns the live syncer's last successful fetch time, zero
// outside live mode.
func (a *App) LastSync() time.Time {
	if a.syncer == nil {
		return time.Time{}
	}
	return a.syncer.LastSync()
}

// Store exposes the record store for tests and the entrypoint.
func (a *App) Store() *record.Store {
	return a.store
}

// Shutdown releases resources. Safe to call after Run returns.
func (a *App) Shutdown(_ context.Context) {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			log.Printf("history close: %v", err)
		}
	}
	log.Println("analytics app shut down")
}

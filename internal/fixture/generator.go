// Package fixture generates demo records for the dashboard's demo mode.
// All randomness flows through an explicit seeded source so the same seed
// always yields the same records.
package fixture

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/agentdash/agent-analytics/internal/record"
)

// Config controls the generated population.
type Config struct {
	Seed    uint64
	Agents  []string
	Symbols []string
	Farms   []string
	// Now anchors generated timestamps; zero means time.Now at construction.
	Now time.Time
}

// Generator produces deterministic demo records from a seeded PCG source.
type Generator struct {
	rng     *rand.Rand
	cfg     Config
	seq     int
	schemas record.Schemas
}

var defaultAgents = []string{"momentum-7", "arb-scout", "risk-sentinel", "yield-hunter"}
var defaultSymbols = []string{"BTC", "ETH", "SOL", "MATIC"}
var defaultFarms = []string{"stable-lp", "eth-staking", "cross-chain-lp"}

// NewGenerator creates a generator seeded from cfg.Seed.
func NewGenerator(cfg Config) *Generator {
	if len(cfg.Agents) == 0 {
		cfg.Agents = defaultAgents
	}
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = defaultSymbols
	}
	if len(cfg.Farms) == 0 {
		cfg.Farms = defaultFarms
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	return &Generator{
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		cfg:     cfg,
		schemas: record.DefaultSchemas(),
	}
}

func (g *Generator) nextID(kind string) string {
	g.seq++
	// uuid.NewSHA1 over a seed-stable name keeps IDs reproducible per seed.
	name := fmt.Sprintf("%s-%d-%d", kind, g.cfg.Seed, g.seq)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func (g *Generator) pick(items []string) string {
	return items[g.rng.IntN(len(items))]
}

// timestamp walks backwards from Now so earlier records are older, matching
// the most-recent-first ordering the UI sorts into.
func (g *Generator) timestamp(i int) time.Time {
	jitter := time.Duration(g.rng.IntN(50)) * time.Second
	return g.cfg.Now.Add(-time.Duration(i)*time.Minute - jitter)
}

// Decisions generates n agent decision records across the decision
// categories, each with confidence, risk score, size, pnl, and an outcome.
func (g *Generator) Decisions(n int) []record.Record {
	categories := []record.Category{
		record.CategoryTradeEntry,
		record.CategoryTradeExit,
		record.CategoryRebalance,
		record.CategoryBridge,
	}
	out := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		cat := categories[g.rng.IntN(len(categories))]
		agent := g.pick(g.cfg.Agents)
		symbol := g.pick(g.cfg.Symbols)
		confidence := 20 + g.rng.Float64()*80
		pnl := (g.rng.Float64() - 0.45) * 200
		success := pnl > 0

		out = append(out, record.Record{
			ID:        g.nextID("decision"),
			Timestamp: g.timestamp(i),
			Category:  cat,
			Numeric: map[string]float64{
				"confidence": confidence,
				"risk_score": g.rng.Float64() * 100,
				"size":       10 + g.rng.Float64()*490,
				"pnl":        pnl,
			},
			Outcome:   &success,
			Label:     fmt.Sprintf("%s %s on %s", agent, cat, symbol),
			Reasoning: fmt.Sprintf("%s signalled %s with confidence %.0f", agent, cat, confidence),
			Tags:      []string{agent, symbol},
		})
	}
	return out
}

// SentimentReadings generates n sentiment records, one symbol per record.
func (g *Generator) SentimentReadings(n int) []record.Record {
	out := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		symbol := g.pick(g.cfg.Symbols)
		score := (g.rng.Float64()*2 - 1) * 100
		out = append(out, record.Record{
			ID:        g.nextID("sentiment"),
			Timestamp: g.timestamp(i),
			Category:  record.CategorySentiment,
			Numeric: map[string]float64{
				"score":    score,
				"momentum": (g.rng.Float64()*2 - 1) * 100,
			},
			Label: fmt.Sprintf("%s sentiment", symbol),
			Tags:  []string{symbol},
		})
	}
	return out
}

// FarmSnapshots generates n yield-farm snapshot records.
func (g *Generator) FarmSnapshots(n int) []record.Record {
	out := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		farm := g.pick(g.cfg.Farms)
		out = append(out, record.Record{
			ID:        g.nextID("farm"),
			Timestamp: g.timestamp(i),
			Category:  record.CategoryFarmSnapshot,
			Numeric: map[string]float64{
				"apy":         g.rng.Float64() * 40,
				"tvl_usd":     10000 + g.rng.Float64()*990000,
				"utilization": g.rng.Float64() * 100,
			},
			Label: fmt.Sprintf("%s snapshot", farm),
			Tags:  []string{farm},
		})
	}
	return out
}

// Batch generates a mixed batch in the dashboard's usual proportions:
// mostly decisions with some sentiment readings and farm snapshots.
func (g *Generator) Batch(n int) []record.Record {
	decisions := n * 6 / 10
	sentiment := n * 2 / 10
	farms := n - decisions - sentiment

	out := g.Decisions(decisions)
	out = append(out, g.SentimentReadings(sentiment)...)
	out = append(out, g.FarmSnapshots(farms)...)
	return out
}

// Validate checks every generated record against the default schemas.
// The generator's tests hold this as an invariant.
func (g *Generator) Validate(records []record.Record) error {
	for _, r := range records {
		if err := g.schemas.Validate(r); err != nil {
			return err
		}
	}
	return nil
}

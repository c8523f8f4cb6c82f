// Package ingest turns external market data into well-formed records and
// keeps the record store in sync with it.
package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/gamma"

	"github.com/agentdash/agent-analytics/internal/record"
)

// Source produces a fresh, fully-validated record set on demand.
type Source interface {
	Fetch(ctx context.Context) ([]record.Record, error)
}

// GammaSource derives market-snapshot records from the Polymarket Gamma API.
// It is read-only: nothing is ever written back.
type GammaSource struct {
	client gamma.Client
	limit  int
	now    func() time.Time
}

// NewGammaSource creates a source keeping at most limit markets per fetch.
func NewGammaSource(client gamma.Client, limit int) *GammaSource {
	if limit <= 0 {
		limit = 100
	}
	return &GammaSource{client: client, limit: limit, now: time.Now}
}

// Fetch pulls active markets and maps each to one market-snapshot record.
// Markets with unparseable numeric fields are skipped, not zero-filled.
func (s *GammaSource) Fetch(ctx context.Context) ([]record.Record, error) {
	markets, err := s.client.Markets(ctx, &gamma.MarketsRequest{})
	if err != nil {
		return nil, fmt.Errorf("gamma markets: %w", err)
	}

	now := s.now().UTC()
	out := make([]record.Record, 0, len(markets))
	for _, m := range markets {
		if !m.Active {
			continue
		}
		r, ok := MapMarket(m, now)
		if !ok {
			continue
		}
		out = append(out, r)
		if len(out) >= s.limit {
			break
		}
	}
	return out, nil
}

// MapMarket converts one Gamma market into a market-snapshot record.
// The second return is false when the market lacks usable numeric data.
func MapMarket(m gamma.Market, now time.Time) (record.Record, bool) {
	if m.ID == "" {
		return record.Record{}, false
	}
	liquidity, err := strconv.ParseFloat(m.Liquidity, 64)
	if err != nil {
		return record.Record{}, false
	}
	volume, err := strconv.ParseFloat(m.Volume24hr, 64)
	if err != nil {
		return record.Record{}, false
	}

	numeric := map[string]float64{
		"liquidity":  liquidity,
		"volume_24h": volume,
	}
	if spread, err := strconv.ParseFloat(m.Spread, 64); err == nil {
		numeric["spread_bps"] = spread * 10000
	}
	if end, err := time.Parse(time.RFC3339, m.EndDate); err == nil {
		numeric["days_to_end"] = end.Sub(now).Hours() / 24
	}

	tags := make([]string, 0, len(m.Tokens))
	for _, tok := range m.Tokens {
		if tok.TokenID != "" {
			tags = append(tags, tok.TokenID)
		}
	}

	return record.Record{
		ID:        "gamma-" + m.ID,
		Timestamp: now,
		Category:  record.CategoryMarket,
		Numeric:   numeric,
		Label:     "market " + m.ID,
		Tags:      tags,
	}, true
}

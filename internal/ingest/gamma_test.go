package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/GoPolymarket/polymarket-go-sdk/pkg/gamma"
)

// mockGammaClient implements gamma.Client for testing.
type mockGammaClient struct {
	gamma.Client // embed to satisfy interface; panics if unused methods are called
	markets      []gamma.Market
	err          error
}

func (m *mockGammaClient) Markets(_ context.Context, _ *gamma.MarketsRequest) ([]gamma.Market, error) {
	return m.markets, m.err
}

func activeMarket(id string) gamma.Market {
	end := time.Now().Add(30 * 24 * time.Hour).Format(time.RFC3339)
	return gamma.Market{
		ID:         id,
		Active:     true,
		Liquidity:  "10000",
		Volume24hr: "5000",
		Spread:     "0.05",
		EndDate:    end,
		Tokens:     []gamma.Token{{TokenID: "tok-" + id, Outcome: "Yes"}},
	}
}

func TestFetchMapsActiveMarkets(t *testing.T) {
	inactive := activeMarket("m2")
	inactive.Active = false
	mock := &mockGammaClient{markets: []gamma.Market{activeMarket("m1"), inactive}}

	src := NewGammaSource(mock, 10)
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	r := records[0]
	if r.ID != "gamma-m1" {
		t.Fatalf("expected gamma-m1, got %s", r.ID)
	}
	if r.Category != "market_snapshot" {
		t.Fatalf("expected market_snapshot, got %s", r.Category)
	}
	if got := r.Numeric["liquidity"]; got != 10000 {
		t.Fatalf("expected liquidity 10000, got %f", got)
	}
	if got := r.Numeric["spread_bps"]; got != 500 {
		t.Fatalf("expected spread 500 bps, got %f", got)
	}
	if got := r.Numeric["days_to_end"]; got < 29 || got > 31 {
		t.Fatalf("expected ~30 days to end, got %f", got)
	}
}

func TestFetchSkipsUnparseableMarkets(t *testing.T) {
	bad := activeMarket("m1")
	bad.Liquidity = "not-a-number"
	mock := &mockGammaClient{markets: []gamma.Market{bad, activeMarket("m2")}}

	src := NewGammaSource(mock, 10)
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 || records[0].ID != "gamma-m2" {
		t.Fatalf("expected only gamma-m2, got %v", records)
	}
}

func TestFetchHonorsLimit(t *testing.T) {
	mock := &mockGammaClient{markets: []gamma.Market{
		activeMarket("m1"), activeMarket("m2"), activeMarket("m3"),
	}}
	src := NewGammaSource(mock, 2)
	records, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestMapMarketOptionalFields(t *testing.T) {
	m := activeMarket("m1")
	m.Spread = ""
	m.EndDate = "not-a-date"
	r, ok := MapMarket(m, time.Now())
	if !ok {
		t.Fatal("expected mappable market")
	}
	if _, present := r.Numeric["spread_bps"]; present {
		t.Fatal("expected spread_bps absent, not zero-filled")
	}
	if _, present := r.Numeric["days_to_end"]; present {
		t.Fatal("expected days_to_end absent, not zero-filled")
	}
}

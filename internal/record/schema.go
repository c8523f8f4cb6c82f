package record

import "math"

// FieldRange is the documented valid range for one numeric measurement.
type FieldRange struct {
	Min      float64
	Max      float64
	Required bool
}

// Schema declares the numeric fields a category carries, validated at
// ingestion so downstream aggregation never sees out-of-range values.
type Schema struct {
	Category Category
	Fields   map[string]FieldRange
}

// Schemas maps category → declared schema. A category without a schema is
// accepted as-is; schemas are opt-in per domain.
type Schemas map[Category]Schema

const (
	CategoryTradeEntry   Category = "trade_entry"
	CategoryTradeExit    Category = "trade_exit"
	CategoryRebalance    Category = "rebalance"
	CategoryBridge       Category = "bridge"
	CategorySentiment    Category = "sentiment"
	CategoryFarmSnapshot Category = "farm_snapshot"
	CategoryMarket       Category = "market_snapshot"
)

// DefaultSchemas covers the dashboard's record variants: agent decisions,
// sentiment readings, farm snapshots, and live market snapshots.
func DefaultSchemas() Schemas {
	unbounded := FieldRange{Min: math.Inf(-1), Max: math.Inf(1)}
	pct := FieldRange{Min: 0, Max: 100, Required: true}

	decision := map[string]FieldRange{
		"confidence": pct,
		"risk_score": {Min: 0, Max: 100},
		"pnl":        unbounded,
		"size":       {Min: 0, Max: math.Inf(1)},
	}
	schemas := Schemas{
		CategorySentiment: {
			Category: CategorySentiment,
			Fields: map[string]FieldRange{
				"score":    {Min: -100, Max: 100, Required: true},
				"momentum": {Min: -100, Max: 100},
			},
		},
		CategoryFarmSnapshot: {
			Category: CategoryFarmSnapshot,
			Fields: map[string]FieldRange{
				"apy":         {Min: 0, Max: math.Inf(1), Required: true},
				"tvl_usd":     {Min: 0, Max: math.Inf(1)},
				"utilization": {Min: 0, Max: 100},
			},
		},
		CategoryMarket: {
			Category: CategoryMarket,
			Fields: map[string]FieldRange{
				"liquidity":    {Min: 0, Max: math.Inf(1)},
				"volume_24h":   {Min: 0, Max: math.Inf(1)},
				"spread_bps":   {Min: 0, Max: math.Inf(1)},
				"days_to_end":  unbounded,
				"best_outcome": {Min: 0, Max: 1},
			},
		},
	}
	for _, cat := range []Category{CategoryTradeEntry, CategoryTradeExit, CategoryRebalance, CategoryBridge} {
		schemas[cat] = Schema{Category: cat, Fields: decision}
	}
	return schemas
}

// Validate checks a record against its category's schema, if one is declared.
func (s Schemas) Validate(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	schema, ok := s[r.Category]
	if !ok {
		return nil
	}
	for field, fr := range schema.Fields {
		v, present := r.Numeric[field]
		if !present {
			if fr.Required {
				return &ValidationError{RecordID: r.ID, Field: field, Reason: "required by schema"}
			}
			continue
		}
		if v < fr.Min || v > fr.Max {
			return &ValidationError{
				RecordID: r.ID,
				Field:    field,
				Reason:   "out of declared range",
			}
		}
	}
	return nil
}

package pattern

import "github.com/agentdash/agent-analytics/internal/record"

func f(v float64) *float64 { return &v }
func b(v bool) *bool       { return &v }

// DefaultRules are the dashboard's stock heuristics over agent activity.
// IDs are stable: the config layer enables rules by ID and the API exposes
// them to the frontend.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:             "high-confidence-entry",
			Label:          "High-confidence entries",
			Confidence:     0.9,
			Categories:     []record.Category{record.CategoryTradeEntry},
			Field:          "confidence",
			Min:            f(80),
			MagnitudeField: "pnl",
			Recommendation: "Agents rate these entries above 80; consider scaling position size on this cohort.",
		},
		{
			ID:             "low-confidence-entry",
			Label:          "Low-confidence entries",
			Confidence:     0.8,
			Categories:     []record.Category{record.CategoryTradeEntry},
			Field:          "confidence",
			Max:            f(40),
			MagnitudeField: "pnl",
			Recommendation: "Entries below confidence 40 underperform; tighten the entry threshold.",
		},
		{
			ID:             "losing-exits",
			Label:          "Losing exits",
			Confidence:     0.75,
			Categories:     []record.Category{record.CategoryTradeExit},
			Outcome:        b(false),
			MagnitudeField: "pnl",
			Recommendation: "Review stop placement on exits closed at a loss.",
		},
		{
			ID:             "frequent-rebalance",
			Label:          "Frequent rebalancing",
			Confidence:     0.6,
			Categories:     []record.Category{record.CategoryRebalance},
			MagnitudeField: "size",
			Recommendation: "Rebalances are firing often; widen the drift band to cut churn.",
		},
		{
			ID:             "bridge-activity",
			Label:          "Cross-chain bridging",
			Confidence:     0.6,
			Categories:     []record.Category{record.CategoryBridge},
			MagnitudeField: "size",
			Recommendation: "Sustained bridge volume; verify destination-chain liquidity before scaling.",
		},
		{
			ID:             "bearish-sentiment",
			Label:          "Bearish sentiment cluster",
			Confidence:     0.5,
			Categories:     []record.Category{record.CategorySentiment},
			Field:          "score",
			Max:            f(-30),
			MagnitudeField: "score",
			Recommendation: "Sentiment readings are clustering bearish; reduce gross exposure.",
		},
		{
			ID:             "high-risk-decision",
			Label:          "High-risk decisions",
			Confidence:     0.85,
			Field:          "risk_score",
			Min:            f(70),
			MagnitudeField: "risk_score",
			Recommendation: "Risk scores above 70 across decision types; audit the agents' risk model inputs.",
		},
	}
}

// NewDefaultDetector registers the stock rules on a fresh detector.
func NewDefaultDetector(minSamples int) *Detector {
	d := NewDetector(minSamples)
	for _, r := range DefaultRules() {
		// Stock rule IDs are unique by construction.
		_ = d.Register(r)
	}
	return d
}

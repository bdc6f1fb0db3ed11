package nlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		question string
		want     Intent
	}{
		{"what is the total revenue", IntentAggregateSum},
		{"how much did we sell", IntentAggregateSum},
		{"average order value", IntentAggregateAvg},
		{"what is the typical price", IntentAggregateAvg},
		{"how many orders", IntentAggregateCount},
		{"count of customers", IntentAggregateCount},
		{"highest revenue product", IntentAggregateMax},
		{"which region sold the most", IntentAggregateMax},
		{"lowest scoring item", IntentAggregateMin},
		{"revenue trend", IntentTrend},
		{"sales over time", IntentTrend},
		{"distribution of prices", IntentDistribution},
		{"compare regions", IntentComparison},
		{"east vs west", IntentComparison},
		{"show all data", IntentShowAll},
		{"list all records", IntentShowAll},
		{"something unparseable", IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIntent(tt.question))
		})
	}
}

// Declaration order is the tie-break: "top" belongs to aggregate_max, which
// is scanned before the ranking family, so "top 10 by sales" never reads as
// plain ranking.
func TestDetectIntentOrderStable(t *testing.T) {
	assert.Equal(t, IntentAggregateMax, DetectIntent("top 10 products by sales"))
	assert.Equal(t, IntentAggregateSum, DetectIntent("total count of orders"))

	// Deterministic across repeated calls.
	first := DetectIntent("top 10 products by sales")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, DetectIntent("top 10 products by sales"))
	}
}

func TestDetectGranularity(t *testing.T) {
	tests := []struct {
		question string
		want     Granularity
	}{
		{"revenue by year", GranularityYear},
		{"annual sales", GranularityYear},
		{"quarterly breakdown", GranularityQuarter},
		{"sales by month", GranularityMonth},
		{"monthly totals", GranularityMonth},
		{"weekly active users", GranularityWeek},
		{"daily revenue", GranularityDay},
		{"revenue by date", GranularityDay},
		{"total revenue", GranularityNone},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectGranularity(tt.question))
		})
	}
}

// Year is scanned before month so "monthly revenue per year" buckets by year.
func TestDetectGranularityPrecedence(t *testing.T) {
	assert.Equal(t, GranularityYear, DetectGranularity("monthly revenue per year"))
}

// Package nlq interprets natural-language questions: it classifies intent
// and extracts column references, inline filters, row limits, and time
// granularity from the question text.
package nlq

import "regexp"

// Intent is the heuristic question category driving query-shape selection.
type Intent string

const (
	IntentAggregateSum   Intent = "aggregate_sum"
	IntentAggregateAvg   Intent = "aggregate_avg"
	IntentAggregateCount Intent = "aggregate_count"
	IntentAggregateMax   Intent = "aggregate_max"
	IntentAggregateMin   Intent = "aggregate_min"
	IntentTrend          Intent = "trend"
	IntentDistribution   Intent = "distribution"
	IntentComparison     Intent = "comparison"
	IntentRanking        Intent = "ranking"
	IntentShowAll        Intent = "show_all"
	IntentUnknown        Intent = ""
)

type intentFamily struct {
	intent   Intent
	patterns []*regexp.Regexp
}

// intentFamilies is scanned in declaration order and the first matching
// pattern wins. The order is a deliberate tie-break: aggregate_max contains
// "top" and must be checked before the generic ranking family.
var intentFamilies = []intentFamily{
	{IntentAggregateSum, compileAll(
		`\b(total|sum|combined|aggregate)\b`, `\bhow much\b`, `\bsum of\b`)},
	{IntentAggregateAvg, compileAll(
		`\b(average|avg|mean)\b`, `\btypical\b`)},
	{IntentAggregateCount, compileAll(
		`\b(count|how many|number of)\b`, `\bhow often\b`)},
	{IntentAggregateMax, compileAll(
		`\b(max|maximum|highest|largest|biggest|top|best)\b`, `\bmost\b`)},
	{IntentAggregateMin, compileAll(
		`\b(min|minimum|lowest|smallest|least|worst|bottom)\b`)},
	{IntentTrend, compileAll(
		`\b(trend|over time|by date|by month|by week|by year|by day)\b`,
		`\b(history|historical|timeline)\b`)},
	{IntentDistribution, compileAll(
		`\b(distribution|spread|histogram|range|frequency)\b`)},
	{IntentComparison, compileAll(
		`\b(compare|vs|versus|comparison)\b`, `\bby category\b`)},
	{IntentRanking, compileAll(
		`\b(top \d+|bottom \d+|first \d+|last \d+)\b`, `\b(rank|ranking)\b`)},
	{IntentShowAll, compileAll(
		`\b(show all|list all|all data|everything|all records)\b`)},
}

// DetectIntent returns the first intent whose first matching pattern fires,
// scanning families and patterns in declaration order. IntentUnknown routes
// the question to the inferred-query fallback.
func DetectIntent(question string) Intent {
	for _, family := range intentFamilies {
		for _, p := range family.patterns {
			if p.MatchString(question) {
				return family.intent
			}
		}
	}
	return IntentUnknown
}

// Granularity is a time bucketing unit for trend queries.
type Granularity string

const (
	GranularityYear    Granularity = "year"
	GranularityQuarter Granularity = "quarter"
	GranularityMonth   Granularity = "month"
	GranularityWeek    Granularity = "week"
	GranularityDay     Granularity = "day"
	GranularityNone    Granularity = ""
)

type granularityFamily struct {
	granularity Granularity
	patterns    []*regexp.Regexp
}

var granularityFamilies = []granularityFamily{
	{GranularityYear, compileAll(`\byear(ly|s)?\b`, `\bannual(ly)?\b`)},
	{GranularityQuarter, compileAll(`\bquarter(ly|s)?\b`)},
	{GranularityMonth, compileAll(`\bmonth(ly|s)?\b`)},
	{GranularityWeek, compileAll(`\bweek(ly|s)?\b`)},
	{GranularityDay, compileAll(`\bdai?ly\b`, `\bday(s)?\b`, `\bdate\b`)},
}

// DetectGranularity returns the first time granularity keyword family that
// matches, or GranularityNone.
func DetectGranularity(question string) Granularity {
	for _, family := range granularityFamilies {
		for _, p := range family.patterns {
			if p.MatchString(question) {
				return family.granularity
			}
		}
	}
	return GranularityNone
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(`(?i)` + p)
	}
	return compiled
}

// Package charts recommends a visualization for a query result using a
// deterministic decision tree over row count, column roles, and the
// visualization intent of the question. The table shape is the universal
// fallback, so a recommendation is always produced.
package charts

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/schema"
)

// visualIntent is the chart-facing question intent, distinct from the query
// synthesis intent.
type visualIntent string

const (
	visualNone         visualIntent = ""
	visualTrend        visualIntent = "trend"
	visualComparison   visualIntent = "comparison"
	visualDistribution visualIntent = "distribution"
	visualComposition  visualIntent = "composition"
	visualCorrelation  visualIntent = "correlation"
	visualRanking      visualIntent = "ranking"
)

// Ordered first-match-wins. Trend before comparison so "by month" reads as
// a time series, not a breakdown.
var visualIntentFamilies = []struct {
	intent   visualIntent
	patterns []*regexp.Regexp
}{
	{visualTrend, compileAll(`\btrend\b`, `\bover time\b`, `\bby date\b`, `\bby month\b`, `\bby week\b`, `\bhistory\b`)},
	{visualComparison, compileAll(`\bcompare\b`, `\bvs\b`, `\bversus\b`, `\bby\b`, `\bper\b`, `\bbreakdown\b`)},
	{visualDistribution, compileAll(`\bdistribution\b`, `\bspread\b`, `\bhistogram\b`, `\bfrequency\b`)},
	{visualComposition, compileAll(`\bcomposition\b`, `\bshare\b`, `\bproportion\b`, `\bpercentage\b`)},
	{visualCorrelation, compileAll(`\bcorrelation\b`, `\brelationship\b`, `\bscatter\b`)},
	{visualRanking, compileAll(`\btop\b`, `\bbottom\b`, `\bhighest\b`, `\blowest\b`, `\bbest\b`, `\bworst\b`)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		res[i] = regexp.MustCompile(`(?i)` + p)
	}
	return res
}

func detectVisualIntent(question string) visualIntent {
	for _, family := range visualIntentFamilies {
		for _, re := range family.patterns {
			if re.MatchString(question) {
				return family.intent
			}
		}
	}
	return visualNone
}

// largeResultThreshold forces the table view above this many rows.
const largeResultThreshold = 100

// Selector recommends charts for query results.
type Selector struct {
	logger *zap.Logger
}

func NewSelector(logger *zap.Logger) *Selector {
	return &Selector{logger: logger.Named("charts")}
}

// Recommend walks the decision tree and returns a recommendation. Checks run
// in a fixed order; the first matching branch wins.
func (s *Selector) Recommend(rows []map[string]any, columns []models.ResultColumn, question string) *models.ChartRecommendation {
	if len(rows) == 0 || len(columns) == 0 {
		return noChart("No data available")
	}

	var dateCols, measureCols, dimCols []string
	for _, col := range columns {
		switch {
		case col.Type == models.SemanticDate || schema.LooksLikeDate(col.Name, rows):
			dateCols = append(dateCols, col.Name)
		case col.Type == models.SemanticMeasure || schema.LooksLikeMeasure(col.Name, rows):
			measureCols = append(measureCols, col.Name)
		default:
			dimCols = append(dimCols, col.Name)
		}
	}

	if len(rows) == 1 {
		return metricCard(rows[0], columns)
	}
	if len(rows) > largeResultThreshold {
		return tableView(rows, columnNames(columns), fmt.Sprintf("Large dataset (%d rows). Showing table view.", len(rows)))
	}

	intent := detectVisualIntent(question)
	s.logger.Debug("selecting chart",
		zap.String("intent", string(intent)),
		zap.Int("rows", len(rows)),
		zap.Int("dates", len(dateCols)),
		zap.Int("measures", len(measureCols)),
		zap.Int("dimensions", len(dimCols)))

	if intent == visualTrend && len(dateCols) > 0 {
		return lineChart(rows, dateCols, measureCols, dimCols)
	}
	if intent == visualDistribution && len(measureCols) > 0 {
		return histogram(rows, measureCols[0])
	}
	if intent == visualCorrelation && len(measureCols) >= 2 {
		return scatterPlot(rows, measureCols[0], measureCols[1])
	}
	if intent == visualComposition && len(dimCols) > 0 && len(measureCols) > 0 {
		if uniqueValues(rows, dimCols[0]) <= 8 {
			return doughnutChart(rows, dimCols[0], measureCols[0])
		}
	}

	if len(dateCols) > 0 && len(measureCols) > 0 {
		return lineChart(rows, dateCols, measureCols, dimCols)
	}

	if len(dimCols) > 0 && len(measureCols) > 0 {
		unique := uniqueValues(rows, dimCols[0])
		switch {
		case unique <= 6:
			return barChart(rows, dimCols[0], measureCols[0])
		case unique <= 15:
			return horizontalBar(rows, dimCols[0], measureCols[0])
		default:
			return tableView(rows, columnNames(columns), fmt.Sprintf("Too many categories (%d)", unique))
		}
	}

	if len(measureCols) >= 2 {
		return multiMeasureBar(rows, measureCols)
	}

	return tableView(rows, columnNames(columns), "No clear chart pattern detected")
}

func uniqueValues(rows []map[string]any, column string) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		seen[fmt.Sprint(row[column])] = struct{}{}
	}
	return len(seen)
}

func columnNames(columns []models.ResultColumn) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}

// Package insights mines query results for statistical findings: trend
// changes, outliers, concentration, category deviations, and data quality
// caveats. Detectors are independent; one failing never suppresses the rest.
package insights

import (
	"sort"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/schema"
)

const (
	// noiseThreshold is the minimum relative change worth reporting.
	noiseThreshold = 0.05
	// minSampleSize gates outlier detection and the small-sample caveat.
	minSampleSize = 30
	// maxCVThreshold flags volatility when std/|mean| exceeds it.
	maxCVThreshold = 1.5
	// maxInsights caps the merged, deduplicated output.
	maxInsights = 5
)

// Engine runs the detector suite over a result set.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("insights")}
}

// Detect runs all detectors and returns at most five insights, ordered by
// priority (stable within each tier) and deduplicated by type and title.
func (e *Engine) Detect(rows []map[string]any, columns []models.ResultColumn) []models.Insight {
	if len(rows) == 0 {
		return nil
	}

	measures, dims := splitRoles(columns)
	if len(measures) == 0 {
		// Untyped or all-categorical column metadata; re-infer roles from
		// the values themselves so numeric columns are still analyzed.
		names := make([]string, len(columns))
		for i, c := range columns {
			names[i] = c.Name
		}
		measures, dims = splitRoles(schema.InferResultColumns(rows, names, 100))
	}

	var all []models.Insight
	detectors := []struct {
		name string
		run  func() []models.Insight
	}{
		{"trend", func() []models.Insight { return detectTrendChanges(rows, measures) }},
		{"outliers", func() []models.Insight { return detectOutliers(rows, measures) }},
		{"concentration", func() []models.Insight { return detectConcentration(rows, measures, dims) }},
		{"summary", func() []models.Insight { return detectStatisticalSummary(rows, measures) }},
		{"patterns", func() []models.Insight { return detectCategoryDeviations(rows, measures, dims) }},
	}
	for _, d := range detectors {
		all = append(all, e.runDetector(d.name, d.run)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return priorityRank(all[i].Priority) < priorityRank(all[j].Priority)
	})

	seen := make(map[string]struct{}, len(all))
	unique := all[:0]
	for _, in := range all {
		key := in.DedupKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, in)
	}

	if len(unique) > maxInsights {
		unique = unique[:maxInsights]
	}
	return unique
}

// runDetector isolates a single detector so a panic in one cannot take down
// the whole analysis.
func (e *Engine) runDetector(name string, fn func() []models.Insight) (out []models.Insight) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("insight detector panicked",
				zap.String("detector", name),
				zap.Any("panic", r))
			out = nil
		}
	}()
	return fn()
}

// splitRoles separates measure columns from grouping columns. Date columns
// count as grouping columns here; the detectors only care about the
// measure/non-measure axis.
func splitRoles(columns []models.ResultColumn) (measures, dims []string) {
	for _, c := range columns {
		switch c.Type {
		case models.SemanticMeasure:
			measures = append(measures, c.Name)
		case models.SemanticDate:
		default:
			dims = append(dims, c.Name)
		}
	}
	return measures, dims
}

func priorityRank(p models.InsightPriority) int {
	switch p {
	case models.PriorityHigh:
		return 0
	case models.PriorityMedium:
		return 1
	case models.PriorityLow:
		return 2
	}
	return 3
}

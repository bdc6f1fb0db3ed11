package insights

import (
	"fmt"
	"math"

	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/schema"
)

// detectTrendChanges reports the last-step change of each measure and, on
// five or more points, the first-half versus second-half drift.
func detectTrendChanges(rows []map[string]any, measures []string) []models.Insight {
	var out []models.Insight
	if len(rows) < 2 {
		return out
	}
	for _, measure := range measures {
		values := columnValues(rows, measure)
		if len(values) < 2 {
			continue
		}

		current, previous := values[len(values)-1], values[len(values)-2]
		if previous != 0 {
			pctChange := (current - previous) / math.Abs(previous)
			if math.Abs(pctChange) >= noiseThreshold {
				direction := "increased"
				if pctChange < 0 {
					direction = "decreased"
				}
				priority := models.PriorityMedium
				if math.Abs(pctChange) > 0.15 {
					priority = models.PriorityHigh
				}
				out = append(out, models.Insight{
					Type:        models.InsightTrendChange,
					Title:       fmt.Sprintf("%s %s %.1f%%", formatLabel(measure), direction, math.Abs(pctChange)*100),
					Description: fmt.Sprintf("Changed from %s to %s", formatNumber(previous), formatNumber(current)),
					Magnitude:   pctChange,
					Confidence:  sampleConfidence(len(values)),
					Priority:    priority,
					Metric:      measure,
				})
			}
		}

		if len(values) >= 5 {
			half := len(values) / 2
			firstHalf := mean(values[:half])
			secondHalf := mean(values[half:])
			if firstHalf != 0 {
				overall := (secondHalf - firstHalf) / math.Abs(firstHalf)
				if math.Abs(overall) >= noiseThreshold*2 {
					direction := "upward"
					if overall < 0 {
						direction = "downward"
					}
					out = append(out, models.Insight{
						Type:        models.InsightTrendDirection,
						Title:       fmt.Sprintf("Overall %s trend in %s", direction, formatLabel(measure)),
						Description: fmt.Sprintf("Average changed from %s to %s (%+.1f%%)", formatNumber(firstHalf), formatNumber(secondHalf), overall*100),
						Magnitude:   overall,
						Confidence:  sampleConfidence(len(values)),
						Priority:    models.PriorityMedium,
						Metric:      measure,
					})
				}
			}
		}
	}
	return out
}

// detectOutliers flags values more than two standard deviations from the
// mean. Requires at least minSampleSize observations per measure.
func detectOutliers(rows []map[string]any, measures []string) []models.Insight {
	var out []models.Insight
	for _, measure := range measures {
		values := columnValues(rows, measure)
		if len(values) < minSampleSize {
			continue
		}
		m := mean(values)
		sd := stdev(values)
		if sd == 0 {
			continue
		}

		var outliers []float64
		for _, v := range values {
			if math.Abs(v-m) > 2*sd {
				outliers = append(outliers, v)
			}
		}
		if len(outliers) == 0 {
			continue
		}

		outlierPct := float64(len(outliers)) / float64(len(values)) * 100
		mostExtreme := outliers[0]
		for _, v := range outliers[1:] {
			if math.Abs(v-m) > math.Abs(mostExtreme-m) {
				mostExtreme = v
			}
		}

		plural := ""
		if len(outliers) > 1 {
			plural = "s"
		}
		confidence := 0.7
		if len(values) >= 100 {
			confidence = 0.9
		}
		priority := models.PriorityMedium
		if outlierPct >= 5 {
			priority = models.PriorityHigh
		}
		out = append(out, models.Insight{
			Type:        models.InsightOutlier,
			Title:       fmt.Sprintf("%d outlier%s in %s", len(outliers), plural, formatLabel(measure)),
			Description: fmt.Sprintf("%.1f%% of values are >2σ from mean. Most extreme: %s", outlierPct, formatNumber(mostExtreme)),
			Magnitude:   outlierPct / 100,
			Confidence:  confidence,
			Priority:    priority,
			Metric:      measure,
		})
	}
	return out
}

// detectConcentration reports when a single category dominates the first
// measure, or when a small prefix of categories (<=25%) covers 80% of the
// total (the Pareto pattern).
func detectConcentration(rows []map[string]any, measures, dims []string) []models.Insight {
	var out []models.Insight
	if len(measures) == 0 || len(dims) == 0 {
		return out
	}
	measure := measures[0]
	for _, dim := range dims {
		categories, totals := categoryTotals(rows, dim, measure)
		if len(categories) < 2 {
			continue
		}
		var totalSum float64
		for _, v := range totals {
			totalSum += v
		}
		if totalSum == 0 {
			continue
		}

		top1Pct := totals[0] / totalSum
		if top1Pct >= 0.5 {
			out = append(out, models.Insight{
				Type:        models.InsightConcentration,
				Title:       fmt.Sprintf("High concentration: '%s' = %.0f%%", categories[0], top1Pct*100),
				Description: fmt.Sprintf("Single %s accounts for over half of %s", formatLabel(dim), formatLabel(measure)),
				Magnitude:   top1Pct,
				Confidence:  0.95,
				Priority:    models.PriorityHigh,
				Dimension:   dim,
			})
			continue
		}

		if len(totals) >= 5 {
			var cumsum float64
			for i, v := range totals {
				cumsum += v
				if cumsum/totalSum >= 0.8 {
					pctOfCategories := float64(i+1) / float64(len(totals)) * 100
					if pctOfCategories <= 25 {
						out = append(out, models.Insight{
							Type:        models.InsightPareto,
							Title:       fmt.Sprintf("Pareto pattern: %d of %d %ss = 80%%", i+1, len(totals), formatLabel(dim)),
							Description: fmt.Sprintf("Top %.0f%% of categories drive 80%% of %s", pctOfCategories, formatLabel(measure)),
							Magnitude:   0.8,
							Confidence:  0.9,
							Priority:    models.PriorityMedium,
							Dimension:   dim,
						})
					}
					break
				}
			}
		}
	}
	return out
}

// detectCategoryDeviations flags categories whose average of the first
// measure sits more than 30% off the overall average, given at least five
// samples in the category and ten rows overall.
func detectCategoryDeviations(rows []map[string]any, measures, dims []string) []models.Insight {
	var out []models.Insight
	if len(measures) == 0 || len(dims) == 0 || len(rows) < 10 {
		return out
	}
	measure := measures[0]

	limit := len(dims)
	if limit > 2 {
		limit = 2
	}
	for _, dim := range dims[:limit] {
		groups := make(map[string][]float64)
		var order []string
		for _, row := range rows {
			dimVal, dimOK := row[dim]
			v, numOK := schema.AsFloat(row[measure])
			if !dimOK || dimVal == nil || !numOK {
				continue
			}
			key := fmt.Sprint(dimVal)
			if _, exists := groups[key]; !exists {
				order = append(order, key)
			}
			groups[key] = append(groups[key], v)
		}
		if len(groups) < 2 {
			continue
		}

		var allValues []float64
		for _, vals := range groups {
			allValues = append(allValues, vals...)
		}
		overallAvg := mean(allValues)
		if overallAvg == 0 {
			continue
		}

		for _, cat := range order {
			vals := groups[cat]
			avg := mean(vals)
			deviation := (avg - overallAvg) / overallAvg
			if math.Abs(deviation) <= 0.3 || len(vals) < 5 {
				continue
			}
			direction := "above"
			if deviation < 0 {
				direction = "below"
			}
			priority := models.PriorityMedium
			if math.Abs(deviation) >= 0.5 {
				priority = models.PriorityHigh
			}
			out = append(out, models.Insight{
				Type:        models.InsightCategoryDeviation,
				Title:       fmt.Sprintf("'%s' is %.0f%% %s average", cat, math.Abs(deviation)*100, direction),
				Description: fmt.Sprintf("%s '%s' has avg %s of %s vs overall %s", formatLabel(dim), cat, formatLabel(measure), formatNumber(avg), formatNumber(overallAvg)),
				Magnitude:   deviation,
				Confidence:  math.Min(0.9, float64(len(vals))/50),
				Priority:    priority,
				Dimension:   dim,
				Category:    cat,
			})
		}
	}
	return out
}

// detectStatisticalSummary emits low-priority data quality caveats: small
// sample sizes and high coefficient of variation.
func detectStatisticalSummary(rows []map[string]any, measures []string) []models.Insight {
	var out []models.Insight
	for _, measure := range measures {
		values := columnValues(rows, measure)
		if len(values) == 0 {
			continue
		}
		n := len(values)
		m := mean(values)

		if n < minSampleSize {
			out = append(out, models.Insight{
				Type:        models.InsightSampleSize,
				Title:       fmt.Sprintf("Small sample: %d records", n),
				Description: fmt.Sprintf("Results for %s may be unreliable. Need ≥%d for stable patterns.", formatLabel(measure), minSampleSize),
				Magnitude:   float64(n) / float64(minSampleSize),
				Confidence:  0.5,
				Priority:    models.PriorityLow,
				Metric:      measure,
			})
		}

		if n >= 2 {
			sd := stdev(values)
			cv := 0.0
			if m != 0 {
				cv = sd / math.Abs(m)
			}
			if cv > maxCVThreshold {
				out = append(out, models.Insight{
					Type:        models.InsightVolatility,
					Title:       fmt.Sprintf("High variance in %s", formatLabel(measure)),
					Description: fmt.Sprintf("Coefficient of variation: %.2f. Consider segmenting analysis.", cv),
					Magnitude:   cv,
					Confidence:  0.8,
					Priority:    models.PriorityLow,
					Metric:      measure,
				})
			}
		}
	}
	return out
}

// columnValues extracts the non-null numeric values of a column in row order.
func columnValues(rows []map[string]any, column string) []float64 {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := schema.AsFloat(row[column]); ok {
			values = append(values, v)
		}
	}
	return values
}

// categoryTotals sums a measure per category and returns categories with
// their totals, sorted descending by total.
func categoryTotals(rows []map[string]any, dim, measure string) ([]string, []float64) {
	totals := make(map[string]float64)
	var order []string
	for _, row := range rows {
		dimVal, dimOK := row[dim]
		v, numOK := schema.AsFloat(row[measure])
		if !dimOK || dimVal == nil || !numOK {
			continue
		}
		key := fmt.Sprint(dimVal)
		if _, exists := totals[key]; !exists {
			order = append(order, key)
		}
		totals[key] += v
	}

	// Insertion order first, then a stable descending sort by total.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && totals[order[j]] > totals[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	sorted := make([]float64, len(order))
	for i, k := range order {
		sorted[i] = totals[k]
	}
	return order, sorted
}

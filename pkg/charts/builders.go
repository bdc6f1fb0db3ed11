package charts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/schema"
)

// Chart.js palette shared by all builders.
const (
	colorPrimary     = "rgba(59, 130, 246, 0.8)"
	colorPrimaryLine = "rgb(59, 130, 246)"
	colorPrimaryFill = "rgba(59, 130, 246, 0.1)"
	colorSecondary   = "rgba(16, 185, 129, 0.8)"
	colorTertiary    = "rgba(139, 92, 246, 0.8)"
)

var colorPalette = []string{
	"rgba(59, 130, 246, 0.8)", "rgba(16, 185, 129, 0.8)",
	"rgba(139, 92, 246, 0.8)", "rgba(245, 158, 11, 0.8)",
	"rgba(239, 68, 68, 0.8)", "rgba(14, 165, 233, 0.8)",
}

// lineChart plots the first measure over the first date (or dimension)
// column, rows sorted by the x value. A second measure becomes an unfilled
// second series.
func lineChart(rows []map[string]any, dateCols, measureCols, dimCols []string) *models.ChartRecommendation {
	var xCol string
	switch {
	case len(dateCols) > 0:
		xCol = dateCols[0]
	case len(dimCols) > 0:
		xCol = dimCols[0]
	}
	var yCol string
	if len(measureCols) > 0 {
		yCol = measureCols[0]
	}
	if xCol == "" || yCol == "" {
		return tableView(rows, nil, "Insufficient columns for line chart")
	}

	sorted := sortedByString(rows, xCol)
	labels := make([]string, len(sorted))
	values := make([]any, len(sorted))
	for i, row := range sorted {
		labels[i] = fmt.Sprint(row[xCol])
		values[i] = row[yCol]
	}

	datasets := []models.Dataset{{
		Label:           formatLabel(yCol),
		Data:            values,
		BorderColor:     colorPrimaryLine,
		BackgroundColor: colorPrimaryFill,
		Fill:            true,
		Tension:         0.1,
		PointRadius:     3,
	}}
	if len(measureCols) >= 2 {
		yCol2 := measureCols[1]
		values2 := make([]any, len(sorted))
		for i, row := range sorted {
			values2[i] = row[yCol2]
		}
		datasets = append(datasets, models.Dataset{
			Label:           formatLabel(yCol2),
			Data:            values2,
			BorderColor:     "rgb(16, 185, 129)",
			BackgroundColor: "rgba(16, 185, 129, 0.1)",
			Tension:         0.1,
		})
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartLine,
		Config: &models.ChartConfig{
			Type: "line",
			Data: &models.ChartData{Labels: labels, Datasets: datasets},
			Options: map[string]any{
				"responsive":  true,
				"plugins":     map[string]any{"legend": map[string]any{"display": len(datasets) > 1}},
				"scales":      map[string]any{"y": map[string]any{"beginAtZero": false}},
				"interaction": map[string]any{"intersect": false, "mode": "index"},
			},
		},
		Reasoning:    fmt.Sprintf("Line chart for time series: %s → %s", xCol, yCol),
		Alternatives: []models.ChartType{"area", models.ChartBar},
		XColumn:      xCol,
		YColumn:      yCol,
	}
}

// barChart renders a vertical bar per category, sorted descending by value.
func barChart(rows []map[string]any, xCol, yCol string) *models.ChartRecommendation {
	sorted := sortedByMeasure(rows, yCol)
	labels := make([]string, len(sorted))
	values := make([]any, len(sorted))
	for i, row := range sorted {
		labels[i] = truncate(fmt.Sprint(row[xCol]), 20)
		values[i] = row[yCol]
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartBar,
		Config: &models.ChartConfig{
			Type: "bar",
			Data: &models.ChartData{Labels: labels, Datasets: []models.Dataset{{
				Label:           formatLabel(yCol),
				Data:            values,
				BackgroundColor: colorPrimary,
				BorderRadius:    4,
			}}},
			Options: map[string]any{
				"responsive": true,
				"plugins":    map[string]any{"legend": map[string]any{"display": false}},
				"scales":     map[string]any{"y": map[string]any{"beginAtZero": true}},
			},
		},
		Reasoning:    fmt.Sprintf("Bar chart for category comparison: %s by %s", xCol, yCol),
		Alternatives: []models.ChartType{"horizontal_bar"},
		XColumn:      xCol,
		YColumn:      yCol,
	}
}

// horizontalBar shows the top 15 categories with axis flipped for label room.
func horizontalBar(rows []map[string]any, xCol, yCol string) *models.ChartRecommendation {
	sorted := sortedByMeasure(rows, yCol)
	if len(sorted) > 15 {
		sorted = sorted[:15]
	}
	labels := make([]string, len(sorted))
	values := make([]any, len(sorted))
	for i, row := range sorted {
		labels[i] = truncate(fmt.Sprint(row[xCol]), 25)
		values[i] = row[yCol]
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartBar,
		Config: &models.ChartConfig{
			Type: "bar",
			Data: &models.ChartData{Labels: labels, Datasets: []models.Dataset{{
				Label:           formatLabel(yCol),
				Data:            values,
				BackgroundColor: colorPrimary,
				BorderRadius:    4,
			}}},
			Options: map[string]any{
				"indexAxis":  "y",
				"responsive": true,
				"plugins":    map[string]any{"legend": map[string]any{"display": false}},
			},
		},
		Reasoning:    fmt.Sprintf("Horizontal bar chart (%d categories, showing top 15)", len(rows)),
		Alternatives: []models.ChartType{models.ChartTable},
		XColumn:      xCol,
		YColumn:      yCol,
	}
}

// histogram buckets a measure into equal-width bins, at most ten and never
// fewer than two. The rendered chart is a bar chart of bin frequencies.
func histogram(rows []map[string]any, measureCol string) *models.ChartRecommendation {
	var values []float64
	for _, row := range rows {
		if v, ok := schema.AsFloat(row[measureCol]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return tableView(rows, nil, "No numeric values for histogram")
	}

	minVal, maxVal := values[0], values[0]
	distinct := make(map[float64]struct{})
	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
		distinct[v] = struct{}{}
	}
	binCount := len(distinct)
	if binCount > 10 {
		binCount = 10
	}
	if binCount < 2 {
		return tableView(rows, nil, "Insufficient variance for histogram")
	}
	binWidth := (maxVal - minVal) / float64(binCount)

	type bin struct {
		start float64
		label string
		count int
	}
	bins := make(map[string]*bin)
	for _, v := range values {
		idx := 0
		if binWidth > 0 {
			idx = int((v - minVal) / binWidth)
			if idx > binCount-1 {
				idx = binCount - 1
			}
		}
		start := minVal + float64(idx)*binWidth
		label := fmt.Sprintf("%.0f-%.0f", start, start+binWidth)
		if b, ok := bins[label]; ok {
			b.count++
		} else {
			bins[label] = &bin{start: start, label: label, count: 1}
		}
	}

	ordered := make([]*bin, 0, len(bins))
	for _, b := range bins {
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].start < ordered[j].start })

	labels := make([]string, len(ordered))
	counts := make([]any, len(ordered))
	for i, b := range ordered {
		labels[i] = b.label
		counts[i] = b.count
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartBar,
		Config: &models.ChartConfig{
			Type: "bar",
			Data: &models.ChartData{Labels: labels, Datasets: []models.Dataset{{
				Label:           "Frequency",
				Data:            counts,
				BackgroundColor: colorSecondary,
			}}},
			Options: map[string]any{
				"responsive": true,
				"plugins": map[string]any{
					"legend": map[string]any{"display": false},
					"title":  map[string]any{"display": true, "text": "Distribution of " + formatLabel(measureCol)},
				},
			},
		},
		Reasoning:    fmt.Sprintf("Histogram for distribution of %s", measureCol),
		Alternatives: []models.ChartType{"box"},
		YColumn:      measureCol,
	}
}

// scatterPlot pairs two measures pointwise. Fewer than three complete pairs
// falls back to the table view.
func scatterPlot(rows []map[string]any, xCol, yCol string) *models.ChartRecommendation {
	var points []any
	for _, row := range rows {
		x, xOK := schema.AsFloat(row[xCol])
		y, yOK := schema.AsFloat(row[yCol])
		if xOK && yOK {
			points = append(points, map[string]any{"x": x, "y": y})
		}
	}
	if len(points) < 3 {
		return tableView(rows, nil, "Insufficient points for scatter")
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartScatter,
		Config: &models.ChartConfig{
			Type: "scatter",
			Data: &models.ChartData{Datasets: []models.Dataset{{
				Label:           fmt.Sprintf("%s vs %s", xCol, yCol),
				Data:            points,
				BackgroundColor: colorTertiary,
				PointRadius:     5,
			}}},
			Options: map[string]any{
				"responsive": true,
				"scales": map[string]any{
					"x": map[string]any{"title": map[string]any{"display": true, "text": xCol}},
					"y": map[string]any{"title": map[string]any{"display": true, "text": yCol}},
				},
			},
		},
		Reasoning:    fmt.Sprintf("Scatter plot for correlation: %s vs %s", xCol, yCol),
		Alternatives: []models.ChartType{models.ChartLine},
		XColumn:      xCol,
		YColumn:      yCol,
	}
}

// doughnutChart shows the top 8 categories as a composition ring.
func doughnutChart(rows []map[string]any, dimCol, measureCol string) *models.ChartRecommendation {
	sorted := sortedByMeasure(rows, measureCol)
	if len(sorted) > 8 {
		sorted = sorted[:8]
	}
	labels := make([]string, len(sorted))
	values := make([]any, len(sorted))
	var total float64
	for i, row := range sorted {
		labels[i] = truncate(fmt.Sprint(row[dimCol]), 20)
		values[i] = row[measureCol]
		if v, ok := schema.AsFloat(row[measureCol]); ok {
			total += v
		}
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartDoughnut,
		Config: &models.ChartConfig{
			Type: "doughnut",
			Data: &models.ChartData{Labels: labels, Datasets: []models.Dataset{{
				Data:            values,
				BackgroundColor: colorPalette[:len(labels)],
				BorderWidth:     2,
				BorderColor:     "#ffffff",
			}}},
			Options: map[string]any{
				"responsive": true,
				"cutout":     "60%",
				"plugins": map[string]any{
					"legend": map[string]any{"display": true, "position": "right"},
					"tooltip": map[string]any{
						"callbacks": map[string]any{"label": fmt.Sprintf("Shows percentage of total (%.0f)", total)},
					},
				},
			},
		},
		Reasoning:    fmt.Sprintf("Doughnut chart for composition: %s share of %s", dimCol, measureCol),
		Alternatives: []models.ChartType{models.ChartPie, models.ChartBar},
		XColumn:      dimCol,
		YColumn:      measureCol,
	}
}

// pieChart is the simpler composition shape: top 6 categories, no cutout.
func pieChart(rows []map[string]any, dimCol, measureCol string) *models.ChartRecommendation {
	sorted := sortedByMeasure(rows, measureCol)
	if len(sorted) > 6 {
		sorted = sorted[:6]
	}
	labels := make([]string, len(sorted))
	values := make([]any, len(sorted))
	for i, row := range sorted {
		labels[i] = truncate(fmt.Sprint(row[dimCol]), 20)
		values[i] = row[measureCol]
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartPie,
		Config: &models.ChartConfig{
			Type: "pie",
			Data: &models.ChartData{Labels: labels, Datasets: []models.Dataset{{
				Data:            values,
				BackgroundColor: colorPalette[:len(labels)],
				BorderWidth:     2,
				BorderColor:     "#ffffff",
			}}},
			Options: map[string]any{
				"responsive": true,
				"plugins":    map[string]any{"legend": map[string]any{"display": true, "position": "right"}},
			},
		},
		Reasoning:    fmt.Sprintf("Pie chart for composition: %s distribution", dimCol),
		Alternatives: []models.ChartType{models.ChartDoughnut, models.ChartBar},
		XColumn:      dimCol,
		YColumn:      measureCol,
	}
}

// multiMeasureBar compares measures side by side for a single-row result.
// Multi-row multi-measure results fall back to the table view.
func multiMeasureBar(rows []map[string]any, measureCols []string) *models.ChartRecommendation {
	if len(rows) != 1 {
		return tableView(rows, nil, "Multiple measures comparison")
	}
	row := rows[0]
	cols := measureCols
	if len(cols) > 6 {
		cols = cols[:6]
	}
	labels := make([]string, len(cols))
	values := make([]any, len(cols))
	for i, col := range cols {
		labels[i] = formatLabel(col)
		values[i] = row[col]
	}

	return &models.ChartRecommendation{
		ChartType: models.ChartBar,
		Config: &models.ChartConfig{
			Type: "bar",
			Data: &models.ChartData{Labels: labels, Datasets: []models.Dataset{{
				Label:           "Values",
				Data:            values,
				BackgroundColor: colorPalette[:len(labels)],
			}}},
			Options: map[string]any{
				"responsive": true,
				"plugins":    map[string]any{"legend": map[string]any{"display": false}},
			},
		},
		Reasoning:    "Bar chart comparing multiple metrics",
		Alternatives: []models.ChartType{models.ChartTable},
	}
}

// metricCard turns a single-row result into label/value pairs.
func metricCard(row map[string]any, columns []models.ResultColumn) *models.ChartRecommendation {
	var metrics []models.MetricEntry
	for _, col := range columns {
		if v, ok := row[col.Name]; ok && v != nil {
			metrics = append(metrics, models.MetricEntry{Label: formatLabel(col.Name), Value: v})
		}
	}
	return &models.ChartRecommendation{
		ChartType: models.ChartMetric,
		Config:    &models.ChartConfig{Metrics: metrics},
		Reasoning: "Single value result - display as metric card",
	}
}

// tableView is the universal fallback, capped at 100 rows of data.
func tableView(rows []map[string]any, columns []string, reason string) *models.ChartRecommendation {
	if len(columns) == 0 && len(rows) > 0 {
		for name := range rows[0] {
			columns = append(columns, name)
		}
		sort.Strings(columns)
	}
	capped := rows
	if len(capped) > 100 {
		capped = capped[:100]
	}
	return &models.ChartRecommendation{
		ChartType: models.ChartTable,
		Config:    &models.ChartConfig{Columns: columns, Rows: capped},
		Reasoning: reason,
		RowCount:  len(rows),
	}
}

func noChart(reason string) *models.ChartRecommendation {
	return &models.ChartRecommendation{ChartType: models.ChartNone, Reasoning: reason}
}

// sortedByMeasure returns rows sorted descending by a numeric column,
// treating unparsable values as zero. Input order is preserved on ties.
func sortedByMeasure(rows []map[string]any, col string) []map[string]any {
	sorted := append([]map[string]any(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, _ := schema.AsFloat(sorted[i][col])
		vj, _ := schema.AsFloat(sorted[j][col])
		return vi > vj
	})
	return sorted
}

func sortedByString(rows []map[string]any, col string) []map[string]any {
	sorted := append([]map[string]any(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return fmt.Sprint(sorted[i][col]) < fmt.Sprint(sorted[j][col])
	})
	return sorted
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// formatLabel turns snake_case column names into title-cased labels.
func formatLabel(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

package models

// ChartType identifies the recommended visualization shape.
type ChartType string

const (
	ChartLine      ChartType = "line"
	ChartBar       ChartType = "bar"
	ChartScatter   ChartType = "scatter"
	ChartHistogram ChartType = "histogram"
	ChartDoughnut  ChartType = "doughnut"
	ChartPie       ChartType = "pie"
	ChartMetric    ChartType = "metric"
	ChartTable     ChartType = "table"
	ChartNone      ChartType = "none"
)

// Dataset is one Chart.js-style data series.
type Dataset struct {
	Label           string  `json:"label,omitempty"`
	Data            []any   `json:"data"`
	BorderColor     string  `json:"borderColor,omitempty"`
	BackgroundColor any     `json:"backgroundColor,omitempty"` // string or []string
	BorderWidth     int     `json:"borderWidth,omitempty"`
	BorderRadius    int     `json:"borderRadius,omitempty"`
	Fill            bool    `json:"fill,omitempty"`
	Tension         float64 `json:"tension,omitempty"`
	PointRadius     int     `json:"pointRadius,omitempty"`
}

// ChartData pairs axis labels with one or more datasets.
type ChartData struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// MetricEntry is one value on a single-row metric card.
type MetricEntry struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// ChartConfig is the chart-type-specific rendering configuration.
// Exactly one of Data, Metrics, or Columns/Rows is populated depending on
// the chart type.
type ChartConfig struct {
	Type    string           `json:"type,omitempty"`
	Data    *ChartData       `json:"data,omitempty"`
	Options map[string]any   `json:"options,omitempty"`
	Metrics []MetricEntry    `json:"metrics,omitempty"`
	Columns []string         `json:"columns,omitempty"`
	Rows    []map[string]any `json:"rows,omitempty"`
}

// ChartRecommendation is the chart selector output. It is always non-nil;
// the table shape is the universal fallback.
type ChartRecommendation struct {
	ChartType    ChartType    `json:"chart_type"`
	Config       *ChartConfig `json:"config"`
	Reasoning    string       `json:"reasoning"`
	Alternatives []ChartType  `json:"alternatives"`
	XColumn      string       `json:"x_column,omitempty"`
	YColumn      string       `json:"y_column,omitempty"`
	RowCount     int          `json:"row_count,omitempty"`
}

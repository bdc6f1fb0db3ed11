package models

// InsightPriority orders insights for presentation.
type InsightPriority string

const (
	PriorityHigh   InsightPriority = "high"
	PriorityMedium InsightPriority = "medium"
	PriorityLow    InsightPriority = "low"
)

// Insight types produced by the detectors.
const (
	InsightTrendChange       = "trend_change"
	InsightTrendDirection    = "trend_direction"
	InsightOutlier           = "outlier"
	InsightConcentration     = "concentration"
	InsightPareto            = "pareto"
	InsightCategoryDeviation = "category_deviation"
	InsightSampleSize        = "sample_size"
	InsightVolatility        = "volatility"
)

// Insight is a single statistical finding over a result set.
// Identity for deduplication is (Type, Title truncated to 50 chars).
type Insight struct {
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Magnitude   float64         `json:"magnitude"`
	Confidence  float64         `json:"confidence"`
	Priority    InsightPriority `json:"priority"`
	Metric      string          `json:"metric,omitempty"`
	Dimension   string          `json:"dimension,omitempty"`
	Category    string          `json:"category,omitempty"`
}

// DedupKey returns the identity used to deduplicate merged insights.
// Titles are truncated by rune so a multibyte category name can't be
// split mid-sequence.
func (i Insight) DedupKey() string {
	title := []rune(i.Title)
	if len(title) > 50 {
		title = title[:50]
	}
	return i.Type + "|" + string(title)
}

package models

// FilterOperator is the comparison operator of an extracted filter.
type FilterOperator string

const (
	FilterEquals      FilterOperator = "="
	FilterGreaterThan FilterOperator = ">"
	FilterLessThan    FilterOperator = "<"
)

// Filter is an inline condition extracted from the question text.
// Value is a string for equality filters and a float64 for range filters.
// Filters are extracted once and never round-tripped back into natural
// language.
type Filter struct {
	Column   string         `json:"column"`
	Operator FilterOperator `json:"operator"`
	Value    any            `json:"value"`
}

// SQLPlan is the output of query synthesis. Confidence reflects heuristic
// certainty of the chosen query shape, not statistical validity of results.
type SQLPlan struct {
	SQL         string   `json:"sql"`
	Confidence  float64  `json:"confidence"`
	Assumptions []string `json:"assumptions"`
}

// ResultColumn pairs a result-set column with its inferred semantic role.
type ResultColumn struct {
	Name string       `json:"name"`
	Type SemanticType `json:"type"`
}

// QueryResult holds the rows returned by the execution engine.
// Row order is insertion order and the struct is immutable once produced.
type QueryResult struct {
	Rows            []map[string]any `json:"data"`
	Columns         []ResultColumn   `json:"columns"`
	RowCount        int              `json:"row_count"`
	ExecutionTimeMs float64          `json:"execution_time_ms"`
}

// QueryResponse is the combined pipeline output exposed to the caller.
type QueryResponse struct {
	SQL                 string               `json:"sql"`
	Data                []map[string]any     `json:"data"`
	Columns             []ResultColumn       `json:"columns"`
	ChartRecommendation *ChartRecommendation `json:"chart_recommendation"`
	Insights            []Insight            `json:"insights"`
	RowCount            int                  `json:"row_count"`
	ExecutionTimeMs     float64              `json:"execution_time_ms"`
	Confidence          float64              `json:"confidence"`
	Assumptions         []string             `json:"assumptions"`
}

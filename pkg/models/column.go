// Package models contains the shared data types for the analytics pipeline.
package models

// SemanticType describes how a column should be used by query synthesis
// and insight detection.
type SemanticType string

const (
	// SemanticDate marks a column representing a point in time, used for
	// trend bucketing.
	SemanticDate SemanticType = "date"
	// SemanticMeasure marks a numeric column intended for aggregation.
	SemanticMeasure SemanticType = "measure"
	// SemanticDimension marks a categorical column used for grouping and
	// filtering.
	SemanticDimension SemanticType = "dimension"
)

// ValueCount is one entry of a categorical column's ranked value list.
type ValueCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// ColumnStats holds per-column statistics computed by the store.
// Numeric fields are pointers because they only apply to numeric columns.
type ColumnStats struct {
	Count       int64        `json:"count"`
	NullCount   int64        `json:"null_count"`
	UniqueCount int64        `json:"unique_count"`
	Min         *float64     `json:"min,omitempty"`
	Max         *float64     `json:"max,omitempty"`
	Mean        *float64     `json:"mean,omitempty"`
	StdDev      *float64     `json:"std,omitempty"`
	TopValues   []ValueCount `json:"top_values,omitempty"`
}

// ColumnDef is a raw column definition as reported by the storage engine,
// before semantic classification.
type ColumnDef struct {
	Name    string `json:"name"`
	SQLType string `json:"type"`
}

// Column is a profiled table column. SemanticType is assigned once per
// query context and never mutated afterward.
type Column struct {
	Name         string       `json:"name"`
	SQLType      string       `json:"sql_type"`
	SemanticType SemanticType `json:"semantic_type"`
	Stats        *ColumnStats `json:"stats,omitempty"`
	QualityScore float64      `json:"quality_score"`
}

// TableProfile is the full schema profile for a table, used to ground both
// SQL synthesis and LLM prompting.
type TableProfile struct {
	TableName        string   `json:"table_name"`
	RowCount         int64    `json:"row_count"`
	ColumnCount      int      `json:"column_count"`
	Columns          []Column `json:"columns"`
	DateColumns      []string `json:"date_columns"`
	MeasureColumns   []string `json:"measure_columns"`
	DimensionColumns []string `json:"dimension_columns"`
	QualityScore     float64  `json:"quality_score"`
	Warnings         []string `json:"warnings"`
}

// ColumnNames returns the names of all profiled columns in declaration order.
func (p *TableProfile) ColumnNames() []string {
	names := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		names[i] = c.Name
	}
	return names
}

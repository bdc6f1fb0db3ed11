package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kesh3805/autobi/pkg/models"
)

func statsWith(count, nulls, unique int64) *models.ColumnStats {
	return &models.ColumnStats{Count: count, NullCount: nulls, UniqueCount: unique}
}

func TestClassifyColumn(t *testing.T) {
	tests := []struct {
		name    string
		column  string
		sqlType string
		stats   *models.ColumnStats
		want    models.SemanticType
	}{
		{"date keyword in name", "order_date", "VARCHAR", nil, models.SemanticDate},
		{"created keyword", "created_at", "VARCHAR", nil, models.SemanticDate},
		{"date SQL type", "placed", "DATE", nil, models.SemanticDate},
		{"timestamp SQL type", "placed", "TIMESTAMP", nil, models.SemanticDate},
		{"measure keyword", "revenue", "DOUBLE", nil, models.SemanticMeasure},
		{"measure keyword beats type", "unit_price", "VARCHAR", nil, models.SemanticMeasure},
		// Date keyword wins over measure keyword: "year" before "rate".
		{"date keyword wins", "yearly_rate", "DOUBLE", nil, models.SemanticDate},
		{"high cardinality numeric", "x", "DOUBLE", statsWith(100, 0, 80), models.SemanticMeasure},
		{"low cardinality numeric is dimension", "status_code", "INTEGER", statsWith(100, 0, 4), models.SemanticDimension},
		{"ratio uses non-null denominator", "x", "DOUBLE", statsWith(100, 90, 4), models.SemanticMeasure},
		{"decimal with precision", "x", "DECIMAL(18,3)", statsWith(50, 0, 40), models.SemanticMeasure},
		{"numeric without stats is dimension", "x", "DOUBLE", nil, models.SemanticDimension},
		{"text column", "name", "VARCHAR", statsWith(100, 0, 100), models.SemanticDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyColumn(tt.column, tt.sqlType, tt.stats))
		})
	}
}

func TestInferResultColumns(t *testing.T) {
	rows := []map[string]any{
		{"period": "2024-01", "total_revenue": 100.0, "label": "a", "reading": 1.0},
		{"period": "2024-02", "total_revenue": 200.0, "label": "b", "reading": 2.0},
		{"period": "2024-03", "total_revenue": 300.0, "label": "a", "reading": 3.0},
	}

	cols := InferResultColumns(rows, []string{"period", "total_revenue", "label", "reading"}, 100)

	byName := make(map[string]models.SemanticType, len(cols))
	for _, c := range cols {
		byName[c.Name] = c.Type
	}

	assert.Equal(t, models.SemanticDate, byName["period"], "date keyword")
	assert.Equal(t, models.SemanticMeasure, byName["total_revenue"], "measure keyword")
	assert.Equal(t, models.SemanticDimension, byName["label"], "non-numeric")
	assert.Equal(t, models.SemanticMeasure, byName["reading"], "numeric high cardinality")
}

func TestInferResultColumnsLowCardinalityNumeric(t *testing.T) {
	rows := make([]map[string]any, 20)
	for i := range rows {
		rows[i] = map[string]any{"flag": float64(i % 2)}
	}
	cols := InferResultColumns(rows, []string{"flag"}, 100)
	assert.Equal(t, models.SemanticDimension, cols[0].Type)
}

func TestLooksLikeDate(t *testing.T) {
	assert.True(t, LooksLikeDate("ship_date", nil))
	assert.True(t, LooksLikeDate("x", []map[string]any{{"x": "2024-05-01"}}))
	assert.True(t, LooksLikeDate("x", []map[string]any{{"x": "01/02/2024"}}))
	assert.False(t, LooksLikeDate("x", []map[string]any{{"x": "hello"}}))
}

func TestLooksLikeMeasure(t *testing.T) {
	assert.True(t, LooksLikeMeasure("total_amount", nil))

	rows := make([]map[string]any, 10)
	for i := range rows {
		rows[i] = map[string]any{"x": float64(i)}
	}
	assert.True(t, LooksLikeMeasure("x", rows))

	// Small row counts cannot reach the numeric threshold.
	assert.False(t, LooksLikeMeasure("x", rows[:4]))
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{42.5, 42.5, true},
		{int64(7), 7, true},
		{int32(3), 3, true},
		{"19.99", 19.99, true},
		{" 5 ", 5, true},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}

	for _, tt := range tests {
		got, ok := AsFloat(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %v", tt.in)
		if ok {
			assert.Equal(t, tt.want, got, "input %v", tt.in)
		}
	}
}

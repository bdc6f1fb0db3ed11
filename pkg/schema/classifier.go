// Package schema classifies columns into semantic roles and profiles tables
// to ground SQL synthesis, insight detection, and LLM prompting.
package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Kesh3805/autobi/pkg/models"
)

// Keyword tables are process-wide constants. They are declared once and
// never mutated; classification order is first match wins.
var (
	dateKeywords = []string{
		"date", "time", "created", "updated", "timestamp",
		"day", "month", "year", "week", "period", "quarter",
	}

	measureKeywords = []string{
		"amount", "price", "cost", "revenue", "sales", "total", "sum",
		"count", "quantity", "value", "rate", "score", "balance", "fee",
		"tax", "profit", "margin", "volume", "discount", "avg",
	}

	numericSQLTypes = map[string]bool{
		"INTEGER": true, "BIGINT": true, "SMALLINT": true, "TINYINT": true,
		"DOUBLE": true, "FLOAT": true, "REAL": true, "DECIMAL": true,
		"NUMERIC": true, "HUGEINT": true, "UBIGINT": true, "UINTEGER": true,
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`),
	}
)

// uniqueRatioThreshold separates high-cardinality numeric columns (measures)
// from low-cardinality ones (dimensions such as numeric codes).
const uniqueRatioThreshold = 0.3

// ClassifyColumn assigns a semantic role to a profiled column.
// Decision order, first match wins:
//  1. name contains a date keyword
//  2. declared SQL type is a date/time type
//  3. name contains a measure keyword
//  4. numeric SQL type with unique/non-null ratio above the threshold
//  5. dimension
func ClassifyColumn(name, sqlType string, stats *models.ColumnStats) models.SemanticType {
	nameLower := strings.ToLower(name)

	for _, kw := range dateKeywords {
		if strings.Contains(nameLower, kw) {
			return models.SemanticDate
		}
	}

	typeUpper := strings.ToUpper(sqlType)
	if strings.Contains(typeUpper, "DATE") || strings.Contains(typeUpper, "TIME") {
		return models.SemanticDate
	}

	for _, kw := range measureKeywords {
		if strings.Contains(nameLower, kw) {
			return models.SemanticMeasure
		}
	}

	if isNumericType(typeUpper) && stats != nil {
		nonNull := stats.Count - stats.NullCount
		if nonNull > 0 && float64(stats.UniqueCount)/float64(nonNull) > uniqueRatioThreshold {
			return models.SemanticMeasure
		}
	}

	return models.SemanticDimension
}

func isNumericType(typeUpper string) bool {
	if numericSQLTypes[typeUpper] {
		return true
	}
	// DECIMAL(18,3) and friends
	if idx := strings.IndexByte(typeUpper, '('); idx > 0 {
		return numericSQLTypes[typeUpper[:idx]]
	}
	return false
}

// InferResultColumns classifies raw result-set columns from sampled values
// when no declared schema is available. The same decision order as
// ClassifyColumn applies, with numeric detection based on a sample:
// a column is numeric when at least 80% of up to sampleSize non-null values
// parse as a number.
func InferResultColumns(rows []map[string]any, names []string, sampleSize int) []models.ResultColumn {
	if sampleSize <= 0 {
		sampleSize = 100
	}

	cols := make([]models.ResultColumn, len(names))
	for i, name := range names {
		cols[i] = models.ResultColumn{Name: name, Type: inferRole(rows, name, sampleSize)}
	}
	return cols
}

func inferRole(rows []map[string]any, name string, sampleSize int) models.SemanticType {
	nameLower := strings.ToLower(name)
	for _, kw := range dateKeywords {
		if strings.Contains(nameLower, kw) {
			return models.SemanticDate
		}
	}
	for _, kw := range measureKeywords {
		if strings.Contains(nameLower, kw) {
			return models.SemanticMeasure
		}
	}

	var values []any
	for _, row := range rows {
		if len(values) >= sampleSize {
			break
		}
		if v, ok := row[name]; ok && v != nil {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return models.SemanticDimension
	}

	numeric := 0
	unique := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := AsFloat(v); ok {
			numeric++
		}
		unique[strictString(v)] = struct{}{}
	}

	if float64(numeric)/float64(len(values)) >= 0.8 {
		if float64(len(unique))/float64(len(values)) > uniqueRatioThreshold {
			return models.SemanticMeasure
		}
		return models.SemanticDimension
	}

	return models.SemanticDimension
}

// LooksLikeDate reports whether a column name or its sampled values suggest
// a date column. Used by the chart selector for untyped result sets.
func LooksLikeDate(name string, rows []map[string]any) bool {
	nameLower := strings.ToLower(name)
	for _, kw := range dateKeywords {
		if strings.Contains(nameLower, kw) {
			return true
		}
	}
	for i := 0; i < len(rows) && i < 5; i++ {
		s := strictString(rows[i][name])
		for _, p := range datePatterns {
			if p.MatchString(s) {
				return true
			}
		}
	}
	return false
}

// LooksLikeMeasure reports whether a column name or its sampled values
// suggest a numeric measure. Used by the chart selector for untyped result
// sets; the sample is intentionally small (10 rows).
func LooksLikeMeasure(name string, rows []map[string]any) bool {
	nameLower := strings.ToLower(name)
	for _, kw := range measureKeywords {
		if strings.Contains(nameLower, kw) {
			return true
		}
	}
	numeric := 0
	for i := 0; i < len(rows) && i < 10; i++ {
		if _, ok := AsFloat(rows[i][name]); ok {
			numeric++
		}
	}
	return numeric > 5
}

// AsFloat converts a result-set value to float64. Strings are parsed so
// VARCHAR-ingested numeric columns still count as numeric.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func strictString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/apperrors"
	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/schema"
)

// Execute runs a validated SELECT and materializes the result set. Queries
// without their own LIMIT get one appended at maxResultRows. The returned
// column list carries inferred semantic roles for the downstream stages.
func (s *Store) Execute(ctx context.Context, sqlText string) (*models.QueryResult, error) {
	sqlText = strings.TrimSuffix(strings.TrimSpace(sqlText), ";")
	if !strings.Contains(strings.ToUpper(sqlText), "LIMIT") {
		sqlText = fmt.Sprintf("%s LIMIT %d", sqlText, maxResultRows)
	}

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, &apperrors.ExecutionError{SQL: sqlText, Err: err}
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, &apperrors.ExecutionError{SQL: sqlText, Err: err}
	}

	var data []map[string]any
	values := make([]any, len(names))
	scanTargets := make([]any, len(names))
	for i := range values {
		scanTargets[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, &apperrors.ExecutionError{SQL: sqlText, Err: err}
		}
		row := make(map[string]any, len(names))
		for i, name := range names {
			row[name] = normalizeValue(values[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperrors.ExecutionError{SQL: sqlText, Err: err}
	}

	elapsed := float64(time.Since(start).Microseconds()) / 1000

	s.logger.Debug("query executed",
		zap.Int("rows", len(data)),
		zap.Float64("elapsed_ms", elapsed))

	return &models.QueryResult{
		Rows:            data,
		Columns:         schema.InferResultColumns(data, names, 100),
		RowCount:        len(data),
		ExecutionTimeMs: elapsed,
	}, nil
}

// normalizeValue maps driver types to JSON-friendly ones.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return v
	}
}

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kesh3805/autobi/pkg/apperrors"
	"github.com/Kesh3805/autobi/pkg/models"
)

// TableInfo is one entry of the table listing.
type TableInfo struct {
	Name     string             `json:"name"`
	Columns  []models.ColumnDef `json:"columns"`
	RowCount int64              `json:"row_count"`
}

// ListTables enumerates the tables in the main schema with their columns
// and row counts.
func (s *Store) ListTables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT table_name FROM information_schema.tables WHERE table_schema = 'main' ORDER BY table_name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		cols, err := s.TableColumns(ctx, name)
		if err != nil {
			continue
		}
		count, err := s.TableRowCount(ctx, name)
		if err != nil {
			continue
		}
		tables = append(tables, TableInfo{Name: name, Columns: cols, RowCount: count})
	}
	return tables, nil
}

// TableColumns returns the declared columns of a table in ordinal order.
// A missing table yields apperrors.ErrTableNotFound.
func (s *Store) TableColumns(ctx context.Context, table string) ([]models.ColumnDef, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT column_name, data_type FROM information_schema.columns WHERE table_name = ? ORDER BY ordinal_position",
		table)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	var cols []models.ColumnDef
	for rows.Next() {
		var c models.ColumnDef
		if err := rows.Scan(&c.Name, &c.SQLType); err != nil {
			return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTableNotFound, table)
	}
	return cols, nil
}

// TableRowCount returns COUNT(*) for a table.
func (s *Store) TableRowCount(ctx context.Context, table string) (int64, error) {
	if !ValidIdentifier(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}
	var count int64
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", table, err)
	}
	return count, nil
}

var numericDuckTypes = map[string]bool{
	"TINYINT": true, "SMALLINT": true, "INTEGER": true, "BIGINT": true, "HUGEINT": true,
	"UTINYINT": true, "USMALLINT": true, "UINTEGER": true, "UBIGINT": true,
	"FLOAT": true, "DOUBLE": true, "DECIMAL": true, "NUMERIC": true, "REAL": true,
}

// ColumnStats computes per-column statistics. Numeric columns get the full
// aggregate set; other columns get counts plus the ten most frequent values.
func (s *Store) ColumnStats(ctx context.Context, table, column string) (*models.ColumnStats, error) {
	cols, err := s.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	var sqlType string
	for _, c := range cols {
		if c.Name == column {
			sqlType = c.SQLType
			break
		}
	}
	if sqlType == "" {
		return nil, fmt.Errorf("column %q not found in table %s", column, table)
	}
	if !ValidIdentifier(column) {
		return nil, fmt.Errorf("invalid column name %q", column)
	}

	baseType := strings.ToUpper(sqlType)
	if idx := strings.Index(baseType, "("); idx > 0 {
		baseType = baseType[:idx]
	}

	stats := &models.ColumnStats{}
	if numericDuckTypes[baseType] {
		query := fmt.Sprintf(`SELECT COUNT(*), COUNT(DISTINCT %[1]s),
			SUM(CASE WHEN %[1]s IS NULL THEN 1 ELSE 0 END),
			MIN(%[1]s), MAX(%[1]s), AVG(%[1]s), STDDEV(%[1]s) FROM %[2]s`, column, table)
		err = s.db.QueryRowContext(ctx, query).Scan(
			&stats.Count, &stats.UniqueCount, &stats.NullCount,
			&stats.Min, &stats.Max, &stats.Mean, &stats.StdDev)
		if err != nil {
			return nil, fmt.Errorf("failed to compute stats for %s.%s: %w", table, column, err)
		}
		return stats, nil
	}

	query := fmt.Sprintf(`SELECT COUNT(*), COUNT(DISTINCT %[1]s),
		SUM(CASE WHEN %[1]s IS NULL THEN 1 ELSE 0 END) FROM %[2]s`, column, table)
	if err := s.db.QueryRowContext(ctx, query).Scan(&stats.Count, &stats.UniqueCount, &stats.NullCount); err != nil {
		return nil, fmt.Errorf("failed to compute stats for %s.%s: %w", table, column, err)
	}

	topQuery := fmt.Sprintf(`SELECT CAST(%[1]s AS VARCHAR), COUNT(*) AS freq FROM %[2]s
		WHERE %[1]s IS NOT NULL GROUP BY %[1]s ORDER BY freq DESC LIMIT 10`, column, table)
	rows, err := s.db.QueryContext(ctx, topQuery)
	if err != nil {
		// Top values are best-effort; counts alone are still useful.
		return stats, nil
	}
	defer rows.Close()
	for rows.Next() {
		var vc models.ValueCount
		if err := rows.Scan(&vc.Value, &vc.Count); err != nil {
			break
		}
		stats.TopValues = append(stats.TopValues, vc)
	}
	return stats, nil
}

// DropTable removes a table if it exists.
func (s *Store) DropTable(ctx context.Context, table string) error {
	if !ValidIdentifier(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

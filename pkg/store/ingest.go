package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
)

// IngestResult summarizes a completed CSV load.
type IngestResult struct {
	Table    string   `json:"table"`
	RowCount int64    `json:"row_count"`
	Columns  []string `json:"columns"`
}

var (
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	underscoreRe = regexp.MustCompile(`_+`)
)

// CleanColumnName normalizes a raw CSV header to a SQL-safe snake_case
// identifier. Empty results become "column"; names starting with a digit
// get a "col_" prefix.
func CleanColumnName(name string) string {
	cleaned := nonWordRe.ReplaceAllString(name, "")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	cleaned = underscoreRe.ReplaceAllString(cleaned, "_")
	if cleaned == "" {
		return "column"
	}
	if cleaned[0] >= '0' && cleaned[0] <= '9' {
		cleaned = "col_" + cleaned
	}
	return cleaned
}

// dedupeColumns suffixes duplicate names with _1, _2, ... preserving the
// first occurrence unchanged.
func dedupeColumns(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, name := range names {
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			out[i] = fmt.Sprintf("%s_%d", name, n+1)
		} else {
			seen[name] = 0
			out[i] = name
		}
	}
	return out
}

// IngestCSV loads CSV content into a table, replacing any existing table of
// the same name. The sniffing reader path is tried first; a strict manual
// parse into VARCHAR columns is the fallback for malformed input.
func (s *Store) IngestCSV(ctx context.Context, table string, content []byte) (*IngestResult, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	res, sniffErr := s.ingestSniffed(ctx, table, content)
	if sniffErr == nil {
		return res, nil
	}
	s.logger.Warn("CSV auto-detection failed, trying manual parse",
		zap.String("table", table),
		zap.Error(sniffErr))

	res, manualErr := s.ingestManual(ctx, table, content)
	if manualErr == nil {
		return res, nil
	}
	return nil, fmt.Errorf("failed to ingest CSV: auto: %v; manual: %v", sniffErr, manualErr)
}

// ingestSniffed stages the content in a temp file and lets read_csv_auto
// detect delimiters and column types, then renames columns to clean names.
func (s *Store) ingestSniffed(ctx context.Context, table string, content []byte) (*IngestResult, error) {
	tmp, err := os.CreateTemp("", "upload-*.csv")
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}

	createSQL := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto(?, header = true)", table)
	if _, err := s.db.ExecContext(ctx, createSQL, tmp.Name()); err != nil {
		return nil, err
	}

	rawCols, err := s.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(rawCols))
	for i, c := range rawCols {
		names[i] = CleanColumnName(c.Name)
	}
	names = dedupeColumns(names)

	for i, c := range rawCols {
		if names[i] == c.Name {
			continue
		}
		renameSQL := fmt.Sprintf(`ALTER TABLE %s RENAME COLUMN "%s" TO %s`,
			table, strings.ReplaceAll(c.Name, `"`, `""`), names[i])
		if _, err := s.db.ExecContext(ctx, renameSQL); err != nil {
			return nil, fmt.Errorf("failed to rename column %q: %w", c.Name, err)
		}
	}

	rowCount, err := s.TableRowCount(ctx, table)
	if err != nil {
		return nil, err
	}

	s.logger.Info("CSV ingested",
		zap.String("table", table),
		zap.Int64("rows", rowCount),
		zap.Int("columns", len(names)))
	return &IngestResult{Table: table, RowCount: rowCount, Columns: names}, nil
}

// ingestManual parses the content with encoding/csv and loads every column
// as VARCHAR. Rows with a mismatched field count are skipped.
func (s *Store) ingestManual(ctx context.Context, table string, content []byte) (*IngestResult, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must have a header and at least one data row")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = CleanColumnName(h)
	}
	header = dedupeColumns(header)

	var rows [][]string
	for _, rec := range records[1:] {
		if len(rec) == len(header) {
			rows = append(rows, rec)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no valid data rows found")
	}

	colDefs := make([]string, len(header))
	for i, col := range header {
		colDefs[i] = col + " VARCHAR"
	}
	createSQL := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", table, strings.Join(colDefs, ", "))
	if _, err := s.db.ExecContext(ctx, createSQL); err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	insertSQL := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, placeholders)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	for _, row := range rows {
		args := make([]any, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			stmt.Close()
			tx.Rollback()
			return nil, err
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("CSV ingested via manual parse",
		zap.String("table", table),
		zap.Int("rows", len(rows)),
		zap.Int("columns", len(header)))
	return &IngestResult{Table: table, RowCount: int64(len(rows)), Columns: header}, nil
}

// Sample returns up to n raw rows from a table.
func (s *Store) Sample(ctx context.Context, table string, n int) (*models.QueryResult, error) {
	if !ValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if n <= 0 {
		n = 5
	}
	return s.Execute(ctx, fmt.Sprintf("SELECT * FROM %s LIMIT %d", table, n))
}

// Package store is the embedded DuckDB storage layer: CSV ingestion, schema
// inspection, column statistics, and read-only query execution.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
)

// maxResultRows caps any query that does not carry its own LIMIT.
const maxResultRows = 10000

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store wraps a DuckDB database. An empty path opens an in-memory database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens (or creates) the DuckDB database at path.
func NewStore(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// The progress bar writes to stderr during long scans.
	if _, err := db.ExecContext(ctx, "SET enable_progress_bar = false"); err != nil {
		logger.Debug("could not disable progress bar", zap.Error(err))
	}

	logger.Info("database opened", zap.String("path", displayPath(path)))
	return &Store{db: db, logger: logger.Named("store")}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ValidIdentifier reports whether a name is safe to interpolate as a SQL
// identifier.
func ValidIdentifier(name string) bool {
	return identRe.MatchString(name)
}

func displayPath(path string) string {
	if path == "" {
		return ":memory:"
	}
	return path
}

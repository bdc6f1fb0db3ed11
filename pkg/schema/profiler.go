package schema

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
)

// Store is the slice of the storage engine the profiler needs.
// Implemented by store.Store; kept narrow for dependency injection in tests.
type Store interface {
	// TableColumns returns column names with their declared SQL types.
	TableColumns(ctx context.Context, table string) ([]models.ColumnDef, error)

	// TableRowCount returns the total row count of the table.
	TableRowCount(ctx context.Context, table string) (int64, error)

	// ColumnStats gathers statistics for one column. Numeric columns get
	// min/max/mean/stddev; categorical columns get ranked top values.
	ColumnStats(ctx context.Context, table, column string) (*models.ColumnStats, error)
}

// Profiler builds table profiles used as context for SQL synthesis.
type Profiler struct {
	store  Store
	logger *zap.Logger
}

// NewProfiler creates a Profiler backed by the given store.
func NewProfiler(store Store, logger *zap.Logger) *Profiler {
	return &Profiler{store: store, logger: logger.Named("profiler")}
}

// ProfileTable profiles every column of a table: declared type, semantic
// role, statistics, and a 0-100 quality score, plus table-level warnings.
func (p *Profiler) ProfileTable(ctx context.Context, table string) (*models.TableProfile, error) {
	defs, err := p.store.TableColumns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("table columns: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("table %q has no columns", table)
	}

	rowCount, err := p.store.TableRowCount(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("row count: %w", err)
	}

	profile := &models.TableProfile{
		TableName:   table,
		RowCount:    rowCount,
		ColumnCount: len(defs),
	}

	var totalQuality float64
	for _, def := range defs {
		stats, err := p.store.ColumnStats(ctx, table, def.Name)
		if err != nil {
			// Stats failures degrade the profile, never abort it.
			p.logger.Warn("column stats failed",
				zap.String("table", table),
				zap.String("column", def.Name),
				zap.Error(err))
			stats = nil
		}

		semantic := ClassifyColumn(def.Name, def.SQLType, stats)
		quality := columnQuality(stats, rowCount)
		totalQuality += quality

		profile.Columns = append(profile.Columns, models.Column{
			Name:         def.Name,
			SQLType:      def.SQLType,
			SemanticType: semantic,
			Stats:        stats,
			QualityScore: quality,
		})

		switch semantic {
		case models.SemanticDate:
			profile.DateColumns = append(profile.DateColumns, def.Name)
		case models.SemanticMeasure:
			profile.MeasureColumns = append(profile.MeasureColumns, def.Name)
		default:
			profile.DimensionColumns = append(profile.DimensionColumns, def.Name)
		}
	}

	profile.QualityScore = round1(totalQuality / float64(len(defs)))
	profile.Warnings = profileWarnings(profile.Columns, rowCount)
	return profile, nil
}

// columnQuality scores a column 0-100, penalizing nulls and constant values.
func columnQuality(stats *models.ColumnStats, rowCount int64) float64 {
	if rowCount == 0 || stats == nil {
		return 0
	}

	score := 100.0
	score -= float64(stats.NullCount) / float64(rowCount) * 50

	if stats.UniqueCount == 1 && rowCount > 10 {
		score -= 20
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func profileWarnings(columns []models.Column, rowCount int64) []string {
	var warnings []string

	if rowCount < 30 {
		warnings = append(warnings, fmt.Sprintf(
			"Small sample size (%d rows). Statistical insights may be unreliable.", rowCount))
	}

	for _, col := range columns {
		if col.Stats == nil || col.Stats.NullCount == 0 || rowCount == 0 {
			continue
		}
		nullPct := float64(col.Stats.NullCount) / float64(rowCount) * 100
		if nullPct > 20 {
			warnings = append(warnings, fmt.Sprintf(
				"Column '%s' has %.1f%% null values.", col.Name, nullPct))
		}
	}

	return warnings
}

// SchemaContext renders a profile as a text block for LLM prompting.
func SchemaContext(profile *models.TableProfile) string {
	lines := []string{
		fmt.Sprintf("Table: %s", profile.TableName),
		fmt.Sprintf("Rows: %d", profile.RowCount),
		"",
		"Columns:",
	}

	for _, col := range profile.Columns {
		var extra []string
		if col.SemanticType == models.SemanticMeasure && col.Stats != nil && col.Stats.Min != nil && col.Stats.Max != nil {
			extra = append(extra, fmt.Sprintf("range: %g to %g", *col.Stats.Min, *col.Stats.Max))
		}
		if col.SemanticType == models.SemanticDimension && col.Stats != nil {
			if col.Stats.UniqueCount > 0 {
				extra = append(extra, fmt.Sprintf("%d unique values", col.Stats.UniqueCount))
			}
			if len(col.Stats.TopValues) > 0 {
				n := len(col.Stats.TopValues)
				if n > 3 {
					n = 3
				}
				examples := make([]string, n)
				for i := 0; i < n; i++ {
					examples[i] = col.Stats.TopValues[i].Value
				}
				extra = append(extra, "examples: "+strings.Join(examples, ", "))
			}
		}

		line := fmt.Sprintf("  - %s: %s (%s)", col.Name, col.SemanticType, col.SQLType)
		if len(extra) > 0 {
			line += " [" + strings.Join(extra, ", ") + "]"
		}
		lines = append(lines, line)
	}

	if len(profile.Warnings) > 0 {
		lines = append(lines, "", "Warnings:")
		for _, w := range profile.Warnings {
			lines = append(lines, "  - "+w)
		}
	}

	return strings.Join(lines, "\n")
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}

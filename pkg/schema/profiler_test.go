package schema

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
)

// mockStore implements Store with injectable behavior.
type mockStore struct {
	TableColumnsFunc  func(ctx context.Context, table string) ([]models.ColumnDef, error)
	TableRowCountFunc func(ctx context.Context, table string) (int64, error)
	ColumnStatsFunc   func(ctx context.Context, table, column string) (*models.ColumnStats, error)
}

func (m *mockStore) TableColumns(ctx context.Context, table string) ([]models.ColumnDef, error) {
	return m.TableColumnsFunc(ctx, table)
}

func (m *mockStore) TableRowCount(ctx context.Context, table string) (int64, error) {
	return m.TableRowCountFunc(ctx, table)
}

func (m *mockStore) ColumnStats(ctx context.Context, table, column string) (*models.ColumnStats, error) {
	return m.ColumnStatsFunc(ctx, table, column)
}

func newTestStore() *mockStore {
	return &mockStore{
		TableColumnsFunc: func(ctx context.Context, table string) ([]models.ColumnDef, error) {
			return []models.ColumnDef{
				{Name: "order_date", SQLType: "DATE"},
				{Name: "revenue", SQLType: "DOUBLE"},
				{Name: "region", SQLType: "VARCHAR"},
			}, nil
		},
		TableRowCountFunc: func(ctx context.Context, table string) (int64, error) {
			return 1000, nil
		},
		ColumnStatsFunc: func(ctx context.Context, table, column string) (*models.ColumnStats, error) {
			return &models.ColumnStats{Count: 1000, NullCount: 0, UniqueCount: 500}, nil
		},
	}
}

func TestProfileTable(t *testing.T) {
	p := NewProfiler(newTestStore(), zap.NewNop())

	profile, err := p.ProfileTable(context.Background(), "orders")
	require.NoError(t, err)

	assert.Equal(t, "orders", profile.TableName)
	assert.Equal(t, int64(1000), profile.RowCount)
	assert.Equal(t, 3, profile.ColumnCount)
	assert.Equal(t, []string{"order_date"}, profile.DateColumns)
	assert.Equal(t, []string{"revenue"}, profile.MeasureColumns)
	assert.Equal(t, []string{"region"}, profile.DimensionColumns)
	assert.Equal(t, 100.0, profile.QualityScore)
	assert.Empty(t, profile.Warnings)
}

func TestProfileTableStatsFailureDegrades(t *testing.T) {
	store := newTestStore()
	store.ColumnStatsFunc = func(ctx context.Context, table, column string) (*models.ColumnStats, error) {
		return nil, errors.New("stats unavailable")
	}
	p := NewProfiler(store, zap.NewNop())

	profile, err := p.ProfileTable(context.Background(), "orders")
	require.NoError(t, err, "stats failures must not abort profiling")

	for _, col := range profile.Columns {
		assert.Nil(t, col.Stats)
		assert.Equal(t, 0.0, col.QualityScore)
	}
}

func TestProfileTableQualityPenalties(t *testing.T) {
	store := newTestStore()
	store.ColumnStatsFunc = func(ctx context.Context, table, column string) (*models.ColumnStats, error) {
		if column == "region" {
			// Constant column with half the values missing.
			return &models.ColumnStats{Count: 1000, NullCount: 500, UniqueCount: 1}, nil
		}
		return &models.ColumnStats{Count: 1000, NullCount: 0, UniqueCount: 500}, nil
	}
	p := NewProfiler(store, zap.NewNop())

	profile, err := p.ProfileTable(context.Background(), "orders")
	require.NoError(t, err)

	var region models.Column
	for _, col := range profile.Columns {
		if col.Name == "region" {
			region = col
		}
	}
	// 100 - 50% nulls * 50 - 20 constant penalty.
	assert.Equal(t, 55.0, region.QualityScore)
	assert.Contains(t, profile.Warnings[0], "region")
}

func TestProfileTableSmallSampleWarning(t *testing.T) {
	store := newTestStore()
	store.TableRowCountFunc = func(ctx context.Context, table string) (int64, error) {
		return 12, nil
	}
	p := NewProfiler(store, zap.NewNop())

	profile, err := p.ProfileTable(context.Background(), "orders")
	require.NoError(t, err)
	require.NotEmpty(t, profile.Warnings)
	assert.Contains(t, profile.Warnings[0], "Small sample size")
}

func TestSchemaContext(t *testing.T) {
	minV, maxV := 1.0, 900.0
	profile := &models.TableProfile{
		TableName: "orders",
		RowCount:  1000,
		Columns: []models.Column{
			{Name: "revenue", SQLType: "DOUBLE", SemanticType: models.SemanticMeasure,
				Stats: &models.ColumnStats{Min: &minV, Max: &maxV}},
			{Name: "region", SQLType: "VARCHAR", SemanticType: models.SemanticDimension,
				Stats: &models.ColumnStats{UniqueCount: 4, TopValues: []models.ValueCount{
					{Value: "west", Count: 400}, {Value: "east", Count: 300},
				}}},
		},
		Warnings: []string{"Small sample size (12 rows). Statistical insights may be unreliable."},
	}

	text := SchemaContext(profile)
	assert.Contains(t, text, "Table: orders")
	assert.Contains(t, text, "Rows: 1000")
	assert.Contains(t, text, "revenue: measure (DOUBLE)")
	assert.Contains(t, text, "range: 1 to 900")
	assert.Contains(t, text, "4 unique values")
	assert.Contains(t, text, "examples: west, east")
	assert.Contains(t, text, "Warnings:")
}

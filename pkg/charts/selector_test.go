package charts

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/models"
)

func newSelector() *Selector {
	return NewSelector(zap.NewNop())
}

func dimMeasureRows(n int) ([]map[string]any, []models.ResultColumn) {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = map[string]any{
			"region":  fmt.Sprintf("region_%d", i),
			"revenue": float64((i + 1) * 100),
		}
	}
	columns := []models.ResultColumn{
		{Name: "region", Type: models.SemanticDimension},
		{Name: "revenue", Type: models.SemanticMeasure},
	}
	return rows, columns
}

func TestRecommendNoData(t *testing.T) {
	rec := newSelector().Recommend(nil, nil, "anything")
	assert.Equal(t, models.ChartNone, rec.ChartType)
	assert.Equal(t, "No data available", rec.Reasoning)
}

func TestRecommendSingleRowMetricCard(t *testing.T) {
	rows := []map[string]any{{"total_count": int64(42)}}
	columns := []models.ResultColumn{{Name: "total_count", Type: models.SemanticMeasure}}

	rec := newSelector().Recommend(rows, columns, "how many records")
	require.Equal(t, models.ChartMetric, rec.ChartType)
	require.Len(t, rec.Config.Metrics, 1)
	assert.Equal(t, "Total Count", rec.Config.Metrics[0].Label)
	assert.Equal(t, int64(42), rec.Config.Metrics[0].Value)
}

func TestRecommendLargeResultForcesTable(t *testing.T) {
	rows, columns := dimMeasureRows(150)

	rec := newSelector().Recommend(rows, columns, "revenue by region")
	require.Equal(t, models.ChartTable, rec.ChartType)
	assert.Equal(t, "Large dataset (150 rows). Showing table view.", rec.Reasoning)
	assert.Equal(t, 150, rec.RowCount)
	assert.Len(t, rec.Config.Rows, 100)
}

func TestRecommendTrendIntentLineChart(t *testing.T) {
	rows := []map[string]any{
		{"period": "2024-02", "total_revenue": 200.0},
		{"period": "2024-01", "total_revenue": 100.0},
		{"period": "2024-03", "total_revenue": 300.0},
	}
	columns := []models.ResultColumn{
		{Name: "period", Type: models.SemanticDate},
		{Name: "total_revenue", Type: models.SemanticMeasure},
	}

	rec := newSelector().Recommend(rows, columns, "revenue trend over time")
	require.Equal(t, models.ChartLine, rec.ChartType)
	assert.Equal(t, "period", rec.XColumn)
	assert.Equal(t, "total_revenue", rec.YColumn)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, rec.Config.Data.Labels)
	assert.Equal(t, []any{100.0, 200.0, 300.0}, rec.Config.Data.Datasets[0].Data)
}

func TestRecommendDateMeasureDefaultsToLine(t *testing.T) {
	rows := []map[string]any{
		{"order_date": "2024-01-01", "revenue": 10.0},
		{"order_date": "2024-01-02", "revenue": 20.0},
	}
	columns := []models.ResultColumn{
		{Name: "order_date", Type: models.SemanticDate},
		{Name: "revenue", Type: models.SemanticMeasure},
	}

	rec := newSelector().Recommend(rows, columns, "daily numbers")
	assert.Equal(t, models.ChartLine, rec.ChartType)
}

func TestRecommendDistributionIntentHistogram(t *testing.T) {
	var rows []map[string]any
	for i := 0; i < 20; i++ {
		rows = append(rows, map[string]any{"amount": float64(i * 10)})
	}
	columns := []models.ResultColumn{{Name: "amount", Type: models.SemanticMeasure}}

	rec := newSelector().Recommend(rows, columns, "distribution of amount")
	require.Equal(t, models.ChartBar, rec.ChartType)
	assert.Equal(t, "Frequency", rec.Config.Data.Datasets[0].Label)
	assert.Len(t, rec.Config.Data.Labels, 10)
	assert.Equal(t, "amount", rec.YColumn)
}

func TestRecommendCorrelationIntentScatter(t *testing.T) {
	rows := []map[string]any{
		{"price": 1.0, "quantity": 10.0},
		{"price": 2.0, "quantity": 8.0},
		{"price": 3.0, "quantity": 5.0},
		{"price": 4.0, "quantity": 2.0},
	}
	columns := []models.ResultColumn{
		{Name: "price", Type: models.SemanticMeasure},
		{Name: "quantity", Type: models.SemanticMeasure},
	}

	rec := newSelector().Recommend(rows, columns, "relationship between price and quantity")
	require.Equal(t, models.ChartScatter, rec.ChartType)
	assert.Len(t, rec.Config.Data.Datasets[0].Data, 4)
}

func TestRecommendCompositionIntentDoughnut(t *testing.T) {
	rows := []map[string]any{
		{"segment": "retail", "revenue": 500.0},
		{"segment": "wholesale", "revenue": 300.0},
		{"segment": "online", "revenue": 200.0},
	}
	columns := []models.ResultColumn{
		{Name: "segment", Type: models.SemanticDimension},
		{Name: "revenue", Type: models.SemanticMeasure},
	}

	rec := newSelector().Recommend(rows, columns, "composition of revenue across segments")
	require.Equal(t, models.ChartDoughnut, rec.ChartType)
	assert.Equal(t, []string{"retail", "wholesale", "online"}, rec.Config.Data.Labels)
	assert.Equal(t, "60%", rec.Config.Options["cutout"])
}

func TestPieChartBuilder(t *testing.T) {
	rows, _ := dimMeasureRows(8)

	rec := pieChart(rows, "region", "revenue")
	require.Equal(t, models.ChartPie, rec.ChartType)
	assert.Equal(t, "pie", rec.Config.Type)
	assert.Len(t, rec.Config.Data.Labels, 6)
	assert.Equal(t, "region_7", rec.Config.Data.Labels[0])
	assert.Equal(t, []models.ChartType{models.ChartDoughnut, models.ChartBar}, rec.Alternatives)
}

func TestRecommendFewCategoriesBarChart(t *testing.T) {
	rows, columns := dimMeasureRows(4)

	rec := newSelector().Recommend(rows, columns, "revenue figures")
	require.Equal(t, models.ChartBar, rec.ChartType)
	_, hasIndexAxis := rec.Config.Options["indexAxis"]
	assert.False(t, hasIndexAxis, "few categories use a vertical bar")
	// Sorted descending by measure.
	assert.Equal(t, []string{"region_3", "region_2", "region_1", "region_0"}, rec.Config.Data.Labels)
}

func TestRecommendMidCategoriesHorizontalBar(t *testing.T) {
	rows, columns := dimMeasureRows(10)

	rec := newSelector().Recommend(rows, columns, "revenue figures")
	require.Equal(t, models.ChartBar, rec.ChartType)
	assert.Equal(t, "y", rec.Config.Options["indexAxis"])
}

func TestRecommendManyCategoriesTable(t *testing.T) {
	rows, columns := dimMeasureRows(20)

	rec := newSelector().Recommend(rows, columns, "revenue figures")
	require.Equal(t, models.ChartTable, rec.ChartType)
	assert.Equal(t, "Too many categories (20)", rec.Reasoning)
}

func TestRecommendMultiMeasureMultiRowTable(t *testing.T) {
	rows := []map[string]any{
		{"price": 1.0, "quantity": 2.0},
		{"price": 3.0, "quantity": 4.0},
	}
	columns := []models.ResultColumn{
		{Name: "price", Type: models.SemanticMeasure},
		{Name: "quantity", Type: models.SemanticMeasure},
	}

	rec := newSelector().Recommend(rows, columns, "numbers")
	assert.Equal(t, models.ChartTable, rec.ChartType)
	assert.Equal(t, "Multiple measures comparison", rec.Reasoning)
}

func TestHistogramConstantValues(t *testing.T) {
	rows := []map[string]any{
		{"amount": 5.0}, {"amount": 5.0}, {"amount": 5.0},
	}
	rec := histogram(rows, "amount")
	assert.Equal(t, models.ChartTable, rec.ChartType)
	assert.Equal(t, "Insufficient variance for histogram", rec.Reasoning)
}

func TestDetectVisualIntentOrder(t *testing.T) {
	cases := []struct {
		question string
		want     visualIntent
	}{
		{"revenue trend by month", visualTrend},
		{"revenue by region", visualComparison},
		{"distribution of amounts", visualDistribution},
		{"market share of each brand", visualComposition},
		{"correlation of price and sales", visualCorrelation},
		{"top performers", visualRanking},
		{"just the numbers", visualNone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, detectVisualIntent(tc.question), tc.question)
	}
}

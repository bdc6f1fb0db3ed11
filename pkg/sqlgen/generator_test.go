package sqlgen

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/apperrors"
	"github.com/Kesh3805/autobi/pkg/llm"
	"github.com/Kesh3805/autobi/pkg/models"
)

func salesProfile() *models.TableProfile {
	return &models.TableProfile{
		TableName: "sales",
		Columns: []models.Column{
			{Name: "order_date", SemanticType: models.SemanticDate},
			{Name: "region", SemanticType: models.SemanticDimension},
			{Name: "product", SemanticType: models.SemanticDimension},
			{Name: "revenue", SemanticType: models.SemanticMeasure},
			{Name: "quantity", SemanticType: models.SemanticMeasure},
		},
		DateColumns:      []string{"order_date"},
		MeasureColumns:   []string{"revenue", "quantity"},
		DimensionColumns: []string{"region", "product"},
	}
}

func heuristicGenerator() *Generator {
	return NewGenerator(nil, zap.NewNop())
}

func TestGenerateShowAll(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "show all data", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT order_date, region, product, revenue, quantity FROM sales LIMIT 100", plan.SQL)
	assert.Equal(t, 0.9, plan.Confidence)
	assert.Contains(t, plan.Assumptions, "Limited to 100 rows for preview")
}

func TestGenerateAggregateSumGrouped(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "total revenue by region", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT region, SUM(revenue) AS sum_revenue FROM sales GROUP BY region ORDER BY sum_revenue DESC LIMIT 50", plan.SQL)
	assert.Equal(t, 0.8, plan.Confidence)
}

// A question naming an aggregate keyword and a known measure must aggregate
// that exact measure with the matching SQL function.
func TestGenerateAggregateByPhraseOverridesMentionedDimension(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "total revenue for region by product", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT product, SUM(revenue) AS sum_revenue FROM sales GROUP BY product ORDER BY sum_revenue DESC LIMIT 50", plan.SQL)
}

func TestGenerateAggregateReferencesNamedMeasure(t *testing.T) {
	cases := []struct {
		question string
		want     string
	}{
		{"total revenue", "SUM(revenue)"},
		{"sum of quantity", "SUM(quantity)"},
		{"average quantity", "AVG(quantity)"},
		{"mean revenue", "AVG(revenue)"},
	}
	g := heuristicGenerator()
	for _, tc := range cases {
		plan, err := g.Generate(context.Background(), tc.question, "sales", salesProfile())
		require.NoError(t, err, tc.question)
		assert.Contains(t, plan.SQL, tc.want, tc.question)
	}
}

func TestGenerateAggregateGranularityOverridesDimension(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "total revenue by month", "sales", salesProfile())
	require.NoError(t, err)

	assert.Contains(t, plan.SQL, "DATE_TRUNC('month', order_date)")
	assert.Contains(t, plan.SQL, "SUM(revenue)")
	assert.Contains(t, plan.Assumptions, "Grouping by month")
}

func TestGenerateAggregateAvgUngrouped(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "average quantity", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT AVG(quantity) AS avg_quantity FROM sales", plan.SQL)
	assert.Equal(t, 0.8, plan.Confidence)
}

func TestGenerateCount(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "how many records are there", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT COUNT(*) AS total_count FROM sales", plan.SQL)
	assert.Equal(t, 0.85, plan.Confidence)
}

func TestGenerateCountGrouped(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "count of rows by region", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT region, COUNT(*) AS count FROM sales GROUP BY region ORDER BY count DESC", plan.SQL)
}

func TestGenerateRanking(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "top 5 product by revenue", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT product, revenue FROM sales ORDER BY revenue DESC LIMIT 5", plan.SQL)
	assert.Equal(t, 0.8, plan.Confidence)
}

func TestGenerateRankingAscendingDefaultLimit(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "lowest revenue product", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT product, revenue FROM sales ORDER BY revenue ASC LIMIT 10", plan.SQL)
}

func TestGenerateTrend(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "trend of revenue", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT order_date AS period, SUM(revenue) AS total_revenue FROM sales GROUP BY order_date ORDER BY order_date", plan.SQL)
	assert.Equal(t, 0.75, plan.Confidence)
}

func TestGenerateTrendMonthly(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "monthly revenue trend", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT DATE_TRUNC('month', order_date) AS period, SUM(revenue) AS total_revenue FROM sales GROUP BY DATE_TRUNC('month', order_date) ORDER BY DATE_TRUNC('month', order_date)", plan.SQL)
}

func TestGenerateTrendWithoutDates(t *testing.T) {
	profile := salesProfile()
	profile.DateColumns = nil

	plan, err := heuristicGenerator().Generate(context.Background(), "trend of revenue", "sales", profile)
	require.Error(t, err)

	var genErr *apperrors.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Contains(t, genErr.Assumptions, "No date column found for trend analysis")
	assert.Contains(t, plan.Assumptions, "No date column found for trend analysis")
	assert.Empty(t, plan.SQL)
}

func TestGenerateDistribution(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "distribution of revenue", "sales", salesProfile())
	require.NoError(t, err)

	assert.Contains(t, plan.SQL, "FLOOR((revenue - stats.min_val)")
	assert.Contains(t, plan.SQL, "NULLIF(stats.bucket_size, 0)")
	assert.Contains(t, plan.SQL, "COUNT(*) AS frequency")
	assert.Equal(t, 0.7, plan.Confidence)
}

func TestGenerateDistributionWithoutMeasures(t *testing.T) {
	profile := salesProfile()
	profile.MeasureColumns = nil

	_, err := heuristicGenerator().Generate(context.Background(), "distribution of values", "sales", profile)

	var genErr *apperrors.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "no numeric column found for distribution analysis", genErr.Reason)
}

func TestGenerateComparison(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "compare revenue across region", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT region, SUM(revenue) AS total_revenue, AVG(revenue) AS avg_revenue, COUNT(*) AS count FROM sales GROUP BY region ORDER BY total_revenue DESC", plan.SQL)
	assert.Equal(t, 0.75, plan.Confidence)
}

func TestGenerateFilters(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "show all data where region is west", "sales", salesProfile())
	require.NoError(t, err)

	assert.Contains(t, plan.SQL, "WHERE region = 'west'")
}

func TestGenerateInferredByPhrase(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "revenue by regions", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT region, SUM(revenue) AS total_revenue FROM sales GROUP BY region ORDER BY total_revenue DESC LIMIT 50", plan.SQL)
	assert.Equal(t, 0.7, plan.Confidence)
	assert.Contains(t, plan.Assumptions, "Grouped by region, summing revenue")
}

func TestGenerateInferredMentionedColumns(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "revenue and quantity please", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT revenue, quantity FROM sales LIMIT 100", plan.SQL)
	assert.Equal(t, 0.6, plan.Confidence)
}

func TestGenerateInferredKeyColumnFallback(t *testing.T) {
	plan, err := heuristicGenerator().Generate(context.Background(), "tell me something interesting", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT region, product, revenue, quantity, order_date FROM sales LIMIT 50", plan.SQL)
	assert.Equal(t, 0.5, plan.Confidence)
	assert.Contains(t, plan.Assumptions, "Could not parse specific intent. Showing sample data with key columns.")
}

func TestGenerateLLMPath(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateSQLFunc = func(ctx context.Context, prompt, systemMessage string) (string, error) {
		return "```sql\nSELECT region FROM sales LIMIT 5\n-- Assumption: using region\n```", nil
	}
	g := NewGenerator(mock, zap.NewNop())

	plan, err := g.Generate(context.Background(), "pick a region", "sales", salesProfile())
	require.NoError(t, err)

	assert.Equal(t, "SELECT region FROM sales LIMIT 5", plan.SQL)
	assert.Equal(t, 0.85, plan.Confidence)
	assert.Equal(t, []string{"using region"}, plan.Assumptions)
	assert.Equal(t, 1, mock.GenerateSQLCalls)
}

func TestGenerateLLMFailureFallsBack(t *testing.T) {
	mock := llm.NewMockClient()
	mock.GenerateSQLFunc = func(ctx context.Context, prompt, systemMessage string) (string, error) {
		return "", errors.New("rate limited")
	}
	g := NewGenerator(mock, zap.NewNop())

	plan, err := g.Generate(context.Background(), "total revenue", "sales", salesProfile())
	require.NoError(t, err)

	assert.Contains(t, plan.SQL, "SUM(revenue)")
	assert.Contains(t, plan.Assumptions, "LLM unavailable, used rule-based generation")
}

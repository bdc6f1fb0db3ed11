// Package sqlgen synthesizes read-only SQL from classified question intent
// and a table profile. Each intent dispatches to a query-shape builder;
// every builder returns a plan with a fixed confidence and human-readable
// assumptions for any default it applied.
package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/apperrors"
	"github.com/Kesh3805/autobi/pkg/llm"
	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/nlq"
)

// Default limits applied when the question does not request one.
const (
	defaultPreviewLimit = 100
	defaultRankingLimit = 10
	groupedResultLimit  = 50
)

// Generator synthesizes SQL plans. The LLM client is optional; when absent
// or failing, the rule-based path produces an equally well-formed plan.
type Generator struct {
	llm    llm.SQLGenerator
	logger *zap.Logger
}

// NewGenerator creates a Generator. Pass a nil client to run purely on the
// heuristic path.
func NewGenerator(client llm.SQLGenerator, logger *zap.Logger) *Generator {
	return &Generator{llm: client, logger: logger.Named("sqlgen")}
}

// Generate produces a SQL plan for a question against a profiled table.
// The returned error is a *apperrors.GenerationError when no synthesis path
// can proceed (trend without dates, distribution with no numeric column).
func (g *Generator) Generate(ctx context.Context, question, table string, profile *models.TableProfile) (models.SQLPlan, error) {
	if g.llm != nil {
		plan, err := g.generateWithLLM(ctx, question, profile)
		if err == nil {
			return plan, nil
		}
		g.logger.Warn("LLM generation failed, falling back to rule-based synthesis",
			zap.Error(err))
		plan, genErr := g.generateHeuristic(question, table, profile)
		plan.Assumptions = append(plan.Assumptions, "LLM unavailable, used rule-based generation")
		return plan, genErr
	}
	return g.generateHeuristic(question, table, profile)
}

func (g *Generator) generateHeuristic(question, table string, profile *models.TableProfile) (models.SQLPlan, error) {
	q := strings.ToLower(strings.TrimSpace(question))

	measures := profile.MeasureColumns
	dimensions := profile.DimensionColumns
	dates := profile.DateColumns
	allColumns := profile.ColumnNames()

	intent := nlq.DetectIntent(q)
	mentioned := nlq.ExtractMentionedColumns(q, allColumns)
	filters := nlq.ExtractFilters(q, allColumns)
	limit := nlq.ExtractLimit(q)

	g.logger.Debug("synthesizing query",
		zap.String("table", table),
		zap.String("intent", string(intent)),
		zap.Strings("mentioned", mentioned),
		zap.Int("filters", len(filters)),
		zap.Int("limit", limit))

	var assumptions []string

	switch intent {
	case nlq.IntentShowAll:
		return buildShowAll(table, allColumns, filters, limit, assumptions), nil
	case nlq.IntentAggregateSum:
		return buildAggregate("SUM", q, table, measures, dimensions, dates, mentioned, filters, assumptions), nil
	case nlq.IntentAggregateAvg:
		return buildAggregate("AVG", q, table, measures, dimensions, dates, mentioned, filters, assumptions), nil
	case nlq.IntentAggregateCount:
		return buildCount(q, table, dimensions, mentioned, filters, assumptions), nil
	case nlq.IntentAggregateMax, nlq.IntentRanking:
		return buildRanking(table, measures, dimensions, mentioned, filters, limit, assumptions, false), nil
	case nlq.IntentAggregateMin:
		return buildRanking(table, measures, dimensions, mentioned, filters, limit, assumptions, true), nil
	case nlq.IntentTrend:
		return buildTrend(q, table, measures, dates, mentioned, filters, assumptions)
	case nlq.IntentDistribution:
		return buildDistribution(table, measures, mentioned, assumptions)
	case nlq.IntentComparison:
		return buildComparison(table, measures, dimensions, mentioned, filters, assumptions), nil
	}

	return buildInferred(q, table, measures, dimensions, dates, allColumns, mentioned, filters, limit, assumptions), nil
}

// buildShowAll selects all (or the mentioned) columns with a preview limit.
func buildShowAll(table string, columns []string, filters []models.Filter, limit int, assumptions []string) models.SQLPlan {
	if limit == 0 {
		limit = defaultPreviewLimit
		assumptions = append(assumptions, "Limited to 100 rows for preview")
	}

	sqlText := joinClauses(
		"SELECT "+strings.Join(columns, ", ")+" FROM "+table,
		whereClause(filters),
		fmt.Sprintf("LIMIT %d", limit),
	)
	return models.SQLPlan{SQL: sqlText, Confidence: 0.9, Assumptions: assumptions}
}

// buildAggregate produces SUM/AVG of the chosen measure, optionally grouped
// by a mentioned dimension, an explicit "by <dimension>" phrase, or a
// truncated date expression when a time granularity word is present.
func buildAggregate(aggFunc, question, table string, measures, dimensions, dates, mentioned []string, filters []models.Filter, assumptions []string) models.SQLPlan {
	measure, assumptions, ok := chooseMeasure(measures, mentioned, assumptions, "Using first measure column: %s")
	if !ok {
		fallbackCols := mentioned
		if len(fallbackCols) == 0 {
			fallbackCols = head(dimensions, 3)
		}
		return buildShowAll(table, fallbackCols, filters, groupedResultLimit, assumptions)
	}

	groupBy := nlq.FindGroupByDimension(question, mentioned, dimensions)

	if gran := nlq.DetectGranularity(question); gran != nlq.GranularityNone && len(dates) > 0 {
		groupBy = dateGroupExpr(dates[0], gran)
		assumptions = append(assumptions, fmt.Sprintf("Grouping by %s", gran))
	}

	alias := strings.ToLower(aggFunc) + "_" + measure
	where := whereClause(filters)

	var sqlText string
	if groupBy != "" {
		sqlText = joinClauses(
			fmt.Sprintf("SELECT %s, %s(%s) AS %s FROM %s", groupBy, aggFunc, measure, alias, table),
			where,
			fmt.Sprintf("GROUP BY %s ORDER BY %s DESC LIMIT %d", groupBy, alias, groupedResultLimit),
		)
	} else {
		sqlText = joinClauses(
			fmt.Sprintf("SELECT %s(%s) AS %s FROM %s", aggFunc, measure, alias, table),
			where,
		)
	}
	return models.SQLPlan{SQL: sqlText, Confidence: 0.8, Assumptions: assumptions}
}

// buildCount produces COUNT(*), grouped when a dimension is referenced.
func buildCount(question, table string, dimensions, mentioned []string, filters []models.Filter, assumptions []string) models.SQLPlan {
	groupBy := nlq.FindGroupByDimension(question, mentioned, dimensions)
	where := whereClause(filters)

	var sqlText string
	if groupBy != "" {
		sqlText = joinClauses(
			fmt.Sprintf("SELECT %s, COUNT(*) AS count FROM %s", groupBy, table),
			where,
			fmt.Sprintf("GROUP BY %s ORDER BY count DESC", groupBy),
		)
	} else {
		sqlText = joinClauses("SELECT COUNT(*) AS total_count FROM "+table, where)
	}
	return models.SQLPlan{SQL: sqlText, Confidence: 0.85, Assumptions: assumptions}
}

// buildRanking orders rows by the chosen measure, including a dimension
// column alongside it when one is available.
func buildRanking(table string, measures, dimensions, mentioned []string, filters []models.Filter, limit int, assumptions []string, ascending bool) models.SQLPlan {
	measure, assumptions, _ := chooseMeasure(measures, mentioned, assumptions, "Ranking by: %s")

	dim := ""
	for _, col := range mentioned {
		if containsString(dimensions, col) {
			dim = col
			break
		}
	}
	if dim == "" && len(dimensions) > 0 {
		dim = dimensions[0]
	}

	order := "DESC"
	if ascending {
		order = "ASC"
	}
	if limit == 0 {
		limit = defaultRankingLimit
	}
	where := whereClause(filters)

	var sqlText string
	switch {
	case dim != "" && measure != "":
		sqlText = joinClauses(
			fmt.Sprintf("SELECT %s, %s FROM %s", dim, measure, table),
			where,
			fmt.Sprintf("ORDER BY %s %s LIMIT %d", measure, order, limit),
		)
	case measure != "":
		sqlText = joinClauses(
			"SELECT * FROM "+table,
			where,
			fmt.Sprintf("ORDER BY %s %s LIMIT %d", measure, order, limit),
		)
	default:
		sqlText = joinClauses(
			"SELECT * FROM "+table,
			where,
			fmt.Sprintf("LIMIT %d", limit),
		)
	}
	return models.SQLPlan{SQL: sqlText, Confidence: 0.8, Assumptions: assumptions}
}

// buildTrend buckets the chosen measure (or row count) by a truncated date
// expression. A schema with no date column is a hard failure, surfaced
// explicitly rather than silently degraded.
func buildTrend(question, table string, measures, dates, mentioned []string, filters []models.Filter, assumptions []string) (models.SQLPlan, error) {
	if len(dates) == 0 {
		assumptions = append(assumptions, "No date column found for trend analysis")
		return models.SQLPlan{Assumptions: assumptions}, &apperrors.GenerationError{
			Reason:      "no date column available for trend analysis",
			Assumptions: assumptions,
		}
	}

	gran := nlq.DetectGranularity(question)
	if gran == nlq.GranularityNone {
		gran = nlq.GranularityDay
	}

	measure, assumptions, hasMeasure := chooseMeasure(measures, mentioned, assumptions, "Using measure: %s")

	dateGroup := dateGroupExpr(dates[0], gran)
	where := whereClause(filters)

	var sqlText string
	if hasMeasure {
		sqlText = joinClauses(
			fmt.Sprintf("SELECT %s AS period, SUM(%s) AS total_%s FROM %s", dateGroup, measure, measure, table),
			where,
			fmt.Sprintf("GROUP BY %s ORDER BY %s", dateGroup, dateGroup),
		)
	} else {
		sqlText = joinClauses(
			fmt.Sprintf("SELECT %s AS period, COUNT(*) AS count FROM %s", dateGroup, table),
			where,
			fmt.Sprintf("GROUP BY %s ORDER BY %s", dateGroup, dateGroup),
		)
	}
	return models.SQLPlan{SQL: sqlText, Confidence: 0.75, Assumptions: assumptions}, nil
}

// buildDistribution builds an equal-width ten-bucket histogram query with a
// bucket-boundary subquery. Requires a numeric column.
func buildDistribution(table string, measures, mentioned []string, assumptions []string) (models.SQLPlan, error) {
	measure, assumptions, ok := chooseMeasure(measures, mentioned, assumptions, "Analyzing distribution of: %s")
	if !ok {
		return models.SQLPlan{Assumptions: assumptions}, &apperrors.GenerationError{
			Reason:      "no numeric column found for distribution analysis",
			Assumptions: assumptions,
		}
	}

	sqlText := fmt.Sprintf(`WITH stats AS (
    SELECT MIN(%[1]s) AS min_val, MAX(%[1]s) AS max_val, (MAX(%[1]s) - MIN(%[1]s)) / 10 AS bucket_size
    FROM %[2]s
)
SELECT FLOOR((%[1]s - stats.min_val) / NULLIF(stats.bucket_size, 0)) AS bucket, MIN(%[1]s) AS bucket_min, MAX(%[1]s) AS bucket_max, COUNT(*) AS frequency
FROM %[2]s, stats
GROUP BY bucket ORDER BY bucket`, measure, table)

	return models.SQLPlan{SQL: sqlText, Confidence: 0.7, Assumptions: assumptions}, nil
}

// buildComparison groups SUM/AVG/COUNT of the first measure by the first
// dimension, falling back to show_all when either axis is missing.
func buildComparison(table string, measures, dimensions, mentioned []string, filters []models.Filter, assumptions []string) models.SQLPlan {
	measure, assumptions, hasMeasure := chooseMeasure(measures, mentioned, assumptions, "")

	dim := ""
	for _, col := range mentioned {
		if containsString(dimensions, col) {
			dim = col
			break
		}
	}
	if dim == "" && len(dimensions) > 0 {
		dim = dimensions[0]
	}

	if !hasMeasure || dim == "" {
		fallbackCols := mentioned
		if len(fallbackCols) == 0 {
			fallbackCols = append(head(dimensions, 3), head(measures, 2)...)
		}
		return buildShowAll(table, fallbackCols, filters, groupedResultLimit, assumptions)
	}

	sqlText := joinClauses(
		fmt.Sprintf("SELECT %[1]s, SUM(%[2]s) AS total_%[2]s, AVG(%[2]s) AS avg_%[2]s, COUNT(*) AS count FROM %[3]s", dim, measure, table),
		whereClause(filters),
		fmt.Sprintf("GROUP BY %s ORDER BY total_%s DESC", dim, measure),
	)
	return models.SQLPlan{SQL: sqlText, Confidence: 0.75, Assumptions: assumptions}
}

// buildInferred is the unknown-intent fallback: a "by <word>" group-sum when
// the phrase fuzzily matches a column, else the mentioned columns, else up
// to five representative columns at low confidence.
func buildInferred(question, table string, measures, dimensions, dates, allColumns, mentioned []string, filters []models.Filter, limit int, assumptions []string) models.SQLPlan {
	if col, ok := nlq.MatchByPhrase(question, allColumns); ok && len(measures) > 0 {
		measure := measures[0]
		sqlText := joinClauses(
			fmt.Sprintf("SELECT %[1]s, SUM(%[2]s) AS total_%[2]s FROM %[3]s", col, measure, table),
			whereClause(filters),
			fmt.Sprintf("GROUP BY %s ORDER BY total_%s DESC LIMIT %d", col, measure, groupedResultLimit),
		)
		assumptions = append(assumptions, fmt.Sprintf("Grouped by %s, summing %s", col, measure))
		return models.SQLPlan{SQL: sqlText, Confidence: 0.7, Assumptions: assumptions}
	}

	if len(mentioned) > 0 {
		if limit == 0 {
			limit = defaultPreviewLimit
		}
		sqlText := joinClauses(
			"SELECT "+strings.Join(mentioned, ", ")+" FROM "+table,
			whereClause(filters),
			fmt.Sprintf("LIMIT %d", limit),
		)
		return models.SQLPlan{SQL: sqlText, Confidence: 0.6, Assumptions: assumptions}
	}

	// Representative sample: two dimensions, two measures, one date.
	keyCols := append(append(head(dimensions, 2), head(measures, 2)...), head(dates, 1)...)
	keyCols = head(keyCols, 5)
	if len(keyCols) == 0 {
		keyCols = head(allColumns, 5)
	}

	assumptions = append(assumptions, "Could not parse specific intent. Showing sample data with key columns.")
	sqlText := joinClauses(
		"SELECT "+strings.Join(keyCols, ", ")+" FROM "+table,
		whereClause(filters),
		fmt.Sprintf("LIMIT %d", groupedResultLimit),
	)
	return models.SQLPlan{SQL: sqlText, Confidence: 0.5, Assumptions: assumptions}
}

// chooseMeasure picks the first mentioned measure, else the schema's first
// measure (recording the assumption), else reports no measure available.
func chooseMeasure(measures, mentioned, assumptions []string, assumptionFormat string) (string, []string, bool) {
	for _, col := range mentioned {
		if containsString(measures, col) {
			return col, assumptions, true
		}
	}
	if len(measures) > 0 {
		if assumptionFormat != "" {
			assumptions = append(assumptions, fmt.Sprintf(assumptionFormat, measures[0]))
		}
		return measures[0], assumptions, true
	}
	return "", assumptions, false
}

// whereClause renders extracted filters, ANDed. String values are quoted
// with doubled single quotes; numeric values are rendered bare.
func whereClause(filters []models.Filter) string {
	if len(filters) == 0 {
		return ""
	}
	conditions := make([]string, 0, len(filters))
	for _, f := range filters {
		switch v := f.Value.(type) {
		case string:
			escaped := strings.ReplaceAll(v, "'", "''")
			conditions = append(conditions, fmt.Sprintf("%s %s '%s'", f.Column, f.Operator, escaped))
		case float64:
			conditions = append(conditions, fmt.Sprintf("%s %s %g", f.Column, f.Operator, v))
		default:
			conditions = append(conditions, fmt.Sprintf("%s %s %v", f.Column, f.Operator, v))
		}
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}

// dateGroupExpr truncates a date column to the granularity. Day granularity
// uses the raw column.
func dateGroupExpr(dateCol string, gran nlq.Granularity) string {
	switch gran {
	case nlq.GranularityYear, nlq.GranularityQuarter, nlq.GranularityMonth, nlq.GranularityWeek:
		return fmt.Sprintf("DATE_TRUNC('%s', %s)", gran, dateCol)
	default:
		return dateCol
	}
}

func joinClauses(clauses ...string) string {
	parts := clauses[:0:0]
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func head(list []string, n int) []string {
	if len(list) < n {
		n = len(list)
	}
	return append([]string(nil), list[:n]...)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

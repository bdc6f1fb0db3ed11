// Package services orchestrates the question-to-insight pipeline on top of
// the storage, synthesis, insight, and chart packages.
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/apperrors"
	"github.com/Kesh3805/autobi/pkg/cache"
	"github.com/Kesh3805/autobi/pkg/charts"
	"github.com/Kesh3805/autobi/pkg/insights"
	"github.com/Kesh3805/autobi/pkg/models"
	"github.com/Kesh3805/autobi/pkg/schema"
	sqlval "github.com/Kesh3805/autobi/pkg/sql"
	"github.com/Kesh3805/autobi/pkg/sqlgen"
	"github.com/Kesh3805/autobi/pkg/store"
)

// repairedConfidence replaces the plan confidence after a successful
// column-name repair; the rewrite is a guess, however well it executed.
const repairedConfidence = 0.6

// QueryService runs the full pipeline: profile, synthesize, validate,
// execute (with one repair attempt), then mine insights and pick a chart.
type QueryService struct {
	store     *store.Store
	profiler  *schema.Profiler
	generator *sqlgen.Generator
	insights  *insights.Engine
	charts    *charts.Selector
	caches    *cache.Caches
	logger    *zap.Logger
}

func NewQueryService(
	st *store.Store,
	profiler *schema.Profiler,
	generator *sqlgen.Generator,
	engine *insights.Engine,
	selector *charts.Selector,
	caches *cache.Caches,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		store:     st,
		profiler:  profiler,
		generator: generator,
		insights:  engine,
		charts:    selector,
		caches:    caches,
		logger:    logger.Named("query_service"),
	}
}

// ProcessQuestion answers a natural-language question against a table.
// An empty table name targets the first available table; no tables at all
// is apperrors.ErrNoTables.
func (s *QueryService) ProcessQuestion(ctx context.Context, question, table string) (*models.QueryResponse, error) {
	start := time.Now()

	if table == "" {
		tables, err := s.store.ListTables(ctx)
		if err != nil {
			return nil, err
		}
		if len(tables) == 0 {
			return nil, apperrors.ErrNoTables
		}
		table = tables[0].Name
	}

	if cached := s.caches.GetQuery(question, table); cached != nil {
		s.logger.Debug("query cache hit", zap.String("table", table))
		return cached, nil
	}

	profile, err := s.Profile(ctx, table)
	if err != nil {
		return nil, err
	}

	plan, err := s.generator.Generate(ctx, question, table, profile)
	if err != nil {
		return nil, err
	}

	validation := sqlval.ValidateAndNormalize(plan.SQL)
	if validation.Error != nil {
		return nil, &apperrors.ValidationError{Reason: validation.Error.Error()}
	}
	sqlText := validation.NormalizedSQL

	var repairNote string
	result, err := s.store.Execute(ctx, sqlText)
	if err != nil {
		var repairErr error
		sqlText, result, repairNote, repairErr = s.attemptRepair(ctx, sqlText, err, profile)
		if repairErr != nil {
			return nil, repairErr
		}
	}

	response := &models.QueryResponse{
		SQL:                 sqlText,
		Data:                result.Rows,
		Columns:             result.Columns,
		Insights:            s.insights.Detect(result.Rows, result.Columns),
		ChartRecommendation: s.charts.Recommend(result.Rows, result.Columns, question),
		RowCount:            result.RowCount,
		ExecutionTimeMs:     float64(time.Since(start).Microseconds()) / 1000,
		Confidence:          plan.Confidence,
		Assumptions:         plan.Assumptions,
	}
	if repairNote != "" {
		response.Confidence = repairedConfidence
		response.Assumptions = append(response.Assumptions, repairNote)
	}

	s.caches.SetQuery(question, table, response)

	s.logger.Info("question processed",
		zap.String("table", table),
		zap.Int("rows", response.RowCount),
		zap.Float64("confidence", response.Confidence),
		zap.Float64("elapsed_ms", response.ExecutionTimeMs))
	return response, nil
}

// attemptRepair handles the single allowed retry after an execution failure.
// Only column-not-found errors are repairable: the offending identifier is
// fuzzy-matched against the schema and rewritten whole-word. Each candidate
// rewrite is re-validated and executed once; the first success wins.
func (s *QueryService) attemptRepair(ctx context.Context, sqlText string, execErr error, profile *models.TableProfile) (string, *models.QueryResult, string, error) {
	badCol, ok := sqlgen.MatchColumnNotFound(execErr.Error())
	if !ok {
		return "", nil, "", execErr
	}

	for _, col := range profile.ColumnNames() {
		if _, match := sqlgen.FuzzyMatchColumn(badCol, []string{col}); !match {
			continue
		}

		fixed := sqlgen.RewriteColumn(sqlText, badCol, col)
		validation := sqlval.ValidateAndNormalize(fixed)
		if validation.Error != nil {
			continue
		}
		result, err := s.store.Execute(ctx, validation.NormalizedSQL)
		if err != nil {
			continue
		}

		s.logger.Info("repaired failing query",
			zap.String("bad_column", badCol),
			zap.String("replacement", col))
		note := fmt.Sprintf("Corrected column name: %s → %s", badCol, col)
		return validation.NormalizedSQL, result, note, nil
	}
	return "", nil, "", execErr
}

// Profile returns the cached schema profile for a table, computing and
// caching it on a miss.
func (s *QueryService) Profile(ctx context.Context, table string) (*models.TableProfile, error) {
	if profile := s.caches.GetSchema(table); profile != nil {
		return profile, nil
	}
	profile, err := s.profiler.ProfileTable(ctx, table)
	if err != nil {
		return nil, err
	}
	s.caches.SetSchema(table, profile)
	return profile, nil
}

// ExecuteRawSQL validates and runs caller-provided SQL, bypassing synthesis.
func (s *QueryService) ExecuteRawSQL(ctx context.Context, sqlText string) (*models.QueryResult, error) {
	validation := sqlval.ValidateAndNormalize(sqlText)
	if validation.Error != nil {
		return nil, &apperrors.ValidationError{Reason: validation.Error.Error()}
	}
	return s.store.Execute(ctx, validation.NormalizedSQL)
}

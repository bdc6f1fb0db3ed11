package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/apperrors"
	"github.com/Kesh3805/autobi/pkg/cache"
	"github.com/Kesh3805/autobi/pkg/logging"
	"github.com/Kesh3805/autobi/pkg/services"
)

const maxQuestionLength = 1000

// QueryRequest is the POST /query payload.
type QueryRequest struct {
	Question  string `json:"question"`
	TableName string `json:"table_name,omitempty"`
}

// SQLRequest is the POST /sql payload.
type SQLRequest struct {
	SQL string `json:"sql"`
}

// QueryHandler handles the question-answering and raw SQL endpoints.
type QueryHandler struct {
	queries     *services.QueryService
	suggestions *services.SuggestionService
	caches      *cache.Caches
	logger      *zap.Logger
}

func NewQueryHandler(queries *services.QueryService, suggestions *services.SuggestionService, caches *cache.Caches, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{queries: queries, suggestions: suggestions, caches: caches, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /query", h.Query)
	mux.HandleFunc("POST /sql", h.RawSQL)
	mux.HandleFunc("GET /suggestions/{table}", h.Suggestions)
	mux.HandleFunc("GET /cache/stats", h.CacheStats)
}

// Query handles POST /query: the full natural-language pipeline.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
		return
	}
	if len(req.Question) > maxQuestionLength {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question exceeds maximum length")
		return
	}

	response, err := h.queries.ProcessQuestion(r.Context(), req.Question, req.TableName)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, response)
}

// RawSQL handles POST /sql: validated read-only SQL, bypassing synthesis.
func (h *QueryHandler) RawSQL(w http.ResponseWriter, r *http.Request) {
	var req SQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.SQL == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "sql is required")
		return
	}

	result, err := h.queries.ExecuteRawSQL(r.Context(), req.SQL)
	if err != nil {
		h.writeQueryError(w, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, result)
}

// Suggestions handles GET /suggestions/{table}.
func (h *QueryHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	suggestions, err := h.suggestions.Suggest(r.Context(), table)
	if err != nil {
		writeTableError(w, table, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"table_name":  table,
		"suggestions": suggestions,
	})
}

// CacheStats handles GET /cache/stats.
func (h *QueryHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"schema_cache": h.caches.SchemaStats(),
		"query_cache":  h.caches.QueryStats(),
	})
}

// writeQueryError maps pipeline errors to HTTP statuses. Validation and
// generation failures are the caller's problem; execution failures are ours.
func (h *QueryHandler) writeQueryError(w http.ResponseWriter, err error) {
	var validationErr *apperrors.ValidationError
	var generationErr *apperrors.GenerationError
	var executionErr *apperrors.ExecutionError

	switch {
	case errors.Is(err, apperrors.ErrNoTables):
		_ = ErrorResponse(w, http.StatusBadRequest, "no_tables", err.Error())
	case errors.Is(err, apperrors.ErrTableNotFound):
		_ = ErrorResponse(w, http.StatusNotFound, "table_not_found", err.Error())
	case errors.As(err, &validationErr):
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_failed", validationErr.Error())
	case errors.As(err, &generationErr):
		_ = ErrorResponse(w, http.StatusBadRequest, "generation_failed", generationErr.Error())
	case errors.As(err, &executionErr):
		h.logger.Error("query execution failed",
			zap.String("sql", logging.SanitizeQuery(executionErr.SQL)),
			zap.Error(executionErr.Err))
		_ = ErrorResponse(w, http.StatusBadRequest, "execution_failed", executionErr.Error())
	default:
		h.logger.Error("query pipeline failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

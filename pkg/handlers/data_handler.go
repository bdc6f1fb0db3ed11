package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Kesh3805/autobi/pkg/apperrors"
	"github.com/Kesh3805/autobi/pkg/cache"
	"github.com/Kesh3805/autobi/pkg/services"
	"github.com/Kesh3805/autobi/pkg/store"
)

// DataHandler handles dataset lifecycle endpoints: upload, listing, schema,
// sampling, statistics, and removal.
type DataHandler struct {
	store    *store.Store
	queries  *services.QueryService
	caches   *cache.Caches
	maxBytes int64
	logger   *zap.Logger
}

func NewDataHandler(st *store.Store, queries *services.QueryService, caches *cache.Caches, maxBytes int64, logger *zap.Logger) *DataHandler {
	return &DataHandler{store: st, queries: queries, caches: caches, maxBytes: maxBytes, logger: logger}
}

// RegisterRoutes registers the data handler's routes on the given mux.
func (h *DataHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /upload", h.Upload)
	mux.HandleFunc("GET /tables", h.ListTables)
	mux.HandleFunc("GET /schema/{table}", h.Schema)
	mux.HandleFunc("GET /sample/{table}", h.Sample)
	mux.HandleFunc("GET /stats/{table}", h.Stats)
	mux.HandleFunc("DELETE /table/{table}", h.DeleteTable)
}

// Upload handles POST /upload. Accepts a multipart CSV under the "file"
// field; the table name derives from the filename.
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "missing file field")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "only CSV files are supported")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_upload", "failed to read file: "+err.Error())
		return
	}

	table := tableNameFromFilename(header.Filename)
	result, err := h.store.IngestCSV(r.Context(), table, content)
	if err != nil {
		h.logger.Error("CSV ingestion failed", zap.String("table", table), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "ingest_failed", err.Error())
		return
	}

	// The previous profile and any cached answers are stale now.
	h.caches.InvalidateTable(table)

	profile, err := h.queries.Profile(r.Context(), table)
	if err != nil {
		h.logger.Error("profiling failed after upload", zap.String("table", table), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "profile_failed", err.Error())
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"table_name": table,
		"row_count":  result.RowCount,
		"profile":    profile,
	})
}

// ListTables handles GET /tables.
func (h *DataHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if tables == nil {
		tables = []store.TableInfo{}
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{"tables": tables})
}

// Schema handles GET /schema/{table}.
func (h *DataHandler) Schema(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	profile, err := h.queries.Profile(r.Context(), table)
	if err != nil {
		writeTableError(w, table, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, profile)
}

// Sample handles GET /sample/{table}?limit=n.
func (h *DataHandler) Sample(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	result, err := h.store.Sample(r.Context(), table, limit)
	if err != nil {
		writeTableError(w, table, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"table_name":  table,
		"data":        result.Rows,
		"columns":     result.Columns,
		"sample_size": result.RowCount,
	})
}

// Stats handles GET /stats/{table}.
func (h *DataHandler) Stats(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	profile, err := h.queries.Profile(r.Context(), table)
	if err != nil {
		writeTableError(w, table, err)
		return
	}
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"table_name":    profile.TableName,
		"row_count":     profile.RowCount,
		"column_count":  profile.ColumnCount,
		"columns":       profile.Columns,
		"quality_score": profile.QualityScore,
		"warnings":      profile.Warnings,
	})
}

// DeleteTable handles DELETE /table/{table}.
func (h *DataHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if err := h.store.DropTable(r.Context(), table); err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	h.caches.InvalidateTable(table)
	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Table " + table + " deleted",
	})
}

// tableNameFromFilename normalizes an uploaded filename into a table name.
func tableNameFromFilename(filename string) string {
	name := strings.TrimSuffix(strings.ToLower(filename), ".csv")
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	return store.CleanColumnName(name)
}

func writeTableError(w http.ResponseWriter, table string, err error) {
	if errors.Is(err, apperrors.ErrTableNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "table_not_found", "Table not found: "+table)
		return
	}
	_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
}

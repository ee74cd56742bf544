package rest

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/leblango/leblango-backend/internal/domain"
	"github.com/leblango/leblango-backend/internal/service/analytics"
)

// maxImportBody caps import payloads at 32 MiB.
const maxImportBody = 32 << 20

// importerService defines the minimal interface needed by ImportHandler.
type importerService interface {
	ImportDictionaryCSV(ctx context.Context, r io.Reader) (*domain.ImportJob, error)
	ImportDictionaryJSON(ctx context.Context, body []byte) (*domain.ImportJob, error)
	ImportLibraryJSON(ctx context.Context, body []byte) (*domain.ImportJob, error)
	Job(ctx context.Context, id uuid.UUID) (*domain.ImportJob, error)
}

// ImportHandler serves the staff bulk-import endpoints.
type ImportHandler struct {
	svc importerService
	log *slog.Logger
}

// NewImportHandler creates an ImportHandler.
func NewImportHandler(svc importerService, logger *slog.Logger) *ImportHandler {
	return &ImportHandler{svc: svc, log: logger.With("handler", "import")}
}

type importJobResponse struct {
	JobID       string `json:"job_id"`
	TotalRows   int    `json:"total_rows"`
	SuccessRows int    `json:"success_rows"`
	FailedRows  int    `json:"failed_rows"`
	Log         string `json:"log,omitempty"`
}

// DictionaryCSV handles POST /api/admin/import/dictionary/csv with a
// multipart "file" part.
func (h *ImportHandler) DictionaryCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBody); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "multipart form with a file part required")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "file part is required")
		return
	}
	defer file.Close()

	job, err := h.svc.ImportDictionaryCSV(r.Context(), file)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toImportJobResponse(job))
}

// DictionaryJSON handles POST /api/admin/import/dictionary/json.
func (h *ImportHandler) DictionaryJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "unreadable request body")
		return
	}

	job, err := h.svc.ImportDictionaryJSON(r.Context(), body)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toImportJobResponse(job))
}

// LibraryJSON handles POST /api/admin/import/library/json.
func (h *ImportHandler) LibraryJSON(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "unreadable request body")
		return
	}

	job, err := h.svc.ImportLibraryJSON(r.Context(), body)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toImportJobResponse(job))
}

// Job handles GET /api/admin/import/jobs/{id}.
func (h *ImportHandler) Job(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, codeNotFound, "not found")
		return
	}

	job, err := h.svc.Job(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := toImportJobResponse(job)
	resp.Log = job.Log
	writeJSON(w, http.StatusOK, resp)
}

func toImportJobResponse(job *domain.ImportJob) importJobResponse {
	return importJobResponse{
		JobID:       job.ID.String(),
		TotalRows:   job.TotalRows,
		SuccessRows: job.SuccessRows,
		FailedRows:  job.FailedRows,
	}
}

// analyticsService defines the minimal interface needed by AnalyticsHandler.
type analyticsService interface {
	QueryHealthSummary(ctx context.Context, days, limit int) (*domain.QueryHealth, error)
	LibraryUsageOverview(ctx context.Context) (*analytics.LibraryOverview, error)
	DictionaryUsageOverview(ctx context.Context) (*analytics.DictionaryOverview, error)
}

// AnalyticsHandler serves the admin analytics endpoints.
type AnalyticsHandler struct {
	svc analyticsService
	log *slog.Logger
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(svc analyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, log: logger.With("handler", "analytics")}
}

type queryCountResponse struct {
	Query  string `json:"query"`
	Source string `json:"source"`
	Times  int    `json:"times"`
}

type queryHealthResponse struct {
	WindowDays         int                  `json:"window_days"`
	TotalSearches      int                  `json:"total_searches"`
	NoResultSearches   int                  `json:"no_result_searches"`
	NoResultRate       float64              `json:"no_result_rate"`
	TopQueries         []queryCountResponse `json:"top_queries"`
	TopNoResultQueries []queryCountResponse `json:"top_no_result_queries"`
}

// QueryHealth handles GET /api/admin/query-health/summary.
func (h *AnalyticsHandler) QueryHealth(w http.ResponseWriter, r *http.Request) {
	health, err := h.svc.QueryHealthSummary(r.Context(), queryInt(r, "days"), queryInt(r, "limit"))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := queryHealthResponse{
		WindowDays:         health.WindowDays,
		TotalSearches:      health.TotalSearches,
		NoResultSearches:   health.NoResultSearches,
		NoResultRate:       health.NoResultRate,
		TopQueries:         toQueryCounts(health.TopQueries),
		TopNoResultQueries: toQueryCounts(health.TopNoResultQueries),
	}
	writeJSON(w, http.StatusOK, resp)
}

// LibraryOverview handles GET /api/admin/analytics/library/overview.
func (h *AnalyticsHandler) LibraryOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.LibraryUsageOverview(r.Context())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// DictionaryOverview handles GET /api/admin/analytics/dictionary/overview.
func (h *AnalyticsHandler) DictionaryOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.DictionaryUsageOverview(r.Context())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func toQueryCounts(counts []domain.QueryCount) []queryCountResponse {
	out := make([]queryCountResponse, len(counts))
	for i, c := range counts {
		out[i] = queryCountResponse{Query: c.Query, Source: c.Source, Times: c.Times}
	}
	return out
}

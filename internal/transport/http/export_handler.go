package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	apierrors "ctedash/internal/errors"
	"ctedash/internal/exporter"
	"ctedash/internal/infrastructure"
	"ctedash/internal/middleware"
	"ctedash/internal/services"
	"ctedash/pkg/contracts/domain"
)

// ExportHandler serves the document download endpoints.
type ExportHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *middleware.QueryParamValidator
	metrics      *infrastructure.AppMetrics
}

// NewExportHandler creates an export handler.
func NewExportHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, metrics *infrastructure.AppMetrics) *ExportHandler {
	logger = logger.With(slog.String("component", "export_handler"))
	return &ExportHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		metrics:      metrics,
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/ctes.csv", h.ExportCSV)
	r.Get("/ctes.xlsx", h.ExportXLSX)
	return r
}

// documents resolves the filtered document list for an export request.
func (h *ExportHandler) documents(w http.ResponseWriter, r *http.Request) ([]domain.Cte, bool) {
	start, ok := h.query.ValidateDate(w, r, "start")
	if !ok {
		return nil, false
	}
	end, ok := h.query.ValidateDate(w, r, "end")
	if !ok {
		return nil, false
	}

	ctes, err := h.service.Documents(r.Context(), domain.DateRange{Start: start, End: end}, r.URL.Query().Get("unit"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}
	return ctes, true
}

func exportFilename(ext string) string {
	return fmt.Sprintf("ctes_%s.%s", time.Now().Format("2006-01-02"), ext)
}

// ExportCSV handles GET /api/export/ctes.csv.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctes, ok := h.documents(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("csv")))

	if err := exporter.WriteCSV(w, ctes); err != nil {
		// Headers are out; nothing left to do but log.
		h.logger.ErrorContext(r.Context(), "csv export failed", slog.String("error", err.Error()))
		return
	}
	h.recordExport(r, "csv", len(ctes))
}

// ExportXLSX handles GET /api/export/ctes.xlsx.
func (h *ExportHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	ctes, ok := h.documents(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename("xlsx")))

	if err := exporter.WriteXLSX(w, ctes); err != nil {
		h.logger.ErrorContext(r.Context(), "xlsx export failed", slog.String("error", err.Error()))
		return
	}
	h.recordExport(r, "xlsx", len(ctes))
}

func (h *ExportHandler) recordExport(r *http.Request, format string, documents int) {
	if h.metrics != nil {
		h.metrics.ExportsTotal.Add(r.Context(), 1,
			metric.WithAttributes(attribute.String("format", format)))
	}
	h.logger.InfoContext(r.Context(), "export served",
		slog.String("format", format),
		slog.Int("documents", documents))
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "ctedash/internal/errors"
	"ctedash/internal/middleware"
	"ctedash/internal/services"
	"ctedash/internal/stats"
	"ctedash/pkg/contracts/domain"
)

// DashboardHandler serves the statistics endpoints.
type DashboardHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	query        *middleware.QueryParamValidator
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	logger = logger.With(slog.String("component", "dashboard_handler"))
	return &DashboardHandler{
		service:      service,
		logger:       logger,
		errorHandler: errorHandler,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetDashboard)
	r.Get("/series", h.GetSeries)
	r.Get("/rankings", h.GetRankings)
	r.Get("/units/{unit}", h.GetUnit)
	r.Post("/refresh", h.Refresh)

	return r
}

// dateRange reads the optional start/end query parameters. The second
// return value is false when a parameter was malformed and the error
// response has already been written.
func (h *DashboardHandler) dateRange(w http.ResponseWriter, r *http.Request) (domain.DateRange, bool) {
	start, ok := h.query.ValidateDate(w, r, "start")
	if !ok {
		return domain.DateRange{}, false
	}
	end, ok := h.query.ValidateDate(w, r, "end")
	if !ok {
		return domain.DateRange{}, false
	}
	return domain.DateRange{Start: start, End: end}, true
}

// GetDashboard handles GET /api/dashboard.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	dateRange, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	result, err := h.service.Dashboard(r.Context(), stats.Options{
		Range: dateRange,
		Unit:  r.URL.Query().Get("unit"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"summary": result.Summary,
		"units":   result.Units,
	})
}

// GetUnit handles GET /api/dashboard/units/{unit} with drill-down document
// lists.
func (h *DashboardHandler) GetUnit(w http.ResponseWriter, r *http.Request) {
	unit := chi.URLParam(r, "unit")
	if unit == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("unit", "Unit name is required"))
		return
	}

	dateRange, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	unitStats, err := h.service.Unit(r.Context(), unit, dateRange)
	if err != nil {
		h.logger.WarnContext(r.Context(), "unit lookup failed",
			slog.String("unit", unit),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"unit":   unitStats,
	})
}

// GetSeries handles GET /api/dashboard/series.
func (h *DashboardHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	dateRange, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	series, err := h.service.Series(r.Context(), stats.SeriesOptions{
		Range: dateRange,
		Unit:  r.URL.Query().Get("unit"),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"series": series,
	})
}

// GetRankings handles GET /api/dashboard/rankings.
func (h *DashboardHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	dateRange, ok := h.dateRange(w, r)
	if !ok {
		return
	}

	rankings, err := h.service.Rankings(r.Context(), dateRange)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"rankings": rankings,
	})
}

// Refresh handles POST /api/dashboard/refresh: re-fetches all feeds and
// swaps the snapshot.
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "manual refresh requested",
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	if err := h.service.Refresh(r.Context()); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.FeedError(err))
		return
	}

	response := map[string]interface{}{
		"status":    "success",
		"loaded_at": h.service.LoadedAt(),
	}
	if snapshot, err := h.service.Snapshot(); err == nil {
		response["documents"] = len(snapshot.Ctes)
		if !snapshot.RefDate.IsZero() {
			// Reference date published in the period calendar, for
			// checking that the sheet maintainers advanced the period.
			response["period_ref_date"] = snapshot.RefDate.Format("2006-01-02")
		}
	}
	render.JSON(w, r, response)
}

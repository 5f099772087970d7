package transport

import (
	"net/http"
	"strconv"
	"time"

	"dukan-pos/internal/middleware"
	"dukan-pos/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DashboardHandler handles HTTP requests for back-office figures
type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// RegisterRoutes registers dashboard routes, admin only
func (h *DashboardHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(adminMiddleware)

		r.Get("/stats", h.Stats)
		r.Get("/revenue-series", h.RevenueSeries)
		r.Get("/recent-sales", h.RecentSales)
	})
}

// Stats returns total revenue and entity counts
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute stats", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, stats)
}

// RevenueSeries returns the trailing daily revenue buckets
func (h *DashboardHandler) RevenueSeries(w http.ResponseWriter, r *http.Request) {
	days := 7
	if d, err := strconv.Atoi(r.URL.Query().Get("days")); err == nil && d > 0 && d <= 90 {
		days = d
	}

	// Bucket boundaries follow the store's local midnight
	series, err := h.dashboardService.RevenueSeries(r.Context(), days, time.Local)
	if err != nil {
		h.logger.Error("Failed to compute revenue series", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compute revenue series")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, series)
}

// RecentSales returns the newest sales with resolved names
func (h *DashboardHandler) RecentSales(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 50 {
		limit = l
	}

	sales, err := h.dashboardService.RecentSales(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load recent sales", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to load recent sales")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sales)
}

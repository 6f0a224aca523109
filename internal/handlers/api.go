package handlers

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const (
	cacheControl     = "public, max-age=300"
	defaultRetailers = 10
	reloadTimeout    = 30 * time.Second
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// filtered applies the request's query filter. It writes the error response
// and returns false when the filter is invalid.
func (h *APIHandlers) filtered(w http.ResponseWriter, r *http.Request) ([]models.SalesRecord, bool) {
	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return h.analytics.Filtered(f), true
}

func (h *APIHandlers) cached(w http.ResponseWriter, data any) {
	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	h.cached(w, dataset.Summarize(records))
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	h.cached(w, dataset.AggregateByRegion(records))
}

func (h *APIHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 0)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}

	products := dataset.AggregateByProduct(records)
	if limit > 0 && len(products) > limit {
		products = products[:limit]
	}
	h.cached(w, products)
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	h.cached(w, dataset.MonthlyTrends(records))
}

func (h *APIHandlers) HandleSalesMethods(w http.ResponseWriter, r *http.Request) {
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	h.cached(w, dataset.AggregateBySalesMethod(records))
}

func (h *APIHandlers) HandleRetailers(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultRetailers)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	records, ok := h.filtered(w, r)
	if !ok {
		return
	}
	h.cached(w, dataset.TopRetailers(records, limit))
}

// HandleDateRange reports the span of the whole dataset, ignoring filters.
func (h *APIHandlers) HandleDateRange(w http.ResponseWriter, r *http.Request) {
	h.cached(w, dataset.GetDateRange(h.analytics.Records()))
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	records := h.analytics.Records()
	h.cached(w, models.FilterOptions{
		Regions:  dataset.DistinctRegions(records),
		Products: dataset.DistinctProducts(records),
	})
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r.URL.Query())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	dash, err := h.analytics.Snapshot(r.Context(), f)
	if err != nil {
		h.fail(w, r, errors.InternalWrap(err, "Failed to compute dashboard"))
		return
	}
	errors.WriteSuccess(w, dash)
}

// HandleReload re-reads the data source. A failed load still leaves the
// sample data in place, but the caller gets a retryable 503.
func (h *APIHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reloadTimeout)
	defer cancel()

	if err := h.analytics.Reload(ctx); err != nil {
		var loadErr *services.LoadError
		if stderrors.As(err, &loadErr) {
			h.fail(w, r, errors.DataUnavailable(err, "Failed to load sales data, using sample data").
				WithDetails(loadErr.Source))
			return
		}
		h.fail(w, r, errors.ServiceUnavailable(err.Error()))
		return
	}

	h.logger.Info("dataset reloaded", "request_id", observability.GetRequestID(r.Context()))
	errors.WriteSuccess(w, h.analytics.Stats())
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if h.analytics.LoadError() != nil {
		status = "degraded"
	}

	healthData := map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"records":   len(h.analytics.Records()),
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}

func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.Validation("limit must be a non-negative integer")
	}
	return n, nil
}

package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// dashboardSignals mirrors the data-signals declared on the page.
type dashboardSignals struct {
	Regions  []string `json:"regions"`
	Products []string `json:"products"`
	From     string   `json:"from"`
	To       string   `json:"to"`
}

// HandleDashboard recomputes the dashboard for the filter held in the
// client's signals and patches the content fragment.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.patchDashboard(w, r)
}

// HandleReload re-reads the data source, then patches the dashboard the same
// way HandleDashboard does. A load failure is shown in the error banner.
func (h *SSEHandlers) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reloadTimeout)
	defer cancel()

	if err := h.analytics.Reload(ctx); err != nil {
		h.logger.Warn("reload failed", "error", err, "request_id", observability.GetRequestID(r.Context()))
	}
	h.patchDashboard(w, r)
}

func (h *SSEHandlers) patchDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequest("invalid datastar signals").WithDetails(err.Error()), requestID)
		return
	}

	f, err := newFilter(signals.Regions, signals.Products, signals.From, signals.To)
	if err != nil {
		h.rejectFilter(w, r, err)
		return
	}

	dash, err := h.analytics.Snapshot(r.Context(), f)
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to compute dashboard"), requestID)
		return
	}

	html, err := templates.ToString(r.Context(), templates.Content(dash))
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to render dashboard"), requestID)
		return
	}

	payload, err := json.Marshal(map[string]any{
		"dashboard": dash,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}

	cleared, err := templates.ToString(r.Context(), templates.FilterError(""))
	if err != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(err, "Failed to render dashboard"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(cleared); err != nil {
		h.logger.Warn("clear filter error", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch dashboard content", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchSignals(payload); err != nil {
		h.logger.Warn("patch dashboard signals", "error", err, "request_id", requestID)
	}
}

// rejectFilter shows a rejected filter next to the inputs. The dashboard
// content is left as it was.
func (h *SSEHandlers) rejectFilter(w http.ResponseWriter, r *http.Request, err error) {
	requestID := observability.GetRequestID(r.Context())

	message := err.Error()
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		message = appErr.Message
	}
	h.logger.Warn("rejected dashboard filter", "error", err, "request_id", requestID)

	html, renderErr := templates.ToString(r.Context(), templates.FilterError(message))
	if renderErr != nil {
		errors.WriteError(w, h.logger, errors.InternalWrap(renderErr, "Failed to render filter error"), requestID)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch filter error", "error", err, "request_id", requestID)
	}
}

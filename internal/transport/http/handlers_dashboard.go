package httptransport

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"certiva/internal/dashboard"
	"certiva/internal/verification"
	"certiva/pkg/platform/httputil"
)

// DashboardService computes per-verifier figures.
type DashboardService interface {
	Stats(ctx context.Context, requestedBy uuid.UUID) (*dashboard.Stats, error)
	RecentActivity(ctx context.Context, requestedBy uuid.UUID) ([]verification.Request, error)
}

type DashboardHandler struct {
	dashboards DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: svc}
}

func (h *DashboardHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.dashboards.Stats(r.Context(), requester.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) handleActivity(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rows, err := h.dashboards.RecentActivity(r.Context(), requester.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rows)
}

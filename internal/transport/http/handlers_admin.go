package httptransport

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certiva/internal/alert"
	"certiva/internal/audit"
	"certiva/pkg/apperrors"
	"certiva/pkg/platform/httputil"
)

// AuditReader lists recorded audit entries.
type AuditReader interface {
	List(ctx context.Context, f audit.Filters) ([]audit.Entry, error)
}

// AlertService lists and resolves operator alerts.
type AlertService interface {
	List(ctx context.Context, f alert.Filters) ([]alert.Alert, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type AdminHandler struct {
	audits AuditReader
	alerts AlertService
}

func NewAdminHandler(audits AuditReader, alerts AlertService) *AdminHandler {
	return &AdminHandler{audits: audits, alerts: alerts}
}

func (h *AdminHandler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := audit.Filters{
		Action:    q.Get("action"),
		TableName: q.Get("table_name"),
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, apperrors.Validation(
				apperrors.FieldError{Field: "user_id", Message: "user_id must be a UUID"}))
			return
		}
		f.UserID = &id
	}
	if raw := q.Get("date_from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			httputil.WriteError(w, apperrors.Validation(
				apperrors.FieldError{Field: "date_from", Message: "date_from must be an RFC 3339 timestamp or YYYY-MM-DD"}))
			return
		}
		f.DateFrom = &t
	}
	if raw := q.Get("date_to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			httputil.WriteError(w, apperrors.Validation(
				apperrors.FieldError{Field: "date_to", Message: "date_to must be an RFC 3339 timestamp or YYYY-MM-DD"}))
			return
		}
		f.DateTo = &t
	}

	entries, err := h.audits.List(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

func (h *AdminHandler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := alert.Filters{
		Type:     q.Get("type"),
		Severity: q.Get("severity"),
	}
	switch q.Get("resolved") {
	case "":
	case "true":
		resolved := true
		f.Resolved = &resolved
	case "false":
		resolved := false
		f.Resolved = &resolved
	default:
		httputil.WriteError(w, apperrors.Validation(
			apperrors.FieldError{Field: "resolved", Message: "resolved must be true or false"}))
		return
	}

	alerts, err := h.alerts.List(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, alerts)
}

func (h *AdminHandler) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid alert id"))
		return
	}

	if err := h.alerts.Resolve(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

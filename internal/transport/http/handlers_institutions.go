package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certiva/internal/institution"
	"certiva/pkg/apperrors"
	"certiva/pkg/platform/httputil"
)

// InstitutionService is the slice of the institution service the transport needs.
type InstitutionService interface {
	Create(ctx context.Context, in institution.CreateInput) (*institution.Institution, error)
	Get(ctx context.Context, id uuid.UUID) (*institution.Institution, error)
	List(ctx context.Context, nameFilter string) ([]institution.Institution, error)
}

type InstitutionHandler struct {
	institutions InstitutionService
}

func NewInstitutionHandler(svc InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{institutions: svc}
}

func (h *InstitutionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in institution.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	inst, err := h.institutions.Create(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, inst)
}

func (h *InstitutionHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid institution id"))
		return
	}

	inst, err := h.institutions.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inst)
}

func (h *InstitutionHandler) handleList(w http.ResponseWriter, r *http.Request) {
	institutions, err := h.institutions.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, institutions)
}

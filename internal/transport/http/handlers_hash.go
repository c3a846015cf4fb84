package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certiva/internal/hashstore"
	"certiva/pkg/apperrors"
	"certiva/pkg/platform/httputil"
)

// HashService stores and serves certificate integrity digests.
type HashService interface {
	SetHash(ctx context.Context, certificateID uuid.UUID, in hashstore.SetHashInput) (*hashstore.CertificateHash, error)
	GetHash(ctx context.Context, certificateID uuid.UUID) (*hashstore.CertificateHash, error)
}

type HashHandler struct {
	hashes HashService
}

func NewHashHandler(svc HashService) *HashHandler {
	return &HashHandler{hashes: svc}
}

func (h *HashHandler) handleSet(w http.ResponseWriter, r *http.Request) {
	certID, err := uuid.Parse(chi.URLParam(r, "certificate_id"))
	if err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid certificate id"))
		return
	}

	var in hashstore.SetHashInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	record, err := h.hashes.SetHash(r.Context(), certID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

func (h *HashHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	certID, err := uuid.Parse(chi.URLParam(r, "certificate_id"))
	if err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid certificate id"))
		return
	}

	record, err := h.hashes.GetHash(r.Context(), certID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"certiva/internal/auth"
	"certiva/internal/platform/middleware"
	"certiva/pkg/apperrors"
	"certiva/pkg/platform/httputil"
)

// AuthService is the slice of the auth service the transport needs.
type AuthService interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Profile, error)
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*auth.Profile, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{auth: svc}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	profile, err := h.auth.Register(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, profile)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	result, err := h.auth.Login(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	userID, err := uuid.Parse(ident.UserID)
	if err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeUnauthorized, "invalid token subject"))
		return
	}

	profile, err := h.auth.GetMe(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

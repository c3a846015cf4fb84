package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certiva/internal/docstore"
	"certiva/internal/platform/middleware"
	"certiva/internal/verification"
	"certiva/pkg/apperrors"
	"certiva/pkg/platform/httputil"
)

// VerificationEngine is the slice of the engine the transport needs.
type VerificationEngine interface {
	Verify(ctx context.Context, sub verification.Submission) (*verification.Request, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*verification.Request, error)
}

// VerificationQuery is the role-scoped listing service.
type VerificationQuery interface {
	List(ctx context.Context, requester verification.Requester, filters verification.Filters) (*verification.PageResult, error)
	Export(ctx context.Context, requester verification.Requester, filters verification.Filters) ([]byte, error)
}

type VerificationHandler struct {
	engine VerificationEngine
	query  VerificationQuery
	docs   docstore.Uploader
}

func NewVerificationHandler(engine VerificationEngine, query VerificationQuery, docs docstore.Uploader) *VerificationHandler {
	return &VerificationHandler{engine: engine, query: query, docs: docs}
}

type verifyJSONRequest struct {
	FileURL       string     `json:"file_url"`
	CertificateID *uuid.UUID `json:"certificate_id,omitempty"`
}

// handleSubmit accepts either a multipart upload (field "file", optional
// "certificate_id") or a JSON body referencing an already-stored document.
func (h *VerificationHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sub := verification.Submission{RequestedBy: requester.ID}

	if isMultipart(r) {
		fileRef, certID, err := h.storeUpload(r, requester.ID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		sub.FileRef = fileRef
		sub.CertificateID = certID
	} else {
		var in verifyJSONRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
			return
		}
		if in.FileURL == "" {
			httputil.WriteError(w, apperrors.Validation(
				apperrors.FieldError{Field: "file_url", Message: "file_url is required"}))
			return
		}
		sub.FileRef = in.FileURL
		sub.CertificateID = in.CertificateID
	}

	req, err := h.engine.Verify(r.Context(), sub)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, req)
}

func (h *VerificationHandler) storeUpload(r *http.Request, ownerID uuid.UUID) (string, *uuid.UUID, error) {
	if err := r.ParseMultipartForm(docstore.MaxDocumentSize); err != nil {
		return "", nil, apperrors.New(apperrors.CodeBadRequest, "invalid multipart body")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, apperrors.Validation(
			apperrors.FieldError{Field: "file", Message: "file is required"})
	}
	defer file.Close()

	var certID *uuid.UUID
	if raw := r.FormValue("certificate_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return "", nil, apperrors.Validation(
				apperrors.FieldError{Field: "certificate_id", Message: "certificate_id must be a UUID"})
		}
		certID = &id
	}

	fileRef, err := h.docs.Upload(r.Context(), ownerID, docstore.Document{
		Content:     file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		return "", nil, err
	}
	return fileRef, certID, nil
}

func (h *VerificationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filters, err := filtersFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.query.List(r.Context(), requester, filters)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *VerificationHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	filters, err := filtersFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	csv, err := h.query.Export(r.Context(), requester, filters)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="verification_requests.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(csv)
}

func (h *VerificationHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	requester, err := requesterFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request id"))
		return
	}

	req, err := h.engine.GetRequest(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	// Verifiers only ever see their own history.
	if requester.Role == "verifier" && req.RequestedBy != requester.ID {
		httputil.WriteError(w, apperrors.New(apperrors.CodeNotFound, "verification request not found"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

func requesterFrom(ctx context.Context) (verification.Requester, error) {
	ident := middleware.GetIdentity(ctx)
	id, err := uuid.Parse(ident.UserID)
	if err != nil {
		return verification.Requester{}, apperrors.New(apperrors.CodeUnauthorized, "invalid token subject")
	}
	return verification.Requester{ID: id, Role: ident.Role}, nil
}

func filtersFrom(r *http.Request) (verification.Filters, error) {
	q := r.URL.Query()
	var f verification.Filters

	for _, raw := range q["status"] {
		if raw != "" {
			f.Statuses = append(f.Statuses, verification.Status(raw))
		}
	}
	f.Search = q.Get("search")

	if raw := q.Get("date_from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return f, apperrors.Validation(
				apperrors.FieldError{Field: "date_from", Message: "date_from must be an RFC 3339 timestamp or YYYY-MM-DD"})
		}
		f.DateFrom = &t
	}
	if raw := q.Get("date_to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return f, apperrors.Validation(
				apperrors.FieldError{Field: "date_to", Message: "date_to must be an RFC 3339 timestamp or YYYY-MM-DD"})
		}
		f.DateTo = &t
	}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, apperrors.Validation(
				apperrors.FieldError{Field: "page", Message: "page must be a positive integer"})
		}
		f.Page = n
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, apperrors.Validation(
				apperrors.FieldError{Field: "limit", Message: "limit must be a positive integer"})
		}
		f.Limit = n
	}
	return f, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 19 && ct[:19] == "multipart/form-data"
}

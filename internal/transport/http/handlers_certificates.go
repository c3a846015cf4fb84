package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"certiva/internal/certificate"
	"certiva/internal/docstore"
	"certiva/internal/platform/middleware"
	"certiva/pkg/apperrors"
	"certiva/pkg/platform/httputil"
)

// CertificateService is the slice of the certificate service the transport needs.
type CertificateService interface {
	Create(ctx context.Context, institutionID uuid.UUID, in certificate.CreateInput) (*certificate.Certificate, error)
	Update(ctx context.Context, institutionID, certificateID uuid.UUID, in certificate.UpdateInput) (*certificate.Certificate, error)
	Get(ctx context.Context, id uuid.UUID) (*certificate.Certificate, error)
	List(ctx context.Context, f certificate.Filters) ([]certificate.Certificate, error)
	AddSubjects(ctx context.Context, institutionID, certificateID uuid.UUID, inputs []certificate.SubjectInput) ([]certificate.Subject, error)
	UpdateSubject(ctx context.Context, institutionID, certificateID, subjectID uuid.UUID, in certificate.SubjectInput) (*certificate.Subject, error)
	ListSubjects(ctx context.Context, certificateID uuid.UUID) ([]certificate.Subject, error)
}

type CertificateHandler struct {
	certs CertificateService
	docs  docstore.Uploader
}

func NewCertificateHandler(certs CertificateService, docs docstore.Uploader) *CertificateHandler {
	return &CertificateHandler{certs: certs, docs: docs}
}

// handleCreate accepts a multipart form (fields mirroring CreateInput plus a
// "file" part) or a plain JSON body when the document was uploaded separately.
func (h *CertificateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var in certificate.CreateInput
	if isMultipart(r) {
		in, err = h.createInputFromForm(r, institutionID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	} else if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	cert, err := h.certs.Create(r.Context(), institutionID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, cert)
}

func (h *CertificateHandler) createInputFromForm(r *http.Request, institutionID uuid.UUID) (certificate.CreateInput, error) {
	if err := r.ParseMultipartForm(docstore.MaxDocumentSize); err != nil {
		return certificate.CreateInput{}, apperrors.New(apperrors.CodeBadRequest, "invalid multipart body")
	}

	in := certificate.CreateInput{
		CertificateNumber: r.FormValue("certificate_number"),
		StudentName:       r.FormValue("student_name"),
		RollNumber:        r.FormValue("roll_number"),
		Course:            r.FormValue("course"),
		IssuedDate:        r.FormValue("issued_date"),
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// The document is optional on create.
		return in, nil
	}
	defer file.Close()

	fileRef, err := h.docs.Upload(r.Context(), institutionID, docstore.Document{
		Content:     file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
	})
	if err != nil {
		return certificate.CreateInput{}, err
	}
	in.FileURL = fileRef
	return in, nil
}

func (h *CertificateHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	certID, err := certIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var in certificate.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	cert, err := h.certs.Update(r.Context(), institutionID, certID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cert)
}

func (h *CertificateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	certID, err := certIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cert, err := h.certs.Get(r.Context(), certID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cert)
}

// handleList scopes institution users to their own certificates; admins and
// verifiers may filter by institution_id.
func (h *CertificateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())

	var f certificate.Filters
	f.Status = r.URL.Query().Get("status")

	if ident.Role == "institution" {
		id, err := uuid.Parse(ident.InstitutionID)
		if err != nil {
			httputil.WriteError(w, apperrors.New(apperrors.CodeForbidden, "caller has no institution"))
			return
		}
		f.InstitutionID = id
	} else if raw := r.URL.Query().Get("institution_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, apperrors.Validation(
				apperrors.FieldError{Field: "institution_id", Message: "institution_id must be a UUID"}))
			return
		}
		f.InstitutionID = id
	}

	certs, err := h.certs.List(r.Context(), f)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, certs)
}

func (h *CertificateHandler) handleAddSubjects(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	certID, err := certIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var inputs []certificate.SubjectInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	subjects, err := h.certs.AddSubjects(r.Context(), institutionID, certID, inputs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, subjects)
}

func (h *CertificateHandler) handleUpdateSubject(w http.ResponseWriter, r *http.Request) {
	institutionID, err := institutionFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	certID, err := certIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	subjectID, err := uuid.Parse(chi.URLParam(r, "subject_id"))
	if err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid subject id"))
		return
	}

	var in certificate.SubjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httputil.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	subject, err := h.certs.UpdateSubject(r.Context(), institutionID, certID, subjectID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subject)
}

func (h *CertificateHandler) handleListSubjects(w http.ResponseWriter, r *http.Request) {
	certID, err := certIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	subjects, err := h.certs.ListSubjects(r.Context(), certID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, subjects)
}

func institutionFrom(ctx context.Context) (uuid.UUID, error) {
	ident := middleware.GetIdentity(ctx)
	id, err := uuid.Parse(ident.InstitutionID)
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.CodeForbidden, "caller has no institution")
	}
	return id, nil
}

func certIDFrom(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperrors.New(apperrors.CodeBadRequest, "invalid certificate id")
	}
	return id, nil
}

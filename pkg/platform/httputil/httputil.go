// Package httputil centralizes JSON response and error envelope writing so the
// transport layer stays consistent across handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"certiva/pkg/apperrors"
)

// errorResponse is the wire envelope for failures. The description and field
// detail are omitted for internal-class errors so infrastructure specifics
// never leak to callers.
type errorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description,omitempty"`
	Fields           []apperrors.FieldError `json:"fields,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a typed error into an HTTP status and JSON envelope.
func WriteError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := ToHTTPStatus(code)

	resp := errorResponse{Error: string(code)}
	if status < http.StatusInternalServerError {
		resp.ErrorDescription = messageOf(err)
		resp.Fields = fieldsOf(err)
	}
	WriteJSON(w, status, resp)
}

// ToHTTPStatus maps error codes to HTTP status lines.
func ToHTTPStatus(code apperrors.Code) int {
	switch code {
	case apperrors.CodeValidation, apperrors.CodeBadRequest:
		return http.StatusBadRequest
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeUpstream:
		return http.StatusBadGateway
	default:
		// storage, partial failure, internal: the caller can do nothing
		// different, operators act on logs/metrics instead.
		return http.StatusInternalServerError
	}
}

func messageOf(err error) string {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}

func fieldsOf(err error) []apperrors.FieldError {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

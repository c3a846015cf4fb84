package audit

import (
	"net"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/mssola/useragent"

	"certiva/internal/platform/middleware"
)

// Middleware records every successful mutating request as an audit entry.
// Reads pass through untouched.
func Middleware(recorder *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			default:
				next.ServeHTTP(w, r)
				return
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if ww.Status() >= http.StatusBadRequest {
				return
			}

			entry := Entry{
				Action:    r.Method + " " + r.URL.Path,
				TableName: tableFromPath(r.URL.Path),
				Metadata:  requestMetadata(r, ww.Status()),
			}
			ident := middleware.GetIdentity(r.Context())
			if id, err := uuid.Parse(ident.UserID); err == nil {
				entry.UserID = &id
			}
			recorder.Record(entry)
		})
	}
}

// tableFromPath maps /api/certificates/{id}/... to "certificates".
func tableFromPath(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "api" {
		return parts[1]
	}
	return ""
}

func requestMetadata(r *http.Request, status int) map[string]any {
	ua := useragent.New(r.UserAgent())
	browser, version := ua.Browser()

	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	}

	md := map[string]any{
		"status": status,
		"ip":     ip,
		"path":   r.URL.Path,
	}
	if browser != "" {
		md["browser"] = browser
		if version != "" {
			md["browser_version"] = version
		}
	}
	if os := ua.OS(); os != "" {
		md["os"] = os
	}
	if ua.Mobile() {
		md["mobile"] = true
	}
	return md
}

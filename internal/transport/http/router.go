// Package httptransport is the thin HTTP layer: handlers delegate to domain
// services and translate typed errors into the JSON envelope.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"certiva/internal/audit"
	"certiva/internal/auth"
	"certiva/internal/docstore"
	"certiva/internal/platform/middleware"
	"certiva/internal/ratelimit"
	"certiva/pkg/platform/httputil"
)

// Deps carries everything the router wires together.
type Deps struct {
	Auth         AuthService
	Tokens       middleware.TokenValidator
	Engine       VerificationEngine
	Query        VerificationQuery
	Hashes       HashService
	Certificates CertificateService
	Institutions InstitutionService
	Dashboards   DashboardService
	Audits       AuditReader
	Alerts       AlertService
	Docs         docstore.Uploader

	AuditRecorder *audit.Recorder
	Limiter       ratelimit.Limiter
	RateLimit     int
	RateWindow    time.Duration
	RateMetrics   *ratelimit.Metrics
	Logger        *slog.Logger
}

// NewRouter assembles the public API surface.
func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Auth)
	verifyHandler := NewVerificationHandler(d.Engine, d.Query, d.Docs)
	hashHandler := NewHashHandler(d.Hashes)
	certHandler := NewCertificateHandler(d.Certificates, d.Docs)
	instHandler := NewInstitutionHandler(d.Institutions)
	dashHandler := NewDashboardHandler(d.Dashboards)
	adminHandler := NewAdminHandler(d.Audits, d.Alerts)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if d.Limiter != nil && d.RateLimit > 0 {
			r.Use(ratelimit.Middleware(d.Limiter, d.RateLimit, d.RateWindow, d.RateMetrics, d.Logger))
		}
		if d.AuditRecorder != nil {
			r.Use(audit.Middleware(d.AuditRecorder))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.handleRegister)
			r.Post("/login", authHandler.handleLogin)
			r.With(middleware.RequireAuth(d.Tokens, d.Logger)).
				Get("/me", authHandler.handleMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Tokens, d.Logger))

			r.Route("/verify", func(r chi.Router) {
				r.Post("/", verifyHandler.handleSubmit)
				r.Get("/", verifyHandler.handleList)
				r.Get("/export", verifyHandler.handleExport)
				r.Get("/{id}", verifyHandler.handleGet)
			})

			r.Route("/hash", func(r chi.Router) {
				r.Get("/{certificate_id}", hashHandler.handleGet)
				r.With(middleware.RequireRole(auth.RoleAdmin, auth.RoleInstitution)).
					Post("/{certificate_id}", hashHandler.handleSet)
			})

			r.Route("/certificates", func(r chi.Router) {
				r.Get("/", certHandler.handleList)
				r.Get("/{id}", certHandler.handleGet)
				r.Get("/{id}/subjects", certHandler.handleListSubjects)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(auth.RoleInstitution))
					r.Post("/", certHandler.handleCreate)
					r.Put("/{id}", certHandler.handleUpdate)
					r.Post("/{id}/subjects", certHandler.handleAddSubjects)
					r.Put("/{id}/subjects/{subject_id}", certHandler.handleUpdateSubject)
				})
			})

			r.Route("/institutions", func(r chi.Router) {
				r.Get("/", instHandler.handleList)
				r.Get("/{id}", instHandler.handleGet)
				r.With(middleware.RequireRole(auth.RoleAdmin)).
					Post("/", instHandler.handleCreate)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/stats", dashHandler.handleStats)
				r.Get("/activity", dashHandler.handleActivity)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(auth.RoleAdmin))
				r.Get("/audit", adminHandler.handleListAudit)
				r.Get("/alerts", adminHandler.handleListAlerts)
				r.Post("/alerts/{id}/resolve", adminHandler.handleResolveAlert)
			})
		})
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"certiva/internal/alert"
	"certiva/internal/audit"
	"certiva/internal/auth"
	"certiva/internal/certificate"
	"certiva/internal/dashboard"
	"certiva/internal/docstore"
	"certiva/internal/extraction"
	"certiva/internal/hashstore"
	"certiva/internal/institution"
	"certiva/internal/jwttoken"
	"certiva/internal/platform/config"
	"certiva/internal/platform/httpserver"
	"certiva/internal/platform/logger"
	"certiva/internal/platform/postgres"
	"certiva/internal/platform/redis"
	"certiva/internal/ratelimit"
	httptransport "certiva/internal/transport/http"
	"certiva/internal/verification"
	verificationmetrics "certiva/internal/verification/metrics"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("open postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("run migrations", "error", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var limiter ratelimit.Limiter
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient)
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}

	var docs docstore.Uploader
	if cfg.Docs.Endpoint != "" {
		minioStore, err := docstore.NewMinioStore(cfg.Docs)
		if err != nil {
			log.Error("connect document store", "error", err)
			os.Exit(1)
		}
		docs = minioStore
	} else {
		log.Warn("document store not configured, uploads held in memory")
		docs = docstore.NewInMemoryStore()
	}

	auditOpts := []audit.RecorderOption{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := audit.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		auditOpts = append(auditOpts, audit.WithSink(publisher))
	}
	recorder := audit.NewRecorder(audit.NewPostgresStore(db), log, auditOpts...)
	defer recorder.Close()

	tokens := jwttoken.New(cfg.JWTSigningKey, "certiva", cfg.JWTTTL)
	requestStore := verification.NewPostgresStore(db)
	oracle := extraction.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.Timeout)
	engine := verification.NewEngine(requestStore, oracle, log,
		verification.WithMetrics(verificationmetrics.New()))

	rateLimit := cfg.RateLimit.Max
	if cfg.RateLimit.Disabled {
		rateLimit = 0
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:         auth.NewService(auth.NewPostgresUserStore(db), tokens, log),
		Tokens:       jwttoken.NewValidator(tokens),
		Engine:       engine,
		Query:        verification.NewQueryService(requestStore),
		Hashes:       hashstore.NewService(hashstore.NewPostgresStore(db), log),
		Certificates: certificate.NewService(certificate.NewPostgresStore(db), log),
		Institutions: institution.NewService(institution.NewPostgresStore(db), log),
		Dashboards:   dashboard.NewService(requestStore, log),
		Audits:       recorder,
		Alerts:       alert.NewService(alert.NewPostgresStore(db), log),
		Docs:         docs,

		AuditRecorder: recorder,
		Limiter:       limiter,
		RateLimit:     rateLimit,
		RateWindow:    cfg.RateLimit.Window,
		RateMetrics:   ratelimit.NewMetrics(),
		Logger:        log,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

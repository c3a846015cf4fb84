package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"certiva/internal/extraction"
	"certiva/internal/verification/metrics"
	"certiva/pkg/apperrors"
	"certiva/pkg/platform/sentinel"
)

// Extractor is the external oracle as the engine sees it.
type Extractor interface {
	Extract(ctx context.Context, fileRef string) (*extraction.Result, error)
}

// Engine orchestrates the verification-request lifecycle: call the oracle,
// record the request, classify, persist the outcome.
//
// Ordering: the oracle is called first and the record is created with the raw
// result already attached. An extraction failure therefore leaves nothing
// behind; an insert failure aborts the whole operation; an update failure
// after a successful insert strands the record at PROCESSING and surfaces as
// a partial failure.
type Engine struct {
	store     Store
	extractor Extractor
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

type EngineOption func(*Engine)

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock overrides the engine clock (for tests).
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(store Store, extractor Extractor, logger *slog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:     store,
		extractor: extractor,
		logger:    logger,
		tracer:    otel.Tracer("certiva/verification"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submission is one document handed to the engine: who asked, which file,
// and optionally which known certificate it claims to be.
type Submission struct {
	RequestedBy   uuid.UUID
	CertificateID *uuid.UUID
	FileRef       string
}

// Verify processes one document submission end to end and returns the
// finalized record. No retries happen at any step; every failure propagates
// as a typed error.
func (e *Engine) Verify(ctx context.Context, sub Submission) (*Request, error) {
	ctx, span := e.tracer.Start(ctx, "verification.Verify")
	defer span.End()

	extracted, err := e.extract(ctx, sub.FileRef)
	if err != nil {
		return nil, err
	}

	req := &Request{
		ID:            uuid.New(),
		CertificateID: sub.CertificateID,
		RequestedBy:   sub.RequestedBy,
		Status:        StatusProcessing,
		Result: ResultPayload{
			Confidence:       extracted.Confidence,
			ValidationPassed: extracted.ValidationPassed,
			Fields:           extracted.Fields,
		},
		CreatedAt: e.now().UTC(),
	}
	if err := e.createRecord(ctx, req); err != nil {
		return nil, err
	}

	status, reason := Classify(extracted.Confidence, extracted.ValidationPassed)
	span.SetAttributes(attribute.String("verification.status", string(status)))

	finalized := req.Result
	finalized.Reason = reason
	if err := e.persistClassification(ctx, req.ID, status, finalized); err != nil {
		return nil, err
	}

	req.Status = status
	req.Result = finalized
	if e.metrics != nil {
		e.metrics.IncrementClassified(string(status))
	}
	e.logger.Info("verification request classified",
		"request_id", req.ID,
		"status", status,
		"confidence", extracted.Confidence,
	)
	return req, nil
}

func (e *Engine) extract(ctx context.Context, fileRef string) (*extraction.Result, error) {
	ctx, span := e.tracer.Start(ctx, "verification.extract")
	defer span.End()

	start := e.now()
	extracted, err := e.extractor.Extract(ctx, fileRef)
	if e.metrics != nil {
		e.metrics.ObserveExtraction(time.Since(start).Seconds())
	}
	if err != nil {
		e.logger.Error("extraction failed", "file_ref", fileRef, "error", err)
		return nil, err
	}
	return extracted, nil
}

func (e *Engine) createRecord(ctx context.Context, req *Request) error {
	ctx, span := e.tracer.Start(ctx, "verification.create")
	defer span.End()

	if err := e.store.Create(ctx, req); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStorage, "failed to create verification request")
	}
	return nil
}

// persistClassification is the single mutation a record ever receives. A
// failure here means the classification was computed but not durably
// recorded: the record stays at PROCESSING, otherwise indistinguishable from
// in-flight work, so the error carries its own code for operator tooling.
func (e *Engine) persistClassification(ctx context.Context, id uuid.UUID, status Status, result ResultPayload) error {
	ctx, span := e.tracer.Start(ctx, "verification.persist")
	defer span.End()

	if err := e.store.UpdateClassification(ctx, id, status, result); err != nil {
		if e.metrics != nil {
			e.metrics.IncrementPartialFailures()
		}
		e.logger.Error("classification computed but not recorded; record stuck at PROCESSING",
			"request_id", id,
			"computed_status", status,
			"error", err,
		)
		return apperrors.Wrap(err, apperrors.CodePartialFailure,
			"classification computed but not recorded")
	}
	return nil
}

// GetRequest looks up one verification request by id.
func (e *Engine) GetRequest(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := e.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "verification request not found")
		}
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "failed to load verification request")
	}
	return req, nil
}

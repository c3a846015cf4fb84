package verification

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"certiva/internal/extraction"
	"certiva/pkg/apperrors"
)

func newEngineWithMocks(t *testing.T) (*Engine, *MockStore, *MockExtractor) {
	t.Helper()
	ctrl := gomock.NewController(t)
	store := NewMockStore(ctrl)
	extractor := NewMockExtractor(ctrl)
	engine := NewEngine(store, extractor, slog.New(slog.DiscardHandler))
	return engine, store, extractor
}

func TestVerifyHighConfidenceIsVerified(t *testing.T) {
	ctx := context.Background()
	engine, store, extractor := newEngineWithMocks(t)
	requester := uuid.New()

	extractor.EXPECT().Extract(gomock.Any(), "certificates/doc.pdf").Return(&extraction.Result{
		Confidence:       0.97,
		ValidationPassed: true,
		Fields:           map[string]any{"student_name": "Ada Lovelace"},
	}, nil)

	var createdID uuid.UUID
	store.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *Request) error {
			assert.Equal(t, StatusProcessing, req.Status)
			assert.Equal(t, requester, req.RequestedBy)
			assert.InDelta(t, 0.97, req.Result.Confidence, 1e-9)
			createdID = req.ID
			return nil
		})
	store.EXPECT().UpdateClassification(gomock.Any(), gomock.Any(), StatusVerified, gomock.Any()).DoAndReturn(
		func(_ context.Context, id uuid.UUID, _ Status, result ResultPayload) error {
			// The update targets only the record created for this invocation.
			assert.Equal(t, createdID, id)
			assert.Equal(t, ReasonVerified, result.Reason)
			return nil
		})

	req, err := engine.Verify(ctx, Submission{RequestedBy: requester, FileRef: "certificates/doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, req.Status)
	assert.Equal(t, ReasonVerified, req.Result.Reason)
	assert.Equal(t, "Ada Lovelace", req.Result.Fields["student_name"])
}

func TestVerifyMediumConfidenceIsFlaggedDespiteFailedValidation(t *testing.T) {
	ctx := context.Background()
	engine, store, extractor := newEngineWithMocks(t)

	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(&extraction.Result{
		Confidence:       0.80,
		ValidationPassed: false,
	}, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().UpdateClassification(gomock.Any(), gomock.Any(), StatusFlagged, gomock.Any()).Return(nil)

	req, err := engine.Verify(ctx, Submission{RequestedBy: uuid.New(), FileRef: "certificates/doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, StatusFlagged, req.Status)
	assert.Equal(t, ReasonFlagged, req.Result.Reason)
}

func TestVerifyLowConfidenceIsRejected(t *testing.T) {
	ctx := context.Background()
	engine, store, extractor := newEngineWithMocks(t)

	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(&extraction.Result{
		Confidence: 0.40,
	}, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().UpdateClassification(gomock.Any(), gomock.Any(), StatusRejected, gomock.Any()).Return(nil)

	req, err := engine.Verify(ctx, Submission{RequestedBy: uuid.New(), FileRef: "certificates/doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, req.Status)
	assert.Equal(t, ReasonRejected, req.Result.Reason)
}

func TestVerifyExtractionFailureCreatesNothing(t *testing.T) {
	ctx := context.Background()
	engine, _, extractor := newEngineWithMocks(t)

	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(nil,
		apperrors.New(apperrors.CodeUpstream, "extraction service unreachable"))

	_, err := engine.Verify(ctx, Submission{RequestedBy: uuid.New(), FileRef: "certificates/doc.pdf"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstream))
	// No Create or UpdateClassification expectations were set: the oracle is
	// called first and a failed extraction must leave no record behind.
}

func TestVerifyInsertFailureIsStorageError(t *testing.T) {
	ctx := context.Background()
	engine, store, extractor := newEngineWithMocks(t)

	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(&extraction.Result{Confidence: 0.97, ValidationPassed: true}, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

	_, err := engine.Verify(ctx, Submission{RequestedBy: uuid.New(), FileRef: "certificates/doc.pdf"})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStorage))
}

func TestVerifyUpdateFailureIsPartialFailure(t *testing.T) {
	ctx := context.Background()
	engine, store, extractor := newEngineWithMocks(t)

	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(&extraction.Result{Confidence: 0.97, ValidationPassed: true}, nil)
	store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	store.EXPECT().UpdateClassification(gomock.Any(), gomock.Any(), StatusVerified, gomock.Any()).
		Return(errors.New("connection reset"))

	_, err := engine.Verify(ctx, Submission{RequestedBy: uuid.New(), FileRef: "certificates/doc.pdf"})
	require.Error(t, err)
	// Distinguishable from a plain storage error: the record exists and is
	// stuck at PROCESSING.
	assert.True(t, apperrors.HasCode(err, apperrors.CodePartialFailure))
	assert.False(t, apperrors.HasCode(err, apperrors.CodeStorage))
}

func TestVerifyAgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	extractor := NewMockExtractor(ctrl)
	store := NewInMemoryStore()
	engine := NewEngine(store, extractor, slog.New(slog.DiscardHandler))

	extractor.EXPECT().Extract(gomock.Any(), gomock.Any()).Return(&extraction.Result{
		Confidence:       0.96,
		ValidationPassed: true,
	}, nil)

	created, err := engine.Verify(ctx, Submission{RequestedBy: uuid.New(), FileRef: "certificates/doc.pdf"})
	require.NoError(t, err)

	stored, err := engine.GetRequest(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, stored.Status)
	assert.Equal(t, ReasonVerified, stored.Result.Reason)
}

func TestGetRequestNotFound(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	engine := NewEngine(NewInMemoryStore(), NewMockExtractor(ctrl), slog.New(slog.DiscardHandler))

	_, err := engine.GetRequest(ctx, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

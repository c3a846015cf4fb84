package audit

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certiva/internal/platform/middleware"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

func recordedEntries(t *testing.T, store *InMemoryStore, rec *Recorder) []Entry {
	t.Helper()
	rec.Close()
	entries, err := store.List(context.Background(), Filters{})
	require.NoError(t, err)
	return entries
}

func TestMiddlewareRecordsMutations(t *testing.T) {
	store := NewInMemoryStore()
	rec := NewRecorder(store, slog.New(slog.DiscardHandler))

	userID := uuid.New()
	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/certificates", nil)
	req.Header.Set("User-Agent", chromeUA)
	req.RemoteAddr = "203.0.113.9:52110"
	req = req.WithContext(middleware.WithIdentity(req.Context(), middleware.Identity{
		UserID: userID.String(),
		Role:   "institution",
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	entries := recordedEntries(t, store, rec)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "POST /api/certificates", e.Action)
	assert.Equal(t, "certificates", e.TableName)
	require.NotNil(t, e.UserID)
	assert.Equal(t, userID, *e.UserID)
	assert.Equal(t, http.StatusCreated, e.Metadata["status"])
	assert.Equal(t, "203.0.113.9", e.Metadata["ip"])
	assert.Equal(t, "Chrome", e.Metadata["browser"])
	assert.Equal(t, "Windows 10", e.Metadata["os"])
}

func TestMiddlewareSkipsReads(t *testing.T) {
	store := NewInMemoryStore()
	rec := NewRecorder(store, slog.New(slog.DiscardHandler))

	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/certificates", nil))

	assert.Empty(t, recordedEntries(t, store, rec))
}

func TestMiddlewareSkipsFailedRequests(t *testing.T) {
	store := NewInMemoryStore()
	rec := NewRecorder(store, slog.New(slog.DiscardHandler))

	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/verify", nil))

	assert.Empty(t, recordedEntries(t, store, rec))
}

func TestMiddlewareAnonymousMutation(t *testing.T) {
	store := NewInMemoryStore()
	rec := NewRecorder(store, slog.New(slog.DiscardHandler))

	handler := Middleware(rec)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

	entries := recordedEntries(t, store, rec)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].UserID)
	assert.Equal(t, "auth", entries[0].TableName)
}

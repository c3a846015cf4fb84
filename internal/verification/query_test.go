package verification

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certiva/pkg/apperrors"
)

func seedRequest(t *testing.T, store *InMemoryStore, requestedBy uuid.UUID, status Status, createdAt time.Time, number string) Request {
	t.Helper()
	req := Request{
		ID:          uuid.New(),
		RequestedBy: requestedBy,
		Status:      status,
		CreatedAt:   createdAt,
	}
	if number != "" {
		req.Certificate = &CertificateRef{CertificateNumber: number, StudentName: "Student " + number}
	}
	require.NoError(t, store.Create(context.Background(), &req))
	return req
}

func TestListPaginatesWithExactTotal(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	verifier := uuid.New()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 12 {
		seedRequest(t, store, verifier, StatusVerified, base.Add(time.Duration(i)*time.Minute), "")
	}
	// Noise that must not match the status filter.
	seedRequest(t, store, verifier, StatusFlagged, base, "")

	page, err := svc.List(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{
		Statuses: []Status{StatusVerified},
		Page:     2,
		Limit:    5,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.Limit)
	assert.Len(t, page.Rows, 5)
}

func TestListPastTheEndReturnsEmptyRowsSameTotal(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	verifier := uuid.New()

	for i := range 3 {
		seedRequest(t, store, verifier, StatusVerified, time.Now().UTC().Add(time.Duration(i)*time.Second), "")
	}

	page, err := svc.List(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, 3, page.Total)
}

func TestListDefaultsPageAndLimit(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	verifier := uuid.New()

	for i := range 15 {
		seedRequest(t, store, verifier, StatusVerified, time.Now().UTC().Add(time.Duration(i)*time.Second), "")
	}

	page, err := svc.List(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Len(t, page.Rows, 10)
	assert.Equal(t, 15, page.Total)
}

func TestListVerifierSeesOnlyOwnRequests(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	mine := uuid.New()
	other := uuid.New()

	seedRequest(t, store, mine, StatusVerified, time.Now().UTC(), "")
	seedRequest(t, store, other, StatusVerified, time.Now().UTC(), "")

	page, err := svc.List(ctx, Requester{ID: mine, Role: roleVerifier}, Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, mine, page.Rows[0].RequestedBy)

	// Broader roles see the unfiltered set.
	adminPage, err := svc.List(ctx, Requester{ID: uuid.New(), Role: "admin"}, Filters{})
	require.NoError(t, err)
	assert.Equal(t, 2, adminPage.Total)
}

func TestListFiltersByDateAndSearch(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	verifier := uuid.New()

	jan := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	seedRequest(t, store, verifier, StatusVerified, jan, "CERT-100")
	target := seedRequest(t, store, verifier, StatusVerified, feb, "CERT-200")

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	page, err := svc.List(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{DateFrom: &from})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, target.ID, page.Rows[0].ID)

	// Search is a case-insensitive substring match on the certificate number.
	page, err = svc.List(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{Search: "cert-2"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, target.ID, page.Rows[0].ID)
}

func TestListStatusSetMembershipIsOr(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	verifier := uuid.New()

	seedRequest(t, store, verifier, StatusVerified, time.Now().UTC(), "")
	seedRequest(t, store, verifier, StatusFlagged, time.Now().UTC(), "")
	seedRequest(t, store, verifier, StatusRejected, time.Now().UTC(), "")

	page, err := svc.List(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{
		Statuses: []Status{StatusVerified, StatusFlagged},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewQueryService(NewInMemoryStore())

	_, err := svc.List(ctx, Requester{ID: uuid.New(), Role: roleVerifier}, Filters{
		Statuses: []Status{"BOGUS"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestExportIgnoresPaginationAndQuotesFields(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	verifier := uuid.New()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 12 {
		seedRequest(t, store, verifier, StatusVerified, base.Add(time.Duration(i)*time.Minute), "CERT-1")
	}
	withComma := Request{
		ID:          uuid.New(),
		RequestedBy: verifier,
		Status:      StatusFlagged,
		CreatedAt:   base,
		Certificate: &CertificateRef{CertificateNumber: "CERT-2", StudentName: `Lovelace, Ada "Countess"`},
	}
	require.NoError(t, store.Create(ctx, &withComma))

	out, err := svc.Export(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{Page: 2, Limit: 5})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, exportHeader, records[0])
	assert.Len(t, records, 14) // header + all 13 rows, pagination ignored

	var found bool
	for _, record := range records[1:] {
		if record[3] == "CERT-2" {
			found = true
			// Embedded comma and quotes survive a round trip through the encoder.
			assert.Equal(t, `Lovelace, Ada "Countess"`, record[4])
		}
	}
	assert.True(t, found)
}

func TestExportEmptyCertificateRefYieldsEmptyColumns(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	svc := NewQueryService(store)
	verifier := uuid.New()

	seedRequest(t, store, verifier, StatusRejected, time.Now().UTC(), "")

	out, err := svc.Export(ctx, Requester{ID: verifier, Role: roleVerifier}, Filters{})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(out))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "", records[1][3])
	assert.Equal(t, "", records[1][4])
}

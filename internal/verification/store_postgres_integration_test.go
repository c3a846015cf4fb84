//go:build integration

package verification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"certiva/internal/certificate"
	"certiva/internal/verification"
	"certiva/pkg/platform/sentinel"
	"certiva/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *verification.PostgresStore
	certs    *certificate.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = verification.NewPostgresStore(s.postgres.DB)
	s.certs = certificate.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "verification_requests", "certificates")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) newRequest(requestedBy uuid.UUID, status verification.Status, createdAt time.Time) *verification.Request {
	return &verification.Request{
		ID:          uuid.New(),
		RequestedBy: requestedBy,
		Status:      status,
		Result: verification.ResultPayload{
			Confidence:       0.97,
			ValidationPassed: true,
		},
		CreatedAt: createdAt,
	}
}

func (s *PostgresStoreSuite) TestCreateAndGet() {
	ctx := context.Background()
	req := s.newRequest(uuid.New(), verification.StatusProcessing, time.Now().UTC())

	s.Require().NoError(s.store.Create(ctx, req))

	got, err := s.store.GetByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(req.RequestedBy, got.RequestedBy)
	s.Equal(verification.StatusProcessing, got.Status)
	s.InDelta(0.97, got.Result.Confidence, 1e-9)
	s.Nil(got.Certificate)
}

func (s *PostgresStoreSuite) TestGetNotFound() {
	_, err := s.store.GetByID(context.Background(), uuid.New())
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestUpdateClassification() {
	ctx := context.Background()
	req := s.newRequest(uuid.New(), verification.StatusProcessing, time.Now().UTC())
	s.Require().NoError(s.store.Create(ctx, req))

	result := req.Result
	result.Reason = "High confidence and validation passed"
	s.Require().NoError(s.store.UpdateClassification(ctx, req.ID, verification.StatusVerified, result))

	got, err := s.store.GetByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Equal(verification.StatusVerified, got.Status)
	s.Equal("High confidence and validation passed", got.Result.Reason)

	err = s.store.UpdateClassification(ctx, uuid.New(), verification.StatusVerified, result)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *PostgresStoreSuite) TestListJoinsCertificate() {
	ctx := context.Background()
	instID := uuid.New()
	cert := &certificate.Certificate{
		ID:                uuid.New(),
		InstitutionID:     instID,
		CertificateNumber: "CERT-001",
		StudentName:       "Ada Lovelace",
		Status:            certificate.StatusActive,
		CreatedAt:         time.Now().UTC(),
	}
	s.Require().NoError(s.certs.Create(ctx, cert))

	requestedBy := uuid.New()
	req := s.newRequest(requestedBy, verification.StatusVerified, time.Now().UTC())
	req.CertificateID = &cert.ID
	s.Require().NoError(s.store.Create(ctx, req))

	rows, total, err := s.store.List(ctx, verification.ListQuery{RequestedBy: &requestedBy, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(rows, 1)
	s.Require().NotNil(rows[0].Certificate)
	s.Equal("CERT-001", rows[0].Certificate.CertificateNumber)
	s.Equal("Ada Lovelace", rows[0].Certificate.StudentName)
}

func (s *PostgresStoreSuite) TestListFiltersAndPagination() {
	ctx := context.Background()
	requestedBy := uuid.New()
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		status := verification.StatusVerified
		if i%3 == 0 {
			status = verification.StatusFlagged
		}
		s.Require().NoError(s.store.Create(ctx,
			s.newRequest(requestedBy, status, base.Add(time.Duration(i)*time.Hour))))
	}
	// Another requester's record is invisible under narrowing.
	s.Require().NoError(s.store.Create(ctx,
		s.newRequest(uuid.New(), verification.StatusVerified, base)))

	rows, total, err := s.store.List(ctx, verification.ListQuery{
		RequestedBy: &requestedBy,
		Limit:       5,
		Offset:      5,
	})
	s.Require().NoError(err)
	s.Equal(12, total)
	s.Len(rows, 5)
	s.True(rows[0].CreatedAt.After(rows[1].CreatedAt))

	rows, total, err = s.store.List(ctx, verification.ListQuery{
		RequestedBy: &requestedBy,
		Statuses:    []verification.Status{verification.StatusFlagged},
		Limit:       20,
	})
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Len(rows, 4)

	from := base.Add(2 * time.Hour)
	to := base.Add(4 * time.Hour)
	_, total, err = s.store.List(ctx, verification.ListQuery{
		RequestedBy: &requestedBy,
		DateFrom:    &from,
		DateTo:      &to,
		Limit:       20,
	})
	s.Require().NoError(err)
	s.Equal(3, total)
}

func (s *PostgresStoreSuite) TestCountForRequester() {
	ctx := context.Background()
	requestedBy := uuid.New()
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Create(ctx, s.newRequest(requestedBy, verification.StatusVerified, base)))
	s.Require().NoError(s.store.Create(ctx, s.newRequest(requestedBy, verification.StatusVerified, base.AddDate(0, 1, 0))))
	s.Require().NoError(s.store.Create(ctx, s.newRequest(requestedBy, verification.StatusFlagged, base)))

	total, err := s.store.CountForRequester(ctx, requestedBy, "", nil)
	s.Require().NoError(err)
	s.Equal(3, total)

	verified, err := s.store.CountForRequester(ctx, requestedBy, verification.StatusVerified, nil)
	s.Require().NoError(err)
	s.Equal(2, verified)

	since := base.AddDate(0, 0, 15)
	recent, err := s.store.CountForRequester(ctx, requestedBy, verification.StatusVerified, &since)
	s.Require().NoError(err)
	s.Equal(1, recent)
}

func (s *PostgresStoreSuite) TestListRecent() {
	ctx := context.Background()
	requestedBy := uuid.New()
	base := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		s.Require().NoError(s.store.Create(ctx,
			s.newRequest(requestedBy, verification.StatusVerified, base.Add(time.Duration(i)*time.Hour))))
	}

	rows, err := s.store.ListRecent(ctx, requestedBy, 3)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.True(rows[0].CreatedAt.After(rows[1].CreatedAt))
	s.True(rows[1].CreatedAt.After(rows[2].CreatedAt))
}

package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"certiva/internal/verification"
	"certiva/pkg/apperrors"
)

const recentActivityLimit = 10

// Stats summarizes a verifier's request history.
type Stats struct {
	TotalRequests   int     `json:"total_requests"`
	TotalVerified   int     `json:"total_verified"`
	MonthlyVerified int     `json:"monthly_verified"`
	Flagged         int     `json:"flagged"`
	SuccessRate     float64 `json:"success_rate"`
}

// Service computes per-verifier dashboard figures from the verification
// request store.
type Service struct {
	store  verification.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(store verification.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Stats gathers the four counters concurrently; the month window starts at
// the first instant of the current UTC month.
func (s *Service) Stats(ctx context.Context, requestedBy uuid.UUID) (*Stats, error) {
	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var stats Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.CountForRequester(ctx, requestedBy, "", nil)
		stats.TotalRequests = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountForRequester(ctx, requestedBy, verification.StatusVerified, nil)
		stats.TotalVerified = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountForRequester(ctx, requestedBy, verification.StatusVerified, &monthStart)
		stats.MonthlyVerified = n
		return err
	})
	g.Go(func() error {
		n, err := s.store.CountForRequester(ctx, requestedBy, verification.StatusFlagged, nil)
		stats.Flagged = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "gather dashboard stats")
	}

	if stats.TotalRequests > 0 {
		stats.SuccessRate = float64(stats.TotalVerified) / float64(stats.TotalRequests)
	}
	return &stats, nil
}

// RecentActivity returns the requester's newest requests.
func (s *Service) RecentActivity(ctx context.Context, requestedBy uuid.UUID) ([]verification.Request, error) {
	rows, err := s.store.ListRecent(ctx, requestedBy, recentActivityLimit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeStorage, "list recent activity")
	}
	if rows == nil {
		rows = []verification.Request{}
	}
	return rows, nil
}

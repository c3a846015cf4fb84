//go:build integration

package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"certiva/internal/ratelimit"
	"certiva/pkg/testutil/containers"
)

type RedisLimiterSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	limiter *ratelimit.RedisLimiter
}

func TestRedisLimiterSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLimiterSuite))
}

func (s *RedisLimiterSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.limiter = ratelimit.NewRedisLimiter(s.redis.Client)
}

func (s *RedisLimiterSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLimiterSuite) TestAllowCountsDownAndBlocksAtLimit() {
	ctx := context.Background()
	const limit = 3

	for i := 0; i < limit; i++ {
		decision, err := s.limiter.Allow(ctx, "client-a", limit, time.Minute)
		s.Require().NoError(err)
		s.True(decision.Allowed)
		s.Equal(limit-i-1, decision.Remaining)
	}

	decision, err := s.limiter.Allow(ctx, "client-a", limit, time.Minute)
	s.Require().NoError(err)
	s.False(decision.Allowed)
	s.Equal(0, decision.Remaining)
	s.True(decision.ResetAt.After(time.Now()))
}

func (s *RedisLimiterSuite) TestKeysAreIndependent() {
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.limiter.Allow(ctx, "client-a", 2, time.Minute)
		s.Require().NoError(err)
	}
	blocked, err := s.limiter.Allow(ctx, "client-a", 2, time.Minute)
	s.Require().NoError(err)
	s.False(blocked.Allowed)

	fresh, err := s.limiter.Allow(ctx, "client-b", 2, time.Minute)
	s.Require().NoError(err)
	s.True(fresh.Allowed)
	s.Equal(1, fresh.Remaining)
}

func (s *RedisLimiterSuite) TestWindowExpiryResetsCounter() {
	ctx := context.Background()

	blockedAfter, err := s.limiter.Allow(ctx, "client-c", 1, 300*time.Millisecond)
	s.Require().NoError(err)
	s.True(blockedAfter.Allowed)

	decision, err := s.limiter.Allow(ctx, "client-c", 1, 300*time.Millisecond)
	s.Require().NoError(err)
	s.False(decision.Allowed)

	time.Sleep(400 * time.Millisecond)

	decision, err = s.limiter.Allow(ctx, "client-c", 1, 300*time.Millisecond)
	s.Require().NoError(err)
	s.True(decision.Allowed)
}

//go:build integration

package progress_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	platformredis "agrilink/internal/platform/redis"
	"agrilink/internal/verification/progress"
	id "agrilink/pkg/domain"
	"agrilink/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *progress.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	client, err := platformredis.New(s.redis.URL)
	s.Require().NoError(err)
	s.cache = progress.NewRedisCache(client)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestMissThenHit() {
	ctx := context.Background()
	key := id.NewSubjectID().String()

	_, ok, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Set(ctx, key, 75))

	pct, ok, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(75, pct)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	key := id.NewSubjectID().String()

	s.Require().NoError(s.cache.Set(ctx, key, 50))
	s.Require().NoError(s.cache.Invalidate(ctx, key))

	_, ok, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.False(ok)

	// Invalidating an absent key is not an error.
	s.Require().NoError(s.cache.Invalidate(ctx, key))
}

func (s *RedisCacheSuite) TestZeroIsACachedValue() {
	ctx := context.Background()
	key := id.NewSubjectID().String()

	s.Require().NoError(s.cache.Set(ctx, key, 0))

	pct, ok, err := s.cache.Get(ctx, key)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(0, pct)
}

func (s *RedisCacheSuite) TestKeysAreIsolatedPerSubject() {
	ctx := context.Background()
	first := id.NewSubjectID().String()
	second := id.NewSubjectID().String()

	s.Require().NoError(s.cache.Set(ctx, first, 25))
	s.Require().NoError(s.cache.Set(ctx, second, 100))
	s.Require().NoError(s.cache.Invalidate(ctx, first))

	pct, ok, err := s.cache.Get(ctx, second)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(100, pct)
}

package navigation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inserview.studio/web/internal/routing"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func newMiniRedisRepository(t *testing.T) *RedisRepository {
	t.Helper()
	_, client := newMiniRedis(t)
	return NewRedisRepositoryWithClient(client, time.Minute)
}

func TestRedisRepositoryUnknownVisitor(t *testing.T) {
	repo := newMiniRedisRepository(t)
	loc, err := repo.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, loc.IsZero())
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	mr, client := newMiniRedis(t)
	repo := NewRedisRepositoryWithClient(client, 10*time.Minute)
	ctx := context.Background()

	want := Location{
		Path:          "/project/job-clipper/support",
		Page:          routing.PageProject,
		Params:        routing.Params{routing.ParamProjectID: "job-clipper", routing.ParamTab: "support"},
		PendingAnchor: "faq",
	}
	require.NoError(t, repo.Save(ctx, "v", want))

	got, err := repo.Load(ctx, "v")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.True(t, mr.Exists("nav:loc:v"))
	assert.Equal(t, 10*time.Minute, mr.TTL("nav:loc:v"))
}

func TestRedisRepositoryExpires(t *testing.T) {
	mr, client := newMiniRedis(t)
	repo := NewRedisRepositoryWithClient(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "v", Location{Path: "/terms", Page: routing.PageTerms}))
	mr.FastForward(2 * time.Minute)

	loc, err := repo.Load(ctx, "v")
	require.NoError(t, err)
	assert.True(t, loc.IsZero())
}

func TestRedisRepositoryDefaultTTL(t *testing.T) {
	mr, client := newMiniRedis(t)
	repo := NewRedisRepositoryWithClient(client, 0)

	require.NoError(t, repo.Save(context.Background(), "v", Location{Path: "/", Page: routing.PageHome}))
	assert.Equal(t, defaultLocationTTL, mr.TTL("nav:loc:v"))
}

func TestRedisRepositoryCorruptEntryIsFreshVisitor(t *testing.T) {
	mr, client := newMiniRedis(t)
	repo := NewRedisRepositoryWithClient(client, time.Minute)
	require.NoError(t, mr.Set("nav:loc:v", "{not json"))

	loc, err := repo.Load(context.Background(), "v")
	require.NoError(t, err)
	assert.True(t, loc.IsZero())
}

func TestRedisRepositoryReportsConnectionErrors(t *testing.T) {
	mr, client := newMiniRedis(t)
	repo := NewRedisRepositoryWithClient(client, time.Minute)
	mr.Close()

	_, err := repo.Load(context.Background(), "v")
	assert.Error(t, err)
	assert.Error(t, repo.Save(context.Background(), "v", Location{Path: "/"}))
}

func TestNewRedisRepositoryFromURL(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	repo, err := NewRedisRepository(ctx, "redis://"+mr.Addr()+"/0", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.Save(ctx, "v", Location{Path: "/privacy", Page: routing.PagePrivacy}))
	assert.True(t, mr.Exists("nav:loc:v"))

	_, err = NewRedisRepository(ctx, "not-a-url", time.Minute)
	assert.ErrorContains(t, err, "parse redis url")
}

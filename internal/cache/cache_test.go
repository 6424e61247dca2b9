package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/buscajob/buscajob/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() Result {
	return Result{
		Timestamp: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Criteria:  model.SearchCriteria{Role: "Desenvolvedor", Sites: []string{"indeed"}},
		Postings: []model.JobPosting{{
			Title:      "Desenvolvedor Go",
			Company:    "Acme",
			SourceSite: "Indeed",
			URL:        model.StringPtr("https://br.indeed.com/vaga/1"),
		}},
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(0)

	_, err := m.Latest(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, m.Put(ctx, sampleResult()))
	got, err := m.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleResult(), got)

	next := sampleResult()
	next.Criteria.Role = "Analista"
	require.NoError(t, m.Put(ctx, next))
	got, err = m.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Analista", got.Criteria.Role)
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Hour)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Put(ctx, sampleResult()))
	now = now.Add(59 * time.Minute)
	_, err := m.Latest(ctx)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Latest(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := NewRedisStore(context.Background(), "redis://"+mr.Addr(), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, 0)

	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, s.Put(ctx, sampleResult()))
	assert.True(t, mr.Exists(latestKey))

	got, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.True(t, sampleResult().Timestamp.Equal(got.Timestamp))
	assert.Equal(t, sampleResult().Postings, got.Postings)
	assert.Equal(t, "Desenvolvedor", got.Criteria.Role)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, 10*time.Minute)

	require.NoError(t, s.Put(ctx, sampleResult()))
	assert.Equal(t, 10*time.Minute, mr.TTL(latestKey))

	mr.FastForward(11 * time.Minute)
	_, err := s.Latest(ctx)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestRedisStore_CorruptValue(t *testing.T) {
	ctx := context.Background()
	s, mr := newTestRedis(t, 0)

	require.NoError(t, mr.Set(latestKey, "not json"))
	_, err := s.Latest(ctx)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrNotFound)
}

func TestNewRedisStore_Errors(t *testing.T) {
	_, err := NewRedisStore(context.Background(), "://bad", 0)
	assert.Error(t, err)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisStore(context.Background(), "redis://"+addr, 0)
	assert.Error(t, err)
}

package store

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

func newRedisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	backend, err := OpenRedisBackend(context.Background(), "redis://"+mr.Addr(), "hide_high_scores")
	require.NoError(t, err)

	s := New(backend, WithLogger(quietLogger()))
	t.Cleanup(func() { s.Close() })

	return s, mr
}

func TestRedisStoreSeedsUnderScopeKey(t *testing.T) {
	s, mr := newRedisStore(t)

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.Defaults(), list)

	raw, err := mr.Get("hide_high_scores_1_1")
	require.NoError(t, err)
	assert.Contains(t, raw, `"name":"Emily"`)
}

func TestRedisStoreUpdate(t *testing.T) {
	s, _ := newRedisStore(t)

	_, err := s.Update(context.Background(), scope, func(current scores.List) (scores.List, error) {
		next, _, err := scores.Merge(current, scores.Record{Name: "Zoe", Score: 10000}, scores.DefaultMaxEntries)
		return next, err
	})
	require.NoError(t, err)

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, "Zoe", list[0].Name)
	assert.Len(t, list, scores.DefaultMaxEntries)
}

func TestRedisStoreCorruptValue(t *testing.T) {
	s, mr := newRedisStore(t)
	require.NoError(t, mr.Set("hide_high_scores_1_1", "garbage"))

	_, err := s.Load(context.Background(), scope)
	assert.ErrorIs(t, err, scores.ErrStorage)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := New(NewRedisBackend(rdb, "hs"), WithLogger(quietLogger()))
	defer s.Close()

	mr.Close()

	_, err = s.Load(context.Background(), scope)
	assert.ErrorIs(t, err, scores.ErrStorage)
}

func TestOpenRedisBackendRejectsBadURL(t *testing.T) {
	_, err := OpenRedisBackend(context.Background(), "http://localhost", "hs")
	assert.Error(t, err)
}

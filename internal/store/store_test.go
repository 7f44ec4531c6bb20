package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/hiscore/internal/scores"
)

// memBackend is an in-memory Backend whose writes can be made to fail.
type memBackend struct {
	mu         sync.Mutex
	data       map[scores.ScopeKey][]byte
	failWrites bool
	writes     int
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[scores.ScopeKey][]byte)}
}

func (b *memBackend) Read(_ context.Context, key scores.ScopeKey) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.data[key]
	if !ok {
		return nil, ErrNotExist
	}

	return data, nil
}

func (b *memBackend) Write(_ context.Context, key scores.ScopeKey, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failWrites {
		return errors.New("disk full")
	}

	b.writes++
	b.data[key] = data
	return nil
}

func (b *memBackend) Close() error {
	return nil
}

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

var scope = scores.ScopeKey{Version: "1", Level: "1"}

func TestLoadSeedsDefaultsOnce(t *testing.T) {
	backend := newMemBackend()
	log, hook := test.NewNullLogger()
	s := New(backend, WithLogger(log))

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.Defaults(), list)
	assert.Equal(t, 1, backend.writes)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "1", hook.LastEntry().Data["version"])

	list, err = s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.Defaults(), list)
	assert.Equal(t, 1, backend.writes, "existing scope must not be rewritten")
}

func TestLoadReturnsStoredContentVerbatim(t *testing.T) {
	backend := newMemBackend()
	backend.data[scope] = []byte(`[{"name":"low","score":1},{"name":"high","score":99}]`)
	s := New(backend, WithLogger(quietLogger()))

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.List{{Name: "low", Score: 1}, {Name: "high", Score: 99}}, list)
}

func TestLoadCorruptRecordIsStorageError(t *testing.T) {
	for _, content := range []string{
		`{"name":"x"}`, `[{"name":`, ``, `null`,
		`[null]`, `[{"name":"x"}]`, `[{"score":1}]`, `[{"name":7,"score":1}]`, `[{"name":"x","score":"1"}]`,
	} {
		t.Run(content, func(t *testing.T) {
			backend := newMemBackend()
			backend.data[scope] = []byte(content)
			s := New(backend, WithLogger(quietLogger()))

			_, err := s.Load(context.Background(), scope)
			assert.ErrorIs(t, err, scores.ErrStorage)
			assert.Equal(t, content, string(backend.data[scope]), "corrupt record must not be reset")
			assert.Zero(t, backend.writes)
		})
	}
}

func TestLoadExisting(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, WithLogger(quietLogger()))

	_, err := s.LoadExisting(context.Background(), scope)
	assert.ErrorIs(t, err, scores.ErrNotFound)
	assert.Zero(t, backend.writes)

	_, err = s.Load(context.Background(), scope)
	require.NoError(t, err)

	list, err := s.LoadExisting(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.Defaults(), list)
}

func TestInvalidKeyIsRejectedBeforeIO(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, WithLogger(quietLogger()))
	bad := scores.ScopeKey{Version: "../x", Level: "1"}

	_, err := s.Load(context.Background(), bad)
	assert.ErrorIs(t, err, scores.ErrInvalidArgument)

	err = s.Save(context.Background(), bad, scores.Defaults())
	assert.ErrorIs(t, err, scores.ErrInvalidArgument)

	_, err = s.Update(context.Background(), bad, func(l scores.List) (scores.List, error) { return l, nil })
	assert.ErrorIs(t, err, scores.ErrInvalidArgument)

	assert.Zero(t, backend.writes)
}

func TestSaveFailureKeepsPriorRecord(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, WithLogger(quietLogger()))

	_, err := s.Load(context.Background(), scope)
	require.NoError(t, err)

	backend.failWrites = true
	err = s.Save(context.Background(), scope, scores.List{{Name: "x", Score: 1}})
	assert.ErrorIs(t, err, scores.ErrStorage)

	backend.failWrites = false
	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, scores.Defaults(), list)
}

func TestUpdateFailureWritesNothing(t *testing.T) {
	backend := newMemBackend()
	s := New(backend, WithLogger(quietLogger()))

	_, err := s.Load(context.Background(), scope)
	require.NoError(t, err)

	_, err = s.Update(context.Background(), scope, func(scores.List) (scores.List, error) {
		return nil, fmt.Errorf("%w: nope", scores.ErrInvalidArgument)
	})
	assert.ErrorIs(t, err, scores.ErrInvalidArgument)
	assert.Equal(t, 1, backend.writes)
}

func TestUpdateSeedsUnseenScope(t *testing.T) {
	s := New(newMemBackend(), WithLogger(quietLogger()))

	var kept bool
	updated, err := s.Update(context.Background(), scope, func(current scores.List) (scores.List, error) {
		assert.Equal(t, scores.Defaults(), current)

		next, ok, err := scores.Merge(current, scores.Record{Name: "Zoe", Score: 10000}, scores.DefaultMaxEntries)
		kept = ok
		return next, err
	})
	require.NoError(t, err)

	assert.True(t, kept)
	assert.Equal(t, scores.Record{Name: "Zoe", Score: 10000}, updated[0])
}

func TestUpdateHasNoLostUpdates(t *testing.T) {
	s := New(newMemBackend(), WithLogger(quietLogger()))
	require.NoError(t, s.Save(context.Background(), scope, scores.List{{Name: "counter", Score: 0}}))

	const writers = 200
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(context.Background(), scope, func(current scores.List) (scores.List, error) {
				current[0].Score++
				return current, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	assert.Equal(t, float64(writers), list[0].Score)
}

func TestConcurrentQualifyingSubmissionsAllSurvive(t *testing.T) {
	s := New(newMemBackend(), WithLogger(quietLogger()))

	var wg sync.WaitGroup
	for i := 1; i <= scores.DefaultMaxEntries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := scores.Record{Name: fmt.Sprintf("player%d", i), Score: float64(10000 + i)}
			_, err := s.Update(context.Background(), scope, func(current scores.List) (scores.List, error) {
				next, _, err := scores.Merge(current, rec, scores.DefaultMaxEntries)
				return next, err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := s.Load(context.Background(), scope)
	require.NoError(t, err)
	require.Len(t, list, scores.DefaultMaxEntries)
	for i := 1; i <= scores.DefaultMaxEntries; i++ {
		assert.True(t, list.Contains(scores.Record{Name: fmt.Sprintf("player%d", i), Score: float64(10000 + i)}))
	}
}

func TestScopesAreIsolated(t *testing.T) {
	s := New(newMemBackend(), WithLogger(quietLogger()))
	other := []scores.ScopeKey{{Version: "1", Level: "2"}, {Version: "2", Level: "1"}}

	_, err := s.Update(context.Background(), scope, func(current scores.List) (scores.List, error) {
		next, _, err := scores.Merge(current, scores.Record{Name: "Zoe", Score: 10000}, scores.DefaultMaxEntries)
		return next, err
	})
	require.NoError(t, err)

	for _, key := range other {
		list, err := s.Load(context.Background(), key)
		require.NoError(t, err)
		assert.Equal(t, scores.Defaults(), list, key.String())
	}
}

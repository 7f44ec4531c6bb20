package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/hiscore/internal/scores"
	"github.com/st3v3nmw/hiscore/internal/server"
	"github.com/st3v3nmw/hiscore/internal/store"
)

func newServer(t *testing.T) *Client {
	t.Helper()

	log, _ := test.NewNullLogger()
	st := store.New(store.NewFileBackend(filepath.Join(t.TempDir(), "scores")), store.WithLogger(log))
	srv := httptest.NewServer(server.New(st, server.Options{}, log, nil).Handler())
	t.Cleanup(srv.Close)

	return New(srv.URL)
}

func TestGetAndSubmit(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	list, err := c.Get(ctx, "1", "1")
	require.NoError(t, err)
	assert.Equal(t, scores.Defaults(), list)

	kept, err := c.Submit(ctx, "1", "1", scores.Record{Name: "Zoe", Score: 10000.5})
	require.NoError(t, err)
	assert.True(t, kept)

	kept, err = c.Submit(ctx, "1", "1", scores.Record{Name: "Bob", Score: 1})
	require.NoError(t, err)
	assert.False(t, kept)

	list, err = c.Get(ctx, "1", "1")
	require.NoError(t, err)
	assert.Equal(t, scores.Record{Name: "Zoe", Score: 10000.5}, list[0])
	assert.Len(t, list, scores.DefaultMaxEntries)
}

func TestStatusError(t *testing.T) {
	c := newServer(t)

	_, err := c.Get(context.Background(), "", "1")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Status)
	assert.Contains(t, statusErr.Message, "version")
}

func TestUnexpectedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)

	_, err := c.Get(context.Background(), "1", "1")
	assert.Error(t, err)

	_, err = c.Submit(context.Background(), "1", "1", scores.Record{Name: "x", Score: 1})
	assert.Error(t, err)
}

func TestNewAddsScheme(t *testing.T) {
	assert.Equal(t, "http://127.0.0.1:5000", New("127.0.0.1:5000").baseURL)
	assert.Equal(t, "https://scores.example", New("https://scores.example/").baseURL)
}

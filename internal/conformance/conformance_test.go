package conformance

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/st3v3nmw/hiscore/internal/attest"
	"github.com/st3v3nmw/hiscore/internal/registry"
	srv "github.com/st3v3nmw/hiscore/internal/server"
	"github.com/st3v3nmw/hiscore/internal/store"
)

func runAgainstServer(t *testing.T, opts srv.Options, suite *attest.Suite) (bool, string) {
	t.Helper()

	log, _ := test.NewNullLogger()
	base := filepath.Join(t.TempDir(), "hide_high_scores")
	st := store.New(store.NewFileBackend(base), store.WithLogger(log))

	ts := httptest.NewServer(srv.New(st, opts, log, nil).Handler())
	defer ts.Close()

	var out bytes.Buffer
	passed := suite.
		WithConfig(&attest.Config{
			Attach:              strings.TrimPrefix(ts.URL, "http://"),
			WorkingDir:          t.TempDir(),
			Output:              &out,
			DefaultRetryTimeout: time.Second,
			RetryPollInterval:   20 * time.Millisecond,
		}).
		Run(context.Background())

	return passed, out.String()
}

func TestStagesPassAgainstServer(t *testing.T) {
	tests := []struct {
		name  string
		opts  srv.Options
		suite func() *attest.Suite
	}{
		{name: "HTTP API", suite: HTTPAPI},
		{name: "Isolation", suite: Isolation},
		{name: "Concurrency", suite: Concurrency},
		{name: "Strict Reads", opts: srv.Options{Strict: true}, suite: StrictReads},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passed, out := runAgainstServer(t, tt.opts, tt.suite())
			assert.True(t, passed, out)
		})
	}
}

func TestStrictReadsFailAgainstLenientServer(t *testing.T) {
	passed, out := runAgainstServer(t, srv.Options{}, StrictReads())

	assert.False(t, passed)
	assert.Contains(t, out, "Unseen Scope")
}

func TestChecklistsAreRegistered(t *testing.T) {
	checklist, err := registry.GetChecklist("hiscore")
	require.NoError(t, err)
	assert.Equal(t, []string{"http-api", "isolation", "persistence", "crash-recovery", "concurrency"}, checklist.StageOrder)

	strict, err := registry.GetChecklist("strict")
	require.NoError(t, err)
	assert.Equal(t, []string{"--strict"}, strict.ServerArgs)
}

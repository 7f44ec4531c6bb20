package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/st3v3nmw/hiscore/internal/scores"
	"github.com/st3v3nmw/hiscore/internal/store"
)

const (
	routeGet    = "/get"
	routeSubmit = "/submit"

	shutdownTimeout = 5 * time.Second
)

// Options tunes request handling.
type Options struct {
	// MaxEntries is the length cap applied on every submission.
	MaxEntries int
	// MaxNameLength bounds submitted player names, in runes.
	MaxNameLength int
	// Strict makes GET on an unseen scope return 404 instead of seeding it.
	Strict bool
}

// Server serves the score API on top of a Store.
type Server struct {
	store   *store.Store
	opts    Options
	log     logrus.FieldLogger
	metrics *Metrics
}

// New creates a Server. Zero options take their defaults and a nil metrics
// value gets a fresh, unexported registry.
func New(st *store.Store, opts Options, log logrus.FieldLogger, metrics *Metrics) *Server {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = scores.DefaultMaxEntries
	}

	if opts.MaxNameLength <= 0 {
		opts.MaxNameLength = scores.DefaultMaxNameLength
	}

	if metrics == nil {
		metrics = NewMetrics()
	}

	return &Server{store: st, opts: opts, log: log, metrics: metrics}
}

// Handler returns the public API: GET /get and POST /submit.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc(routeGet, s.handleGet).Methods(http.MethodGet)
	router.HandleFunc(routeSubmit, s.handleSubmit).Methods(http.MethodPost)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such endpoint")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	})

	return s.observe(router)
}

// Run serves the API on addr, and metrics on metricsAddr when it is set,
// until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr, metricsAddr string) error {
	servers := []*http.Server{{Addr: addr, Handler: s.Handler()}}
	if metricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", s.metrics.Handler())
		servers = append(servers, &http.Server{Addr: metricsAddr, Handler: metricsMux})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		ln, err := net.Listen("tcp", srv.Addr)
		if err != nil {
			shutdown(servers)
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}

		s.log.WithField("addr", ln.Addr().String()).Info("listening")
		go func(srv *http.Server, ln net.Listener) {
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}(srv, ln)
	}

	select {
	case <-ctx.Done():
		s.log.Info("shutting down")
		shutdown(servers)
		return nil
	case err := <-errCh:
		shutdown(servers)
		return err
	}
}

func shutdown(servers []*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for _, srv := range servers {
		_ = srv.Shutdown(ctx)
	}
}

type successEntry struct {
	Success bool `json:"success"`
}

type newHighScoreEntry struct {
	NewHighScore bool `json:"new_high_score"`
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	version, level := q.Get("version"), q.Get("level")

	key, err := scores.NewScopeKey(version, level)
	if err != nil {
		s.fail(w, r, version, level, "load", err)
		return
	}

	var list scores.List
	if s.opts.Strict {
		list, err = s.store.LoadExisting(r.Context(), key)
	} else {
		list, err = s.store.Load(r.Context(), key)
	}
	if err != nil {
		s.fail(w, r, version, level, "load", err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	version, level := q.Get("version"), q.Get("level")

	// Everything is validated before the store is touched.
	key, err := scores.NewScopeKey(version, level)
	if err != nil {
		s.fail(w, r, version, level, "save", err)
		return
	}

	candidate, err := scores.NewRecord(q.Get("name"), q.Get("score"), s.opts.MaxNameLength)
	if err != nil {
		s.fail(w, r, version, level, "save", err)
		return
	}

	var kept bool
	_, err = s.store.Update(r.Context(), key, func(current scores.List) (scores.List, error) {
		updated, ok, err := scores.Merge(current, candidate, s.opts.MaxEntries)
		kept = ok
		return updated, err
	})
	if err != nil {
		s.fail(w, r, version, level, "save", err)
		return
	}

	s.metrics.recordSubmission(kept)
	s.requestLogger(r).WithFields(logrus.Fields{
		"version":        version,
		"level":          level,
		"name":           candidate.Name,
		"score":          candidate.Score,
		"new_high_score": kept,
	}).Debug("score submitted")

	writeJSON(w, http.StatusOK, []any{
		successEntry{Success: true},
		newHighScoreEntry{NewHighScore: kept},
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/st3v3nmw/hiscore/internal/scores"
	"github.com/st3v3nmw/hiscore/pkg/threadsafe"
)

// ErrNotExist is returned by a Backend when no record exists for a key.
var ErrNotExist = errors.New("record does not exist")

// Backend is the durable medium behind a Store. Implementations must make
// Write atomic: a concurrent Read sees either the old or the new bytes.
type Backend interface {
	// Read returns the serialized list for key or ErrNotExist.
	Read(ctx context.Context, key scores.ScopeKey) ([]byte, error)
	// Write replaces the serialized list for key.
	Write(ctx context.Context, key scores.ScopeKey, data []byte) error
	// Close releases the backend's resources.
	Close() error
}

// UpdateFunc computes the list to store from the current one.
type UpdateFunc func(current scores.List) (scores.List, error)

// Store owns the mapping from scope keys to persisted score lists.
// Every operation on a key holds that key's lock, so a load-modify-save
// cycle run through Update is atomic with respect to other callers.
type Store struct {
	backend Backend
	locks   *threadsafe.Map[scores.ScopeKey, *sync.Mutex]
	log     logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates a Store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		locks:   threadsafe.NewMap[scores.ScopeKey, *sync.Mutex](),
		log:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load returns the list for key, seeding and persisting the defaults if the
// scope has never been seen.
func (s *Store) Load(ctx context.Context, key scores.ScopeKey) (scores.List, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	unlock := s.lock(key)
	defer unlock()

	return s.loadOrCreate(ctx, key)
}

// LoadExisting returns the list for key or scores.ErrNotFound. It never seeds.
func (s *Store) LoadExisting(ctx context.Context, key scores.ScopeKey) (scores.List, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	unlock := s.lock(key)
	defer unlock()

	list, err := s.read(ctx, key)
	if errors.Is(err, ErrNotExist) {
		return nil, fmt.Errorf("%w: no scores for %s", scores.ErrNotFound, key)
	}

	return list, err
}

// Save replaces the stored list for key.
func (s *Store) Save(ctx context.Context, key scores.ScopeKey, list scores.List) error {
	if err := key.Validate(); err != nil {
		return err
	}

	unlock := s.lock(key)
	defer unlock()

	return s.write(ctx, key, list)
}

// Update loads the list for key (seeding it if needed), applies fn and saves
// the result, all under the key's lock. If fn fails nothing is written.
func (s *Store) Update(ctx context.Context, key scores.ScopeKey, fn UpdateFunc) (scores.List, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	unlock := s.lock(key)
	defer unlock()

	current, err := s.loadOrCreate(ctx, key)
	if err != nil {
		return nil, err
	}

	updated, err := fn(current.Clone())
	if err != nil {
		return nil, err
	}

	if err := s.write(ctx, key, updated); err != nil {
		return nil, err
	}

	return updated, nil
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) lock(key scores.ScopeKey) func() {
	mu := s.locks.GetOrSet(key, func() *sync.Mutex {
		return &sync.Mutex{}
	})

	mu.Lock()
	return mu.Unlock
}

// loadOrCreate must be called with the key's lock held.
func (s *Store) loadOrCreate(ctx context.Context, key scores.ScopeKey) (scores.List, error) {
	list, err := s.read(ctx, key)
	if err == nil {
		return list, nil
	}

	if !errors.Is(err, ErrNotExist) {
		return nil, err
	}

	defaults := scores.Defaults()
	if err := s.write(ctx, key, defaults); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"version": key.Version,
		"level":   key.Level,
	}).Info("seeded new scope with default scores")

	return defaults, nil
}

func (s *Store) read(ctx context.Context, key scores.ScopeKey) (scores.List, error) {
	data, err := s.backend.Read(ctx, key)
	if errors.Is(err, ErrNotExist) {
		return nil, err
	}

	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", scores.ErrStorage, key, err)
	}

	list, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", scores.ErrStorage, key, err)
	}

	return list, nil
}

func (s *Store) write(ctx context.Context, key scores.ScopeKey, list scores.List) error {
	data, err := encode(list)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", scores.ErrStorage, key, err)
	}

	if err := s.backend.Write(ctx, key, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", scores.ErrStorage, key, err)
	}

	return nil
}

func encode(list scores.List) ([]byte, error) {
	if list == nil {
		list = scores.List{}
	}

	return json.Marshal(list)
}

// decode accepts only a JSON array of records. Anything else is corruption
// and must not be mistaken for an absent scope.
func decode(data []byte) (scores.List, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("content is not a JSON array")
	}

	var list scores.List
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, err
	}

	// Unmarshal zero-fills null elements and missing fields.
	for i, elem := range gjson.ParseBytes(trimmed).Array() {
		if !elem.IsObject() || elem.Get("name").Type != gjson.String || elem.Get("score").Type != gjson.Number {
			return nil, fmt.Errorf("element %d is not a {name, score} object", i)
		}
	}

	return list, nil
}

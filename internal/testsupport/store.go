package testsupport

import (
	"context"
	"errors"
	"sync"
	"testing"

	"rigconvert/internal/asset"
	"rigconvert/internal/assetstore"
	"rigconvert/internal/config"
)

// MustOpenStore opens an assetstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *assetstore.Store {
	t.Helper()

	store, err := assetstore.Open(cfg)
	if err != nil {
		t.Fatalf("assetstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustSave persists a fixture asset and returns its id.
func MustSave(t testing.TB, store asset.Store, a asset.Asset, path string) asset.ID {
	t.Helper()

	id, err := store.Save(context.Background(), a, path)
	if err != nil {
		t.Fatalf("save %s: %v", path, err)
	}
	return id
}

// MustLoad loads a typed asset or fails the test.
func MustLoad[T asset.Asset](t testing.TB, store asset.Store, id asset.ID) T {
	t.Helper()

	a, err := asset.Load[T](context.Background(), store, id)
	if err != nil {
		t.Fatalf("load %s: %v", id, err)
	}
	return a
}

// ErrInjected is returned by CountingStore when FailOn matches.
var ErrInjected = errors.New("injected store failure")

// CountingStore wraps a Backend and counts saves per kind. FailOn, when set,
// makes Save fail for matching assets.
type CountingStore struct {
	assetstore.Backend

	FailOn func(a asset.Asset) bool

	mu    sync.Mutex
	saves map[asset.Kind]int
}

// NewCountingStore wraps backend.
func NewCountingStore(backend assetstore.Backend) *CountingStore {
	return &CountingStore{Backend: backend, saves: make(map[asset.Kind]int)}
}

// Save counts and forwards.
func (s *CountingStore) Save(ctx context.Context, a asset.Asset, path string) (asset.ID, error) {
	if s.FailOn != nil && s.FailOn(a) {
		return "", ErrInjected
	}
	id, err := s.Backend.Save(ctx, a, path)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.saves[a.Kind()]++
	s.mu.Unlock()
	return id, nil
}

// Saves returns the number of successful saves for kind.
func (s *CountingStore) Saves(kind asset.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[kind]
}

// TotalSaves returns the number of successful saves across kinds.
func (s *CountingStore) TotalSaves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.saves {
		total += n
	}
	return total
}

// Reset clears the counters.
func (s *CountingStore) Reset() {
	s.mu.Lock()
	s.saves = make(map[asset.Kind]int)
	s.mu.Unlock()
}

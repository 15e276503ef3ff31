// Package store provides the identity-keyed caches the layout engine runs on.
//
// Two stores back every grid: a measurement store (item → height) and a
// position store (item → rectangle). Both are plain keyed maps with the
// operations Has, Get, Set and Reset. Keys are compared with Go equality, so
// pointer items are keyed by reference identity and value items by value.
//
// Stores outlive a single layout pass. A caller that wants measurements to
// survive tearing a grid down and building it again (navigating away from a
// feed and back) creates the stores once and hands them to each new grid:
//
//	heights := store.New[*Pin, float64]("measurements")
//	positions := store.New[*Pin, layout.Position]("positions")
//	g, _ := grid.New(grid.Options[*Pin]{Measurements: heights, Positions: positions})
//
// Only the grid and its strategies write to a store. Callers treat entries as
// append/replace only and must not iterate while a layout pass is mutating.
package store

import (
	"context"
	"sync"

	"github.com/matzehuels/masonry/pkg/observability"
)

// Store is an identity-keyed cache.
type Store[K comparable, V any] interface {
	// Has reports whether key has an entry.
	Has(key K) bool

	// Get returns the entry for key and whether it exists.
	Get(key K) (V, bool)

	// Set stores value under key, replacing any previous entry.
	Set(key K, value V)

	// Reset removes every entry.
	Reset()

	// Len returns the number of entries.
	Len() int
}

// MapStore is the default in-memory Store.
// It is safe for concurrent use.
type MapStore[K comparable, V any] struct {
	name string
	mu   sync.RWMutex
	m    map[K]V
}

// New creates an empty store. name labels the store in observability events
// (e.g. "measurements", "positions").
func New[K comparable, V any](name string) *MapStore[K, V] {
	return &MapStore[K, V]{name: name, m: make(map[K]V)}
}

// Has reports whether key has an entry.
func (s *MapStore[K, V]) Has(key K) bool {
	s.mu.RLock()
	_, ok := s.m[key]
	s.mu.RUnlock()
	return ok
}

// Get returns the entry for key.
func (s *MapStore[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	v, ok := s.m[key]
	s.mu.RUnlock()
	if ok {
		observability.Store().OnHit(context.Background(), s.name)
	} else {
		observability.Store().OnMiss(context.Background(), s.name)
	}
	return v, ok
}

// Set stores value under key.
func (s *MapStore[K, V]) Set(key K, value V) {
	s.mu.Lock()
	s.m[key] = value
	s.mu.Unlock()
	observability.Store().OnSet(context.Background(), s.name)
}

// Reset drops all entries.
func (s *MapStore[K, V]) Reset() {
	s.mu.Lock()
	n := len(s.m)
	s.m = make(map[K]V)
	s.mu.Unlock()
	observability.Store().OnReset(context.Background(), s.name, n)
}

// Len returns the number of entries.
func (s *MapStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

// Name returns the label given to New.
func (s *MapStore[K, V]) Name() string { return s.name }

// Ensure MapStore implements Store.
var _ Store[int, float64] = (*MapStore[int, float64])(nil)

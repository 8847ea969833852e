// Package memstore provides an in-memory implementation of frame.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/linnemanlabs/defectscope/internal/frame"
)

var _ frame.Store = (*Store)(nil)

// Store holds frame summaries in memory, evicting the oldest once the
// capacity is reached. Suitable for dev/testing and single-session use.
type Store struct {
	mu       sync.RWMutex
	capacity int
	order    []string                  // frame IDs, oldest first
	byID     map[string]*frame.Summary // frame ID -> summary
}

// New initializes a Store that keeps at most capacity summaries. capacity <= 0
// keeps everything.
func New(capacity int) *Store {
	return &Store{
		capacity: capacity,
		byID:     make(map[string]*frame.Summary),
	}
}

// Get retrieves a frame summary by ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*frame.Summary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum, ok := s.byID[id]
	if !ok {
		return nil, false, nil
	}
	cp := *sum
	return &cp, true, nil
}

// Put stores a copy of the summary. Re-putting an existing ID replaces it in place.
func (s *Store) Put(_ context.Context, sum *frame.Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sum
	if _, exists := s.byID[sum.ID]; !exists {
		s.order = append(s.order, sum.ID)
	}
	s.byID[sum.ID] = &cp

	if s.capacity > 0 && len(s.order) > s.capacity {
		drop := len(s.order) - s.capacity
		for _, id := range s.order[:drop] {
			delete(s.byID, id)
		}
		s.order = append(s.order[:0:0], s.order[drop:]...)
	}
	return nil
}

// List returns up to limit summaries, most recently inserted first.
func (s *Store) List(_ context.Context, limit int) ([]*frame.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*frame.Summary, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(out) < n; i-- {
		cp := *s.byID[s.order[i]]
		out = append(out, &cp)
	}
	return out, nil
}

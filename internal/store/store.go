package store

import (
	"context"
	"sync"

	"bridgefeed/internal/models"
	"bridgefeed/internal/observability"
)

// Store owns the current State. One RWMutex guards everything: mutations
// take the write lock, reads the read lock. There is no per-entity locking.
type Store struct {
	mu     sync.RWMutex
	state  *State
	gen    uint64
	logger *observability.StoreLogger
}

// New returns a store holding an empty state.
func New() *Store {
	return &Store{
		state:  NewState(),
		logger: observability.NewStoreLogger("memory"),
	}
}

// View runs fn under the read lock. fn must not keep references to entities
// after it returns; clone what you need.
func (s *Store) View(fn func(*State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// Update runs fn under the write lock. fn is expected to validate before it
// mutates: a returned error does not roll anything back.
func (s *Store) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return fn(s.state)
}

// Generation increases on every Update, Swap and Reset. Two reads that see
// the same generation saw the same state.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Swap replaces the whole state in one step. It returns the previous state
// and the counts of next, taken before any other writer can reach it.
func (s *Store) Swap(ctx context.Context, next *State) (*State, models.Stats) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.gen++
	st := next.Stats()
	s.mu.Unlock()

	s.logger.LogReplace(ctx, map[string]interface{}{
		"users":     st.TotalUsers,
		"posts":     st.TotalPosts,
		"comments":  st.TotalComments,
		"reactions": st.TotalReactions,
	})
	return prev, st
}

// Reset clears users, posts, comments and reactions and restarts every id
// namespace at 1.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	s.state = NewState()
	s.gen++
	s.mu.Unlock()
	s.logger.LogReset(ctx)
}

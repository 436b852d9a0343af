package cart

import (
	"sync"
	"time"

	"github.com/ctgpost/MarketingWebTools/internal/domain"
)

// DefaultMarkerDelay is how long the "just added" marker stays on a product.
const DefaultMarkerDelay = time.Second

// Store holds the items one session has added for purchase.
// Duplicates are allowed; quantity is represented by repetition.
type Store struct {
	mu    sync.RWMutex
	items []domain.Product

	justAdded   int64 // product id, 0 when no marker is shown
	markerSeq   uint64
	markerTimer *time.Timer
	markerDelay time.Duration

	onChange func()
}

func NewStore(markerDelay time.Duration) *Store {
	if markerDelay <= 0 {
		markerDelay = DefaultMarkerDelay
	}
	return &Store{markerDelay: markerDelay}
}

// OnChange registers fn to run after every mutation, including the marker
// clearing on its own. fn is called without the store lock held.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// AddItem appends product unconditionally and marks it as just added.
func (s *Store) AddItem(product domain.Product) {
	s.mu.Lock()
	s.items = append(s.items, product)
	s.justAdded = product.ID
	s.markerSeq++
	seq := s.markerSeq
	if s.markerTimer != nil {
		s.markerTimer.Stop()
	}
	s.markerTimer = time.AfterFunc(s.markerDelay, func() { s.clearMarker(seq) })
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// clearMarker only clears the marker set by the add that scheduled it.
func (s *Store) clearMarker(seq uint64) {
	s.mu.Lock()
	if s.markerSeq != seq || s.justAdded == 0 {
		s.mu.Unlock()
		return
	}
	s.justAdded = 0
	s.markerTimer = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	fn := s.onChange
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Stop cancels a pending marker timer.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markerTimer != nil {
		s.markerTimer.Stop()
		s.markerTimer = nil
	}
}

func (s *Store) Items() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// JustAdded returns the id of the product added within the marker delay.
func (s *Store) JustAdded() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.justAdded, s.justAdded != 0
}

// Total is recomputed from the current items on every call.
func (s *Store) Total(area domain.Area) domain.Totals {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeTotals(s.items, area)
}

// Restore replaces the cart contents without notifying observers.
func (s *Store) Restore(items []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]domain.Product, len(items))
	copy(s.items, items)
}

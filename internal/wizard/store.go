package wizard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrDraftNotFound is returned when a draft ID is unknown or its
// session has expired.
var ErrDraftNotFound = errors.New("draft not found")

// Store keeps drafts in memory, keyed by a random session ID.
// Drafts are throwaway state: losing them on restart costs a
// customer a few form fields, never a booking.
type Store struct {
	mu     sync.Mutex
	drafts map[string]*Draft
	ttl    time.Duration
	now    func() time.Time
}

// NewStore returns a Store whose drafts expire after ttl of
// inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		drafts: make(map[string]*Draft),
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a new draft at the first wizard step.
func (s *Store) Create() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	now := s.now()
	d := &Draft{
		ID:        uuid.NewString(),
		Step:      StepRentalSelection,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.drafts[d.ID] = d
	return d
}

// Get returns the draft for id, expiring it lazily if it sat
// untouched longer than the TTL.
func (s *Store) Get(id string) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return nil, ErrDraftNotFound
	}
	if s.expired(d) {
		delete(s.drafts, id)
		return nil, ErrDraftNotFound
	}
	return d, nil
}

// Delete discards a draft.  Safe to call on unknown IDs.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
}

// Len reports the number of live drafts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.drafts)
}

func (s *Store) expired(d *Draft) bool {
	if s.ttl <= 0 {
		return false
	}
	// UpdatedAt is written by handlers holding the draft lock, so
	// the read has to take it too.  Submitted drafts linger one TTL
	// so the confirmation screen can still be reloaded.
	d.mu.Lock()
	updated := d.UpdatedAt
	d.mu.Unlock()
	return s.now().Sub(updated) > s.ttl
}

func (s *Store) sweepLocked() {
	for id, d := range s.drafts {
		if s.expired(d) {
			delete(s.drafts, id)
		}
	}
}

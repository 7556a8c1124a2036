package offer

import (
	"errors"
	"sync"
	"time"
)

// Registry errors.
var (
	// ErrDuplicate is returned by Put when the target already has a live offer.
	ErrDuplicate = errors.New("user already has a pending offer")
	// ErrNotFound is returned by Get when no live offer exists for the target.
	ErrNotFound = errors.New("no pending offer for user")
)

// Registry is an in-memory table of outstanding offers keyed by target user
// ID. At most one live offer exists per user. Expired offers are swept lazily
// on every access rather than by a background goroutine; at the call volume of
// a chat command a slightly late sweep is harmless. Safe for concurrent use.
type Registry struct {
	mu     sync.Mutex
	offers map[string]Offer
	ttl    time.Duration
	now    func() time.Time // injectable clock for testing
}

// NewRegistry creates a Registry whose offers expire after ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		offers: make(map[string]Offer),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Put stores an offer for its target user. It fails with ErrDuplicate if a
// live, unexpired offer already exists for that user.
func (r *Registry) Put(o Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	if _, ok := r.offers[o.TargetUserID]; ok {
		return ErrDuplicate
	}
	r.offers[o.TargetUserID] = o
	return nil
}

// Get returns the live offer for the given target user, or ErrNotFound.
func (r *Registry) Get(targetUserID string) (Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()

	o, ok := r.offers[targetUserID]
	if !ok {
		return Offer{}, ErrNotFound
	}
	return o, nil
}

// Remove deletes the offer for the given target user. It is idempotent: a
// missing offer is not an error.
func (r *Registry) Remove(targetUserID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.offers, targetUserID)
}

// Len returns the number of live offers after sweeping expired ones.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweep()
	return len(r.offers)
}

// sweep removes offers older than the registry TTL. Must be called with r.mu
// held.
func (r *Registry) sweep() {
	cutoff := r.now().Add(-r.ttl)
	for id, o := range r.offers {
		if !o.CreatedAt.After(cutoff) {
			delete(r.offers, id)
		}
	}
}

package policy

import "sync/atomic"

// Store holds the active policy. Readers take a snapshot with Current and use
// it for a whole analysis, so a reload never splits a single call.
type Store struct {
	cur atomic.Pointer[Policy]
}

// NewStore returns a Store holding p, or the built-in policy when p is nil.
func NewStore(p *Policy) *Store {
	if p == nil {
		p = Default()
	}
	s := &Store{}
	s.cur.Store(p)
	return s
}

// Current returns the active policy.
func (s *Store) Current() *Policy {
	return s.cur.Load()
}

// Replace swaps in p and returns the previous policy.
func (s *Store) Replace(p *Policy) *Policy {
	return s.cur.Swap(p)
}

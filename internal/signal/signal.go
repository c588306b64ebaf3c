// Package signal provides a payload-free broadcast used for UI intents that
// several components may want to react to, such as "add a new task".
package signal

import (
	"slices"
	"sync"
)

// Signal fans a notification out to every current subscriber. The zero value
// is ready to use.
type Signal struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

// Subscribe registers fn and returns a func that removes it. Calling cancel
// more than once is harmless.
func (s *Signal) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Broadcast calls every subscriber in subscription order. Subscribers run on
// the caller's goroutine without the lock held, so they may subscribe or
// cancel from inside the callback.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	fns := make([]func(), 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len returns the number of live subscribers.
func (s *Signal) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

package realtime

import (
	"sync"

	"github.com/eventhive/eventhive/internal/model"
)

// Session is the per-connection state: the authenticated identity bound at
// handshake time plus the set of rooms the connection currently holds
// membership in. It is owned by one connection and destroyed on disconnect.
type Session struct {
	user *model.User
	peer *peer

	mu     sync.Mutex
	joined map[RoomKey]struct{}
}

// NewSession binds an authenticated identity to a connection.
func NewSession(user *model.User, p *peer) *Session {
	return &Session{
		user:   user,
		peer:   p,
		joined: make(map[RoomKey]struct{}),
	}
}

// User returns the identity bound at handshake.
func (s *Session) User() *model.User {
	return s.user
}

// markJoined records membership and reports whether it was already held.
func (s *Session) markJoined(key RoomKey) (already bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.joined[key]; ok {
		return true
	}
	s.joined[key] = struct{}{}
	return false
}

// markLeft forgets membership; leaving a room never held is a no-op.
func (s *Session) markLeft(key RoomKey) {
	s.mu.Lock()
	delete(s.joined, key)
	s.mu.Unlock()
}

// holds reports whether the session currently holds membership in key.
// Every send-type operation gates on this.
func (s *Session) holds(key RoomKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.joined[key]
	return ok
}

// drain empties the membership set and returns the rooms that were held.
// Called on disconnect so every membership is released.
func (s *Session) drain() []RoomKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]RoomKey, 0, len(s.joined))
	for key := range s.joined {
		keys = append(keys, key)
	}
	s.joined = make(map[RoomKey]struct{})
	return keys
}

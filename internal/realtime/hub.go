package realtime

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/eventhive/eventhive/internal/apperr"
)

// ChannelKind distinguishes the two room flavors scoped to an event.
type ChannelKind string

const (
	KindChat ChannelKind = "chat"
	KindQnA  ChannelKind = "qna"
)

// Validate checks the kind value coming off the wire.
func (k ChannelKind) Validate() error {
	if k != KindChat && k != KindQnA {
		return apperr.New(apperr.CodeInvalidArgument, "channel kind must be chat or qna")
	}
	return nil
}

// RoomKey addresses a room.
type RoomKey struct {
	EventID string
	Kind    ChannelKind
}

// peer is the write half of one connection. The mutex serializes frame
// writes so concurrent broadcasts do not interleave JSON output.
type peer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newPeer(w io.Writer) *peer {
	return &peer{encoder: json.NewEncoder(w)}
}

func (p *peer) writeFrame(frame Frame) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(frame)
}

// room is an in-memory broadcast group. Membership mutation is serialized
// per room by its mutex; different rooms proceed independently.
type room struct {
	mu      sync.Mutex
	key     RoomKey
	members map[*peer]struct{}
}

func newRoom(key RoomKey) *room {
	return &room{key: key, members: make(map[*peer]struct{})}
}

// add registers the peer and reports whether it was already a member.
func (r *room) add(p *peer) (already bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[p]; ok {
		return true
	}
	r.members[p] = struct{}{}
	return false
}

func (r *room) remove(p *peer) {
	r.mu.Lock()
	delete(r.members, p)
	r.mu.Unlock()
}

func (r *room) empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0
}

// snapshot returns the current members, optionally excluding one peer.
func (r *room) snapshot(except *peer) []*peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]*peer, 0, len(r.members))
	for member := range r.members {
		if member == except {
			continue
		}
		members = append(members, member)
	}
	return members
}

// broadcast writes the frame to every member; pass except=nil to include
// everyone. Writes happen outside the room lock.
func (r *room) broadcast(frame Frame, except *peer) {
	for _, member := range r.snapshot(except) {
		_ = member.writeFrame(frame)
	}
}

// Hub tracks rooms by key. Rooms are created on first join and dropped when
// their last member leaves, so the map only holds rooms with members. Both
// mutations hold the hub lock across the membership change; the lock order
// is always hub then room.
type Hub struct {
	mu    sync.Mutex
	rooms map[RoomKey]*room
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[RoomKey]*room)}
}

// join adds the peer to the room, creating it if needed.
func (h *Hub) join(key RoomKey, p *peer) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[key]
	if !ok {
		r = newRoom(key)
		h.rooms[key] = r
	}
	r.add(p)
	return r
}

// leave removes the peer and prunes the room once it has no members.
func (h *Hub) leave(key RoomKey, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[key]
	if !ok {
		return
	}
	r.remove(p)
	if r.empty() {
		delete(h.rooms, key)
	}
}

// room returns the current room for key, or an empty placeholder when no
// members are present. Send paths are gated on membership, so a live room
// always exists for them.
func (h *Hub) room(key RoomKey) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	if r, ok := h.rooms[key]; ok {
		return r
	}
	return newRoom(key)
}

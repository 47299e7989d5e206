package relay

import (
	"sync"

	domain "github.com/example/presence-relay/domain/relay"
)

// Roster is the bidirectional room membership index: room -> member sessions
// and session -> joined rooms. Keeping both directions makes room fan-out and
// disconnect cleanup O(members) and O(rooms) respectively.
//
// Rooms are not pre-declared; a room exists exactly as long as its member set
// is non-empty.
type Roster struct {
	mu        sync.RWMutex
	byRoom    map[domain.RoomID]map[string]struct{}
	bySession map[string]map[domain.RoomID]struct{}
	sink      EventSink
}

// NewRoster creates an empty roster that delivers broadcasts through sink.
func NewRoster(sink EventSink) *Roster {
	return &Roster{
		byRoom:    make(map[domain.RoomID]map[string]struct{}),
		bySession: make(map[string]map[domain.RoomID]struct{}),
		sink:      sink,
	}
}

// Join adds a session to a room. Joining a room the session is already a
// member of is a no-op.
func (r *Roster) Join(room domain.RoomID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byRoom[room] == nil {
		r.byRoom[room] = make(map[string]struct{})
	}
	r.byRoom[room][sessionID] = struct{}{}

	if r.bySession[sessionID] == nil {
		r.bySession[sessionID] = make(map[domain.RoomID]struct{})
	}
	r.bySession[sessionID][room] = struct{}{}
}

// Leave removes a session from a room and reports whether the session was a
// member. Empty rooms are removed from the index so memory is reclaimed under
// churn.
func (r *Roster) Leave(room domain.RoomID, sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, exists := r.byRoom[room]
	if !exists {
		return false
	}
	if _, member := members[sessionID]; !member {
		return false
	}

	delete(members, sessionID)
	if len(members) == 0 {
		delete(r.byRoom, room)
	}

	if rooms := r.bySession[sessionID]; rooms != nil {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.bySession, sessionID)
		}
	}
	return true
}

// MembersOf returns the current member session set of a room.
func (r *Roster) MembersOf(room domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]string, 0, len(r.byRoom[room]))
	for sessionID := range r.byRoom[room] {
		members = append(members, sessionID)
	}
	return members
}

// MemberCount returns the size of a room's member set.
func (r *Roster) MemberCount(room domain.RoomID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRoom[room])
}

// RoomsOf returns the rooms a session has joined. Disconnect cleanup iterates
// this to tear down every membership the session left behind.
func (r *Roster) RoomsOf(sessionID string) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]domain.RoomID, 0, len(r.bySession[sessionID]))
	for room := range r.bySession[sessionID] {
		rooms = append(rooms, room)
	}
	return rooms
}

// RoomCount returns the number of rooms with at least one member.
func (r *Roster) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRoom)
}

// Broadcast delivers an event to every session that is a member of the room
// at call time. Membership is snapshotted before sending, so sessions joining
// or leaving mid-call are not guaranteed either way.
func (r *Roster) Broadcast(room domain.RoomID, event string, payload any) {
	r.BroadcastExcept(room, "", event, payload)
}

// BroadcastExcept is Broadcast with a single excluded session, used for
// events the originator must not receive back.
func (r *Roster) BroadcastExcept(room domain.RoomID, exceptSessionID, event string, payload any) {
	members := r.MembersOf(room)
	for _, sessionID := range members {
		if sessionID == exceptSessionID {
			continue
		}
		r.sink.Send(sessionID, event, payload)
	}
}

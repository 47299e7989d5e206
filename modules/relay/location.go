package relay

import (
	"sort"
	"sync"

	domain "github.com/example/presence-relay/domain/relay"
)

// LocationTracker specializes the roster for geographic chat rooms. On top of
// plain membership it keeps a display-name side-table per room and pushes a
// fresh presence snapshot to the whole room on every membership change.
//
// The side-table is keyed by member identity, not session: when one user has
// two sessions in the same area room they share a single name slot, and the
// first leave removes it. The member count stays correct either way.
type LocationTracker struct {
	mu     sync.RWMutex
	names  map[domain.RoomID]map[string]string // room -> memberID -> display name
	roster *Roster
}

// NewLocationTracker creates a tracker backed by the given roster.
func NewLocationTracker(roster *Roster) *LocationTracker {
	return &LocationTracker{
		names:  make(map[domain.RoomID]map[string]string),
		roster: roster,
	}
}

// AddMember joins the session to the area room, records the member's display
// name (last write wins) and broadcasts the updated presence snapshot.
func (l *LocationTracker) AddMember(area, memberID, sessionID, displayName string) {
	room := domain.LocationRoom(area)

	l.roster.Join(room, sessionID)

	l.mu.Lock()
	if l.names[room] == nil {
		l.names[room] = make(map[string]string)
	}
	l.names[room][memberID] = displayName
	l.mu.Unlock()

	l.broadcastSnapshot(room)
}

// RemoveMember removes the session from the area room, drops the member's
// display-name entry and broadcasts the updated snapshot to the remaining
// members. Removing a session that is not a member is a no-op, so a repeated
// leave never produces a duplicate presence broadcast.
func (l *LocationTracker) RemoveMember(area, memberID, sessionID string) {
	room := domain.LocationRoom(area)

	if !l.roster.Leave(room, sessionID) {
		return
	}

	l.mu.Lock()
	if names := l.names[room]; names != nil {
		delete(names, memberID)
		if len(names) == 0 {
			delete(l.names, room)
		}
	}
	l.mu.Unlock()

	l.broadcastSnapshot(room)
}

// Snapshot computes the presence view of an area room without mutating state.
// The online count reflects the member-set size at call time; the member list
// is derived from the display-name side-table, sorted for stable output.
func (l *LocationTracker) Snapshot(area string) domain.PresenceSnapshot {
	room := domain.LocationRoom(area)

	l.mu.RLock()
	members := make([]domain.LocationMember, 0, len(l.names[room]))
	for memberID, name := range l.names[room] {
		members = append(members, domain.LocationMember{ID: memberID, Name: name})
	}
	l.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	return domain.PresenceSnapshot{
		Area:        room.Key,
		OnlineCount: l.roster.MemberCount(room),
		Members:     members,
	}
}

// MemberNameCount returns the number of display-name entries across all area
// rooms.
func (l *LocationTracker) MemberNameCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total := 0
	for _, names := range l.names {
		total += len(names)
	}
	return total
}

func (l *LocationTracker) broadcastSnapshot(room domain.RoomID) {
	l.roster.Broadcast(room, EventLocationUsers, l.Snapshot(room.Key))
}

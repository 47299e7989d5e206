package relay

import (
	"sync"
	"time"

	domain "github.com/example/presence-relay/domain/relay"
)

// typingQuietPeriod is how long a typing indicator stays alive without a new
// signal. It matches the auto-expiry window of the client's typing UI, so
// changing it changes visible behavior.
const typingQuietPeriod = 3000 * time.Millisecond

type typingKey struct {
	room   domain.RoomID
	userID string
}

type typingEntry struct {
	timer       *time.Timer
	displayName string
}

// TypingTracker holds the ephemeral per (room, user) typing state. Each entry
// carries one pending expiry timer; signalling again before the quiet period
// elapses replaces entry and timer atomically, so at most one timer is ever
// live per key.
type TypingTracker struct {
	mu      sync.Mutex
	entries map[typingKey]*typingEntry
	roster  *Roster
	quiet   time.Duration
}

// NewTypingTracker creates a tracker that emits typing events through the
// roster.
func NewTypingTracker(roster *Roster) *TypingTracker {
	return &TypingTracker{
		entries: make(map[typingKey]*typingEntry),
		roster:  roster,
		quiet:   typingQuietPeriod,
	}
}

// Signal records that a user is typing in a room. The typing event is sent to
// the room immediately, excluding the signalling session; a stop event is
// scheduled for when the quiet period elapses without a further signal.
func (t *TypingTracker) Signal(room domain.RoomID, userID, displayName, senderSessionID string) {
	key := typingKey{room: room, userID: userID}

	t.mu.Lock()
	if prev, exists := t.entries[key]; exists {
		prev.timer.Stop()
	}
	entry := &typingEntry{displayName: displayName}
	entry.timer = time.AfterFunc(t.quiet, func() {
		t.expire(key, entry)
	})
	t.entries[key] = entry
	t.mu.Unlock()

	t.roster.BroadcastExcept(room, senderSessionID, EventUserTyping, TypingEvent{
		ConversationID: room.Key,
		UserID:         userID,
		Username:       displayName,
	})
}

// Stop cancels a pending typing entry and notifies the room. Calling it for a
// key with no entry is a no-op.
func (t *TypingTracker) Stop(room domain.RoomID, userID string) {
	key := typingKey{room: room, userID: userID}

	t.mu.Lock()
	entry, exists := t.entries[key]
	if exists {
		entry.timer.Stop()
		delete(t.entries, key)
	}
	t.mu.Unlock()

	if exists {
		t.emitStopped(room, userID)
	}
}

// ClearUser cancels every pending entry belonging to a user and notifies each
// affected room. It runs synchronously during disconnect handling so no stray
// timer fires after the user's last session is gone.
func (t *TypingTracker) ClearUser(userID string) {
	t.mu.Lock()
	var rooms []domain.RoomID
	for key, entry := range t.entries {
		if key.userID != userID {
			continue
		}
		entry.timer.Stop()
		delete(t.entries, key)
		rooms = append(rooms, key.room)
	}
	t.mu.Unlock()

	for _, room := range rooms {
		t.emitStopped(room, userID)
	}
}

// PendingCount returns the number of live typing entries.
func (t *TypingTracker) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Shutdown cancels all outstanding timers without emitting events.
func (t *TypingTracker) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, entry := range t.entries {
		entry.timer.Stop()
		delete(t.entries, key)
	}
}

// expire is the timer callback. The entry identity check makes a stale fire a
// no-op: if the key was re-signalled while this callback was waiting for the
// lock, the map holds a newer entry and this one must not remove it.
func (t *TypingTracker) expire(key typingKey, entry *typingEntry) {
	t.mu.Lock()
	current, exists := t.entries[key]
	if !exists || current != entry {
		t.mu.Unlock()
		return
	}
	delete(t.entries, key)
	t.mu.Unlock()

	t.emitStopped(key.room, key.userID)
}

func (t *TypingTracker) emitStopped(room domain.RoomID, userID string) {
	t.roster.Broadcast(room, EventUserStoppedTyping, TypingEvent{
		ConversationID: room.Key,
		UserID:         userID,
	})
}

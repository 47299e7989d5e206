package relay

import (
	"testing"

	domain "github.com/example/presence-relay/domain/relay"
)

func TestRoster_JoinLeave(t *testing.T) {
	roster := NewRoster(newFakeSink())
	room := domain.ConversationRoom("conv-1")

	roster.Join(room, "sess-a")
	roster.Join(room, "sess-b")
	roster.Join(room, "sess-a") // duplicate join

	if got := roster.MemberCount(room); got != 2 {
		t.Errorf("MemberCount = %d, want 2", got)
	}

	if !roster.Leave(room, "sess-a") {
		t.Error("Leave() of a member should report true")
	}
	if roster.Leave(room, "sess-a") {
		t.Error("repeated Leave() must report false")
	}
	if roster.Leave(room, "sess-z") {
		t.Error("Leave() of a non-member must report false")
	}
	if got := roster.MemberCount(room); got != 1 {
		t.Errorf("MemberCount = %d, want 1", got)
	}
}

func TestRoster_EmptyRoomsAreReclaimed(t *testing.T) {
	roster := NewRoster(newFakeSink())
	room := domain.ConversationRoom("conv-1")

	roster.Join(room, "sess-a")
	if got := roster.RoomCount(); got != 1 {
		t.Fatalf("RoomCount = %d, want 1", got)
	}

	roster.Leave(room, "sess-a")
	if got := roster.RoomCount(); got != 0 {
		t.Errorf("RoomCount = %d, want 0 after last member leaves", got)
	}
	if got := len(roster.RoomsOf("sess-a")); got != 0 {
		t.Errorf("RoomsOf = %d rooms, want 0 after leaving", got)
	}
}

func TestRoster_RoomsOfTracksEveryNamespace(t *testing.T) {
	roster := NewRoster(newFakeSink())

	roster.Join(domain.ConversationRoom("conv-1"), "sess-a")
	roster.Join(domain.MailboxRoom("user-1"), "sess-a")
	roster.Join(domain.LocationRoom("fr"), "sess-a")

	rooms := roster.RoomsOf("sess-a")
	if len(rooms) != 3 {
		t.Fatalf("RoomsOf = %d rooms, want 3", len(rooms))
	}

	kinds := make(map[domain.RoomKind]bool)
	for _, room := range rooms {
		kinds[room.Kind] = true
	}
	for _, kind := range []domain.RoomKind{domain.RoomConversation, domain.RoomMailbox, domain.RoomLocation} {
		if !kinds[kind] {
			t.Errorf("RoomsOf missing room kind %v", kind)
		}
	}
}

func TestRoster_BroadcastReachesMembersOnly(t *testing.T) {
	sink := newFakeSink()
	roster := NewRoster(sink)
	room := domain.ConversationRoom("conv-1")

	roster.Join(room, "sess-a")
	roster.Join(room, "sess-b")
	roster.Join(domain.ConversationRoom("conv-2"), "sess-c")

	roster.Broadcast(room, "test-event", "payload")

	got := sink.sessionsFor("test-event")
	if len(got) != 2 || got["sess-a"] != 1 || got["sess-b"] != 1 {
		t.Errorf("Broadcast reached %v, want exactly sess-a and sess-b once each", got)
	}
}

func TestRoster_BroadcastExceptSkipsSender(t *testing.T) {
	sink := newFakeSink()
	roster := NewRoster(sink)
	room := domain.ConversationRoom("conv-1")

	roster.Join(room, "sess-a")
	roster.Join(room, "sess-b")

	roster.BroadcastExcept(room, "sess-a", "test-event", nil)

	got := sink.sessionsFor("test-event")
	if len(got) != 1 || got["sess-b"] != 1 {
		t.Errorf("BroadcastExcept reached %v, want only sess-b", got)
	}
}

func TestRoster_BroadcastEmptyRoom(t *testing.T) {
	sink := newFakeSink()
	roster := NewRoster(sink)

	roster.Broadcast(domain.ConversationRoom("nobody-here"), "test-event", nil)

	if got := len(sink.events()); got != 0 {
		t.Errorf("broadcast to empty room sent %d events, want 0", got)
	}
}

package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/example/presence-relay/domain/relay"
)

func TestRouter_JoinAndLeaveConversation(t *testing.T) {
	router, sink, _ := newTestRouter()
	sess := domain.Session{ID: "sess-a", UserID: "user-1"}

	router.JoinConversation(sess, ConversationPayload{ConversationID: "conv-1"})
	require.Equal(t, 1, router.roster.MemberCount(domain.ConversationRoom("conv-1")))

	router.LeaveConversation(sess, ConversationPayload{ConversationID: "conv-1"})
	assert.Equal(t, 0, router.roster.MemberCount(domain.ConversationRoom("conv-1")))
	assert.Empty(t, sink.events(), "plain join/leave emits nothing")
}

func TestRouter_JoinConversationMissingID(t *testing.T) {
	router, _, _ := newTestRouter()
	sess := domain.Session{ID: "sess-a"}

	router.JoinConversation(sess, ConversationPayload{})
	assert.Equal(t, 0, router.roster.RoomCount(), "malformed join must be dropped")
}

func TestRouter_LeaveClearsPendingTyping(t *testing.T) {
	router, sink, _ := newTestRouter()
	defer router.typing.Shutdown()
	alice := domain.Session{ID: "sess-a", UserID: "user-1"}
	bob := domain.Session{ID: "sess-b", UserID: "user-2"}

	router.JoinConversation(alice, ConversationPayload{ConversationID: "conv-1"})
	router.JoinConversation(bob, ConversationPayload{ConversationID: "conv-1"})
	router.Typing(alice, TypingPayload{ConversationID: "conv-1", UserID: "user-1", Username: "Alice"})
	sink.reset()

	router.LeaveConversation(alice, ConversationPayload{ConversationID: "conv-1"})

	stops := sink.byType(EventUserStoppedTyping)
	require.NotEmpty(t, stops, "leave with pending typing must notify the room")
	assert.Equal(t, 0, router.typing.PendingCount())
}

func TestRouter_SendMessageFanout(t *testing.T) {
	router, sink, announce := newTestRouter()
	alice := domain.Session{ID: "sess-a", UserID: "alice"}
	bob := domain.Session{ID: "sess-b", UserID: "bob"}
	bobPhone := domain.Session{ID: "sess-b2", UserID: "bob"}

	// Both of bob's sessions keep a mailbox membership; only one is in the
	// conversation room.
	router.Connect(alice)
	router.Connect(bob)
	router.Connect(bobPhone)
	router.JoinConversation(alice, ConversationPayload{ConversationID: "conv-1"})
	router.JoinConversation(bob, ConversationPayload{ConversationID: "conv-1"})
	sink.reset()

	body := json.RawMessage(`{"text":"hello"}`)
	router.SendMessage(alice, MessagePayload{
		ConversationID: "conv-1",
		Message:        body,
		RecipientID:    "bob",
	})

	got := sink.sessionsFor(EventNewMessage)
	// Room copy to both room members, mailbox copy to both of bob's sessions.
	assert.Equal(t, 1, got["sess-a"], "sender gets the room copy")
	assert.Equal(t, 2, got["sess-b"], "bob's room session gets room and mailbox copies")
	assert.Equal(t, 1, got["sess-b2"], "bob's other session gets the mailbox copy")

	msgs := announce.messageList()
	require.Len(t, msgs, 1, "one global announcement per message")
	assert.Equal(t, "conv-1", msgs[0].ConversationID)
	assert.Equal(t, "alice", msgs[0].SenderID)
	assert.JSONEq(t, string(body), string(msgs[0].Message))
}

func TestRouter_SendMessageGroupParticipants(t *testing.T) {
	router, sink, _ := newTestRouter()
	alice := domain.Session{ID: "sess-a", UserID: "alice"}
	bob := domain.Session{ID: "sess-b", UserID: "bob"}
	carol := domain.Session{ID: "sess-c", UserID: "carol"}

	router.Connect(alice)
	router.Connect(bob)
	router.Connect(carol)
	sink.reset()

	router.SendMessage(alice, MessagePayload{
		ConversationID: "group-1",
		Message:        json.RawMessage(`"hi"`),
		Group:          true,
		Participants:   []string{"alice", "bob", "carol"},
	})

	got := sink.sessionsFor(EventNewMessage)
	assert.Zero(t, got["sess-a"], "sender is excluded from group mailbox fan-out")
	assert.Equal(t, 1, got["sess-b"])
	assert.Equal(t, 1, got["sess-c"])
}

func TestRouter_SendMessageClearsSenderTyping(t *testing.T) {
	router, sink, _ := newTestRouter()
	defer router.typing.Shutdown()
	alice := domain.Session{ID: "sess-a", UserID: "alice"}
	bob := domain.Session{ID: "sess-b", UserID: "bob"}

	router.JoinConversation(alice, ConversationPayload{ConversationID: "conv-1"})
	router.JoinConversation(bob, ConversationPayload{ConversationID: "conv-1"})
	router.Typing(alice, TypingPayload{ConversationID: "conv-1", UserID: "alice"})
	sink.reset()

	router.SendMessage(alice, MessagePayload{
		ConversationID: "conv-1",
		Message:        json.RawMessage(`"hi"`),
	})

	events := sink.events()
	require.NotEmpty(t, events)
	// Receivers must see the stop before the message.
	assert.Equal(t, EventUserStoppedTyping, events[0].Event)
	assert.Equal(t, 0, router.typing.PendingCount())
}

func TestRouter_SendMessageMissingFields(t *testing.T) {
	router, sink, announce := newTestRouter()
	sess := domain.Session{ID: "sess-a", UserID: "alice"}

	tests := []struct {
		name    string
		payload MessagePayload
	}{
		{"missing conversation", MessagePayload{Message: json.RawMessage(`"hi"`)}},
		{"missing message", MessagePayload{ConversationID: "conv-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router.SendMessage(sess, tt.payload)
			assert.Empty(t, sink.events())
			assert.Empty(t, announce.messageList())
		})
	}
}

func TestRouter_TypingValidation(t *testing.T) {
	router, _, _ := newTestRouter()
	defer router.typing.Shutdown()
	sess := domain.Session{ID: "sess-a", UserID: "alice"}

	router.Typing(sess, TypingPayload{ConversationID: "conv-1"})
	assert.Equal(t, 0, router.typing.PendingCount(), "typing without userId is dropped")

	router.Typing(sess, TypingPayload{UserID: "alice"})
	assert.Equal(t, 0, router.typing.PendingCount(), "typing without conversationId is dropped")

	router.Typing(sess, TypingPayload{ConversationID: "conv-1", UserID: "alice"})
	assert.Equal(t, 1, router.typing.PendingCount())
}

func TestRouter_ConversationStatus(t *testing.T) {
	router, _, announce := newTestRouter()
	sess := domain.Session{ID: "sess-a", UserID: "alice"}

	tests := []struct {
		name      string
		status    string
		announced bool
	}{
		{"accepted", StatusAccepted, true},
		{"rejected", StatusRejected, true},
		{"empty status", "", false},
		{"unknown status", "pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(announce.statusList())
			router.ConversationStatus(sess, StatusPayload{
				ConversationID: "conv-1",
				Status:         tt.status,
				UserID:         "alice",
			})
			after := len(announce.statusList())
			if tt.announced {
				assert.Equal(t, before+1, after)
			} else {
				assert.Equal(t, before, after)
			}
		})
	}
}

func TestRouter_LocationUsersGoesToRequesterOnly(t *testing.T) {
	router, sink, _ := newTestRouter()
	alice := domain.Session{ID: "sess-a", UserID: "alice"}
	bob := domain.Session{ID: "sess-b", UserID: "bob"}

	router.JoinLocation(alice, LocationPayload{Area: "fr", Username: "Alice"})
	router.JoinLocation(bob, LocationPayload{Area: "fr", Username: "Bob"})
	sink.reset()

	router.LocationUsers(alice, LocationPayload{Area: "fr"})

	got := sink.sessionsFor(EventLocationUsers)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got["sess-a"])

	events := sink.byType(EventLocationUsers)
	snap, ok := events[0].Payload.(domain.PresenceSnapshot)
	require.True(t, ok, "payload should be a presence snapshot")
	assert.Equal(t, 2, snap.OnlineCount)
}

func TestRouter_SendLocationMessage(t *testing.T) {
	router, sink, _ := newTestRouter()
	alice := domain.Session{ID: "sess-a", UserID: "alice"}
	bob := domain.Session{ID: "sess-b", UserID: "bob"}

	router.JoinLocation(alice, LocationPayload{Area: "fr", Username: "Alice"})
	router.JoinLocation(bob, LocationPayload{Area: "fr", Username: "Bob"})
	sink.reset()

	router.SendLocationMessage(alice, LocationMessagePayload{
		Area:    "fr",
		Message: json.RawMessage(`"bonjour"`),
	})

	got := sink.sessionsFor(EventLocationNewMessage)
	assert.Equal(t, 1, got["sess-a"], "location messages echo to the sender's room copy")
	assert.Equal(t, 1, got["sess-b"])

	events := sink.byType(EventLocationNewMessage)
	msg, ok := events[0].Payload.(LocationMessageEvent)
	require.True(t, ok)
	assert.Equal(t, "FR", msg.Area)
	assert.Equal(t, "alice", msg.SenderID)
}

func TestRouter_LocationTypingExcludesSender(t *testing.T) {
	router, sink, _ := newTestRouter()
	alice := domain.Session{ID: "sess-a", UserID: "alice"}
	bob := domain.Session{ID: "sess-b", UserID: "bob"}

	router.JoinLocation(alice, LocationPayload{Area: "fr", Username: "Alice"})
	router.JoinLocation(bob, LocationPayload{Area: "fr", Username: "Bob"})
	sink.reset()

	router.LocationTyping(alice, LocationPayload{Area: "fr", UserID: "alice", Username: "Alice"})
	router.LocationStopTyping(alice, LocationPayload{Area: "fr", UserID: "alice"})

	typing := sink.sessionsFor(EventLocationUserTyping)
	assert.Equal(t, map[string]int{"sess-b": 1}, typing)

	stopped := sink.sessionsFor(EventLocationUserStoppedTyping)
	assert.Equal(t, map[string]int{"sess-b": 1}, stopped)

	// Location typing never arms a quiet-period timer.
	assert.Equal(t, 0, router.typing.PendingCount())
}

func TestRouter_LocationTypingValidation(t *testing.T) {
	router, sink, _ := newTestRouter()
	sess := domain.Session{ID: "sess-a", UserID: "alice"}

	router.LocationTyping(sess, LocationPayload{Area: "fr"})
	router.LocationTyping(sess, LocationPayload{UserID: "alice"})

	assert.Empty(t, sink.events(), "malformed location typing is dropped")
}

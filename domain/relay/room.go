package relay

import "strings"

// RoomKind discriminates the three room namespaces served by the relay.
type RoomKind uint8

const (
	// RoomConversation is a per-conversation broadcast group.
	RoomConversation RoomKind = iota + 1
	// RoomMailbox is the per-user room used to reach a user regardless of
	// which conversation rooms their sessions have joined.
	RoomMailbox
	// RoomLocation is a geographic chat room keyed by area code.
	RoomLocation
)

// RoomID identifies a room. Using a tagged struct instead of prefixed strings
// makes namespace collisions impossible and keeps map keys comparable.
type RoomID struct {
	Kind RoomKind
	Key  string
}

// ConversationRoom returns the room id for a conversation.
func ConversationRoom(conversationID string) RoomID {
	return RoomID{Kind: RoomConversation, Key: conversationID}
}

// MailboxRoom returns the per-user mailbox room id.
func MailboxRoom(userID string) RoomID {
	return RoomID{Kind: RoomMailbox, Key: userID}
}

// LocationRoom returns the room id for a geographic area. Area codes are
// case-normalized so "fr" and "FR" address the same room.
func LocationRoom(area string) RoomID {
	return RoomID{Kind: RoomLocation, Key: strings.ToUpper(area)}
}

// IsZero reports whether the id is the zero value (no room).
func (r RoomID) IsZero() bool {
	return r.Kind == 0 && r.Key == ""
}

// String renders the wire name of the room.
func (r RoomID) String() string {
	switch r.Kind {
	case RoomConversation:
		return "conversation:" + r.Key
	case RoomMailbox:
		return "user:" + r.Key
	case RoomLocation:
		return "location-chat:" + r.Key
	default:
		return r.Key
	}
}

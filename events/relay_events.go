package events

import (
	"encoding/json"
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// UserPresenceEvent is emitted when a user identity transitions between zero
// and non-zero live sessions.
type UserPresenceEvent struct {
	UserID    string    `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// MessagePostedEvent is the global copy of a conversation message, fanned out
// to every connected session so clients can refresh unread counters.
type MessagePostedEvent struct {
	ConversationID string          `json:"conversationId"`
	SenderID       string          `json:"senderId,omitempty"`
	Message        json.RawMessage `json:"message"`
	Timestamp      time.Time       `json:"timestamp"`
}

// ConversationStatusEvent is emitted when a conversation's status changes,
// e.g. a contact request being accepted or rejected.
type ConversationStatusEvent struct {
	ConversationID string `json:"conversationId,omitempty"`
	Status         string `json:"status"`
	UserID         string `json:"userId,omitempty"`
}

// Event definitions for the relay domain.
var (
	UserOnlineV1 = helper.EventDefinition[UserPresenceEvent](
		"relay",
		"UserOnline",
		"v1",
	)

	UserOfflineV1 = helper.EventDefinition[UserPresenceEvent](
		"relay",
		"UserOffline",
		"v1",
	)

	MessagePostedV1 = helper.EventDefinition[MessagePostedEvent](
		"relay",
		"MessagePosted",
		"v1",
	)

	ConversationStatusV1 = helper.EventDefinition[ConversationStatusEvent](
		"relay",
		"ConversationStatus",
		"v1",
	)
)

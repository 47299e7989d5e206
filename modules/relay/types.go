package relay

import (
	"encoding/json"
	"time"
)

// Inbound event types accepted over the WebSocket connection.
const (
	ClientJoinConversation    = "join-conversation"
	ClientLeaveConversation   = "leave-conversation"
	ClientSendMessage         = "send-message"
	ClientTyping              = "typing"
	ClientStopTyping          = "stop-typing"
	ClientConversationStatus  = "conversation-status-updated"
	ClientJoinLocation        = "join-location-chat"
	ClientLeaveLocation       = "leave-location-chat"
	ClientGetLocationUsers    = "get-location-chat-users"
	ClientSendLocationMessage = "send-location-message"
	ClientLocationTyping      = "location-typing"
	ClientLocationStopTyping  = "location-stop-typing"
)

// Outbound event types pushed to sessions.
const (
	EventConnected                 = "connected"
	EventUserOnline                = "user-online"
	EventUserOffline               = "user-offline"
	EventNewMessage                = "new-message"
	EventUserTyping                = "user-typing"
	EventUserStoppedTyping         = "user-stopped-typing"
	EventContactRequestAccepted    = "contact-request-accepted"
	EventContactRequestRejected    = "contact-request-rejected"
	EventLocationUsers             = "location-chat-users"
	EventLocationNewMessage        = "location-new-message"
	EventLocationUserTyping        = "location-user-typing"
	EventLocationUserStoppedTyping = "location-user-stopped-typing"
)

// Conversation status values that trigger a contact-request broadcast.
const (
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// ClientEvent is the inbound wire envelope.
type ClientEvent struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ConversationPayload is the payload of join-conversation and
// leave-conversation events.
type ConversationPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId,omitempty"`
}

// MessagePayload is the payload of a send-message event. The message body is
// opaque pass-through data.
type MessagePayload struct {
	ConversationID string          `json:"conversationId"`
	Message        json.RawMessage `json:"message"`
	RecipientID    string          `json:"recipientId,omitempty"`
	Group          bool            `json:"group,omitempty"`
	Participants   []string        `json:"participants,omitempty"`
}

// TypingPayload is the payload of typing and stop-typing events.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Username       string `json:"username,omitempty"`
}

// StatusPayload is the payload of a conversation-status-updated event.
type StatusPayload struct {
	ConversationID string `json:"conversationId,omitempty"`
	Status         string `json:"status"`
	UserID         string `json:"userId,omitempty"`
}

// LocationPayload is the payload of location room membership and typing
// events.
type LocationPayload struct {
	Area     string `json:"area"`
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

// LocationMessagePayload is the payload of a send-location-message event.
type LocationMessagePayload struct {
	Area    string          `json:"area"`
	Message json.RawMessage `json:"message"`
}

// ConnectedEvent is sent to a session right after the connection is accepted.
type ConnectedEvent struct {
	SessionID string `json:"sessionId"`
	UserID    string `json:"userId,omitempty"`
}

// NewMessageEvent is the room-scoped and mailbox-scoped copy of a
// conversation message.
type NewMessageEvent struct {
	ConversationID string          `json:"conversationId"`
	SenderID       string          `json:"senderId,omitempty"`
	Message        json.RawMessage `json:"message"`
	Timestamp      time.Time       `json:"timestamp"`
}

// TypingEvent notifies a conversation room about a typing state change.
type TypingEvent struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Username       string `json:"username,omitempty"`
}

// LocationTypingEvent notifies a location room about a typing state change.
type LocationTypingEvent struct {
	Area     string `json:"area"`
	UserID   string `json:"userId"`
	Username string `json:"username,omitempty"`
}

// LocationMessageEvent is the room-scoped copy of a location chat message.
type LocationMessageEvent struct {
	Area      string          `json:"area"`
	SenderID  string          `json:"senderId,omitempty"`
	Message   json.RawMessage `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

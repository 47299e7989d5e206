package relay

import "github.com/example/presence-relay/events"

// EventSink is the delivery primitive provided by the transport layer. Both
// methods are fire-and-forget: delivery is best-effort at-most-once and a
// send to an unknown session is a no-op.
type EventSink interface {
	// Send delivers an event to a single session.
	Send(sessionID, event string, payload any)
	// SendAll delivers an event to every connected session.
	SendAll(event string, payload any)
}

// Announcer publishes the relay's global fan-outs. The production
// implementation forwards them to the application EventBus; tests substitute
// a recording fake.
type Announcer interface {
	UserOnline(userID string)
	UserOffline(userID string)
	MessagePosted(event events.MessagePostedEvent)
	ConversationStatus(event events.ConversationStatusEvent)
}

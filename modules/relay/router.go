package relay

import (
	"time"

	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/presence-relay/domain/relay"
	"github.com/example/presence-relay/events"
)

// Router decides which sessions receive which events for each inbound
// trigger. It owns no state of its own; it reads and writes the registry,
// roster, typing tracker and location tracker.
//
// Malformed events (missing required fields) are logged and dropped without
// notifying the sender. That is the relay's delivery policy, not an
// oversight: the transport is best-effort and the application tier owns
// validation.
type Router struct {
	registry *Registry
	roster   *Roster
	typing   *TypingTracker
	location *LocationTracker
	sink     EventSink
	announce Announcer
	logger   types.Logger
}

// NewRouter wires a router over the relay's state components.
func NewRouter(
	registry *Registry,
	roster *Roster,
	typing *TypingTracker,
	location *LocationTracker,
	sink EventSink,
	announce Announcer,
	logger types.Logger,
) *Router {
	return &Router{
		registry: registry,
		roster:   roster,
		typing:   typing,
		location: location,
		sink:     sink,
		announce: announce,
		logger:   logger,
	}
}

// JoinConversation adds the session to a conversation room.
func (r *Router) JoinConversation(sess domain.Session, p ConversationPayload) {
	if p.ConversationID == "" {
		r.drop(ClientJoinConversation, "conversationId missing")
		return
	}
	r.roster.Join(domain.ConversationRoom(p.ConversationID), sess.ID)
}

// LeaveConversation removes the session from a conversation room. If the
// leaving user had a pending typing entry there, the room is told they
// stopped typing.
func (r *Router) LeaveConversation(sess domain.Session, p ConversationPayload) {
	if p.ConversationID == "" {
		r.drop(ClientLeaveConversation, "conversationId missing")
		return
	}
	room := domain.ConversationRoom(p.ConversationID)

	userID := p.UserID
	if userID == "" {
		userID = sess.MemberID()
	}
	r.typing.Stop(room, userID)
	r.roster.Leave(room, sess.ID)
}

// SendMessage fans a conversation message out to the conversation room, to
// every connected session (unread-count refresh) and to the mailbox rooms of
// the direct recipient or the group participants. A pending typing entry for
// the sender is cleared first, so receivers see the stop before the message.
func (r *Router) SendMessage(sess domain.Session, p MessagePayload) {
	if p.ConversationID == "" || len(p.Message) == 0 {
		r.drop(ClientSendMessage, "conversationId or message missing")
		return
	}
	room := domain.ConversationRoom(p.ConversationID)
	now := time.Now()

	r.typing.Stop(room, sess.MemberID())

	out := NewMessageEvent{
		ConversationID: p.ConversationID,
		SenderID:       sess.MemberID(),
		Message:        p.Message,
		Timestamp:      now,
	}
	r.roster.Broadcast(room, EventNewMessage, out)

	r.announce.MessagePosted(events.MessagePostedEvent{
		ConversationID: p.ConversationID,
		SenderID:       sess.MemberID(),
		Message:        p.Message,
		Timestamp:      now,
	})

	switch {
	case p.RecipientID != "":
		r.roster.Broadcast(domain.MailboxRoom(p.RecipientID), EventNewMessage, out)
	case p.Group || len(p.Participants) > 0:
		for _, participant := range p.Participants {
			if participant == sess.UserID {
				continue
			}
			r.roster.Broadcast(domain.MailboxRoom(participant), EventNewMessage, out)
		}
	}
}

// Typing records a typing signal for the conversation.
func (r *Router) Typing(sess domain.Session, p TypingPayload) {
	if p.ConversationID == "" || p.UserID == "" {
		r.drop(ClientTyping, "conversationId or userId missing")
		return
	}
	r.typing.Signal(domain.ConversationRoom(p.ConversationID), p.UserID, p.Username, sess.ID)
}

// StopTyping clears a typing signal for the conversation.
func (r *Router) StopTyping(sess domain.Session, p TypingPayload) {
	if p.ConversationID == "" || p.UserID == "" {
		r.drop(ClientStopTyping, "conversationId or userId missing")
		return
	}
	r.typing.Stop(domain.ConversationRoom(p.ConversationID), p.UserID)
}

// ConversationStatus announces an accepted or rejected contact request to
// every connected session. Other status values are dropped.
func (r *Router) ConversationStatus(_ domain.Session, p StatusPayload) {
	switch p.Status {
	case StatusAccepted, StatusRejected:
	case "":
		r.drop(ClientConversationStatus, "status missing")
		return
	default:
		r.drop(ClientConversationStatus, "unknown status "+p.Status)
		return
	}
	r.announce.ConversationStatus(events.ConversationStatusEvent{
		ConversationID: p.ConversationID,
		Status:         p.Status,
		UserID:         p.UserID,
	})
}

// JoinLocation adds the session to an area room and broadcasts the new
// presence snapshot.
func (r *Router) JoinLocation(sess domain.Session, p LocationPayload) {
	if p.Area == "" {
		r.drop(ClientJoinLocation, "area missing")
		return
	}
	r.location.AddMember(p.Area, sess.MemberID(), sess.ID, p.Username)
}

// LeaveLocation removes the session from an area room and broadcasts the new
// presence snapshot.
func (r *Router) LeaveLocation(sess domain.Session, p LocationPayload) {
	if p.Area == "" {
		r.drop(ClientLeaveLocation, "area missing")
		return
	}
	r.location.RemoveMember(p.Area, sess.MemberID(), sess.ID)
}

// LocationUsers answers an on-demand presence query. The snapshot goes to the
// requesting session only.
func (r *Router) LocationUsers(sess domain.Session, p LocationPayload) {
	if p.Area == "" {
		r.drop(ClientGetLocationUsers, "area missing")
		return
	}
	r.sink.Send(sess.ID, EventLocationUsers, r.location.Snapshot(p.Area))
}

// SendLocationMessage fans a location chat message out to the area room.
func (r *Router) SendLocationMessage(sess domain.Session, p LocationMessagePayload) {
	if p.Area == "" || len(p.Message) == 0 {
		r.drop(ClientSendLocationMessage, "area or message missing")
		return
	}
	room := domain.LocationRoom(p.Area)
	r.roster.Broadcast(room, EventLocationNewMessage, LocationMessageEvent{
		Area:      room.Key,
		SenderID:  sess.MemberID(),
		Message:   p.Message,
		Timestamp: time.Now(),
	})
}

// LocationTyping notifies the area room, excluding the sender, that a user is
// typing. Location typing carries no quiet-period timer; the stop signal is
// explicit.
func (r *Router) LocationTyping(sess domain.Session, p LocationPayload) {
	r.locationTypingEvent(sess, p, ClientLocationTyping, EventLocationUserTyping)
}

// LocationStopTyping notifies the area room, excluding the sender, that a
// user stopped typing.
func (r *Router) LocationStopTyping(sess domain.Session, p LocationPayload) {
	r.locationTypingEvent(sess, p, ClientLocationStopTyping, EventLocationUserStoppedTyping)
}

func (r *Router) locationTypingEvent(sess domain.Session, p LocationPayload, inbound, outbound string) {
	if p.Area == "" || p.UserID == "" {
		r.drop(inbound, "area or userId missing")
		return
	}
	room := domain.LocationRoom(p.Area)
	r.roster.BroadcastExcept(room, sess.ID, outbound, LocationTypingEvent{
		Area:     room.Key,
		UserID:   p.UserID,
		Username: p.Username,
	})
}

func (r *Router) drop(eventType, reason string) {
	r.logger.Debug("Dropped malformed event", "type", eventType, "reason", reason)
}

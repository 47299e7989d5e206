package gateway

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	domain "github.com/example/presence-relay/domain/relay"
	"github.com/example/presence-relay/modules/relay"
)

// handleWebSocket owns one connection for its whole lifetime: register with
// the hub, run the session through the relay lifecycle, then loop reading
// envelopes and dispatching them until the peer goes away.
func (m *Module) handleWebSocket(c *websocket.Conn) {
	sess := domain.Session{
		ID:          uuid.New().String(),
		UserID:      c.Query("userId"),
		DisplayName: c.Query("username"),
	}

	router := m.relay.Router()

	m.hub.Register(sess.ID, c)
	router.Connect(sess)

	defer func() {
		router.Disconnect(sess)
		m.hub.Unregister(sess.ID)
	}()

	m.hub.Send(sess.ID, relay.EventConnected, relay.ConnectedEvent{
		SessionID: sess.ID,
		UserID:    sess.UserID,
	})

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			break
		}

		var event relay.ClientEvent
		if err := json.Unmarshal(data, &event); err != nil {
			m.logger.Debug("Dropped unparseable frame", "sessionID", sess.ID, "error", err)
			continue
		}

		m.dispatch(sess, event)
	}
}

// dispatch decodes the payload for the event type and hands it to the router.
// Unknown types and undecodable payloads are dropped; the relay never replies
// to a malformed event.
func (m *Module) dispatch(sess domain.Session, event relay.ClientEvent) {
	router := m.relay.Router()

	switch event.Type {
	case relay.ClientJoinConversation:
		var p relay.ConversationPayload
		if m.decode(sess, event, &p) {
			router.JoinConversation(sess, p)
		}
	case relay.ClientLeaveConversation:
		var p relay.ConversationPayload
		if m.decode(sess, event, &p) {
			router.LeaveConversation(sess, p)
		}
	case relay.ClientSendMessage:
		var p relay.MessagePayload
		if m.decode(sess, event, &p) {
			router.SendMessage(sess, p)
		}
	case relay.ClientTyping:
		var p relay.TypingPayload
		if m.decode(sess, event, &p) {
			router.Typing(sess, p)
		}
	case relay.ClientStopTyping:
		var p relay.TypingPayload
		if m.decode(sess, event, &p) {
			router.StopTyping(sess, p)
		}
	case relay.ClientConversationStatus:
		var p relay.StatusPayload
		if m.decode(sess, event, &p) {
			router.ConversationStatus(sess, p)
		}
	case relay.ClientJoinLocation:
		var p relay.LocationPayload
		if m.decode(sess, event, &p) {
			router.JoinLocation(sess, p)
		}
	case relay.ClientLeaveLocation:
		var p relay.LocationPayload
		if m.decode(sess, event, &p) {
			router.LeaveLocation(sess, p)
		}
	case relay.ClientGetLocationUsers:
		var p relay.LocationPayload
		if m.decode(sess, event, &p) {
			router.LocationUsers(sess, p)
		}
	case relay.ClientSendLocationMessage:
		var p relay.LocationMessagePayload
		if m.decode(sess, event, &p) {
			router.SendLocationMessage(sess, p)
		}
	case relay.ClientLocationTyping:
		var p relay.LocationPayload
		if m.decode(sess, event, &p) {
			router.LocationTyping(sess, p)
		}
	case relay.ClientLocationStopTyping:
		var p relay.LocationPayload
		if m.decode(sess, event, &p) {
			router.LocationStopTyping(sess, p)
		}
	default:
		m.logger.Debug("Dropped unknown event type", "sessionID", sess.ID, "type", event.Type)
	}
}

func (m *Module) decode(sess domain.Session, event relay.ClientEvent, dst any) bool {
	if len(event.Payload) == 0 {
		m.logger.Debug("Dropped event with empty payload", "sessionID", sess.ID, "type", event.Type)
		return false
	}
	if err := json.Unmarshal(event.Payload, dst); err != nil {
		m.logger.Debug("Dropped event with bad payload",
			"sessionID", sess.ID, "type", event.Type, "error", err)
		return false
	}
	return true
}

// handleHealth handles GET /health.
func (m *Module) handleHealth(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/v1/stats.
func (m *Module) handleStats(c *fiber.Ctx) error {
	return c.JSON(StatsResponse{
		Connections:   m.hub.ClientCount(),
		OnlineUsers:   m.relay.OnlineUserCount(),
		ActiveRooms:   m.relay.ActiveRoomCount(),
		PendingTyping: m.relay.PendingTypingCount(),
	})
}

// handleOnlineUsers handles GET /api/v1/online.
func (m *Module) handleOnlineUsers(c *fiber.Ctx) error {
	users := m.relay.OnlineUsers()
	return c.JSON(OnlineUsersResponse{Users: users, Count: len(users)})
}

// handleLocationSnapshot handles GET /api/v1/locations/:area.
func (m *Module) handleLocationSnapshot(c *fiber.Ctx) error {
	area := c.Params("area")
	if area == "" {
		return fiber.NewError(fiber.StatusBadRequest, "area is required")
	}
	return c.JSON(m.relay.LocationSnapshot(area))
}

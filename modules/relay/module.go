package relay

import (
	"context"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"

	domain "github.com/example/presence-relay/domain/relay"
	"github.com/example/presence-relay/events"
)

// Module is the relay core: session registry, room membership index, typing
// tracker, location presence tracker and the event router over them. Room and
// session scoped events go straight to the transport sink; global fan-outs
// are published on the EventBus and delivered by the broadcast module.
type Module struct {
	registry *Registry
	roster   *Roster
	typing   *TypingTracker
	location *LocationTracker
	router   *Router
	eventBus mono.EventBus
	logger   types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Announcer                  = (*Module)(nil)
)

// NewModule creates the relay module delivering through the given sink.
func NewModule(sink EventSink, logger types.Logger) *Module {
	m := &Module{
		registry: NewRegistry(),
		logger:   logger,
	}
	m.roster = NewRoster(sink)
	m.typing = NewTypingTracker(m.roster)
	m.location = NewLocationTracker(m.roster)
	m.router = NewRouter(m.registry, m.roster, m.typing, m.location, sink, m, logger)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// Start initializes the module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Relay module started")
	return nil
}

// Stop cancels outstanding typing timers and shuts the module down.
func (m *Module) Stop(_ context.Context) error {
	m.typing.Shutdown()
	m.logger.Info("Relay module stopped")
	return nil
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.UserOnlineV1.ToBase(),
		events.UserOfflineV1.ToBase(),
		events.MessagePostedV1.ToBase(),
		events.ConversationStatusV1.ToBase(),
	}
}

// Health reports the relay's snapshot counters. These are read-only queries
// with no side effects, safe to call from a reporting path at any time.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"online_users":   m.registry.UserCount(),
			"active_rooms":   m.roster.RoomCount(),
			"pending_typing": m.typing.PendingCount(),
		},
	}
}

// Router returns the event router the transport dispatches into.
func (m *Module) Router() *Router {
	return m.router
}

// OnlineUsers returns the identities of all currently-online users.
func (m *Module) OnlineUsers() []string {
	return m.registry.OnlineUsers()
}

// OnlineUserCount returns the number of online users.
func (m *Module) OnlineUserCount() int {
	return m.registry.UserCount()
}

// ActiveRoomCount returns the number of non-empty rooms.
func (m *Module) ActiveRoomCount() int {
	return m.roster.RoomCount()
}

// PendingTypingCount returns the number of live typing entries.
func (m *Module) PendingTypingCount() int {
	return m.typing.PendingCount()
}

// LocationSnapshot answers an on-demand presence query for an area room.
func (m *Module) LocationSnapshot(area string) domain.PresenceSnapshot {
	return m.location.Snapshot(area)
}

// Announcer implementation: global fan-outs go through the EventBus so the
// broadcast module can deliver them to every connected session.

// UserOnline publishes the user-online transition.
func (m *Module) UserOnline(userID string) {
	if m.eventBus == nil {
		return
	}
	event := events.UserPresenceEvent{UserID: userID, Timestamp: time.Now()}
	if err := events.UserOnlineV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserOnline event", "userID", userID, "error", err)
	}
}

// UserOffline publishes the user-offline transition.
func (m *Module) UserOffline(userID string) {
	if m.eventBus == nil {
		return
	}
	event := events.UserPresenceEvent{UserID: userID, Timestamp: time.Now()}
	if err := events.UserOfflineV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish UserOffline event", "userID", userID, "error", err)
	}
}

// MessagePosted publishes the global copy of a conversation message.
func (m *Module) MessagePosted(event events.MessagePostedEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.MessagePostedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish MessagePosted event", "error", err)
	}
}

// ConversationStatus publishes a conversation status change.
func (m *Module) ConversationStatus(event events.ConversationStatusEvent) {
	if m.eventBus == nil {
		return
	}
	if err := events.ConversationStatusV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish ConversationStatus event", "error", err)
	}
}

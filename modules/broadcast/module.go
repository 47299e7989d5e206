package broadcast

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/presence-relay/events"
	"github.com/example/presence-relay/modules/relay"
)

// Module runs the WebSocket hub and consumes the relay's global events,
// delivering them to every connected session. Room-scoped events never pass
// through here; the relay pushes those into the hub directly.
type Module struct {
	hub       *Hub
	cancelHub context.CancelFunc
	logger    types.Logger
}

// Compile-time interface checks.
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new broadcast module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		hub:    NewHub(logger),
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "broadcast"
}

// Start runs the hub.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	m.logger.Info("Broadcast module started")
	return nil
}

// Stop shuts the hub down and waits for its write pumps to drain.
func (m *Module) Stop(_ context.Context) error {
	clientCount := m.hub.ClientCount()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Broadcast module stopped", "clients", clientCount)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
		},
	}
}

// RegisterEventConsumers subscribes to the relay's global fan-out events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserOnlineV1, m.handleUserOnline, m,
	); err != nil {
		return fmt.Errorf("failed to register UserOnline consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.UserOfflineV1, m.handleUserOffline, m,
	); err != nil {
		return fmt.Errorf("failed to register UserOffline consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessagePostedV1, m.handleMessagePosted, m,
	); err != nil {
		return fmt.Errorf("failed to register MessagePosted consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.ConversationStatusV1, m.handleConversationStatus, m,
	); err != nil {
		return fmt.Errorf("failed to register ConversationStatus consumer: %w", err)
	}

	m.logger.Info("Registered broadcast event consumers")
	return nil
}

func (m *Module) handleUserOnline(_ context.Context, event events.UserPresenceEvent, _ *mono.Msg) error {
	m.hub.SendAll(relay.EventUserOnline, event)
	return nil
}

func (m *Module) handleUserOffline(_ context.Context, event events.UserPresenceEvent, _ *mono.Msg) error {
	m.hub.SendAll(relay.EventUserOffline, event)
	return nil
}

func (m *Module) handleMessagePosted(_ context.Context, event events.MessagePostedEvent, _ *mono.Msg) error {
	m.hub.SendAll(relay.EventNewMessage, event)
	return nil
}

func (m *Module) handleConversationStatus(_ context.Context, event events.ConversationStatusEvent, _ *mono.Msg) error {
	switch event.Status {
	case relay.StatusAccepted:
		m.hub.SendAll(relay.EventContactRequestAccepted, event)
	case relay.StatusRejected:
		m.hub.SendAll(relay.EventContactRequestRejected, event)
	default:
		m.logger.Debug("Ignoring conversation status", "status", event.Status)
	}
	return nil
}

// GetHub returns the WebSocket hub for the relay and gateway modules to use.
func (m *Module) GetHub() *Hub {
	return m.hub
}

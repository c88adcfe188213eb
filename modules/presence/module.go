package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/magbay/LAN-Chat/domain/chat"
	"github.com/magbay/LAN-Chat/events"
)

// Module owns the chat room and the hub that serializes access to it.
type Module struct {
	room      *Room
	hub       *Hub
	eventBus  mono.EventBus
	cancelHub context.CancelFunc
	logger    types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.EventBusAwareModule   = (*Module)(nil)
	_ mono.EventEmitterModule    = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates the presence module with an empty room.
func NewModule(cfg RoomConfig, logger types.Logger) *Module {
	room := NewRoom(cfg, logger)
	m := &Module{
		room:   room,
		hub:    NewHub(room, logger),
		logger: logger,
	}
	room.SetObserver(m)
	return m
}

// Name returns the module name.
func (m *Module) Name() string {
	return "presence"
}

// SetEventBus receives the EventBus from the framework.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module can emit.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.PeerJoinedV1.ToBase(),
		events.PeerLeftV1.ToBase(),
		events.MessageBroadcastV1.ToBase(),
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetRoster,
		json.Unmarshal,
		json.Marshal,
		m.handleGetRoster,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetRoster, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceRandomNickname,
		json.Unmarshal,
		json.Marshal,
		m.handleRandomNickname,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceRandomNickname, err)
	}

	m.logger.Info("Registered presence services", "services", []string{ServiceGetRoster, ServiceRandomNickname})
	return nil
}

// Start runs the hub loop.
func (m *Module) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	m.logger.Info("Presence module started")
	return nil
}

// Stop closes every connection and waits for the hub loop to exit.
func (m *Module) Stop(_ context.Context) error {
	peers := m.room.Len()
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	m.logger.Info("Presence module stopped", "peers", peers)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"peers":       m.room.Len(),
			"connections": m.hub.ClientCount(),
		},
	}
}

// GetHub returns the hub for the transport module.
func (m *Module) GetHub() *Hub {
	return m.hub
}

func (m *Module) handleGetRoster(_ context.Context, _ GetRosterRequest, _ *mono.Msg) (GetRosterResponse, error) {
	snap := m.room.Snapshot()
	return GetRosterResponse{Nicknames: snap.Nicknames, Count: snap.Count}, nil
}

func (m *Module) handleRandomNickname(_ context.Context, _ RandomNicknameRequest, _ *mono.Msg) (RandomNicknameResponse, error) {
	return RandomNicknameResponse{Nickname: chat.RandomNickname()}, nil
}

// PeerJoined implements Observer.
func (m *Module) PeerJoined(session chat.Session, peers int) {
	if m.eventBus == nil {
		return
	}
	event := events.PeerJoinedEvent{
		SessionID: session.ID,
		Nickname:  session.Nickname,
		PeerCount: peers,
		Timestamp: time.Now().UTC(),
	}
	if err := events.PeerJoinedV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish PeerJoined event", "error", err)
	}
}

// PeerLeft implements Observer.
func (m *Module) PeerLeft(session chat.Session, peers int) {
	if m.eventBus == nil {
		return
	}
	event := events.PeerLeftEvent{
		SessionID: session.ID,
		Nickname:  session.Nickname,
		PeerCount: peers,
		Timestamp: time.Now().UTC(),
	}
	if err := events.PeerLeftV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish PeerLeft event", "error", err)
	}
}

// MessageBroadcast implements Observer.
func (m *Module) MessageBroadcast(sessionID string, msg chat.Message, recipients int) {
	if m.eventBus == nil {
		return
	}
	event := events.MessageBroadcastEvent{
		SessionID:  sessionID,
		Nickname:   msg.Nickname,
		TextLength: len([]rune(msg.Text)),
		Recipients: recipients,
		Timestamp:  msg.Timestamp,
	}
	if err := events.MessageBroadcastV1.Publish(m.eventBus, event, nil); err != nil {
		m.logger.Warn("Failed to publish MessageBroadcast event", "error", err)
	}
}

package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"

	"github.com/magbay/LAN-Chat/events"
)

// Module consumes room events and serves aggregated statistics.
type Module struct {
	tracker *Tracker
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.EventConsumerModule   = (*Module)(nil)
	_ mono.ServiceProviderModule = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new activity module.
func NewModule(logger types.Logger) *Module {
	return &Module{
		tracker: NewTracker(time.Now()),
		logger:  logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "activity"
}

// Start is a no-op; the tracker is ready at construction.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("Activity module started")
	return nil
}

// Stop logs the final counters.
func (m *Module) Stop(_ context.Context) error {
	s := m.tracker.Snapshot()
	m.logger.Info("Activity module stopped", "messages", s.Messages, "joins", s.Joins, "peakPeers", s.PeakPeers)
	return nil
}

// Health returns the health status.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	s := m.tracker.Snapshot()
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"messages":   s.Messages,
			"peak_peers": s.PeakPeers,
		},
	}
}

// RegisterEventConsumers subscribes to the presence module's events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerJoinedV1, m.handlePeerJoined, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerJoined consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.PeerLeftV1, m.handlePeerLeft, m,
	); err != nil {
		return fmt.Errorf("failed to register PeerLeft consumer: %w", err)
	}

	if err := helper.RegisterTypedEventConsumer(
		registry, events.MessageBroadcastV1, m.handleMessageBroadcast, m,
	); err != nil {
		return fmt.Errorf("failed to register MessageBroadcast consumer: %w", err)
	}

	m.logger.Info("Registered event consumers", "events", "PeerJoined, PeerLeft, MessageBroadcast")
	return nil
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		ServiceGetStats,
		json.Unmarshal,
		json.Marshal,
		m.handleGetStats,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetStats, err)
	}
	return nil
}

// Tracker returns the underlying tracker.
func (m *Module) Tracker() *Tracker {
	return m.tracker
}

func (m *Module) handlePeerJoined(_ context.Context, event events.PeerJoinedEvent, _ *mono.Msg) error {
	m.tracker.RecordJoin(event.PeerCount)
	m.logger.Debug("Peer joined", "nickname", event.Nickname, "peers", event.PeerCount)
	return nil
}

func (m *Module) handlePeerLeft(_ context.Context, event events.PeerLeftEvent, _ *mono.Msg) error {
	m.tracker.RecordLeave(event.PeerCount)
	m.logger.Debug("Peer left", "nickname", event.Nickname, "peers", event.PeerCount)
	return nil
}

func (m *Module) handleMessageBroadcast(_ context.Context, event events.MessageBroadcastEvent, _ *mono.Msg) error {
	m.tracker.RecordMessage(event.TextLength, event.Recipients, event.Timestamp)
	return nil
}

func (m *Module) handleGetStats(_ context.Context, _ GetStatsRequest, _ *mono.Msg) (GetStatsResponse, error) {
	return GetStatsResponse{Stats: m.tracker.Snapshot()}, nil
}

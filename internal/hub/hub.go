// Package hub implements the broadcast session hub: the session registry,
// the channel store, the serialized event dispatcher, the addressed fan-out
// over a shared broadcast topic, and the keep-alive loop. The Hub is the
// single owner of all shared chat state; the transport layer only pushes
// decoded events in and consumes addressed envelopes out.
package hub

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/doc82/bruce-messenger-fun/internal/protocol"
	"github.com/doc82/bruce-messenger-fun/internal/pubsub"
)

// ResponseTopic is the single broadcast topic every connection subscribes
// to. Envelopes are addressed; subscribers filter for their own session id.
const ResponseTopic = "hub.responses"

var (
	// ErrInvalidHeartbeatInterval is a configuration fault: the keep-alive
	// loop cannot run without a positive interval, and there is no disabled
	// mode.
	ErrInvalidHeartbeatInterval = errors.New("heartbeat interval must be a positive duration")

	// ErrInboundClosed reports that the last producer of inbound events went
	// away, which ends the hub's run loop.
	ErrInboundClosed = errors.New("inbound event queue closed")
)

// Config carries the tunables the hub consumes.
type Config struct {
	// HeartbeatInterval is the keep-alive tick period. Required, positive.
	HeartbeatInterval time.Duration
	// BroadcastCapacity bounds each subscriber's delivery buffer. A consumer
	// that falls behind silently misses envelopes rather than blocking the
	// dispatcher.
	BroadcastCapacity int
	// InboundQueueSize bounds the serialized inbound event queue.
	InboundQueueSize int
	// MaxMessageBody is the maximum accepted message body length in bytes.
	MaxMessageBody int
	// MaxPageSize caps how many messages a single channel read returns.
	MaxPageSize int
}

// Hub coordinates all connected sessions. It owns the registry and the
// channel store for the life of the process and serializes every mutation
// through a single dispatcher goroutine.
type Hub struct {
	heartbeatInterval time.Duration
	broadcastCapacity int
	maxMessageBody    int

	bus      pubsub.Bus
	inbound  chan protocol.RequestPacket
	sessions *SessionRegistry
	channels *ChannelStore

	// listeners counts active broadcast subscriptions. When it is zero the
	// fan-out primitives are no-ops: nothing queues for future subscribers.
	listeners atomic.Int64
}

// New builds a hub over the given broadcast bus. A missing or non-positive
// heartbeat interval is a fatal configuration fault, not a silently skipped
// heartbeat.
func New(cfg Config, bus pubsub.Bus) (*Hub, error) {
	if cfg.HeartbeatInterval <= 0 {
		return nil, ErrInvalidHeartbeatInterval
	}
	if cfg.BroadcastCapacity <= 0 {
		cfg.BroadcastCapacity = 16
	}
	if cfg.InboundQueueSize <= 0 {
		cfg.InboundQueueSize = 256
	}
	if cfg.MaxMessageBody <= 0 {
		cfg.MaxMessageBody = 256
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}

	return &Hub{
		heartbeatInterval: cfg.HeartbeatInterval,
		broadcastCapacity: cfg.BroadcastCapacity,
		maxMessageBody:    cfg.MaxMessageBody,
		bus:               bus,
		inbound:           make(chan protocol.RequestPacket, cfg.InboundQueueSize),
		sessions:          NewSessionRegistry(),
		channels:          NewChannelStore(cfg.MaxPageSize),
	}, nil
}

// Run races the dispatcher's drain-forever loop against the keep-alive
// tick-forever loop; whichever stops first ends the hub. Both loops are
// designed to run indefinitely, so Run returning always signals a fatal
// condition (or the context being canceled by the caller).
func (h *Hub) Run(ctx context.Context) error {
	errs := make(chan error, 2)

	go func() {
		errs <- h.keepAlive(ctx)
	}()
	go func() {
		errs <- h.dispatch(ctx)
	}()

	err := <-errs
	slog.Info("Hub run loop ended", "error", err)
	return err
}

// Enqueue places an inbound event on the serialized dispatch queue. Events
// from one connection are processed in the order they were enqueued.
func (h *Hub) Enqueue(ctx context.Context, pkt protocol.RequestPacket) error {
	select {
	case h.inbound <- pkt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe attaches a new consumer to the broadcast topic and returns the
// stream of addressed envelopes. The subscription lives until ctx is
// canceled. Envelopes published before a consumer subscribes are never
// replayed for it.
func (h *Hub) Subscribe(ctx context.Context) (<-chan protocol.ResponsePacket, error) {
	out := make(chan protocol.ResponsePacket, h.broadcastCapacity)

	err := h.bus.Subscribe(ctx, ResponseTopic, func(_ context.Context, msg pubsub.Message) error {
		pkt, err := decodePacket(msg)
		if err != nil {
			return err
		}
		select {
		case out <- pkt:
		default:
			// Lagged consumer: it misses this envelope instead of
			// throttling the dispatcher.
			slog.Warn("Subscriber lagging, dropping envelope",
				"recipient", msg.Recipient, "origin", msg.Origin)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.listeners.Add(1)
	go func() {
		<-ctx.Done()
		h.listeners.Add(-1)
	}()

	return out, nil
}

// HandleDisconnect removes a session on connection teardown. It is invoked
// by the transport layer, not by a wire event. If a record was present,
// every remaining session is told; a disconnect for an unknown id is a
// silent no-op.
func (h *Hub) HandleDisconnect(ctx context.Context, sessionID uuid.UUID) {
	if _, ok := h.sessions.Remove(sessionID); !ok {
		return
	}
	slog.Info("Session disconnected", "session_id", sessionID)
	h.sendExceptSession(ctx, sessionID, protocol.UserDisconnectOutput{UserID: sessionID})
}

// DefaultChannel exposes the default channel's identity.
func (h *Hub) DefaultChannel() protocol.ChannelModel {
	summary := h.channels.Default()
	return protocol.ChannelModel{ID: summary.ID, Name: summary.Name}
}

// Sessions exposes the registry for inspection.
func (h *Hub) Sessions() *SessionRegistry {
	return h.sessions
}

// Channels exposes the channel store for inspection and pagination.
func (h *Hub) Channels() *ChannelStore {
	return h.channels
}

// dispatch drains the inbound queue strictly in arrival order. Each event is
// processed to completion before the next is read; this is the hub's sole
// mutual-exclusion mechanism for business logic.
func (h *Hub) dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case pkt, ok := <-h.inbound:
			if !ok {
				return ErrInboundClosed
			}
			h.handlePacket(ctx, pkt)
		}
	}
}

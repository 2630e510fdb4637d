package hub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/doc82/bruce-messenger-fun/internal/protocol"
	"github.com/doc82/bruce-messenger-fun/internal/pubsub"
)

// The two delivery primitives. All outbound envelopes travel over the one
// shared broadcast topic; addressing is carried on the envelope and applied
// by the consumer. When no subscriber exists both primitives drop the event
// outright: delivery is at most once, with no backlog for late joiners.

// sendToSession produces exactly one envelope addressed to the target
// session. The target is also the origin: today's call sites are all
// confirmations, echoes, errors, and keep-alive ticks caused by the target
// itself.
func (h *Hub) sendToSession(ctx context.Context, sessionID uuid.UUID, out protocol.Output) {
	if h.listeners.Load() == 0 {
		return
	}
	h.publish(ctx, protocol.NewResponsePacket(sessionID, sessionID, out))
}

// sendExceptSession produces one envelope per registered session other than
// the excluded one, each carrying the excluded session as origin.
func (h *Hub) sendExceptSession(ctx context.Context, excludedID uuid.UUID, out protocol.Output) {
	if h.listeners.Load() == 0 {
		return
	}
	for _, session := range h.sessions.Snapshot() {
		if session.ID == excludedID {
			continue
		}
		h.publish(ctx, protocol.NewResponsePacket(session.ID, excludedID, out))
	}
}

// sendAll delivers an envelope to every registered session, direct-to-each
// rather than as a single shared envelope. Used by the keep-alive loop.
func (h *Hub) sendAll(ctx context.Context, out protocol.Output) {
	if h.listeners.Load() == 0 {
		return
	}
	for _, session := range h.sessions.Snapshot() {
		h.publish(ctx, protocol.NewResponsePacket(session.ID, session.ID, out))
	}
}

// sendError reports a business-rule violation to the offending session only.
func (h *Hub) sendError(ctx context.Context, sessionID uuid.UUID, code protocol.ErrorCode) {
	h.sendToSession(ctx, sessionID, protocol.ErrorOutput{Code: code})
}

func (h *Hub) publish(ctx context.Context, pkt protocol.ResponsePacket) {
	msg, err := encodePacket(pkt)
	if err != nil {
		slog.Error("Failed to encode envelope", "recipient", pkt.RecipientID, "error", err)
		return
	}
	if err := h.bus.Publish(ctx, msg); err != nil {
		slog.Error("Failed to publish envelope", "recipient", pkt.RecipientID, "error", err)
	}
}

func encodePacket(pkt protocol.ResponsePacket) (pubsub.Message, error) {
	payload, err := protocol.EncodeOutput(pkt.Output)
	if err != nil {
		return pubsub.Message{}, err
	}
	return pubsub.Message{
		Topic:     ResponseTopic,
		Recipient: pkt.RecipientID.String(),
		Origin:    pkt.OriginID.String(),
		Payload:   payload,
	}, nil
}

func decodePacket(msg pubsub.Message) (protocol.ResponsePacket, error) {
	recipient, err := uuid.Parse(msg.Recipient)
	if err != nil {
		return protocol.ResponsePacket{}, fmt.Errorf("bad recipient id %q: %w", msg.Recipient, err)
	}
	origin, err := uuid.Parse(msg.Origin)
	if err != nil {
		return protocol.ResponsePacket{}, fmt.Errorf("bad origin id %q: %w", msg.Origin, err)
	}
	out, err := protocol.DecodeOutput(msg.Payload)
	if err != nil {
		return protocol.ResponsePacket{}, err
	}
	return protocol.NewResponsePacket(recipient, origin, out), nil
}

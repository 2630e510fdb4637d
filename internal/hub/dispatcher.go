package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/doc82/bruce-messenger-fun/internal/domain"
	"github.com/doc82/bruce-messenger-fun/internal/protocol"
)

// handlePacket routes one inbound event to its processor. Each event either
// fully applies or fully aborts before any state mutation; there is no
// partial-event rollback because there is nothing partial to roll back.
func (h *Hub) handlePacket(ctx context.Context, pkt protocol.RequestPacket) {
	switch input := pkt.Input.(type) {
	case protocol.JoinInput:
		h.processJoin(ctx, pkt.SessionID, input)
	case protocol.MessageInput:
		h.processMessage(ctx, pkt.SessionID, input)
	default:
		slog.Warn("Dropping packet with unknown input", "session_id", pkt.SessionID)
	}
}

// processJoin registers the session and announces it. Join is idempotent by
// overwrite: a second join for the same id re-announces under the new name
// rather than being rejected. Every registered session is implicitly a
// member of the single channel, so no membership record exists beyond the
// registry entry itself.
func (h *Hub) processJoin(ctx context.Context, sessionID uuid.UUID, input protocol.JoinInput) {
	session := h.sessions.Upsert(sessionID, input.UserName)
	slog.Info("Session joined", "session_id", sessionID, "name", session.Name)

	out := protocol.UserJoinedOutput{
		Channels: lo.Map(h.channels.Summaries(), func(c domain.ChannelSummary, _ int) protocol.ChannelModel {
			return protocol.ChannelModel{ID: c.ID, Name: c.Name}
		}),
		User: protocol.UserModel{ID: session.ID, Name: session.Name},
	}

	// Direct confirmation to the joiner, then the identical payload to
	// everyone else as an announcement.
	h.sendToSession(ctx, sessionID, out)
	h.sendExceptSession(ctx, sessionID, out)
}

// processMessage validates, stores, and fans out one chat message. Failures
// are reported to the sender only and leave no state behind.
func (h *Hub) processMessage(ctx context.Context, sessionID uuid.UUID, input protocol.MessageInput) {
	author, ok := h.sessions.Get(sessionID)
	if !ok {
		h.sendError(ctx, sessionID, protocol.ErrInvalidSession)
		return
	}

	// Body length is measured in UTF-8 bytes, not runes.
	if len(input.Body) == 0 || len(input.Body) > h.maxMessageBody {
		h.sendError(ctx, sessionID, protocol.ErrInvalidMessageRequest)
		return
	}

	channel := h.channels.Default()
	msg := domain.NewMessage(channel.ID, author, input.Body, time.Now().UTC())
	if err := h.channels.Append(channel.ID, msg); err != nil {
		// Unreachable while the seeded channel is the only addressable one,
		// but every failed message must still be reported to its sender.
		slog.Error("Failed to append message", "channel_id", channel.ID, "error", err)
		h.sendError(ctx, sessionID, protocol.ErrInvalidMessageRequest)
		return
	}

	payload := protocol.UserMessageOutput{
		Message: protocol.MessageModel{
			ID:        msg.ID,
			Body:      msg.Body,
			CreatedBy: msg.CreatedBy,
			CreatedAt: msg.CreatedAt,
		},
		Channel: protocol.ChannelModel{ID: channel.ID, Name: channel.Name},
	}

	// Echo to the sender as confirmation; broadcast to everyone else under
	// the distinct tag so clients can tell the two apart.
	h.sendToSession(ctx, sessionID, payload)
	h.sendExceptSession(ctx, sessionID, protocol.MessageOutput(payload))
}

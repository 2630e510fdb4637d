package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/doc82/bruce-messenger-fun/internal/hub"
	"github.com/doc82/bruce-messenger-fun/internal/protocol"
)

const writeTimeout = 10 * time.Second

// client is the middleman between one WebSocket connection and the hub. The
// read loop pushes decoded events onto the hub's queue; the write pump
// filters the broadcast stream for envelopes addressed to this session and
// serializes them onto the wire.
type client struct {
	sessionID uuid.UUID
	conn      *websocket.Conn
	hub       *hub.Hub
}

func newClient(sessionID uuid.UUID, conn *websocket.Conn, h *hub.Hub) *client {
	return &client{sessionID: sessionID, conn: conn, hub: h}
}

// run subscribes, pumps, and tears down. Whichever of the two pumps stops
// first cancels the shared context, which ends the other; disconnect cleanup
// then happens exactly once.
func (c *client) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	envelopes, err := c.hub.Subscribe(ctx)
	if err != nil {
		slog.Error("Failed to subscribe connection", "session_id", c.sessionID, "error", err)
		c.conn.Close(websocket.StatusInternalError, "subscription failed")
		return
	}

	slog.Info("Connection established", "session_id", c.sessionID)

	go c.writePump(ctx, cancel, envelopes)
	c.readLoop(ctx)
	cancel()

	// The subscription context is gone by now, so cleanup publishes under a
	// fresh one.
	c.hub.HandleDisconnect(context.Background(), c.sessionID)
	c.conn.Close(websocket.StatusNormalClosure, "")
	slog.Info("Connection closed", "session_id", c.sessionID)
}

// readLoop pumps frames from the WebSocket into the hub's inbound queue.
// Only text frames are accepted: a non-text frame, a decode failure, or a
// transport error ends this connection's inbound processing and is treated
// as a disconnect. Decode failures are never fatal to the hub itself.
func (c *client) readLoop(ctx context.Context) {
	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				slog.Info("WebSocket closed by client", "session_id", c.sessionID)
			} else if ctx.Err() == nil {
				slog.Warn("WebSocket read error", "session_id", c.sessionID, "error", err)
			}
			return
		}

		if msgType != websocket.MessageText {
			slog.Warn("Non-text frame received, closing connection", "session_id", c.sessionID)
			return
		}

		input, err := protocol.DecodeInput(data)
		if err != nil {
			slog.Warn("Undecodable frame, closing connection", "session_id", c.sessionID, "error", err)
			return
		}

		if err := c.hub.Enqueue(ctx, protocol.NewRequestPacket(c.sessionID, input)); err != nil {
			return
		}
	}
}

// writePump drains this connection's envelope stream, keeping only
// envelopes addressed to its session id. A terminal write failure cancels
// the connection context so the read loop unwinds as well.
func (c *client) writePump(ctx context.Context, cancel context.CancelFunc, envelopes <-chan protocol.ResponsePacket) {
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case pkt := <-envelopes:
			if pkt.RecipientID != c.sessionID {
				continue
			}

			data, err := protocol.EncodeOutput(pkt.Output)
			if err != nil {
				slog.Error("Failed to encode outbound frame", "session_id", c.sessionID, "error", err)
				continue
			}

			writeCtx, done := context.WithTimeout(ctx, writeTimeout)
			err = c.conn.Write(writeCtx, websocket.MessageText, data)
			done()
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("WebSocket write error", "session_id", c.sessionID, "error", err)
				}
				return
			}
		}
	}
}

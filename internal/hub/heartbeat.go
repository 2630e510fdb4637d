package hub

import (
	"context"
	"log/slog"
	"time"

	"github.com/doc82/bruce-messenger-fun/internal/protocol"
)

// keepAlive emits an advisory liveness tick to every registered session on a
// fixed interval, each as its own direct envelope. The tick carries no
// payload, does not evict idle sessions, and has no interaction with
// connection timeouts.
func (h *Hub) keepAlive(ctx context.Context) error {
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			slog.Debug("Emitting keep-alive tick", "sessions", h.sessions.Len())
			h.sendAll(ctx, protocol.KeepAliveTickOutput{})
		}
	}
}

// Package server is the transport layer in front of the hub: it accepts
// WebSocket connections, mints session ids, decodes inbound frames onto the
// hub's event queue, and writes each session's addressed envelopes back out.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/doc82/bruce-messenger-fun/internal/config"
	"github.com/doc82/bruce-messenger-fun/internal/hub"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	E   *echo.Echo
	cfg *config.Config
	hub *hub.Hub

	// connCtx parents every accepted connection. Canceling it unwinds all
	// open sockets, so shutdown does not wait out its timeout on idle
	// connections.
	connCtx    context.Context
	connCancel context.CancelFunc
}

// New wires the echo instance, middleware, and routes.
func New(cfg *config.Config, h *hub.Hub) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{E: e, cfg: cfg, hub: h, connCtx: ctx, connCancel: cancel}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.E.GET("/health", s.handleHealth)
	s.E.GET("/socket", s.handleSocket)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// handleSocket upgrades the connection, mints the session id, and runs the
// connection until either side of it terminates. Session identity is never
// supplied by the client.
func (s *Server) handleSocket(c echo.Context) error {
	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		// Origin checking is left to the deployment's reverse proxy.
		InsecureSkipVerify: true,
	})
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return err
	}

	client := newClient(uuid.New(), conn, s.hub)
	client.run(s.connCtx)
	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts it down
// gracefully with a timeout.
func (s *Server) Start() {
	go func() {
		if err := s.E.Start(s.cfg.Addr); err != nil && err != http.ErrServerClosed {
			s.E.Logger.Fatalf("shutting down the server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	// Unwind open WebSocket connections first; Shutdown cannot finish while
	// their hijacked connections are still up.
	s.connCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.E.Shutdown(ctx); err != nil {
		s.E.Logger.Fatal(err)
	}
}

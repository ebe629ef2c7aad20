// Package ws is the WebSocket command and event channel: clients send
// combat commands and receive every combat event as it is published.
package ws

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/kasuganosora/tilecombat/cache"
	"github.com/kasuganosora/tilecombat/config"
	"github.com/kasuganosora/tilecombat/game/sim"
	"go.uber.org/zap"
)

// Commander is the simulation as the WS layer sees it.
type Commander interface {
	Submit(ctx context.Context, cmd sim.Command) (sim.Result, error)
	Latest() sim.Snapshot
}

// Handler is the Gin handler for GET /ws.
type Handler struct {
	pubsub   cache.PubSub
	router   *Router
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a WebSocket Handler. sec.AllowedOrigins controls
// which origins are accepted; an empty slice permits all (development
// only).
func NewHandler(pubsub cache.PubSub, sec config.SecurityConfig, router *Router, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := sec.AllowedOrigins
	return &Handler{
		pubsub: pubsub,
		router: router,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return len(allowed) == 0 || slices.Contains(allowed, r.Header.Get("Origin"))
			},
		},
	}
}

// ServeWS upgrades the request and serves the session until it closes.
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	s := newSession(conn, h.logger)
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	if h.pubsub != nil {
		events, unsub, err := h.pubsub.Subscribe(ctx, cache.EventsChannel)
		if err != nil {
			h.logger.Error("ws subscribe failed", zap.Error(err))
			s.Close()
			return
		}
		defer unsub()
		go forward(ctx, s, events)
	}

	h.logger.Info("ws connected", zap.String("session", s.ID), zap.String("client_ip", c.ClientIP()))
	h.readPump(ctx, s)
	h.logger.Info("ws disconnected", zap.String("session", s.ID))
}

// forward relays published combat events to the session.
func forward(ctx context.Context, s *Session, events <-chan *cache.Message) {
	for {
		select {
		case msg, ok := <-events:
			if !ok {
				return
			}
			s.Send(&Packet{Type: "combat_event", Payload: []byte(msg.Payload)})
		case <-ctx.Done():
			return
		}
	}
}

// readPump reads messages and dispatches them until the connection drops.
func (h *Handler) readPump(ctx context.Context, s *Session) {
	defer s.Close()

	_ = s.conn.SetReadDeadline(deadline())
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(deadline())
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				h.logger.Warn("ws unexpected close", zap.String("session", s.ID), zap.Error(err))
			}
			return
		}
		_ = s.conn.SetReadDeadline(deadline())
		h.router.Dispatch(ctx, s, raw)
	}
}

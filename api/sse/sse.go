// Package sse streams combat events to browsers as server-sent events.
package sse

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/tilecombat/cache"
	"go.uber.org/zap"
)

const maxReplay = 100

// Handler handles the SSE endpoint.
type Handler struct {
	pubsub    cache.PubSub
	c         cache.Cache
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates a new SSE Handler. c may be nil, which disables
// replay.
func NewHandler(pubsub cache.PubSub, c cache.Cache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{pubsub: pubsub, c: c, keepalive: 30 * time.Second, logger: logger}
}

// ServeSSE handles GET /api/combat/events?replay=<n>. It first sends up
// to n of the most recent logged events, oldest first, then streams new
// ones as they are published.
func (h *Handler) ServeSSE(c *gin.Context) {
	replay, _ := strconv.Atoi(c.Query("replay"))
	replay = min(max(replay, 0), maxReplay)

	subCtx, subCancel := context.WithCancel(c.Request.Context())
	defer subCancel()

	msgCh, unsub, err := h.pubsub.Subscribe(subCtx, cache.EventsChannel)
	if err != nil {
		h.logger.Error("sse subscribe failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream unavailable"})
		return
	}
	defer unsub()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	if replay > 0 && h.c != nil {
		past, err := h.c.LRange(subCtx, cache.EventLogKey, 0, int64(replay-1))
		if err != nil {
			h.logger.Warn("sse replay failed", zap.Error(err))
		}
		slices.Reverse(past)
		for _, p := range past {
			fmt.Fprintf(c.Writer, "event: combat\ndata: %s\n\n", p)
		}
	}
	c.Writer.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: combat\ndata: %s\n\n", msg.Payload)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment for proxies.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-subCtx.Done():
			return
		}
	}
}

package ws

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandlerFunc processes a decoded WS message payload and returns the reply
// data.
type HandlerFunc func(ctx context.Context, s *Session, payload json.RawMessage) (any, error)

// Router dispatches incoming packets to registered handlers and sends
// each handler's result back as "<type>_result".
type Router struct {
	handlers map[string]HandlerFunc
	logger   *zap.Logger
}

// NewRouter creates a new Router.
func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
	}
}

// On registers a HandlerFunc for the given message type.
func (r *Router) On(msgType string, fn HandlerFunc) {
	r.handlers[msgType] = fn
}

// Dispatch decodes raw bytes, checks seq and invokes the handler.
func (r *Router) Dispatch(ctx context.Context, s *Session, raw []byte) {
	var pkt Packet
	if err := json.Unmarshal(raw, &pkt); err != nil {
		r.logger.Warn("malformed packet", zap.String("session", s.ID), zap.Error(err))
		s.Reply(0, "error", nil, err)
		return
	}

	// Monotonic seq (anti-replay). Seq 0 opts out.
	if pkt.Seq != 0 && pkt.Seq <= s.lastSeq {
		r.logger.Warn("replayed or out-of-order packet",
			zap.String("session", s.ID),
			zap.Uint64("seq", pkt.Seq),
			zap.Uint64("last_seq", s.lastSeq))
		return
	}
	if pkt.Seq != 0 {
		s.lastSeq = pkt.Seq
	}

	fn, ok := r.handlers[pkt.Type]
	if !ok {
		r.logger.Debug("unhandled message type", zap.String("type", pkt.Type), zap.String("session", s.ID))
		s.Reply(pkt.Seq, "error", nil, fmt.Errorf("unknown message type %q", pkt.Type))
		return
	}

	traceID := uuid.NewString()
	data, err := fn(context.WithValue(ctx, ctxKeyTraceID{}, traceID), s, pkt.Payload)
	if err != nil {
		r.logger.Debug("handler error",
			zap.String("type", pkt.Type),
			zap.String("session", s.ID),
			zap.String("trace_id", traceID),
			zap.Error(err))
	}
	s.Reply(pkt.Seq, pkt.Type+"_result", data, err)
}

type ctxKeyTraceID struct{}

// TraceIDFromCtx extracts the trace ID from a handler context.
func TraceIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyTraceID{}).(string); ok {
		return v
	}
	return ""
}

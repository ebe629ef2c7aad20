package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendChanBuf   = 256
	writeDeadline = 10 * time.Second
	readDeadline  = 60 * time.Second
	pingInterval  = 30 * time.Second
)

// Packet is the WS message envelope in both directions. Replies carry the
// seq of the request they answer.
type Packet struct {
	Seq     uint64          `json:"seq"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Session is one connected client.
type Session struct {
	ID      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	once    sync.Once
	lastSeq uint64
	logger  *zap.Logger
}

// newSession wraps conn and starts its write pump. A nil conn gives a
// session whose packets stay in the send queue.
func newSession(conn *websocket.Conn, logger *zap.Logger) *Session {
	s := &Session{
		ID:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendChanBuf),
		done: make(chan struct{}),
	}
	s.logger = logger.With(zap.String("session", s.ID))
	if conn != nil {
		go s.writePump()
	}
	return s
}

// writePump drains the send queue onto the connection and pings it.
func (s *Session) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer s.conn.Close()
	for {
		select {
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.logger.Warn("ws write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Send queues pkt without blocking. It is dropped if the queue is full or
// the session closed.
func (s *Session) Send(pkt *Packet) {
	if s.IsClosed() {
		return
	}
	data, err := json.Marshal(pkt)
	if err != nil {
		s.logger.Error("encode packet", zap.String("type", pkt.Type), zap.Error(err))
		return
	}
	select {
	case s.send <- data:
	case <-s.done:
	default:
		s.logger.Warn("send channel full, dropping packet", zap.String("type", pkt.Type))
	}
}

// Reply answers the request with the given seq. data is encoded as the
// payload; err, if set, fills the error field instead.
func (s *Session) Reply(seq uint64, typ string, data any, err error) {
	pkt := &Packet{Seq: seq, Type: typ}
	if err != nil {
		pkt.Error = err.Error()
	} else if data != nil {
		b, mErr := json.Marshal(data)
		if mErr != nil {
			pkt.Error = mErr.Error()
		} else {
			pkt.Payload = b
		}
	}
	s.Send(pkt)
}

// Close signals the write pump to shut down. Safe to call twice.
func (s *Session) Close() { s.once.Do(func() { close(s.done) }) }

func (s *Session) IsClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func deadline() time.Time { return time.Now().Add(readDeadline) }

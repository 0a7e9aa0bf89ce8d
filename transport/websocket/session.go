package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
	closeWait      = time.Second
	maxMessageSize = 4096

	CloseHeartbeat     = 4001
	CloseOriginBlocked = 4403

	reasonHeartbeat     = "PONG timeout"
	reasonOriginBlocked = "Origin not allowed"
	reasonBufferFull    = "send buffer full"
)

var (
	errSessionClosed  = errors.New("session is closed")
	errSendBufferFull = errors.New("send buffer is full")
)

var _ room.Connection = (*session)(nil)

// session - one websocket connection.
type session struct {
	id     string
	conn   *websocket.Conn
	logger *slog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	peerGone  atomic.Bool

	mu       sync.Mutex
	room     *room.Room
	watchdog *time.Timer
}

func newSession(id string, conn *websocket.Conn, logger *slog.Logger) *session {
	return &session{
		id:     id,
		conn:   conn,
		logger: logger.With("sessionID", id),

		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// SendJSON - queues v for the writer. A session that cannot keep up is closed.
func (that *session) SendJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case <-that.done:
		return errSessionClosed
	default:
	}

	select {
	case that.send <- payload:
		return nil
	case <-that.done:
		return errSessionClosed
	default:
		that.logger.Warn("send buffer full, closing session", "method", "SendJSON")
		that.Close(websocket.CloseTryAgainLater, reasonBufferFull)

		return errSendBufferFull
	}
}

// Close - sends a close frame with code and reason, then drops the transport. Safe to call repeatedly.
func (that *session) Close(code int, reason string) {
	that.closeOnce.Do(func() {
		that.disarmWatchdog()
		close(that.done)

		deadline := time.Now().Add(closeWait)
		if err := that.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline); err != nil {
			that.logger.Debug("failed to write close frame", "method", "Close", "error", err)
		}

		_ = that.conn.Close()
	})
}

// Alive - false once the session is closed or its transport has failed, even if teardown has not run yet.
func (that *session) Alive() bool {
	if that.peerGone.Load() {
		return false
	}

	select {
	case <-that.done:
		return false
	default:
		return true
	}
}

// markPeerGone - the transport failed, the seat may be taken over before leave runs.
func (that *session) markPeerGone() {
	that.peerGone.Store(true)
}

// writePump - the only goroutine writing data frames. It also drives the heartbeat.
func (that *session) writePump(pingInterval, pongTimeout time.Duration) {
	log := that.logger.With("method", "writePump")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case payload := <-that.send:
			if err := that.write(payload); err != nil {
				log.Debug("write failed", "error", err)
				that.markPeerGone()
				that.Close(websocket.CloseInternalServerErr, "")
				return
			}

		case <-ticker.C:
			payload, _ := json.Marshal(simpleMessage{Type: TypePing})
			if err := that.write(payload); err != nil {
				log.Debug("ping failed", "error", err)
				that.markPeerGone()
				that.Close(websocket.CloseInternalServerErr, "")
				return
			}

			that.armWatchdog(pongTimeout)

		case <-that.done:
			return
		}
	}
}

func (that *session) write(payload []byte) error {
	if err := that.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

// armWatchdog - closes the session unless a PONG arrives within timeout.
// A watchdog already pending keeps its deadline.
func (that *session) armWatchdog(timeout time.Duration) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.watchdog != nil {
		return
	}

	that.watchdog = time.AfterFunc(timeout, func() {
		that.logger.Info("heartbeat timed out", "method", "armWatchdog")
		that.Close(CloseHeartbeat, reasonHeartbeat)
	})
}

func (that *session) disarmWatchdog() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.watchdog != nil {
		that.watchdog.Stop()
		that.watchdog = nil
	}
}

func (that *session) setRoom(rm *room.Room) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.room = rm
}

// current - the room the session joined and the seat it holds there.
// The seat is re-read from the room because a supersede can take it away.
func (that *session) current() (*room.Room, entity.Seat) {
	that.mu.Lock()
	rm := that.room
	that.mu.Unlock()

	if rm == nil {
		return nil, entity.SeatNone
	}

	return rm, rm.SeatOf(that.id)
}

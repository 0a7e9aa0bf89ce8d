package websocket

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

const (
	DefaultPingInterval = 30 * time.Second
	DefaultPongTimeout  = 15 * time.Second
)

type roomRegistry interface {
	Authorize(ctx context.Context, roomID, token string) (*room.Room, error)
	MarkUsed(ctx context.Context, roomID string) error
	RemoveIfEmpty(ctx context.Context, rm *room.Room) (bool, error)
}

type Options struct {
	// Development accepts any Origin.
	Development    bool
	AllowedOrigins []string

	PingInterval time.Duration
	PongTimeout  time.Duration
}

type Server struct {
	logger   *slog.Logger
	registry roomRegistry
	limiter  service.RateLimiter
	options  Options

	upgrader       websocket.Upgrader
	allowedOrigins map[string]struct{}

	handlers map[string]func(ctx context.Context, s *session, msg *Message) error

	connections      map[string]*session
	connectionsMutex sync.RWMutex
}

func New(logger *slog.Logger, registry roomRegistry, limiter service.RateLimiter, options Options) *Server {
	if options.PingInterval <= 0 {
		options.PingInterval = DefaultPingInterval
	}

	if options.PongTimeout <= 0 {
		options.PongTimeout = DefaultPongTimeout
	}

	allowed := make(map[string]struct{}, len(options.AllowedOrigins))
	for _, origin := range options.AllowedOrigins {
		if normalized := pkg.Origin(origin); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	server := &Server{
		logger:   logger,
		registry: registry,
		limiter:  limiter,
		options:  options,

		// Origin is checked after the upgrade so the client receives a close code.
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		allowedOrigins: allowed,

		handlers:    make(map[string]func(context.Context, *session, *Message) error),
		connections: make(map[string]*session),
	}

	server.handlers[TypeJoin] = server.handleJoin
	server.handlers[TypePlace] = server.handlePlace
	server.handlers[TypeResign] = server.handleResign
	server.handlers[TypeNewGame] = server.handleNewGame
	server.handlers[TypePing] = server.handlePing
	server.handlers[TypePong] = server.handlePong

	return server
}

// ServeHTTP - upgrades the request and serves the session until the transport closes.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "error", err)
		return
	}

	s := newSession(uuid.NewString(), conn, that.logger)

	if !that.originAllowed(req) {
		log.Warn("origin not allowed", "origin", req.Header.Get("Origin"), "sessionID", s.id)
		s.Close(CloseOriginBlocked, reasonOriginBlocked)
		return
	}

	that.register(s)
	defer that.unregister(s)

	go s.writePump(that.options.PingInterval, that.options.PongTimeout)

	log.Info("websocket connected", "sessionID", s.id)

	ctx := req.Context()

	that.readLoop(ctx, s)
	that.leave(ctx, s)

	log.Info("websocket disconnected", "sessionID", s.id)
}

// Shutdown - closes every open session.
func (that *Server) Shutdown() {
	that.connectionsMutex.RLock()
	sessions := make([]*session, 0, len(that.connections))
	for _, s := range that.connections {
		sessions = append(sessions, s)
	}
	that.connectionsMutex.RUnlock()

	for _, s := range sessions {
		s.Close(websocket.CloseGoingAway, "server shutting down")
	}
}

// Sessions - number of open websocket sessions.
func (that *Server) Sessions() int {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return len(that.connections)
}

func (that *Server) register(s *session) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[s.id] = s
}

func (that *Server) unregister(s *session) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	delete(that.connections, s.id)
}

func (that *Server) readLoop(ctx context.Context, s *session) {
	log := that.logger.With("method", "readLoop", "sessionID", s.id)

	s.conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.Alive() && websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn("unexpected close", "error", err)
			}

			s.markPeerGone()
			s.Close(websocket.CloseNormalClosure, "")

			return
		}

		that.dispatch(ctx, s, data)
	}
}

// dispatch - decodes one frame and runs its handler. Failures are reported to the sender only.
func (that *Server) dispatch(ctx context.Context, s *session, data []byte) {
	log := that.logger.With("method", "dispatch", "sessionID", s.id)

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", "panic", r)
			that.sendError(s, fmt.Errorf("%w: internal error", apperror.ErrInvalidMessage))
		}
	}()

	message, err := decodeMessage(data)
	if err != nil {
		log.Warn("invalid message", "error", err)
		that.sendError(s, err)
		return
	}

	handler, ok := that.handlers[message.Type]
	if !ok {
		log.Warn("unknown message type", "type", message.Type)
		that.sendError(s, fmt.Errorf("%w: unknown type %q", apperror.ErrInvalidMessage, message.Type))
		return
	}

	if err = handler(ctx, s, message); err != nil {
		log.Debug("message rejected", "type", message.Type, "error", err)
		that.sendError(s, err)
	}
}

func (that *Server) sendError(s *session, err error) {
	message := ErrorMessage{
		Type: TypeError,
		Code: apperror.Code(err),
	}

	if apperror.IsKnown(err) {
		message.Message = err.Error()
	} else {
		that.logger.Error("internal error", "sessionID", s.id, "error", err)
	}

	_ = s.SendJSON(message)
}

// leave - releases everything the session held.
func (that *Server) leave(ctx context.Context, s *session) {
	log := that.logger.With("method", "leave", "sessionID", s.id)

	s.disarmWatchdog()
	that.limiter.Forget(s.id)

	rm, _ := s.current()
	if rm == nil {
		return
	}

	freed := rm.Disconnect(s.id)
	if freed != entity.SeatNone && rm.Occupied(freed.Opponent()) {
		log.Info("opponent left", "roomID", rm.ID(), "seat", freed)
		that.broadcast(rm, newEndMessage(room.End{Result: entity.ResultOpponentLeft}))
	}

	if !rm.IsEmpty() {
		return
	}

	// a JOIN racing with this departure may still take a seat, the registry re-checks atomically
	removed, err := that.registry.RemoveIfEmpty(context.WithoutCancel(ctx), rm)
	if err != nil {
		log.Error("failed to remove room", "roomID", rm.ID(), "error", err)
		return
	}

	if removed {
		log.Info("room closed", "roomID", rm.ID())
	}
}

func (that *Server) broadcast(rm *room.Room, v any) {
	for _, peer := range rm.Connections() {
		if err := peer.Conn.SendJSON(v); err != nil {
			that.logger.Debug("broadcast skipped peer", "roomID", rm.ID(), "sessionID", peer.SessionID, "error", err)
		}
	}
}

// broadcastState - STATE personalized with each recipient's seat.
func (that *Server) broadcastState(rm *room.Room) {
	state := rm.Snapshot()

	for _, peer := range rm.Connections() {
		if err := peer.Conn.SendJSON(newStateMessage(state, peer.Seat)); err != nil {
			that.logger.Debug("broadcast skipped peer", "roomID", rm.ID(), "sessionID", peer.SessionID, "error", err)
		}
	}
}

func (that *Server) originAllowed(req *http.Request) bool {
	if that.options.Development {
		return true
	}

	origin := req.Header.Get("Origin")
	if origin == "" {
		return true
	}

	normalized := pkg.Origin(origin)
	if normalized == "" {
		return false
	}

	if normalized == pkg.Origin(pkg.RequestScheme(req)+"://"+pkg.RequestHost(req, "")) {
		return true
	}

	_, ok := that.allowedOrigins[normalized]

	return ok
}

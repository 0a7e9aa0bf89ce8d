package room

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// Close codes sent to evicted connections.
const (
	CloseSuperseded = 4001
	ReasonSupersede = "superseded"
)

// Connection - the outbound half of a session as seen by a room.
type Connection interface {
	SendJSON(v any) error
	Close(code int, reason string)
	Alive() bool
}

// Peer - one registered connection.
type Peer struct {
	SessionID string
	Seat      entity.Seat
	Conn      Connection
}

// State - point in time copy of the room, safe to serialize.
type State struct {
	RoomID  string
	Board   [][]int
	Turn    entity.Seat
	Players entity.PlayersStatus
	Phase   string
	Winner  entity.Seat
	Line    entity.Line
}

type Move struct {
	Position entity.Position
	Seat     entity.Seat
	NextTurn entity.Seat
}

type End struct {
	Result entity.Result
	Line   entity.Line
}

// PlaceOutcome - Move always carries the placed stone, End is set once the game is over.
type PlaceOutcome struct {
	Move Move
	End  *End
}

// Room - one game between two seats.
// Place, Resign and Reset are applied strictly in arrival order.
type Room struct {
	id     string
	rules  gomoku.Rules
	logger *slog.Logger

	mu     sync.RWMutex
	board  *gomoku.Board
	turn   entity.Seat
	seats  map[entity.Seat]string
	conns  map[string]Connection
	phase  string
	winner entity.Seat
	line   entity.Line
	joined bool
	closed bool

	queueMu sync.Mutex
	tail    chan struct{}
}

func New(id string, rules gomoku.Rules, logger *slog.Logger) *Room {
	done := make(chan struct{})
	close(done)

	return &Room{
		id:     id,
		rules:  rules,
		logger: logger.With("roomID", id),

		board: rules.NewBoard(),
		turn:  entity.SeatBlack,
		seats: make(map[entity.Seat]string, len(entity.Seats)),
		conns: make(map[string]Connection),
		phase: entity.PhaseWaiting,

		tail: done,
	}
}

func (that *Room) ID() string {
	return that.id
}

// Admit - seats sessionID atomically: its current seat on re-join, otherwise black if free, then white.
func (that *Room) Admit(sessionID string, conn Connection) (entity.Seat, string, error) {
	seat, evicted, err := that.admit(sessionID, conn)
	if err != nil {
		return entity.SeatNone, "", err
	}

	evicted.close()

	return seat, evicted.sessionID, nil
}

func (that *Room) admit(sessionID string, conn Connection) (entity.Seat, eviction, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return entity.SeatNone, eviction{}, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, that.id)
	}

	seat := that.seatOfLocked(sessionID)
	if seat == entity.SeatNone {
		var ok bool
		if seat, ok = that.statusLocked().FreeSeat(); !ok {
			return entity.SeatNone, eviction{}, apperror.ErrRoomFull
		}
	}

	return seat, that.joinLocked(sessionID, seat, conn), nil
}

// Join - puts sessionID on seat. A different session holding the seat is closed and
// unregistered first, its id is returned.
func (that *Room) Join(sessionID string, seat entity.Seat, conn Connection) (string, error) {
	if !seat.IsValid() {
		return "", fmt.Errorf("%w: seat %q", apperror.ErrInvalidMessage, seat)
	}

	evicted, err := func() (eviction, error) {
		that.mu.Lock()
		defer that.mu.Unlock()

		if that.closed {
			return eviction{}, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, that.id)
		}

		return that.joinLocked(sessionID, seat, conn), nil
	}()
	if err != nil {
		return "", err
	}

	evicted.close()

	return evicted.sessionID, nil
}

// eviction - a superseded session. Its connection is closed once the room lock is released.
type eviction struct {
	sessionID string
	conn      Connection
}

func (that eviction) close() {
	if that.conn != nil {
		that.conn.Close(CloseSuperseded, ReasonSupersede)
	}
}

func (that *Room) joinLocked(sessionID string, seat entity.Seat, conn Connection) eviction {
	log := that.logger.With("method", "Join", "sessionID", sessionID, "seat", seat)

	var evicted eviction
	if holder := that.seats[seat]; holder != "" && holder != sessionID {
		evicted = eviction{sessionID: holder, conn: that.conns[holder]}
		delete(that.conns, holder)

		log.Info("seat superseded", "evicted", holder)
	}

	that.seats[seat] = sessionID
	that.conns[sessionID] = conn
	that.joined = true

	if that.phase == entity.PhaseWaiting && that.occupiedLocked() == len(entity.Seats) {
		that.phase = entity.PhasePlaying
	}

	log.Debug("joined", "phase", that.phase)

	return evicted
}

// retireIf - closes the room to new seats when canRetire holds. canRetire runs under the room lock.
// A room is retired at most once.
func (that *Room) retireIf(canRetire func() bool) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed || !canRetire() {
		return false
	}

	that.closed = true

	return true
}

// Status - a seat counts as connected only while its session has a live connection.
func (that *Room) Status() entity.PlayersStatus {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.statusLocked()
}

func (that *Room) statusLocked() entity.PlayersStatus {
	connected := func(seat entity.Seat) bool {
		sessionID := that.seats[seat]
		if sessionID == "" {
			return false
		}

		conn, ok := that.conns[sessionID]

		return ok && conn.Alive()
	}

	return entity.PlayersStatus{
		BlackConnected: connected(entity.SeatBlack),
		WhiteConnected: connected(entity.SeatWhite),
	}
}

func (that *Room) SeatOf(sessionID string) entity.Seat {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.seatOfLocked(sessionID)
}

func (that *Room) seatOfLocked(sessionID string) entity.Seat {
	for _, seat := range entity.Seats {
		if that.seats[seat] == sessionID {
			return seat
		}
	}

	return entity.SeatNone
}

func (that *Room) Snapshot() State {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return State{
		RoomID:  that.id,
		Board:   that.board.Cells(),
		Turn:    that.turn,
		Players: that.statusLocked(),
		Phase:   that.phase,
		Winner:  that.winner,
		Line:    append(entity.Line(nil), that.line...),
	}
}

// Place - puts the caller's stone on pos. committed, when set, runs before the next
// command is dequeued, so its side effects follow commit order.
func (that *Room) Place(
	ctx context.Context, sessionID string, pos entity.Position, committed func(*PlaceOutcome),
) (*PlaceOutcome, error) {
	var outcome *PlaceOutcome

	err := that.enqueue(ctx, func() error {
		var err error
		if outcome, err = that.place(sessionID, pos); err != nil {
			return err
		}

		if committed != nil {
			committed(outcome)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

func (that *Room) place(sessionID string, pos entity.Position) (*PlaceOutcome, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase == entity.PhaseEnded {
		return nil, apperror.ErrGameEnded
	}

	seat := that.seatOfLocked(sessionID)
	if seat == entity.SeatNone {
		return nil, apperror.ErrNotSeated
	}

	if seat != that.turn {
		return nil, apperror.ErrNotYourTurn
	}

	cell := gomoku.CellOf(seat)
	if err := that.rules.ValidateMove(that.board, pos, cell); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	that.board = that.board.Apply(pos, cell)

	outcome := &PlaceOutcome{
		Move: Move{Position: pos, Seat: seat},
	}

	if run := that.board.CheckWin(pos, cell, that.rules.WinLength); run != nil {
		that.finishLocked(seat, entity.NewLine(run))
		outcome.End = &End{Result: entity.WinResult(seat), Line: that.line}

		return outcome, nil
	}

	if that.board.IsDraw() {
		that.finishLocked(entity.SeatNone, nil)
		outcome.End = &End{Result: entity.ResultDraw}

		return outcome, nil
	}

	that.turn = seat.Opponent()
	outcome.Move.NextTurn = that.turn

	return outcome, nil
}

// Resign - ends the game in favour of the caller's opponent.
func (that *Room) Resign(ctx context.Context, sessionID string, committed func(*End)) (*End, error) {
	var end *End

	err := that.enqueue(ctx, func() error {
		var err error
		if end, err = that.resign(sessionID); err != nil {
			return err
		}

		if committed != nil {
			committed(end)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return end, nil
}

func (that *Room) resign(sessionID string) (*End, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase == entity.PhaseEnded {
		return nil, apperror.ErrGameEnded
	}

	seat := that.seatOfLocked(sessionID)
	if seat == entity.SeatNone {
		return nil, apperror.ErrNotSeated
	}

	that.finishLocked(seat.Opponent(), nil)

	return &End{Result: entity.WinResult(that.winner)}, nil
}

// Reset - starts a new game after the previous one ended. Seats and connections are kept.
func (that *Room) Reset(ctx context.Context, committed func()) error {
	return that.enqueue(ctx, func() error {
		if err := that.reset(); err != nil {
			return err
		}

		if committed != nil {
			committed()
		}

		return nil
	})
}

func (that *Room) reset() error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.phase != entity.PhaseEnded {
		return apperror.ErrGameInProgress
	}

	that.board = that.rules.NewBoard()
	that.turn = entity.SeatBlack
	that.winner = entity.SeatNone
	that.line = nil

	that.phase = entity.PhaseWaiting
	if that.occupiedLocked() == len(entity.Seats) {
		that.phase = entity.PhasePlaying
	}

	return nil
}

// Disconnect - unregisters the session's connection and frees its seat.
// Returns the freed seat, SeatNone when the session held none.
func (that *Room) Disconnect(sessionID string) entity.Seat {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.conns, sessionID)

	seat := that.seatOfLocked(sessionID)
	if seat != entity.SeatNone {
		delete(that.seats, seat)
	}

	return seat
}

// Connections - snapshot of the registered peers for broadcasting.
func (that *Room) Connections() []Peer {
	that.mu.RLock()
	defer that.mu.RUnlock()

	peers := make([]Peer, 0, len(that.conns))
	for sessionID, conn := range that.conns {
		peers = append(peers, Peer{
			SessionID: sessionID,
			Seat:      that.seatOfLocked(sessionID),
			Conn:      conn,
		})
	}

	return peers
}

// IsEmpty - no seat is occupied.
func (that *Room) IsEmpty() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.occupiedLocked() == 0
}

// Occupied - whether seat is held by any session.
func (that *Room) Occupied(seat entity.Seat) bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.seats[seat] != ""
}

// EverJoined - whether any session has taken a seat since creation.
func (that *Room) EverJoined() bool {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.joined
}

func (that *Room) occupiedLocked() int {
	occupied := 0
	for _, seat := range entity.Seats {
		if that.seats[seat] != "" {
			occupied++
		}
	}

	return occupied
}

func (that *Room) finishLocked(winner entity.Seat, line entity.Line) {
	that.phase = entity.PhaseEnded
	that.winner = winner
	that.line = line
}

// enqueue - runs command after every previously enqueued command has finished.
// A context cancelled while waiting abandons the command but keeps the chain intact.
func (that *Room) enqueue(ctx context.Context, command func() error) error {
	that.queueMu.Lock()
	prev := that.tail
	next := make(chan struct{})
	that.tail = next
	that.queueMu.Unlock()

	select {
	case <-prev:
	case <-ctx.Done():
		go func() {
			<-prev
			close(next)
		}()

		return fmt.Errorf("room %s: %w", that.id, ctx.Err())
	}

	defer close(next)

	return command()
}

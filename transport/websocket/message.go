package websocket

import (
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

// Message types.
const (
	TypeJoin    = "JOIN"
	TypePlace   = "PLACE"
	TypeResign  = "RESIGN"
	TypeNewGame = "NEW_GAME"
	TypePing    = "PING"
	TypePong    = "PONG"

	TypeState = "STATE"
	TypeMove  = "MOVE"
	TypeEnd   = "END"
	TypeError = "ERROR"
)

// Message - any client frame. Fields unused by a type are ignored.
type Message struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Token  string `json:"token,omitempty"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
}

type StateMessage struct {
	Type    string               `json:"type"`
	Board   [][]int              `json:"board"`
	Turn    entity.Seat          `json:"turn"`
	You     entity.Seat          `json:"you"`
	Players entity.PlayersStatus `json:"players"`
	RoomID  string               `json:"roomId"`
	Phase   string               `json:"phase"`
	Winner  entity.Seat          `json:"winner,omitempty"`
	Line    entity.Line          `json:"line,omitempty"`
}

type MoveMessage struct {
	Type     string      `json:"type"`
	X        int         `json:"x"`
	Y        int         `json:"y"`
	Color    entity.Seat `json:"color"`
	NextTurn entity.Seat `json:"nextTurn,omitempty"`
}

type EndMessage struct {
	Type   string        `json:"type"`
	Result entity.Result `json:"result"`
	Line   entity.Line   `json:"line,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type simpleMessage struct {
	Type string `json:"type"`
}

func newStateMessage(state room.State, you entity.Seat) StateMessage {
	return StateMessage{
		Type:    TypeState,
		Board:   state.Board,
		Turn:    state.Turn,
		You:     you,
		Players: state.Players,
		RoomID:  state.RoomID,
		Phase:   state.Phase,
		Winner:  state.Winner,
		Line:    state.Line,
	}
}

func newMoveMessage(move room.Move) MoveMessage {
	return MoveMessage{
		Type:     TypeMove,
		X:        move.Position.X,
		Y:        move.Position.Y,
		Color:    move.Seat,
		NextTurn: move.NextTurn,
	}
}

func newEndMessage(end room.End) EndMessage {
	return EndMessage{
		Type:   TypeEnd,
		Result: end.Result,
		Line:   end.Line,
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/room"
)

func decodeMessage(data []byte) (*Message, error) {
	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON", apperror.ErrInvalidMessage)
	}

	if message.Type == "" {
		return nil, fmt.Errorf("%w: type is required", apperror.ErrInvalidMessage)
	}

	return &message, nil
}

func (that *Server) handleJoin(ctx context.Context, s *session, msg *Message) error {
	log := that.logger.With("method", "handleJoin", "sessionID", s.id, "roomID", msg.RoomID)

	if !that.limiter.Allow(s.id) {
		return apperror.ErrRateLimited
	}

	if msg.RoomID == "" || msg.Token == "" {
		return fmt.Errorf("%w: roomId and token are required", apperror.ErrInvalidMessage)
	}

	rm, err := that.registry.Authorize(ctx, msg.RoomID, msg.Token)
	if err != nil {
		return fmt.Errorf("failed to authorize: %w", err)
	}

	current, seat := s.current()
	if current != nil {
		if current != rm || seat == entity.SeatNone {
			return fmt.Errorf("%w: already joined room %s", apperror.ErrInvalidMessage, current.ID())
		}

		return s.SendJSON(newStateMessage(rm.Snapshot(), seat))
	}

	seat, evicted, err := rm.Admit(s.id, s)
	if err != nil {
		return fmt.Errorf("failed to join: %w", err)
	}

	s.setRoom(rm)

	if evicted != "" {
		log.Info("previous holder superseded", "evicted", evicted, "seat", seat)
	}

	if err = that.registry.MarkUsed(ctx, rm.ID()); err != nil {
		log.Warn("failed to mark credential used", "error", err)
	}

	log.Info("joined room", "seat", seat)

	return s.SendJSON(newStateMessage(rm.Snapshot(), seat))
}

func (that *Server) handlePlace(ctx context.Context, s *session, msg *Message) error {
	rm, seat := s.current()
	if rm == nil || seat == entity.SeatNone {
		return apperror.ErrNotInRoom
	}

	if !that.limiter.Allow(s.id) {
		return apperror.ErrRateLimited
	}

	if msg.X == nil || msg.Y == nil {
		return fmt.Errorf("%w: x and y are required", apperror.ErrInvalidMessage)
	}

	_, err := rm.Place(ctx, s.id, entity.Position{X: *msg.X, Y: *msg.Y}, func(outcome *room.PlaceOutcome) {
		that.broadcast(rm, newMoveMessage(outcome.Move))

		if outcome.End != nil {
			that.logger.Info("game over", "method", "handlePlace", "roomID", rm.ID(), "result", outcome.End.Result)
			that.broadcast(rm, newEndMessage(*outcome.End))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to place: %w", err)
	}

	return nil
}

func (that *Server) handleResign(ctx context.Context, s *session, _ *Message) error {
	rm, seat := s.current()
	if rm == nil || seat == entity.SeatNone {
		return apperror.ErrNotInRoom
	}

	_, err := rm.Resign(ctx, s.id, func(end *room.End) {
		that.logger.Info("player resigned", "method", "handleResign", "roomID", rm.ID(), "seat", seat)
		that.broadcast(rm, newEndMessage(*end))
	})
	if err != nil {
		return fmt.Errorf("failed to resign: %w", err)
	}

	return nil
}

func (that *Server) handleNewGame(ctx context.Context, s *session, _ *Message) error {
	rm, seat := s.current()
	if rm == nil || seat == entity.SeatNone {
		return apperror.ErrNotInRoom
	}

	if err := rm.Reset(ctx, func() { that.broadcastState(rm) }); err != nil {
		return fmt.Errorf("failed to reset: %w", err)
	}

	return nil
}

func (that *Server) handlePing(_ context.Context, s *session, _ *Message) error {
	return s.SendJSON(simpleMessage{Type: TypePong})
}

func (that *Server) handlePong(_ context.Context, s *session, _ *Message) error {
	s.disarmWatchdog()

	return nil
}

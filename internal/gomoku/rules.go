package gomoku

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

const (
	VariantStandard = "standard"
	VariantRenju    = "renju"
)

const (
	minBoardSize = 5
	maxBoardSize = 25
	minWinLength = 3
)

var (
	ErrOutOfBounds     = errors.New("position out of bounds")
	ErrCellOccupied    = errors.New("cell is already occupied")
	ErrForbiddenMove   = errors.New("forbidden move")
	ErrUnknownVariant  = errors.New("unknown rule variant")
	ErrInvalidSize     = errors.New("board size must be between 5 and 25")
	ErrInvalidWinCount = errors.New("win length must be between 3 and board size")
)

// Rules - parameters of one game.
type Rules struct {
	Variant   string
	BoardSize int
	WinLength int
}

var DefaultRules = Rules{
	Variant:   VariantStandard,
	BoardSize: 15,
	WinLength: 5,
}

// Validate - fills zero values from DefaultRules and checks the ranges.
func (that Rules) Validate() (Rules, error) {
	if that.Variant == "" {
		that.Variant = DefaultRules.Variant
	}

	if that.BoardSize == 0 {
		that.BoardSize = DefaultRules.BoardSize
	}

	if that.WinLength == 0 {
		that.WinLength = DefaultRules.WinLength
	}

	if _, err := policyFor(that.Variant); err != nil {
		return that, err
	}

	if that.BoardSize < minBoardSize || that.BoardSize > maxBoardSize {
		return that, fmt.Errorf("%w: %d", ErrInvalidSize, that.BoardSize)
	}

	if that.WinLength < minWinLength || that.WinLength > that.BoardSize {
		return that, fmt.Errorf("%w: %d", ErrInvalidWinCount, that.WinLength)
	}

	return that, nil
}

// NewBoard - empty board sized for these rules.
func (that Rules) NewBoard() *Board {
	return NewBoard(that.BoardSize)
}

// ValidateMove - bounds, occupancy and the variant's forbidden-move policy.
func (that Rules) ValidateMove(board *Board, pos entity.Position, cell Cell) error {
	if !board.InBounds(pos) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, pos.X, pos.Y)
	}

	if !board.IsLegal(pos) {
		return fmt.Errorf("%w: (%d,%d)", ErrCellOccupied, pos.X, pos.Y)
	}

	policy, err := policyFor(that.Variant)
	if err != nil {
		return err
	}

	if forbidden, reason := policy.Forbidden(board, pos, cell); forbidden {
		return fmt.Errorf("%w: %s", ErrForbiddenMove, reason)
	}

	return nil
}

// ForbiddenPolicy - variant specific restriction on otherwise legal moves.
type ForbiddenPolicy interface {
	Forbidden(board *Board, pos entity.Position, cell Cell) (bool, string)
}

type standardPolicy struct{}

func (standardPolicy) Forbidden(*Board, entity.Position, Cell) (bool, string) {
	return false, ""
}

// renjuPolicy restricts black only: double-three, double-four and overlines.
// TODO: detect double-three, double-four and overline for black; every move is allowed for now.
type renjuPolicy struct{}

func (renjuPolicy) Forbidden(*Board, entity.Position, Cell) (bool, string) {
	return false, ""
}

func policyFor(variant string) (ForbiddenPolicy, error) {
	switch variant {
	case VariantStandard:
		return standardPolicy{}, nil
	case VariantRenju:
		return renjuPolicy{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, variant)
	}
}

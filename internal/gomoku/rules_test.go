package gomoku

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Validate(t *testing.T) {
	t.Run("Zero rules become the defaults", func(t *testing.T) {
		rules, err := Rules{}.Validate()

		require.NoError(t, err)
		assert.Equal(t, DefaultRules, rules)
	})

	t.Run("Board size out of range", func(t *testing.T) {
		_, err := Rules{BoardSize: 4}.Validate()
		require.ErrorIs(t, err, ErrInvalidSize)

		_, err = Rules{BoardSize: 26}.Validate()
		require.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("Win length out of range", func(t *testing.T) {
		_, err := Rules{BoardSize: 9, WinLength: 2}.Validate()
		require.ErrorIs(t, err, ErrInvalidWinCount)

		_, err = Rules{BoardSize: 9, WinLength: 10}.Validate()
		require.ErrorIs(t, err, ErrInvalidWinCount)
	})

	t.Run("Unknown variant", func(t *testing.T) {
		_, err := Rules{Variant: "connect6"}.Validate()

		require.ErrorIs(t, err, ErrUnknownVariant)
	})
}

func TestRules_ValidateMove(t *testing.T) {
	rules := DefaultRules
	board := rules.NewBoard().Apply(pos(7, 7), Black)

	t.Run("Empty in-bounds cell is accepted", func(t *testing.T) {
		assert.NoError(t, rules.ValidateMove(board, pos(8, 8), White))
	})

	t.Run("Occupied cell", func(t *testing.T) {
		assert.ErrorIs(t, rules.ValidateMove(board, pos(7, 7), White), ErrCellOccupied)
	})

	t.Run("Out of bounds", func(t *testing.T) {
		assert.ErrorIs(t, rules.ValidateMove(board, pos(15, 0), White), ErrOutOfBounds)
		assert.ErrorIs(t, rules.ValidateMove(board, pos(0, -1), White), ErrOutOfBounds)
	})

	t.Run("Renju policy currently allows every black move", func(t *testing.T) {
		renju := Rules{Variant: VariantRenju, BoardSize: 15, WinLength: 5}

		// Given: a position that would be a double-three for black
		board := renju.NewBoard().
			Apply(pos(6, 7), Black).Apply(pos(8, 7), Black).
			Apply(pos(7, 6), Black).Apply(pos(7, 8), Black)

		// Then: the hook answers "not forbidden"
		assert.NoError(t, renju.ValidateMove(board, pos(7, 7), Black))
		assert.NoError(t, renju.ValidateMove(board, pos(0, 0), White))
	})
}

func TestCellOf(t *testing.T) {
	assert.Equal(t, Black, CellOf("black"))
	assert.Equal(t, White, CellOf("white"))
	assert.Equal(t, Empty, CellOf(""))
}

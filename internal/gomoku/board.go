package gomoku

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

// Cell - content of a single intersection.
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
)

// CellOf - stone color placed by seat.
func CellOf(seat entity.Seat) Cell {
	switch seat {
	case entity.SeatBlack:
		return Black
	case entity.SeatWhite:
		return White
	default:
		return Empty
	}
}

// axes walked by CheckWin: horizontal, vertical, and the two diagonals.
var axes = [4]entity.Position{
	{X: 1, Y: 0},
	{X: 0, Y: 1},
	{X: 1, Y: 1},
	{X: 1, Y: -1},
}

// Board - immutable size×size grid indexed [y][x].
// Apply returns a new Board, so a value handed out is never mutated afterwards.
type Board struct {
	size  int
	cells [][]Cell
}

func NewBoard(size int) *Board {
	cells := make([][]Cell, size)
	for y := range cells {
		cells[y] = make([]Cell, size)
	}

	return &Board{size: size, cells: cells}
}

func (that *Board) Size() int {
	return that.size
}

func (that *Board) InBounds(pos entity.Position) bool {
	return pos.X >= 0 && pos.X < that.size && pos.Y >= 0 && pos.Y < that.size
}

// At - cell at pos, Empty when out of bounds.
func (that *Board) At(pos entity.Position) Cell {
	if !that.InBounds(pos) {
		return Empty
	}

	return that.cells[pos.Y][pos.X]
}

// IsLegal - true iff pos is in bounds and empty.
func (that *Board) IsLegal(pos entity.Position) bool {
	return that.InBounds(pos) && that.cells[pos.Y][pos.X] == Empty
}

// Apply - new board with cell placed at pos. Only the touched row is copied,
// the other rows are shared since no Board ever writes into them again.
func (that *Board) Apply(pos entity.Position, cell Cell) *Board {
	cells := make([][]Cell, that.size)
	copy(cells, that.cells)

	row := make([]Cell, that.size)
	copy(row, that.cells[pos.Y])
	row[pos.X] = cell
	cells[pos.Y] = row

	return &Board{size: that.size, cells: cells}
}

// CheckWin - looks for a run of at least runLength stones of cell through last.
// Returns the first runLength positions of the run, ordered low to high along the axis
// (by x, or by y on the vertical axis), or nil. At() is Empty outside the board, which ends every walk.
func (that *Board) CheckWin(last entity.Position, cell Cell, runLength int) []entity.Position {
	if cell == Empty || that.At(last) != cell {
		return nil
	}

	for _, axis := range axes {
		start := last
		for next := step(start, axis, -1); that.At(next) == cell; next = step(next, axis, -1) {
			start = next
		}

		count := 1
		for next := step(last, axis, 1); that.At(next) == cell; next = step(next, axis, 1) {
			count++
		}
		count += distance(start, last, axis)

		if count < runLength {
			continue
		}

		line := make([]entity.Position, 0, runLength)
		for pos := start; len(line) < runLength; pos = step(pos, axis, 1) {
			line = append(line, pos)
		}

		return line
	}

	return nil
}

// IsDraw - true iff no empty cell remains.
func (that *Board) IsDraw() bool {
	for _, row := range that.cells {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}

	return true
}

// Cells - deep copy for snapshots and the wire.
func (that *Board) Cells() [][]int {
	out := make([][]int, that.size)
	for y, row := range that.cells {
		out[y] = make([]int, that.size)
		for x, cell := range row {
			out[y][x] = int(cell)
		}
	}

	return out
}

func step(pos, axis entity.Position, sign int) entity.Position {
	return entity.Position{X: pos.X + axis.X*sign, Y: pos.Y + axis.Y*sign}
}

// distance - number of steps along axis from "from" to "to".
func distance(from, to, axis entity.Position) int {
	if axis.X != 0 {
		return (to.X - from.X) / axis.X
	}

	return (to.Y - from.Y) / axis.Y
}

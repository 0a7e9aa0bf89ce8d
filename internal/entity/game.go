package entity

const (
	PhaseWaiting = "waiting"
	PhasePlaying = "playing"
	PhaseEnded   = "ended"
)

// Result - outcome reported in END frames.
type Result string

const (
	ResultBlackWin     Result = "black_win"
	ResultWhiteWin     Result = "white_win"
	ResultDraw         Result = "draw"
	ResultOpponentLeft Result = "opponent_left"
)

// WinResult - result for a game won by seat.
func WinResult(seat Seat) Result {
	if seat == SeatBlack {
		return ResultBlackWin
	}

	return ResultWhiteWin
}

// Position - a board coordinate. X is the column, Y the row.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Line - ordered winning run, serialized as [[x,y],...].
type Line [][2]int

func NewLine(positions []Position) Line {
	line := make(Line, 0, len(positions))
	for _, pos := range positions {
		line = append(line, [2]int{pos.X, pos.Y})
	}

	return line
}

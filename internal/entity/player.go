package entity

// Seat - one of the two player roles in a room. Black moves first.
type Seat string

const (
	SeatBlack Seat = "black"
	SeatWhite Seat = "white"
	SeatNone  Seat = ""
)

// Seats - all seats in assignment order.
var Seats = [2]Seat{SeatBlack, SeatWhite}

func (that Seat) Opponent() Seat {
	switch that {
	case SeatBlack:
		return SeatWhite
	case SeatWhite:
		return SeatBlack
	default:
		return SeatNone
	}
}

func (that Seat) IsValid() bool {
	return that == SeatBlack || that == SeatWhite
}

// PlayersStatus - connection state of both seats.
type PlayersStatus struct {
	BlackConnected bool `json:"blackConnected"`
	WhiteConnected bool `json:"whiteConnected"`
}

func (that PlayersStatus) Connected(seat Seat) bool {
	switch seat {
	case SeatBlack:
		return that.BlackConnected
	case SeatWhite:
		return that.WhiteConnected
	default:
		return false
	}
}

// FreeSeat - picks the seat for a newcomer: black first, then white.
// Returns false when both seats are connected.
func (that PlayersStatus) FreeSeat() (Seat, bool) {
	if !that.BlackConnected {
		return SeatBlack, true
	}

	if !that.WhiteConnected {
		return SeatWhite, true
	}

	return SeatNone, false
}

package apperror

import "errors"

// Protocol error codes sent in ERROR frames.
const (
	CodeInvalidToken   = "INVALID_TOKEN"
	CodeTokenExpired   = "TOKEN_EXPIRED"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeRoomFull       = "ROOM_FULL"
	CodeInvalidMove    = "INVALID_MOVE"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeGameEnded      = "GAME_ENDED"
	CodeRateLimit      = "RATE_LIMIT"
	CodeInvalidMessage = "INVALID_MESSAGE"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrInvalidMove    = errors.New("invalid move")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrGameEnded      = errors.New("game has ended")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrInvalidMessage = errors.New("invalid message")

	ErrNotInRoom      = errors.New("not in a room")
	ErrNotSeated      = errors.New("session holds no seat")
	ErrGameInProgress = errors.New("game is in progress")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrInvalidToken, CodeInvalidToken},
	{ErrTokenExpired, CodeTokenExpired},
	{ErrRoomNotFound, CodeRoomNotFound},
	{ErrRoomFull, CodeRoomFull},
	{ErrInvalidMove, CodeInvalidMove},
	{ErrNotYourTurn, CodeNotYourTurn},
	{ErrGameEnded, CodeGameEnded},
	{ErrRateLimited, CodeRateLimit},
}

// Code - maps an error chain to the protocol code reported to the client.
// Anything unknown is reported as INVALID_MESSAGE.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}

	return CodeInvalidMessage
}

// IsKnown - whether err carries one of the sentinels above. Anything else is internal
// and its text is not shown to clients.
func IsKnown(err error) bool {
	for _, known := range []error{ErrInvalidMessage, ErrNotInRoom, ErrNotSeated, ErrGameInProgress} {
		if errors.Is(err, known) {
			return true
		}
	}

	for _, c := range codes {
		if errors.Is(err, c.err) {
			return true
		}
	}

	return false
}

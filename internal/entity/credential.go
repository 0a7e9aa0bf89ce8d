package entity

import "time"

// Credential - join secret of a single room.
// Used is informational only, a token stays reusable until it expires.
type Credential struct {
	RoomID    string    `json:"roomId"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
	Used      bool      `json:"used"`
}

package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const (
	DefaultTokenTTL = 10 * time.Minute

	roomIDLength  = 8
	roomIDChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	tokenByteSize = 32
)

// TokenService - issues room identifiers and join tokens.
type TokenService interface {
	IssueRoomID() (string, error)
	IssueToken() (string, error)

	IsValid(issuedAt time.Time) bool
	Matches(token, expected string) bool

	TTL() time.Duration
	Now() time.Time
}

type tokenService struct {
	ttl time.Duration
	now func() time.Time
}

// NewTokenService - ttl <= 0 falls back to DefaultTokenTTL. now may be nil.
func NewTokenService(ttl time.Duration, now func() time.Time) TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	if now == nil {
		now = time.Now
	}

	return &tokenService{
		ttl: ttl,
		now: now,
	}
}

// IssueRoomID - fixed length A-Z0-9 identifier. Collisions are left to the registry.
func (that *tokenService) IssueRoomID() (string, error) {
	limit := big.NewInt(int64(len(roomIDChars)))

	id := make([]byte, roomIDLength)
	for i := range id {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to generate room id: %w", err)
		}

		id[i] = roomIDChars[n.Int64()]
	}

	return string(id), nil
}

// IssueToken - 32 random bytes, hex encoded.
func (that *tokenService) IssueToken() (string, error) {
	b := make([]byte, tokenByteSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate join token: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// IsValid - now - issuedAt < ttl.
func (that *tokenService) IsValid(issuedAt time.Time) bool {
	return that.now().Sub(issuedAt) < that.ttl
}

// Matches - exact comparison, constant time.
func (that *tokenService) Matches(token, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

func (that *tokenService) TTL() time.Duration {
	return that.ttl
}

func (that *tokenService) Now() time.Time {
	return that.now()
}

package service

import (
	"sync"
	"time"
)

const (
	DefaultRateLimit  = 10
	DefaultRateWindow = time.Second
)

// RateLimiter - per session fixed window admission control.
type RateLimiter interface {
	Allow(sessionID string) bool
	Forget(sessionID string)
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	windows map[string]*rateWindow
}

// NewRateLimiter - non-positive limit/window fall back to 10 per second. now may be nil.
func NewRateLimiter(limit int, window time.Duration, now func() time.Time) RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimit
	}

	if window <= 0 {
		window = DefaultRateWindow
	}

	if now == nil {
		now = time.Now
	}

	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		windows: make(map[string]*rateWindow),
	}
}

// Allow - charges one message to sessionID. The window resets lazily once it has elapsed.
func (that *rateLimiter) Allow(sessionID string) bool {
	now := that.now()

	that.mu.Lock()
	defer that.mu.Unlock()

	window, ok := that.windows[sessionID]
	if !ok || now.After(window.resetAt) {
		that.windows[sessionID] = &rateWindow{count: 1, resetAt: now.Add(that.window)}
		return true
	}

	if window.count >= that.limit {
		return false
	}

	window.count++

	return true
}

// Forget - drops the session's window on disconnect.
func (that *rateLimiter) Forget(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.windows, sessionID)
}

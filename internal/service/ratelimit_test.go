package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("Eleventh message within a second is rejected", func(t *testing.T) {
		// Given: a limiter with the default 10 per second
		clock := newFakeClock()
		limiter := NewRateLimiter(0, 0, clock.Now)

		// When: sending 11 messages at the same instant
		admitted := 0
		for i := 0; i < 11; i++ {
			if limiter.Allow("s1") {
				admitted++
			}
		}

		// Then: exactly ten are admitted
		assert.Equal(t, 10, admitted)
		assert.False(t, limiter.Allow("s1"))
	})

	t.Run("Window resets only after it has elapsed", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(2, time.Second, clock.Now)

		assert.True(t, limiter.Allow("s1"))
		assert.True(t, limiter.Allow("s1"))
		assert.False(t, limiter.Allow("s1"))

		// exactly at resetAt the window is still closed
		clock.Advance(time.Second)
		assert.False(t, limiter.Allow("s1"))

		clock.Advance(time.Millisecond)
		assert.True(t, limiter.Allow("s1"))
	})

	t.Run("Sessions are counted independently", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(1, time.Second, clock.Now)

		assert.True(t, limiter.Allow("s1"))
		assert.False(t, limiter.Allow("s1"))
		assert.True(t, limiter.Allow("s2"))
	})

	t.Run("Forget discards the window", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(1, time.Second, clock.Now)

		assert.True(t, limiter.Allow("s1"))
		assert.False(t, limiter.Allow("s1"))

		limiter.Forget("s1")

		assert.True(t, limiter.Allow("s1"))
	})

	t.Run("Concurrent callers never exceed the limit", func(t *testing.T) {
		clock := newFakeClock()
		limiter := NewRateLimiter(10, time.Second, clock.Now)

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			admitted int
		)

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("s1") {
					mu.Lock()
					admitted++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 10, admitted)
	})
}

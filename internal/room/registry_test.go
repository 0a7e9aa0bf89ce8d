package room

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

type testClock struct {
	now time.Time
}

func (that *testClock) Now() time.Time {
	return that.now
}

func newTestRegistry(t *testing.T) (*Registry, *testClock, repository.CredentialRepository) {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	credentials := repository.NewMemoryCredentialRepository()
	tokens := service.NewTokenService(10*time.Minute, clock.Now)

	return NewRegistry(discardLogger(), tokens, credentials, gomoku.DefaultRules), clock, credentials
}

func TestRegistry_Create(t *testing.T) {
	ctx := context.Background()
	registry, clock, credentials := newTestRegistry(t)

	// When: creating a room
	room, credential, err := registry.Create(ctx)

	// Then: the room is reachable and its credential is stored
	require.NoError(t, err)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, room.ID())
	assert.Len(t, credential.Token, 64)
	assert.Equal(t, clock.now, credential.CreatedAt)
	assert.Equal(t, 1, registry.Count())

	got, err := registry.Get(room.ID())
	require.NoError(t, err)
	assert.Same(t, room, got)

	stored, err := credentials.GetByRoomID(ctx, room.ID())
	require.NoError(t, err)
	assert.Equal(t, credential.Token, stored.Token)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry, _, _ := newTestRegistry(t)

	_, err := registry.Get("NOPE0000")

	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

func TestRegistry_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("Valid token admits and stays reusable", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)
		room, credential, err := registry.Create(ctx)
		require.NoError(t, err)

		got, err := registry.Authorize(ctx, room.ID(), credential.Token)
		require.NoError(t, err)
		assert.Same(t, room, got)

		require.NoError(t, registry.MarkUsed(ctx, room.ID()))

		_, err = registry.Authorize(ctx, room.ID(), credential.Token)
		require.NoError(t, err)
	})

	t.Run("Unknown room", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)

		_, err := registry.Authorize(ctx, "NOPE0000", "token")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Wrong token", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)
		room, _, err := registry.Create(ctx)
		require.NoError(t, err)

		_, err = registry.Authorize(ctx, room.ID(), "deadbeef")

		require.ErrorIs(t, err, apperror.ErrInvalidToken)
	})

	t.Run("Missing credential", func(t *testing.T) {
		registry, _, credentials := newTestRegistry(t)
		room, credential, err := registry.Create(ctx)
		require.NoError(t, err)
		require.NoError(t, credentials.DeleteByRoomID(ctx, room.ID()))

		_, err = registry.Authorize(ctx, room.ID(), credential.Token)

		require.ErrorIs(t, err, apperror.ErrInvalidToken)
	})

	t.Run("Expired token", func(t *testing.T) {
		registry, clock, _ := newTestRegistry(t)
		room, credential, err := registry.Create(ctx)
		require.NoError(t, err)

		// Given: the TTL has fully elapsed
		clock.now = clock.now.Add(10 * time.Minute)

		_, err = registry.Authorize(ctx, room.ID(), credential.Token)

		require.ErrorIs(t, err, apperror.ErrTokenExpired)
	})
}

func TestRegistry_RemoveIfEmpty(t *testing.T) {
	ctx := context.Background()

	t.Run("Drops an empty room and its credential", func(t *testing.T) {
		registry, _, credentials := newTestRegistry(t)
		room, _, err := registry.Create(ctx)
		require.NoError(t, err)

		removed, err := registry.RemoveIfEmpty(ctx, room)
		require.NoError(t, err)
		assert.True(t, removed)

		// Then: a second removal is a no-op
		removed, err = registry.RemoveIfEmpty(ctx, room)
		require.NoError(t, err)
		assert.False(t, removed)

		assert.Equal(t, 0, registry.Count())

		_, err = registry.Get(room.ID())
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)

		_, err = credentials.GetByRoomID(ctx, room.ID())
		require.ErrorIs(t, err, repository.ErrCredentialNotFound)
	})

	t.Run("Keeps a room that was re-seated after its last player left", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)
		room, credential, err := registry.Create(ctx)
		require.NoError(t, err)

		_, _, err = room.Admit("a", newAliveConn(t))
		require.NoError(t, err)

		// Given: a newcomer authorized while a was still seated
		authorized, err := registry.Authorize(ctx, room.ID(), credential.Token)
		require.NoError(t, err)

		// And: a leaves and sees an empty room
		room.Disconnect("a")
		require.True(t, room.IsEmpty())

		// When: the newcomer is seated before the departing session tears the room down
		seat, _, err := authorized.Admit("b", newAliveConn(t))
		require.NoError(t, err)
		assert.Equal(t, entity.SeatBlack, seat)

		removed, err := registry.RemoveIfEmpty(ctx, room)

		// Then: the room stays reachable for an opponent
		require.NoError(t, err)
		assert.False(t, removed)

		_, err = registry.Authorize(ctx, room.ID(), credential.Token)
		require.NoError(t, err)
		assert.Equal(t, 1, registry.Count())
	})

	t.Run("A retired room refuses late seats", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)
		room, credential, err := registry.Create(ctx)
		require.NoError(t, err)

		// Given: a newcomer authorized before the room was torn down
		authorized, err := registry.Authorize(ctx, room.ID(), credential.Token)
		require.NoError(t, err)

		removed, err := registry.RemoveIfEmpty(ctx, room)
		require.NoError(t, err)
		require.True(t, removed)

		// When: it tries to take a seat
		_, _, err = authorized.Admit("b", newAliveConn(t))

		// Then: it is told the room is gone instead of sitting in an orphaned room
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
		assert.True(t, authorized.IsEmpty())

		_, err = authorized.Join("b", entity.SeatWhite, newAliveConn(t))
		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})

	t.Run("Concurrent departures and joins never orphan a seated player", func(t *testing.T) {
		for range 50 {
			registry, _, _ := newTestRegistry(t)
			room, _, err := registry.Create(ctx)
			require.NoError(t, err)

			_, _, err = room.Admit("a", newAliveConn(t))
			require.NoError(t, err)

			conn := newAliveConn(t)

			var (
				wg       sync.WaitGroup
				admitErr error
			)
			wg.Add(2)
			go func() {
				defer wg.Done()
				room.Disconnect("a")
				if room.IsEmpty() {
					_, _ = registry.RemoveIfEmpty(ctx, room)
				}
			}()
			go func() {
				defer wg.Done()
				_, _, admitErr = room.Admit("b", conn)
			}()
			wg.Wait()

			// Then: either b is seated in a registered room, or b was refused
			_, getErr := registry.Get(room.ID())
			if admitErr == nil {
				require.NoError(t, getErr)
			} else {
				require.ErrorIs(t, admitErr, apperror.ErrRoomNotFound)
				require.ErrorIs(t, getErr, apperror.ErrRoomNotFound)
			}
		}
	})
}

func TestRegistry_Sweep(t *testing.T) {
	ctx := context.Background()
	registry, clock, _ := newTestRegistry(t)

	// Given: one abandoned room, one room with a player and one fresh room
	abandoned, _, err := registry.Create(ctx)
	require.NoError(t, err)

	played, _, err := registry.Create(ctx)
	require.NoError(t, err)
	_, _, err = played.Admit("s1", newAliveConn(t))
	require.NoError(t, err)

	clock.now = clock.now.Add(11 * time.Minute)

	fresh, _, err := registry.Create(ctx)
	require.NoError(t, err)

	// When: sweeping
	removed, err := registry.Sweep(ctx)

	// Then: only the abandoned room is gone
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = registry.Get(abandoned.ID())
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)

	_, err = registry.Get(played.ID())
	require.NoError(t, err)

	_, err = registry.Get(fresh.ID())
	require.NoError(t, err)

	// And: a swept room can no longer be seated through a stale handle
	_, _, err = abandoned.Admit("late", newAliveConn(t))
	require.ErrorIs(t, err, apperror.ErrRoomNotFound)
}

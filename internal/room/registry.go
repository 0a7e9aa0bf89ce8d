package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
	"github.com/rocketscienceinc/gomoku-backend/internal/repository"
	"github.com/rocketscienceinc/gomoku-backend/internal/service"
)

const maxIDAttempts = 8

var errIDExhausted = errors.New("could not allocate a unique room id")

// Registry - every live room of the process and its join credential.
type Registry struct {
	logger      *slog.Logger
	tokens      service.TokenService
	credentials repository.CredentialRepository
	rules       gomoku.Rules

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry(
	logger *slog.Logger,
	tokens service.TokenService,
	credentials repository.CredentialRepository,
	rules gomoku.Rules,
) *Registry {
	return &Registry{
		logger:      logger,
		tokens:      tokens,
		credentials: credentials,
		rules:       rules,

		rooms: make(map[string]*Room),
	}
}

// Create - allocates a room with a fresh credential.
func (that *Registry) Create(ctx context.Context) (*Room, *entity.Credential, error) {
	log := that.logger.With("method", "Create")

	token, err := that.tokens.IssueToken()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to issue token: %w", err)
	}

	room, err := that.reserve()
	if err != nil {
		return nil, nil, err
	}

	credential := &entity.Credential{
		RoomID:    room.ID(),
		Token:     token,
		CreatedAt: that.tokens.Now(),
	}

	if err = that.credentials.Save(ctx, credential); err != nil {
		that.mu.Lock()
		delete(that.rooms, room.ID())
		that.mu.Unlock()

		return nil, nil, fmt.Errorf("failed to save credential: %w", err)
	}

	log.Info("room created", "roomID", room.ID())

	return room, credential, nil
}

func (that *Registry) reserve() (*Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for range maxIDAttempts {
		id, err := that.tokens.IssueRoomID()
		if err != nil {
			return nil, fmt.Errorf("failed to issue room id: %w", err)
		}

		if _, taken := that.rooms[id]; taken {
			continue
		}

		room := New(id, that.rules, that.logger)
		that.rooms[id] = room

		return room, nil
	}

	return nil, errIDExhausted
}

func (that *Registry) Get(id string) (*Room, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	room, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, id)
	}

	return room, nil
}

// Authorize - checks token against the room's credential.
// Reuse is allowed for as long as the credential is within its TTL.
func (that *Registry) Authorize(ctx context.Context, id, token string) (*Room, error) {
	room, err := that.Get(id)
	if err != nil {
		return nil, err
	}

	credential, err := that.credentials.GetByRoomID(ctx, id)
	if errors.Is(err, repository.ErrCredentialNotFound) {
		return nil, apperror.ErrInvalidToken
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if !that.tokens.Matches(token, credential.Token) {
		return nil, apperror.ErrInvalidToken
	}

	if !that.tokens.IsValid(credential.CreatedAt) {
		return nil, apperror.ErrTokenExpired
	}

	return room, nil
}

func (that *Registry) MarkUsed(ctx context.Context, id string) error {
	if err := that.credentials.MarkUsed(ctx, id); err != nil {
		return fmt.Errorf("failed to mark credential used: %w", err)
	}

	return nil
}

// RemoveIfEmpty - drops the room and its credential when no seat is occupied.
// The check and the retirement happen atomically, a concurrent Admit either wins the seat
// and keeps the room alive or fails with ErrRoomNotFound.
func (that *Registry) RemoveIfEmpty(ctx context.Context, room *Room) (bool, error) {
	return that.removeIf(ctx, room, func() bool { return room.occupiedLocked() == 0 })
}

func (that *Registry) removeIf(ctx context.Context, room *Room, canRetire func() bool) (bool, error) {
	id := room.ID()

	that.mu.Lock()
	if that.rooms[id] != room || !room.retireIf(canRetire) {
		that.mu.Unlock()
		return false, nil
	}
	that.mu.Unlock()

	// the id stays reserved until its credential is gone
	err := that.credentials.DeleteByRoomID(ctx, id)

	that.mu.Lock()
	delete(that.rooms, id)
	that.mu.Unlock()

	if err != nil {
		return true, fmt.Errorf("failed to delete credential: %w", err)
	}

	that.logger.Info("room removed", "method", "removeIf", "roomID", id)

	return true, nil
}

func (that *Registry) Count() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Sweep - removes rooms nobody ever joined once their credential can no longer admit anyone.
func (that *Registry) Sweep(ctx context.Context) (int, error) {
	log := that.logger.With("method", "Sweep")

	that.mu.RLock()
	candidates := make([]*Room, 0)
	for _, room := range that.rooms {
		if !room.EverJoined() {
			candidates = append(candidates, room)
		}
	}
	that.mu.RUnlock()

	removed := 0
	for _, room := range candidates {
		credential, err := that.credentials.GetByRoomID(ctx, room.ID())
		if err != nil && !errors.Is(err, repository.ErrCredentialNotFound) {
			return removed, fmt.Errorf("failed to load credential: %w", err)
		}

		if err == nil && that.tokens.IsValid(credential.CreatedAt) {
			continue
		}

		ok, err := that.removeIf(ctx, room, func() bool { return !room.joined })
		if err != nil {
			return removed, err
		}

		if ok {
			removed++
		}
	}

	if removed > 0 {
		log.Info("swept abandoned rooms", "removed", removed)
	}

	return removed, nil
}

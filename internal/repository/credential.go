package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

var ErrCredentialNotFound = errors.New("credential not found")

// credentialRetention - how long redis keeps a credential after the last write.
// Expired tokens are rejected by TTL checks long before this.
const credentialRetention = 24 * time.Hour

type CredentialRepository interface {
	Save(ctx context.Context, credential *entity.Credential) error
	GetByRoomID(ctx context.Context, roomID string) (*entity.Credential, error)
	MarkUsed(ctx context.Context, roomID string) error
	DeleteByRoomID(ctx context.Context, roomID string) error
}

type dbCredential struct {
	client *redis.Client
}

func NewCredentialRepository(client *redis.Client) CredentialRepository {
	return &dbCredential{
		client: client,
	}
}

func credentialKey(roomID string) string {
	return "credential:" + roomID
}

func (that *dbCredential) Save(ctx context.Context, credential *entity.Credential) error {
	credentialJSON, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	err = that.client.Set(ctx, credentialKey(credential.RoomID), credentialJSON, credentialRetention).Err()
	if err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}

	return nil
}

func (that *dbCredential) GetByRoomID(ctx context.Context, roomID string) (*entity.Credential, error) {
	response, err := that.client.Get(ctx, credentialKey(roomID)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrCredentialNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get credential by room ID: %w", err)
	}

	var credential entity.Credential
	if err = json.Unmarshal([]byte(response), &credential); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &credential, nil
}

func (that *dbCredential) MarkUsed(ctx context.Context, roomID string) error {
	credential, err := that.GetByRoomID(ctx, roomID)
	if err != nil {
		return err
	}

	if credential.Used {
		return nil
	}

	credential.Used = true

	return that.Save(ctx, credential)
}

func (that *dbCredential) DeleteByRoomID(ctx context.Context, roomID string) error {
	if err := that.client.Del(ctx, credentialKey(roomID)).Err(); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}

	return nil
}

type memoryCredential struct {
	mu          sync.RWMutex
	credentials map[string]entity.Credential
}

// NewMemoryCredentialRepository - process local store, the default when redis is not configured.
func NewMemoryCredentialRepository() CredentialRepository {
	return &memoryCredential{
		credentials: make(map[string]entity.Credential),
	}
}

func (that *memoryCredential) Save(_ context.Context, credential *entity.Credential) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.credentials[credential.RoomID] = *credential

	return nil
}

func (that *memoryCredential) GetByRoomID(_ context.Context, roomID string) (*entity.Credential, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	credential, ok := that.credentials[roomID]
	if !ok {
		return nil, ErrCredentialNotFound
	}

	return &credential, nil
}

func (that *memoryCredential) MarkUsed(_ context.Context, roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	credential, ok := that.credentials[roomID]
	if !ok {
		return ErrCredentialNotFound
	}

	credential.Used = true
	that.credentials[roomID] = credential

	return nil
}

func (that *memoryCredential) DeleteByRoomID(_ context.Context, roomID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.credentials, roomID)

	return nil
}

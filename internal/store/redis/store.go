package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// CredentialStore persists a single credential under one Redis key.
// It satisfies credential.Store.
type CredentialStore struct {
	client *redis.Client
	key    string
}

// NewCredentialStore creates a store for the credential called name
func NewCredentialStore(client *redis.Client, name string) *CredentialStore {
	if name == "" {
		name = DefaultCredentialName
	}
	return &CredentialStore{
		client: client,
		key:    CredentialKey(name),
	}
}

// Key returns the Redis key holding the credential
func (s *CredentialStore) Key() string {
	return s.key
}

// Load returns the stored credential, or "" if none
func (s *CredentialStore) Load(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get credential: %w", err)
	}
	return v, nil
}

// Save stores value without expiry; an empty value deletes the key
func (s *CredentialStore) Save(ctx context.Context, value string) error {
	if value == "" {
		if err := s.client.Del(ctx, s.key).Err(); err != nil {
			return fmt.Errorf("failed to delete credential: %w", err)
		}
		return nil
	}
	if err := s.client.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

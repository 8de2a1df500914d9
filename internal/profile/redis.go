package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists profiles as JSON values keyed by user ID.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection before
// returning the store.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func profileKey(userID string) string {
	return "profile:" + userID
}

func (s *RedisStore) Get(ctx context.Context, userID string) (Profile, error) {
	raw, err := s.client.Get(ctx, profileKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("fetching profile %s: %w", userID, err)
	}

	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("decoding profile %s: %w", userID, err)
	}
	return p, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", userID, err)
	}
	if err := s.client.Set(ctx, profileKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("storing profile %s: %w", userID, err)
	}
	return nil
}

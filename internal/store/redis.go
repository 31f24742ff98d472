package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mapme/mapme/internal/model"
)

// Key layout:
//
//	profile:<userID>   hash with the profile fields
//	searches:<userID>  sorted set scored by createdAt (Unix seconds),
//	                   members are JSON-encoded entries
const (
	profileKeyPrefix  = "profile:"
	searchesKeyPrefix = "searches:"
)

// RedisStore implements Store on a Redis backend.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates a RedisStore and verifies connectivity.
func NewRedis(ctx context.Context, redisURL string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	// Connection pool settings
	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// GetProfile retrieves a profile hash. An empty hash is a miss.
func (s *RedisStore) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	key := profileKeyPrefix + userID

	result, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return &model.Profile{
		UserID:    result["user_id"],
		Email:     result["email"],
		Name:      result["name"],
		AvatarURL: result["avatar_url"],
		CreatedAt: result["created_at"],
		UpdatedAt: result["updated_at"],
	}, nil
}

// PutProfile overwrites the full profile hash.
func (s *RedisStore) PutProfile(ctx context.Context, profile *model.Profile) error {
	key := profileKeyPrefix + profile.UserID

	fields := map[string]any{
		"user_id":    profile.UserID,
		"email":      profile.Email,
		"name":       profile.Name,
		"avatar_url": profile.AvatarURL,
		"created_at": profile.CreatedAt,
		"updated_at": profile.UpdatedAt,
	}

	// Delete-then-set in a pipeline so a previous record never leaks
	// stale fields through a partial overwrite.
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// ListSearches returns up to limit entries, most recent first.
func (s *RedisStore) ListSearches(ctx context.Context, userID string, limit int) ([]*model.SearchEntry, error) {
	key := searchesKeyPrefix + userID

	members, err := s.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange failed: %w", err)
	}

	entries := make([]*model.SearchEntry, 0, len(members))
	for _, member := range members {
		var entry model.SearchEntry
		if err := json.Unmarshal([]byte(member), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode search entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// PutSearch appends one entry to the user's sorted set.
func (s *RedisStore) PutSearch(ctx context.Context, entry *model.SearchEntry) error {
	key := searchesKeyPrefix + entry.UserID

	member, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode search entry: %w", err)
	}

	z := redis.Z{
		Score:  float64(entry.CreatedAtUnix()),
		Member: string(member),
	}

	if err := s.client.ZAdd(ctx, key, z).Err(); err != nil {
		return fmt.Errorf("failed to write search entry: %w", err)
	}

	return nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Client returns the underlying Redis client.
// Use sparingly - prefer adding methods to RedisStore.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

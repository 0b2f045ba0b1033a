package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrCacheMiss is returned when a key is absent or the cache is disabled
var ErrCacheMiss = errors.New("cache miss")

// Service provides redis-backed caching for storefront reads. It degrades
// to a no-op when redis is disabled so callers never branch on availability.
type Service struct {
	client  *redis.Client
	enabled bool
}

// NewService creates a new cache service over an existing client. Pass nil
// to disable caching.
func NewService(client *redis.Client) *Service {
	return &Service{
		client:  client,
		enabled: client != nil,
	}
}

// Get retrieves a value from cache, unmarshaling it into the provided destination
func (s *Service) Get(ctx context.Context, key string, dest interface{}) error {
	if !s.enabled {
		return ErrCacheMiss
	}

	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrCacheMiss
		}
		return err
	}

	return json.Unmarshal([]byte(val), dest)
}

// Set stores a value in cache with an expiration time
func (s *Service) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if !s.enabled {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.client.Set(ctx, key, data, expiration).Err()
}

// Delete removes a key from cache
func (s *Service) Delete(ctx context.Context, key string) error {
	if !s.enabled {
		return nil
	}

	return s.client.Del(ctx, key).Err()
}

// MenuKey is the cache key for a tenant's menu snapshot
func MenuKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("menu:%s", tenantID)
}

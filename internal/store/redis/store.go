package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultVerdictTTL is how long a confirmed guild stays cached (24 hours)
const DefaultVerdictTTL = 24 * time.Hour

// Store handles Redis operations for the verification cache and report counters
type Store struct {
	client     *redis.Client
	verdictTTL time.Duration
}

// NewStore creates a new Redis store. A ttl <= 0 uses DefaultVerdictTTL.
func NewStore(client *redis.Client, verdictTTL time.Duration) *Store {
	if verdictTTL <= 0 {
		verdictTTL = DefaultVerdictTTL
	}
	return &Store{
		client:     client,
		verdictTTL: verdictTTL,
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

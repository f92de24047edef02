package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// GetGuildVerdict returns a cached verdict. ok is false on a cache miss.
func (s *Store) GetGuildVerdict(ctx context.Context, server domain.Server, guild string) (domain.Verdict, bool, error) {
	val, err := s.client.Get(ctx, GuildVerdictKey(server, guild)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.VerdictUnknown, false, nil // Cache miss
		}
		return domain.VerdictUnknown, false, fmt.Errorf("failed to get guild verdict: %w", err)
	}

	switch val {
	case domain.VerdictConfirmed.String():
		return domain.VerdictConfirmed, true, nil
	case domain.VerdictRejected.String():
		return domain.VerdictRejected, true, nil
	default:
		// Unreadable entries behave as a miss and get overwritten.
		return domain.VerdictUnknown, false, nil
	}
}

// SetGuildVerdict caches a verdict. Unknown verdicts are never stored.
func (s *Store) SetGuildVerdict(ctx context.Context, server domain.Server, guild string, verdict domain.Verdict) error {
	if verdict == domain.VerdictUnknown {
		return nil
	}
	if err := s.client.Set(ctx, GuildVerdictKey(server, guild), verdict.String(), s.verdictTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache guild verdict: %w", err)
	}
	return nil
}

// CountGuildVerdicts returns the number of cached guild verdicts
func (s *Store) CountGuildVerdicts(ctx context.Context) (int, error) {
	count := 0
	iter := s.client.Scan(ctx, 0, KeyPrefixGuildVerdict+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan guild verdicts: %w", err)
	}
	return count, nil
}

// FlushGuildVerdicts removes all cached guild verdicts
func (s *Store) FlushGuildVerdicts(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixGuildVerdict+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete guild verdict: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush guild verdicts: %w", err)
	}
	return nil
}

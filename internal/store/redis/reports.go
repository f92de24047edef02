package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

// RecordReport increments the created report counter of a server
func (s *Store) RecordReport(ctx context.Context, server domain.Server) error {
	if err := s.client.HIncrBy(ctx, ReportCountsKey(), string(server), 1).Err(); err != nil {
		return fmt.Errorf("failed to record report: %w", err)
	}
	return nil
}

// ReportCounts returns the number of created reports per server
func (s *Store) ReportCounts(ctx context.Context) (map[domain.Server]int64, error) {
	raw, err := s.client.HGetAll(ctx, ReportCountsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get report counts: %w", err)
	}

	counts := make(map[domain.Server]int64, len(domain.Servers))
	for _, server := range domain.Servers {
		counts[server] = 0
	}
	for field, val := range raw {
		server, ok := domain.ParseServer(field)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid report count for %s: %w", field, err)
		}
		counts[server] = n
	}
	return counts, nil
}

package redis

import (
	"fmt"
	"strings"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
)

const (
	// KeyPrefixGuildVerdict is the prefix for cached guild verdicts
	KeyPrefixGuildVerdict = "hideouts:verify:guild:"
	// KeyReportCounts is the hash of created reports per server
	KeyReportCounts = "hideouts:reports:count"
)

// GuildVerdictKey returns the Redis key for a guild verdict.
// Guild names are case-insensitive on the game API, so the key is too.
func GuildVerdictKey(server domain.Server, guild string) string {
	return KeyPrefixGuildVerdict + string(server) + ":" + strings.ToLower(strings.TrimSpace(guild))
}

// ReportCountsKey returns the key of the per-server report counters
func ReportCountsKey() string {
	return KeyReportCounts
}

// ParseGuildVerdictKey extracts the server and guild from a verdict key
func ParseGuildVerdictKey(key string) (domain.Server, string, error) {
	rest, ok := strings.CutPrefix(key, KeyPrefixGuildVerdict)
	if !ok {
		return "", "", fmt.Errorf("invalid guild verdict key: %s", key)
	}
	name, guild, ok := strings.Cut(rest, ":")
	if !ok || guild == "" {
		return "", "", fmt.Errorf("invalid guild verdict key: %s", key)
	}
	server, ok := domain.ParseServer(name)
	if !ok {
		return "", "", fmt.Errorf("invalid server in guild verdict key: %s", key)
	}
	return server, guild, nil
}

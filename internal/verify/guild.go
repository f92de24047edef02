package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/psykzz/avalon-hideout-mapper/internal/domain"
	"github.com/psykzz/avalon-hideout-mapper/internal/logger"
)

// GuildResult is one guild entry of a gameinfo search response.
type GuildResult struct {
	ID           string `json:"Id"`
	Name         string `json:"Name"`
	AllianceID   string `json:"AllianceId"`
	AllianceName string `json:"AllianceName"`
	KillFame     int64  `json:"KillFame"`
	DeathFame    int64  `json:"DeathFame"`
}

type searchResponse struct {
	Guilds []GuildResult `json:"guilds"`
}

// GameInfoClient queries the regional Albion gameinfo APIs.
type GameInfoClient struct {
	baseURLs map[domain.Server]string
	client   *http.Client
}

// NewGameInfoClient maps each server to its API base, e.g.
// "America" => "https://gameinfo.albiononline.com/api/gameinfo".
func NewGameInfoClient(baseURLs map[string]string, client *http.Client) *GameInfoClient {
	if client == nil {
		client = &http.Client{}
	}
	bases := make(map[domain.Server]string, len(baseURLs))
	for name, base := range baseURLs {
		if server, ok := domain.ParseServer(name); ok {
			bases[server] = strings.TrimRight(base, "/")
		}
	}
	return &GameInfoClient{baseURLs: bases, client: client}
}

// SearchGuilds returns the guilds matching term on server.
func (c *GameInfoClient) SearchGuilds(ctx context.Context, server domain.Server, term string) ([]GuildResult, error) {
	base, ok := c.baseURLs[server]
	if !ok {
		return nil, fmt.Errorf("no gameinfo endpoint for server %q", server)
	}

	endpoint := base + "/search?q=" + url.QueryEscape(term)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gameinfo request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gameinfo returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode gameinfo response: %w", err)
	}
	return result.Guilds, nil
}

// GuildSearcher is implemented by GameInfoClient.
type GuildSearcher interface {
	SearchGuilds(ctx context.Context, server domain.Server, term string) ([]GuildResult, error)
}

// Cache remembers confirmed guilds between requests.
type Cache interface {
	GetGuildVerdict(ctx context.Context, server domain.Server, guild string) (domain.Verdict, bool, error)
	SetGuildVerdict(ctx context.Context, server domain.Server, guild string, verdict domain.Verdict) error
}

// GuildVerifier checks that a guild exists on a server.
type GuildVerifier struct {
	search  GuildSearcher
	cache   Cache // optional
	timeout time.Duration
	logger  logger.Logger
	group   singleflight.Group
}

func NewGuildVerifier(search GuildSearcher, cache Cache, timeout time.Duration, log logger.Logger) *GuildVerifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &GuildVerifier{search: search, cache: cache, timeout: timeout, logger: log}
}

func (v *GuildVerifier) VerifyGuild(ctx context.Context, guild string, server domain.Server) (domain.Verdict, error) {
	if v.cache != nil {
		verdict, ok, err := v.cache.GetGuildVerdict(ctx, server, guild)
		if err != nil {
			v.logger.Warn("guild cache read failed", logger.Error(err))
		} else if ok {
			return verdict, nil
		}
	}

	key := string(server) + "|" + strings.ToLower(guild)
	ch := v.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), v.timeout)
		defer cancel()
		return v.lookup(lookupCtx, guild, server)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.VerdictUnknown, res.Err
		}
		return res.Val.(domain.Verdict), nil
	case <-ctx.Done():
		return domain.VerdictUnknown, ctx.Err()
	}
}

func (v *GuildVerifier) lookup(ctx context.Context, guild string, server domain.Server) (domain.Verdict, error) {
	guilds, err := v.search.SearchGuilds(ctx, server, guild)
	if err != nil {
		return domain.VerdictUnknown, err
	}

	for _, g := range guilds {
		if strings.EqualFold(g.Name, guild) {
			if v.cache != nil {
				if err := v.cache.SetGuildVerdict(ctx, server, guild, domain.VerdictConfirmed); err != nil {
					v.logger.Warn("guild cache write failed", logger.Error(err))
				}
			}
			return domain.VerdictConfirmed, nil
		}
	}
	return domain.VerdictRejected, nil
}

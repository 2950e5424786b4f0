package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"ms-topup/internal/config"
	"ms-topup/internal/logger"
)

// PlayerInfo is the storefront-facing shape of a validated player ID.
type PlayerInfo struct {
	Nickname string `json:"nickname"`
	Country  string `json:"country"`
}

// upstreamResponse mirrors the third-party lookup service payload.
type upstreamResponse struct {
	Nickname string `json:"in-game-nickname"`
	Country  string `json:"country"`
}

type Cache interface {
	Get(ctx context.Context, key string) (*PlayerInfo, error)
	Set(ctx context.Context, key string, info PlayerInfo) error
}

// Client proxies player-ID validation lookups to the configured
// third-party service, with an optional result cache in front.
type Client struct {
	cfg    config.LookupConfig
	client *http.Client
	cache  Cache
	logger *logger.Logger
}

func NewClient(cfg config.LookupConfig, cache Cache, log *logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
		logger: log,
	}
}

// Validate resolves a game ID + server ID to a nickname and country
// name. Cache failures are tolerated: a broken cache degrades to a
// plain upstream call.
func (c *Client) Validate(ctx context.Context, id, serverID string) (*PlayerInfo, error) {
	cacheKey := fmt.Sprintf("lookup:%s:%s", id, serverID)

	if c.cache != nil {
		if info, err := c.cache.Get(ctx, cacheKey); err != nil {
			c.logger.Warn("LOOKUP", fmt.Sprintf("Cache read failed: %v", err))
		} else if info != nil {
			c.logger.Debug("LOOKUP", fmt.Sprintf("Cache hit for %s/%s", id, serverID))
			return info, nil
		}
	}

	upstream, err := c.fetch(ctx, id, serverID)
	if err != nil {
		return nil, err
	}

	info := &PlayerInfo{
		Nickname: upstream.Nickname,
		Country:  CountryName(upstream.Country),
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, *info); err != nil {
			c.logger.Warn("LOOKUP", fmt.Sprintf("Cache write failed: %v", err))
		}
	}
	return info, nil
}

func (c *Client) fetch(ctx context.Context, id, serverID string) (*upstreamResponse, error) {
	if c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("lookup service not configured")
	}

	endpoint := fmt.Sprintf("%s/validasi?id=%s&serverid=%s",
		c.cfg.BaseURL, url.QueryEscape(id), url.QueryEscape(serverID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup service error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Error("LOOKUP", fmt.Sprintf("Failed to close lookup response body: %v", err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup service returned status: %d", resp.StatusCode)
	}

	var upstream upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&upstream); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return &upstream, nil
}

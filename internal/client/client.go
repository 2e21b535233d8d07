package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"liquidation-radar/internal/domain"
)

// DefaultPageSize is the page size used by FetchAll.
const DefaultPageSize = 1000

// Page is one page of liquidation records from the API.
type Page struct {
	Data       []*domain.LiquidationRecord `json:"data"`
	TotalCount int                         `json:"totalCount"`
	Limit      int                         `json:"limit"`
	Offset     int                         `json:"offset"`
}

// Client fetches liquidation records from the HTTP API.
type Client struct {
	baseURL  string
	http     *http.Client
	cache    Cache
	cacheTTL time.Duration

	mu         sync.Mutex
	cachedKeys map[string]struct{}
}

// Option configures Client.
type Option func(*Client)

// WithCache enables response caching with the given TTL.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: 30 * time.Second},
		cachedKeys: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves one page of records.
func (c *Client) Fetch(ctx context.Context, limit, offset int) (*Page, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be non-negative, got %d", offset)
	}

	key := fmt.Sprintf("liquidations:%d:%d", limit, offset)
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, key); ok {
			var page Page
			if err := json.Unmarshal(cached, &page); err == nil {
				return &page, nil
			}
		}
	}

	query := url.Values{}
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("offset", fmt.Sprintf("%d", offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/liquidations?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch liquidations: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("unmarshal page: %w", err)
	}

	if c.cache != nil {
		c.cache.Set(ctx, key, body, c.cacheTTL)
		c.mu.Lock()
		c.cachedKeys[key] = struct{}{}
		c.mu.Unlock()
	}

	return &page, nil
}

// Invalidate drops every page this client has cached, forcing the next
// fetch to hit the API.
func (c *Client) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	c.mu.Lock()
	keys := make([]string, 0, len(c.cachedKeys))
	for k := range c.cachedKeys {
		keys = append(keys, k)
	}
	c.cachedKeys = make(map[string]struct{})
	c.mu.Unlock()

	for _, k := range keys {
		c.cache.Delete(ctx, k)
	}
}

// FetchAll pages through the API until all records are retrieved.
// max bounds the total number of records; 0 means no bound.
func (c *Client) FetchAll(ctx context.Context, max int) ([]*domain.LiquidationRecord, error) {
	var all []*domain.LiquidationRecord

	offset := 0
	for {
		limit := DefaultPageSize
		if max > 0 && max-len(all) < limit {
			limit = max - len(all)
		}
		if limit <= 0 {
			break
		}

		page, err := c.Fetch(ctx, limit, offset)
		if err != nil {
			return nil, err
		}

		all = append(all, page.Data...)
		offset += len(page.Data)

		if len(page.Data) < limit || offset >= page.TotalCount {
			break
		}
	}

	return all, nil
}

package indexer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"racecarr/internal/logging"
	"racecarr/internal/media"
)

const (
	capsCacheTTL      = 5 * time.Minute
	defaultReqTimeout = 12 * time.Second
)

// Endpoint identifies one configured indexer.
type Endpoint struct {
	Name     string
	APIURL   string
	APIKey   string
	Category string
}

type capsResult struct {
	ok      bool
	message string
}

// Client issues capability probes and searches against indexer endpoints.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	caps   *gocache.Cache

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClient constructs an indexer client. timeout bounds each outbound
// request; zero selects the default.
func NewClient(logger *slog.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultReqTimeout
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		logger:   logging.NewComponentLogger(logger, "indexer"),
		caps:     gocache.New(capsCacheTTL, 2*capsCacheTTL),
		limiters: make(map[string]*rate.Limiter),
	}
}

func apiURL(endpoint Endpoint) string {
	return strings.TrimRight(strings.TrimSpace(endpoint.APIURL), "/") + "/api"
}

// limiter returns the per-host rate limiter for an endpoint, creating it on
// first use. Two requests per second with a small burst keeps scheduler
// fan-outs polite without stalling interactive searches.
func (c *Client) limiter(endpoint Endpoint) *rate.Limiter {
	host := endpoint.APIURL
	if parsed, err := url.Parse(endpoint.APIURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(500*time.Millisecond), 2)
		c.limiters[host] = limiter
	}
	return limiter
}

// Test probes the endpoint's capabilities and reports whether searches can be
// trusted. Results are cached briefly per endpoint URL.
func (c *Client) Test(ctx context.Context, endpoint Endpoint) (bool, string) {
	cacheKey := apiURL(endpoint) + "|" + endpoint.APIKey
	if cached, found := c.caps.Get(cacheKey); found {
		result := cached.(capsResult)
		return result.ok, result.message
	}

	ok, message := c.probeCaps(ctx, endpoint)
	c.caps.Set(cacheKey, capsResult{ok: ok, message: message}, gocache.DefaultExpiration)
	return ok, message
}

func (c *Client) probeCaps(ctx context.Context, endpoint Endpoint) (bool, string) {
	params := url.Values{}
	params.Set("t", "caps")
	if endpoint.APIKey != "" {
		params.Set("apikey", endpoint.APIKey)
	}

	status, contentType, body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return false, fmt.Sprintf("request failed: %v", err)
	}
	if status != http.StatusOK {
		return false, fmt.Sprintf("HTTP %d from indexer", status)
	}

	lowered := strings.ToLower(body)
	if strings.Contains(contentType, "text/html") {
		return false, "HTML response; check API URL (no caps)"
	}
	if strings.Contains(lowered, "<error") || strings.Contains(lowered, "invalid api") ||
		(strings.Contains(lowered, "apikey") && strings.Contains(lowered, "invalid")) {
		return false, "indexer reported API key error"
	}
	if !strings.Contains(lowered, "<caps") && !strings.Contains(lowered, "<newznab") {
		return false, "unexpected response from indexer (no caps)"
	}

	// With a key configured, run a lightweight authenticated search so an
	// invalid key surfaces during the connection test instead of silently
	// returning empty results later.
	if endpoint.APIKey != "" {
		searchParams := url.Values{}
		searchParams.Set("t", "search")
		searchParams.Set("q", "f1")
		searchParams.Set("limit", "1")
		searchParams.Set("apikey", endpoint.APIKey)
		status, contentType, body, err = c.get(ctx, endpoint, searchParams)
		if err != nil {
			return false, fmt.Sprintf("search request failed: %v", err)
		}
		if status != http.StatusOK {
			return false, fmt.Sprintf("HTTP %d from indexer search", status)
		}
		lowered = strings.ToLower(body)
		if strings.Contains(lowered, "<error") ||
			(strings.Contains(lowered, "apikey") && strings.Contains(lowered, "invalid")) {
			return false, "indexer search reports API key invalid"
		}
		if strings.Contains(contentType, "text/html") {
			return false, "HTML response on search; API key may be invalid"
		}
	}

	return true, "caps retrieved"
}

// Search issues one free-text search and parses the feed into candidates.
func (c *Client) Search(ctx context.Context, endpoint Endpoint, query string, limit int) ([]media.Candidate, error) {
	params := url.Values{}
	params.Set("t", "search")
	params.Set("q", query)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if endpoint.APIKey != "" {
		params.Set("apikey", endpoint.APIKey)
	}
	if endpoint.Category != "" {
		params.Set("cat", endpoint.Category)
	}

	status, _, body, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, fmt.Errorf("indexer search: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("indexer search: HTTP %d", status)
	}

	candidates, err := parseFeed(endpoint.Name, body, time.Now())
	if err != nil {
		return nil, fmt.Errorf("parse indexer feed: %w", err)
	}
	return candidates, nil
}

func (c *Client) get(ctx context.Context, endpoint Endpoint, params url.Values) (int, string, string, error) {
	if err := c.limiter(endpoint).Wait(ctx); err != nil {
		return 0, "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL(endpoint)+"?"+params.Encode(), nil)
	if err != nil {
		return 0, "", "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return 0, "", "", fmt.Errorf("read response: %w", err)
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	return resp.StatusCode, contentType, string(body), nil
}

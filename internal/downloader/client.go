package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"racecarr/internal/logging"
)

const defaultReqTimeout = 10 * time.Second

// Target identifies one configured download client.
type Target struct {
	ID       int64
	Name     string
	Type     string
	APIURL   string
	APIKey   string
	Category string
	Priority int
}

// HistoryEntry is one row from a downloader's history feed.
type HistoryEntry struct {
	Name   string
	Status string
}

// Client exposes the uniform downloader surface over both backend shapes.
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient constructs a downloader client. timeout bounds each outbound
// request; zero selects the default.
func NewClient(logger *slog.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultReqTimeout
	}
	return &Client{
		http:   &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "downloader"),
	}
}

// Test checks connectivity and credentials for a target.
func (c *Client) Test(ctx context.Context, target Target) (bool, string) {
	switch normalizeType(target.Type) {
	case "sabnzbd":
		return c.testSabnzbd(ctx, target)
	case "nzbget":
		return c.testNzbget(ctx, target)
	default:
		return false, fmt.Sprintf("unsupported downloader type: %s", target.Type)
	}
}

// Send enqueues an NZB locator with the target, using the given display title,
// category, and priority.
func (c *Client) Send(ctx context.Context, target Target, nzbURL, title, category string, priority int) (bool, string) {
	switch normalizeType(target.Type) {
	case "sabnzbd":
		return c.sendSabnzbd(ctx, target, nzbURL, title, category, priority)
	case "nzbget":
		return c.sendNzbget(ctx, target, nzbURL, title, category, priority)
	default:
		return false, fmt.Sprintf("unsupported downloader type: %s", target.Type)
	}
}

// History reads up to limit recent history entries from the target.
func (c *Client) History(ctx context.Context, target Target, limit int) ([]HistoryEntry, error) {
	switch normalizeType(target.Type) {
	case "sabnzbd":
		return c.historySabnzbd(ctx, target, limit)
	case "nzbget":
		return c.historyNzbget(ctx, target, limit)
	default:
		return nil, fmt.Errorf("unsupported downloader type: %s", target.Type)
	}
}

func normalizeType(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

package notifications

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"

	"racecarr/internal/config"
	"racecarr/internal/logging"
)

const userAgent = "Racecarr/0.1.0"

// Event names a scheduler milestone worth telling the user about.
type Event string

const (
	EventDownloadStarted   Event = "download-started"
	EventDownloadCompleted Event = "download-completed"
	EventDownloadFailed    Event = "download-failed"
	EventTest              Event = "test"
)

// Payload carries structured detail alongside the human message.
type Payload map[string]any

// Service is the notification surface exposed to the scheduler and API.
type Service interface {
	// Publish fans the event out to every matching target. It reports whether
	// all deliveries succeeded and returns one error string per failed target.
	Publish(ctx context.Context, event Event, title, message string, data Payload) (bool, []string)
	// Test sends a connectivity probe to every target regardless of filters.
	Test(ctx context.Context) (bool, []string)
}

// NewService builds a notification service from the configured targets. When
// no targets are configured a noop implementation is returned.
func NewService(cfg *config.Config, logger *slog.Logger) Service {
	if len(cfg.Notifications.Targets) == 0 {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &multiService{
		targets: cfg.Notifications.Targets,
		client:  &http.Client{Timeout: timeout},
		logger:  logging.NewComponentLogger(logger, "notifications"),
	}
}

type multiService struct {
	targets []config.NotificationTarget
	client  *http.Client
	logger  *slog.Logger
}

func (s *multiService) Publish(ctx context.Context, event Event, title, message string, data Payload) (bool, []string) {
	var failures []string
	for _, target := range s.targets {
		if !targetWants(target, event) {
			continue
		}
		if err := s.deliver(ctx, target, event, title, message, data); err != nil {
			id := Fingerprint(target.URL)
			s.logger.Warn("notification delivery failed",
				logging.String("target", id),
				logging.String("type", target.Type),
				logging.String("event", string(event)),
				logging.Error(err))
			failures = append(failures, fmt.Sprintf("%s %s: %v", target.Type, id, err))
			continue
		}
		s.logger.Debug("notification delivered",
			logging.String("target", Fingerprint(target.URL)),
			logging.String("event", string(event)))
	}
	return len(failures) == 0, failures
}

func (s *multiService) Test(ctx context.Context) (bool, []string) {
	return s.Publish(ctx, EventTest, "Racecarr", "Test notification from Racecarr", nil)
}

func (s *multiService) deliver(ctx context.Context, target config.NotificationTarget, event Event, title, message string, data Payload) error {
	switch strings.ToLower(strings.TrimSpace(target.Type)) {
	case "webhook":
		return s.sendWebhook(ctx, target, event, message, data)
	case "shoutrrr", "":
		return s.sendShoutrrr(target, title, message)
	default:
		return fmt.Errorf("unsupported target type %q", target.Type)
	}
}

func (s *multiService) sendShoutrrr(target config.NotificationTarget, title, message string) error {
	sender, err := shoutrrr.CreateSender(target.URL)
	if err != nil {
		return fmt.Errorf("create sender: %w", err)
	}
	// The default shoutrrr logger prints the full service URL on failure.
	sender.SetLogger(log.New(io.Discard, "", 0))

	params := types.Params{}
	if title != "" {
		params.SetTitle(title)
	}
	for _, sendErr := range sender.Send(message, &params) {
		if sendErr != nil {
			return sendErr
		}
	}
	return nil
}

func (s *multiService) sendWebhook(ctx context.Context, target config.NotificationTarget, event Event, message string, data Payload) error {
	body, err := json.Marshal(map[string]any{
		"event":   string(event),
		"message": message,
		"data":    data,
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")
	if target.Secret != "" {
		req.Header.Set("X-Webhook-Secret", target.Secret)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func targetWants(target config.NotificationTarget, event Event) bool {
	if event == EventTest || len(target.Events) == 0 {
		return true
	}
	for _, name := range target.Events {
		if strings.EqualFold(strings.TrimSpace(name), string(event)) {
			return true
		}
	}
	return false
}

// Fingerprint identifies a target URL without exposing embedded credentials.
func Fingerprint(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Scheme == "" {
		sum := sha256.Sum256([]byte(raw))
		return hex.EncodeToString(sum[:])[:8]
	}
	sum := sha256.Sum256([]byte(parsed.Scheme + parsed.Host))
	return hex.EncodeToString(sum[:])[:8]
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, string, string, Payload) (bool, []string) {
	return true, nil
}

func (noopService) Test(context.Context) (bool, []string) { return true, nil }

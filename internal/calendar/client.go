package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"racecarr/internal/classify"
	"racecarr/internal/logging"
	"racecarr/internal/media"
	"racecarr/internal/services"
)

const defaultReqTimeout = 15 * time.Second

// sessionKeys maps feed schedule keys to session type tokens, in the order
// events are emitted.
var sessionKeys = []struct {
	key     string
	session classify.SessionType
}{
	{"race", classify.SessionRace},
	{"qualy", classify.SessionQualifying},
	{"fp1", classify.SessionFP1},
	{"fp2", classify.SessionFP2},
	{"fp3", classify.SessionFP3},
	{"sprintQualy", classify.SessionSprintQualifying},
	{"sprintRace", classify.SessionSprint},
}

// Client fetches season schedules from an f1api-compatible endpoint.
type Client struct {
	http    *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewClient constructs a calendar client for the given base URL. timeout
// bounds each request; zero selects the default.
func NewClient(baseURL string, logger *slog.Logger, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultReqTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		logger:  logging.NewComponentLogger(logger, "calendar"),
	}
}

type feedPayload struct {
	Races []feedRace `json:"races"`
}

type feedRace struct {
	Round    json.Number                `json:"round"`
	RaceName string                     `json:"raceName"`
	Name     string                     `json:"name"`
	Circuit  feedCircuit                `json:"circuit"`
	Schedule map[string]feedScheduleRow `json:"schedule"`
}

type feedCircuit struct {
	CircuitName string `json:"circuitName"`
	Name        string `json:"name"`
	Country     string `json:"country"`
}

type feedScheduleRow struct {
	Start    string `json:"start"`
	Datetime string `json:"datetime"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	End      string `json:"end"`
}

// FetchSeason downloads and parses the round list for a year.
func (c *Client) FetchSeason(ctx context.Context, year int) ([]media.Round, error) {
	url := fmt.Sprintf("%s/api/%d", c.baseURL, year)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "calendar", "fetch",
			fmt.Sprintf("request failed for %s", url), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "calendar", "fetch",
			fmt.Sprintf("season feed responded %d for %s", resp.StatusCode, url), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read season feed: %w", err)
	}

	var payload feedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse season feed: %w", err)
	}

	rounds := make([]media.Round, 0, len(payload.Races))
	for _, race := range payload.Races {
		rounds = append(rounds, parseRace(race, year))
	}
	c.logger.Info("season feed fetched",
		logging.Int("year", year),
		logging.Int("rounds", len(rounds)))
	return rounds, nil
}

func parseRace(race feedRace, year int) media.Round {
	roundNumber := 0
	if n, err := strconv.Atoi(strings.TrimSpace(race.Round.String())); err == nil {
		roundNumber = n
	}

	name := strings.TrimSpace(race.RaceName)
	if name == "" {
		name = strings.TrimSpace(race.Name)
	}
	if name == "" {
		name = fmt.Sprintf("Round %d", roundNumber)
	}

	circuit := strings.TrimSpace(race.Circuit.CircuitName)
	if circuit == "" {
		circuit = strings.TrimSpace(race.Circuit.Name)
	}

	round := media.Round{
		Year:        year,
		RoundNumber: roundNumber,
		Name:        name,
		Circuit:     circuit,
		Country:     strings.TrimSpace(race.Circuit.Country),
	}

	for _, entry := range sessionKeys {
		row, ok := race.Schedule[entry.key]
		if !ok {
			continue
		}
		start := parseFeedTime(scheduleStart(row))
		end := parseFeedTime(row.End)
		if start == nil && end == nil {
			continue
		}
		round.Events = append(round.Events, media.Event{
			Type:     string(entry.session),
			StartUTC: start,
			EndUTC:   end,
		})
	}
	return round
}

// scheduleStart prefers an explicit start, then combines date+time.
func scheduleStart(row feedScheduleRow) string {
	if row.Start != "" {
		return row.Start
	}
	if row.Datetime != "" {
		return row.Datetime
	}
	if row.Date != "" && row.Time != "" {
		return row.Date + "T" + row.Time
	}
	return row.Date
}

var feedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseFeedTime(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}

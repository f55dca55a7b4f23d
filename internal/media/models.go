package media

import (
	"strings"
	"time"
)

// Season groups the rounds of one championship year.
type Season struct {
	ID            int64      `json:"id"`
	Year          int        `json:"year"`
	Hidden        bool       `json:"hidden"`
	LastRefreshed *time.Time `json:"last_refreshed,omitempty"`
	Rounds        []Round    `json:"rounds,omitempty"`
}

// Round is one race weekend within a season.
type Round struct {
	ID          int64   `json:"id"`
	SeasonID    int64   `json:"season_id"`
	Year        int     `json:"year"`
	RoundNumber int     `json:"round_number"`
	Name        string  `json:"name"`
	Circuit     string  `json:"circuit,omitempty"`
	Country     string  `json:"country,omitempty"`
	Events      []Event `json:"events,omitempty"`
}

// Event is a single scheduled session within a round.
type Event struct {
	ID       int64      `json:"id"`
	RoundID  int64      `json:"round_id"`
	Type     string     `json:"type"`
	StartUTC *time.Time `json:"start_utc,omitempty"`
	EndUTC   *time.Time `json:"end_utc,omitempty"`
}

// EventStart returns the UTC start time of the round's session of the given
// type, or nil when the session is not scheduled or has no start time.
func (r Round) EventStart(eventType string) *time.Time {
	target := strings.ToLower(strings.TrimSpace(eventType))
	for _, event := range r.Events {
		if strings.ToLower(event.Type) == target {
			return event.StartUTC
		}
	}
	return nil
}

// HasEventType reports whether the round schedules a session of the given type.
func (r Round) HasEventType(eventType string) bool {
	target := strings.ToLower(strings.TrimSpace(eventType))
	for _, event := range r.Events {
		if strings.ToLower(event.Type) == target {
			return true
		}
	}
	return false
}

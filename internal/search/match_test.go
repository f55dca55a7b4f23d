package search

import (
	"testing"

	"racecarr/internal/media"
)

func monacoRound() media.Round {
	return media.Round{
		ID:          7,
		Year:        2025,
		RoundNumber: 8,
		Name:        "Formula 1 Grand Prix de Monaco 2025",
		Circuit:     "Circuit de Monaco",
		Country:     "Monaco",
	}
}

func TestMatchesRound(t *testing.T) {
	round := monacoRound()

	cases := []struct {
		name  string
		title string
		want  bool
	}{
		{"full match", "Formula 1 2025 Monaco Grand Prix Race 1080p", true},
		{"separator styles", "F1.2025.Monaco.Grand.Prix.Qualifying.1080p", true},
		{"round number agrees", "F1 2025 R08 Monaco Race 1080p", true},
		{"year missing", "F1 Monaco Grand Prix Race 1080p", false},
		{"year mismatch", "F1 2024 Monaco Grand Prix Race 1080p", false},
		{"round number conflicts", "F1 2025 R09 Monaco Race 1080p", false},
		{"f2 excluded", "F2 2025 Monaco Feature Race 1080p", false},
		{"formula 2 excluded", "Formula 2 2025 Monaco Race 1080p", false},
		{"f1 academy excluded", "F1 Academy 2025 Monaco Race 1080p", false},
		{"no series signal", "2025 Monaco Race 1080p", false},
		{"wrong location", "F1 2025 Silverstone Race 1080p", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchesRound(tc.title, round); got != tc.want {
				t.Fatalf("MatchesRound(%q) = %v, want %v", tc.title, got, tc.want)
			}
		})
	}
}

func TestMatchesRoundNumberFallback(t *testing.T) {
	// Without usable location terms the round number is the only positive
	// signal left.
	round := media.Round{Year: 2025, RoundNumber: 3, Name: "GP"}

	if !MatchesRound("F1 2025 Round 3 Race 1080p", round) {
		t.Fatal("expected round-number fallback to match")
	}
	if MatchesRound("F1 2025 Race 1080p", round) {
		t.Fatal("expected no match without location terms or round number")
	}
}

func TestMatchesRoundCountryTerm(t *testing.T) {
	round := media.Round{
		Year:        2025,
		RoundNumber: 21,
		Name:        "Formula 1 Grande Premio de Sao Paulo 2025",
		Country:     "Brazil",
	}
	if !MatchesRound("F1 2025 Brazil Sprint 1080p", round) {
		t.Fatal("expected country term to match")
	}
}

package search

import (
	"regexp"
	"strconv"
	"strings"

	"racecarr/internal/classify"
	"racecarr/internal/media"
)

var (
	otherSeriesPattern = regexp.MustCompile(`\bf[23]\b|\bformula ?[23]\b|\bf1 academy\b|\bacademy\b`)
	f1SignalPattern    = regexp.MustCompile(`\bf1\b|\bformula ?1\b`)
	roundNumberPattern = regexp.MustCompile(`\b(?:round|rnd|r)\s?0?(\d{1,2})\b`)
)

// MatchesRound decides whether a release title plausibly belongs to the given
// season round. The rule order is load-bearing: year, then other-series
// exclusion, then the F1 signal token, then round-number conflict, then
// location terms with round number as the fallback positive signal.
func MatchesRound(title string, round media.Round) bool {
	normalized := classify.Normalize(title)
	if normalized == "" {
		return false
	}

	if !containsToken(normalized, strconv.Itoa(round.Year)) {
		return false
	}

	if otherSeriesPattern.MatchString(normalized) {
		return false
	}

	if !f1SignalPattern.MatchString(normalized) {
		return false
	}

	titleRound, hasRoundNumber := extractRoundNumber(normalized)
	if hasRoundNumber && titleRound != round.RoundNumber {
		return false
	}

	terms := locationTerms(round)
	if len(terms) == 0 {
		// Titles frequently omit explicit numbering, so the number is only a
		// fallback signal when no location terms exist at all.
		return hasRoundNumber && titleRound == round.RoundNumber
	}
	for _, term := range terms {
		if strings.Contains(normalized, term) {
			return true
		}
	}
	return false
}

func extractRoundNumber(normalized string) (int, bool) {
	match := roundNumberPattern.FindStringSubmatch(normalized)
	if match == nil {
		return 0, false
	}
	number, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return number, true
}

// locationTerms builds the lowercased term set that positively identifies a
// round: significant cleaned-name words, the cleaned-name tail, the country,
// and the circuit name.
func locationTerms(round media.Round) []string {
	var terms []string
	seen := make(map[string]struct{})
	add := func(term string) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}

	cleaned := CleanRoundName(round.Name)
	for _, word := range strings.Fields(cleaned) {
		lower := strings.ToLower(word)
		if len(lower) < 3 {
			continue
		}
		if _, ok := stopWords[lower]; ok {
			continue
		}
		add(lower)
	}
	if tail := lastTwoWords(cleaned); strings.Contains(tail, " ") {
		add(tail)
	}
	add(round.Country)
	add(round.Circuit)
	return terms
}

func containsToken(normalized, token string) bool {
	for _, field := range strings.Fields(normalized) {
		if field == token {
			return true
		}
	}
	return false
}

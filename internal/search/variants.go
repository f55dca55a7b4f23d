package search

import (
	"fmt"
	"regexp"
	"strings"

	"racecarr/internal/classify"
	"racecarr/internal/media"
)

const maxQueryTokens = 5

// stopWords are generic race-weekend nouns and authority tokens that rarely
// appear in release titles.
var stopWords = map[string]struct{}{
	"grand":    {},
	"prix":     {},
	"gp":       {},
	"weekend":  {},
	"session":  {},
	"fia":      {},
	"official": {},
	"the":      {},
}

// sponsorBlocklist holds title sponsors embedded in official round names that
// releases almost never carry.
var sponsorBlocklist = []string{
	"aramco",
	"aws",
	"crypto.com",
	"etihad airways",
	"gulf air",
	"heineken",
	"lenovo",
	"louis vuitton",
	"msc cruises",
	"pirelli",
	"qatar airways",
	"rolex",
	"singapore airlines",
	"stc",
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Variants expands a raw query into an ordered, deduplicated list of search
// strings from most specific (the original) to more general.
func Variants(query string) []string {
	var variants []string
	seen := make(map[string]struct{})
	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		variants = append(variants, candidate)
	}

	add(query)

	normalized := normalizeQuery(query)
	add(normalized)

	tokens := strings.Fields(normalized)

	if stripped := removeStopWords(tokens); len(stripped) != len(tokens) {
		add(strings.Join(stripped, " "))
	}

	if len(tokens) > maxQueryTokens {
		add(strings.Join(tokens[:maxQueryTokens], " "))
	}

	if collapsed, changed := collapseFormulaTokens(tokens); changed {
		add(strings.Join(collapsed, " "))
	}

	return variants
}

// RoundQueries builds the query set for a round-driven search: base series
// names crossed with round name forms and session label synonyms.
func RoundQueries(round media.Round, session classify.SessionType) []string {
	cleaned := CleanRoundName(round.Name)
	names := []string{round.Name}
	if round.RoundNumber > 0 {
		names = append(names, fmt.Sprintf("Round %d %s", round.RoundNumber, cleaned))
	}
	names = append(names, cleaned)
	if tail := lastTwoWords(cleaned); tail != "" && tail != cleaned {
		names = append(names, tail)
	}

	var queries []string
	seen := make(map[string]struct{})
	for _, base := range []string{"F1", "Formula 1"} {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			for _, label := range classify.QueryLabels(session) {
				query := base + " " + name + " " + label
				if _, ok := seen[query]; ok {
					continue
				}
				seen[query] = struct{}{}
				queries = append(queries, query)
			}
		}
	}
	return queries
}

// CleanRoundName strips embedded years and title sponsors from an official
// round name and collapses the remaining whitespace.
func CleanRoundName(name string) string {
	cleaned := yearPattern.ReplaceAllString(name, " ")
	lowered := strings.ToLower(cleaned)
	for _, sponsor := range sponsorBlocklist {
		for {
			idx := strings.Index(lowered, sponsor)
			if idx < 0 {
				break
			}
			cleaned = cleaned[:idx] + " " + cleaned[idx+len(sponsor):]
			lowered = lowered[:idx] + " " + lowered[idx+len(sponsor):]
		}
	}
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return strings.Join(strings.Fields(name), " ")
	}
	return strings.Join(fields, " ")
}

func normalizeQuery(query string) string {
	spaced := strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(query)
	return strings.Join(strings.Fields(spaced), " ")
}

func removeStopWords(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := stopWords[strings.ToLower(token)]; ok {
			continue
		}
		out = append(out, token)
	}
	return out
}

// collapseFormulaTokens folds "formula 1" and "formula1" (and bare "formula")
// into the single token "f1".
func collapseFormulaTokens(tokens []string) ([]string, bool) {
	out := make([]string, 0, len(tokens))
	changed := false
	for i := 0; i < len(tokens); i++ {
		lower := strings.ToLower(tokens[i])
		if lower == "formula" || lower == "formula1" {
			if i+1 < len(tokens) && tokens[i+1] == "1" {
				i++
			}
			out = append(out, "f1")
			changed = true
			continue
		}
		out = append(out, tokens[i])
	}
	return out, changed
}

func lastTwoWords(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[len(fields)-2:], " ")
}

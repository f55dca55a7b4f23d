package classify

import (
	"regexp"
	"strings"
)

type rule struct {
	session SessionType
	pattern *regexp.Regexp
}

// rules are evaluated in order; the first match wins. Precedence among
// overlapping categories (sprint-qualifying before sprint, pre/post shows
// before race, race last) is encoded in this ordering.
var rules = []rule{
	{SessionFullBroadcast, regexp.MustCompile(`\bfull broadcast\b`)},
	{SessionF1Kids, regexp.MustCompile(`\b(f1 )?kids( broadcast)?\b`)},
	{SessionSprintPreShow, regexp.MustCompile(`\b(pre sprint|sprint pre) show\b`)},
	{SessionSprintPostShow, regexp.MustCompile(`\b(post sprint|sprint post) show\b`)},
	{SessionPreRaceShow, regexp.MustCompile(`\bpre race( show)?\b`)},
	{SessionPostRaceShow, regexp.MustCompile(`\bpost race( show)?\b`)},
	{SessionSprintNotebook, regexp.MustCompile(`\bsprint\b.*\bnotebook\b|\bnotebook\b.*\bsprint\b`)},
	{SessionNotebook, regexp.MustCompile(`\bnotebook\b`)},
	{SessionSprintQualifying, regexp.MustCompile(`\bsprint (qualifying|shootout|quali|q)\b`)},
	{SessionSprint, regexp.MustCompile(`\bsprint( race)?\b`)},
	{SessionQualifying, regexp.MustCompile(`\bqualifying\b|\bquali\b|\bqualify\b`)},
	{SessionFP3, regexp.MustCompile(`\bfp3\b|\b(free )?practice (3|three)\b`)},
	{SessionFP2, regexp.MustCompile(`\bfp2\b|\b(free )?practice (2|two)\b`)},
	{SessionFP1, regexp.MustCompile(`\bfp1\b|\b(free )?practice (1|one)\b`)},
	{SessionF1Live, regexp.MustCompile(`\bf1 live\b`)},
	{SessionF1Show, regexp.MustCompile(`\bf1 show\b`)},
	{SessionPrincipalsPressConf, regexp.MustCompile(`\b(team )?principals? press conference\b`)},
	{SessionDriversPressConf, regexp.MustCompile(`\b(drivers? )?press conference\b`)},
	{SessionRace, regexp.MustCompile(`\brace\b|\bgrand prix\b`)},
}

var separators = strings.NewReplacer(".", " ", "_", " ", "-", " ")

// Normalize lowercases text and folds the separator characters release titles
// use (dots, underscores, hyphens) into single spaces, so classification and
// matching are insensitive to separator style.
func Normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	spaced := separators.Replace(lowered)
	return strings.Join(strings.Fields(spaced), " ")
}

// Classify returns the canonical session type for a release title or session
// label, or false when no rule matches.
func Classify(text string) (SessionType, bool) {
	normalized := Normalize(text)
	if normalized == "" {
		return "", false
	}
	for _, r := range rules {
		if r.pattern.MatchString(normalized) {
			return r.session, true
		}
	}
	return "", false
}

func normalizeToken(value string) string {
	lowered := strings.ToLower(strings.TrimSpace(value))
	spaced := separators.Replace(lowered)
	return strings.Join(strings.Fields(spaced), "-")
}

package classify

// SessionType is the canonical label for a broadcast session category.
type SessionType string

const (
	SessionFullBroadcast       SessionType = "full-broadcast"
	SessionF1Kids              SessionType = "f1-kids"
	SessionPreRaceShow         SessionType = "pre-race-show"
	SessionPostRaceShow        SessionType = "post-race-show"
	SessionSprintPreShow       SessionType = "sprint-pre-show"
	SessionSprintPostShow      SessionType = "sprint-post-show"
	SessionSprintNotebook      SessionType = "sprint-notebook"
	SessionNotebook            SessionType = "notebook"
	SessionSprintQualifying    SessionType = "sprint-qualifying"
	SessionSprint              SessionType = "sprint"
	SessionQualifying          SessionType = "qualifying"
	SessionFP3                 SessionType = "fp3"
	SessionFP2                 SessionType = "fp2"
	SessionFP1                 SessionType = "fp1"
	SessionF1Live              SessionType = "f1-live"
	SessionF1Show              SessionType = "f1-show"
	SessionDriversPressConf    SessionType = "drivers-press-conference"
	SessionPrincipalsPressConf SessionType = "team-principals-press-conference"
	SessionRace                SessionType = "race"
)

// DefaultAllowlist is the set of session types eligible for automated search
// and scheduling unless the caller asks for something broader.
func DefaultAllowlist() []SessionType {
	return []SessionType{
		SessionRace,
		SessionQualifying,
		SessionSprint,
		SessionSprintQualifying,
		SessionFP1,
		SessionFP2,
		SessionFP3,
	}
}

var displayLabels = map[SessionType]string{
	SessionFullBroadcast:       "Full Broadcast",
	SessionF1Kids:              "F1 Kids",
	SessionPreRaceShow:         "Pre-Race Show",
	SessionPostRaceShow:        "Post-Race Show",
	SessionSprintPreShow:       "Sprint Pre-Show",
	SessionSprintPostShow:      "Sprint Post-Show",
	SessionSprintNotebook:      "Sprint Notebook",
	SessionNotebook:            "Notebook",
	SessionSprintQualifying:    "Sprint Qualifying",
	SessionSprint:              "Sprint",
	SessionQualifying:          "Qualifying",
	SessionFP3:                 "FP3",
	SessionFP2:                 "FP2",
	SessionFP1:                 "FP1",
	SessionF1Live:              "F1 Live",
	SessionF1Show:              "F1 Show",
	SessionDriversPressConf:    "Drivers Press Conference",
	SessionPrincipalsPressConf: "Team Principals Press Conference",
	SessionRace:                "Race",
}

// DisplayLabel returns a human-readable label for a session type, or "Other"
// for unknown values.
func DisplayLabel(session SessionType) string {
	if label, ok := displayLabels[session]; ok {
		return label
	}
	return "Other"
}

var querySynonyms = map[SessionType][]string{
	SessionRace:             {"Race"},
	SessionQualifying:       {"Qualifying", "Quali"},
	SessionSprint:           {"Sprint", "Sprint Race"},
	SessionSprintQualifying: {"Sprint Qualifying", "Sprint Shootout", "Sprint.Q", "Sprint Quali"},
	SessionFP1:              {"FP1", "Practice One", "Practice 1"},
	SessionFP2:              {"FP2", "Practice Two", "Practice 2"},
	SessionFP3:              {"FP3", "Practice Three", "Practice 3"},
}

// QueryLabels returns the search label synonyms used when building
// round-driven queries for a session type. Unknown types fall back to the
// display label.
func QueryLabels(session SessionType) []string {
	if labels, ok := querySynonyms[session]; ok {
		cp := make([]string, len(labels))
		copy(cp, labels)
		return cp
	}
	return []string{DisplayLabel(session)}
}

// ParseSessionType normalizes a user-supplied session type string.
func ParseSessionType(value string) (SessionType, bool) {
	session := SessionType(normalizeToken(value))
	if _, ok := displayLabels[session]; ok {
		return session, true
	}
	return "", false
}

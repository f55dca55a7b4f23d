package scoring

import (
	"fmt"
	"math"
	"strings"

	"racecarr/internal/config"
	"racecarr/internal/media"
)

const (
	baseScore           = 50
	resolutionStepBonus = 10
	resolutionPenalty   = 100
	hdrBonus            = 15
	hdrPenalty          = 25
	tokenMatchBonus     = 8
	sizeBonusCap        = 20
	seederBonusCap      = 15
)

// Settings are the effective preferences a candidate is scored against.
type Settings struct {
	MinResolution   string
	MaxResolution   string
	AllowHDR        bool
	PreferredCodecs []string
	PreferredGroups []string
	Threshold       int
}

// Override holds per-item preference overrides; nil fields fall through to
// the global settings.
type Override struct {
	MinResolution *string
	MaxResolution *string
	AllowHDR      *bool
	Threshold     *int
}

// FromConfig builds scoring settings from the global search configuration.
func FromConfig(search config.Search) Settings {
	return Settings{
		MinResolution:   search.MinResolution,
		MaxResolution:   search.MaxResolution,
		AllowHDR:        search.AllowHDR,
		PreferredCodecs: search.PreferredCodecs,
		PreferredGroups: search.PreferredGroups,
		Threshold:       search.AutoDownloadThreshold,
	}
}

// Effective applies per-item overrides on top of base settings.
func Effective(base Settings, override Override) Settings {
	out := base
	if override.MinResolution != nil {
		out.MinResolution = *override.MinResolution
	}
	if override.MaxResolution != nil {
		out.MaxResolution = *override.MaxResolution
	}
	if override.AllowHDR != nil {
		out.AllowHDR = *override.AllowHDR
	}
	if override.Threshold != nil {
		out.Threshold = *override.Threshold
	}
	return out
}

// Score rates one candidate against the settings and explains the result.
func Score(candidate media.Candidate, settings Settings) (int, []string) {
	score := baseScore
	var reasons []string

	minRank := config.ResolutionRank(settings.MinResolution)
	maxRank := config.ResolutionRank(settings.MaxResolution)
	rank := config.ResolutionRank(candidate.Quality)

	switch {
	case rank == 0:
		reasons = append(reasons, "resolution unknown")
	case rank < minRank || (maxRank > 0 && rank > maxRank):
		score -= resolutionPenalty
		reasons = append(reasons, fmt.Sprintf("resolution %s outside allowed range %s-%s",
			candidate.Quality, settings.MinResolution, settings.MaxResolution))
	default:
		score += rank * resolutionStepBonus
		reasons = append(reasons, fmt.Sprintf("resolution %s", candidate.Quality))
	}

	if candidate.IsHDR() {
		if settings.AllowHDR {
			score += hdrBonus
			reasons = append(reasons, "HDR")
		} else {
			score -= hdrPenalty
			reasons = append(reasons, "HDR not allowed")
		}
	}

	lowerTitle := strings.ToLower(candidate.Title)
	for _, codec := range settings.PreferredCodecs {
		if codec != "" && strings.Contains(lowerTitle, strings.ToLower(codec)) {
			score += tokenMatchBonus
			reasons = append(reasons, "preferred codec "+codec)
		}
	}
	for _, group := range settings.PreferredGroups {
		if group != "" && strings.Contains(lowerTitle, strings.ToLower(group)) {
			score += tokenMatchBonus
			reasons = append(reasons, "preferred group "+group)
		}
	}

	if bonus := sizeBonus(candidate.SizeMB); bonus > 0 {
		score += bonus
		reasons = append(reasons, fmt.Sprintf("size %d MB", candidate.SizeMB))
	}
	if bonus := seederBonus(candidate.Seeders); bonus > 0 {
		score += bonus
		reasons = append(reasons, fmt.Sprintf("%d seeders", candidate.Seeders))
	}

	return score, reasons
}

// Apply scores candidates in place.
func Apply(candidates []media.Candidate, settings Settings) {
	for i := range candidates {
		score, reasons := Score(candidates[i], settings)
		candidates[i].Score = &score
		candidates[i].ScoreReasons = reasons
	}
}

// sizeBonus grows logarithmically with size so doubling a release adds a
// constant increment, capped well below the resolution weights.
func sizeBonus(sizeMB int64) int {
	if sizeMB <= 0 {
		return 0
	}
	bonus := int(math.Log2(1+float64(sizeMB)/1024) * 5)
	if bonus > sizeBonusCap {
		return sizeBonusCap
	}
	return bonus
}

func seederBonus(seeders int) int {
	if seeders <= 0 {
		return 0
	}
	bonus := int(math.Log2(1+float64(seeders)) * 2)
	if bonus > seederBonusCap {
		return seederBonusCap
	}
	return bonus
}

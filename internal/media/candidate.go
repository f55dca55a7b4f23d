package media

import "strings"

// Candidate is one discovered release item from an indexer search.
type Candidate struct {
	Title        string   `json:"title"`
	Indexer      string   `json:"indexer"`
	SizeMB       int64    `json:"size_mb"`
	AgeDays      int      `json:"age_days"`
	Seeders      int      `json:"seeders"`
	Leechers     int      `json:"leechers"`
	Quality      string   `json:"quality"`
	NZBURL       string   `json:"nzb_url"`
	EventType    string   `json:"event_type,omitempty"`
	Label        string   `json:"label,omitempty"`
	Score        *int     `json:"score,omitempty"`
	ScoreReasons []string `json:"score_reasons,omitempty"`
}

// DedupKey identifies a candidate within a single search run. The NZB URL is
// the primary key; candidates without one fall back to the indexer plus the
// lowercased title.
func (c Candidate) DedupKey() string {
	if c.NZBURL != "" {
		return c.NZBURL
	}
	return strings.ToLower(c.Indexer) + "|" + strings.ToLower(c.Title)
}

// QualityFromTitle infers a resolution tag from release title heuristics.
func QualityFromTitle(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "2160") || strings.Contains(lower, "4k"):
		return "2160p"
	case strings.Contains(lower, "1080"):
		return "1080p"
	case strings.Contains(lower, "720"):
		return "720p"
	default:
		return "unknown"
	}
}

// IsHDR reports whether the candidate title advertises high dynamic range.
func (c Candidate) IsHDR() bool {
	lower := strings.ToLower(c.Title)
	for _, token := range []string{"hdr", "hdr10", "dolby vision", "dolby.vision", "dovi", "hlg"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

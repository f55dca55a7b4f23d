package indexer

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"racecarr/internal/media"
)

type feed struct {
	Channel struct {
		Items []feedItem `xml:"item"`
	} `xml:"channel"`
}

type feedItem struct {
	Title     string `xml:"title"`
	Link      string `xml:"link"`
	Size      int64  `xml:"size"`
	PubDate   string `xml:"pubDate"`
	Enclosure struct {
		URL    string `xml:"url,attr"`
		Length int64  `xml:"length,attr"`
	} `xml:"enclosure"`
	Attrs []feedAttr `xml:"attr"`
}

type feedAttr struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// parseFeed converts a newznab feed document into candidates. Items without a
// title are dropped; missing sizes and dates degrade to zero values.
func parseFeed(indexerName, body string, now time.Time) ([]media.Candidate, error) {
	var doc feed
	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}

	candidates := make([]media.Candidate, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		locator := strings.TrimSpace(item.Link)
		if locator == "" {
			locator = strings.TrimSpace(item.Enclosure.URL)
		}

		sizeBytes := item.Size
		if sizeBytes == 0 {
			sizeBytes = attrInt64(item.Attrs, "size")
		}
		if sizeBytes == 0 {
			sizeBytes = item.Enclosure.Length
		}

		candidates = append(candidates, media.Candidate{
			Title:    title,
			Indexer:  indexerName,
			SizeMB:   sizeBytes / (1024 * 1024),
			AgeDays:  ageDays(item.PubDate, now),
			Seeders:  int(attrInt64(item.Attrs, "seeders")),
			Leechers: int(attrInt64(item.Attrs, "peers")),
			Quality:  media.QualityFromTitle(title),
			NZBURL:   locator,
		})
	}
	return candidates, nil
}

func attrInt64(attrs []feedAttr, name string) int64 {
	for _, attr := range attrs {
		if strings.EqualFold(attr.Name, name) {
			value, err := strconv.ParseInt(attr.Value, 10, 64)
			if err == nil {
				return value
			}
		}
	}
	return 0
}

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
}

func ageDays(pubDate string, now time.Time) int {
	pubDate = strings.TrimSpace(pubDate)
	if pubDate == "" {
		return 0
	}
	for _, layout := range pubDateLayouts {
		published, err := time.Parse(layout, pubDate)
		if err != nil {
			continue
		}
		days := int(now.Sub(published).Hours() / 24)
		if days < 0 {
			return 0
		}
		return days
	}
	return 0
}

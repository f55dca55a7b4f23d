package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

const capsBody = `<?xml version="1.0" encoding="UTF-8"?>
<caps><server version="1.1"/><searching><search available="yes"/></searching></caps>`

func searchFeed(now time.Time) string {
	pub := now.Add(-72 * time.Hour).Format(time.RFC1123Z)
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:newznab="http://www.newznab.com/DTD/2010/feeds/attributes/">
  <channel>
    <item>
      <title>F1 2025 Monaco Grand Prix Race 1080p WEB</title>
      <link>https://indexer.test/get/1</link>
      <pubDate>` + pub + `</pubDate>
      <enclosure url="https://indexer.test/get/1.nzb" length="3221225472"/>
      <attr name="size" value="3221225472"/>
      <attr name="seeders" value="14"/>
      <attr name="peers" value="3"/>
    </item>
    <item>
      <title></title>
      <link>https://indexer.test/get/2</link>
    </item>
    <item>
      <title>F1 2025 Monaco Qualifying 2160p HDR</title>
      <enclosure url="https://indexer.test/get/3.nzb" length="1073741824"/>
    </item>
  </channel>
</rss>`
}

func TestClientTestProbesCaps(t *testing.T) {
	var capsHits, searchHits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		switch r.URL.Query().Get("t") {
		case "caps":
			capsHits++
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, capsBody)
		case "search":
			searchHits++
			w.Header().Set("Content-Type", "application/xml")
			fmt.Fprint(w, searchFeed(time.Now()))
		default:
			http.Error(w, "bad t", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	client := NewClient(discardLogger(), 0)
	endpoint := Endpoint{Name: "one", APIURL: srv.URL + "/", APIKey: "secret"}

	ok, message := client.Test(context.Background(), endpoint)
	if !ok {
		t.Fatalf("Test failed: %s", message)
	}
	if capsHits != 1 || searchHits != 1 {
		t.Fatalf("expected caps probe plus auth search, got caps=%d search=%d", capsHits, searchHits)
	}

	// Second test within the TTL is served from the caps cache.
	ok, _ = client.Test(context.Background(), endpoint)
	if !ok {
		t.Fatal("cached Test failed")
	}
	if capsHits != 1 {
		t.Fatalf("caps result not cached, %d probes", capsHits)
	}
}

func TestClientTestRejectsHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>login</body></html>")
	}))
	defer srv.Close()

	client := NewClient(discardLogger(), 0)
	ok, message := client.Test(context.Background(), Endpoint{Name: "one", APIURL: srv.URL})
	if ok {
		t.Fatal("expected HTML response to fail the probe")
	}
	if message == "" {
		t.Fatal("expected a diagnostic message")
	}
}

func TestClientTestRejectsAPIKeyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<error code="100" description="Incorrect user credentials"/>`)
	}))
	defer srv.Close()

	client := NewClient(discardLogger(), 0)
	ok, message := client.Test(context.Background(), Endpoint{Name: "one", APIURL: srv.URL, APIKey: "bad"})
	if ok {
		t.Fatalf("expected API key error, got ok: %s", message)
	}
}

func TestClientSearchParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("t") != "search" || q.Get("q") != "f1 monaco" {
			t.Errorf("unexpected query: %v", q)
		}
		if q.Get("apikey") != "secret" || q.Get("cat") != "5070" || q.Get("limit") != "25" {
			t.Errorf("missing params: %v", q)
		}
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, searchFeed(time.Now()))
	}))
	defer srv.Close()

	client := NewClient(discardLogger(), 0)
	endpoint := Endpoint{Name: "one", APIURL: srv.URL, APIKey: "secret", Category: "5070"}

	candidates, err := client.Search(context.Background(), endpoint, "f1 monaco", 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates (untitled item dropped), got %d", len(candidates))
	}

	race := candidates[0]
	if race.Indexer != "one" {
		t.Fatalf("indexer = %q", race.Indexer)
	}
	if race.NZBURL != "https://indexer.test/get/1" {
		t.Fatalf("locator = %q", race.NZBURL)
	}
	if race.SizeMB != 3072 {
		t.Fatalf("size = %d MB", race.SizeMB)
	}
	if race.Seeders != 14 || race.Leechers != 3 {
		t.Fatalf("peer counts wrong: %+v", race)
	}
	if race.AgeDays != 3 {
		t.Fatalf("age = %d days", race.AgeDays)
	}
	if race.Quality != "1080p" {
		t.Fatalf("quality = %q", race.Quality)
	}

	quali := candidates[1]
	if quali.NZBURL != "https://indexer.test/get/3.nzb" {
		t.Fatalf("enclosure fallback not used: %q", quali.NZBURL)
	}
	if quali.SizeMB != 1024 {
		t.Fatalf("enclosure size fallback not used: %d", quali.SizeMB)
	}
	if quali.Quality != "2160p" {
		t.Fatalf("quality = %q", quali.Quality)
	}
}

func TestClientSearchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(discardLogger(), 0)
	if _, err := client.Search(context.Background(), Endpoint{Name: "one", APIURL: srv.URL}, "f1", 10); err == nil {
		t.Fatal("expected HTTP error")
	}
}

func TestAgeDaysLayouts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		pubDate string
		want    int
	}{
		{now.Add(-49 * time.Hour).Format(time.RFC1123Z), 2},
		{now.Add(-25 * time.Hour).Format(time.RFC1123), 1},
		{now.Add(-24 * time.Hour).Format(time.RFC3339), 1},
		{now.Add(24 * time.Hour).Format(time.RFC1123Z), 0},
		{"not a date", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := ageDays(tc.pubDate, now); got != tc.want {
			t.Errorf("ageDays(%q) = %d, want %d", tc.pubDate, got, tc.want)
		}
	}
}

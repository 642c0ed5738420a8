package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

type linkedinCardFixture struct {
	Title    string
	Company  string
	Location string
	DateText string
	URL      string
}

func buildLinkedInHTML(cards []linkedinCardFixture) string {
	var b strings.Builder
	b.WriteString("<html><body><ul>")
	for _, c := range cards {
		b.WriteString("<li><div class=\"base-card base-search-card\">")
		b.WriteString(fmt.Sprintf("<a class=\"base-card__full-link\" href=%q>link</a>", c.URL))
		b.WriteString(fmt.Sprintf("<h3 class=\"base-search-card__title\">%s</h3>", c.Title))
		b.WriteString(fmt.Sprintf("<h4 class=\"base-search-card__subtitle\">%s</h4>", c.Company))
		b.WriteString(fmt.Sprintf("<span class=\"job-search-card__location\">%s</span>", c.Location))
		b.WriteString(fmt.Sprintf("<time class=\"job-search-card__listdate\" datetime=\"2024-06-01\">%s</time>", c.DateText))
		b.WriteString("</div></li>")
	}
	b.WriteString("</ul></body></html>")
	return b.String()
}

func TestLinkedInScrapeParsesCards(t *testing.T) {
	t.Parallel()

	page1 := buildLinkedInHTML([]linkedinCardFixture{
		{
			Title:    "Senior Go Developer",
			Company:  "Acme",
			Location: "Remote",
			DateText: "3 days ago",
			URL:      "https://www.linkedin.com/jobs/view/123?refId=abc",
		},
		{
			Title:    "Data Analyst",
			Company:  "Globex",
			Location: "New York, NY",
			DateText: "1 week ago",
			URL:      "https://www.linkedin.com/jobs/view/456",
		},
	})

	hits := &atomic.Int32{}
	rt := newStubRoundTripper(map[string]string{
		"http://example.com/jobs-guest/jobs/api/seeMoreJobPostingsResults/search?keywords=go&location=Remote":          page1,
		"http://example.com/jobs-guest/jobs/api/seeMoreJobPostingsResults/search?keywords=go&location=Remote&start=25": buildLinkedInHTML(nil),
	}, hits)

	s := NewLinkedInScraper(Config{MaxPages: 2, BaseURL: "http://example.com"}, &http.Client{Transport: rt})

	jobs, err := s.Scrape(context.Background(), "go", "Remote")
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	first := jobs[0]
	if first.Title != "Senior Go Developer" {
		t.Fatalf("unexpected title %q", first.Title)
	}
	if first.Company != "Acme" {
		t.Fatalf("unexpected company %q", first.Company)
	}
	if first.DateText != "3 days ago" {
		t.Fatalf("unexpected date text %q", first.DateText)
	}
	if first.URL != "https://www.linkedin.com/jobs/view/123" {
		t.Fatalf("expected tracking params stripped, got %q", first.URL)
	}
	if first.Source != "LinkedIn" {
		t.Fatalf("unexpected source %q", first.Source)
	}
	if first.SearchKeyword != "go" {
		t.Fatalf("unexpected search keyword %q", first.SearchKeyword)
	}
}

func TestLinkedInScrapeDeduplicatesWithinRun(t *testing.T) {
	t.Parallel()

	card := linkedinCardFixture{
		Title:    "Repeated",
		Company:  "Acme",
		Location: "Remote",
		DateText: "today",
		URL:      "https://www.linkedin.com/jobs/view/123",
	}
	hits := &atomic.Int32{}
	rt := newStubRoundTripper(map[string]string{
		"http://example.com/jobs-guest/jobs/api/seeMoreJobPostingsResults/search?keywords=go&location=":          buildLinkedInHTML([]linkedinCardFixture{card, card}),
		"http://example.com/jobs-guest/jobs/api/seeMoreJobPostingsResults/search?keywords=go&location=&start=25": buildLinkedInHTML(nil),
	}, hits)

	s := NewLinkedInScraper(Config{MaxPages: 2, BaseURL: "http://example.com"}, &http.Client{Transport: rt})

	jobs, err := s.Scrape(context.Background(), "go", "")
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 deduplicated job, got %d", len(jobs))
	}
}

func TestLinkedInScrapeStopsOnEmptyPage(t *testing.T) {
	t.Parallel()

	hits := &atomic.Int32{}
	rt := newStubRoundTripper(map[string]string{
		"http://example.com/jobs-guest/jobs/api/seeMoreJobPostingsResults/search?keywords=go&location=": buildLinkedInHTML(nil),
	}, hits)

	s := NewLinkedInScraper(Config{MaxPages: 5, BaseURL: "http://example.com"}, &http.Client{Transport: rt})

	jobs, err := s.Scrape(context.Background(), "go", "")
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
	if hits.Load() != 1 {
		t.Fatalf("expected scraping to stop after empty page, got %d hits", hits.Load())
	}
}

func TestLinkedInScrapeMissingFieldsGetDefaults(t *testing.T) {
	t.Parallel()

	page := "<html><body><div class=\"base-search-card\">" +
		"<a class=\"base-card__full-link\" href=\"https://www.linkedin.com/jobs/view/789\">link</a>" +
		"</div></body></html>"

	hits := &atomic.Int32{}
	rt := newStubRoundTripper(map[string]string{
		"http://example.com/jobs-guest/jobs/api/seeMoreJobPostingsResults/search?keywords=x&location=": page,
	}, hits)

	s := NewLinkedInScraper(Config{MaxPages: 1, BaseURL: "http://example.com"}, &http.Client{Transport: rt})

	jobs, err := s.Scrape(context.Background(), "x", "")
	if err != nil {
		t.Fatalf("Scrape error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Title != "N/A" || jobs[0].Company != "N/A" || jobs[0].Location != "Unknown" {
		t.Fatalf("unexpected defaults: %+v", jobs[0])
	}
}

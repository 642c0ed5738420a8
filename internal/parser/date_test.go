package parser

import (
	"fmt"
	"testing"
	"time"
)

var fixedNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func newFixedNormalizer() *DateNormalizer {
	n := NewDateNormalizer()
	n.now = func() time.Time { return fixedNow }
	return n
}

func TestNormalizeRelativeDates(t *testing.T) {
	t.Parallel()

	n := newFixedNormalizer()
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		text string
		want time.Time
	}{
		{"Posted today", today},
		{"just posted", today},
		{"Active today", today},
		{"3 days ago", today.AddDate(0, 0, -3)},
		{"1 day ago", today.AddDate(0, 0, -1)},
		{"5 hours ago", today},
		{"12 minutes ago", today},
		{"a moment ago", today},
		{"2 weeks ago", today.AddDate(0, 0, -14)},
		{"1 week ago", today.AddDate(0, 0, -7)},
		{"2 months ago", today.AddDate(0, 0, -60)},
		{"1 month ago", today.AddDate(0, 0, -30)},
	}

	for _, tc := range cases {
		got, ok := n.Normalize(tc.text)
		if !ok {
			t.Fatalf("Normalize(%q) unexpectedly failed", tc.text)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("Normalize(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestNormalizeEveryDayOffset(t *testing.T) {
	t.Parallel()

	n := newFixedNormalizer()
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	for days := 1; days <= 28; days++ {
		text := fmt.Sprintf("%d days ago", days)
		got, ok := n.Normalize(text)
		if !ok {
			t.Fatalf("Normalize(%q) failed", text)
		}
		want := today.AddDate(0, 0, -days)
		if !got.Equal(want) {
			t.Fatalf("Normalize(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestNormalizeAbsoluteFallback(t *testing.T) {
	t.Parallel()

	n := newFixedNormalizer()

	got, ok := n.Normalize("Jan 5, 2024")
	if !ok {
		t.Fatalf("expected absolute date to parse")
	}
	if got.Year() != 2024 || got.Month() != time.January || got.Day() != 5 {
		t.Fatalf("expected 2024-01-05, got %v", got)
	}
}

func TestNormalizeUnparseable(t *testing.T) {
	t.Parallel()

	n := newFixedNormalizer()

	for _, text := range []string{"", "   ", "N/A###@@@", "%%%%"} {
		if _, ok := n.Normalize(text); ok {
			t.Fatalf("Normalize(%q) should fail", text)
		}
	}
}

func TestNormalizeResultHasNoTimeComponent(t *testing.T) {
	t.Parallel()

	n := newFixedNormalizer()
	got, ok := n.Normalize("3 days ago")
	if !ok {
		t.Fatalf("Normalize failed")
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Fatalf("expected midnight timestamp, got %v", got)
	}
}

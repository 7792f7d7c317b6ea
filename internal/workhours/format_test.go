package workhours

import (
	"testing"
	"time"
)

func TestTimestampRoundTrip(t *testing.T) {
	original := civil(2025, time.March, 3, 14, 27).Add(42 * time.Second)
	s := FormatTimestamp(original)
	if s != "03/03/2025 14:27:42" {
		t.Fatalf("FormatTimestamp = %q", s)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if !parsed.Equal(original) {
		t.Errorf("round trip lost precision: %v != %v", parsed, original)
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	if _, err := ParseTimestamp("2025-03-03T14:27:42Z"); err == nil {
		t.Error("expected error for RFC3339 input")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0m"},
		{30 * time.Minute, "30m"},
		{time.Hour, "1h 0m"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{26*time.Hour + 5*time.Minute, "1d 2h 5m"},
		{48 * time.Hour, "2d 0h 0m"},
		{-time.Hour, "0m"},
	}
	for _, tc := range cases {
		if got := FormatDuration(tc.in); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDurationFormatParseRoundTrip(t *testing.T) {
	for _, d := range []time.Duration{
		0,
		45 * time.Minute,
		7*time.Hour + 59*time.Minute,
		3*24*time.Hour + 6*time.Hour + 1*time.Minute,
	} {
		parsed, err := ParseDuration(FormatDuration(d))
		if err != nil {
			t.Fatalf("ParseDuration(%q): %v", FormatDuration(d), err)
		}
		if parsed != d.Truncate(time.Minute) {
			t.Errorf("round trip of %v gave %v", d, parsed)
		}
	}
}

func TestParseDurationRejectsUnknownUnit(t *testing.T) {
	if _, err := ParseDuration("3w"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

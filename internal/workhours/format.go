package workhours

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the civil-time string format exchanged with the
// database and API clients. Round-tripping through it is lossless to the
// second.
const TimestampLayout = "02/01/2006 15:04:05"

// FormatTimestamp renders t in the desk timezone as DD/MM/YYYY HH:MM:SS.
func FormatTimestamp(t time.Time) string {
	return t.In(location).Format(TimestampLayout)
}

// ParseTimestamp parses a DD/MM/YYYY HH:MM:SS string in the desk timezone.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, s, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// FormatDuration renders d as "Xd Yh Zm". Zero leading components are
// omitted; the minutes component is always present. Sub-minute remainders
// are truncated.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int64(d / time.Minute)
	days := totalMinutes / (24 * 60)
	hours := (totalMinutes % (24 * 60)) / 60
	minutes := totalMinutes % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	parts = append(parts, fmt.Sprintf("%dm", minutes))
	return strings.Join(parts, " ")
}

// ParseDuration reads a string produced by FormatDuration back into a
// duration. Unknown tokens are rejected.
func ParseDuration(s string) (time.Duration, error) {
	var total time.Duration
	for _, token := range strings.Fields(s) {
		if len(token) < 2 {
			return 0, fmt.Errorf("parse duration %q: bad token %q", s, token)
		}
		unit := token[len(token)-1]
		value, err := strconv.ParseInt(token[:len(token)-1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", s, err)
		}
		switch unit {
		case 'd':
			total += time.Duration(value) * 24 * time.Hour
		case 'h':
			total += time.Duration(value) * time.Hour
		case 'm':
			total += time.Duration(value) * time.Minute
		default:
			return 0, fmt.Errorf("parse duration %q: unknown unit %q", s, string(unit))
		}
	}
	return total, nil
}

// Package timefmt converts YouTube duration tokens and timestamps into the
// forms the dashboard filters, sorts and displays.
package timefmt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// TimestampLayout matches the millisecond UTC form the Data API accepts for
// publishedAfter (e.g. 2025-01-02T03:04:05.000Z).
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// durationRE is intentionally unanchored: a token is accepted wherever the
// "PT" marker appears. Every component is optional, so a bare "PT" is zero.
var durationRE = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// ParseSeconds parses an ISO-8601 style duration such as "PT1H2M3S" into total
// seconds. It returns nil when the input is empty, carries no "PT" token
// (live streams report "P0D", for example) or does not fit in an int64.
func ParseSeconds(encoded string) *int64 {
	if encoded == "" {
		return nil
	}
	m := durationRE.FindStringSubmatch(encoded)
	if m == nil {
		return nil
	}

	var total int64
	for i, unit := range [...]int64{3600, 60, 1} {
		n, ok := component(m[i+1])
		if !ok || n > (math.MaxInt64-total)/unit {
			return nil
		}
		total += n * unit
	}
	return &total
}

// component parses one captured number. An absent component is zero.
func component(s string) (int64, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

// Clock formats seconds as H:MM:SS when at least an hour, otherwise M:SS.
// Nil and negative inputs are treated as zero.
func Clock(seconds *int64) string {
	var secs int64
	if seconds != nil && *seconds > 0 {
		secs = *seconds
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// MonthsAgo returns now minus n calendar months, in UTC. Day overflow
// normalizes forward the way time.AddDate does (Mar 31 - 1 month = Mar 3).
func MonthsAgo(now time.Time, n int) time.Time {
	return now.AddDate(0, -n, 0).UTC()
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses an RFC 3339 timestamp. ok is false for empty or
// malformed input.
func ParseTimestamp(s string) (t time.Time, ok bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

package common

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// CleanText strips markup and collapses whitespace in upstream titles and
// descriptions.
func CleanText(raw string) string {
	value := strings.TrimSpace(raw)
	value = html.UnescapeString(value)
	value = tagPattern.ReplaceAllString(value, " ")
	value = strings.Join(strings.Fields(value), " ")
	return value
}

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseISODuration converts an ISO-8601 duration ("PT1M30S") to whole
// seconds. Malformed input yields 0 rather than an error; a missing duration
// is expected upstream data.
func ParseISODuration(raw string) int {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0
	}
	match := isoDurationPattern.FindStringSubmatch(value)
	if match == nil {
		return 0
	}
	days := atoiDefault(match[1])
	hours := atoiDefault(match[2])
	minutes := atoiDefault(match[3])
	seconds := atoiDefault(match[4])
	return ((days*24+hours)*60+minutes)*60 + seconds
}

func atoiDefault(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

// ParseCount parses numeric engagement counts that some APIs return as JSON
// strings. Missing or malformed values degrade to 0.
func ParseCount(raw string) int64 {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// ParseRFC3339 parses a timestamp, returning the zero time on failure.
func ParseRFC3339(raw string) time.Time {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// ParseUnix converts a Unix-seconds value to UTC, zero time when unset.
func ParseUnix(ts int64) time.Time {
	if ts <= 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

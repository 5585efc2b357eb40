package ledger

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order. Producers write RFC 3339; the looser
// layouts cover hand-edited or truncated values.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// UTCNow returns the current time as an RFC 3339 UTC string, the timestamp
// format used throughout documents and journal rows.
func UTCNow() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses a document or journal timestamp. It never fails
// loudly: malformed or empty values return ok=false and callers treat them
// as the earliest possible moment when ordering.
func ParseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// sortKey maps a timestamp string to its ordering value. Unparsable
// timestamps sort as the zero time, never ahead of valid entries.
func sortKey(value string) time.Time {
	t, ok := ParseTimestamp(value)
	if !ok {
		return time.Time{}
	}
	return t
}

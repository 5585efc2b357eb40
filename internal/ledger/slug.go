package ledger

import (
	"regexp"
	"strings"
)

// slugRegex matches runs of characters outside [a-z0-9].
var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the on-disk identity for a display name:
// lowercase, non-alphanumeric runs collapsed to a single underscore,
// leading/trailing underscores trimmed. Slugify is idempotent, so a slug
// resolves to itself.
func Slugify(value string) string {
	s := strings.ToLower(value)
	s = slugRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

package ledger

import (
	"sort"
	"strings"
)

// MergeUniqueStrings merges incoming observations ahead of existing ones.
// Empty and whitespace-only entries are dropped, duplicates keep their first
// occurrence, and the result is capped at limit. Order reflects insertion
// order, not alphabetical.
func MergeUniqueStrings(existing, incoming []string, limit int) []string {
	seen := make(map[string]bool, limit)
	merged := make([]string, 0, limit)
	for _, raw := range append(append([]string{}, incoming...), existing...) {
		item := strings.TrimSpace(raw)
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		merged = append(merged, item)
		if len(merged) >= limit {
			break
		}
	}
	return merged
}

// InsertSnapshotHistory inserts a capture entry into a history sequence.
// An existing entry with the same capture timestamp is replaced (the new
// entry supersedes its time slot). The result is re-sorted by parsed capture
// timestamp descending and truncated to limit.
func InsertSnapshotHistory(history []SnapshotEntry, entry SnapshotEntry, limit int) []SnapshotEntry {
	key := strings.TrimSpace(entry.CapturedAt)
	out := make([]SnapshotEntry, 0, len(history)+1)
	out = append(out, entry)
	for _, item := range history {
		if key != "" && item.CapturedAt == key {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i].CapturedAt).After(sortKey(out[j].CapturedAt))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// InsertMilestone inserts a milestone unless an entry with the identical
// (type, timestamp, summary) triple already exists, in which case the list
// is returned unchanged. Unlike snapshot history, a duplicate is not
// re-homed to the front: milestones deduplicate content, history
// deduplicates time slots that may get superseded.
func InsertMilestone(milestones []Milestone, m Milestone, limit int) []Milestone {
	for _, item := range milestones {
		if item.Type == m.Type && item.Timestamp == m.Timestamp && item.Summary == m.Summary {
			return milestones
		}
	}
	out := make([]Milestone, 0, len(milestones)+1)
	out = append(out, m)
	out = append(out, milestones...)
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i].Timestamp).After(sortKey(out[j].Timestamp))
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Package delta flattens nested numeric stat trees and computes the
// before/after/delta triples a capture sync feeds into the ledger.
package delta

import (
	"fmt"
	"sort"

	"github.com/nvalette/poeledger/internal/ledger"
)

// Epsilon is the threshold below which a numeric change is not a change.
const Epsilon = 1e-9

// PanelGroups are the stat tree groups a panel-stats document carries.
var PanelGroups = []string{"offence", "defence", "misc", "charges"}

// KeyStats is the fixed headline subset retained on snapshot entries.
var KeyStats = []string{
	"defence.life",
	"defence.energy_shield",
	"defence.mana",
	"defence.fire_resist_percent",
	"defence.cold_resist_percent",
	"defence.lightning_resist_percent",
	"defence.chaos_resist_percent",
	"offence.total_dps",
	"offence.average_hit",
	"misc.movement_speed_modifier_percent",
}

// Flatten walks a nested tree and returns its numeric leaves keyed by
// dot-joined path. Non-numeric leaves are excluded, never an error.
func Flatten(prefix string, node any) map[string]float64 {
	out := make(map[string]float64)
	flattenInto(out, prefix, node)
	return out
}

func flattenInto(out map[string]float64, prefix string, node any) {
	switch v := node.(type) {
	case map[string]any:
		for key, value := range v {
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			flattenInto(out, path, value)
		}
	case float64:
		out[prefix] = v
	case int:
		out[prefix] = float64(v)
	case int64:
		out[prefix] = float64(v)
	}
}

// FlattenPanels flattens the panel stat groups of a raw panel-stats
// document into one dotted-key map.
func FlattenPanels(doc map[string]any) map[string]float64 {
	out := make(map[string]float64)
	for _, group := range PanelGroups {
		flattenInto(out, group, doc[group])
	}
	return out
}

// DiffNumeric compares two flattened stat maps and returns the paths whose
// value moved by more than Epsilon. Absent leaves read as zero, so a stat's
// first appearance reports as 0 -> value. Candidate paths are the sorted
// union of both maps, which keeps the output deterministic across runs.
func DiffNumeric(current, previous map[string]float64) []ledger.StatChange {
	keys := make([]string, 0, len(current)+len(previous))
	seen := make(map[string]bool, len(current)+len(previous))
	for key := range current {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for key := range previous {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var diffs []ledger.StatChange
	for _, key := range keys {
		before := previous[key]
		after := current[key]
		delta := after - before
		if delta > Epsilon || delta < -Epsilon {
			diffs = append(diffs, ledger.StatChange{Stat: key, Before: before, After: after, Delta: delta})
		}
	}
	return diffs
}

// DiffPanels diffs two raw panel-stats documents over the panel groups.
// A nil previous document makes every current leaf a first appearance.
func DiffPanels(current, previous map[string]any) []ledger.StatChange {
	var prev map[string]float64
	if previous != nil {
		prev = FlattenPanels(previous)
	}
	return DiffNumeric(FlattenPanels(current), prev)
}

// slotEmpty is the sentinel rendered for a missing slot assignment.
const slotEmpty = "None"

// DiffEquipped compares discrete slot assignments and emits one
// "slot: before -> after" line per changed slot, sorted by slot name.
// Unchanged slots are omitted.
func DiffEquipped(current, previous map[string]string) []string {
	slots := make([]string, 0, len(current)+len(previous))
	seen := make(map[string]bool, len(current)+len(previous))
	for slot := range current {
		if !seen[slot] {
			seen[slot] = true
			slots = append(slots, slot)
		}
	}
	for slot := range previous {
		if !seen[slot] {
			seen[slot] = true
			slots = append(slots, slot)
		}
	}
	sort.Strings(slots)

	var changes []string
	for _, slot := range slots {
		before, ok := previous[slot]
		if !ok || before == "" {
			before = slotEmpty
		}
		after, ok := current[slot]
		if !ok || after == "" {
			after = slotEmpty
		}
		if before != after {
			changes = append(changes, fmt.Sprintf("%s: %s -> %s", slot, before, after))
		}
	}
	return changes
}

// EquippedSlots extracts the "equipped" slot map from a raw panel-stats
// document, tolerating an absent or misshapen block.
func EquippedSlots(doc map[string]any) map[string]string {
	raw, _ := doc["equipped"].(map[string]any)
	out := make(map[string]string, len(raw))
	for slot, value := range raw {
		if s, ok := value.(string); ok {
			out[slot] = s
		}
	}
	return out
}

// TopChanges returns the limit entries with the greatest absolute delta.
// Entries with an empty stat name are skipped; ties keep the stable input
// order.
func TopChanges(changes []ledger.StatChange, limit int) []ledger.StatChange {
	filtered := make([]ledger.StatChange, 0, len(changes))
	for _, change := range changes {
		if change.Stat == "" {
			continue
		}
		filtered = append(filtered, change)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return abs(filtered[i].Delta) > abs(filtered[j].Delta)
	})
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}
	return filtered
}

// SelectStats picks the KeyStats subset present in a flattened stat map.
func SelectStats(flat map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for _, key := range KeyStats {
		if value, ok := flat[key]; ok {
			out[key] = value
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

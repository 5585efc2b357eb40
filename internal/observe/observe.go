// Package observe synthesizes the short, deterministic status sentences
// recorded on the ledger. No randomness, no model calls: the same inputs
// always produce the same observations.
package observe

import (
	"fmt"
	"strings"

	"github.com/nvalette/poeledger/internal/delta"
	"github.com/nvalette/poeledger/internal/ledger"
)

// nextMarker tags a post as an action prompt.
const nextMarker = "[NEXT]"

// Snapshot builds the observations for a capture event, in fixed order,
// each conditional on data presence: headline baseline, gear-change count,
// largest measured deltas, inventory footprint.
func Snapshot(stats map[string]float64, changes []ledger.StatChange, equipped []string, counts ledger.InventoryCounts) []string {
	var observations []string

	life, hasLife := stats["defence.life"]
	es, hasES := stats["defence.energy_shield"]
	dps, hasDPS := stats["offence.total_dps"]
	if hasLife || hasES || hasDPS {
		observations = append(observations, fmt.Sprintf(
			"Current baseline: life %s, energy shield %s, total DPS %s.",
			maybeNumber(life, hasLife), maybeNumber(es, hasES), maybeNumber(dps, hasDPS)))
	}

	if len(equipped) > 0 {
		observations = append(observations, fmt.Sprintf(
			"Gear changed in %d slots during the latest stat-watch run.", len(equipped)))
	}

	if top := delta.TopChanges(changes, 3); len(top) > 0 {
		parts := make([]string, len(top))
		for i, change := range top {
			parts[i] = fmt.Sprintf("%s %s -> %s",
				change.Stat, ledger.FormatNumber(change.Before), ledger.FormatNumber(change.After))
		}
		observations = append(observations, "Largest measured deltas: "+strings.Join(parts, "; ")+".")
	}

	if !counts.IsZero() {
		observations = append(observations, fmt.Sprintf(
			"Inventory footprint: %d total items, %d equipped slots, %d socketed gems.",
			counts.TotalItems, counts.EquippedSlots, counts.SocketedGems))
	}

	return observations
}

// Market builds the observations for an external-value event: pricing
// coverage, top holding, and the first action-prompt post, when present.
func Market(pricing ledger.PricingSummary, posts []string) []string {
	var observations []string

	if pricing.PricedItems != nil && pricing.TotalItems != nil {
		priced := *pricing.PricedItems
		total := *pricing.TotalItems
		coverage := 0.0
		if total != 0 {
			coverage = float64(priced) / float64(total) * 100.0
		}
		observations = append(observations, fmt.Sprintf(
			"Known market value is %s chaos across %d/%d priced items (%.0f%% coverage).",
			ledger.FormatMaybe(pricing.KnownValueChaos), priced, total, coverage))
	}

	if len(pricing.TopHoldings) > 0 {
		top := pricing.TopHoldings[0]
		label := top.Label
		if label == "" {
			label = "Unknown"
		}
		observations = append(observations, fmt.Sprintf(
			"Top liquid or semi-liquid holding is %s at about %s chaos.",
			label, ledger.FormatMaybe(top.ChaosValue)))
	}

	for _, post := range posts {
		if strings.HasPrefix(post, nextMarker) {
			observations = append(observations, "Latest action prompt: "+post)
			break
		}
	}

	return observations
}

func maybeNumber(value float64, ok bool) string {
	if !ok {
		return "unknown"
	}
	return ledger.FormatNumber(value)
}

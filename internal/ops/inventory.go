package ops

import (
	"strings"

	"github.com/nvalette/poeledger/internal/ledger"
)

// InventorySummary classifies a raw items payload into equipped slots,
// flasks, backpack items, and socketed gems.
type InventorySummary struct {
	Counts       ledger.InventoryCounts `json:"counts"`
	Equipped     map[string]string      `json:"equipped"`
	Flasks       []string               `json:"flasks"`
	Backpack     []string               `json:"backpack"`
	SocketedGems []SocketedGem          `json:"socketed_gems"`
}

// SocketedGem records a gem and the slot of its host item.
type SocketedGem struct {
	HostSlot string `json:"host_slot"`
	Gem      string `json:"gem"`
}

// BuildInventorySummary summarizes the items payload of a snapshot
// document. Misshapen entries are skipped, never an error.
func BuildInventorySummary(itemsPayload map[string]any) InventorySummary {
	summary := InventorySummary{
		Equipped: map[string]string{},
	}

	rawItems, _ := itemsPayload["items"].([]any)
	total := 0
	for _, raw := range rawItems {
		item := asMap(raw)
		if item == nil {
			continue
		}
		total++
		inv := strings.TrimSpace(asString(item["inventoryId"]))
		label := itemLabel(item)

		switch {
		case inv == "MainInventory":
			summary.Backpack = append(summary.Backpack, label)
		case strings.HasPrefix(inv, "Flask"):
			summary.Flasks = append(summary.Flasks, label)
		default:
			slot := inv
			if slot == "" {
				slot = "UnknownSlot"
			}
			summary.Equipped[slot] = label
		}

		gems, _ := item["socketedItems"].([]any)
		for _, rawGem := range gems {
			gem := asMap(rawGem)
			if gem == nil {
				continue
			}
			hostSlot := inv
			if hostSlot == "" {
				hostSlot = "UnknownSlot"
			}
			summary.SocketedGems = append(summary.SocketedGems, SocketedGem{
				HostSlot: hostSlot,
				Gem:      itemLabel(gem),
			})
		}
	}

	summary.Counts = ledger.InventoryCounts{
		TotalItems:    total,
		EquippedSlots: len(summary.Equipped),
		Flasks:        len(summary.Flasks),
		BackpackItems: len(summary.Backpack),
		SocketedGems:  len(summary.SocketedGems),
	}
	return summary
}

// itemLabel renders "Name TypeLine", falling back through the type line to
// a fixed unknown label.
func itemLabel(item map[string]any) string {
	name := strings.TrimSpace(asString(item["name"]))
	typeLine := strings.TrimSpace(asString(item["typeLine"]))
	if name != "" {
		return strings.TrimSpace(name + " " + typeLine)
	}
	if typeLine != "" {
		return typeLine
	}
	return "Unknown Item"
}

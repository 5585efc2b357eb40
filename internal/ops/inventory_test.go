package ops

import "testing"

func TestBuildInventorySummary(t *testing.T) {
	payload := map[string]any{
		"items": []any{
			map[string]any{
				"inventoryId": "Weapon",
				"name":        "Starforge",
				"typeLine":    "Infernal Sword",
				"socketedItems": []any{
					map[string]any{"typeLine": "Cyclone"},
					map[string]any{"typeLine": "Fortify Support"},
				},
			},
			map[string]any{"inventoryId": "Flask1", "typeLine": "Divine Life Flask"},
			map[string]any{"inventoryId": "Flask5", "typeLine": "Quicksilver Flask"},
			map[string]any{"inventoryId": "MainInventory", "typeLine": "Chaos Orb"},
			map[string]any{"inventoryId": "MainInventory", "name": "The Doctor", "typeLine": "Divination Card"},
		},
	}

	got := BuildInventorySummary(payload)
	if got.Counts.TotalItems != 5 {
		t.Errorf("total = %d", got.Counts.TotalItems)
	}
	if got.Counts.EquippedSlots != 1 || got.Counts.Flasks != 2 || got.Counts.BackpackItems != 2 {
		t.Errorf("counts = %+v", got.Counts)
	}
	if got.Counts.SocketedGems != 2 {
		t.Errorf("gems = %d", got.Counts.SocketedGems)
	}
	if got.Equipped["Weapon"] != "Starforge Infernal Sword" {
		t.Errorf("equipped = %v", got.Equipped)
	}
	if got.SocketedGems[0].HostSlot != "Weapon" || got.SocketedGems[0].Gem != "Cyclone" {
		t.Errorf("socketed = %+v", got.SocketedGems)
	}
	if got.Backpack[1] != "The Doctor Divination Card" {
		t.Errorf("backpack = %v", got.Backpack)
	}
}

func TestBuildInventorySummaryTolerant(t *testing.T) {
	payload := map[string]any{
		"items": []any{
			"not a map",
			map[string]any{}, // no inventoryId, no names
		},
	}

	got := BuildInventorySummary(payload)
	if got.Counts.TotalItems != 1 {
		t.Errorf("total = %d, want 1 (non-map entries skipped)", got.Counts.TotalItems)
	}
	if got.Equipped["UnknownSlot"] != "Unknown Item" {
		t.Errorf("equipped = %v", got.Equipped)
	}
}

func TestBuildInventorySummaryEmpty(t *testing.T) {
	got := BuildInventorySummary(nil)
	if !got.Counts.IsZero() {
		t.Errorf("counts = %+v", got.Counts)
	}
	got = BuildInventorySummary(map[string]any{})
	if !got.Counts.IsZero() {
		t.Errorf("counts = %+v", got.Counts)
	}
}

func TestItemLabel(t *testing.T) {
	cases := []struct {
		item map[string]any
		want string
	}{
		{map[string]any{"name": "Starforge", "typeLine": "Infernal Sword"}, "Starforge Infernal Sword"},
		{map[string]any{"typeLine": "Chaos Orb"}, "Chaos Orb"},
		{map[string]any{"name": "Lone Name"}, "Lone Name"},
		{map[string]any{}, "Unknown Item"},
	}
	for _, tc := range cases {
		if got := itemLabel(tc.item); got != tc.want {
			t.Errorf("itemLabel(%v) = %q, want %q", tc.item, got, tc.want)
		}
	}
}

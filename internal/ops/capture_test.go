package ops

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/nvalette/poeledger/internal/ledger"
)

func captureSnapshot() map[string]any {
	return map[string]any{
		"character": map[string]any{"league": "Settlers"},
		"items": map[string]any{
			"items": []any{
				map[string]any{"inventoryId": "Weapon", "name": "Starforge", "typeLine": "Infernal Sword"},
				map[string]any{"inventoryId": "MainInventory", "typeLine": "Chaos Orb"},
			},
		},
	}
}

func capturePanels(life, dps float64, weapon string) map[string]any {
	return map[string]any{
		"defence":  map[string]any{"life": life},
		"offence":  map[string]any{"total_dps": dps},
		"equipped": map[string]any{"Weapon": weapon},
	}
}

func TestCaptureFirstRunIsBaseline(t *testing.T) {
	env := newTestEnv(t)
	stateDir := t.TempDir()

	out, err := Capture(env, CaptureInput{
		Character:  "Marauder Dan",
		Snapshot:   captureSnapshot(),
		PanelStats: capturePanels(5000, 120000, "Doomsower"),
		StateDir:   stateDir,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Baseline {
		t.Error("first run should report baseline")
	}
	// Every leaf is a first appearance against the empty baseline.
	if len(out.StatChanges) != 2 {
		t.Errorf("stat changes = %v", out.StatChanges)
	}
	// Equipped changes need a previous capture to diff against.
	if len(out.EquippedChanges) != 0 {
		t.Errorf("equipped changes on first run = %v", out.EquippedChanges)
	}

	if _, err := os.Stat(filepath.Join(stateDir, "marauder_dan_panel_stats.json")); err != nil {
		t.Errorf("baseline not persisted: %v", err)
	}
	if _, err := os.Stat(filepath.Join(stateDir, "marauder_dan_history.jsonl")); err != nil {
		t.Errorf("history not persisted: %v", err)
	}
}

func TestCaptureSecondRunDiffs(t *testing.T) {
	env := newTestEnv(t)
	stateDir := t.TempDir()

	first := CaptureInput{
		Character:  "Marauder Dan",
		Snapshot:   captureSnapshot(),
		PanelStats: capturePanels(5000, 120000, "Doomsower"),
		StateDir:   stateDir,
	}
	if _, err := Capture(env, first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.PanelStats = capturePanels(5200, 120000, "Starforge")
	out, err := Capture(env, second)
	if err != nil {
		t.Fatal(err)
	}
	if out.Baseline {
		t.Error("second run should diff, not baseline")
	}
	if len(out.StatChanges) != 1 || out.StatChanges[0].Stat != "defence.life" {
		t.Errorf("stat changes = %v", out.StatChanges)
	}
	if out.StatChanges[0].Before != 5000 || out.StatChanges[0].After != 5200 {
		t.Errorf("diff = %+v", out.StatChanges[0])
	}
	if len(out.EquippedChanges) != 1 || out.EquippedChanges[0] != "Weapon: Doomsower -> Starforge" {
		t.Errorf("equipped changes = %v", out.EquippedChanges)
	}

	// History holds one row per run.
	f, err := os.Open(out.HistoryPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	if lines != 2 {
		t.Errorf("history lines = %d, want 2", lines)
	}
}

func TestCaptureResetBaseline(t *testing.T) {
	env := newTestEnv(t)
	stateDir := t.TempDir()

	input := CaptureInput{
		Character:  "Marauder Dan",
		Snapshot:   captureSnapshot(),
		PanelStats: capturePanels(5000, 120000, "Doomsower"),
		StateDir:   stateDir,
	}
	if _, err := Capture(env, input); err != nil {
		t.Fatal(err)
	}

	input.ResetBaseline = true
	out, err := Capture(env, input)
	if err != nil {
		t.Fatal(err)
	}
	if !out.Baseline {
		t.Error("reset run should report baseline again")
	}
}

func TestCaptureArchive(t *testing.T) {
	env := newTestEnv(t)
	stateDir := t.TempDir()

	out, err := Capture(env, CaptureInput{
		Character:  "Marauder Dan",
		Snapshot:   captureSnapshot(),
		PanelStats: capturePanels(5000, 120000, "Doomsower"),
		StateDir:   stateDir,
		Archive:    true,
	})
	if err != nil {
		t.Fatal(err)
	}

	archiveDir := filepath.Join(stateDir, "archive", "marauder_dan")
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		t.Fatalf("archive dir: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("archived files = %d, want 3 (snapshot, panel stats, delta)", len(entries))
	}

	doc, _, err := env.Store.Load(out.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if doc.LatestSnapshot == nil || doc.LatestSnapshot.Artifacts["delta_path"] == "" {
		t.Errorf("archived artifacts not recorded: %+v", doc.LatestSnapshot)
	}
}

func TestCaptureFoldsIntoLedger(t *testing.T) {
	env := newTestEnv(t)

	out, err := Capture(env, CaptureInput{
		Character:  "Marauder Dan",
		Snapshot:   captureSnapshot(),
		PanelStats: capturePanels(5000, 120000, "Doomsower"),
		StateDir:   t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}

	doc, ok, err := env.Store.Load(out.Slug)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if doc.Character.League != "Settlers" {
		t.Errorf("league from snapshot = %q", doc.Character.League)
	}
	if doc.LatestSnapshot == nil {
		t.Fatal("snapshot not folded into the ledger")
	}
	if doc.LatestSnapshot.InventoryCounts.TotalItems != 2 {
		t.Errorf("inventory counts = %+v", doc.LatestSnapshot.InventoryCounts)
	}
	if doc.ActiveContext.LastEventType != ledger.EventStatWatch {
		t.Errorf("context = %+v", doc.ActiveContext)
	}
}

func TestCaptureEmptyNameIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	out, err := Capture(env, CaptureInput{Character: "", StateDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if !out.Skipped {
		t.Error("empty character should skip")
	}
}

func TestCaptureRequiresStateDir(t *testing.T) {
	env := newTestEnv(t)

	if _, err := Capture(env, CaptureInput{Character: "Marauder Dan"}); err == nil {
		t.Error("missing state dir should be an invalid request")
	}
}

func TestArchiveStem(t *testing.T) {
	got := archiveStem("2026-08-25T10:00:00.123456+00:00")
	if got != "20260825T100000_123456Z" {
		t.Errorf("archiveStem = %q", got)
	}
}

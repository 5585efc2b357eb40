package ops

import (
	"os"
	"testing"

	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ledger"
	"github.com/nvalette/poeledger/internal/registry"
)

func TestRebuildFromJournal(t *testing.T) {
	env := newTestEnv(t)

	if _, err := SyncCharacter(env, SyncCharacterInput{
		Name: "Marauder Dan", League: "Settlers", Class: "Juggernaut", Level: intPtr(90),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := SyncCapture(env, SyncCaptureInput{
		Character: "Marauder Dan",
		Record: CaptureRecord{
			Timestamp:       "2026-08-25T10:00:00Z",
			EquippedChanges: []string{"Weapon: None -> Starforge"},
		},
		InventoryCounts: ledger.InventoryCounts{TotalItems: 2},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := SyncMarket(env, SyncMarketInput{Doc: marketDoc()}); err != nil {
		t.Fatal(err)
	}

	// Simulate a lost document; the journal is the source of truth.
	if err := os.Remove(env.Store.DocumentPath("marauder_dan")); err != nil {
		t.Fatal(err)
	}

	out, err := Rebuild(env, RebuildInput{Character: "marauder_dan"})
	if err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if out.Events != 3 {
		t.Errorf("replayed %d events, want 3", out.Events)
	}

	doc, ok, err := env.Store.Load("marauder_dan")
	if err != nil || !ok {
		t.Fatalf("Load after rebuild: ok=%v err=%v", ok, err)
	}
	if doc.Character.Name != "Marauder Dan" {
		t.Errorf("display name not recovered from identity rows: %q", doc.Character.Name)
	}
	if doc.Character.Level == nil || *doc.Character.Level != 90 {
		t.Errorf("level = %v", doc.Character.Level)
	}
	if len(doc.Milestones) != 3 {
		t.Errorf("milestones = %d, want 3", len(doc.Milestones))
	}
	if doc.LatestSnapshot == nil || doc.LatestSnapshot.InventoryCounts.TotalItems != 2 {
		t.Errorf("latest snapshot = %+v", doc.LatestSnapshot)
	}
	if doc.LatestMarket == nil || doc.LatestMarket.PricingSummary.KnownValueChaos == nil {
		t.Errorf("latest market = %+v", doc.LatestMarket)
	}
	if len(doc.SnapshotHistory) != 1 {
		t.Errorf("history = %d, want 1", len(doc.SnapshotHistory))
	}
}

func TestRebuildKeepsRegistryCounterInSync(t *testing.T) {
	base := t.TempDir()
	db, err := registry.Init(base)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	env := Env{Store: ledger.NewStore(base), Registry: db}

	if _, err := SyncCharacter(env, SyncCharacterInput{Name: "Marauder Dan"}); err != nil {
		t.Fatal(err)
	}

	// A rebuild replays the journal without appending to it, so the
	// registry counter must match the journal length, not exceed it.
	for i := 0; i < 2; i++ {
		if _, err := Rebuild(env, RebuildInput{Character: "marauder_dan"}); err != nil {
			t.Fatal(err)
		}

		journal, err := Journal(env, JournalInput{Character: "marauder_dan"})
		if err != nil {
			t.Fatal(err)
		}
		row, err := registry.Get(db, "marauder_dan")
		if err != nil {
			t.Fatal(err)
		}
		if row == nil || row.Events != int64(journal.Total) {
			t.Fatalf("registry events = %+v, journal total = %d", row, journal.Total)
		}
	}
}

func TestRebuildNoJournal(t *testing.T) {
	env := newTestEnv(t)

	_, err := Rebuild(env, RebuildInput{Character: "nobody"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("rebuild without a journal should be NOT_FOUND, got %v", err)
	}
}

func TestRebuildRequiresCharacter(t *testing.T) {
	env := newTestEnv(t)

	_, err := Rebuild(env, RebuildInput{Character: "  "})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank character should be INVALID_REQUEST, got %v", err)
	}
}

package registry

import (
	"testing"
)

func TestInitCreatesSchema(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer db.Close()

	version, err := getUserVersion(db)
	if err != nil {
		t.Fatalf("getUserVersion: %v", err)
	}
	if version != CurrentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, CurrentSchemaVersion)
	}
}

func TestInitIdempotent(t *testing.T) {
	dir := t.TempDir()

	db, err := Init(dir)
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	// Reopening an existing registry must not re-run migrations destructively.
	db, err = Init(dir)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	db.Close()
}

func TestUpsertAndGet(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	level := 90
	row := CharacterRow{
		Slug:          "marauder_dan",
		Name:          "Marauder Dan",
		Account:       "Dan#1234",
		Realm:         "pc",
		League:        "Settlers",
		Class:         "Juggernaut",
		Level:         &level,
		LastEventType: "live_character_sync",
		LastEventAt:   "2026-08-25T10:00:00Z",
	}
	if err := Upsert(db, row); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := Get(db, "marauder_dan")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil {
		t.Fatal("Get returned nil for an upserted slug")
	}
	if got.Name != "Marauder Dan" || got.League != "Settlers" {
		t.Errorf("row = %+v", got)
	}
	if got.Level == nil || *got.Level != 90 {
		t.Errorf("level = %v", got.Level)
	}
	if got.Events != 0 {
		t.Errorf("fresh row should have 0 events, got %d", got.Events)
	}
}

func TestGetMissing(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	got, err := Get(db, "nobody")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("missing slug should return nil, got %+v", got)
	}
}

func TestUpsertPreservesEventCounter(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	row := CharacterRow{Slug: "x", Name: "X"}
	if err := Upsert(db, row); err != nil {
		t.Fatal(err)
	}
	if err := IncrementEvents(db, "x"); err != nil {
		t.Fatal(err)
	}

	// A second upsert (rename included) must not reset the counter.
	row.Name = "X Renamed"
	if err := Upsert(db, row); err != nil {
		t.Fatal(err)
	}

	got, err := Get(db, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Events != 1 {
		t.Errorf("events = %d, want 1", got.Events)
	}
	if got.Name != "X Renamed" {
		t.Errorf("name binding should update on upsert: %q", got.Name)
	}
}

func TestSetEvents(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := Upsert(db, CharacterRow{Slug: "x", Name: "X"}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := IncrementEvents(db, "x"); err != nil {
			t.Fatal(err)
		}
	}

	if err := SetEvents(db, "x", 2); err != nil {
		t.Fatalf("SetEvents: %v", err)
	}

	got, err := Get(db, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Events != 2 {
		t.Errorf("events = %d, want 2", got.Events)
	}
}

func TestList(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	for _, slug := range []string{"alpha", "beta"} {
		if err := Upsert(db, CharacterRow{Slug: slug, Name: slug}); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := List(db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Same updated_at second: ties break by slug ascending.
	if rows[0].UpdatedAt == rows[1].UpdatedAt && rows[0].Slug > rows[1].Slug {
		t.Errorf("tie-break order wrong: %q before %q", rows[0].Slug, rows[1].Slug)
	}
}

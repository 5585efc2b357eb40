package ledger

import (
	"fmt"
	"reflect"
	"testing"
)

func TestMergeUniqueStringsIncomingFirst(t *testing.T) {
	existing := []string{"old one", "shared"}
	incoming := []string{"new one", "shared", "  ", ""}

	got := MergeUniqueStrings(existing, incoming, MaxObservations)
	want := []string{"new one", "shared", "old one"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeUniqueStrings = %v, want %v", got, want)
	}
}

func TestMergeUniqueStringsCap(t *testing.T) {
	var existing []string
	for i := 0; i < 20; i++ {
		existing = append(existing, fmt.Sprintf("existing %d", i))
	}

	got := MergeUniqueStrings(existing, []string{"fresh"}, MaxObservations)
	if len(got) != MaxObservations {
		t.Fatalf("got %d entries, want %d", len(got), MaxObservations)
	}
	if got[0] != "fresh" {
		t.Errorf("incoming entry should lead, got %q", got[0])
	}
}

func TestInsertSnapshotHistoryReplacesSameTimestamp(t *testing.T) {
	history := []SnapshotEntry{
		{CapturedAt: "2026-08-25T10:00:00Z", Stats: map[string]float64{"defence.life": 100}},
		{CapturedAt: "2026-08-24T10:00:00Z"},
	}
	replacement := SnapshotEntry{
		CapturedAt: "2026-08-25T10:00:00Z",
		Stats:      map[string]float64{"defence.life": 200},
	}

	got := InsertSnapshotHistory(history, replacement, MaxHistory)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Stats["defence.life"] != 200 {
		t.Errorf("replacement did not supersede the old entry: %v", got[0].Stats)
	}
}

func TestInsertSnapshotHistorySortedNewestFirst(t *testing.T) {
	history := []SnapshotEntry{
		{CapturedAt: "2026-08-25T12:00:00Z"},
		{CapturedAt: "2026-08-25T08:00:00Z"},
	}
	// An entry older than the head should land in the middle, not at the
	// front.
	got := InsertSnapshotHistory(history, SnapshotEntry{CapturedAt: "2026-08-25T10:00:00Z"}, MaxHistory)
	want := []string{"2026-08-25T12:00:00Z", "2026-08-25T10:00:00Z", "2026-08-25T08:00:00Z"}
	for i, ts := range want {
		if got[i].CapturedAt != ts {
			t.Errorf("entry %d: got %q, want %q", i, got[i].CapturedAt, ts)
		}
	}
}

func TestInsertSnapshotHistoryCap(t *testing.T) {
	var history []SnapshotEntry
	for i := 0; i < MaxHistory; i++ {
		history = append(history, SnapshotEntry{
			CapturedAt: fmt.Sprintf("2026-07-01T%02d:%02d:00Z", i/60, i%60),
		})
	}

	got := InsertSnapshotHistory(history, SnapshotEntry{CapturedAt: "2026-08-25T10:00:00Z"}, MaxHistory)
	if len(got) != MaxHistory {
		t.Fatalf("got %d entries, want %d", len(got), MaxHistory)
	}
	if got[0].CapturedAt != "2026-08-25T10:00:00Z" {
		t.Errorf("newest entry should lead, got %q", got[0].CapturedAt)
	}
}

func TestInsertMilestoneDuplicateTripleIsNoOp(t *testing.T) {
	m := Milestone{
		Timestamp: "2026-08-25T10:00:00Z",
		Type:      EventStatWatch,
		Summary:   "offence.total_dps to 150",
	}
	milestones := []Milestone{m}

	got := InsertMilestone(milestones, m, MaxMilestones)
	if len(got) != 1 {
		t.Errorf("duplicate (type, timestamp, summary) should not insert, got %d entries", len(got))
	}
}

func TestInsertMilestoneSameTimestampDifferentSummary(t *testing.T) {
	// Unlike history, milestones are keyed on content, so two distinct
	// summaries at the same timestamp both survive.
	milestones := []Milestone{
		{Timestamp: "2026-08-25T10:00:00Z", Type: EventStatWatch, Summary: "first"},
	}
	got := InsertMilestone(milestones, Milestone{
		Timestamp: "2026-08-25T10:00:00Z", Type: EventStatWatch, Summary: "second",
	}, MaxMilestones)
	if len(got) != 2 {
		t.Errorf("got %d entries, want 2", len(got))
	}
}

func TestInsertMilestoneCap(t *testing.T) {
	var milestones []Milestone
	for i := 0; i < MaxMilestones; i++ {
		milestones = InsertMilestone(milestones, Milestone{
			Timestamp: fmt.Sprintf("2026-07-01T10:%02d:00Z", i),
			Type:      EventStatWatch,
			Summary:   fmt.Sprintf("milestone %d", i),
		}, MaxMilestones)
	}

	got := InsertMilestone(milestones, Milestone{
		Timestamp: "2026-08-25T10:00:00Z",
		Type:      EventStatWatch,
		Summary:   "newest",
	}, MaxMilestones)
	if len(got) != MaxMilestones {
		t.Fatalf("got %d entries, want %d", len(got), MaxMilestones)
	}
	if got[0].Summary != "newest" {
		t.Errorf("newest milestone should lead, got %q", got[0].Summary)
	}
}

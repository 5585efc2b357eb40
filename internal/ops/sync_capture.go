package ops

import (
	"fmt"
	"strings"

	"github.com/nvalette/poeledger/internal/delta"
	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ledger"
	"github.com/nvalette/poeledger/internal/observe"
)

// topChangesRetained is how many top deltas a snapshot entry and journal
// row carry; milestone summaries use the first two.
const topChangesRetained = 8

// CaptureSources are the provenance paths for a capture sync.
type CaptureSources struct {
	SnapshotPath   string
	PanelStatsPath string
	HistoryPath    string
	ArchiveDir     string

	// Archived per-capture copies, when the producer archived them.
	ArchivedSnapshot   string
	ArchivedPanelStats string
	ArchivedDelta      string
}

// SyncCaptureInput contains parameters for the SyncCapture operation.
type SyncCaptureInput struct {
	Character string // required; empty makes the sync a silent no-op
	Account   string
	Realm     string
	League    string // best-effort, from the snapshot document

	// PanelStats is the raw flattened-or-nested stat tree for this capture.
	PanelStats map[string]any

	// Record is the diff record computed against the previous capture.
	Record CaptureRecord

	InventoryCounts ledger.InventoryCounts
	Sources         CaptureSources
}

// SyncCaptureOutput contains the result of the SyncCapture operation.
type SyncCaptureOutput struct {
	Skipped      bool     `json:"skipped,omitempty"`
	Slug         string   `json:"slug,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	EventID      string   `json:"event_id,omitempty"`
	Observations []string `json:"observations,omitempty"`
}

// SyncCapture folds one capture-and-diff run into the ledger: caches the
// latest snapshot, inserts it into bounded history, merges observations,
// records one milestone, and appends one journal row.
func SyncCapture(env Env, input SyncCaptureInput) (*SyncCaptureOutput, error) {
	name := strings.TrimSpace(input.Character)
	if name == "" {
		return &SyncCaptureOutput{Skipped: true}, nil
	}

	slug := ledger.Slugify(name)
	unlock := lockSlug(slug)
	defer unlock()

	doc, err := env.Store.Ensure(name)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	stats := delta.SelectStats(delta.Flatten("", input.PanelStats))
	observations := observe.Snapshot(stats, input.Record.StatChanges,
		input.Record.EquippedChanges, input.InventoryCounts)

	// League is carried over when the snapshot doesn't supply one.
	league := input.League
	if league == "" {
		league = doc.Character.League
	}
	doc.Character = ledger.Character{
		Name:    name,
		Slug:    slug,
		Account: input.Account,
		Realm:   input.Realm,
		League:  league,
	}
	doc.AdvanceContext(ledger.EventStatWatch, input.Record.Timestamp)

	entry := ledger.SnapshotEntry{
		CapturedAt:      input.Record.Timestamp,
		Stats:           stats,
		InventoryCounts: input.InventoryCounts,
		EquippedChanges: input.Record.EquippedChanges,
		TopStatChanges:  delta.TopChanges(input.Record.StatChanges, topChangesRetained),
		Artifacts:       archivedArtifacts(input.Sources),
	}
	doc.LatestSnapshot = &entry
	doc.SnapshotHistory = ledger.InsertSnapshotHistory(doc.SnapshotHistory, entry, ledger.MaxHistory)
	doc.LatestObservations = ledger.MergeUniqueStrings(doc.LatestObservations, observations, ledger.MaxObservations)
	doc.Sources[ledger.EventStatWatch] = captureSourceMap(input.Sources)

	summary := captureSummary(input.Record)
	doc.Milestones = ledger.InsertMilestone(doc.Milestones, ledger.Milestone{
		Timestamp: input.Record.Timestamp,
		Type:      ledger.EventStatWatch,
		Summary:   summary,
		Source:    input.Sources.HistoryPath,
	}, ledger.MaxMilestones)

	if err := env.Store.Save(slug, doc); err != nil {
		return nil, errors.NewInternal(err)
	}

	eventID, err := generateEventID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	counts := input.InventoryCounts
	event := ledger.JournalEvent{
		EventID:         eventID,
		Timestamp:       input.Record.Timestamp,
		Type:            ledger.EventStatWatch,
		Summary:         summary,
		Source:          input.Sources.HistoryPath,
		EquippedChanges: input.Record.EquippedChanges,
		TopStatChanges:  entry.TopStatChanges,
		InventoryCounts: &counts,
	}
	if err := env.Store.AppendJournal(slug, event); err != nil {
		return nil, errors.NewInternal(err)
	}

	recordEvent(env, doc, ledger.EventStatWatch, input.Record.Timestamp)

	return &SyncCaptureOutput{
		Slug:         slug,
		Summary:      summary,
		EventID:      eventID,
		Observations: observations,
	}, nil
}

// captureSummary builds the milestone summary for a capture: gear-change
// count first, then up to two top deltas, with a fixed fallback when the
// capture measured nothing.
func captureSummary(record CaptureRecord) string {
	var bits []string
	if n := len(record.EquippedChanges); n > 0 {
		bits = append(bits, fmt.Sprintf("%d gear slot changes", n))
	}
	for _, change := range delta.TopChanges(record.StatChanges, 2) {
		bits = append(bits, fmt.Sprintf("%s to %s", change.Stat, ledger.FormatNumber(change.After)))
	}
	if len(bits) == 0 {
		bits = append(bits, "Snapshot recorded with no measured deltas")
	}
	return strings.Join(bits, "; ")
}

func captureSourceMap(sources CaptureSources) map[string]string {
	out := map[string]string{}
	if sources.SnapshotPath != "" {
		out["snapshot_path"] = sources.SnapshotPath
	}
	if sources.PanelStatsPath != "" {
		out["panel_stats_path"] = sources.PanelStatsPath
	}
	if sources.HistoryPath != "" {
		out["history_path"] = sources.HistoryPath
	}
	if sources.ArchiveDir != "" {
		out["archive_dir"] = sources.ArchiveDir
	}
	return out
}

func archivedArtifacts(sources CaptureSources) map[string]string {
	if sources.ArchivedSnapshot == "" && sources.ArchivedPanelStats == "" && sources.ArchivedDelta == "" {
		return nil
	}
	out := map[string]string{}
	if sources.ArchivedSnapshot != "" {
		out["snapshot_path"] = sources.ArchivedSnapshot
	}
	if sources.ArchivedPanelStats != "" {
		out["panel_stats_path"] = sources.ArchivedPanelStats
	}
	if sources.ArchivedDelta != "" {
		out["delta_path"] = sources.ArchivedDelta
	}
	return out
}

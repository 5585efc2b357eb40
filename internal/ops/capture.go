package ops

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvalette/poeledger/internal/delta"
	lederrors "github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ledger"
)

// CaptureInput contains parameters for the Capture operation.
type CaptureInput struct {
	Character string // required
	Account   string
	Realm     string

	// Snapshot is the raw snapshot document (character + items payload).
	Snapshot map[string]any

	// PanelStats is the raw panel-stats tree for this capture.
	PanelStats map[string]any

	// StateDir holds the per-character baseline and history files.
	StateDir string

	// Provenance of the input files, recorded on the ledger.
	SnapshotPath   string
	PanelStatsPath string

	// ResetBaseline discards the stored baseline so this run is treated as
	// the first capture.
	ResetBaseline bool

	// Archive writes per-capture copies under StateDir/archive/<slug>/.
	Archive bool
}

// CaptureOutput contains the result of the Capture operation.
type CaptureOutput struct {
	Skipped         bool                `json:"skipped,omitempty"`
	Slug            string              `json:"slug,omitempty"`
	Timestamp       string              `json:"timestamp_utc,omitempty"`
	Baseline        bool                `json:"baseline,omitempty"`
	StatChanges     []ledger.StatChange `json:"stat_changes,omitempty"`
	EquippedChanges []string            `json:"equipped_changes,omitempty"`
	Summary         string              `json:"summary,omitempty"`
	Observations    []string            `json:"observations,omitempty"`
	HistoryPath     string              `json:"history_path,omitempty"`
}

// Capture runs the full capture-and-diff pipeline: diff the panel stats
// against the stored baseline, persist the new baseline, append the diff
// record to the per-character history file, optionally archive the
// artifacts, then fold everything into the ledger via SyncCapture.
func Capture(env Env, input CaptureInput) (*CaptureOutput, error) {
	name := strings.TrimSpace(input.Character)
	if name == "" {
		return &CaptureOutput{Skipped: true}, nil
	}
	if input.StateDir == "" {
		return nil, lederrors.NewInvalidRequest("state dir is required")
	}

	slug := ledger.Slugify(name)
	baselinePath := filepath.Join(input.StateDir, slug+"_panel_stats.json")
	historyPath := filepath.Join(input.StateDir, slug+"_history.jsonl")

	if input.ResetBaseline {
		if err := os.Remove(baselinePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, lederrors.NewInternal(err)
		}
	}

	previous, err := loadBaseline(baselinePath)
	if err != nil {
		return nil, lederrors.NewInternal(err)
	}

	statChanges := delta.DiffPanels(input.PanelStats, previous)
	var equippedChanges []string
	if previous != nil {
		equippedChanges = delta.DiffEquipped(
			delta.EquippedSlots(input.PanelStats), delta.EquippedSlots(previous))
	}

	if err := saveJSON(baselinePath, input.PanelStats); err != nil {
		return nil, lederrors.NewInternal(err)
	}

	record := CaptureRecord{
		Timestamp:       ledger.UTCNow(),
		Account:         input.Account,
		Realm:           input.Realm,
		Character:       name,
		EquippedChanges: equippedChanges,
		StatChanges:     statChanges,
	}
	if err := appendHistory(historyPath, record); err != nil {
		return nil, lederrors.NewInternal(err)
	}

	sources := CaptureSources{
		SnapshotPath:   input.SnapshotPath,
		PanelStatsPath: input.PanelStatsPath,
		HistoryPath:    historyPath,
	}
	if input.Archive {
		if err := archiveArtifacts(&sources, input, slug, record); err != nil {
			return nil, lederrors.NewInternal(err)
		}
	}

	summary := BuildInventorySummary(asMap(input.Snapshot["items"]))
	syncOut, err := SyncCapture(env, SyncCaptureInput{
		Character:       name,
		Account:         input.Account,
		Realm:           input.Realm,
		League:          ExtractLeague(input.Snapshot),
		PanelStats:      input.PanelStats,
		Record:          record,
		InventoryCounts: summary.Counts,
		Sources:         sources,
	})
	if err != nil {
		return nil, err
	}

	return &CaptureOutput{
		Slug:            slug,
		Timestamp:       record.Timestamp,
		Baseline:        previous == nil,
		StatChanges:     statChanges,
		EquippedChanges: equippedChanges,
		Summary:         syncOut.Summary,
		Observations:    syncOut.Observations,
		HistoryPath:     historyPath,
	}, nil
}

// loadBaseline reads the previous panel stats, nil when none exist yet.
func loadBaseline(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		// A corrupt baseline resets the watch rather than blocking it.
		return nil, nil
	}
	return doc, nil
}

func saveJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// appendHistory appends one compact, ASCII-escaped record to the capture
// history file. Like the journal, history is append-only.
func appendHistory(path string, record CaptureRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	line, err := ledger.MarshalASCII(record)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

// archiveArtifacts writes per-capture copies of the snapshot, panel stats,
// and diff record, and fills in the archive provenance.
func archiveArtifacts(sources *CaptureSources, input CaptureInput, slug string, record CaptureRecord) error {
	archiveDir := filepath.Join(input.StateDir, "archive", slug)
	stem := archiveStem(record.Timestamp)

	snapshotPath := filepath.Join(archiveDir, stem+"_snapshot.json")
	panelStatsPath := filepath.Join(archiveDir, stem+"_panel_stats.json")
	deltaPath := filepath.Join(archiveDir, stem+"_delta.json")

	if err := saveJSON(snapshotPath, input.Snapshot); err != nil {
		return err
	}
	if err := saveJSON(panelStatsPath, input.PanelStats); err != nil {
		return err
	}
	if err := saveJSON(deltaPath, record); err != nil {
		return err
	}

	sources.ArchiveDir = archiveDir
	sources.ArchivedSnapshot = snapshotPath
	sources.ArchivedPanelStats = panelStatsPath
	sources.ArchivedDelta = deltaPath
	return nil
}

// archiveStem compacts a timestamp into a filename-safe stem.
func archiveStem(timestamp string) string {
	replacer := strings.NewReplacer("-", "", ":", "", "+00:00", "Z", ".", "_")
	stem := replacer.Replace(timestamp)
	if stem == "" {
		stem = fmt.Sprintf("capture_%s", ledger.Slugify(ledger.UTCNow()))
	}
	return stem
}

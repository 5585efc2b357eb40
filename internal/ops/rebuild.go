package ops

import (
	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ledger"
)

// RebuildInput contains parameters for the Rebuild operation.
type RebuildInput struct {
	Character string
}

// RebuildOutput contains the result of the Rebuild operation.
type RebuildOutput struct {
	Slug   string `json:"slug"`
	Events int    `json:"events"`
}

// Rebuild replays a character's journal in append order and re-folds every
// row into a fresh document, then overwrites the stored document with the
// result. The journal is the durable source of truth; the document is a
// materialized view, and this operation re-materializes it. Journal rows
// carry summaries and kind-specific detail but not full stat trees, so a
// rebuilt document omits per-capture stat subsets while retaining history,
// milestones, context, and the latest cached payloads.
func Rebuild(env Env, input RebuildInput) (*RebuildOutput, error) {
	slug, err := resolveSlug(input.Character)
	if err != nil {
		return nil, err
	}

	unlock := lockSlug(slug)
	defer unlock()

	events, err := env.Store.ReadJournal(slug)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if len(events) == 0 {
		return nil, errors.NewNotFound(input.Character)
	}

	doc := ledger.NewDocument(rebuildName(input.Character, events))
	doc.Character.Slug = slug

	for _, event := range events {
		applyJournalEvent(doc, event)
	}

	if err := env.Store.Save(slug, doc); err != nil {
		return nil, errors.NewInternal(err)
	}

	recordRebuild(env, doc, len(events))

	return &RebuildOutput{Slug: slug, Events: len(events)}, nil
}

// rebuildName prefers the display name recorded on identity rows over the
// caller-supplied name-or-slug.
func rebuildName(fallback string, events []ledger.JournalEvent) string {
	for i := len(events) - 1; i >= 0; i-- {
		if c := events[i].Character; c != nil && c.Name != "" {
			return c.Name
		}
	}
	return fallback
}

// applyJournalEvent folds one journal row into the document, mirroring the
// sync that produced it.
func applyJournalEvent(doc *ledger.Document, event ledger.JournalEvent) {
	doc.AdvanceContext(event.Type, event.Timestamp)
	doc.Milestones = ledger.InsertMilestone(doc.Milestones, ledger.Milestone{
		Timestamp: event.Timestamp,
		Type:      event.Type,
		Summary:   event.Summary,
		Source:    event.Source,
	}, ledger.MaxMilestones)

	switch event.Type {
	case ledger.EventCharacterSync:
		if c := event.Character; c != nil {
			doc.Character.Name = c.Name
			doc.Character.League = c.League
			doc.Character.Class = c.Class
			doc.Character.Level = c.Level
			doc.Character.LastLiveConfirmedAt = event.Timestamp
		}
	case ledger.EventStatWatch:
		entry := ledger.SnapshotEntry{
			CapturedAt:      event.Timestamp,
			EquippedChanges: event.EquippedChanges,
			TopStatChanges:  event.TopStatChanges,
		}
		if event.InventoryCounts != nil {
			entry.InventoryCounts = *event.InventoryCounts
		}
		doc.LatestSnapshot = &entry
		doc.SnapshotHistory = ledger.InsertSnapshotHistory(doc.SnapshotHistory, entry, ledger.MaxHistory)
		if event.Source != "" {
			doc.Sources[ledger.EventStatWatch] = map[string]string{"history_path": event.Source}
		}
	case ledger.EventMarketSync:
		entry := ledger.MarketEntry{
			GeneratedAt: event.Timestamp,
			Posts:       event.Posts,
		}
		if event.PricingSummary != nil {
			entry.PricingSummary = *event.PricingSummary
		}
		doc.LatestMarket = &entry
		if event.Source != "" && event.Source != "runtime" {
			doc.Sources[ledger.EventMarketSync] = map[string]string{"snapshot_path": event.Source}
		}
	}
}

package ops

import (
	"fmt"
	"strings"

	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ledger"
	"github.com/nvalette/poeledger/internal/observe"
)

// SyncMarketInput contains parameters for the SyncMarket operation.
type SyncMarketInput struct {
	Doc MarketDoc

	// SourcePath is the provenance of the market snapshot; "runtime" when
	// the payload never touched disk.
	SourcePath string
}

// SyncMarketOutput contains the result of the SyncMarket operation.
type SyncMarketOutput struct {
	Skipped      bool     `json:"skipped,omitempty"`
	Slug         string   `json:"slug,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	EventID      string   `json:"event_id,omitempty"`
	Observations []string `json:"observations,omitempty"`
}

// SyncMarket folds an external-value snapshot into the ledger: caches the
// latest market payload, merges observations, records one milestone, and
// appends one journal row. The character block's league is updated
// best-effort and carried over when the snapshot omits it.
func SyncMarket(env Env, input SyncMarketInput) (*SyncMarketOutput, error) {
	name := strings.TrimSpace(input.Doc.Character.Name)
	if name == "" {
		return &SyncMarketOutput{Skipped: true}, nil
	}
	source := input.SourcePath
	if source == "" {
		source = "runtime"
	}

	slug := ledger.Slugify(name)
	unlock := lockSlug(slug)
	defer unlock()

	doc, err := env.Store.Ensure(name)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	observations := observe.Market(input.Doc.PricingSummary, input.Doc.Posts)

	if league := input.Doc.Character.League; league != "" {
		doc.Character.League = league
	}
	doc.AdvanceContext(ledger.EventMarketSync, input.Doc.GeneratedAt)
	doc.LatestMarket = &ledger.MarketEntry{
		GeneratedAt:    input.Doc.GeneratedAt,
		PricingSummary: input.Doc.PricingSummary,
		Posts:          input.Doc.Posts,
	}
	doc.LatestObservations = ledger.MergeUniqueStrings(doc.LatestObservations, observations, ledger.MaxObservations)
	if input.SourcePath != "" {
		doc.Sources[ledger.EventMarketSync] = map[string]string{"snapshot_path": input.SourcePath}
	}

	summary := fmt.Sprintf("Market sync captured %s chaos in known value",
		ledger.FormatMaybe(input.Doc.PricingSummary.KnownValueChaos))
	if len(input.Doc.PricingSummary.TopHoldings) > 0 {
		if label := input.Doc.PricingSummary.TopHoldings[0].Label; label != "" {
			summary += "; top holding " + label
		}
	}

	doc.Milestones = ledger.InsertMilestone(doc.Milestones, ledger.Milestone{
		Timestamp: input.Doc.GeneratedAt,
		Type:      ledger.EventMarketSync,
		Summary:   summary,
		Source:    source,
	}, ledger.MaxMilestones)

	if err := env.Store.Save(slug, doc); err != nil {
		return nil, errors.NewInternal(err)
	}

	eventID, err := generateEventID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	pricing := input.Doc.PricingSummary
	event := ledger.JournalEvent{
		EventID:        eventID,
		Timestamp:      input.Doc.GeneratedAt,
		Type:           ledger.EventMarketSync,
		Summary:        summary,
		Source:         source,
		PricingSummary: &pricing,
		Posts:          input.Doc.Posts,
	}
	if err := env.Store.AppendJournal(slug, event); err != nil {
		return nil, errors.NewInternal(err)
	}

	recordEvent(env, doc, ledger.EventMarketSync, input.Doc.GeneratedAt)

	return &SyncMarketOutput{
		Slug:         slug,
		Summary:      summary,
		EventID:      eventID,
		Observations: observations,
	}, nil
}

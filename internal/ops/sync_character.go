package ops

import (
	"fmt"
	"strings"

	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ledger"
)

// defaultCharacterSource names the upstream surface identity syncs come
// from when the producer does not say otherwise.
const defaultCharacterSource = "character-window/get-characters"

// SyncCharacterInput contains parameters for the SyncCharacter operation.
type SyncCharacterInput struct {
	Name    string // required; empty name makes the sync a silent no-op
	Account string
	Realm   string
	League  string
	Class   string
	Level   *int
	Source  string // defaults to defaultCharacterSource
}

// SyncCharacterOutput contains the result of the SyncCharacter operation.
type SyncCharacterOutput struct {
	Skipped bool   `json:"skipped,omitempty"`
	Slug    string `json:"slug,omitempty"`
	Summary string `json:"summary,omitempty"`
	EventID string `json:"event_id,omitempty"`
}

// SyncCharacter folds a live identity confirmation into the ledger:
// replaces the character block, advances the active context, records one
// milestone, and appends one journal row.
func SyncCharacter(env Env, input SyncCharacterInput) (*SyncCharacterOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		// Can't identify who this is about; deliberately not an error.
		return &SyncCharacterOutput{Skipped: true}, nil
	}
	source := input.Source
	if source == "" {
		source = defaultCharacterSource
	}

	slug := ledger.Slugify(name)
	unlock := lockSlug(slug)
	defer unlock()

	doc, err := env.Store.Ensure(name)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	observedAt := ledger.UTCNow()
	previousLevel := doc.Character.Level

	doc.Character = ledger.Character{
		Name:                name,
		Slug:                slug,
		Account:             input.Account,
		Realm:               input.Realm,
		League:              input.League,
		Class:               input.Class,
		Level:               input.Level,
		LastLiveConfirmedAt: observedAt,
	}
	doc.AdvanceContext(ledger.EventCharacterSync, observedAt)

	league := input.League
	if league == "" {
		league = "unknown league"
	}
	summary := fmt.Sprintf("Live character confirmed at level %s in %s",
		ledger.FormatLevel(input.Level), league)
	if !levelEqual(previousLevel, input.Level) {
		summary += fmt.Sprintf(" (previous ledger level: %s)", ledger.FormatLevel(previousLevel))
	}

	doc.Milestones = ledger.InsertMilestone(doc.Milestones, ledger.Milestone{
		Timestamp: observedAt,
		Type:      ledger.EventCharacterSync,
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
	event := ledger.JournalEvent{
		EventID:   eventID,
		Timestamp: observedAt,
		Type:      ledger.EventCharacterSync,
		Summary:   summary,
		Source:    source,
		Character: &ledger.JournalCharacter{
			Name:   name,
			League: input.League,
			Class:  input.Class,
			Level:  input.Level,
		},
	}
	if err := env.Store.AppendJournal(slug, event); err != nil {
		return nil, errors.NewInternal(err)
	}

	recordEvent(env, doc, ledger.EventCharacterSync, observedAt)

	return &SyncCharacterOutput{
		Slug:    slug,
		Summary: summary,
		EventID: eventID,
	}, nil
}

func levelEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

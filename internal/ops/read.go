package ops

import (
	"strings"

	"github.com/nvalette/poeledger/internal/errors"
	"github.com/nvalette/poeledger/internal/ledger"
	"github.com/nvalette/poeledger/internal/registry"
)

// resolveSlug maps a character name or slug to a slug. Slugify is
// idempotent, so passing an existing slug resolves to itself.
func resolveSlug(value string) (string, error) {
	slug := ledger.Slugify(strings.TrimSpace(value))
	if slug == "" {
		return "", errors.NewInvalidRequest("character is required")
	}
	return slug, nil
}

// loadDocument loads the document for a name or slug, mapping absence to
// NOT_FOUND.
func loadDocument(env Env, character string) (*ledger.Document, string, error) {
	slug, err := resolveSlug(character)
	if err != nil {
		return nil, "", err
	}
	doc, ok, err := env.Store.Load(slug)
	if err != nil {
		return nil, "", errors.NewInternal(err)
	}
	if !ok {
		return nil, "", errors.NewNotFound(character)
	}
	return doc, slug, nil
}

// GetInput contains parameters for the Get operation.
type GetInput struct {
	Character string // name or slug
}

// GetOutput contains the result of the Get operation.
type GetOutput struct {
	Document *ledger.Document `json:"document"`
}

// Get returns the full materialized document for a character.
func Get(env Env, input GetInput) (*GetOutput, error) {
	doc, _, err := loadDocument(env, input.Character)
	if err != nil {
		return nil, err
	}
	return &GetOutput{Document: doc}, nil
}

// ObservationsInput contains parameters for the Observations operation.
type ObservationsInput struct {
	Character string
}

// ObservationsOutput contains the result of the Observations operation.
type ObservationsOutput struct {
	Character    string   `json:"character"`
	Observations []string `json:"observations"`
}

// Observations returns the current merged observation list.
func Observations(env Env, input ObservationsInput) (*ObservationsOutput, error) {
	doc, _, err := loadDocument(env, input.Character)
	if err != nil {
		return nil, err
	}
	return &ObservationsOutput{
		Character:    doc.Character.Name,
		Observations: doc.LatestObservations,
	}, nil
}

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Character string
	Limit     int // 0 means all retained entries
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Character string                 `json:"character"`
	Entries   []ledger.SnapshotEntry `json:"entries"`
}

// History returns retained snapshot history, newest first.
func History(env Env, input HistoryInput) (*HistoryOutput, error) {
	doc, _, err := loadDocument(env, input.Character)
	if err != nil {
		return nil, err
	}
	entries := doc.SnapshotHistory
	if input.Limit > 0 && len(entries) > input.Limit {
		entries = entries[:input.Limit]
	}
	return &HistoryOutput{Character: doc.Character.Name, Entries: entries}, nil
}

// MilestonesInput contains parameters for the Milestones operation.
type MilestonesInput struct {
	Character string
}

// MilestonesOutput contains the result of the Milestones operation.
type MilestonesOutput struct {
	Character  string             `json:"character"`
	Milestones []ledger.Milestone `json:"milestones"`
}

// Milestones returns the retained milestones, newest first.
func Milestones(env Env, input MilestonesInput) (*MilestonesOutput, error) {
	doc, _, err := loadDocument(env, input.Character)
	if err != nil {
		return nil, err
	}
	return &MilestonesOutput{Character: doc.Character.Name, Milestones: doc.Milestones}, nil
}

// JournalInput contains parameters for the Journal operation.
type JournalInput struct {
	Character string
	Limit     int // 0 means all rows; otherwise the most recent N
}

// JournalOutput contains the result of the Journal operation.
type JournalOutput struct {
	Character string                `json:"character"`
	Total     int                   `json:"total"`
	Events    []ledger.JournalEvent `json:"events"`
}

// Journal reads the append-only journal. Unlike the bounded document
// collections, the journal holds every accepted update since the ledger
// was created.
func Journal(env Env, input JournalInput) (*JournalOutput, error) {
	slug, err := resolveSlug(input.Character)
	if err != nil {
		return nil, err
	}
	events, err := env.Store.ReadJournal(slug)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if events == nil {
		return nil, errors.NewNotFound(input.Character)
	}
	total := len(events)
	if input.Limit > 0 && len(events) > input.Limit {
		events = events[len(events)-input.Limit:]
	}
	return &JournalOutput{Character: input.Character, Total: total, Events: events}, nil
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Characters []registry.CharacterRow `json:"characters"`
}

// List returns every character known to the registry, most recently
// updated first.
func List(env Env) (*ListOutput, error) {
	if env.Registry == nil {
		return &ListOutput{Characters: []registry.CharacterRow{}}, nil
	}
	rows, err := registry.List(env.Registry)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if rows == nil {
		rows = []registry.CharacterRow{}
	}
	return &ListOutput{Characters: rows}, nil
}

package registry

import (
	"database/sql"
	"time"
)

// CharacterRow is one registry entry.
type CharacterRow struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Account       string `json:"account,omitempty"`
	Realm         string `json:"realm,omitempty"`
	League        string `json:"league,omitempty"`
	Class         string `json:"class,omitempty"`
	Level         *int   `json:"level,omitempty"`
	LastEventType string `json:"last_event_type,omitempty"`
	LastEventAt   string `json:"last_event_at,omitempty"`
	Events        int64  `json:"events"`
	UpdatedAt     int64  `json:"updated_at"`
}

// Upsert writes the current identity/state for a slug, preserving the
// journal event counter. A display-name change on an existing slug simply
// updates the binding; the slug stays the ledger identity.
func Upsert(db *sql.DB, row CharacterRow) error {
	_, err := db.Exec(`
		INSERT INTO characters (slug, name, account, realm, league, class, level,
		                        last_event_type, last_event_at, events, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(slug) DO UPDATE SET
		  name = excluded.name,
		  account = excluded.account,
		  realm = excluded.realm,
		  league = excluded.league,
		  class = excluded.class,
		  level = excluded.level,
		  last_event_type = excluded.last_event_type,
		  last_event_at = excluded.last_event_at,
		  updated_at = excluded.updated_at`,
		row.Slug, row.Name, nullable(row.Account), nullable(row.Realm),
		nullable(row.League), nullable(row.Class), row.Level,
		nullable(row.LastEventType), nullable(row.LastEventAt),
		time.Now().Unix())
	return err
}

// IncrementEvents bumps the journal row counter for a slug.
func IncrementEvents(db *sql.DB, slug string) error {
	_, err := db.Exec(`UPDATE characters SET events = events + 1 WHERE slug = ?`, slug)
	return err
}

// SetEvents overwrites the journal row counter for a slug. Used when the
// counter is re-derived from the journal itself rather than bumped per row.
func SetEvents(db *sql.DB, slug string, events int64) error {
	_, err := db.Exec(`UPDATE characters SET events = ? WHERE slug = ?`, events, slug)
	return err
}

// Get returns the registry entry for a slug, or nil if absent.
func Get(db *sql.DB, slug string) (*CharacterRow, error) {
	row := db.QueryRow(`
		SELECT slug, name, account, realm, league, class, level,
		       last_event_type, last_event_at, events, updated_at
		FROM characters WHERE slug = ?`, slug)
	entry, err := scanRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns all registry entries, most recently updated first.
func List(db *sql.DB) ([]CharacterRow, error) {
	rows, err := db.Query(`
		SELECT slug, name, account, realm, league, class, level,
		       last_event_type, last_event_at, events, updated_at
		FROM characters ORDER BY updated_at DESC, slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CharacterRow
	for rows.Next() {
		entry, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*CharacterRow, error) {
	var entry CharacterRow
	var account, realm, league, class, eventType, eventAt sql.NullString
	var level sql.NullInt64
	err := s.Scan(&entry.Slug, &entry.Name, &account, &realm, &league, &class,
		&level, &eventType, &eventAt, &entry.Events, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	entry.Account = account.String
	entry.Realm = realm.String
	entry.League = league.String
	entry.Class = class.String
	entry.LastEventType = eventType.String
	entry.LastEventAt = eventAt.String
	if level.Valid {
		l := int(level.Int64)
		entry.Level = &l
	}
	return &entry, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

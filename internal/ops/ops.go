// Package ops implements the ledger operations: the three sync update kinds
// (identity, capture, market), the read operations the CLI and MCP surfaces
// expose, and the journal rebuild. Each operation follows the same skeleton:
// load-or-create the document, mutate in memory, synthesize observations and
// a milestone, persist the document, append one journal row.
package ops

import (
	"crypto/rand"
	"database/sql"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nvalette/poeledger/internal/ledger"
	"github.com/nvalette/poeledger/internal/registry"
)

// Env carries the shared dependencies for every operation.
type Env struct {
	Store *ledger.Store

	// Registry may be nil; cross-character indexing is then skipped.
	Registry *sql.DB
}

// slugLocks serializes updates per slug within this process. The document
// overwrite and journal append for one character never interleave with
// another in-process writer; cross-process writers remain last-write-wins
// with the journal as the complete record.
var slugLocks sync.Map

func lockSlug(slug string) func() {
	v, _ := slugLocks.LoadOrStore(slug, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// generateEventID generates a ULID for a journal row.
func generateEventID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func characterRow(doc *ledger.Document, eventType, eventAt string) registry.CharacterRow {
	return registry.CharacterRow{
		Slug:          doc.Character.Slug,
		Name:          doc.Character.Name,
		Account:       doc.Character.Account,
		Realm:         doc.Character.Realm,
		League:        doc.Character.League,
		Class:         doc.Character.Class,
		Level:         doc.Character.Level,
		LastEventType: eventType,
		LastEventAt:   eventAt,
	}
}

// recordEvent updates the registry after an accepted sync. Registry
// failures are deliberately not propagated: the document and journal are
// already durable, and the registry can be re-derived.
func recordEvent(env Env, doc *ledger.Document, eventType, eventAt string) {
	if env.Registry == nil {
		return
	}
	if err := registry.Upsert(env.Registry, characterRow(doc, eventType, eventAt)); err != nil {
		return
	}
	_ = registry.IncrementEvents(env.Registry, doc.Character.Slug)
}

// recordRebuild re-syncs the registry to a rebuilt document. A rebuild
// appends no journal row, so the counter is set to the journal length
// instead of bumped.
func recordRebuild(env Env, doc *ledger.Document, total int) {
	if env.Registry == nil {
		return
	}
	row := characterRow(doc, doc.ActiveContext.LastEventType, doc.ActiveContext.LastEventAt)
	if err := registry.Upsert(env.Registry, row); err != nil {
		return
	}
	_ = registry.SetEvents(env.Registry, doc.Character.Slug, int64(total))
}

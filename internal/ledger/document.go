// Package ledger defines the per-character progression ledger: the mutable
// materialized document, the append-only journal record shapes, and the
// retention rules that keep both bounded and deduplicated.
package ledger

// SchemaVersion is the current ledger document schema version.
// Bump this when adding document migrations.
const SchemaVersion = 1

// Event types accepted by the ledger. Each accepted update appends exactly
// one journal row of the corresponding type.
const (
	EventCharacterSync = "live_character_sync"
	EventStatWatch     = "stat_watch"
	EventMarketSync    = "market_sync"
)

// Retention caps for the bounded document collections.
const (
	MaxObservations = 12
	MaxMilestones   = 12
	MaxHistory      = 120
)

// Document is the materialized summary for one character. It is always
// rewritten whole on save; the journal is the durable record of every
// accepted update.
type Document struct {
	SchemaVersion int `json:"schema_version"`

	// Character is the last-known identity block. It is wholesale-replaced
	// by each update, not merged field by field.
	Character Character `json:"character"`

	// ActiveContext points at the most recent event by event timestamp,
	// not write order.
	ActiveContext ActiveContext `json:"active_context"`

	// LatestSnapshot and LatestMarket cache the most recent payload of each
	// event kind for O(1) reads.
	LatestSnapshot *SnapshotEntry `json:"latest_snapshot,omitempty"`
	LatestMarket   *MarketEntry   `json:"latest_market,omitempty"`

	// LatestObservations is a deduplicated, order-preserving list capped at
	// MaxObservations, merged across event kinds.
	LatestObservations []string `json:"latest_observations"`

	// SnapshotHistory is capped at MaxHistory, sorted by capture timestamp
	// descending, deduplicated by capture timestamp.
	SnapshotHistory []SnapshotEntry `json:"snapshot_history"`

	// Milestones is capped at MaxMilestones, sorted by timestamp descending,
	// deduplicated by the (type, timestamp, summary) triple.
	Milestones []Milestone `json:"milestones"`

	// Sources maps event type to the artifact paths that most recently
	// produced it.
	Sources map[string]map[string]string `json:"sources"`

	// UpdatedAt is stamped at save time, not capture time.
	UpdatedAt string `json:"updated_at_utc"`
}

// Character is the identity/status block for a character.
type Character struct {
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Account string `json:"account,omitempty"`
	Realm   string `json:"realm,omitempty"`
	League  string `json:"league,omitempty"`
	Class   string `json:"class,omitempty"`
	Level   *int   `json:"level,omitempty"`

	// LastLiveConfirmedAt is set only by identity syncs.
	LastLiveConfirmedAt string `json:"last_live_confirmed_at_utc,omitempty"`
}

// ActiveContext records the most recent accepted event.
type ActiveContext struct {
	LastEventType string `json:"last_event_type,omitempty"`
	LastEventAt   string `json:"last_event_at_utc,omitempty"`
}

// SnapshotEntry is one capture of derived stats and inventory state.
type SnapshotEntry struct {
	CapturedAt      string             `json:"captured_at_utc"`
	Stats           map[string]float64 `json:"stats,omitempty"`
	InventoryCounts InventoryCounts    `json:"inventory_counts"`
	EquippedChanges []string           `json:"equipped_changes,omitempty"`
	TopStatChanges  []StatChange       `json:"top_stat_changes,omitempty"`
	Artifacts       map[string]string  `json:"artifacts,omitempty"`
}

// InventoryCounts summarizes an inventory payload.
type InventoryCounts struct {
	TotalItems    int `json:"total_items"`
	EquippedSlots int `json:"equipped_slots"`
	Flasks        int `json:"flasks"`
	BackpackItems int `json:"backpack_items"`
	SocketedGems  int `json:"socketed_gems"`
}

// IsZero reports whether no counter is set.
func (c InventoryCounts) IsZero() bool {
	return c == InventoryCounts{}
}

// StatChange is one before/after/delta triple for a flattened stat path.
type StatChange struct {
	Stat   string  `json:"stat"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
	Delta  float64 `json:"delta"`
}

// MarketEntry is the most recent external-value sync payload.
type MarketEntry struct {
	GeneratedAt    string         `json:"generated_at_utc"`
	PricingSummary PricingSummary `json:"pricing_summary"`
	Posts          []string       `json:"posts,omitempty"`
}

// PricingSummary is a pricing rollup from a market snapshot. Counters are
// pointers because producers may omit them; a missing counter suppresses the
// coverage observation rather than reading as zero.
type PricingSummary struct {
	PricedItems     *int      `json:"priced_items,omitempty"`
	TotalItems      *int      `json:"total_items,omitempty"`
	KnownValueChaos *float64  `json:"known_value_chaos,omitempty"`
	TopHoldings     []Holding `json:"top_holdings,omitempty"`
}

// Holding is one ranked entry in a pricing rollup.
type Holding struct {
	Label      string   `json:"label"`
	ChaosValue *float64 `json:"chaos_value,omitempty"`
}

// Milestone is a deduplicated, bounded, human-readable notable-event record.
type Milestone struct {
	Timestamp string `json:"timestamp_utc"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	Source    string `json:"source,omitempty"`
}

// JournalEvent is one append-only journal row. Rows are never rewritten,
// deduplicated, or truncated.
type JournalEvent struct {
	// EventID is a ULID assigned at append time.
	EventID   string `json:"event_id,omitempty"`
	Timestamp string `json:"timestamp_utc"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	Source    string `json:"source,omitempty"`

	// Kind-specific detail.
	Character       *JournalCharacter `json:"character,omitempty"`
	EquippedChanges []string          `json:"equipped_changes,omitempty"`
	TopStatChanges  []StatChange      `json:"top_stat_changes,omitempty"`
	InventoryCounts *InventoryCounts  `json:"inventory_counts,omitempty"`
	PricingSummary  *PricingSummary   `json:"pricing_summary,omitempty"`
	Posts           []string          `json:"posts,omitempty"`
}

// JournalCharacter is the identity detail carried on identity-sync rows.
type JournalCharacter struct {
	Name   string `json:"name"`
	League string `json:"league,omitempty"`
	Class  string `json:"class,omitempty"`
	Level  *int   `json:"level,omitempty"`
}

// NewDocument returns the fixed empty-state document for a character name.
func NewDocument(name string) *Document {
	return &Document{
		SchemaVersion: SchemaVersion,
		Character: Character{
			Name: name,
			Slug: Slugify(name),
		},
		LatestObservations: []string{},
		SnapshotHistory:    []SnapshotEntry{},
		Milestones:         []Milestone{},
		Sources:            map[string]map[string]string{},
		UpdatedAt:          UTCNow(),
	}
}

// Migrate upgrades a loaded document to the current schema version.
// Old documents gain new optional fields here, keyed on schema_version,
// instead of relying on incidental map mutation.
func Migrate(doc *Document) {
	if doc.SchemaVersion < 1 {
		doc.SchemaVersion = 1
	}
	if doc.LatestObservations == nil {
		doc.LatestObservations = []string{}
	}
	if doc.SnapshotHistory == nil {
		doc.SnapshotHistory = []SnapshotEntry{}
	}
	if doc.Milestones == nil {
		doc.Milestones = []Milestone{}
	}
	if doc.Sources == nil {
		doc.Sources = map[string]map[string]string{}
	}
	// Future migrations go here:
	// if doc.SchemaVersion < 2 { ... }
}

// AdvanceContext moves the active context forward. An incoming event whose
// timestamp parses strictly earlier than the recorded one is ignored; the
// rest of the document may still change.
func (d *Document) AdvanceContext(eventType, timestamp string) {
	current, currentOK := ParseTimestamp(d.ActiveContext.LastEventAt)
	incoming, incomingOK := ParseTimestamp(timestamp)
	if currentOK && incomingOK && incoming.Before(current) {
		return
	}
	d.ActiveContext = ActiveContext{
		LastEventType: eventType,
		LastEventAt:   timestamp,
	}
}

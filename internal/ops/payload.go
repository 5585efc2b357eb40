package ops

import (
	"strings"

	"github.com/nvalette/poeledger/internal/ledger"
)

// Inbound payloads arrive as loosely-typed JSON from upstream producers.
// All "wrong type at a leaf" tolerance lives here, at the decode boundary:
// the operations themselves only see defaulted, typed values.

// CaptureRecord is one stat-watch history row: the diff record a capture
// sync folds into the ledger.
type CaptureRecord struct {
	Timestamp       string              `json:"timestamp_utc"`
	Account         string              `json:"account,omitempty"`
	Realm           string              `json:"realm,omitempty"`
	Character       string              `json:"character,omitempty"`
	EquippedChanges []string            `json:"equipped_changes"`
	StatChanges     []ledger.StatChange `json:"stat_changes"`
}

// MarketDoc is the inbound shape of an external-value snapshot.
type MarketDoc struct {
	GeneratedAt    string                `json:"generated_at_utc"`
	Character      MarketCharacter       `json:"character"`
	PricingSummary ledger.PricingSummary `json:"pricing_summary"`
	Posts          []string              `json:"posts"`
}

// MarketCharacter identifies who a market snapshot is about.
type MarketCharacter struct {
	Name   string `json:"name"`
	League string `json:"league,omitempty"`
}

// DecodeCaptureRecord coerces a raw history row. Missing or misshapen
// fields default rather than fail.
func DecodeCaptureRecord(raw map[string]any) CaptureRecord {
	return CaptureRecord{
		Timestamp:       asString(raw["timestamp_utc"]),
		Account:         asString(raw["account"]),
		Realm:           asString(raw["realm"]),
		Character:       asString(raw["character"]),
		EquippedChanges: asStringSlice(raw["equipped_changes"]),
		StatChanges:     CoerceStatChanges(raw["stat_changes"]),
	}
}

// DecodeMarketDoc coerces a raw market snapshot document.
func DecodeMarketDoc(raw map[string]any) MarketDoc {
	character := asMap(raw["character"])
	return MarketDoc{
		GeneratedAt: asString(raw["generated_at_utc"]),
		Character: MarketCharacter{
			Name:   asString(character["name"]),
			League: asString(character["league"]),
		},
		PricingSummary: coercePricingSummary(asMap(raw["pricing_summary"])),
		Posts:          asStringSlice(raw["posts"]),
	}
}

// CoerceStatChanges filters a raw stat-change list down to entries with a
// non-empty stat name and a numeric delta; anything else is silently
// skipped.
func CoerceStatChanges(value any) []ledger.StatChange {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	changes := make([]ledger.StatChange, 0, len(items))
	for _, item := range items {
		m := asMap(item)
		stat := strings.TrimSpace(asString(m["stat"]))
		delta, deltaOK := asFloat(m["delta"])
		if stat == "" || !deltaOK {
			continue
		}
		before, _ := asFloat(m["before"])
		after, _ := asFloat(m["after"])
		changes = append(changes, ledger.StatChange{
			Stat:   stat,
			Before: before,
			After:  after,
			Delta:  delta,
		})
	}
	return changes
}

// ExtractLeague pulls the league from a raw snapshot document, trying the
// character block first and the items payload's character block second.
func ExtractLeague(snapshot map[string]any) string {
	if league := asString(asMap(snapshot["character"])["league"]); league != "" {
		return league
	}
	return asString(asMap(asMap(snapshot["items"])["character"])["league"])
}

func coercePricingSummary(raw map[string]any) ledger.PricingSummary {
	summary := ledger.PricingSummary{}
	if v, ok := asInt(raw["priced_items"]); ok {
		summary.PricedItems = &v
	}
	if v, ok := asInt(raw["total_items"]); ok {
		summary.TotalItems = &v
	}
	if v, ok := asFloat(raw["known_value_chaos"]); ok {
		summary.KnownValueChaos = &v
	}
	if holdings, ok := raw["top_holdings"].([]any); ok {
		for _, item := range holdings {
			m := asMap(item)
			holding := ledger.Holding{Label: asString(m["label"])}
			if v, ok := asFloat(m["chaos_value"]); ok {
				holding.ChaosValue = &v
			}
			summary.TopHoldings = append(summary.TopHoldings, holding)
		}
	}
	return summary
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asInt(v any) (int, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

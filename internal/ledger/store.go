package ledger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"
)

// Store owns the on-disk layout for all character ledgers:
//
//	<base>/characters/<slug>/ledger.json    pretty-printed document
//	<base>/characters/<slug>/journal.jsonl  append-only journal
//
// Store does no cross-process locking. The document is a materialized view;
// the journal is the durable record of every attempted update even when a
// concurrent writer's document overwrite wins.
type Store struct {
	BaseDir string
}

// NewStore creates a store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{BaseDir: baseDir}
}

// CharacterDir returns the per-character directory for a slug.
func (s *Store) CharacterDir(slug string) string {
	return filepath.Join(s.BaseDir, "characters", slug)
}

// DocumentPath returns the ledger document path for a slug.
func (s *Store) DocumentPath(slug string) string {
	return filepath.Join(s.CharacterDir(slug), "ledger.json")
}

// JournalPath returns the journal path for a slug.
func (s *Store) JournalPath(slug string) string {
	return filepath.Join(s.CharacterDir(slug), "journal.jsonl")
}

// Load reads the document for a slug. The second return is false when no
// document exists yet; storage errors are propagated unmodified.
func (s *Store) Load(slug string) (*Document, bool, error) {
	data, err := os.ReadFile(s.DocumentPath(slug))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, false, fmt.Errorf("ledger document for %q is corrupt: %w", slug, err)
	}
	Migrate(doc)
	return doc, true, nil
}

// Ensure loads the document for a character name, lazily creating the fixed
// empty-state document on first use for the derived slug.
func (s *Store) Ensure(name string) (*Document, error) {
	slug := Slugify(name)
	doc, ok, err := s.Load(slug)
	if err != nil {
		return nil, err
	}
	if !ok {
		doc = NewDocument(name)
	}
	return doc, nil
}

// Save overwrites the whole document for a slug, stamping UpdatedAt at save
// time. The document is pretty-printed with a trailing newline and written
// via a temp file + rename so readers never see a partial document.
func (s *Store) Save(slug string, doc *Document) error {
	doc.UpdatedAt = UTCNow()

	if err := os.MkdirAll(s.CharacterDir(slug), 0o755); err != nil {
		return fmt.Errorf("create character dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger document: %w", err)
	}
	data = append(data, '\n')

	path := s.DocumentPath(slug)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// AppendJournal appends one compact, ASCII-escaped JSON line to the journal.
// The journal is never truncated or deduplicated.
func (s *Store) AppendJournal(slug string, event JournalEvent) error {
	if err := os.MkdirAll(s.CharacterDir(slug), 0o755); err != nil {
		return fmt.Errorf("create character dir: %w", err)
	}
	line, err := MarshalASCII(event)
	if err != nil {
		return fmt.Errorf("marshal journal event: %w", err)
	}
	f, err := os.OpenFile(s.JournalPath(slug), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadJournal reads all journal rows for a slug in append order. A missing
// journal reads as empty; blank and unparsable lines are skipped so one bad
// row never blocks a replay.
func (s *Store) ReadJournal(slug string) ([]JournalEvent, error) {
	f, err := os.Open(s.JournalPath(slug))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var events []JournalEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var event JournalEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// MarshalASCII marshals v as compact JSON with all non-ASCII characters
// escaped to \uXXXX sequences, matching the journal's on-disk contract.
func MarshalASCII(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return escapeNonASCII(data), nil
}

// escapeNonASCII rewrites runes above 0x7F as JSON unicode escapes.
// Non-ASCII bytes only occur inside JSON strings, so a byte-level pass is
// safe on already-marshaled output.
func escapeNonASCII(data []byte) []byte {
	ascii := true
	for _, b := range data {
		if b > 0x7F {
			ascii = false
			break
		}
	}
	if ascii {
		return data
	}

	out := make([]byte, 0, len(data)+16)
	for _, r := range string(data) {
		if r <= 0x7F {
			out = append(out, byte(r))
			continue
		}
		if r > 0xFFFF {
			r1, r2 := utf16.EncodeRune(r)
			out = append(out, fmt.Sprintf(`\u%04x\u%04x`, r1, r2)...)
			continue
		}
		out = append(out, fmt.Sprintf(`\u%04x`, r)...)
	}
	return out
}

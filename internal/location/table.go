// Package location resolves user-written location names to the canonical
// keys used by the statistics source.
package location

import (
	"fmt"

	"github.com/kivanctezoren/sanalkiwobot/internal/wordset"
)

// Table maps lowercased aliases to canonical location keys. A canonical key
// may have several aliases; the first one listed in the source file is the
// preferred display form.
type Table struct {
	aliases    map[string]string
	preferred  map[string]string
	canonicals map[string]struct{}
}

// LoadTable reads an alias table from a key/value pair file.
func LoadTable(path string) (*Table, error) {
	pairs, err := wordset.ReadPairs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load location table: %w", err)
	}
	return NewTable(pairs), nil
}

// NewTable builds a table from ordered alias/canonical pairs.
func NewTable(pairs []wordset.Pair) *Table {
	t := &Table{
		aliases:    make(map[string]string, len(pairs)),
		preferred:  make(map[string]string),
		canonicals: make(map[string]struct{}),
	}
	for _, p := range pairs {
		t.aliases[p.Key] = p.Value
		t.canonicals[p.Value] = struct{}{}
		if _, ok := t.preferred[p.Value]; !ok {
			t.preferred[p.Value] = p.Key
		}
	}
	return t
}

// Canonical returns the canonical key for an alias.
func (t *Table) Canonical(alias string) (string, bool) {
	c, ok := t.aliases[alias]
	return c, ok
}

// IsCanonical reports whether name is itself a canonical key.
func (t *Table) IsCanonical(name string) bool {
	_, ok := t.canonicals[name]
	return ok
}

// PreferredAlias returns the display alias for a canonical key, or the key
// itself if it is unknown.
func (t *Table) PreferredAlias(canonical string) string {
	if a, ok := t.preferred[canonical]; ok {
		return a
	}
	return canonical
}

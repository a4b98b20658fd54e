package bibtex

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// BuildEntry renders an entry as BibTeX text, one tab-indented field per line.
//
// Raw values are written unchanged so LaTeX markup survives a round trip.
// Nothing is escaped or validated.
func BuildEntry(e *Entry) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("@%s{%s", e.Type, e.Key))
	for _, f := range e.Fields {
		b.WriteString(fmt.Sprintf(",\n\t%s = {%s}", f.key(), f.RawValue))
	}
	b.WriteString("\n}")
	return b.String()
}

// BuildEntries renders each entry, in order.
func BuildEntries(entries []*Entry) []string {
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, BuildEntry(e))
	}
	return texts
}

// BuildMap renders each entry of a key → entry mapping, sorted by key.
func BuildMap(entries map[string]*Entry) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	texts := make([]string, 0, len(keys))
	for _, k := range keys {
		texts = append(texts, BuildEntry(entries[k]))
	}
	return texts
}

// WriteEntries writes entries to w separated by blank lines.
func WriteEntries(w io.Writer, entries []*Entry) error {
	for i, text := range BuildEntries(entries) {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, text+"\n"); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return nil
}

package author

import "strings"

// Query is an author filter: an exact family name and an optional given
// name prefix.
type Query struct {
	First string // Given name prefix, empty to match any
	Last  string // Family name
}

// ParseQuery reads an author filter written either as "Last, First" or
// as "First Last". A single word is a family name.
func ParseQuery(input string) Query {
	input = strings.TrimSpace(input)
	if input == "" {
		return Query{}
	}
	if last, first, ok := strings.Cut(input, ","); ok && strings.TrimSpace(last) != "" {
		return Query{First: strings.TrimSpace(first), Last: strings.TrimSpace(last)}
	}
	n := ParseName(input)
	return Query{First: n.First, Last: n.Last}
}

// Matches reports whether a normalized "First Last" name satisfies q.
// Family names compare case-insensitively and in full, so "Yu" does not
// match "Yujia Chan". Given names compare as a case-insensitive prefix,
// so "Tim Yu" matches "Timothy C Yu".
func (q Query) Matches(name string) bool {
	n := ParseName(name)
	if !strings.EqualFold(q.Last, n.Last) {
		return false
	}
	return q.First == "" || strings.HasPrefix(strings.ToLower(n.First), strings.ToLower(q.First))
}

// MatchesAny reports whether q matches at least one of the names.
func (q Query) MatchesAny(names []string) bool {
	for _, name := range names {
		if q.Matches(name) {
			return true
		}
	}
	return false
}

// AllMatch reports whether every query matches some name in the list.
// No queries match everything.
func AllMatch(queries []Query, names []string) bool {
	for _, q := range queries {
		if !q.MatchesAny(names) {
			return false
		}
	}
	return true
}

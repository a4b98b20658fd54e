// Package author normalizes BibTeX author lists and matches author search queries.
package author

import "strings"

// Separator joins the names in a BibTeX author field.
// It is matched literally and case-sensitively.
const Separator = " and "

// Split splits an author field value into normalized "First Last" names,
// preserving the order in which they appear.
func Split(value string) []string {
	segments := strings.Split(value, Separator)
	names := make([]string, 0, len(segments))
	for _, s := range segments {
		names = append(names, Normalize(s))
	}
	return names
}

// Normalize converts one author segment into "First Last" order.
//
// Supported formats:
//   - "John Smith"       → "John Smith" (kept as written)
//   - "Smith, John"      → "John Smith"
//   - "Smith, Jr., John" → "Jr., John Smith" (split at the first comma only)
func Normalize(segment string) string {
	idx := strings.Index(segment, ",")
	if idx < 0 {
		return strings.TrimSpace(segment)
	}
	last := strings.TrimSpace(segment[:idx])
	first := strings.TrimSpace(segment[idx+1:])
	return strings.TrimSpace(first + " " + last)
}

// Name is a display name split into given and family parts.
type Name struct {
	First string
	Last  string
}

// ParseName splits a "First Last" display name: the last word is the
// family name and everything before it the given names.
func ParseName(display string) Name {
	parts := strings.Fields(display)
	switch len(parts) {
	case 0:
		return Name{}
	case 1:
		return Name{Last: parts[0]}
	}
	return Name{
		First: strings.Join(parts[:len(parts)-1], " "),
		Last:  parts[len(parts)-1],
	}
}

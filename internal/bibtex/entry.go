package bibtex

import "strings"

// Field is one key/value pair of an entry.
type Field struct {
	Name     string   `json:"name"`              // Lowercased field key
	RawName  string   `json:"raw_name"`          // Key exactly as written in the source
	RawValue string   `json:"raw_value"`         // Delimiter-stripped, concatenated source text
	Value    string   `json:"value"`             // RawValue after LaTeX conversion (RawValue if that failed)
	Authors  []string `json:"authors,omitempty"` // Normalized "First Last" names, author fields only
}

// key returns the lowercased field key, deriving it from RawName when
// the field was built by hand.
func (f Field) key() string {
	if f.Name != "" {
		return f.Name
	}
	return strings.ToLower(f.RawName)
}

// Entry is a bibliographic record such as @article{key, ...}.
//
// Type and Key are kept apart from the fields, so a source field named
// "entrytype" or "entrykey" is just another field.
type Entry struct {
	Type   string  `json:"entry_type"` // Lowercased directive name without the @
	Key    string  `json:"entry_key"`  // Citation key
	Fields []Field `json:"fields"`     // In order of first assignment
}

// Field returns the field with the given name, ignoring case.
func (e *Entry) Field(name string) (Field, bool) {
	if i := e.index(strings.ToLower(name)); i >= 0 {
		return e.Fields[i], true
	}
	return Field{}, false
}

// Get returns the converted value of a field, or "" if it is missing.
func (e *Entry) Get(name string) string {
	f, _ := e.Field(name)
	return f.Value
}

// Raw returns the raw value of a field, or "" if it is missing.
func (e *Entry) Raw(name string) string {
	f, _ := e.Field(name)
	return f.RawValue
}

// Set stores a field. Assigning an existing name replaces the old value
// but keeps its position.
func (e *Entry) Set(f Field) {
	f.Name = f.key()
	if i := e.index(f.Name); i >= 0 {
		e.Fields[i] = f
		return
	}
	e.Fields = append(e.Fields, f)
}

// Names returns the lowercased field names in order.
func (e *Entry) Names() []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.key()
	}
	return names
}

func (e *Entry) index(name string) int {
	for i, f := range e.Fields {
		if f.key() == name {
			return i
		}
	}
	return -1
}

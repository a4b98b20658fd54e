package bibtex

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDuplicateKey is reported through the warning sink when an entry
// redefines a citation key seen earlier in the same document.
var ErrDuplicateKey = errors.New("duplicate entry key")

// ErrParserUsed is returned when Parse is called twice on one Parser.
var ErrParserUsed = errors.New("bibtex: parser already used")

// nearLen bounds the input excerpt carried by a SyntaxError.
const nearLen = 40

// SyntaxError is the single failure kind of the parser. Any structural
// problem aborts the whole parse.
type SyntaxError struct {
	Offset int    // Byte offset into the input
	Line   int    // 1-based line of Offset
	Column int    // 1-based byte column of Offset
	Msg    string // Description, e.g. "Unterminated value"
	Near   string // Input starting at Offset, truncated
}

func (e *SyntaxError) Error() string {
	near := "end of input"
	if e.Near != "" {
		near = fmt.Sprintf("%q", e.Near)
	}
	return fmt.Sprintf("bibtex: syntax error at line %d, column %d: %s (near %s)", e.Line, e.Column, e.Msg, near)
}

func newSyntaxError(input string, offset int, msg string) *SyntaxError {
	if offset > len(input) {
		offset = len(input)
	}
	line := 1 + strings.Count(input[:offset], "\n")
	column := offset + 1
	if nl := strings.LastIndexByte(input[:offset], '\n'); nl >= 0 {
		column = offset - nl
	}
	near := input[offset:]
	if len(near) > nearLen {
		near = near[:nearLen] + "..."
	}
	return &SyntaxError{Offset: offset, Line: line, Column: column, Msg: msg, Near: near}
}

// Warning is a non-fatal diagnostic. The parse continues after it.
type Warning struct {
	EntryKey string // Entry being parsed
	Field    string // Lowercased field name; empty for entry-level warnings
	Err      error
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("%v: %s", w.Err, w.EntryKey)
	}
	return fmt.Sprintf("%v when parsing field '%s' in entry '%s'; keeping the raw value, it may contain unprocessed LaTeX",
		w.Err, w.Field, w.EntryKey)
}

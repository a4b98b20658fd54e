// Package bibtex parses BibTeX documents into entries and builds BibTeX text from them.
//
// Grammar implemented by the parser:
//
//	bibtex           -> (string | preamble | comment | entry)*
//	string           -> '@STRING' '{' key_equals_value '}'
//	preamble         -> '@PREAMBLE' '{' value '}'
//	comment          -> '@COMMENT' '{' raw text up to '}' '}'
//	entry            -> '@' key '{' key ',' key_value_list '}'
//	key_value_list   -> key_equals_value (',' key_equals_value)* ','?
//	key_equals_value -> key '=' value
//	value            -> single_value ('#' single_value)*
//	single_value     -> '{' braced text '}' | '"' quoted text '"' | macro | number
//
// Whitespace and %-line comments may appear between any two tokens. Text
// between directives that does not start with @ is ignored.
package bibtex

import (
	"strings"

	"github.com/matsen/bibparse/internal/author"
	"github.com/matsen/bibparse/internal/latex"
)

// Converter turns the raw text of a field value into display text.
type Converter interface {
	Convert(raw string) (string, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(string) (string, error)

// Convert calls f(raw).
func (f ConverterFunc) Convert(raw string) (string, error) {
	return f(raw)
}

// Identity leaves values untouched.
var Identity = ConverterFunc(func(s string) (string, error) { return s, nil })

// Options configures a Parser. The zero value converts LaTeX to Unicode and
// drops warnings, which are still available from Parser.Warnings.
type Options struct {
	Converter Converter         // Defaults to latex.Convert
	Warn      func(Warning)     // Called for every non-fatal diagnostic
	Macros    map[string]string // Extra @STRING macros, names are case-insensitive
}

// Pre-seeded string macros.
var monthMacros = map[string]string{
	"JAN": "January",
	"FEB": "February",
	"MAR": "March",
	"APR": "April",
	"MAY": "May",
	"JUN": "June",
	"JUL": "July",
	"AUG": "August",
	"SEP": "September",
	"OCT": "October",
	"NOV": "November",
	"DEC": "December",
}

// Parser holds the state of one parse. A Parser reads exactly one document
// and must not be shared between goroutines.
type Parser struct {
	input string
	pos   int
	used  bool

	convert Converter
	warn    func(Warning)

	macros   map[string]string
	entries  map[string]*Entry
	order    []string
	comments []string
	warnings []Warning
	current  *Entry
}

// NewParser creates a parser for src.
func NewParser(src string, opts Options) *Parser {
	p := &Parser{
		input:   src,
		convert: opts.Converter,
		warn:    opts.Warn,
		macros:  make(map[string]string, len(monthMacros)+len(opts.Macros)),
		entries: make(map[string]*Entry),
	}
	if p.convert == nil {
		p.convert = ConverterFunc(latex.Convert)
	}
	for name, value := range monthMacros {
		p.macros[name] = value
	}
	for name, value := range opts.Macros {
		p.macros[strings.ToUpper(name)] = value
	}
	return p
}

// Parse reads the whole document. The first structural error aborts the
// parse and is returned as a *SyntaxError.
func (p *Parser) Parse() error {
	if p.used {
		return ErrParserUsed
	}
	p.used = true

	for {
		p.skipText()
		if p.pos >= len(p.input) {
			return nil
		}
		if err := p.directive(); err != nil {
			return err
		}
	}
}

// Entries returns the parsed entries in document order. A redefined key
// keeps the position of its first definition.
func (p *Parser) Entries() []*Entry {
	entries := make([]*Entry, len(p.order))
	for i, key := range p.order {
		entries[i] = p.entries[key]
	}
	return entries
}

// EntryMap returns the parsed entries keyed by citation key.
func (p *Parser) EntryMap() map[string]*Entry {
	m := make(map[string]*Entry, len(p.entries))
	for key, e := range p.entries {
		m[key] = e
	}
	return m
}

// Comments returns the bodies of all @COMMENT directives in document order.
func (p *Parser) Comments() []string {
	return append([]string(nil), p.comments...)
}

// Warnings returns every non-fatal diagnostic raised so far.
func (p *Parser) Warnings() []Warning {
	return append([]Warning(nil), p.warnings...)
}

// Macro looks up a string macro by case-insensitive name.
func (p *Parser) Macro(name string) (string, bool) {
	v, ok := p.macros[strings.ToUpper(name)]
	return v, ok
}

// Parse parses src and returns its entries in document order.
func Parse(src string, opts Options) ([]*Entry, error) {
	p := NewParser(src, opts)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p.Entries(), nil
}

// ParseMap parses src and returns its entries keyed by citation key.
func ParseMap(src string, opts Options) (map[string]*Entry, error) {
	p := NewParser(src, opts)
	if err := p.Parse(); err != nil {
		return nil, err
	}
	return p.EntryMap(), nil
}

// ----------------------------------------------------------------------------
// Directives

func (p *Parser) directive() error {
	if err := p.match("@"); err != nil {
		return err
	}
	name, err := p.key()
	if err != nil {
		return err
	}
	name = strings.ToLower(name)
	if err := p.match("{"); err != nil {
		return err
	}

	switch name {
	case "string":
		err = p.stringMacro()
	case "preamble":
		_, err = p.value()
	case "comment":
		err = p.comment()
	default:
		err = p.entry(name)
	}
	if err != nil {
		return err
	}
	return p.match("}")
}

func (p *Parser) stringMacro() error {
	name, value, err := p.keyEqualsValue()
	if err != nil {
		return err
	}
	p.macros[strings.ToUpper(name)] = value
	return nil
}

// comment collects the raw body up to the first unescaped closing brace.
func (p *Parser) comment() error {
	start := p.pos
	for ; p.pos < len(p.input); p.pos++ {
		if p.input[p.pos] == '}' && !p.escaped(p.pos) {
			p.comments = append(p.comments, p.input[start:p.pos])
			return nil
		}
	}
	return p.errorf(start, "Runaway comment")
}

func (p *Parser) entry(typ string) error {
	key, err := p.key()
	if err != nil {
		return err
	}

	e := &Entry{Type: typ, Key: key}
	if _, exists := p.entries[key]; exists {
		p.report(Warning{EntryKey: key, Err: ErrDuplicateKey})
	} else {
		p.order = append(p.order, key)
	}
	p.entries[key] = e
	p.current = e

	if err := p.match(","); err != nil {
		return err
	}
	return p.keyValueList()
}

func (p *Parser) keyValueList() error {
	if err := p.field(); err != nil {
		return err
	}
	for p.peek(",") {
		if err := p.match(","); err != nil {
			return err
		}
		// Trailing comma before the closing brace.
		if p.peek("}") {
			break
		}
		if err := p.field(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) field() error {
	name, raw, err := p.keyEqualsValue()
	if err != nil {
		return err
	}
	p.current.Set(p.processValue(name, raw))
	return nil
}

// processValue converts a raw field value and splits author lists. A failed
// conversion is reported as a warning and the raw value is kept.
func (p *Parser) processValue(name, raw string) Field {
	lower := strings.ToLower(name)
	value, err := p.convert.Convert(raw)
	if err != nil {
		p.report(Warning{EntryKey: p.current.Key, Field: lower, Err: err})
		value = raw
	}

	f := Field{Name: lower, RawName: name, RawValue: raw, Value: value}
	if lower == "author" {
		f.Authors = author.Split(value)
	}
	return f
}

func (p *Parser) report(w Warning) {
	p.warnings = append(p.warnings, w)
	if p.warn != nil {
		p.warn(w)
	}
}

// ----------------------------------------------------------------------------
// Values

func (p *Parser) keyEqualsValue() (string, string, error) {
	name, err := p.key()
	if err != nil {
		return "", "", err
	}
	if !p.peek("=") {
		return "", "", p.errorf(p.pos, "... = value expected, equals sign missing")
	}
	if err := p.match("="); err != nil {
		return "", "", err
	}
	value, err := p.value()
	if err != nil {
		return "", "", err
	}
	return name, value, nil
}

// value concatenates the parts of a '#' expression without re-expanding them.
func (p *Parser) value() (string, error) {
	var b strings.Builder
	for {
		v, err := p.singleValue()
		if err != nil {
			return "", err
		}
		b.WriteString(v)
		if !p.peek("#") {
			return b.String(), nil
		}
		if err := p.match("#"); err != nil {
			return "", err
		}
	}
}

func (p *Parser) singleValue() (string, error) {
	switch {
	case p.peek("{"):
		return p.bracedValue()
	case p.peek(`"`):
		return p.quotedValue()
	}

	p.skipWhitespace()
	start := p.pos
	k, err := p.key()
	if err != nil {
		return "", err
	}
	if v, ok := p.macros[strings.ToUpper(k)]; ok {
		return v, nil
	}
	if isNumber(k) {
		return k, nil
	}
	return "", p.errorf(start, "Value expected")
}

// bracedValue returns the text between balanced braces. Braces preceded by
// a backslash neither open nor close a level.
func (p *Parser) bracedValue() (string, error) {
	if err := p.open('{'); err != nil {
		return "", err
	}
	start := p.pos
	depth := 0
	for ; p.pos < len(p.input); p.pos++ {
		switch p.input[p.pos] {
		case '{':
			if !p.escaped(p.pos) {
				depth++
			}
		case '}':
			if p.escaped(p.pos) {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			end := p.pos
			p.pos++
			p.skipWhitespace()
			return p.input[start:end], nil
		}
	}
	return "", p.errorf(start, "Unterminated value")
}

// quotedValue returns the text up to the next unescaped double quote.
func (p *Parser) quotedValue() (string, error) {
	if err := p.open('"'); err != nil {
		return "", err
	}
	start := p.pos
	for ; p.pos < len(p.input); p.pos++ {
		if p.input[p.pos] == '"' && !p.escaped(p.pos) {
			end := p.pos
			p.pos++
			p.skipWhitespace()
			return p.input[start:end], nil
		}
	}
	return "", p.errorf(start, "Unterminated value")
}

// ----------------------------------------------------------------------------
// Scanning support

// key reads a maximal run of key characters at the cursor.
func (p *Parser) key() (string, error) {
	start := p.pos
	for {
		if p.pos >= len(p.input) {
			return "", p.errorf(start, "Runaway key")
		}
		if !isKeyChar(p.input[p.pos]) {
			return p.input[start:p.pos], nil
		}
		p.pos++
	}
}

// match consumes the literal token s, skipping whitespace around it.
func (p *Parser) match(s string) error {
	p.skipWhitespace()
	if !strings.HasPrefix(p.input[p.pos:], s) {
		return p.errorf(p.pos, "Token mismatch, expected "+s)
	}
	p.pos += len(s)
	p.skipWhitespace()
	return nil
}

// open consumes an opening value delimiter. Whitespace after it belongs
// to the value.
func (p *Parser) open(delim byte) error {
	p.skipWhitespace()
	if p.pos >= len(p.input) || p.input[p.pos] != delim {
		return p.errorf(p.pos, "Token mismatch, expected "+string(delim))
	}
	p.pos++
	return nil
}

// peek reports whether the next token is s. It never moves the cursor.
func (p *Parser) peek(s string) bool {
	return strings.HasPrefix(p.input[p.skip(p.pos):], s)
}

func (p *Parser) skipWhitespace() {
	p.pos = p.skip(p.pos)
}

// skip returns the first offset at or after pos that is neither whitespace
// nor inside a %-comment.
func (p *Parser) skip(pos int) int {
	for pos < len(p.input) {
		switch ch := p.input[pos]; {
		case isWhitespace(ch):
			pos++
		case ch == '%':
			for pos < len(p.input) && p.input[pos] != '\n' {
				pos++
			}
		default:
			return pos
		}
	}
	return pos
}

// skipText moves past whitespace, comments and any free text up to the
// next directive or the end of input. An @ inside a line of free text
// only starts a directive when a key and an opening brace follow it, so
// text such as "mail jane@example.org" stays part of the comment.
func (p *Parser) skipText() {
	inText := false
	for {
		before := p.pos
		p.skipWhitespace()
		if strings.Contains(p.input[before:p.pos], "\n") {
			inText = false
		}
		if p.pos >= len(p.input) {
			return
		}
		if p.input[p.pos] == '@' && (!inText || p.directiveAt(p.pos)) {
			return
		}
		inText = true
		next := strings.IndexAny(p.input[p.pos+1:], "@\n")
		if next < 0 {
			p.pos = len(p.input)
			return
		}
		p.pos += next + 1
	}
}

// directiveAt reports whether the @ at pos is followed by a key and an
// opening brace. It never moves the cursor.
func (p *Parser) directiveAt(pos int) bool {
	i := pos + 1
	for i < len(p.input) && isKeyChar(p.input[i]) {
		i++
	}
	if i == pos+1 {
		return false
	}
	i = p.skip(i)
	return i < len(p.input) && p.input[i] == '{'
}

func (p *Parser) escaped(pos int) bool {
	return pos > 0 && p.input[pos-1] == '\\'
}

func (p *Parser) errorf(offset int, msg string) error {
	return newSyntaxError(p.input, offset, msg)
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\r' || ch == '\t' || ch == '\n'
}

func isKeyChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	return strings.IndexByte("_:./-", ch) >= 0
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

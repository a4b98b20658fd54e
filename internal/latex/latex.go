// Package latex converts the LaTeX markup found in BibTeX field values to plain Unicode text.
//
// The conversion is best effort: accents, special symbols, escaped characters,
// ligatures and simple formatting commands are translated, grouping braces are
// removed, and any command it does not know is copied through unchanged.
package latex

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ConversionError reports malformed LaTeX that cannot be converted.
type ConversionError struct {
	Offset int    // Byte offset of the offending construct in the input
	Msg    string // What went wrong
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("latex: %s at offset %d", e.Msg, e.Offset)
}

// Combining marks for accent commands written with a symbol (\'e, \"{o}, ...).
var symbolAccents = map[byte]rune{
	'\'': '\u0301', // acute
	'`':  '\u0300', // grave
	'^':  '\u0302', // circumflex
	'"':  '\u0308', // diaeresis
	'~':  '\u0303', // tilde
	'=':  '\u0304', // macron
	'.':  '\u0307', // dot above
}

// Combining marks for accent commands written with a letter (\v{c}, \c c, ...).
var letterAccents = map[string]rune{
	"u": '\u0306', // breve
	"v": '\u030c', // caron
	"H": '\u030b', // double acute
	"c": '\u0327', // cedilla
	"k": '\u0328', // ogonek
	"r": '\u030a', // ring above
	"d": '\u0323', // dot below
	"b": '\u0331', // macron below
	"t": '\u0361', // tie
}

var symbols = map[string]string{
	"ss":                "ß",
	"o":                 "ø",
	"O":                 "Ø",
	"ae":                "æ",
	"AE":                "Æ",
	"oe":                "œ",
	"OE":                "Œ",
	"aa":                "å",
	"AA":                "Å",
	"l":                 "ł",
	"L":                 "Ł",
	"i":                 "ı",
	"j":                 "ȷ",
	"dh":                "ð",
	"DH":                "Ð",
	"th":                "þ",
	"TH":                "Þ",
	"ng":                "ŋ",
	"NG":                "Ŋ",
	"textendash":        "–",
	"textemdash":        "—",
	"textquoteleft":     "‘",
	"textquoteright":    "’",
	"textquotedblleft":  "“",
	"textquotedblright": "”",
	"textellipsis":      "…",
	"ldots":             "…",
	"dots":              "…",
	"S":                 "§",
	"P":                 "¶",
	"copyright":         "©",
	"textregistered":    "®",
	"texttrademark":     "™",
	"pounds":            "£",
	"euro":              "€",
	"textdegree":        "°",
	"dag":               "†",
	"ddag":              "‡",
	"LaTeX":             "LaTeX",
	"TeX":               "TeX",
}

// Control symbols that stand for a literal character.
var escapes = map[byte]string{
	'&':  "&",
	'%':  "%",
	'$':  "$",
	'#':  "#",
	'_':  "_",
	'{':  "{",
	'}':  "}",
	' ':  " ",
	',':  " ",
	'\\': " ",
	'-':  "",
	'/':  "",
}

// Formatting commands whose argument is kept and whose markup is dropped.
var textCommands = map[string]bool{
	"emph":       true,
	"textbf":     true,
	"textit":     true,
	"texttt":     true,
	"textsc":     true,
	"textrm":     true,
	"textsf":     true,
	"textsl":     true,
	"textup":     true,
	"textnormal": true,
	"text":       true,
	"mbox":       true,
}

type converter struct {
	src   string
	pos   int
	depth int
	out   strings.Builder
}

// Convert translates LaTeX markup in s to Unicode text.
// The result is in NFC form so accented letters are precomposed.
func Convert(s string) (string, error) {
	c := &converter{src: s}
	if err := c.run(); err != nil {
		return "", err
	}
	return norm.NFC.String(c.out.String()), nil
}

func (c *converter) errorf(offset int, format string, args ...interface{}) error {
	return &ConversionError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (c *converter) run() error {
	for c.pos < len(c.src) {
		switch ch := c.src[c.pos]; ch {
		case '\\':
			if err := c.command(); err != nil {
				return err
			}
		case '{':
			c.depth++
			c.pos++
		case '}':
			if c.depth == 0 {
				return c.errorf(c.pos, "unbalanced closing brace")
			}
			c.depth--
			c.pos++
		case '~':
			c.out.WriteRune('\u00a0')
			c.pos++
		case '-':
			c.ligature("---", "—", "--", "–", "-")
		case '`':
			c.ligature("``", "“", "`", "‘", "`")
		case '\'':
			c.ligature("''", "”", "'", "'", "'")
		default:
			c.out.WriteByte(ch)
			c.pos++
		}
	}
	if c.depth > 0 {
		return c.errorf(len(c.src), "unbalanced opening brace")
	}
	return nil
}

// ligature writes the replacement for the longest of two candidate
// sequences found at the cursor, or the fallback for a single byte.
func (c *converter) ligature(long, longRepl, short, shortRepl, fallback string) {
	rest := c.src[c.pos:]
	switch {
	case strings.HasPrefix(rest, long):
		c.out.WriteString(longRepl)
		c.pos += len(long)
	case strings.HasPrefix(rest, short):
		c.out.WriteString(shortRepl)
		c.pos += len(short)
	default:
		c.out.WriteString(fallback)
		c.pos++
	}
}

func (c *converter) command() error {
	start := c.pos
	c.pos++
	if c.pos >= len(c.src) {
		return c.errorf(start, "dangling backslash")
	}

	ch := c.src[c.pos]
	if mark, ok := symbolAccents[ch]; ok {
		c.pos++
		return c.accent(start, mark)
	}

	if !isLetter(ch) {
		c.pos++
		if repl, ok := escapes[ch]; ok {
			c.out.WriteString(repl)
		} else {
			c.out.WriteString(c.src[start:c.pos])
		}
		return nil
	}

	name := c.word()
	if mark, ok := letterAccents[name]; ok {
		return c.accent(start, mark)
	}
	if sym, ok := symbols[name]; ok {
		c.out.WriteString(sym)
		c.skipSpaces()
		return nil
	}
	if textCommands[name] {
		c.skipSpaces()
		return nil
	}

	// Unknown command: keep it and its braced argument as written.
	c.out.WriteString(c.src[start:c.pos])
	if c.pos < len(c.src) && c.src[c.pos] == '{' {
		return c.copyGroup()
	}
	return nil
}

func (c *converter) accent(start int, mark rune) error {
	c.skipSpaces()
	if c.pos >= len(c.src) {
		return c.errorf(start, "accent without argument")
	}

	var arg string
	switch c.src[c.pos] {
	case '{':
		end := c.groupEnd(c.pos)
		if end < 0 {
			return c.errorf(start, "unterminated accent argument")
		}
		// Inner grouping braces are dropped: \"{{o}} is \"{o}.
		arg = strings.Trim(c.src[c.pos+1:end], "{} ")
		c.pos = end + 1
	case '\\':
		c.pos++
		arg = `\` + c.word()
	case '}':
		return c.errorf(start, "accent without argument")
	default:
		_, size := utf8.DecodeRuneInString(c.src[c.pos:])
		arg = c.src[c.pos : c.pos+size]
		c.pos += size
	}

	switch arg = strings.TrimSpace(arg); arg {
	case "":
		return c.errorf(start, "accent without argument")
	case `\i`:
		arg = "i"
	case `\j`:
		arg = "j"
	}

	// The mark combines with the first character only (\t{oo}).
	_, size := utf8.DecodeRuneInString(arg)
	c.out.WriteString(arg[:size])
	c.out.WriteRune(mark)
	c.out.WriteString(arg[size:])
	return nil
}

// copyGroup copies a balanced brace group verbatim.
func (c *converter) copyGroup() error {
	end := c.groupEnd(c.pos)
	if end < 0 {
		return c.errorf(c.pos, "unbalanced opening brace")
	}
	c.out.WriteString(c.src[c.pos : end+1])
	c.pos = end + 1
	return nil
}

// groupEnd returns the offset of the brace closing the group opened at
// start, or -1 if the group is not closed. Escaped braces do not count.
func (c *converter) groupEnd(start int) int {
	depth := 0
	for i := start; i < len(c.src); i++ {
		if i > 0 && c.src[i-1] == '\\' {
			continue
		}
		switch c.src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (c *converter) word() string {
	start := c.pos
	for c.pos < len(c.src) && isLetter(c.src[c.pos]) {
		c.pos++
	}
	return c.src[start:c.pos]
}

func (c *converter) skipSpaces() {
	for c.pos < len(c.src) && c.src[c.pos] == ' ' {
		c.pos++
	}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

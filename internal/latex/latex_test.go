package latex

import (
	"errors"
	"testing"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "A Study of Things", "A Study of Things"},
		{"empty", "", ""},
		{"grouping braces removed", "Springer {LLC}", "Springer LLC"},
		{"nested groups", "{{Deep} Nesting}", "Deep Nesting"},
		{"acute braced", `Jos{\'e}`, "José"},
		{"acute bare", `Jos\'e`, "José"},
		{"umlaut", `M{\"u}ller`, "Müller"},
		{"umlaut braced argument", `M\"{u}ller`, "Müller"},
		{"grave", "\\`a la carte", "à la carte"},
		{"circumflex", `h\^otel`, "hôtel"},
		{"tilde accent", `Espa\~na`, "España"},
		{"nested accent group", `Schr\"{{o}}dinger`, "Schrödinger"},
		{"spaced nested accent group", `caf\'{ {e} }`, "café"},
		{"unknown command with nested group", `\url{a{b}c}`, `\url{a{b}c}`},
		{"caron", `\v{C}ech`, "Čech"},
		{"cedilla with space", `Fran\c cois`, "François"},
		{"dotless i", `Na\"{\i}ve`, "Naïve"},
		{"dotless i bare", `\'\i`, "í"},
		{"ring", `\r{A}ngstr\"om`, "Ångström"},
		{"sharp s", `Stra{\ss}e`, "Straße"},
		{"sharp s eats space", `Gro\ss e`, "Große"},
		{"slashed o", `S{\o}ren`, "Søren"},
		{"polish l", `{\L}\'od\'z`, "Łódź"},
		{"escaped specials", `R\&D costs 5\% and \$3 \#1 a\_b`, "R&D costs 5% and $3 #1 a_b"},
		{"escaped braces", `\{x\}`, "{x}"},
		{"en dash", "169--188", "169–188"},
		{"em dash", "yes---no", "yes—no"},
		{"single hyphen", "well-known", "well-known"},
		{"quotes", "``quoted''", "“quoted”"},
		{"apostrophe", "Bayes' rule", "Bayes' rule"},
		{"non-breaking space", "J.~Smith", "J.\u00a0Smith"},
		{"emph unwrapped", `\emph{very} important`, "very important"},
		{"textbf unwrapped", `\textbf {bold}`, "bold"},
		{"named symbol", `\textendash`, "–"},
		{"unknown command kept", `see \url{http://x.org/a}`, `see \url{http://x.org/a}`},
		{"unknown control symbol kept", `a\|b`, `a\|b`},
		{"math kept", `$x^2$`, "$x^2$"},
		{"unicode passthrough", "Zürich", "Zürich"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.input)
			if err != nil {
				t.Fatalf("Convert(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestConvert_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantOffset int
	}{
		{"dangling backslash", `abc\`, 3},
		{"accent at end", `abc\'`, 3},
		{"accent with empty group", `\'{}`, 0},
		{"accent with unterminated group", `x\'{e`, 1},
		{"unbalanced closing brace", "a}b", 1},
		{"unbalanced opening brace", "{ab", 3},
		{"unknown command unterminated argument", `\foo{bar`, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Convert(tt.input)
			if err == nil {
				t.Fatalf("Convert(%q) expected error", tt.input)
			}
			var convErr *ConversionError
			if !errors.As(err, &convErr) {
				t.Fatalf("Convert(%q) error type = %T, want *ConversionError", tt.input, err)
			}
			if convErr.Offset != tt.wantOffset {
				t.Errorf("Convert(%q) offset = %d, want %d", tt.input, convErr.Offset, tt.wantOffset)
			}
		})
	}
}

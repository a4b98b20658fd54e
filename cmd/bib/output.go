package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibparse/internal/bibtex"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands

	ImportTitleMaxLen = 60 // Used in import command output
	SearchTitleMaxLen = 70 // Used in search result summaries
	DetailRuleLen     = 70 // Used in get command detail view

	MaxSummaryAuthors = 3
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatAuthorsShort joins author names, abbreviating with "et al." past maxCount.
func formatAuthorsShort(authors []string, maxCount int) string {
	if len(authors) > maxCount {
		return strings.Join(authors[:maxCount], ", ") + ", et al."
	}
	return strings.Join(authors, ", ")
}

// entryAuthors returns the normalized author list of an entry.
func entryAuthors(e *bibtex.Entry) []string {
	f, _ := e.Field("author")
	return f.Authors
}

// printEntrySummary prints a one-entry summary for list views.
func printEntrySummary(n int, e *bibtex.Entry) {
	fmt.Printf("%d. [%s] %s\n", n, e.Key, truncateString(e.Get("title"), SearchTitleMaxLen))
	line := formatAuthorsShort(entryAuthors(e), MaxSummaryAuthors)
	if year := e.Get("year"); year != "" {
		if line != "" {
			line += " "
		}
		line += "(" + year + ")"
	}
	if line != "" {
		fmt.Printf("   %s\n", line)
	}
	fmt.Println()
}

// printEntryDetail prints every field of an entry.
func printEntryDetail(e *bibtex.Entry) {
	fmt.Printf("%s (%s)\n", e.Key, e.Type)
	fmt.Println(strings.Repeat("=", DetailRuleLen))

	width := 0
	for _, name := range e.Names() {
		if len(name) > width {
			width = len(name)
		}
	}
	for _, f := range e.Fields {
		value := f.Value
		if len(f.Authors) > 0 {
			value = strings.Join(f.Authors, "; ")
		}
		fmt.Printf("%-*s  %s\n", width, f.Name, value)
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibparse/internal/bibtex"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build <json-file|->",
	Short: "Build BibTeX from parsed entries",
	Long: `Build BibTeX text from entries in the JSON form printed by 'bib parse'.

Accepts a list of entries, a key-to-entry object, or a full parse result
with an "entries" member. Raw values are written unchanged.

Examples:
  bib parse refs.bib | bib build -
  bib build entries.json > refs.bib`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

// buildDocument renders JSON-encoded entries as BibTeX. Entry maps are
// rendered sorted by key.
func buildDocument(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", fmt.Errorf("no input")
	}

	if data[0] == '[' {
		var entries []*bibtex.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return "", fmt.Errorf("decoding entry list: %w", err)
		}
		return joinTexts(bibtex.BuildEntries(entries)), nil
	}

	if inner, ok := parseResultEntries(data); ok {
		return buildDocument(inner)
	}

	var m map[string]*bibtex.Entry
	if err := json.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("decoding entry map: %w", err)
	}
	return joinTexts(bibtex.BuildMap(m)), nil
}

func joinTexts(texts []string) string {
	if len(texts) == 0 {
		return ""
	}
	return strings.Join(texts, "\n\n") + "\n"
}

func runBuild(cmd *cobra.Command, args []string) error {
	src, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	text, err := buildDocument([]byte(src))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	// BibTeX is always text output, never JSON
	fmt.Fprint(os.Stdout, text)
	return nil
}

// parseResultEntries extracts the "entries" member of a parse result. An
// entry map whose only citation key is "entries" is not mistaken for one.
func parseResultEntries(data []byte) (json.RawMessage, bool) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, false
	}
	inner, ok := members["entries"]
	if !ok {
		return nil, false
	}
	for name := range members {
		if name != "entries" && name != "comments" {
			return nil, false
		}
	}
	var e bibtex.Entry
	if json.Unmarshal(inner, &e) == nil && e.Type != "" {
		return nil, false
	}
	return inner, true
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matsen/bibparse/internal/bibtex"
	"github.com/spf13/cobra"
)

var (
	parseMap      bool
	parseComments bool
)

func init() {
	parseCmd.Flags().BoolVar(&parseMap, "map", false, "Output entries keyed by citation key")
	parseCmd.Flags().BoolVar(&parseComments, "comments", false, "Include @comment bodies in the output")
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
}

var parseCmd = &cobra.Command{
	Use:   "parse <file|->",
	Short: "Parse a BibTeX file",
	Long: `Parse a BibTeX file and print its entries.

Values are converted from LaTeX to Unicode unless the library config sets
"convert": false. Warnings (failed conversions, redefined keys) go to stderr.

Examples:
  bib parse refs.bib
  bib parse --map refs.bib
  cat refs.bib | bib parse -`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

var checkCmd = &cobra.Command{
	Use:   "check <file|->",
	Short: "Check a BibTeX file for syntax errors",
	Long: `Check a BibTeX file for syntax errors.

Exits with status 3 and reports the line and column of the first error.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

// ParseResult is the response for the parse command.
type ParseResult struct {
	Entries  interface{} `json:"entries"`
	Comments []string    `json:"comments,omitempty"`
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status   string `json:"status"` // ok or error
	Entries  int    `json:"entries"`
	Warnings int    `json:"warnings"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Message  string `json:"message,omitempty"`
}

// readInput reads a named file, or stdin when path is "-".
func readInput(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func runParse(cmd *cobra.Command, args []string) error {
	src, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	p := bibtex.NewParser(src, parserConfig().ParserOptions(warnToStderr))
	if err := p.Parse(); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	if humanOutput {
		printParsed(p)
		return nil
	}

	result := ParseResult{Entries: p.Entries()}
	if parseMap {
		result.Entries = p.EntryMap()
	}
	if parseComments {
		result.Comments = p.Comments()
	}
	outputJSON(result)
	return nil
}

func printParsed(p *bibtex.Parser) {
	entries := p.Entries()
	fmt.Printf("Parsed %d entries\n\n", len(entries))
	for i, e := range entries {
		printEntrySummary(i+1, e)
	}
	if parseComments {
		for _, c := range p.Comments() {
			fmt.Printf("%% %s\n", c)
		}
	}
}

// checkDocument parses src and summarizes the outcome.
func checkDocument(src string, opts bibtex.Options) CheckResult {
	p := bibtex.NewParser(src, opts)
	if err := p.Parse(); err != nil {
		result := CheckResult{Status: "error", Message: err.Error()}
		var synErr *bibtex.SyntaxError
		if errors.As(err, &synErr) {
			result.Line = synErr.Line
			result.Column = synErr.Column
			result.Message = synErr.Msg
		}
		return result
	}
	return CheckResult{Status: "ok", Entries: len(p.Entries()), Warnings: len(p.Warnings())}
}

func runCheck(cmd *cobra.Command, args []string) error {
	src, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	result := checkDocument(src, parserConfig().ParserOptions(warnToStderr))

	if humanOutput {
		if result.Status == "ok" {
			fmt.Printf("%s: ok (%d entries, %d warnings)\n", args[0], result.Entries, result.Warnings)
		} else {
			fmt.Printf("%s:%d:%d: %s\n", args[0], result.Line, result.Column, result.Message)
		}
	} else {
		outputJSON(result)
	}

	if result.Status != "ok" {
		os.Exit(ExitDataError)
	}
	return nil
}

package main

import (
	"fmt"

	"github.com/matsen/bibparse/internal/bibtex"
	"github.com/matsen/bibparse/internal/config"
	"github.com/matsen/bibparse/internal/storage"
	"github.com/spf13/cobra"
)

var importDryRun bool

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Show what would be imported without writing")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import entries from a BibTeX file",
	Long: `Import entries from a BibTeX file into the library.

Entries are matched by citation key: unknown keys are added, changed
entries replace the stored ones, identical entries are skipped.

Usage:
  bib import refs.bib
  bib import refs.bib --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

// ImportResult represents the result of an import operation.
type ImportResult struct {
	New     int            `json:"new"`
	Updated int            `json:"updated"`
	Skipped int            `json:"skipped"`
	DryRun  bool           `json:"dry_run,omitempty"`
	Details []ImportDetail `json:"details,omitempty"`
}

// ImportDetail describes a single import action.
type ImportDetail struct {
	Key    string `json:"key"`
	Action string `json:"action"` // new, update, skip
	Title  string `json:"title"`
}

// summarizeImport counts merge actions and lists them per entry.
func summarizeImport(actions []storage.EntryWithAction) ImportResult {
	var result ImportResult
	for _, a := range actions {
		switch a.Action {
		case storage.ActionNew:
			result.New++
		case storage.ActionUpdate:
			result.Updated++
		case storage.ActionSkip:
			result.Skipped++
		}
		result.Details = append(result.Details, ImportDetail{
			Key:    a.Entry.Key,
			Action: a.Action,
			Title:  truncateString(a.Entry.Get("title"), ImportTitleMaxLen),
		})
	}
	return result
}

func runImport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	cfg := mustLoadConfig(repoRoot)

	src, err := readInput(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	incoming, err := bibtex.Parse(src, cfg.ParserOptions(warnToStderr))
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	entriesPath := config.EntriesPath(repoRoot)
	existing, err := storage.ReadAll(entriesPath)
	if err != nil {
		exitWithError(ExitDataError, "reading existing entries: %v", err)
	}

	merged, actions := storage.Merge(existing, incoming)
	result := summarizeImport(actions)
	result.DryRun = importDryRun

	if !importDryRun {
		if err := storage.WriteAll(entriesPath, merged); err != nil {
			exitWithError(ExitError, "writing entries: %v", err)
		}
	}

	if humanOutput {
		verb := "Imported"
		if importDryRun {
			verb = "Dry run - would import"
		}
		fmt.Printf("%s from %s:\n", verb, args[0])
		fmt.Printf("  New:     %d\n", result.New)
		fmt.Printf("  Updated: %d\n", result.Updated)
		fmt.Printf("  Skipped: %d (unchanged)\n", result.Skipped)
		if !importDryRun && result.New+result.Updated > 0 {
			fmt.Println("\nRun 'bib rebuild' to refresh the search index.")
		}
	} else {
		outputJSON(result)
	}

	return nil
}

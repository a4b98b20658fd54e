package main

import (
	"os"
	"strings"

	"github.com/matsen/bibparse/internal/bibtex"
	"github.com/spf13/cobra"
)

var exportKeys string

func init() {
	exportCmd.Flags().StringVar(&exportKeys, "keys", "", "Export only the given citation keys (comma-separated)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export library entries as BibTeX",
	Long: `Export library entries as BibTeX, sorted by citation key.

Examples:
  bib export > refs.bib
  bib export --keys Smith2026-ab,Jones2025-cd`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

// splitKeys parses a comma-separated key list, dropping blanks.
func splitKeys(list string) []string {
	var keys []string
	for _, k := range strings.Split(list, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func runExport(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var entries []*bibtex.Entry
	if exportKeys != "" {
		for _, key := range splitKeys(exportKeys) {
			e, err := db.GetByKey(key)
			if err != nil {
				exitWithError(ExitError, "getting entry %s: %v", key, err)
			}
			if e == nil {
				exitWithError(ExitError, "unknown key: %s", key)
			}
			entries = append(entries, e)
		}
	} else {
		var err error
		entries, err = db.ListAll(0)
		if err != nil {
			exitWithError(ExitError, "listing entries: %v", err)
		}
	}

	// BibTeX is always text output, never JSON
	if err := bibtex.WriteEntries(os.Stdout, entries); err != nil {
		exitWithError(ExitError, "writing BibTeX: %v", err)
	}
	return nil
}

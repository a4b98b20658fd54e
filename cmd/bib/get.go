package main

import (
	"fmt"

	"github.com/matsen/bibparse/internal/bibtex"
	"github.com/spf13/cobra"
)

var getBibtex bool

func init() {
	getCmd.Flags().BoolVar(&getBibtex, "bibtex", false, "Print the entry as BibTeX")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a single entry by citation key",
	Long: `Get a single entry by its citation key.

Example:
  bib get Smith2026-ab
  bib get Smith2026-ab --bibtex`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	key := args[0]
	e, err := db.GetByKey(key)
	if err != nil {
		exitWithError(ExitError, "getting entry: %v", err)
	}
	if e == nil {
		exitWithError(ExitError, "entry not found: %s", key)
	}

	switch {
	case getBibtex:
		fmt.Println(bibtex.BuildEntry(e))
	case humanOutput:
		printEntryDetail(e)
	default:
		outputJSON(e)
	}

	return nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/matsen/bibparse/internal/author"
	"github.com/matsen/bibparse/internal/bibtex"
	"github.com/matsen/bibparse/internal/storage"
	"github.com/spf13/cobra"
)

var (
	searchLimit   int
	searchAuthors []string
	searchType    string
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	searchCmd.Flags().StringArrayVarP(&searchAuthors, "author", "a", nil, "Filter by author name (can be repeated, uses AND logic)")
	searchCmd.Flags().StringVar(&searchType, "type", "", "Filter by entry type (article, book, ...)")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search entries by keyword, author, or type",
	Long: `Search the library index. Run 'bib rebuild' after importing.

Query Syntax (positional argument):
  Plain text     - Searches keys, titles, authors, and years
  author:name    - Search author names only
  title:text     - Search titles only
  year:2024      - Search years only

Author filters match on name parts with prefix matching, so "Tim"
matches "Timothy" but "Yu" does not match "Yuval".

Examples:
  bib search "phylogenetics"
  bib search -a "Bloom" -a "Yu"
  bib search "deep learning" --type article`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

// searchIndex runs a positional query against the index. Field prefixes
// select a single column.
func searchIndex(db *storage.DB, query string, limit int) ([]*bibtex.Entry, error) {
	for _, field := range []string{"author", "title", "year"} {
		if value, ok := strings.CutPrefix(query, field+":"); ok {
			return db.SearchField(field, value, limit)
		}
	}
	return db.Search(query, limit)
}

// filterEntries keeps entries whose authors match every query and whose
// type equals entryType when set. At most limit entries are kept.
func filterEntries(entries []*bibtex.Entry, queries []author.Query, entryType string, limit int) []*bibtex.Entry {
	filtered := []*bibtex.Entry{}
	for _, e := range entries {
		if entryType != "" && !strings.EqualFold(e.Type, entryType) {
			continue
		}
		if !author.AllMatch(queries, entryAuthors(e)) {
			continue
		}
		filtered = append(filtered, e)
		if limit > 0 && len(filtered) == limit {
			break
		}
	}
	return filtered
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(searchAuthors) == 0 && searchType == "" {
		exitWithError(ExitError, "must specify a query or at least one filter (--author, --type)")
	}

	repoRoot := mustFindRepository()
	db := mustOpenDatabase(repoRoot)
	defer db.Close()

	var candidates []*bibtex.Entry
	var err error
	if len(args) > 0 {
		// Filters apply after the index query, so fetch everything it matches
		candidates, err = searchIndex(db, args[0], -1)
	} else if searchType != "" {
		candidates, err = db.ListByType(searchType)
	} else {
		candidates, err = db.ListAll(0)
	}
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	queries := make([]author.Query, len(searchAuthors))
	for i, a := range searchAuthors {
		queries[i] = author.ParseQuery(a)
	}
	entries := filterEntries(candidates, queries, searchType, searchLimit)

	if humanOutput {
		if len(entries) == 0 {
			fmt.Println("No entries found")
		} else {
			fmt.Printf("Found %d entries:\n\n", len(entries))
			for i, e := range entries {
				printEntrySummary(i+1, e)
			}
		}
	} else {
		outputJSON(entries)
	}

	return nil
}

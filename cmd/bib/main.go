// Package main provides the bib CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/bibparse/internal/bibtex"
	"github.com/matsen/bibparse/internal/config"
	"github.com/matsen/bibparse/internal/storage"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors must be printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bib",
	Short: "BibTeX parsing and library CLI",
	Long: `bib parses and builds BibTeX.

Core features:
  - Parse BibTeX (@string macros, # concatenation, @comment, @preamble)
  - Convert LaTeX markup in values to Unicode and normalize author names
  - Build BibTeX text back from parsed entries
  - Keep a library of entries in git-versionable JSONL with an
    ephemeral SQLite full-text index

All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file may set BIB_LIBRARY; a missing file is fine
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// warnToStderr is the parser warning sink used by every command.
func warnToStderr(w bibtex.Warning) {
	fmt.Fprintf(os.Stderr, "warning: %s\n", w)
}

// findLibrary locates the library: the working directory or one of its
// parents first, then $BIB_LIBRARY or the global library_path.
func findLibrary() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}
	root, err := config.FindRepository(cwd)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, config.ErrNotLibrary) {
		return "", err
	}

	fallback, ferr := config.DefaultLibrary()
	if ferr != nil {
		return "", err
	}
	return config.FindRepository(fallback)
}

// mustFindRepository finds and validates the library, exits on error.
// Returns the library root path.
func mustFindRepository() string {
	root, err := findLibrary()
	if err != nil {
		fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
		os.Exit(ExitConfigError)
	}
	return root
}

// mustOpenDatabase opens the SQLite database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase(repoRoot string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(repoRoot), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath(repoRoot))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// parserConfig returns the library configuration when run inside a
// library, and the defaults otherwise.
func parserConfig() *config.Config {
	root, err := findLibrary()
	if err != nil {
		return config.Default()
	}
	return mustLoadConfig(root)
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/bibparse/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new library",
	Long: `Initialize a new library in the current directory.

Creates:
  .bibparse/
  ├── entries.jsonl   # Empty file
  ├── config.json     # Default config
  ├── .gitignore      # Ignores cache/
  └── cache/          # SQLite index (rebuilt from entries.jsonl)`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

// errAlreadyLibrary is returned by initLibrary for an existing library.
var errAlreadyLibrary = errors.New("directory already contains a bibparse library")

// initLibrary creates the library layout under root.
func initLibrary(root string) error {
	if config.IsRepository(root) {
		return errAlreadyLibrary
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	f, err := os.Create(config.EntriesPath(root))
	if err != nil {
		return fmt.Errorf("creating %s: %w", config.EntriesFile, err)
	}
	f.Close()

	gitignore := filepath.Join(config.LibraryDirPath(root), ".gitignore")
	if err := os.WriteFile(gitignore, []byte(config.CacheDir+"/\n"), 0644); err != nil {
		return fmt.Errorf("creating .gitignore: %w", err)
	}

	if err := config.Default().Save(root); err != nil {
		return err
	}
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		exitWithError(ExitError, "getting current directory: %v", err)
	}

	if err := initLibrary(root); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized bibparse library in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}

package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/bibparse/internal/config"
)

func TestInitLibrary(t *testing.T) {
	root := t.TempDir()

	if err := initLibrary(root); err != nil {
		t.Fatalf("initLibrary() error = %v", err)
	}

	for _, path := range []string{
		config.EntriesPath(root),
		config.ConfigPath(root),
		config.CachePath(root),
		filepath.Join(config.LibraryDirPath(root), ".gitignore"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}

	cfg, err := config.Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Convert || !cfg.WarnDuplicates {
		t.Errorf("config = %+v, want defaults", cfg)
	}

	if err := initLibrary(root); !errors.Is(err, errAlreadyLibrary) {
		t.Errorf("second initLibrary() error = %v, want errAlreadyLibrary", err)
	}
}

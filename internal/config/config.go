// Package config handles library and global configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matsen/bibparse/internal/bibtex"
)

// Config represents library configuration stored in .bibparse/config.json.
type Config struct {
	Convert        bool              `json:"convert"`          // Convert LaTeX in values to Unicode
	WarnDuplicates bool              `json:"warn_duplicates"`  // Report redefined citation keys
	Macros         map[string]string `json:"macros,omitempty"` // Extra @STRING macros for every parse
}

const (
	LibraryDir  = ".bibparse"
	ConfigFile  = "config.json"
	EntriesFile = "entries.jsonl"
	CacheDir    = "cache"
	DBFile      = "entries.db"
)

// ErrNotLibrary is returned by FindRepository when no library is found.
var ErrNotLibrary = errors.New("not in a bibparse library (no .bibparse directory found)")

// Default returns the configuration written by a fresh init.
func Default() *Config {
	return &Config{Convert: true, WarnDuplicates: true}
}

// LibraryDirPath returns the path to the .bibparse directory from a root path.
func LibraryDirPath(root string) string {
	return filepath.Join(root, LibraryDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, LibraryDir, ConfigFile)
}

// EntriesPath returns the path to entries.jsonl from a root path.
func EntriesPath(root string) string {
	return filepath.Join(root, LibraryDir, EntriesFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir)
}

// DBPath returns the path to entries.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, LibraryDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a library.
func IsRepository(root string) bool {
	info, err := os.Stat(LibraryDirPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a library.
// Returns the library root path or ErrNotLibrary.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotLibrary
		}
		abs = parent
	}
}

// Load reads configuration from the library at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to the library at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// ParserOptions returns parser options for this configuration. Warnings
// are forwarded to warn, which may be nil. Duplicate-key warnings are
// dropped unless WarnDuplicates is set.
func (c *Config) ParserOptions(warn func(bibtex.Warning)) bibtex.Options {
	opts := bibtex.Options{Macros: c.Macros}
	if !c.Convert {
		opts.Converter = bibtex.Identity
	}
	if warn != nil {
		opts.Warn = func(w bibtex.Warning) {
			if !c.WarnDuplicates && errors.Is(w.Err, bibtex.ErrDuplicateKey) {
				return
			}
			warn(w)
		}
	}
	return opts
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}

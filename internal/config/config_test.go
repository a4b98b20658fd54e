package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matsen/bibparse/internal/bibtex"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/repo"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"LibraryDirPath", LibraryDirPath, "/test/repo/.bibparse"},
		{"ConfigPath", ConfigPath, "/test/repo/.bibparse/config.json"},
		{"EntriesPath", EntriesPath, "/test/repo/.bibparse/entries.jsonl"},
		{"CachePath", CachePath, "/test/repo/.bibparse/cache"},
		{"DBPath", DBPath, "/test/repo/.bibparse/cache/entries.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsRepository(t *testing.T) {
	tmpDir := t.TempDir()

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true for non-library directory")
	}

	if err := os.Mkdir(filepath.Join(tmpDir, LibraryDir), 0755); err != nil {
		t.Fatalf("Failed to create .bibparse: %v", err)
	}

	if !IsRepository(tmpDir) {
		t.Error("IsRepository() = false for library directory")
	}
}

func TestIsRepository_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, LibraryDir), []byte("not a dir"), 0644); err != nil {
		t.Fatalf("Failed to create .bibparse file: %v", err)
	}

	if IsRepository(tmpDir) {
		t.Error("IsRepository() = true when .bibparse is a file")
	}
}

func TestFindRepository(t *testing.T) {
	tmpDir := t.TempDir()
	repoDir := filepath.Join(tmpDir, "repo")
	nestedDir := filepath.Join(repoDir, "papers", "2026")

	if err := os.MkdirAll(nestedDir, 0755); err != nil {
		t.Fatalf("Failed to create nested dirs: %v", err)
	}
	if err := os.Mkdir(filepath.Join(repoDir, LibraryDir), 0755); err != nil {
		t.Fatalf("Failed to create .bibparse: %v", err)
	}

	for _, start := range []string{nestedDir, repoDir} {
		found, err := FindRepository(start)
		if err != nil {
			t.Fatalf("FindRepository(%q) error = %v", start, err)
		}
		if found != repoDir {
			t.Errorf("FindRepository(%q) = %q, want %q", start, found, repoDir)
		}
	}
}

func TestFindRepository_NotFound(t *testing.T) {
	_, err := FindRepository(t.TempDir())
	if !errors.Is(err, ErrNotLibrary) {
		t.Errorf("FindRepository() error = %v, want ErrNotLibrary", err)
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(LibraryDirPath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .bibparse: %v", err)
	}

	cfg := &Config{
		Convert:        false,
		WarnDuplicates: true,
		Macros:         map[string]string{"pub": "Springer"},
	}
	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loaded.Convert != cfg.Convert {
		t.Errorf("Convert = %v, want %v", loaded.Convert, cfg.Convert)
	}
	if loaded.WarnDuplicates != cfg.WarnDuplicates {
		t.Errorf("WarnDuplicates = %v, want %v", loaded.WarnDuplicates, cfg.WarnDuplicates)
	}
	if loaded.Macros["pub"] != "Springer" {
		t.Errorf("Macros = %v", loaded.Macros)
	}
}

func TestLoad_MissingKeysUseDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.Mkdir(LibraryDirPath(tmpDir), 0755); err != nil {
		t.Fatalf("Failed to create .bibparse: %v", err)
	}
	if err := os.WriteFile(ConfigPath(tmpDir), []byte(`{"warn_duplicates": false}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.Convert || cfg.WarnDuplicates {
		t.Errorf("Load() = %+v, want Convert=true WarnDuplicates=false", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte // nil means no config file
	}{
		{"not found", nil},
		{"invalid JSON", []byte("not json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			if err := os.Mkdir(LibraryDirPath(tmpDir), 0755); err != nil {
				t.Fatalf("Failed to create .bibparse: %v", err)
			}
			if tt.content != nil {
				if err := os.WriteFile(ConfigPath(tmpDir), tt.content, 0644); err != nil {
					t.Fatalf("Failed to write config: %v", err)
				}
			}
			if _, err := Load(tmpDir); err == nil {
				t.Error("Load() should return error")
			}
		})
	}
}

func TestConfig_ParserOptions(t *testing.T) {
	const src = `@string{pub = "Springer"}
@misc{a, title = {M{\"u}ller}, publisher = pub}
@misc{a, title = {Again}}`

	tests := []struct {
		name         string
		cfg          *Config
		wantTitle    string
		wantWarnings int
	}{
		{"defaults", Default(), "Again", 1},
		{"duplicates silenced", &Config{Convert: true}, "Again", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var warnings []bibtex.Warning
			entries, err := bibtex.Parse(src, tt.cfg.ParserOptions(func(w bibtex.Warning) {
				warnings = append(warnings, w)
			}))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := entries[0].Get("title"); got != tt.wantTitle {
				t.Errorf("title = %q, want %q", got, tt.wantTitle)
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("got %d warnings, want %d: %v", len(warnings), tt.wantWarnings, warnings)
			}
		})
	}
}

func TestConfig_ParserOptions_Conversion(t *testing.T) {
	src := `@misc{a, title = {M{\"u}ller}, publisher = pub}`

	tests := []struct {
		name string
		cfg  *Config
		want string
	}{
		{"convert", &Config{Convert: true, Macros: map[string]string{"PUB": "x"}}, "Müller"},
		{"raw", &Config{Convert: false, Macros: map[string]string{"pub": "x"}}, `M{\"u}ller`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := bibtex.Parse(src, tt.cfg.ParserOptions(nil))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := entries[0].Get("title"); got != tt.want {
				t.Errorf("title = %q, want %q", got, tt.want)
			}
			if got := entries[0].Get("publisher"); got != "x" {
				t.Errorf("publisher = %q, want configured macro", got)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		path string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"~", home},
		{"~/bib", filepath.Join(home, "bib")},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.path); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/bib/config.yml.
type GlobalConfig struct {
	LibraryPath string `yaml:"library_path,omitempty"` // Default library root
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "bib"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// LibraryEnv overrides library_path when set.
	LibraryEnv = "BIB_LIBRARY"
)

// ErrLibraryNotConfigured is returned when no default library is set.
var ErrLibraryNotConfigured = errors.New("library_path not configured")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bib/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.LibraryPath != "" {
		cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// DefaultLibrary returns the library root to use when the working directory
// is not inside one: $BIB_LIBRARY if set, otherwise library_path.
func DefaultLibrary() (string, error) {
	if env := os.Getenv(LibraryEnv); env != "" {
		return ExpandPath(env), nil
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.LibraryPath == "" {
		return "", ErrLibraryNotConfigured
	}
	return cfg.LibraryPath, nil
}

// HelpfulConfigMessage returns a hint for when no library can be found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No bibparse library found.

Run 'bib init' in a directory, set %s, or create %s:
  mkdir -p %s
  echo 'library_path: /path/to/your/library' > %s`,
		LibraryEnv,
		configPath,
		filepath.Dir(configPath),
		configPath)
}

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// dirName is the name of both the global and the per-repo config directory.
const dirName = ".minutes"

// HomeEnv overrides the global base directory when set.
const HomeEnv = "MINUTES_HOME"

// Config holds application configuration.
type Config struct {
	// NotesMaxChars caps the rune count of a notes block. 0 disables the cap.
	NotesMaxChars int `json:"notes_max_chars"`

	// AllowedPaths lists extra directories that export and render may write to.
	// Files must sit directly in one of them or in <base>/exports.
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths lifts the directory restriction. Symlink and
	// extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits open database connections. 0 keeps the sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits idle database connections. 0 keeps the sql.DB default.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools lists MCP tool names to leave unregistered.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		NotesMaxChars: 20000,
		LogLevel:      "info",
	}
}

// BaseDir returns $MINUTES_HOME, or ~/.minutes.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

// Load reads baseDir/config.json over the defaults.
// A missing file yields the defaults.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// LoadWithRepo layers defaults, the global config in globalDir, and the
// nearest .minutes/config.json found walking up from startDir.
// Repo scalars win; arrays are merged.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to the nearest
// .minutes/config.json. Returns "" if there is none.
func FindRepoConfig(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, dirName, "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero Config (not defaults) when the file is missing.
func loadFileRaw(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays overlay on base. Non-zero overlay scalars win, booleans
// are OR-ed, and arrays are merged without duplicates.
func Merge(base, overlay *Config) *Config {
	return &Config{
		NotesMaxChars:    firstNonZero(overlay.NotesMaxChars, base.NotesMaxChars),
		DBMaxOpenConns:   firstNonZero(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:   firstNonZero(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		LogLevel:         firstNonZero(strings.TrimSpace(overlay.LogLevel), base.LogLevel),
		AllowUnsafePaths: base.AllowUnsafePaths || overlay.AllowUnsafePaths,
		AllowedPaths:     mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths),
		DisabledTools:    mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
	}
}

func firstNonZero[T comparable](a, b T) T {
	var zero T
	if a != zero {
		return a
	}
	return b
}

// mergeStringSlice concatenates, trims, and drops empties and duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	var result []string

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	return result
}

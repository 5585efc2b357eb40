package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// DefaultAccount is used when a sync does not name an account.
	DefaultAccount string `json:"default_account,omitempty"`

	// DefaultRealm is used when a sync does not name a realm.
	// Known realms: pc, xbox, sony.
	DefaultRealm string `json:"default_realm,omitempty"`

	// DefaultCharacter is used when a command does not name a character.
	DefaultCharacter string `json:"default_character,omitempty"`

	// StateDir is the capture state directory (panel-stat baselines and
	// history files), relative to the base dir unless absolute.
	StateDir string `json:"state_dir,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are ignored at registration time.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultRealm: "pc",
		StateDir:     "stat_watch",
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of
// ~/.poeledger.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// ResolveStateDir returns the absolute capture state directory.
func (c *Config) ResolveStateDir(baseDir string) string {
	dir := c.StateDir
	if dir == "" {
		dir = DefaultConfig().StateDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(baseDir, dir)
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
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

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and
// deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.DefaultAccount = overlay.DefaultAccount
	if result.DefaultAccount == "" {
		result.DefaultAccount = base.DefaultAccount
	}

	result.DefaultRealm = overlay.DefaultRealm
	if result.DefaultRealm == "" {
		result.DefaultRealm = base.DefaultRealm
	}

	result.DefaultCharacter = overlay.DefaultCharacter
	if result.DefaultCharacter == "" {
		result.DefaultCharacter = base.DefaultCharacter
	}

	result.StateDir = overlay.StateDir
	if result.StateDir == "" {
		result.StateDir = base.StateDir
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes
// duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

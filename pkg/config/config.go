// Package config loads tasktable's YAML configuration and locates data
// directories on disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/tasktable/pkg/logging"
)

// DirName is the per-project directory holding the config, data and state.
const DirName = ".tasktable"

// FileName is the config file inside DirName.
const FileName = "config.yaml"

// Config is the contents of .tasktable/config.yaml.
//
// Example:
//
//	data_dir: data
//	folder_id: IEAAAAAAI4AAAAAB
//	active_only: true
//	row_height: 24
//	log_level: debug
//	log_file: tt.log
//	watch: true
//	debounce: 300ms
//	discovery:
//	  scan_paths: [~/work]
//	  max_depth: 3
type Config struct {
	DataDir    string          `yaml:"data_dir"`    // Directory with folder.json, tasks.json, ...
	FolderID   string          `yaml:"folder_id"`   // Overrides the id in folder.json
	ActiveOnly bool            `yaml:"active_only"` // Start with the active-only filter on
	RowHeight  float64         `yaml:"row_height"`  // Unscaled row height
	Scale      float64         `yaml:"scale"`       // Column width multiplier
	StateFile  string          `yaml:"state_file"`  // View state file; next to the config when empty
	LogLevel   string          `yaml:"log_level"`
	LogFile    string          `yaml:"log_file"` // stderr when empty
	Watch      bool            `yaml:"watch"`    // Reload when data files change
	Debounce   time.Duration   `yaml:"debounce"`
	Discovery  DiscoveryConfig `yaml:"discovery"`
}

// DiscoveryConfig controls DiscoverDatasets.
type DiscoveryConfig struct {
	ScanPaths []string `yaml:"scan_paths"`
	MaxDepth  int      `yaml:"max_depth"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DataDir:    "data",
		ActiveOnly: true,
		RowHeight:  24,
		Scale:      1,
		LogLevel:   "info",
		Debounce:   200 * time.Millisecond,
		Discovery:  DiscoveryConfig{MaxDepth: 3},
	}
}

// Path returns the config file path for a project root.
func Path(root string) string {
	return filepath.Join(root, DirName, FileName)
}

// Load reads the config file at path over the defaults. A missing file
// yields the defaults. Relative paths in the file are resolved against the
// file's directory.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg.resolve(filepath.Dir(path))
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.resolve(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) resolve(base string) {
	c.DataDir = resolvePath(base, c.DataDir)
	c.LogFile = resolvePath(base, c.LogFile)
	if c.StateFile == "" {
		c.StateFile = filepath.Join(base, "view-state.json")
	} else {
		c.StateFile = resolvePath(base, c.StateFile)
	}
}

func resolvePath(base, p string) string {
	if p == "" {
		return ""
	}
	p = expandHome(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.RowHeight <= 0 {
		return fmt.Errorf("row_height must be positive, got %v", c.RowHeight)
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", c.Scale)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative, got %v", c.Debounce)
	}
	if !logging.ValidLevel(c.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Discovery.MaxDepth < 0 {
		return fmt.Errorf("discovery.max_depth must not be negative, got %d", c.Discovery.MaxDepth)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

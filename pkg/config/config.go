package config

import (
	"path/filepath"
	"time"
)

// Config is the effective configuration of one gamelink run
type Config struct {
	Scan     Scan     `koanf:"scan"`
	Metadata Metadata `koanf:"metadata"`
	Locate   Locate   `koanf:"locate"`
	Link     Link     `koanf:"link"`
	Runtime  Runtime  `koanf:"runtime"`

	raw map[string]interface{}
}

// Scan configures the library scanner
type Scan struct {
	Roots        []string `koanf:"roots"`
	DefaultRoots bool     `koanf:"default_roots"`
	// ReservedIDs are excluded from the scan output. Environment specific,
	// e.g. the id of the Windows application itself.
	ReservedIDs []string `koanf:"reserved_ids"`
}

// Metadata configures name resolution
type Metadata struct {
	Remote    bool          `koanf:"remote"`
	Endpoint  string        `koanf:"endpoint"`
	Timeout   time.Duration `koanf:"timeout"`
	Workers   int           `koanf:"workers"`
	UserAgent string        `koanf:"user_agent"`
	MaxAge    time.Duration `koanf:"max_age"`
}

// Locate configures the directory resolution heuristic
type Locate struct {
	SearchRoots []string `koanf:"search_roots"`
}

// Link configures the link strategy engine
type Link struct {
	Target     string   `koanf:"target"`
	Strategies []string `koanf:"strategies"`
	Backup     bool     `koanf:"backup"`
	Aux        bool     `koanf:"aux"`
	AuxRoot    string   `koanf:"aux_root"`
}

// Runtime describes the Wine installation the target namespace belongs to
type Runtime struct {
	Prefix          string        `koanf:"prefix"`
	Wine            string        `koanf:"wine"`
	Winepath        string        `koanf:"winepath"`
	FollowsSymlinks bool          `koanf:"follows_symlinks"`
	Timeout         time.Duration `koanf:"timeout"`
	Probe           bool          `koanf:"probe"`
}

// Known link strategy names
const (
	StrategySymlink  = "symlink"
	StrategyJunction = "junction"
	StrategyCopy     = "copy"
)

// TargetDir returns the configured target namespace, deriving it from the
// prefix when unset.
func (c *Config) TargetDir() string {
	if c.Link.Target != "" {
		return c.Link.Target
	}
	return filepath.Join(c.Runtime.Prefix, "drive_c", "Program Files (x86)", "Steam", "steamapps", "common")
}

// AuxRootDir returns where per-item Documents and AppData links are placed
func (c *Config) AuxRootDir() string {
	if c.Link.AuxRoot != "" {
		return c.Link.AuxRoot
	}
	return filepath.Join(c.Runtime.Prefix, "drive_c", "users", "Public", "gamelink")
}

// Raw returns the merged key/value tree the config was decoded from
func (c *Config) Raw() map[string]interface{} {
	return c.raw
}

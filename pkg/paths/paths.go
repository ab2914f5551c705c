package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/gamelink/pkg/errors"
)

// Environment variable names
const (
	EnvConfigDir = "GAMELINK_CONFIG_DIR"
	EnvCacheDir  = "GAMELINK_CACHE_DIR"
	EnvStateDir  = "GAMELINK_STATE_DIR"
	EnvDataDir   = "GAMELINK_DATA_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Internal layout. These names are not user-configurable.
const (
	AppDirName     = "gamelink"
	ConfigFileName = "config.toml"
	NameCacheDir   = "names"
	SelectionFile  = "selection.log"
	BackupsDir     = "backups"
	LogFileName    = "gamelink.log"
)

// Paths provides centralized path management for gamelink
type Paths interface {
	ConfigDir() string
	CacheDir() string
	StateDir() string
	DataDir() string
	ConfigFile() string
	NameCacheDir() string
	SelectionFile() string
	BackupDir() string
	LogFilePath() string
}

type paths struct {
	configDir string
	cacheDir  string
	stateDir  string
	dataDir   string
}

// New creates a Paths instance from the XDG environment, honouring the
// GAMELINK_*_DIR overrides.
func New() (Paths, error) {
	p := &paths{
		configDir: dirFromEnv(EnvConfigDir, xdg.ConfigHome),
		cacheDir:  dirFromEnv(EnvCacheDir, xdg.CacheHome),
		stateDir:  dirFromEnv(EnvStateDir, xdg.StateHome),
		dataDir:   dirFromEnv(EnvDataDir, xdg.DataHome),
	}

	for _, dir := range []string{p.configDir, p.cacheDir, p.stateDir, p.dataDir} {
		if !filepath.IsAbs(dir) {
			return nil, errors.Newf(errors.ErrInvalidInput, "directory %q is not absolute", dir)
		}
	}

	return p, nil
}

// dirFromEnv returns the override when set, otherwise base/gamelink.
func dirFromEnv(envVar, base string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return filepath.Clean(ExpandHome(dir))
	}
	return filepath.Join(base, AppDirName)
}

func (p *paths) ConfigDir() string { return p.configDir }
func (p *paths) CacheDir() string  { return p.cacheDir }
func (p *paths) StateDir() string  { return p.stateDir }
func (p *paths) DataDir() string   { return p.dataDir }

// ConfigFile returns the default location of the user configuration file
func (p *paths) ConfigFile() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// NameCacheDir returns the directory holding one cached name per item id
func (p *paths) NameCacheDir() string {
	return filepath.Join(p.cacheDir, NameCacheDir)
}

// SelectionFile returns the append-only selection log
func (p *paths) SelectionFile() string {
	return filepath.Join(p.stateDir, SelectionFile)
}

// BackupDir returns the directory where backup archives are written
func (p *paths) BackupDir() string {
	return filepath.Join(p.dataDir, BackupsDir)
}

// LogFilePath returns the path of the log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// NormalizePath expands home, makes the path absolute and cleans it
func NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	abs, err := filepath.Abs(ExpandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}

	return filepath.Clean(abs), nil
}

// DefaultLibraryRoots returns the places a native Steam client keeps its
// primary library, in preference order. Existence is not checked here.
func DefaultLibraryRoots(home string) []string {
	return []string{
		filepath.Join(home, ".steam", "steam"),
		filepath.Join(home, ".local", "share", "Steam"),
		filepath.Join(home, ".steam", "root"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", ".steam", "steam"),
		filepath.Join(home, ".var", "app", "com.valvesoftware.Steam", "data", "Steam"),
	}
}

// DefaultPrefix returns the Wine prefix used when none is configured
func DefaultPrefix(home string) string {
	if prefix := os.Getenv("WINEPREFIX"); prefix != "" {
		return prefix
	}
	return filepath.Join(home, ".wine")
}

// Package paths provides centralized path handling for gamelink.
//
// This package implements the XDG Base Directory specification and provides
// a consistent API for every on-disk location gamelink owns:
//
//   - Config: $XDG_CONFIG_HOME/gamelink (config.toml)
//   - Cache: $XDG_CACHE_HOME/gamelink (resolved item names, one file per id)
//   - State: $XDG_STATE_HOME/gamelink (selection log, log file)
//   - Data: $XDG_DATA_HOME/gamelink (backup archives)
//
// # Environment Variables
//
//   - GAMELINK_CONFIG_DIR: Override the config directory
//   - GAMELINK_CACHE_DIR: Override the cache directory
//   - GAMELINK_STATE_DIR: Override the state directory
//   - GAMELINK_DATA_DIR: Override the data directory
//
// It also knows where native Steam installations usually live, which seeds
// the library scan when no roots are configured.
package paths

// Package config handles configuration management for gamelink.
// It layers the embedded defaults, the user's TOML file and GAMELINK_*
// environment variables with koanf, then decodes the result into Config.
// Command-line flags are applied on top by the cmd package.
package config

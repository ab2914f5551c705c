package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/gamelink/pkg/errors"
	"github.com/arthur-debert/gamelink/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration
const EnvPrefix = "GAMELINK_"

// LoadOptions selects the configuration sources
type LoadOptions struct {
	// File is the user configuration file. A missing file is ignored unless
	// Explicit is set.
	File     string
	Explicit bool
	// Overrides are applied last, keyed by dotted path ("link.backup").
	Overrides map[string]interface{}
}

// LoadConfiguration layers defaults, the user file, the environment and the
// overrides, in that order.
func LoadConfiguration(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User config file
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err == nil {
			if err := k.Load(file.Provider(opts.File), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", opts.File)
			}
		} else if opts.Explicit {
			return nil, errors.Wrapf(err, errors.ErrConfigLoad, "config file %s not readable", opts.File)
		}
	}

	// 3. Environment. Sections are joined with a double underscore so that
	// keys such as reserved_ids keep their own underscores. Variables
	// without a section (GAMELINK_DATA_DIR, GAMELINK_LOG_FILE) are not
	// configuration keys.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if !strings.Contains(key, "__") {
			return ""
		}
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load env vars")
	}

	// 4. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	cfg.raw = k.Raw()

	// 6. Post-process
	if err := postProcessConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// postProcessConfig expands paths, fills derived defaults and validates
func postProcessConfig(cfg *Config) error {
	home, _ := os.UserHomeDir()

	if cfg.Runtime.Prefix == "" {
		cfg.Runtime.Prefix = paths.DefaultPrefix(home)
	}
	cfg.Runtime.Prefix = paths.ExpandHome(cfg.Runtime.Prefix)
	cfg.Link.Target = paths.ExpandHome(cfg.Link.Target)
	cfg.Link.AuxRoot = paths.ExpandHome(cfg.Link.AuxRoot)

	for i, root := range cfg.Scan.Roots {
		cfg.Scan.Roots[i] = paths.ExpandHome(strings.TrimSpace(root))
	}
	for i, root := range cfg.Locate.SearchRoots {
		cfg.Locate.SearchRoots[i] = paths.ExpandHome(strings.TrimSpace(root))
	}

	if len(cfg.Link.Strategies) == 0 {
		return errors.New(errors.ErrConfigValid, "link.strategies must name at least one strategy")
	}
	seen := make(map[string]bool)
	for i, s := range cfg.Link.Strategies {
		s = strings.ToLower(strings.TrimSpace(s))
		switch s {
		case StrategySymlink, StrategyJunction, StrategyCopy:
		default:
			return errors.Newf(errors.ErrConfigValid, "unknown link strategy %q", s)
		}
		if seen[s] {
			return errors.Newf(errors.ErrConfigValid, "link strategy %q listed twice", s)
		}
		seen[s] = true
		cfg.Link.Strategies[i] = s
	}

	if cfg.Metadata.Workers < 1 {
		cfg.Metadata.Workers = 1
	}
	if cfg.Metadata.Timeout <= 0 {
		return errors.New(errors.ErrConfigValid, "metadata.timeout must be positive")
	}
	if cfg.Runtime.Timeout <= 0 {
		return errors.New(errors.ErrConfigValid, "runtime.timeout must be positive")
	}
	if cfg.Metadata.MaxAge < 0 {
		return errors.New(errors.ErrConfigValid, "metadata.max_age cannot be negative")
	}

	return nil
}

// WriteDefault writes the embedded defaults to path, refusing to overwrite
// an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.Newf(errors.ErrInvalidInput, "config file %s already exists", path).
			WithDetail("path", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create config directory")
	}
	if err := os.WriteFile(path, defaultConfig, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, fmt.Sprintf("failed to write %s", path))
	}
	return nil
}
